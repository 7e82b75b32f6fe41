package textnorm

// Character tables used by the canonicalization pipeline. NFKC already
// folds fullwidth forms and mathematical alphanumerics, so the homoglyph
// table only needs scripts NFKC leaves alone.

var zeroWidthRunes = map[rune]struct{}{
	'\u200B': {}, // zero-width space
	'\u200C': {}, // zero-width non-joiner
	'\u200D': {}, // zero-width joiner
	'\u200E': {}, // left-to-right mark
	'\u200F': {}, // right-to-left mark
	'\uFEFF': {}, // byte-order mark
	'\u2060': {}, // word joiner
	'\u180E': {}, // Mongolian vowel separator
}

// homoglyphRunes maps visually-identical Cyrillic and Greek letters onto
// their Latin equivalents.
var homoglyphRunes = map[rune]rune{
	// Cyrillic lowercase
	'а': 'a', 'е': 'e', 'ё': 'e', 'о': 'o', 'р': 'p', 'с': 'c',
	'у': 'y', 'х': 'x', 'і': 'i', 'ӏ': 'l', 'ј': 'j', 'ѕ': 's',
	'һ': 'h', 'ԁ': 'd', 'ԛ': 'q', 'ԝ': 'w', 'в': 'b', 'м': 'm',
	'н': 'h', 'т': 't', 'к': 'k',
	// Cyrillic uppercase
	'А': 'A', 'В': 'B', 'Е': 'E', 'К': 'K', 'М': 'M', 'Н': 'H',
	'О': 'O', 'Р': 'P', 'С': 'C', 'Т': 'T', 'У': 'Y', 'Х': 'X',
	'І': 'I', 'Ј': 'J', 'Ѕ': 'S',
	// Greek lowercase
	'α': 'a', 'β': 'b', 'γ': 'y', 'δ': 'd', 'ε': 'e', 'ζ': 'z',
	'η': 'n', 'θ': 'o', 'ι': 'i', 'κ': 'k', 'λ': 'l', 'μ': 'u',
	'ν': 'v', 'ξ': 'e', 'ο': 'o', 'π': 'n', 'ρ': 'p', 'σ': 'o',
	'ς': 's', 'τ': 't', 'υ': 'u', 'φ': 'o', 'χ': 'x', 'ψ': 'w',
	'ω': 'w',
	// Greek uppercase (those that differ from Latin codepoints)
	'Α': 'A', 'Β': 'B', 'Ε': 'E', 'Ζ': 'Z', 'Η': 'H', 'Ι': 'I',
	'Κ': 'K', 'Μ': 'M', 'Ν': 'N', 'Ο': 'O', 'Ρ': 'P', 'Τ': 'T',
	'Υ': 'Y', 'Χ': 'X',
}

// devanagariNukta is the combining nukta mark. NFKC leaves the precomposed
// nukta consonants (U+0958..U+095F are composition exclusions) decomposed
// into base consonant plus this mark, so dropping it folds spellings like
// ज़ onto ज and keyword matching survives regional spelling tricks.
const devanagariNukta = '़'

// leetSymbolRunes are always substituted.
var leetSymbolRunes = map[rune]rune{
	'@': 'a', '$': 's', '€': 'e', '£': 'l', '¥': 'y', '₹': 'r', '|': 'i',
}

// leetDigitRunes are substituted only when adjacent to a letter and
// outside protected spans.
var leetDigitRunes = map[rune]rune{
	'0': 'o', '1': 'i', '3': 'e', '4': 'a',
	'5': 's', '7': 't', '8': 'b', '9': 'g',
}

// shortenerDomains is the fixed set of link-shortener hosts whose URLs the
// expansion stage resolves.
var shortenerDomains = map[string]struct{}{
	"bit.ly":       {},
	"tinyurl.com":  {},
	"t.co":         {},
	"goo.gl":       {},
	"ow.ly":        {},
	"is.gd":        {},
	"v.gd":         {},
	"buff.ly":      {},
	"adf.ly":       {},
	"j.mp":         {},
	"rb.gy":        {},
	"cutt.ly":      {},
	"shorturl.at":  {},
	"tiny.cc":      {},
	"lnkd.in":      {},
	"rebrand.ly":   {},
	"t.ly":         {},
	"soo.gd":       {},
	"s.id":         {},
	"bl.ink":       {},
	"short.io":     {},
	"amzn.to":      {},
	"youtu.be":     {},
	"fb.me":        {},
	"wa.me":        {},
	"m.me":         {},
	"bit.do":       {},
	"mcaf.ee":      {},
	"qr.ae":        {},
	"po.st":        {},
	"x.co":         {},
	"ouo.io":       {},
	"zpr.io":       {},
	"clck.ru":      {},
	"surl.li":      {},
	"urlz.fr":      {},
	"shorte.st":    {},
	"trib.al":      {},
	"snip.ly":      {},
	"han.gl":       {},
	"gg.gg":        {},
	"u.to":         {},
	"linktr.ee":    {},
	"rotf.lol":     {},
	"tny.im":       {},
	"1url.com":     {},
	"hyperurl.co":  {},
	"vzturl.com":   {},
	"qps.ru":       {},
	"chilp.it":     {},
}

// IsShortenerHost reports whether the bare host belongs to a known link
// shortener.
func IsShortenerHost(host string) bool {
	_, ok := shortenerDomains[host]
	return ok
}
