// Package textnorm defeats the obfuscation layers scammers apply to evade
// keyword filters: unicode tricks, homoglyphs, leetspeak, spaced-out
// characters, mangled URLs and link shorteners. The full pipeline is
// deterministic and idempotent; a light variant preserves digits and `@`
// shapes for artifact extraction.
package textnorm

import (
	"context"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"baitlab/pkg/logger"
)

// URLExpander resolves shortened URLs. Implementations must be best-effort
// and bounded; a URL missing from the result map is left unchanged.
type URLExpander interface {
	ExpandAll(ctx context.Context, urls []string) map[string]string
}

// Canonicalizer runs the full normalization pipeline.
type Canonicalizer struct {
	expander URLExpander
	logger   *logger.Logger
}

// New creates a Canonicalizer. expander may be nil to skip the
// shortened-URL stage entirely.
func New(expander URLExpander, log *logger.Logger) *Canonicalizer {
	return &Canonicalizer{
		expander: expander,
		logger:   log.WithComponent("textnorm"),
	}
}

var (
	urlRe          = regexp.MustCompile(`https?://[^\s]+`)
	hexPayloadRe   = regexp.MustCompile(`\b[0-9a-fA-F]{14,}\b`)
	urlShapeRe     = regexp.MustCompile(`(?i)(https?://|www\.|[a-z0-9-]+\.[a-z]{2,})`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	hxxpRe         = regexp.MustCompile(`(?i)\bhxxp(s?)\b`)
	starProtoRe    = regexp.MustCompile(`(?i)\bh\*{2,}p(s?)\b`)
	underProtoRe   = regexp.MustCompile(`(?i)\bht_+tp(s?)\b`)
	bracketDotRe   = regexp.MustCompile(`\s*(?:\[\.\]|\(\.\)|\{\.\})\s*`)
	wordedDotRe    = regexp.MustCompile(`(?i)\s*(?:\[dot\]|\(dot\)|_dot_|-dot-)\s*`)
	spelledDotRe   = regexp.MustCompile(`(?i)(\w)\s+dot\s+(\w)`)
	escapedSlashRe = regexp.MustCompile(`\\/`)
	halfProtoRe    = regexp.MustCompile(`(?i)\b(https?):/([^/\s])`)

	// Spans protected from digit leet-folding.
	protectedSpanRes = []*regexp.Regexp{
		regexp.MustCompile(`https?://[^\s]+`),
		regexp.MustCompile(`\+?\d{10,}`),
		regexp.MustCompile(`\b\d{4}-\d{4}-\d{4,}\b`),
		regexp.MustCompile(`\b\d{8,}\b`),
	}
)

// Canonicalize applies the full pipeline. Stage failures degrade to
// leaving the input unchanged for that stage; the function never fails.
func (c *Canonicalizer) Canonicalize(ctx context.Context, raw string) string {
	if raw == "" {
		return ""
	}
	text := NormalizeUnicode(raw)
	text = RemoveZeroWidth(text)
	text = RemoveControlChars(text)
	text = FoldHomoglyphs(text)
	text = DecodeHexPayloads(text)
	text = FoldLeetspeak(text)
	text = CollapseCharSpacing(text)
	text = DeobfuscateURLs(text)
	text = c.expandShortened(ctx, text)
	text = CollapseWhitespace(text)
	return strings.ToLower(text)
}

// CanonicalizeLight applies only the shape-preserving stages (unicode,
// zero-width, control chars, whitespace). Digits, case and `@` survive so
// artifact extraction can run its own targeted de-obfuscation.
func CanonicalizeLight(raw string) string {
	if raw == "" {
		return ""
	}
	text := NormalizeUnicode(raw)
	text = RemoveZeroWidth(text)
	text = RemoveControlChars(text)
	return CollapseWhitespace(text)
}

// Report returns every stage's intermediate output for diagnostics.
func (c *Canonicalizer) Report(ctx context.Context, raw string) map[string]string {
	report := map[string]string{"original": raw}
	text := NormalizeUnicode(raw)
	report["stage1_unicode"] = text
	text = RemoveZeroWidth(text)
	report["stage2_zero_width"] = text
	text = RemoveControlChars(text)
	report["stage3_control_chars"] = text
	text = FoldHomoglyphs(text)
	report["stage4_homoglyphs"] = text
	text = DecodeHexPayloads(text)
	report["stage5_hex_decode"] = text
	text = FoldLeetspeak(text)
	report["stage6_leetspeak"] = text
	text = CollapseCharSpacing(text)
	report["stage7_char_spacing"] = text
	text = DeobfuscateURLs(text)
	report["stage8_urls"] = text
	text = c.expandShortened(ctx, text)
	report["stage9_expanded"] = text
	text = CollapseWhitespace(text)
	report["stage10_whitespace"] = text
	report["stage11_final"] = strings.ToLower(text)
	return report
}

// NormalizeUnicode applies NFKC compatibility normalization, folding
// ligatures, fullwidth forms and styled mathematical letters.
func NormalizeUnicode(text string) string {
	return norm.NFKC.String(text)
}

// RemoveZeroWidth strips invisible characters used to split keywords.
func RemoveZeroWidth(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if _, drop := zeroWidthRunes[r]; drop {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RemoveControlChars drops non-printable control characters, preserving
// tab, newline and carriage return.
func RemoveControlChars(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FoldHomoglyphs maps lookalike Cyrillic and Greek letters to Latin and
// folds Devanagari nukta variants.
func FoldHomoglyphs(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if latin, ok := homoglyphRunes[r]; ok {
			b.WriteRune(latin)
			continue
		}
		if r == devanagariNukta {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DecodeHexPayloads replaces long hex runs that decode to URL-shaped text.
// Substitution is conservative: the decoded bytes must be printable ASCII
// and contain a recognizable URL or domain pattern, otherwise the original
// token is kept.
func DecodeHexPayloads(text string) string {
	return hexPayloadRe.ReplaceAllStringFunc(text, func(tok string) string {
		if len(tok)%2 != 0 {
			return tok
		}
		decoded, err := hex.DecodeString(tok)
		if err != nil {
			return tok
		}
		for _, c := range decoded {
			if c < 0x20 || c > 0x7e {
				return tok
			}
		}
		s := string(decoded)
		if !urlShapeRe.MatchString(s) {
			return tok
		}
		return s
	})
}

// FoldLeetspeak reverses symbol and digit substitutions. Symbols are
// always folded; digits only when adjacent to a letter, and never inside
// protected spans (phones, long digit runs, URLs, card-shaped runs).
func FoldLeetspeak(text string) string {
	guarded, spans := protectSpans(text)
	runes := []rune(guarded)
	out := make([]rune, len(runes))
	for idx, r := range runes {
		if sub, ok := leetSymbolRunes[r]; ok {
			out[idx] = sub
			continue
		}
		if sub, ok := leetDigitRunes[r]; ok {
			// Check the already-folded left neighbor so runs like "33"
			// in "fr33" fold completely.
			prevLetter := idx > 0 && unicode.IsLetter(out[idx-1])
			nextLetter := idx+1 < len(runes) && unicode.IsLetter(runes[idx+1])
			if prevLetter || nextLetter {
				out[idx] = sub
				continue
			}
		}
		out[idx] = r
	}
	return restoreSpans(string(out), spans)
}

// protectSpans replaces spans that must survive folding with placeholder
// tokens containing no letters or foldable symbols.
func protectSpans(text string) (string, []string) {
	var spans []string
	for _, re := range protectedSpanRes {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			spans = append(spans, m)
			return fmt.Sprintf("\x00%d\x00", len(spans)-1)
		})
	}
	return text, spans
}

func restoreSpans(text string, spans []string) string {
	for i := len(spans) - 1; i >= 0; i-- {
		text = strings.Replace(text, fmt.Sprintf("\x00%d\x00", i), spans[i], 1)
	}
	return text
}

// CollapseCharSpacing joins runs of 4+ space-separated single-character
// tokens ("h t t p : / / x . c o m") into one token. A run qualifies when
// at least 70% of its tokens are single characters, so normal short words
// are untouched.
func CollapseCharSpacing(text string) string {
	tokens := strings.Split(text, " ")
	var out []string
	i := 0
	for i < len(tokens) {
		if len([]rune(tokens[i])) > 2 || tokens[i] == "" {
			out = append(out, tokens[i])
			i++
			continue
		}
		j := i
		single := 0
		for j < len(tokens) && tokens[j] != "" && len([]rune(tokens[j])) <= 2 {
			if len([]rune(tokens[j])) == 1 {
				single++
			}
			j++
		}
		run := tokens[i:j]
		if len(run) >= 4 && float64(single) >= 0.7*float64(len(run)) {
			out = append(out, strings.Join(run, ""))
		} else {
			out = append(out, run...)
		}
		i = j
	}
	return strings.Join(out, " ")
}

// DeobfuscateURLs restores mangled protocols and dot substitutions.
func DeobfuscateURLs(text string) string {
	text = hxxpRe.ReplaceAllString(text, "http$1")
	text = starProtoRe.ReplaceAllString(text, "http$1")
	text = underProtoRe.ReplaceAllString(text, "http$1")
	text = bracketDotRe.ReplaceAllString(text, ".")
	text = wordedDotRe.ReplaceAllString(text, ".")
	text = spelledDotRe.ReplaceAllString(text, "$1.$2")
	text = escapedSlashRe.ReplaceAllString(text, "/")
	text = halfProtoRe.ReplaceAllString(text, "$1://$2")
	return text
}

// CollapseWhitespace folds all whitespace runs to single spaces and trims.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// expandShortened resolves any shortener-hosted URLs in the text via the
// configured expander. Network failures leave URLs unchanged.
func (c *Canonicalizer) expandShortened(ctx context.Context, text string) string {
	if c == nil || c.expander == nil {
		return text
	}
	matches := urlRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return text
	}
	seen := map[string]struct{}{}
	var candidates []string
	for _, m := range matches {
		u := strings.TrimRight(m, ".,;:!?)")
		host := bareHost(u)
		if !IsShortenerHost(host) {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		candidates = append(candidates, u)
	}
	if len(candidates) == 0 {
		return text
	}
	expanded := c.expander.ExpandAll(ctx, candidates)
	for short, long := range expanded {
		if long != "" && long != short {
			text = strings.ReplaceAll(text, short, long)
		}
	}
	return text
}

// bareHost returns the lowercased host portion of a URL-ish string,
// without scheme, credentials, port or path.
func bareHost(u string) string {
	s := strings.ToLower(u)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	for _, sep := range []string{"/", "?", "#"} {
		if i := strings.Index(s, sep); i >= 0 {
			s = s[:i]
		}
	}
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}
