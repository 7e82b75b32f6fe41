package intel

import (
	"regexp"
	"strings"

	"baitlab/internal/domain/models"
)

var (
	hxxpURLRe    = regexp.MustCompile(`hxxps?://[\w\-.\[\]()]+`)
	bracketURLRe = regexp.MustCompile(`https?://[\w\-]+(?:\[\.\]|\(\.\)|\[dot\])[\w\-.\[\]()]+`)
	atDomainRe   = regexp.MustCompile(`@[\w.\-]+`)
	spelledURLRe = regexp.MustCompile(`(?i)([\w\-]+)\s+dot\s+(\w+)(?:\s+(?:slash|/)\s+([\w\-]+))?`)
	spacedURLRe  = regexp.MustCompile(`([\w\-]+)\s*\.\s*(\w+)(?:\s*/\s*([\w\-]+))?`)

	singleSpacedDigitsRe = regexp.MustCompile(`(?:\d\s){9,}\d`)
	multiSpacedDigitsRe  = regexp.MustCompile(`\d{3,5}\s+\d{3,5}(?:\s+\d{2,5})*`)
	dashedDigitsRe       = regexp.MustCompile(`\d{3,5}-\d{3,5}(?:-\d{2,5})*`)
	commaDigitsRe        = regexp.MustCompile(`\d{3,5},\d{3,5}(?:,\d{2,5})*`)
	nonDigitRe           = regexp.MustCompile(`\D`)
)

var spacedTLDs = map[string]struct{}{
	"com": {}, "net": {}, "org": {}, "in": {}, "co": {}, "io": {}, "app": {},
}

var digitWords = map[string]string{
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
}

var (
	digitWordAlt   = `(?:zero|one|two|three|four|five|six|seven|eight|nine)`
	numberWordsRe  = regexp.MustCompile(digitWordAlt + `(?:[\s\-]+` + digitWordAlt + `){5,}`)
	singleWordRe   = regexp.MustCompile(digitWordAlt)
	deobfuscateRep = strings.NewReplacer("[.]", ".", "(.)", ".", "[dot]", ".")
)

// ExtractAdversarial is the second strategy: artifacts hidden behind
// evasion tricks that the direct patterns miss. It works on the raw
// text since the tricks themselves are the signal.
func ExtractAdversarial(raw string) *models.Intel {
	result := models.NewIntel()
	result.PhishingLinks = extractObfuscatedURLs(raw)
	result.PhoneNumbers = append(extractSplitNumbers(raw), extractNumberWords(raw)...)
	return result
}

// extractObfuscatedURLs recovers URLs written as hxxp://, with bracket
// dots, spelled out ("google dot com slash phish") or spaced
// ("example . com").
func extractObfuscatedURLs(text string) []string {
	var urls []string
	lower := strings.ToLower(text)

	for _, u := range hxxpURLRe.FindAllString(lower, -1) {
		u = strings.Replace(u, "hxxps://", "https://", 1)
		u = strings.Replace(u, "hxxp://", "http://", 1)
		urls = append(urls, deobfuscateRep.Replace(u))
	}
	for _, u := range bracketURLRe.FindAllString(lower, -1) {
		urls = append(urls, deobfuscateRep.Replace(u))
	}

	// Mask @-domains first so user@gmail.com does not leak "gmail.com"
	// into the spelled and spaced patterns.
	safe := atDomainRe.ReplaceAllString(text, "@MASKED")
	safeLower := atDomainRe.ReplaceAllString(lower, "@MASKED")

	for _, m := range spelledURLRe.FindAllStringSubmatch(safe, -1) {
		url := "http://" + m[1] + "." + m[2]
		if m[3] != "" {
			url += "/" + m[3]
		}
		urls = append(urls, strings.ToLower(url))
	}
	for _, m := range spacedURLRe.FindAllStringSubmatch(safeLower, -1) {
		domain, tld, path := m[1], m[2], m[3]
		if len(domain) <= 2 {
			continue
		}
		if _, ok := spacedTLDs[tld]; !ok {
			continue
		}
		url := "http://" + domain + "." + tld
		if path != "" {
			url += "/" + path
		}
		urls = append(urls, url)
	}
	return urls
}

// extractSplitNumbers finds phone numbers broken up with spaces, dashes
// or commas.
func extractSplitNumbers(text string) []string {
	seen := make(map[string]struct{})
	var numbers []string

	collect := func(matches []string, sep string, minLen, maxLen int) {
		for _, m := range matches {
			cleaned := m
			if sep == "" {
				cleaned = nonDigitRe.ReplaceAllString(m, "")
			} else {
				cleaned = strings.ReplaceAll(cleaned, sep, "")
				cleaned = nonDigitRe.ReplaceAllString(cleaned, "")
			}
			if len(cleaned) < minLen || len(cleaned) > maxLen {
				continue
			}
			if _, dup := seen[cleaned]; !dup {
				seen[cleaned] = struct{}{}
				numbers = append(numbers, cleaned)
			}
		}
	}

	collect(singleSpacedDigitsRe.FindAllString(text, -1), "", 10, 10)
	collect(multiSpacedDigitsRe.FindAllString(text, -1), "", 10, 12)
	collect(dashedDigitsRe.FindAllString(text, -1), "-", 10, 12)
	collect(commaDigitsRe.FindAllString(text, -1), ",", 10, 12)
	return numbers
}

// extractNumberWords converts "nine eight seven six five four three two
// one zero" style sequences into digit strings.
func extractNumberWords(text string) []string {
	var numbers []string
	lower := strings.ToLower(text)
	for _, m := range numberWordsRe.FindAllString(lower, -1) {
		var digits strings.Builder
		for _, w := range singleWordRe.FindAllString(m, -1) {
			digits.WriteString(digitWords[w])
		}
		if n := digits.Len(); n >= 10 && n <= 12 {
			numbers = append(numbers, digits.String())
		}
	}
	return numbers
}
