package intel

import (
	"regexp"
	"strings"

	"baitlab/internal/domain/models"
)

var (
	schemeStripRe = regexp.MustCompile(`^https?://`)
)

// NormalizePhone strips everything but digits and drops a leading 91
// country code from 12-digit numbers.
func NormalizePhone(phone string) string {
	digits := nonDigitRe.ReplaceAllString(phone, "")
	if strings.HasPrefix(digits, "91") && len(digits) == 12 {
		return digits[2:]
	}
	return digits
}

// NormalizeURL lowercases, trims trailing slashes, collapses doubled
// schemes left behind by de-obfuscation and ensures a scheme.
func NormalizeURL(url string) string {
	url = strings.TrimRight(strings.ToLower(strings.TrimSpace(url)), "/")
	for {
		rest := schemeStripRe.ReplaceAllString(url, "")
		if !schemeStripRe.MatchString(rest) {
			break
		}
		url = rest
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return url
}

// Merge combines strategy results in order, normalizing and
// deduplicating each field. Earlier sources win on first occurrence, so
// merging is idempotent and insensitive to duplicate values across
// strategies.
func Merge(sources ...*models.Intel) *models.Intel {
	merged := models.NewIntel()

	seenUPIs := make(map[string]struct{})
	seenPhones := make(map[string]struct{})
	seenURLs := make(map[string]struct{})
	seenAccounts := make(map[string]struct{})
	seenNames := make(map[string]struct{})
	seenEmails := make(map[string]struct{})
	seenCaseIDs := make(map[string]struct{})
	seenPolicies := make(map[string]struct{})
	seenOrders := make(map[string]struct{})
	seenIFSC := make(map[string]struct{})

	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, upi := range src.UPIIDs {
			norm := strings.ToLower(strings.TrimSpace(upi))
			if !strings.Contains(norm, "@") {
				continue
			}
			if _, dup := seenUPIs[norm]; !dup {
				seenUPIs[norm] = struct{}{}
				merged.UPIIDs = append(merged.UPIIDs, upi)
			}
		}
		for _, phone := range src.PhoneNumbers {
			norm := NormalizePhone(phone)
			if len(norm) != 10 {
				continue
			}
			if _, dup := seenPhones[norm]; !dup {
				seenPhones[norm] = struct{}{}
				merged.PhoneNumbers = append(merged.PhoneNumbers, norm)
			}
		}
		for _, url := range src.PhishingLinks {
			// Anything with @ is an email or payment handle posing as
			// a link.
			if strings.Contains(url, "@") {
				continue
			}
			norm := NormalizeURL(url)
			if _, dup := seenURLs[norm]; !dup {
				seenURLs[norm] = struct{}{}
				merged.PhishingLinks = append(merged.PhishingLinks, norm)
			}
		}
		for _, account := range src.BankAccounts {
			norm := nonDigitRe.ReplaceAllString(account, "")
			// 10-digit runs are phones, not accounts.
			if len(norm) < 8 || len(norm) > 16 || len(norm) == 10 {
				continue
			}
			if _, dup := seenAccounts[norm]; !dup {
				seenAccounts[norm] = struct{}{}
				merged.BankAccounts = append(merged.BankAccounts, norm)
			}
		}
		for _, name := range src.Names {
			trimmed := strings.TrimSpace(name)
			key := strings.ToLower(trimmed)
			if len(key) < 2 {
				continue
			}
			if _, dup := seenNames[key]; !dup {
				seenNames[key] = struct{}{}
				merged.Names = append(merged.Names, titleCaseName(trimmed))
			}
		}
		for _, email := range src.Emails {
			norm := strings.ToLower(strings.TrimSpace(email))
			if norm == "" || !strings.Contains(norm, "@") || !strings.Contains(norm, ".") {
				continue
			}
			if _, dup := seenEmails[norm]; !dup {
				seenEmails[norm] = struct{}{}
				merged.Emails = append(merged.Emails, norm)
			}
		}
		for _, cid := range src.CaseIDs {
			trimmed := strings.TrimSpace(cid)
			key := strings.ToUpper(trimmed)
			if key == "" {
				continue
			}
			if _, dup := seenCaseIDs[key]; !dup {
				seenCaseIDs[key] = struct{}{}
				merged.CaseIDs = append(merged.CaseIDs, trimmed)
			}
		}
		for _, pol := range src.PolicyNumbers {
			trimmed := strings.TrimSpace(pol)
			key := strings.ToUpper(trimmed)
			if key == "" {
				continue
			}
			if _, dup := seenPolicies[key]; !dup {
				seenPolicies[key] = struct{}{}
				merged.PolicyNumbers = append(merged.PolicyNumbers, trimmed)
			}
		}
		for _, order := range src.OrderNumbers {
			trimmed := strings.TrimSpace(order)
			key := strings.ToUpper(trimmed)
			if key == "" {
				continue
			}
			if _, dup := seenOrders[key]; !dup {
				seenOrders[key] = struct{}{}
				merged.OrderNumbers = append(merged.OrderNumbers, trimmed)
			}
		}
		for _, code := range src.IFSCCodes {
			norm := strings.ToUpper(strings.TrimSpace(code))
			if !ifscExactRe.MatchString(norm) {
				continue
			}
			if _, dup := seenIFSC[norm]; !dup {
				seenIFSC[norm] = struct{}{}
				merged.IFSCCodes = append(merged.IFSCCodes, norm)
			}
		}
		for key, values := range src.AdditionalIntel {
			existing := merged.AdditionalIntel[key]
			seen := make(map[string]struct{}, len(existing))
			for _, v := range existing {
				seen[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
			}
			for _, v := range values {
				trimmed := strings.TrimSpace(v)
				lower := strings.ToLower(trimmed)
				if trimmed == "" {
					continue
				}
				if _, dup := seen[lower]; !dup {
					seen[lower] = struct{}{}
					existing = append(existing, trimmed)
				}
			}
			if len(existing) > 0 {
				merged.AdditionalIntel[key] = existing
			}
		}
	}

	merged.PhishingLinks = dropHandleDomains(merged)
	return merged
}

var ifscExactRe = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

// dropHandleDomains removes phishing-link entries that are really just
// the domain of a captured email or payment handle, e.g. http://gmail.com
// appearing because user@gmail.com matched the spaced-URL pattern.
func dropHandleDomains(merged *models.Intel) []string {
	domains := make(map[string]struct{})
	for _, upi := range merged.UPIIDs {
		if at := strings.LastIndex(upi, "@"); at >= 0 {
			domains[strings.ToLower(strings.TrimSpace(upi[at+1:]))] = struct{}{}
		}
	}
	for _, email := range merged.Emails {
		if at := strings.LastIndex(email, "@"); at >= 0 {
			domains[strings.ToLower(strings.TrimSpace(email[at+1:]))] = struct{}{}
		}
	}
	if len(domains) == 0 {
		return merged.PhishingLinks
	}

	kept := []string{}
	for _, url := range merged.PhishingLinks {
		stripped := strings.ToLower(strings.TrimRight(schemeStripRe.ReplaceAllString(url, ""), "/"))
		matched := false
		for d := range domains {
			if stripped == d || strings.HasSuffix(stripped, "."+d) {
				matched = true
				break
			}
		}
		if !matched {
			kept = append(kept, url)
		}
	}
	return kept
}

func titleCaseName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
