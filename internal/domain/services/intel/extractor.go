package intel

import (
	"regexp"
	"strings"

	"baitlab/internal/domain/models"
	"baitlab/internal/domain/services/textnorm"
)

// Known UPI handle suffixes. An @-token whose domain matches one of
// these (or has no dot at all) is a payment handle, not an email.
var upiSuffixes = map[string]struct{}{
	"paytm": {}, "ybl": {}, "okhdfcbank": {}, "okaxis": {}, "oksbi": {}, "okicici": {},
	"upi": {}, "sbi": {}, "hdfcbank": {}, "icici": {}, "axisbank": {}, "kotak": {},
	"pnb": {}, "gpay": {}, "phonepe": {}, "apl": {}, "ratn": {}, "barodampay": {},
	"ibl": {}, "axl": {}, "pingpay": {}, "freecharge": {}, "waaxis": {}, "wasbi": {},
	"wahdfcbank": {}, "waicici": {}, "abfspay": {}, "ikwik": {}, "jupiteraxis": {},
	"yesbankltd": {}, "yesbank": {}, "federal": {}, "rbl": {}, "dbs": {}, "indus": {},
	"citi": {}, "hsbc": {}, "sc": {}, "idbi": {}, "unionbank": {}, "boi": {}, "cnrb": {},
	"idfcbank": {}, "aubank": {}, "dlb": {}, "cub": {}, "kvb": {}, "tmb": {}, "jio": {},
	"slice": {}, "niyoicici": {}, "postbank": {}, "finobank": {}, "kkbk": {},
	"imobile": {}, "mahb": {}, "indianbank": {}, "psb": {}, "uboi": {}, "cbin": {},
}

var (
	atTokenRe     = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+`)
	emailDomainRe = regexp.MustCompile(`^[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	intlPhoneRe   = regexp.MustCompile(`\+?91\d{10}|\+\d{10,}`)
	digitRunRe    = regexp.MustCompile(`\d+`)
	httpsLinkRe   = regexp.MustCompile(`https?://\S+`)
	wwwLinkRe     = regexp.MustCompile(`\bwww\.\S+`)
	accountRe     = regexp.MustCompile(`\b\d{8,16}\b`)
	ifscRe        = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)
	caseIDRe      = regexp.MustCompile(`(?i)\b(?:CASE|REF|FIR|CRN|COMP|CR|TKT|INC|SR|TICKET)[\s\-/#]?\d{3,15}(?:/\d{2,4})?\b`)
	policyRe      = regexp.MustCompile(`(?i)\b(?:POL|POLICY|LIC|INS|PLAN)[\s\-/#]?\d{4,15}(?:/\d{2,4})?\b`)
	orderRe       = regexp.MustCompile(`(?i)\b(?:ORD|ORDER|AWB|TRACK|TRK|SHIP|PKG)[\s\-/#]?\d{4,15}\b`)
)

// ExtractDirect runs the fast pattern strategy over lightly normalized
// text. It never extracts names; that is left to the model, which can
// tell a person name from a sentence fragment.
func ExtractDirect(raw string) *models.Intel {
	text := textnorm.CanonicalizeLight(raw)
	result := models.NewIntel()

	// Classify every @-token as payment handle or email.
	for _, token := range atTokenRe.FindAllString(text, -1) {
		at := strings.LastIndex(token, "@")
		domain := token[at+1:]
		domainLower := strings.ToLower(domain)
		if _, known := upiSuffixes[domainLower]; known {
			result.UPIIDs = append(result.UPIIDs, token)
		} else if !strings.Contains(domain, ".") {
			result.UPIIDs = append(result.UPIIDs, token)
		} else if emailDomainRe.MatchString(domain) {
			result.Emails = append(result.Emails, token)
		}
	}
	// A token matched as both resolves to payment handle.
	if len(result.UPIIDs) > 0 && len(result.Emails) > 0 {
		upiSet := make(map[string]struct{}, len(result.UPIIDs))
		for _, u := range result.UPIIDs {
			upiSet[strings.ToLower(u)] = struct{}{}
		}
		kept := result.Emails[:0]
		for _, e := range result.Emails {
			if _, dup := upiSet[strings.ToLower(e)]; !dup {
				kept = append(kept, e)
			}
		}
		result.Emails = kept
	}

	result.PhoneNumbers = extractPhones(text)

	// URLs: scheme-prefixed plus bare www. links, trailing punctuation
	// trimmed, @-bearing tokens excluded.
	links := httpsLinkRe.FindAllString(text, -1)
	for _, idx := range wwwLinkRe.FindAllStringIndex(text, -1) {
		// Skip www. that is part of a path or an @-token.
		if idx[0] > 0 {
			prev := text[idx[0]-1]
			if prev == '/' || prev == '@' {
				continue
			}
		}
		links = append(links, text[idx[0]:idx[1]])
	}
	for _, link := range links {
		if strings.Contains(link, "@") {
			continue
		}
		result.PhishingLinks = append(result.PhishingLinks, strings.TrimRight(link, ".,;:!?)"))
	}

	// Account numbers, excluding 10-digit runs and anything already
	// captured as a phone. Country-prefixed phones leave a 12-digit run
	// that would otherwise double as an account.
	phoneDigits := make([]string, 0, len(result.PhoneNumbers))
	for _, p := range result.PhoneNumbers {
		phoneDigits = append(phoneDigits, nonDigitRe.ReplaceAllString(p, ""))
	}
	for _, acc := range accountRe.FindAllString(text, -1) {
		if len(acc) == 10 {
			continue
		}
		isPhone := false
		for _, pd := range phoneDigits {
			if strings.Contains(pd, acc) {
				isPhone = true
				break
			}
		}
		if !isPhone {
			result.BankAccounts = append(result.BankAccounts, acc)
		}
	}

	result.IFSCCodes = ifscRe.FindAllString(text, -1)

	for _, c := range caseIDRe.FindAllString(text, -1) {
		result.CaseIDs = append(result.CaseIDs, strings.TrimSpace(c))
	}
	for _, p := range policyRe.FindAllString(text, -1) {
		result.PolicyNumbers = append(result.PolicyNumbers, strings.TrimSpace(p))
	}
	for _, o := range orderRe.FindAllString(text, -1) {
		result.OrderNumbers = append(result.OrderNumbers, strings.TrimSpace(o))
	}

	return result
}

// extractPhones finds international numbers by pattern and bare
// 10-digit runs by scanning digit runs with exact length, which stands
// in for the lookaround assertions RE2 does not support.
func extractPhones(text string) []string {
	var phones []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			phones = append(phones, p)
		}
	}

	for _, m := range intlPhoneRe.FindAllString(text, -1) {
		add(m)
	}
	for _, idx := range digitRunRe.FindAllStringIndex(text, -1) {
		run := text[idx[0]:idx[1]]
		if len(run) != 10 {
			continue
		}
		// Reject runs embedded in a longer +-prefixed number already
		// captured above.
		if idx[0] > 0 && text[idx[0]-1] == '+' {
			continue
		}
		add(run)
	}
	return phones
}
