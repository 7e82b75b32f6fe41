package intel

import (
	"context"
	"encoding/json"
	"strings"

	"baitlab/internal/domain/models"
	"baitlab/internal/domain/services/ai"
	"baitlab/pkg/logger"
)

const extractionSystemPrompt = `You are an intelligence extraction assistant for a honeypot system. Your job is to extract EVERY piece of useful information from scammer messages, both the standard predefined fields AND any other information the scammer provides.

Extract these PREDEFINED fields:
1. upiIds: UPI payment IDs (format: xyz@bank). Examples: scam@paytm, fraud@ybl.
2. phoneNumbers: phone numbers, 10-12 digits, any format (spaced, dashed, words).
3. phishingLinks: ONLY actual web URLs (http/https/www/hxxp or domain[.]tld). Do NOT put UPI IDs or email addresses here.
4. bankAccounts: bank account numbers, 8-16 digits.
5. ifscCodes: Indian bank branch codes, 4 uppercase letters + 0 + 6 alphanumeric chars, e.g. SBIN0001234.
6. names: ONLY actual human person names (e.g. "Rajesh Kumar", "Priya Sharma"). Do NOT include titles alone, org names, or roles. If a title accompanies a name, extract only the name part ("Officer Vikram Singh" becomes "Vikram Singh").
7. emails: standard email addresses (user@domain.tld).
8. caseIds: case/reference/FIR/complaint numbers (e.g. CASE-12345, REF-20230001, FIR/123/2024).
9. policyNumbers: insurance/policy numbers (e.g. POL-123456, LIC12345678).
10. orderNumbers: order/shipment/tracking numbers (e.g. ORD-12345, AWB1234567890).

AND extract ALL OTHER useful information into the "additionalIntel" object:
- Use descriptive snake_case keys for each type of information you find.
- Examples of what to capture: organization_names, locations, amounts, dates, department_names, job_titles, threat_descriptions, promised_actions, website_names, app_names, government_scheme_names, loan_details, prize_details, invoice_numbers, customer_ids, employee_ids, vehicle_numbers, aadhaar_hints, pan_hints, etc.
- Each key's value must be an array of strings.
- If nothing extra is found, set "additionalIntel" to {}.

Return ONLY valid JSON with exactly these keys: upiIds, phoneNumbers, phishingLinks, bankAccounts, ifscCodes, names, emails, caseIds, policyNumbers, orderNumbers, additionalIntel. All list fields must be arrays of strings. Extract ALL instances, even if obfuscated.`

// rawExtraction tolerates additionalIntel values of any JSON shape; the
// model occasionally returns bare strings instead of arrays.
type rawExtraction struct {
	UPIIDs          []string                   `json:"upiIds"`
	PhoneNumbers    []string                   `json:"phoneNumbers"`
	PhishingLinks   []string                   `json:"phishingLinks"`
	BankAccounts    []string                   `json:"bankAccounts"`
	IFSCCodes       []string                   `json:"ifscCodes"`
	Names           []string                   `json:"names"`
	Emails          []string                   `json:"emails"`
	CaseIDs         []string                   `json:"caseIds"`
	PolicyNumbers   []string                   `json:"policyNumbers"`
	OrderNumbers    []string                   `json:"orderNumbers"`
	AdditionalIntel map[string]json.RawMessage `json:"additionalIntel"`
}

// ExtractLLM is the third strategy: context-aware extraction through
// the model. Names come exclusively from here since pattern-based name
// extraction produces too many false positives. Failures return an
// empty result, never an error, so the merge always runs.
func ExtractLLM(ctx context.Context, client *ai.Client, text string, log *logger.Logger) *models.Intel {
	empty := models.NewIntel()
	if client == nil || !client.Available() {
		return empty
	}

	content, err := client.Chat(ctx, extractionSystemPrompt,
		[]ai.ChatMessage{{Role: "user", Content: "Extract ALL intelligence from this scammer message:\n\n" + text + "\n\nReturn JSON only."}},
		ai.ChatOptions{Temperature: 0.1, MaxTokens: 400})
	if err != nil {
		log.Warn().Err(err).Msg("LLM extraction failed")
		return empty
	}

	payload, err := ai.ExtractJSON(content)
	if err != nil {
		log.Warn().Err(err).Msg("LLM extraction returned no JSON")
		return empty
	}
	var raw rawExtraction
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		log.Warn().Err(err).Msg("LLM extraction returned invalid JSON")
		return empty
	}

	result := models.NewIntel()
	result.UPIIDs = nonEmpty(raw.UPIIDs)
	result.PhoneNumbers = nonEmpty(raw.PhoneNumbers)
	result.PhishingLinks = nonEmpty(raw.PhishingLinks)
	result.BankAccounts = nonEmpty(raw.BankAccounts)
	result.IFSCCodes = nonEmpty(raw.IFSCCodes)
	result.Names = nonEmpty(raw.Names)
	result.Emails = nonEmpty(raw.Emails)
	result.CaseIDs = nonEmpty(raw.CaseIDs)
	result.PolicyNumbers = nonEmpty(raw.PolicyNumbers)
	result.OrderNumbers = nonEmpty(raw.OrderNumbers)

	for key, value := range raw.AdditionalIntel {
		values := coerceStringList(value)
		if len(values) > 0 {
			result.AdditionalIntel[key] = values
		}
	}
	validateExtraction(result, text)
	return result
}

var (
	obfuscationRepl = strings.NewReplacer("[.]", ".", "(.)", ".", "{.}", ".", "[dot]", ".", "(dot)", ".", " dot ", ".", "hxxp", "http")
	separatorRepl   = strings.NewReplacer(" ", "", "-", "", "/", "", ".", "", "_", "", ",", "")
)

// validateExtraction discards model output that cannot be traced back to
// the source text. A hallucinated artifact is worse than a missed one:
// the direct and adversarial strategies will still catch anything real.
// Digit fields must reappear digit-for-digit, links by their host, and
// everything else as a case-insensitive literal substring (separators
// ignored, since the model likes to reformat identifiers).
func validateExtraction(result *models.Intel, source string) {
	lower := strings.ToLower(source)
	plain := obfuscationRepl.Replace(lower)
	squashed := separatorRepl.Replace(plain)
	digits := nonDigitRe.ReplaceAllString(source, "")

	hasText := func(v string) bool {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			return false
		}
		return strings.Contains(lower, v) ||
			strings.Contains(plain, v) ||
			strings.Contains(squashed, separatorRepl.Replace(v))
	}
	hasDigits := func(v string) bool {
		d := nonDigitRe.ReplaceAllString(v, "")
		if d == "" {
			return false
		}
		if strings.Contains(digits, d) {
			return true
		}
		// A country-prefixed number may appear bare in the text.
		return strings.HasPrefix(d, "91") && len(d) == 12 && strings.Contains(digits, d[2:])
	}
	hasHost := func(v string) bool {
		host := strings.ToLower(strings.TrimSpace(v))
		host = schemeStripRe.ReplaceAllString(host, "")
		host = strings.TrimPrefix(host, "www.")
		for _, sep := range []string{"/", "?", "#"} {
			if i := strings.Index(host, sep); i >= 0 {
				host = host[:i]
			}
		}
		return host != "" && (strings.Contains(plain, host) || strings.Contains(squashed, separatorRepl.Replace(host)))
	}

	result.UPIIDs = keepTraceable(result.UPIIDs, hasText)
	result.PhoneNumbers = keepTraceable(result.PhoneNumbers, hasDigits)
	result.PhishingLinks = keepTraceable(result.PhishingLinks, hasHost)
	result.BankAccounts = keepTraceable(result.BankAccounts, hasDigits)
	result.IFSCCodes = keepTraceable(result.IFSCCodes, hasText)
	result.Names = keepTraceable(result.Names, hasText)
	result.Emails = keepTraceable(result.Emails, hasText)
	result.CaseIDs = keepTraceable(result.CaseIDs, hasText)
	result.PolicyNumbers = keepTraceable(result.PolicyNumbers, hasText)
	result.OrderNumbers = keepTraceable(result.OrderNumbers, hasText)
}

func keepTraceable(values []string, ok func(string) bool) []string {
	kept := values[:0]
	for _, v := range values {
		if ok(v) {
			kept = append(kept, v)
		}
	}
	return kept
}

func nonEmpty(in []string) []string {
	out := []string{}
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// coerceStringList accepts a JSON array of strings, a bare string, or
// anything else stringifiable.
func coerceStringList(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return nonEmpty(list)
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return nonEmpty([]string{single})
	}
	var anyVal any
	if err := json.Unmarshal(raw, &anyVal); err == nil && anyVal != nil {
		if b, err := json.Marshal(anyVal); err == nil {
			return []string{string(b)}
		}
	}
	return nil
}
