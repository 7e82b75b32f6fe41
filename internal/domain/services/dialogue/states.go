package dialogue

import (
	"fmt"
	"strings"

	"baitlab/internal/domain/models"
)

// stateConfig defines per-state goals, extraction targets, reply
// templates, and the turn budget before the machine moves on.
type stateConfig struct {
	Goal      string
	Targets   []string
	Responses []string
	MaxTurns  int
}

var stateConfigs = map[models.ConversationState]stateConfig{
	models.StateInit: {
		Goal:    "Get the caller's name, organization, and a case or reference number",
		Targets: []string{models.FieldNames, models.FieldCaseIDs, models.FieldPhoneNumbers},
		Responses: []string{
			"Hello? Who is this calling? Can you tell me your full name please?",
			"I didn't catch that. What is your name and which organization are you from?",
			"Sorry, what is the reference number or case ID for this matter?",
			"Can you give me a number I can call back on to verify this?",
			"What is your employee ID? And what department do you work in?",
			"I need to note this down. What is the official case number you are referring to?",
		},
		MaxTurns: 1,
	},
	models.StateProbeReason: {
		Goal:    "Get their name, case number, callback phone number, and email for the official notice",
		Targets: []string{models.FieldNames, models.FieldCaseIDs, models.FieldPhoneNumbers, models.FieldEmails},
		Responses: []string{
			"What is the case number or reference ID for this issue?",
			"Can you tell me your full name and your employee ID?",
			"What phone number can I call back on to verify this with your office?",
			"Can you send me the official notice? What is the email address it will come from?",
			"What is the direct landline number for your department?",
			"I want to note your details. What is your name and official email ID?",
			"Is there a complaint number or FIR number I should know about?",
			"Which policy or order number is this related to? I have several.",
		},
		MaxTurns: 2,
	},
	models.StateProbePayment: {
		Goal:    "Get the UPI ID, bank account number, beneficiary name, and payment reference number",
		Targets: []string{models.FieldUPIIDs, models.FieldBankAccounts, models.FieldNames, models.FieldCaseIDs},
		Responses: []string{
			"Okay, what is the UPI ID I should send the money to?",
			"What is the full bank account number and the IFSC code?",
			"Whose name is the UPI ID registered under?",
			"Can you tell me the account holder's full name for the bank transfer?",
			"What is the payment reference number I should mention while transferring?",
			"What is the beneficiary name that will show when I enter this account number?",
			"Which bank does this account belong to? What is the branch name?",
			"Can you also give me your phone number in case the payment fails?",
			"What receipt or reference number will I get after the payment?",
			"What is the exact UPI ID? I want to make sure I send to the right place.",
		},
		MaxTurns: 2,
	},
	models.StateProbeLink: {
		Goal:    "Get the exact URL, the email it was sent from, and any reference numbers",
		Targets: []string{models.FieldPhishingLinks, models.FieldEmails, models.FieldCaseIDs},
		Responses: []string{
			"Can you send me the link? I want to see the full URL.",
			"What is the exact website address I need to open?",
			"What is the exact URL? I need to copy it carefully.",
			"Can you email me the link instead? What is your official email address?",
			"I didn't receive the link. Can you send it again?",
			"What email address will the link come from? I want to check my inbox.",
			"Before I click, what is the reference number I should enter on the website?",
			"Is there a case ID or order number I need to enter on this website?",
			"Can you share your email ID so I can write to you if the link doesn't work?",
			"What is the full website address? And what is the customer support number on it?",
		},
		MaxTurns: 2,
	},
	models.StateStall: {
		Goal:    "Get callback phone numbers, supervisor names, email addresses, and case reference numbers",
		Targets: []string{models.FieldPhoneNumbers, models.FieldNames, models.FieldEmails, models.FieldCaseIDs},
		Responses: []string{
			"Let me check with someone first. What number can I call you back on?",
			"What is your supervisor's name? Can I speak to them?",
			"Can you give me the official customer care phone number to verify?",
			"Can you email me the details? What is your official email address?",
			"I need to think about this. What is the case reference number again?",
			"What is your direct phone number? I will call you back in 10 minutes.",
			"My son wants to verify. Can you give me your full name and a callback number?",
			"What is the toll-free number for {entity}? I want to confirm.",
			"Can you share the complaint number or ticket ID so I can track this?",
			"What is your supervisor's name and direct number? I want to verify with them.",
		},
		MaxTurns: 1,
	},
	models.StateConfirmDetails: {
		Goal:    "Extract details not yet provided: email, case ID, policy number, order number",
		Targets: []string{models.FieldEmails, models.FieldCaseIDs, models.FieldPolicyNumbers, models.FieldOrderNumbers},
		Responses: []string{
			"Okay I have the payment details. But what is the case reference number for this?",
			"Before I send the money, can you give me your official email address for my records?",
			"What is the policy number or order number linked to this transaction?",
			"I want to keep a record. What is the complaint ID or ticket number?",
			"Also, what email will the receipt come from after I pay?",
			"What is the official tracking number or order ID for this?",
			"I need to file this with my bank. What is the FIR or case number?",
			"Can you give me the customer care email address along with this?",
			"My son is asking for the insurance or policy number. What is it?",
			"What is the official reference ID I should keep for this entire process?",
		},
		MaxTurns: 1,
	},
	models.StateEscalate: {
		Goal:    "Get phone numbers, supervisor names, email addresses, and any remaining reference numbers",
		Targets: []string{models.FieldPhoneNumbers, models.FieldNames, models.FieldEmails, models.FieldCaseIDs, models.FieldOrderNumbers, models.FieldPolicyNumbers},
		Responses: []string{
			"I want to speak to your supervisor. What is their name and phone number?",
			"What is the main helpline phone number I can call?",
			"My son is asking for your full name and email address. Can you provide?",
			"What is the official customer care number for {entity}?",
			"Can you give me your manager's name and direct phone number?",
			"What is the FIR number or police complaint number for this case?",
			"I need your full name, phone number, and email for my records.",
			"What is the policy number or order number related to my case?",
			"Can you give me an alternate phone number to reach your department?",
			"What is the tracking number or order ID I should use to check status?",
		},
		MaxTurns: 3,
	},
	models.StateClose: {
		Goal:    "Get a final phone number, name, email, and case reference before ending",
		Targets: []string{models.FieldPhoneNumbers, models.FieldNames, models.FieldEmails, models.FieldCaseIDs},
		Responses: []string{
			"Before I go, what phone number should I call if I have a problem?",
			"What is a good email address to reach you at if I need help later?",
			"Can you email me a confirmation? What is your email address?",
			"What reference number or case ID should I quote if I call back?",
			"One last thing, what is the confirmation number I will receive?",
			"What is the official complaint number I should keep for this?",
			"If there is an issue, what email should I write to?",
			"What is the customer care number for follow-up on this?",
			"What is the order number or policy number for my records?",
			"Alright. What is the toll-free number and the case ID I should keep?",
		},
		MaxTurns: 1,
	},
}

// Config returns the configuration for a state, defaulting to INIT for
// unknown values.
func Config(state models.ConversationState) stateConfig {
	if cfg, ok := stateConfigs[state]; ok {
		return cfg
	}
	return stateConfigs[models.StateInit]
}

// Universal fields probed regardless of scam type.
var universalFields = []string{models.FieldNames, models.FieldPhoneNumbers}

// scamTypeFields maps each narrative category to the extraction fields
// worth probing for. Fields outside the list never show up as missing,
// so the agent does not ask a delivery scammer for a policy number.
var scamTypeFields = map[models.NarrativeCategory][]string{
	models.NarrativeBankImpersonation:       {models.FieldUPIIDs, models.FieldBankAccounts, models.FieldPhishingLinks, models.FieldEmails, models.FieldCaseIDs},
	models.NarrativeGovernmentImpersonation: {models.FieldEmails, models.FieldCaseIDs, models.FieldPhishingLinks, models.FieldBankAccounts, models.FieldUPIIDs},
	models.NarrativeTechSupport:             {models.FieldPhishingLinks, models.FieldEmails, models.FieldCaseIDs, models.FieldUPIIDs},
	models.NarrativeLotteryPrize:            {models.FieldBankAccounts, models.FieldUPIIDs, models.FieldPhishingLinks, models.FieldEmails, models.FieldCaseIDs},
	models.NarrativeInvestmentFraud:         {models.FieldBankAccounts, models.FieldUPIIDs, models.FieldPhishingLinks, models.FieldEmails},
	models.NarrativeRomanceScam:             {models.FieldBankAccounts, models.FieldUPIIDs, models.FieldEmails, models.FieldPhishingLinks},
	models.NarrativeJobOfferScam:            {models.FieldEmails, models.FieldPhishingLinks, models.FieldBankAccounts, models.FieldUPIIDs},
	models.NarrativeDeliveryScam:            {models.FieldOrderNumbers, models.FieldPhishingLinks, models.FieldUPIIDs, models.FieldCaseIDs},
	models.NarrativeTaxRefund:               {models.FieldBankAccounts, models.FieldUPIIDs, models.FieldPhishingLinks, models.FieldEmails, models.FieldCaseIDs},
	models.NarrativeAccountVerification:     {models.FieldPhishingLinks, models.FieldEmails, models.FieldUPIIDs, models.FieldBankAccounts},
	models.NarrativeKYCUpdate:               {models.FieldPhishingLinks, models.FieldEmails, models.FieldUPIIDs, models.FieldBankAccounts},
	models.NarrativeLoanApproval:            {models.FieldBankAccounts, models.FieldUPIIDs, models.FieldPolicyNumbers, models.FieldEmails, models.FieldCaseIDs},
	models.NarrativeCustomClearance:         {models.FieldOrderNumbers, models.FieldCaseIDs, models.FieldUPIIDs, models.FieldBankAccounts},
	models.NarrativeInsuranceScam:           {models.FieldPolicyNumbers, models.FieldBankAccounts, models.FieldUPIIDs, models.FieldEmails, models.FieldCaseIDs},
}

// RelevantFields returns the extraction fields worth probing for the
// given scam type. Unknown types probe everything.
func RelevantFields(scamType models.NarrativeCategory) []string {
	typed, ok := scamTypeFields[scamType]
	if !ok {
		return models.IntelFieldKeys
	}
	out := make([]string, 0, len(universalFields)+len(typed))
	out = append(out, universalFields...)
	out = append(out, typed...)
	return out
}

// Keywords identifying which field each reply template targets.
var fieldTemplateKeywords = map[string][]string{
	models.FieldNames:         {"name", "full name", "supervisor", "manager", "officer", "beneficiary name", "account holder"},
	models.FieldPhoneNumbers:  {"phone", "number", "call back", "callback", "helpline", "landline", "toll-free", "direct number"},
	models.FieldUPIIDs:        {"upi", "upi id"},
	models.FieldBankAccounts:  {"account number", "bank account", "ifsc", "branch"},
	models.FieldEmails:        {"email", "email address", "email id"},
	models.FieldPhishingLinks: {"link", "url", "website"},
	models.FieldCaseIDs:       {"case", "reference", "fir", "complaint", "ticket", "case id"},
	models.FieldPolicyNumbers: {"policy", "insurance"},
	models.FieldOrderNumbers:  {"order", "tracking", "awb"},
}

var fieldLabels = map[string]string{
	models.FieldNames:         "Names",
	models.FieldPhoneNumbers:  "Phone numbers",
	models.FieldUPIIDs:        "UPI IDs",
	models.FieldBankAccounts:  "Bank account numbers",
	models.FieldEmails:        "Email addresses",
	models.FieldPhishingLinks: "URLs / links",
	models.FieldCaseIDs:       "Case / reference IDs",
	models.FieldPolicyNumbers: "Policy numbers",
	models.FieldOrderNumbers:  "Order / tracking numbers",
}

// askedFieldChecks is ordered most-specific first so "upi id" wins over
// the generic "number" keywords.
var askedFieldChecks = []struct {
	field    string
	keywords []string
}{
	{models.FieldUPIIDs, []string{"upi id", "upi address", "upi "}},
	{models.FieldBankAccounts, []string{"account number", "ifsc", "bank account"}},
	{models.FieldEmails, []string{"email address", "email id", "your email", "email "}},
	{models.FieldPhishingLinks, []string{"website address", "exact link", "full url", "the link", "the url", "web address"}},
	{models.FieldCaseIDs, []string{"case id", "case number", "reference number", "fir number", "complaint number", "ticket id", "ticket number"}},
	{models.FieldPolicyNumbers, []string{"policy number", "insurance number", "policy "}},
	{models.FieldOrderNumbers, []string{"order number", "tracking number", "awb"}},
	{models.FieldPhoneNumbers, []string{"phone number", "call back", "callback", "helpline", "landline", "contact number", "call you back"}},
	{models.FieldNames, []string{"your name", "full name", "your full name", "what is your name"}},
}

// InferAskedField detects which intel field a generated reply probes
// for, so the same question is never asked twice. Returns "" when the
// reply targets nothing identifiable.
func InferAskedField(reply string) string {
	lower := strings.ToLower(reply)
	for _, check := range askedFieldChecks {
		for _, kw := range check.keywords {
			if strings.Contains(lower, kw) {
				return check.field
			}
		}
	}
	return ""
}

// CollectedAndMissing splits the scam-type-relevant fields into those
// already holding a value and those neither collected nor asked about.
func CollectedAndMissing(in *models.Intel, scamType models.NarrativeCategory, askedFields map[string]int) (collected, missing []string) {
	for _, field := range RelevantFields(scamType) {
		if len(in.Field(field)) > 0 {
			collected = append(collected, field)
		} else if askedFields[field] < 1 {
			missing = append(missing, field)
		}
	}
	return collected, missing
}

// formatIntelSummary builds the collected/pending/missing briefing that
// goes into the persona prompt.
func formatIntelSummary(in *models.Intel, scamType models.NarrativeCategory, askedFields map[string]int) string {
	collected, missing := CollectedAndMissing(in, scamType, askedFields)
	var pending []string
	for _, field := range RelevantFields(scamType) {
		if len(in.Field(field)) == 0 && askedFields[field] >= 1 {
			pending = append(pending, field)
		}
	}

	var lines []string
	if scamType != models.NarrativeUnknown && scamType != "" {
		lines = append(lines,
			fmt.Sprintf("DETECTED SCAM TYPE: %s", scamTypeLabel(scamType)),
			"Only ask for information relevant to this type of scam.",
			"")
	}
	if len(collected) > 0 {
		lines = append(lines, "ALREADY COLLECTED (do NOT ask for these again):")
		for _, f := range collected {
			lines = append(lines, fmt.Sprintf("  - %s: %s", fieldLabels[f], strings.Join(in.Field(f), ", ")))
		}
	}
	if len(pending) > 0 {
		lines = append(lines, "ALREADY ASKED, do NOT ask these again (awaiting reply):")
		for _, f := range pending {
			lines = append(lines, "  - "+fieldLabels[f])
		}
	}
	if len(missing) > 0 {
		lines = append(lines, "NOT YET ASKED, pick ONE from this list next:")
		for _, f := range missing {
			lines = append(lines, "  - "+fieldLabels[f])
		}
	}
	if len(missing) == 0 && len(pending) == 0 {
		lines = append(lines, "ALL RELEVANT FIELDS COLLECTED OR ASKED. Wind down the conversation.")
	}
	return strings.Join(lines, "\n")
}

func scamTypeLabel(scamType models.NarrativeCategory) string {
	words := strings.Split(strings.ReplaceAll(string(scamType), "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// pickTemplate chooses a template targeting a missing field, rotating
// through the matches by turn so consecutive replies differ. Falls back
// to the turn-indexed template when nothing matches.
func pickTemplate(responses []string, missing []string, turnInState int) string {
	var matching []string
	for _, tmpl := range responses {
		lower := strings.ToLower(tmpl)
		for _, field := range missing {
			hit := false
			for _, kw := range fieldTemplateKeywords[field] {
				if strings.Contains(lower, kw) {
					hit = true
					break
				}
			}
			if hit {
				matching = append(matching, tmpl)
				break
			}
		}
	}
	if len(matching) > 0 {
		return matching[turnInState%len(matching)]
	}
	if turnInState < len(responses) {
		return responses[turnInState]
	}
	return responses[len(responses)-1]
}
