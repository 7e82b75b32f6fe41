package ai

import (
	"fmt"
	"regexp"
	"strings"

	"baitlab/internal/domain/models"
)

// Deterministic fallback rule sets. These reproduce the exact schema the
// LLM returns so downstream code only sees the Source tag differ.

type intentRule struct {
	label      models.IntentLabel
	patterns   []*regexp.Regexp
	confidence float64
}

var intentRules = []intentRule{
	{
		label: models.IntentCredentialHarvesting,
		patterns: compileAll(
			`\b(share|provide|send|enter|type|give).{0,25}(otp|cvv|pin|password|mpin|card.?number)\b`,
			`\b(otp|cvv|pin|password|mpin).{0,20}(share|send|provide|enter|give|tell)\b`,
			`\b(what is your|tell me your|enter your|share your).{0,20}(otp|pin|password|cvv)\b`,
		),
		confidence: 0.92,
	},
	{
		label: models.IntentTechSupportScam,
		patterns: compileAll(
			`\b(virus|malware|trojan|hacked|breached|compromised)\b`,
			`\b(remote access|anydesk|teamviewer|download .{0,15}(app|software))\b`,
			`\byour (computer|phone|device) .{0,20}(infected|at risk|compromised)\b`,
		),
		confidence: 0.83,
	},
	{
		label: models.IntentFinancialFraud,
		patterns: compileAll(
			`\b(won|winning|winner|lottery|prize|jackpot|lucky draw)\b`,
			`\b(invest|investment|guaranteed returns|double your money)\b`,
			`\b(inheritance|unclaimed funds|beneficiary)\b`,
		),
		confidence: 0.82,
	},
	{
		label: models.IntentPaymentRedirection,
		patterns: compileAll(
			`\b(send|transfer|pay|deposit).{0,25}(money|amount|rs|rupees?|inr|₹|\$)`,
			`\b(processing fee|service charge|verification fee|refundable deposit)\b`,
			`[a-zA-Z0-9.\-_]{2,}@[a-zA-Z]{2,}`,
		),
		confidence: 0.80,
	},
	{
		label: models.IntentAdvanceFeeFraud,
		patterns: compileAll(
			`\b(advance|upfront|small).{0,15}(fee|charge|payment|deposit)\b`,
			`\b(release|unlock|claim).{0,20}(funds?|prize|reward|amount)\b`,
		),
		confidence: 0.80,
	},
	{
		label: models.IntentImpersonationScam,
		patterns: compileAll(
			`\bthis is .{0,20}(officer|bank|department|police|customs)\b`,
			`\bcalling from .{0,20}(bank|rbi|police|cyber|government)\b`,
			`\b(we have detected|we found|your account has)\b`,
		),
		confidence: 0.78,
	},
	{
		label: models.IntentPhishingLink,
		patterns: compileAll(
			`\b(click|open|visit|go to|tap)\b.{0,30}(link|url|website|page|site)`,
			`https?://\S+`,
			`\b(verify|update|confirm).{0,15}(by clicking|via link|on this link)\b`,
		),
		confidence: 0.75,
	},
	{
		label: models.IntentEmotionalManipulation,
		patterns: compileAll(
			`\b(you will lose|lose all|risk losing|permanently lose)\b`,
			`\b(arrested|jail|criminal|prosecution|sued)\b`,
			`\b(please help|i (need|beg)|dying|hospital|emergency)\b`,
			`\b(everyone is doing|don't you trust|are you scared)\b`,
		),
		confidence: 0.68,
	},
}

var tacticRules = []struct {
	tactic   models.Tactic
	patterns []*regexp.Regexp
}{
	{models.TacticFear, compileAll(
		`\b(you will lose|lose (all|everything)|risk losing)\b`,
		`\b(arrested|jail|criminal|prosecution)\b`,
		`\b(compromised|breached|unauthorized)\b`,
	)},
	{models.TacticUrgency, compileAll(
		`\b(urgent|immediately|right now|asap|hurry|quickly)\b`,
		`\bwithin \d+ (hour|minute|day)s?\b`,
		`\b(last chance|final warning|deadline|today only)\b`,
	)},
	{models.TacticAuthority, compileAll(
		`\b(officer|inspector|manager|director|executive)\b`,
		`\b(reserve bank|rbi|government|ministry|department)\b`,
		`\bas per (rbi|government|regulation|policy)\b`,
	)},
	{models.TacticScarcity, compileAll(
		`\b(limited (time|offer|slots?)|only \d+ left|exclusive)\b`,
		`\b(first come|while (stocks?|supplies?) last)\b`,
	)},
	{models.TacticSocialProof, compileAll(
		`\b(everyone|all (customers|users)|many people|thousands)\b`,
		`\balready (received|claimed|verified)\b`,
	)},
	{models.TacticReciprocity, compileAll(
		`\b(free|complimentary|bonus|gift|as a token)\b`,
		`\b(we are giving|you have been selected)\b`,
	)},
	{models.TacticGreed, compileAll(
		`\b(won|winning|prize|reward|cashback|bonus|jackpot)\b`,
		`\b(guaranteed|100%|easy money|double|crore|lakh|million)\b`,
	)},
	{models.TacticSympathy, compileAll(
		`\b(please help|need help|emergency|hospital|accident)\b`,
		`\b(stranded|stuck|helpless|dying|illness)\b`,
	)},
	{models.TacticGuilt, compileAll(
		`\b(don't you trust|why won't you|are you refusing)\b`,
		`\bif you (don't|refuse|fail to)\b`,
	)},
	{models.TacticIntimidation, compileAll(
		`\b(legal action|police|arrest|court|case filed)\b`,
		`\bpermanent(ly)? (block|suspend|ban|close|delete)\b`,
	)},
}

var narrativeRules = []struct {
	category models.NarrativeCategory
	patterns []*regexp.Regexp
}{
	{models.NarrativeBankImpersonation, compileAll(
		`\b(bank|sbi|hdfc|icici|axis|pnb|rbi).{0,30}(blocked|suspended|frozen|verify|officer|manager|alert)\b`,
		`\b(account|debit card|credit card).{0,20}(blocked|suspended|compromised|frozen)\b`,
	)},
	{models.NarrativeGovernmentImpersonation, compileAll(
		`\b(government|ministry|aadhaar|pan card|income tax|it department)\b`,
		`\b(customs|immigration|cyber cell|cyber crime)\b`,
	)},
	{models.NarrativeTechSupport, compileAll(
		`\b(virus|malware|hacked|remote access|anydesk|teamviewer)\b`,
		`\b(microsoft|apple|google).{0,15}(support|helpline|alert)\b`,
	)},
	{models.NarrativeLotteryPrize, compileAll(
		`\b(won|winner|lottery|lucky draw|prize|jackpot|congratulations)\b`,
	)},
	{models.NarrativeInvestmentFraud, compileAll(
		`\b(invest|investment|guaranteed returns|high returns|trading)\b`,
		`\b(double your|triple your|10x|100x)\b`,
	)},
	{models.NarrativeKYCUpdate, compileAll(
		`\b(kyc|know your customer).{0,20}(update|verify|expired|mandatory)\b`,
	)},
	{models.NarrativeAccountVerification, compileAll(
		`\b(verify|validate|confirm).{0,20}(account|identity|details)\b`,
	)},
	{models.NarrativeLoanApproval, compileAll(
		`\b(loan|credit).{0,15}(approved|sanctioned|pre-?approved|eligible)\b`,
	)},
	{models.NarrativeDeliveryScam, compileAll(
		`\b(package|parcel|delivery|shipment).{0,20}(stuck|held|customs|fee)\b`,
	)},
	{models.NarrativeTaxRefund, compileAll(
		`\b(tax|refund|it returns?).{0,20}(claim|pending|eligible|process)\b`,
	)},
	{models.NarrativeInsuranceScam, compileAll(
		`\b(policy|insurance|premium).{0,20}(lapsed|expired|renew|claim)\b`,
	)},
	{models.NarrativeCustomClearance, compileAll(
		`\b(customs?|import).{0,20}(clearance|duty|charge|fee)\b`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile("(?i)" + p)
	}
	return out
}

// HeuristicAnalysis produces a full MessageAnalysis without the LLM. The
// input should already be canonicalized for stable matching.
func HeuristicAnalysis(text string) *models.MessageAnalysis {
	lower := strings.ToLower(text)

	intent := heuristicIntent(lower)
	se := heuristicSocialEngineering(lower)
	narrative := heuristicNarrative(lower)

	// Blend intent confidence with social-engineering severity.
	composite := 0.6*intent.Confidence + 0.4*se.Severity.Score()

	return &models.MessageAnalysis{
		Intent:            intent,
		SocialEngineering: se,
		ScamNarrative:     narrative,
		CompositeScore:    round4(composite),
		Source:            models.SourceHeuristic,
	}
}

func heuristicIntent(text string) models.IntentResult {
	best := models.IntentResult{
		Label:     models.IntentBenign,
		Reasoning: "No scam indicators detected.",
	}
	for _, rule := range intentRules {
		for _, re := range rule.patterns {
			if re.MatchString(text) {
				if rule.confidence > best.Confidence {
					best = models.IntentResult{
						Label:      rule.label,
						Confidence: rule.confidence,
						Reasoning: fmt.Sprintf("Pattern match: %s indicators found.",
							strings.ReplaceAll(string(rule.label), "_", " ")),
					}
				}
				break
			}
		}
	}
	return best
}

func heuristicSocialEngineering(text string) models.SocialEngineeringResult {
	var detected []models.Tactic
	for _, rule := range tacticRules {
		for _, re := range rule.patterns {
			if re.MatchString(text) {
				detected = append(detected, rule.tactic)
				break
			}
		}
	}

	var severity models.Severity
	switch n := len(detected); {
	case n == 0:
		severity = models.SeverityNone
	case n == 1:
		severity = models.SeverityLow
	case n == 2:
		severity = models.SeverityMedium
	case n == 3:
		severity = models.SeverityHigh
	default:
		severity = models.SeverityCritical
	}

	details := "No social-engineering tactics detected."
	if len(detected) > 0 {
		names := make([]string, len(detected))
		for i, t := range detected {
			names[i] = string(t)
		}
		details = fmt.Sprintf("Detected %d social-engineering tactic(s): %s.",
			len(detected), strings.Join(names, ", "))
	}

	if detected == nil {
		detected = []models.Tactic{}
	}
	return models.SocialEngineeringResult{
		Tactics:  detected,
		Severity: severity,
		Details:  details,
	}
}

func heuristicNarrative(text string) models.NarrativeResult {
	for _, rule := range narrativeRules {
		for _, re := range rule.patterns {
			if re.MatchString(text) {
				return models.NarrativeResult{
					Category: rule.category,
					// The heuristic cannot place the playbook stage
					// reliably; a pattern hit implies active exploitation.
					Stage: models.StageExploitation,
					Description: fmt.Sprintf("Message matches %s scam pattern.",
						strings.ReplaceAll(string(rule.category), "_", " ")),
				}
			}
		}
	}
	return models.NarrativeResult{
		Category:    models.NarrativeUnknown,
		Stage:       models.StageOpening,
		Description: "No recognised scam narrative detected.",
	}
}

func round4(f float64) float64 {
	return float64(int(f*10000+0.5)) / 10000
}
