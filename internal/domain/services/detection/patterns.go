package detection

import (
	"regexp"
	"strings"
)

// Keyword tiers for the keyword signal. Matching is substring-based on
// the canonical (lowercased) text, so multi-word entries work too.
var keywordTiers = []struct {
	words  []string
	weight float64
}{
	{
		words: []string{
			"otp", "cvv", "pin", "password", "mpin",
			"phishing", "malware", "hack",
		},
		weight: 1.0,
	},
	{
		words: []string{
			"blocked", "suspended", "frozen", "locked", "deactivated",
			"verify", "confirm", "update", "kyc", "validation",
			"prize", "winner", "congratulations", "reward", "lottery",
			"refund", "cashback", "compensation",
		},
		weight: 0.7,
	},
	{
		words: []string{
			"account", "bank", "transaction", "payment", "transfer",
			"wallet", "credit", "debit", "upi", "paytm", "phonepe",
			"gpay", "expire", "security", "customer care", "support",
			"helpline", "link", "click",
		},
		weight: 0.4,
	},
	{
		words: []string{
			"free", "offer", "deal", "limited", "exclusive",
			"pending", "failed", "issue", "problem",
		},
		weight: 0.2,
	},
}

type patternGroup struct {
	patterns []*regexp.Regexp
	weight   float64
}

func group(weight float64, patterns ...string) patternGroup {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile("(?i)" + p)
	}
	return patternGroup{patterns: compiled, weight: weight}
}

// Urgency signal groups: time pressure, threat language, countdowns.
var urgencyGroups = []patternGroup{
	group(0.35,
		`\b(urgent|immediately|right now|asap|hurry|quickly)\b`,
		`\b(within \d+ (hour|minute|day)s?)\b`,
		`\b(last chance|final warning|deadline)\b`,
		`\b(today only|now or never|act fast)\b`,
		`\b(running out|time is running|don't delay)\b`,
	),
	group(0.40,
		`\b(will be (blocked|suspended|frozen|closed|terminated|deactivated))\b`,
		`\b(legal action|police|arrest|jail|court|case filed)\b`,
		`\b(permanent(ly)? (block|suspend|close|delete))\b`,
		`\b(cannot be (recovered|restored|reversed))\b`,
		`\b(your .{0,30} (at risk|in danger|compromised))\b`,
	),
	group(0.25,
		`\b\d+\s*(hours?|minutes?|mins?|hrs?)\s*(left|remaining)\b`,
		`\b(expires? (in|within|by))\b`,
		`\b(before .{0,20} (expires?|closes?|blocks?))\b`,
	),
}

// Authority signal groups: institutions, titles, official language.
var authorityGroups = []patternGroup{
	group(0.35,
		`\b(reserve bank|rbi|state bank|sbi|hdfc|icici|axis bank|pnb)\b`,
		`\b(national bank|central bank|federal bank)\b`,
		`\b(government|ministry|department of|income tax|it department)\b`,
		`\b(aadhaar|aadhar|pan card|passport office)\b`,
		`\b(customs|immigration|cyber cell|cyber crime)\b`,
		`\b(microsoft|apple|google|amazon|meta|facebook|whatsapp)\b`,
		`\b(paypal|razorpay|stripe)\b`,
		`\b(airtel|jio|vodafone|bsnl|idea)\b`,
	),
	group(0.30,
		`\b(officer|inspector|manager|director|executive|supervisor)\b`,
		`\b(senior .{0,15} (officer|manager|executive))\b`,
		`\b(chief .{0,15} (officer|manager))\b`,
		`\b(head of .{0,20}(department|division|security))\b`,
		`\b(i am (from|calling from|with) .{0,30}(bank|department|office|company))\b`,
	),
	group(0.35,
		`\b(as per (rbi|government|regulation|policy|guideline))\b`,
		`\b(in accordance with|pursuant to|under section)\b`,
		`\b(official (notice|notification|communication|letter))\b`,
		`\b(reference (number|id|no\.?|code))\b`,
		`\b(case (number|id|no\.?|file))\b`,
		`\b(complaint (number|id|no\.?|registered))\b`,
		`\b(mandatory|compulsory|required by law)\b`,
	),
}

// Payment signal groups: identifiers, request language, redirection.
var paymentGroups = []patternGroup{
	group(0.40,
		`[a-zA-Z0-9.\-_]{2,}@[a-zA-Z]{2,}`,
		`\b\d{9,18}\b`,
		`\b[A-Z]{4}0[A-Z0-9]{6}\b`,
	),
	group(0.35,
		`\b(send|transfer|pay|deposit)\b.{0,30}\b(money|amount|rs|rupees?|inr|₹|\$)`,
		`\b(rs\.?|rupees?|₹)\s*\d+`,
		`\b\d+\s*(rs\.?|rupees?|₹|dollars?|\$)`,
		`\b(processing fee|service charge|verification fee|refundable deposit)\b`,
		`\b(registration fee|activation charge|insurance fee|convenience fee)\b`,
		`\b(pay .{0,20} (to|via|through|using) .{0,20}(upi|paytm|phonepe|gpay|account))\b`,
	),
	group(0.25,
		`\b(send (to|money to|payment to))\b`,
		`\b(transfer (to|funds to|amount to))\b`,
		`\b(pay (to|at|into|via))\b`,
		`\b(deposit (into|to|in))\b`,
		`\b(use (this|the following) (upi|account|number))\b`,
		`\b(scan (this|the) (qr|code|barcode))\b`,
		`\b(click .{0,15}(pay|send|transfer|confirm))\b`,
	),
}

// Emotional manipulation tactics, used for the composite boost and the
// red-flag list.
var emotionalPatterns = map[string][]*regexp.Regexp{
	"fear": compilePatterns(
		`\b(you will lose|lose (all|everything)|risk losing)\b`,
		`\b(arrested|jail|criminal|prosecution)\b`,
		`\b(compromised|breached|unauthorized access)\b`,
		`\b(someone (is|has been) (using|accessing))\b`,
	),
	"greed": compilePatterns(
		`\b(won|winning|prize|reward|cashback|bonus)\b`,
		`\b(guaranteed|100%|easy money|double)\b`,
		`\b(free|complimentary|no cost|zero charge)\b`,
		`\b(lakh|crore|million|thousand)\b`,
	),
	"sympathy": compilePatterns(
		`\b(please help|need help|emergency)\b`,
		`\b(hospital|accident|dying|illness)\b`,
		`\b(stranded|stuck|helpless)\b`,
	),
	"guilt": compilePatterns(
		`\b(don't you trust|why won't you|are you refusing)\b`,
		`\b(everyone (else|is)|all (customers|users))\b`,
		`\b(if you (don't|refuse|fail to))\b`,
	),
}

var (
	credentialRequestRe = regexp.MustCompile(`(?i)\b(share|send|provide|give|enter).{0,15}(otp|cvv|pin|password|mpin)\b`)
	upiHandleRe         = regexp.MustCompile(`[a-zA-Z0-9.\-_]{2,}@[a-zA-Z]{2,}`)
	urlSchemeRe         = regexp.MustCompile(`https?://`)
	phoneRe             = regexp.MustCompile(`\+?\d{10,}`)
)

func compilePatterns(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile("(?i)" + p)
	}
	return out
}

// ScoreKeywords computes the tiered keyword signal on canonical text.
// Normalized so roughly three critical hits saturate the signal.
func ScoreKeywords(text string) float64 {
	total := 0.0
	matches := 0
	for _, tier := range keywordTiers {
		for _, word := range tier.words {
			if strings.Contains(text, word) {
				total += tier.weight
				matches++
			}
		}
	}
	if matches == 0 {
		return 0
	}
	return round4(min1(total / 3.0))
}

// scoreGroups sums group weights, one hit per group.
func scoreGroups(text string, groups []patternGroup) float64 {
	score := 0.0
	for _, g := range groups {
		for _, re := range g.patterns {
			if re.MatchString(text) {
				score += g.weight
				break
			}
		}
	}
	return round4(min1(score))
}

// ScoreUrgency computes the time-pressure and threat signal.
func ScoreUrgency(text string) float64 {
	return scoreGroups(text, urgencyGroups)
}

// ScoreAuthority computes the institution and title impersonation signal.
func ScoreAuthority(text string) float64 {
	return scoreGroups(text, authorityGroups)
}

// ScorePayment computes the payment identifier and redirection signal.
// Callers should score both the canonical and the raw text and take the
// max, since canonicalization can rewrite characters UPI handles need.
func ScorePayment(text string) float64 {
	return scoreGroups(text, paymentGroups)
}

// DetectEmotionalManipulation reports which manipulation tactics appear.
func DetectEmotionalManipulation(text string) map[string]bool {
	result := make(map[string]bool, len(emotionalPatterns))
	for tactic, patterns := range emotionalPatterns {
		hit := false
		for _, re := range patterns {
			if re.MatchString(text) {
				hit = true
				break
			}
		}
		result[tactic] = hit
	}
	return result
}

func min1(f float64) float64 {
	if f > 1 {
		return 1
	}
	return f
}

func round4(f float64) float64 {
	return float64(int(f*10000+0.5)) / 10000
}
