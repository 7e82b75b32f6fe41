package detection

import (
	"context"
	"fmt"
	"strings"

	"baitlab/internal/config"
	"baitlab/internal/domain/models"
	"baitlab/internal/domain/services/ai"
	"baitlab/pkg/logger"
)

// Signal weights for the composite score.
const (
	weightKeyword   = 0.25
	weightUrgency   = 0.20
	weightAuthority = 0.20
	weightPayment   = 0.15
	weightLLMIntent = 0.20
)

// Detector scores messages with the multi-signal weighted model. Four
// signals are pure pattern scoring; the fifth is the LLM (or heuristic)
// intent confidence.
type Detector struct {
	analyzer            *ai.Analyzer
	scamThreshold       float64
	suspiciousThreshold float64
	logger              *logger.Logger
}

// New builds a Detector with thresholds from config.
func New(cfg config.DetectionConfig, analyzer *ai.Analyzer, log *logger.Logger) *Detector {
	scam := cfg.ScamThreshold
	if scam <= 0 {
		scam = 0.40
	}
	suspicious := cfg.SuspiciousThreshold
	if suspicious <= 0 {
		suspicious = 0.25
	}
	return &Detector{
		analyzer:            analyzer,
		scamThreshold:       scam,
		suspiciousThreshold: suspicious,
		logger:              log.WithComponent("detector"),
	}
}

// Detect scores one message. raw is the original text, canonical the
// fully canonicalized form, history the prior counterpart messages
// (canonicalized, oldest first).
//
// Messages under three characters never detect.
func (d *Detector) Detect(ctx context.Context, raw, canonical string, history []string) *models.DetectionResult {
	if len(strings.TrimSpace(raw)) < 3 {
		return &models.DetectionResult{
			Verdict:  models.VerdictClean,
			Signals:  []models.SignalScore{},
			RedFlags: []string{},
		}
	}

	keywordScore := ScoreKeywords(canonical)
	urgencyScore := ScoreUrgency(canonical)
	authorityScore := ScoreAuthority(canonical)

	// Payment handles can be mangled by canonicalization (leet folding
	// rewrites symbols), so score both forms and keep the higher.
	paymentScore := ScorePayment(canonical)
	if rawScore := ScorePayment(strings.ToLower(raw)); rawScore > paymentScore {
		paymentScore = rawScore
	}

	analysis := d.analyzer.Analyze(ctx, canonical, history)
	intentScore := analysis.Intent.Confidence

	composite := weightKeyword*keywordScore +
		weightUrgency*urgencyScore +
		weightAuthority*authorityScore +
		weightPayment*paymentScore +
		weightLLMIntent*intentScore

	// Emotional manipulation boost, up to +0.10.
	emotional := DetectEmotionalManipulation(canonical)
	emotionalCount := 0
	for _, hit := range emotional {
		if hit {
			emotionalCount++
		}
	}
	emotionalBoost := float64(emotionalCount) * 0.03
	if emotionalBoost > 0.10 {
		emotionalBoost = 0.10
	}
	composite = min1(composite + emotionalBoost)

	// An ongoing conversation lowers the bar, up to +0.10.
	historyBoost := 0.0
	if len(history) > 0 {
		historyBoost = float64(len(history)) * 0.02
		if historyBoost > 0.10 {
			historyBoost = 0.10
		}
		composite = min1(composite + historyBoost)
	}

	// Hard triggers override the weighted model with score floors.
	hardTrigger := false
	hardTriggerReason := ""
	if credentialRequestRe.MatchString(canonical) {
		hardTrigger = true
		hardTriggerReason = "credential_harvest_attempt"
		if composite < 0.90 {
			composite = 0.90
		}
	}
	// The raw text is authoritative for UPI handles since @ survives there.
	if upiHandleRe.MatchString(raw) && paymentScore > 0.3 {
		hardTrigger = true
		hardTriggerReason = "payment_redirection_with_upi"
		if composite < 0.80 {
			composite = 0.80
		}
	}

	composite = round4(composite)

	result := &models.DetectionResult{
		Composite: composite,
		Signals: []models.SignalScore{
			{Name: "keyword", Raw: keywordScore, Weight: weightKeyword, Contribution: round4(keywordScore * weightKeyword)},
			{Name: "urgency", Raw: urgencyScore, Weight: weightUrgency, Contribution: round4(urgencyScore * weightUrgency)},
			{Name: "authority", Raw: authorityScore, Weight: weightAuthority, Contribution: round4(authorityScore * weightAuthority)},
			{Name: "payment_request", Raw: paymentScore, Weight: weightPayment, Contribution: round4(paymentScore * weightPayment)},
			{Name: "llm_intent", Raw: intentScore, Weight: weightLLMIntent, Contribution: round4(intentScore * weightLLMIntent)},
		},
		EmotionalBoost:    round4(emotionalBoost),
		HistoryBoost:      round4(historyBoost),
		HardTrigger:       hardTrigger,
		HardTriggerReason: hardTriggerReason,
		HasURL:            urlSchemeRe.MatchString(raw) || urlSchemeRe.MatchString(canonical),
		HasPhone:          phoneRe.MatchString(raw),
		HasPaymentHandle:  upiHandleRe.MatchString(raw),
		AuthorityScore:    authorityScore,
		PaymentScore:      paymentScore,
		UrgencyScore:      urgencyScore,
		Analysis:          analysis,
	}

	switch {
	case composite >= d.scamThreshold:
		result.Verdict = models.VerdictScam
	case composite >= d.suspiciousThreshold:
		result.Verdict = models.VerdictSuspicious
	default:
		result.Verdict = models.VerdictClean
	}

	result.Engage = d.shouldEngage(result, len(history))
	result.RedFlags = redFlags(result, emotional)

	d.logger.Debug().
		Float64("composite", composite).
		Str("verdict", string(result.Verdict)).
		Bool("hard_trigger", hardTrigger).
		Str("intent", string(analysis.Intent.Label)).
		Msg("message scored")

	return result
}

// shouldEngage decides whether the honeypot replies. Scams always
// engage. Suspicious messages engage mid-conversation or when an
// authority claim appears, since institution impersonation warrants
// engagement from the first message. Structural signals (URL, phone,
// payment handle) engage regardless of score.
func (d *Detector) shouldEngage(r *models.DetectionResult, historyLen int) bool {
	if r.Verdict == models.VerdictScam {
		return true
	}
	if r.Verdict == models.VerdictSuspicious {
		if historyLen > 0 {
			return true
		}
		if r.AuthorityScore >= 0.3 {
			return true
		}
	}
	return r.HasURL || r.HasPhone || r.HasPaymentHandle
}

// redFlags builds the analyst-facing flag list from all signals.
func redFlags(r *models.DetectionResult, emotional map[string]bool) []string {
	flags := []string{}

	if r.HardTrigger {
		switch r.HardTriggerReason {
		case "credential_harvest_attempt":
			flags = append(flags, "Credential harvesting: asks for OTP, PIN, CVV, or password")
		case "payment_redirection_with_upi":
			flags = append(flags, "Payment redirection: provides UPI ID alongside payment pressure")
		}
	}

	switch {
	case r.UrgencyScore >= 0.5:
		flags = append(flags, "Artificial urgency: uses time pressure or threat of immediate consequences")
	case r.UrgencyScore >= 0.25:
		flags = append(flags, "Mild urgency language detected")
	}
	switch {
	case r.AuthorityScore >= 0.5:
		flags = append(flags, "Authority impersonation: claims to be bank, government, or law enforcement")
	case r.AuthorityScore >= 0.25:
		flags = append(flags, "Possible authority impersonation")
	}
	switch {
	case r.PaymentScore >= 0.5:
		flags = append(flags, "Unsolicited payment request: pressuring victim to transfer money")
	case r.PaymentScore >= 0.25:
		flags = append(flags, "Payment-related language detected")
	}
	if r.Signal("keyword").Raw >= 0.6 {
		flags = append(flags, "High concentration of known scam keywords")
	}

	if emotional["fear"] {
		flags = append(flags, "Fear manipulation: threatens arrest, loss, or harm")
	}
	if emotional["greed"] {
		flags = append(flags, "Greed manipulation: promises prize, reward, or easy money")
	}
	if emotional["sympathy"] {
		flags = append(flags, "Sympathy manipulation: invokes emergency or helplessness")
	}
	if emotional["guilt"] {
		flags = append(flags, "Guilt manipulation: pressures victim to comply by questioning trust")
	}

	if r.Analysis != nil {
		if cat := r.Analysis.ScamNarrative.Category; cat != models.NarrativeUnknown && cat != "" {
			flags = append(flags, "Scam type identified: "+titleCase(string(cat)))
		}
		if tactics := r.Analysis.SocialEngineering.Tactics; len(tactics) > 0 {
			names := make([]string, len(tactics))
			for i, t := range tactics {
				names[i] = titleCase(string(t))
			}
			flags = append(flags, "Social engineering tactics: "+strings.Join(names, ", "))
		}
		intent := r.Analysis.Intent
		if intent.Label != models.IntentBenign && intent.Label != models.IntentUnknown &&
			intent.Label != "" && intent.Confidence >= 0.5 {
			flags = append(flags, fmt.Sprintf("Intent classification: %s (confidence %.0f%%)",
				titleCase(string(intent.Label)), intent.Confidence*100))
		}
	}

	return flags
}

func titleCase(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
