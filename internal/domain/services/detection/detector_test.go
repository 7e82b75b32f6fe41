package detection

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baitlab/internal/config"
	"baitlab/internal/domain/models"
	"baitlab/internal/domain/services/ai"
	"baitlab/pkg/logger"
)

// newTestDetector builds a detector with no LLM provider configured, so
// intent classification runs on the heuristic fallback.
func newTestDetector() *Detector {
	log := logger.NewDefault()
	client := ai.NewClient(config.LLMConfig{}, log)
	analyzer := ai.NewAnalyzer(config.LLMConfig{}, client, nil, log)
	return New(config.DetectionConfig{}, analyzer, log)
}

func detect(t *testing.T, d *Detector, raw string, history ...string) *models.DetectionResult {
	t.Helper()
	result := d.Detect(context.Background(), raw, strings.ToLower(raw), history)
	require.NotNil(t, result)
	return result
}

func TestDetect_ShortMessagesNeverDetect(t *testing.T) {
	d := newTestDetector()

	for _, text := range []string{"ok", "hi", " a ", ""} {
		result := detect(t, d, text)
		assert.Equal(t, models.VerdictClean, result.Verdict, "text %q", text)
		assert.False(t, result.Engage)
		assert.Zero(t, result.Composite)
	}
}

func TestDetect_BenignMessage(t *testing.T) {
	d := newTestDetector()

	result := detect(t, d, "see you at dinner tomorrow")
	assert.Equal(t, models.VerdictClean, result.Verdict)
	assert.False(t, result.Engage)
	assert.False(t, result.HardTrigger)
}

func TestDetect_CredentialHarvestHardTrigger(t *testing.T) {
	d := newTestDetector()

	result := detect(t, d, "Please share your OTP to unblock the account")
	assert.True(t, result.HardTrigger)
	assert.Equal(t, "credential_harvest_attempt", result.HardTriggerReason)
	assert.GreaterOrEqual(t, result.Composite, 0.90)
	assert.Equal(t, models.VerdictScam, result.Verdict)
	assert.True(t, result.Engage)
}

func TestDetect_UPIRedirectionHardTrigger(t *testing.T) {
	d := newTestDetector()

	result := detect(t, d, "Pay Rs.5000 to fraud@paytm before your account is blocked")
	assert.True(t, result.HardTrigger)
	assert.Equal(t, "payment_redirection_with_upi", result.HardTriggerReason)
	assert.GreaterOrEqual(t, result.Composite, 0.80)
	assert.True(t, result.HasPaymentHandle)
	assert.Equal(t, models.VerdictScam, result.Verdict)
}

func TestDetect_StructuralSignalsEngage(t *testing.T) {
	d := newTestDetector()

	// A bare URL engages even when the composite stays below the
	// suspicious threshold.
	result := detect(t, d, "check this https://short.example/x when free")
	assert.True(t, result.HasURL)
	assert.True(t, result.Engage)

	result = detect(t, d, "my friend reached me on 9876543210 yesterday")
	assert.True(t, result.HasPhone)
	assert.True(t, result.Engage)
}

func TestDetect_HistoryRaisesScore(t *testing.T) {
	d := newTestDetector()

	text := "please verify your account details"
	without := detect(t, d, text)
	with := detect(t, d, text, "msg1", "msg2", "msg3", "msg4", "msg5")

	assert.Greater(t, with.Composite, without.Composite)
	assert.InDelta(t, 0.10, with.HistoryBoost, 0.0001)
	assert.Zero(t, without.HistoryBoost)
}

func TestDetect_SignalBreakdown(t *testing.T) {
	d := newTestDetector()

	result := detect(t, d, "This is Officer Sharma from SBI, your account will be blocked within 2 hours")
	require.Len(t, result.Signals, 5)

	names := make([]string, len(result.Signals))
	for i, s := range result.Signals {
		names[i] = s.Name
	}
	assert.ElementsMatch(t, []string{"keyword", "urgency", "authority", "payment_request", "llm_intent"}, names)

	assert.GreaterOrEqual(t, result.AuthorityScore, 0.5)
	assert.GreaterOrEqual(t, result.UrgencyScore, 0.35)
	assert.Equal(t, models.VerdictScam, result.Verdict)
	assert.NotEmpty(t, result.RedFlags)
}

func TestScoreKeywords(t *testing.T) {
	assert.Zero(t, ScoreKeywords("nothing to see here"))
	// Three critical-tier hits saturate the signal.
	assert.Equal(t, 1.0, ScoreKeywords("share otp and cvv and pin"))
	assert.Greater(t, ScoreKeywords("your account is blocked, verify now"), 0.0)
}

func TestScoreUrgency(t *testing.T) {
	assert.Zero(t, ScoreUrgency("take your time"))
	assert.GreaterOrEqual(t, ScoreUrgency("act immediately, this is your final warning"), 0.35)
	assert.GreaterOrEqual(t, ScoreUrgency("your account will be blocked and legal action follows"), 0.40)
}

func TestScoreAuthority(t *testing.T) {
	assert.Zero(t, ScoreAuthority("hello from your neighbour"))
	assert.GreaterOrEqual(t, ScoreAuthority("i am calling from the reserve bank"), 0.35)
	assert.GreaterOrEqual(t, ScoreAuthority("senior security officer as per rbi guideline"), 0.65)
}

func TestScorePayment(t *testing.T) {
	assert.Zero(t, ScorePayment("lovely weather today"))
	assert.GreaterOrEqual(t, ScorePayment("transfer money to merchant@ybl"), 0.40)
	assert.GreaterOrEqual(t, ScorePayment("pay a processing fee of rs. 499"), 0.35)
}

func TestDetectEmotionalManipulation(t *testing.T) {
	hits := DetectEmotionalManipulation("you will lose everything and be arrested")
	assert.True(t, hits["fear"])
	assert.False(t, hits["greed"])

	hits = DetectEmotionalManipulation("congratulations you won a prize of 5 lakh")
	assert.True(t, hits["greed"])
}

func TestDetect_SuspiciousWithAuthorityEngagesImmediately(t *testing.T) {
	d := newTestDetector()

	// First message, suspicious-range score, but an institutional claim.
	result := detect(t, d, "This is an important message from your bank manager regarding your account status")
	if result.Verdict == models.VerdictSuspicious {
		assert.True(t, result.Engage)
	}
	assert.GreaterOrEqual(t, result.AuthorityScore, 0.3)
}
