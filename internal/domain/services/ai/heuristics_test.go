package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baitlab/internal/domain/models"
)

func TestHeuristicAnalysis(t *testing.T) {
	t.Run("credential request classifies with highest confidence", func(t *testing.T) {
		analysis := HeuristicAnalysis("share your otp now")

		assert.Equal(t, models.IntentCredentialHarvesting, analysis.Intent.Label)
		assert.InDelta(t, 0.92, analysis.Intent.Confidence, 0.001)
		assert.Equal(t, models.SourceHeuristic, analysis.Source)
	})

	t.Run("lottery bait hits financial fraud and greed tactic", func(t *testing.T) {
		analysis := HeuristicAnalysis("congratulations you won a lottery prize")

		assert.Equal(t, models.IntentFinancialFraud, analysis.Intent.Label)
		assert.InDelta(t, 0.82, analysis.Intent.Confidence, 0.001)
		assert.Contains(t, analysis.SocialEngineering.Tactics, models.TacticGreed)
		assert.Equal(t, models.SeverityLow, analysis.SocialEngineering.Severity)
		assert.Equal(t, models.NarrativeLotteryPrize, analysis.ScamNarrative.Category)
		assert.Equal(t, models.StageExploitation, analysis.ScamNarrative.Stage)
		// 0.6*0.82 intent plus 0.4*0.2 severity.
		assert.InDelta(t, 0.572, analysis.CompositeScore, 0.001)
	})

	t.Run("benign chatter scores zero", func(t *testing.T) {
		analysis := HeuristicAnalysis("hello, hope your week is going well")

		assert.Equal(t, models.IntentBenign, analysis.Intent.Label)
		assert.Zero(t, analysis.Intent.Confidence)
		assert.Empty(t, analysis.SocialEngineering.Tactics)
		assert.Equal(t, models.SeverityNone, analysis.SocialEngineering.Severity)
		assert.Equal(t, models.NarrativeUnknown, analysis.ScamNarrative.Category)
		assert.Equal(t, models.StageOpening, analysis.ScamNarrative.Stage)
		assert.Zero(t, analysis.CompositeScore)
	})

	t.Run("stacked tactics raise severity", func(t *testing.T) {
		analysis := HeuristicAnalysis(
			"this is officer verma, pay the fee immediately or you will be arrested")

		assert.GreaterOrEqual(t, len(analysis.SocialEngineering.Tactics), 3)
		assert.Contains(t, analysis.SocialEngineering.Tactics, models.TacticFear)
		assert.Contains(t, analysis.SocialEngineering.Tactics, models.TacticUrgency)
		assert.Contains(t, analysis.SocialEngineering.Tactics, models.TacticAuthority)
	})
}

func TestParseAnalysis(t *testing.T) {
	t.Run("extracts JSON wrapped in prose and fences", func(t *testing.T) {
		content := "Here is the analysis:\n```json\n" +
			`{"intent":{"label":"phishing_link","confidence":0.8,"reasoning":"link push"},` +
			`"social_engineering":{"tactics":["urgency"],"severity":"medium","details":"pressure"},` +
			`"scam_narrative":{"category":"bank_impersonation","stage":"exploitation","description":"bank alert"},` +
			`"composite_score":0.75}` + "\n```"

		analysis, err := parseAnalysis(content)
		require.NoError(t, err)

		assert.Equal(t, models.IntentPhishingLink, analysis.Intent.Label)
		assert.InDelta(t, 0.8, analysis.Intent.Confidence, 0.001)
		assert.Equal(t, []models.Tactic{models.TacticUrgency}, analysis.SocialEngineering.Tactics)
		assert.Equal(t, models.SeverityMedium, analysis.SocialEngineering.Severity)
		assert.Equal(t, models.NarrativeBankImpersonation, analysis.ScamNarrative.Category)
		assert.InDelta(t, 0.75, analysis.CompositeScore, 0.001)
	})

	t.Run("clamps out-of-vocabulary fields", func(t *testing.T) {
		content := `{"intent":{"label":"ransomware","confidence":1.7,"reasoning":"x"},` +
			`"social_engineering":{"tactics":["urgency","hypnosis"],"severity":"HIGH","details":"x"},` +
			`"scam_narrative":{"category":"alien_invasion","stage":"endgame","description":"x"},` +
			`"composite_score":-0.4}`

		analysis, err := parseAnalysis(content)
		require.NoError(t, err)

		assert.Equal(t, models.IntentUnknown, analysis.Intent.Label)
		assert.InDelta(t, 1.0, analysis.Intent.Confidence, 0.001)
		assert.Equal(t, []models.Tactic{models.TacticUrgency}, analysis.SocialEngineering.Tactics)
		assert.Equal(t, models.SeverityHigh, analysis.SocialEngineering.Severity)
		assert.Equal(t, models.NarrativeUnknown, analysis.ScamNarrative.Category)
		assert.Equal(t, models.StageOpening, analysis.ScamNarrative.Stage)
		assert.Zero(t, analysis.CompositeScore)
	})

	t.Run("rejects responses without JSON", func(t *testing.T) {
		_, err := parseAnalysis("I cannot help with that.")
		assert.Error(t, err)
	})
}
