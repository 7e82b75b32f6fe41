package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"baitlab/internal/domain/models"
)

func sessionWithCounterpart(texts ...string) *models.Session {
	s := models.NewSession("score-test")
	for _, text := range texts {
		s.History = append(s.History,
			models.Message{Sender: models.SenderCounterpart, Text: text},
			models.Message{Sender: models.SenderAgent, Text: "ok, tell me more"},
		)
		s.Messages += 2
	}
	return s
}

func TestCalculateScore(t *testing.T) {
	t.Run("fresh session leans on novelty", func(t *testing.T) {
		s := models.NewSession("fresh")
		score := CalculateScore(s)

		// 0.25*0.5 confidence + 0.20*0.5 engagement + 0.20*1.0 novelty.
		assert.InDelta(t, 0.425, score.Total, 0.001)
		assert.Zero(t, score.Artifacts)
		assert.Zero(t, score.UniqueItems)
	})

	t.Run("artifact diversity outweighs volume", func(t *testing.T) {
		diverse := models.NewSession("diverse")
		diverse.Intel.UPIIDs = []string{"a@paytm"}
		diverse.Intel.PhoneNumbers = []string{"9876543210"}
		diverse.Intel.PhishingLinks = []string{"http://evil.com"}

		bulk := models.NewSession("bulk")
		bulk.Intel.PhoneNumbers = []string{"9876543210", "9876543211", "9876543212"}

		dScore := CalculateScore(diverse)
		bScore := CalculateScore(bulk)

		assert.Equal(t, 3, dScore.UniqueItems)
		assert.Equal(t, 3, dScore.TypesCollected)
		assert.Equal(t, 1, bScore.TypesCollected)
		assert.Greater(t, dScore.Artifacts, bScore.Artifacts)
		// 3 items, 3 types: (3/10) * (1 + 3*0.15).
		assert.InDelta(t, 0.435, dScore.Artifacts, 0.001)
	})

	t.Run("free-form extras are capped", func(t *testing.T) {
		s := models.NewSession("extras")
		s.Intel.AdditionalIntel["aliases"] = []string{"a", "b", "c", "d", "e"}

		score := CalculateScore(s)
		assert.Equal(t, 3, score.UniqueItems)
	})

	t.Run("long counterpart replies deepen engagement", func(t *testing.T) {
		long := sessionWithCounterpart(
			"I am calling from the bank because your account has a serious problem that needs fixing today, "+
				"please cooperate with the verification process so we can protect your funds",
			"you must complete the verification immediately or the account will be frozen and you will "+
				"lose access to all of your money, this is the final warning from our department")

		score := CalculateScore(long)
		assert.InDelta(t, 0.9, score.Engagement, 0.001)

		short := sessionWithCounterpart("ok", "fine")
		assert.InDelta(t, 0.3, CalculateScore(short).Engagement, 0.001)
	})

	t.Run("novelty decays once extraction dries up", func(t *testing.T) {
		s := models.NewSession("stale")
		s.NoveltyLog = []models.NoveltyRecord{
			{Turn: 1, NewCount: 0},
			{Turn: 2, NewCount: 0},
			{Turn: 3, NewCount: 0},
		}
		assert.InDelta(t, 0.1, CalculateScore(s).Novelty, 0.001)

		s.NoveltyLog[2].NewCount = 2
		assert.InDelta(t, 0.6, CalculateScore(s).Novelty, 0.001)
	})
}

func TestDetectPatterns(t *testing.T) {
	t.Run("short replies read as disengagement", func(t *testing.T) {
		s := sessionWithCounterpart("send the payment to this account today", "ok", "hm")

		p := DetectPatterns(s)
		assert.True(t, p.Disengagement)
		assert.InDelta(t, 0.4, p.Severity, 0.001)
	})

	t.Run("stale novelty log raises severity", func(t *testing.T) {
		s := models.NewSession("stale")
		s.NoveltyLog = []models.NoveltyRecord{
			{Turn: 1, NewCount: 0},
			{Turn: 2, NewCount: 0},
			{Turn: 3, NewCount: 0},
		}

		p := DetectPatterns(s)
		assert.True(t, p.StaleIntel)
		assert.InDelta(t, 0.5, p.Severity, 0.001)
	})

	t.Run("repeated pressure is flagged but not severe", func(t *testing.T) {
		s := sessionWithCounterpart(
			"pay immediately or face consequences",
			"hurry up, the offer expires in minutes so act fast right away",
		)

		p := DetectPatterns(s)
		assert.True(t, p.RepeatedPressure)
		assert.Zero(t, p.Severity)
	})

	t.Run("healthy engagement shows no patterns", func(t *testing.T) {
		s := sessionWithCounterpart(
			"hello sir, I am calling about your electricity bill payment",
			"your last payment did not go through our system correctly",
		)

		p := DetectPatterns(s)
		assert.False(t, p.Disengagement)
		assert.False(t, p.StaleIntel)
		assert.Zero(t, p.Severity)
	})
}
