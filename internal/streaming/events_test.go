package streaming

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"baitlab/internal/domain/models"
)

func TestEventBuilders(t *testing.T) {
	s := models.NewSession("evt-1")
	s.State = models.StateProbePayment
	s.Messages = 8
	s.ScamType = models.NarrativeBankImpersonation

	t.Run("scam detected carries the verdict", func(t *testing.T) {
		result := &models.DetectionResult{
			Verdict:   models.VerdictScam,
			Composite: 0.91,
			RedFlags:  []string{"Credential harvesting: asks for OTP, PIN, CVV, or password"},
		}
		event := NewScamDetectedEvent(s, result)

		assert.Equal(t, EventTypeScamDetected, event.Type)
		assert.Equal(t, "evt-1", event.SessionID)
		assert.Equal(t, models.VerdictScam, event.Verdict)
		assert.InDelta(t, 0.91, event.Confidence, 0.001)
		assert.Equal(t, 4, event.Turn)
		assert.NotEmpty(t, event.ID)
	})

	t.Run("intel extracted carries the breakdown", func(t *testing.T) {
		event := NewIntelExtractedEvent(s, 2, map[string]int{models.FieldUPIIDs: 2}, 5)

		assert.Equal(t, EventTypeIntelExtracted, event.Type)
		assert.Equal(t, 2, event.NewArtifacts)
		assert.Equal(t, 5, event.TotalArtifacts)
	})

	t.Run("session closed carries the reason", func(t *testing.T) {
		event := NewSessionClosedEvent(s, "counterpart_disengaged")

		assert.Equal(t, EventTypeSessionClosed, event.Type)
		assert.Equal(t, "counterpart_disengaged", event.Reason)
		assert.Equal(t, 8, event.TotalMessages)
	})
}

func TestSubscriptionMatches(t *testing.T) {
	detected := &EngagementEvent{
		Type:       EventTypeScamDetected,
		SessionID:  "s1",
		Confidence: 0.6,
	}
	closed := &EngagementEvent{
		Type:      EventTypeSessionClosed,
		SessionID: "s2",
	}

	t.Run("empty subscription matches everything", func(t *testing.T) {
		sub := &Subscription{}
		assert.True(t, sub.Matches(detected))
		assert.True(t, sub.Matches(closed))
	})

	t.Run("type filter", func(t *testing.T) {
		sub := &Subscription{Types: []EventType{EventTypeSessionClosed}}
		assert.False(t, sub.Matches(detected))
		assert.True(t, sub.Matches(closed))
	})

	t.Run("session filter", func(t *testing.T) {
		sub := &Subscription{SessionIDs: []string{"s1"}}
		assert.True(t, sub.Matches(detected))
		assert.False(t, sub.Matches(closed))
	})

	t.Run("confidence floor applies to detections only", func(t *testing.T) {
		sub := &Subscription{MinConfidence: 0.8}
		assert.False(t, sub.Matches(detected))
		assert.True(t, sub.Matches(closed))
	})
}
