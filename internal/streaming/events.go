package streaming

import (
	"time"

	"github.com/google/uuid"

	"baitlab/internal/domain/models"
)

// EventType identifies an engagement lifecycle event.
type EventType string

const (
	EventTypeScamDetected   EventType = "scam_detected"
	EventTypeIntelExtracted EventType = "intel_extracted"
	EventTypeSessionClosed  EventType = "session_closed"
)

// EngagementEvent is one real-time engagement update pushed to NATS and
// connected live-watch clients.
type EngagementEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	SessionID string                   `json:"session_id"`
	State     models.ConversationState `json:"state,omitempty"`
	Turn      int                      `json:"turn"`

	// Detection details, set on scam_detected events
	Verdict    models.DetectionVerdict `json:"verdict,omitempty"`
	ScamType   string                  `json:"scam_type,omitempty"`
	Confidence float64                 `json:"confidence,omitempty"`
	RedFlags   []string                `json:"red_flags,omitempty"`

	// Extraction details, set on intel_extracted events
	NewArtifacts      int            `json:"new_artifacts,omitempty"`
	ArtifactBreakdown map[string]int `json:"artifact_breakdown,omitempty"`
	TotalArtifacts    int            `json:"total_artifacts,omitempty"`

	// Closure details, set on session_closed events
	Reason        string `json:"reason,omitempty"`
	TotalMessages int    `json:"total_messages,omitempty"`
}

func newEvent(eventType EventType, session *models.Session) *EngagementEvent {
	return &EngagementEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		SessionID: session.ID,
		State:     session.State,
		Turn:      session.Turn(),
	}
}

// NewScamDetectedEvent builds the event emitted when a session first
// crosses the scam threshold.
func NewScamDetectedEvent(session *models.Session, result *models.DetectionResult) *EngagementEvent {
	event := newEvent(EventTypeScamDetected, session)
	event.Verdict = result.Verdict
	event.ScamType = string(session.ScamType)
	event.Confidence = result.Composite
	event.RedFlags = result.RedFlags
	return event
}

// NewIntelExtractedEvent builds the event emitted when a turn yields new
// artifacts.
func NewIntelExtractedEvent(session *models.Session, newCount int, breakdown map[string]int, totalArtifacts int) *EngagementEvent {
	event := newEvent(EventTypeIntelExtracted, session)
	event.ScamType = string(session.ScamType)
	event.NewArtifacts = newCount
	event.ArtifactBreakdown = breakdown
	event.TotalArtifacts = totalArtifacts
	return event
}

// NewSessionClosedEvent builds the terminal event for a session.
func NewSessionClosedEvent(session *models.Session, reason string) *EngagementEvent {
	event := newEvent(EventTypeSessionClosed, session)
	event.ScamType = string(session.ScamType)
	event.Reason = reason
	event.TotalMessages = session.Messages
	return event
}

// Subscription filters which events a client receives.
type Subscription struct {
	// Filter by event types (empty = all)
	Types []EventType `json:"types,omitempty"`

	// Filter by session IDs (empty = all)
	SessionIDs []string `json:"session_ids,omitempty"`

	// Minimum detection confidence for scam_detected events
	MinConfidence float64 `json:"min_confidence,omitempty"`
}

// Matches checks if an event passes the subscription filters.
func (s *Subscription) Matches(event *EngagementEvent) bool {
	if len(s.Types) > 0 {
		found := false
		for _, t := range s.Types {
			if t == event.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(s.SessionIDs) > 0 {
		found := false
		for _, id := range s.SessionIDs {
			if id == event.SessionID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if s.MinConfidence > 0 && event.Type == EventTypeScamDetected {
		if event.Confidence < s.MinConfidence {
			return false
		}
	}

	return true
}
