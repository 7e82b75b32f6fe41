package streaming

import (
	"context"

	"baitlab/internal/domain/models"
)

// EventBusPublisher fans engagement events out to the event bus (NATS +
// local subscribers) and to live-watch WebSocket clients. It satisfies
// the engagement service's EventPublisher.
type EventBusPublisher struct {
	eventBus *EventBus
	wsHub    *WebSocketHub
}

// NewEventBusPublisher creates a new publisher adapter
func NewEventBusPublisher(eventBus *EventBus, wsHub *WebSocketHub) *EventBusPublisher {
	return &EventBusPublisher{
		eventBus: eventBus,
		wsHub:    wsHub,
	}
}

func (p *EventBusPublisher) publish(ctx context.Context, event *EngagementEvent) error {
	if p.eventBus != nil {
		if err := p.eventBus.Publish(ctx, event); err != nil {
			return err
		}
	}
	if p.wsHub != nil {
		p.wsHub.BroadcastEvent(event)
	}
	return nil
}

// PublishScamDetected emits the event for a session crossing the scam
// threshold for the first time.
func (p *EventBusPublisher) PublishScamDetected(ctx context.Context, session *models.Session, result *models.DetectionResult) error {
	return p.publish(ctx, NewScamDetectedEvent(session, result))
}

// PublishIntelExtracted emits the event for a turn that yielded new
// artifacts.
func (p *EventBusPublisher) PublishIntelExtracted(ctx context.Context, session *models.Session, newCount int, breakdown map[string]int, totalArtifacts int) error {
	return p.publish(ctx, NewIntelExtractedEvent(session, newCount, breakdown, totalArtifacts))
}

// PublishSessionClosed emits the terminal event for a session.
func (p *EventBusPublisher) PublishSessionClosed(ctx context.Context, session *models.Session, reason string) error {
	return p.publish(ctx, NewSessionClosedEvent(session, reason))
}
