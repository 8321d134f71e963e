package types

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	"github.com/angelmondragon/parkinglot-backend/pkg/outbox"
)

// Envelope is a parking event as received from Pub/Sub, with routing
// attributes already parsed.
type Envelope struct {
	EventID       string                    `json:"event_id"`
	EventType     enums.OutboxEventType     `json:"event_type"`
	AggregateType enums.OutboxAggregateType `json:"aggregate_type"`
	AggregateID   string                    `json:"aggregate_id"`
	OccurredAt    time.Time                 `json:"occurred_at"`
	Actor         *outbox.ActorRef          `json:"actor,omitempty"`
	Payload       json.RawMessage           `json:"payload"`
}

// ActorRole returns the role of the principal that produced the event.
func (e Envelope) ActorRole() *string {
	if e.Actor == nil || e.Actor.Role == "" {
		return nil
	}
	role := e.Actor.Role
	return &role
}
