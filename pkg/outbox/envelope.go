package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CurrentVersion is the envelope version written by Emit.
const CurrentVersion = 1

// ActorRef identifies who produced the event. The configured admin has no
// user row, so UserID is optional.
type ActorRef struct {
	UserID *uuid.UUID `json:"userId,omitempty"`
	Role   string     `json:"role,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DecodeEnvelope parses an envelope from a stored payload or message body.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return PayloadEnvelope{}, err
	}
	return env, nil
}

// NewActor builds an ActorRef for the authenticated principal.
func NewActor(userID *uuid.UUID, role string) *ActorRef {
	if userID == nil && role == "" {
		return nil
	}
	ref := &ActorRef{Role: role}
	if userID != nil && *userID != uuid.Nil {
		id := *userID
		ref.UserID = &id
	}
	return ref
}
