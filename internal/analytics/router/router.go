package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/angelmondragon/parkinglot-backend/internal/analytics/types"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
	"github.com/angelmondragon/parkinglot-backend/pkg/outbox/payloads"
)

var ErrUnsupportedEventType = errors.New("unsupported analytics event type")

// Writer delivers BigQuery rows produced by analytics handlers.
type Writer interface {
	InsertReservationEvent(ctx context.Context, row types.ReservationEventRow) error
	InsertSpotEvent(ctx context.Context, row types.SpotEventRow) error
}

// Handler receives an envelope plus a decoded event payload.
type Handler interface {
	Handle(ctx context.Context, envelope types.Envelope, payload any) error
}

type handlerEntry struct {
	factory func() any
	handler Handler
}

// Router dispatches analytics envelopes to the configured handler per event type.
type Router struct {
	handlers map[enums.OutboxEventType]handlerEntry
	logg     *logger.Logger
}

// NewRouter wires the default handlers and allows overrides for specific events.
func NewRouter(writer Writer, logg *logger.Logger, overrides map[enums.OutboxEventType]Handler) (*Router, error) {
	if writer == nil {
		return nil, errors.New("writer is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	entries := map[enums.OutboxEventType]handlerEntry{
		enums.EventReservationOpened: {
			factory: func() any { return &payloads.ReservationOpenedEvent{} },
			handler: newReservationOpenedHandler(writer, logg),
		},
		enums.EventReservationClosed: {
			factory: func() any { return &payloads.ReservationClosedEvent{} },
			handler: newReservationClosedHandler(writer, logg),
		},
		enums.EventSpotRemoved: {
			factory: func() any { return &payloads.SpotRemovedEvent{} },
			handler: newSpotRemovedHandler(writer, logg),
		},
		enums.EventLotCreated: {
			factory: func() any { return &payloads.LotCreatedEvent{} },
			handler: newLotCreatedHandler(writer, logg),
		},
		enums.EventLotUpdated: {
			factory: func() any { return &payloads.LotUpdatedEvent{} },
			handler: newLotUpdatedHandler(writer, logg),
		},
		enums.EventLotDeleted: {
			factory: func() any { return &payloads.LotDeletedEvent{} },
			handler: newLotDeletedHandler(writer, logg),
		},
	}

	for event, custom := range overrides {
		entry, ok := entries[event]
		if !ok || custom == nil {
			continue
		}
		entry.handler = custom
		entries[event] = entry
	}

	return &Router{
		handlers: entries,
		logg:     logg,
	}, nil
}

// Handle dispatches the incoming envelope to the configured handler.
func (r *Router) Handle(ctx context.Context, envelope types.Envelope) error {
	entry, ok := r.handlers[envelope.EventType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedEventType, envelope.EventType)
	}
	payload := entry.factory()
	if len(envelope.Payload) == 0 {
		return fmt.Errorf("empty payload for %s", envelope.EventType)
	}
	if err := json.Unmarshal(envelope.Payload, payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", envelope.EventType, err)
	}

	return entry.handler.Handle(ctx, envelope, payload)
}

func payloadTypeError(envelope types.Envelope, payload any) error {
	return fmt.Errorf("unexpected payload %T for %s", payload, envelope.EventType)
}
