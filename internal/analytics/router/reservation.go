package router

import (
	"context"

	"github.com/angelmondragon/parkinglot-backend/internal/analytics/types"
	"github.com/angelmondragon/parkinglot-backend/internal/analytics/writer"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
	"github.com/angelmondragon/parkinglot-backend/pkg/outbox/payloads"
)

type reservationOpenedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newReservationOpenedHandler(w Writer, logg *logger.Logger) Handler {
	return &reservationOpenedHandler{writer: w, logg: logg}
}

func (h *reservationOpenedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.ReservationOpenedEvent)
	if !ok {
		return payloadTypeError(envelope, payload)
	}
	encoded, err := writer.EncodeJSON(envelope.Payload)
	if err != nil {
		return err
	}

	row := types.ReservationEventRow{
		EventID:           envelope.EventID,
		EventType:         string(envelope.EventType),
		OccurredAt:        envelope.OccurredAt,
		ReservationID:     event.ReservationID.String(),
		LotID:             event.LotID.String(),
		SpotID:            event.SpotID.String(),
		UserID:            event.UserID.String(),
		VehicleType:       event.VehicleType,
		UnitPrice:         event.UnitPrice.Rat(),
		StartedAt:         event.StartedAt.UTC(),
		RemainingCapacity: int64(event.RemainingCapacity),
		ActorRole:         envelope.ActorRole(),
		Payload:           encoded,
	}
	return h.writer.InsertReservationEvent(ctx, row)
}

type reservationClosedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newReservationClosedHandler(w Writer, logg *logger.Logger) Handler {
	return &reservationClosedHandler{writer: w, logg: logg}
}

func (h *reservationClosedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.ReservationClosedEvent)
	if !ok {
		return payloadTypeError(envelope, payload)
	}
	encoded, err := writer.EncodeJSON(envelope.Payload)
	if err != nil {
		return err
	}

	if !event.SpotReturned {
		logCtx := h.logg.WithReservationID(ctx, event.ReservationID.String())
		h.logg.Info(logCtx, "reservation closed on a removed spot")
	}

	endedAt := event.EndedAt.UTC()
	row := types.ReservationEventRow{
		EventID:           envelope.EventID,
		EventType:         string(envelope.EventType),
		OccurredAt:        envelope.OccurredAt,
		ReservationID:     event.ReservationID.String(),
		LotID:             event.LotID.String(),
		SpotID:            event.SpotID.String(),
		UserID:            event.UserID.String(),
		VehicleType:       event.VehicleType,
		UnitPrice:         event.UnitPrice.Rat(),
		TotalCost:         event.TotalCost.Rat(),
		StartedAt:         event.StartedAt.UTC(),
		EndedAt:           &endedAt,
		DurationSeconds:   int64Ptr(event.DurationSeconds),
		SpotReturned:      boolPtr(event.SpotReturned),
		RemainingCapacity: int64(event.RemainingCapacity),
		ActorRole:         envelope.ActorRole(),
		Payload:           encoded,
	}
	return h.writer.InsertReservationEvent(ctx, row)
}

func int64Ptr(v int64) *int64 {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

func stringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
