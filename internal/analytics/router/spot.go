package router

import (
	"context"

	"github.com/angelmondragon/parkinglot-backend/internal/analytics/types"
	"github.com/angelmondragon/parkinglot-backend/internal/analytics/writer"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
	"github.com/angelmondragon/parkinglot-backend/pkg/outbox/payloads"
)

type spotRemovedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newSpotRemovedHandler(w Writer, logg *logger.Logger) Handler {
	return &spotRemovedHandler{writer: w, logg: logg}
}

func (h *spotRemovedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.SpotRemovedEvent)
	if !ok {
		return payloadTypeError(envelope, payload)
	}
	row, err := spotRow(envelope, event.LotID.String())
	if err != nil {
		return err
	}
	row.SpotID = stringPtr(event.SpotID.String())
	row.SpotLabel = stringPtr(event.Label)
	row.PreviousStatus = stringPtr(event.PreviousStatus)
	if event.OrphanedReservationID != nil {
		row.OrphanedReservationID = stringPtr(event.OrphanedReservationID.String())
	}
	row.SpotsRemoved = 1
	row.RemainingCapacity = int64Ptr(int64(event.RemainingCapacity))
	return h.writer.InsertSpotEvent(ctx, row)
}

type lotCreatedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newLotCreatedHandler(w Writer, logg *logger.Logger) Handler {
	return &lotCreatedHandler{writer: w, logg: logg}
}

func (h *lotCreatedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.LotCreatedEvent)
	if !ok {
		return payloadTypeError(envelope, payload)
	}
	row, err := spotRow(envelope, event.LotID.String())
	if err != nil {
		return err
	}
	row.SpotsAdded = int64(event.SpotCount)
	row.RemainingCapacity = int64Ptr(int64(event.SpotCount))
	row.Price = event.Price.Rat()
	return h.writer.InsertSpotEvent(ctx, row)
}

type lotUpdatedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newLotUpdatedHandler(w Writer, logg *logger.Logger) Handler {
	return &lotUpdatedHandler{writer: w, logg: logg}
}

func (h *lotUpdatedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.LotUpdatedEvent)
	if !ok {
		return payloadTypeError(envelope, payload)
	}
	row, err := spotRow(envelope, event.LotID.String())
	if err != nil {
		return err
	}
	row.SpotsAdded = int64(event.SpotsAdded)
	row.SpotsRemoved = int64(event.SpotsRemoved)
	row.RemainingCapacity = int64Ptr(int64(event.RemainingCapacity))
	row.Price = event.Price.Rat()
	return h.writer.InsertSpotEvent(ctx, row)
}

type lotDeletedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newLotDeletedHandler(w Writer, logg *logger.Logger) Handler {
	return &lotDeletedHandler{writer: w, logg: logg}
}

func (h *lotDeletedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.LotDeletedEvent)
	if !ok {
		return payloadTypeError(envelope, payload)
	}
	row, err := spotRow(envelope, event.LotID.String())
	if err != nil {
		return err
	}
	row.SpotsRemoved = int64(event.SpotsRemoved)
	row.RemainingCapacity = int64Ptr(0)
	return h.writer.InsertSpotEvent(ctx, row)
}

func spotRow(envelope types.Envelope, lotID string) (types.SpotEventRow, error) {
	encoded, err := writer.EncodeJSON(envelope.Payload)
	if err != nil {
		return types.SpotEventRow{}, err
	}
	return types.SpotEventRow{
		EventID:    envelope.EventID,
		EventType:  string(envelope.EventType),
		OccurredAt: envelope.OccurredAt,
		LotID:      lotID,
		ActorRole:  envelope.ActorRole(),
		Payload:    encoded,
	}, nil
}
