package main

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
	"github.com/angelmondragon/parkinglot-backend/pkg/outbox/payloads"
)

// parkingKeys are the entity ids subscribers filter on. Zero ids are left
// out of message attributes.
type parkingKeys struct {
	LotID         uuid.UUID
	SpotID        uuid.UUID
	ReservationID uuid.UUID
	UserID        uuid.UUID
}

func keysFromPayload(payload any) parkingKeys {
	switch p := payload.(type) {
	case *payloads.ReservationOpenedEvent:
		return parkingKeys{LotID: p.LotID, SpotID: p.SpotID, ReservationID: p.ReservationID, UserID: p.UserID}
	case *payloads.ReservationClosedEvent:
		return parkingKeys{LotID: p.LotID, SpotID: p.SpotID, ReservationID: p.ReservationID, UserID: p.UserID}
	case *payloads.SpotRemovedEvent:
		keys := parkingKeys{LotID: p.LotID, SpotID: p.SpotID}
		if p.OrphanedReservationID != nil {
			keys.ReservationID = *p.OrphanedReservationID
		}
		return keys
	case *payloads.LotCreatedEvent:
		return parkingKeys{LotID: p.LotID}
	case *payloads.LotUpdatedEvent:
		return parkingKeys{LotID: p.LotID}
	case *payloads.LotDeletedEvent:
		return parkingKeys{LotID: p.LotID}
	default:
		return parkingKeys{}
	}
}

func (k parkingKeys) attributes(into map[string]string) {
	for name, id := range map[string]uuid.UUID{
		"lot_id":         k.LotID,
		"spot_id":        k.SpotID,
		"reservation_id": k.ReservationID,
		"user_id":        k.UserID,
	} {
		if id != uuid.Nil {
			into[name] = id.String()
		}
	}
}

// logContext scopes log entries to the lot and reservation the event touches.
func (k parkingKeys) logContext(ctx context.Context, logg *logger.Logger) context.Context {
	if k.LotID != uuid.Nil {
		ctx = logg.WithLotID(ctx, k.LotID.String())
	}
	if k.ReservationID != uuid.Nil {
		ctx = logg.WithReservationID(ctx, k.ReservationID.String())
	}
	return ctx
}
