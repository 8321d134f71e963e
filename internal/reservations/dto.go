package reservations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
)

// BookInput requests a spot in LotID. A zero UnitPrice captures the lot's
// current price.
type BookInput struct {
	LotID       uuid.UUID
	UserID      uuid.UUID
	VehicleType string
	UnitPrice   decimal.Decimal
}

// ReleaseInput closes ReservationID. Non-admin actors may only release their
// own reservations.
type ReleaseInput struct {
	ReservationID uuid.UUID
	ActorUserID   *uuid.UUID
	ActorIsAdmin  bool
}

// ReservationDTO is the transport shape of a reservation.
type ReservationDTO struct {
	ID          uuid.UUID        `json:"id"`
	LotID       uuid.UUID        `json:"lot_id"`
	SpotID      uuid.UUID        `json:"spot_id"`
	SpotLabel   string           `json:"spot_label"`
	UserID      uuid.UUID        `json:"user_id"`
	VehicleType string           `json:"vehicle_type"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	StartedAt   time.Time        `json:"started_at"`
	EndedAt     *time.Time       `json:"ended_at,omitempty"`
	TotalCost   *decimal.Decimal `json:"total_cost,omitempty"`
	Active      bool             `json:"active"`
}

// BookResult is returned by Book.
type BookResult struct {
	Reservation       ReservationDTO `json:"reservation"`
	RemainingCapacity int            `json:"remaining_capacity"`
}

// ReleaseResult is returned by Release.
type ReleaseResult struct {
	Reservation       ReservationDTO  `json:"reservation"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	DurationSeconds   int64           `json:"duration_seconds"`
	SpotReturned      bool            `json:"spot_returned"`
	RemainingCapacity int             `json:"remaining_capacity"`
}

func fromModel(r *models.Reservation, spot *models.ParkingSpot) ReservationDTO {
	return ReservationDTO{
		ID:          r.ID,
		LotID:       spot.LotID,
		SpotID:      r.SpotID,
		SpotLabel:   spot.Label,
		UserID:      r.UserID,
		VehicleType: r.VehicleType,
		UnitPrice:   r.UnitPrice,
		StartedAt:   r.StartedAt,
		EndedAt:     r.EndedAt,
		TotalCost:   r.TotalCost,
		Active:      r.Active,
	}
}
