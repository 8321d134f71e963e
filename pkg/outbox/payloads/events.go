package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotCreatedEvent is emitted once a lot and its initial spots exist.
type LotCreatedEvent struct {
	LotID      uuid.UUID       `json:"lot_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	PostalCode string          `json:"postal_code"`
	SpotCount  int             `json:"spot_count"`
}

// LotUpdatedEvent carries the lot state after an edit.
type LotUpdatedEvent struct {
	LotID             uuid.UUID       `json:"lot_id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	SpotCount         int             `json:"spot_count"`
	SpotsAdded        int             `json:"spots_added"`
	SpotsRemoved      int             `json:"spots_removed"`
	RemainingCapacity int             `json:"remaining_capacity"`
}

// LotDeletedEvent is emitted when a lot is retired.
type LotDeletedEvent struct {
	LotID        uuid.UUID `json:"lot_id"`
	SpotsRemoved int       `json:"spots_removed"`
	DeletedAt    time.Time `json:"deleted_at"`
}

// SpotRemovedEvent reports a spot leaving service. OrphanedReservationID is
// set when the spot was occupied at the time.
type SpotRemovedEvent struct {
	SpotID                uuid.UUID  `json:"spot_id"`
	LotID                 uuid.UUID  `json:"lot_id"`
	Label                 string     `json:"label"`
	PreviousStatus        string     `json:"previous_status"`
	OrphanedReservationID *uuid.UUID `json:"orphaned_reservation_id,omitempty"`
	RemainingCapacity     int        `json:"remaining_capacity"`
	RemovedAt             time.Time  `json:"removed_at"`
}

// ReservationOpenedEvent is emitted when a spot is booked.
type ReservationOpenedEvent struct {
	ReservationID     uuid.UUID       `json:"reservation_id"`
	LotID             uuid.UUID       `json:"lot_id"`
	SpotID            uuid.UUID       `json:"spot_id"`
	UserID            uuid.UUID       `json:"user_id"`
	VehicleType       string          `json:"vehicle_type"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	StartedAt         time.Time       `json:"started_at"`
	RemainingCapacity int             `json:"remaining_capacity"`
}

// ReservationClosedEvent is emitted when a reservation is released and billed.
type ReservationClosedEvent struct {
	ReservationID     uuid.UUID       `json:"reservation_id"`
	LotID             uuid.UUID       `json:"lot_id"`
	SpotID            uuid.UUID       `json:"spot_id"`
	UserID            uuid.UUID       `json:"user_id"`
	VehicleType       string          `json:"vehicle_type"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	StartedAt         time.Time       `json:"started_at"`
	EndedAt           time.Time       `json:"ended_at"`
	DurationSeconds   int64           `json:"duration_seconds"`
	SpotReturned      bool            `json:"spot_returned"`
	RemainingCapacity int             `json:"remaining_capacity"`
}
