package reports

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AvailableLotDTO is a lot that can currently take a booking.
type AvailableLotDTO struct {
	LotID             uuid.UUID       `json:"lot_id"`
	Name              string          `json:"name"`
	Address           string          `json:"address"`
	PostalCode        string          `json:"postal_code"`
	Price             decimal.Decimal `json:"price"`
	RemainingCapacity int             `json:"remaining_capacity"`
	AvailableSpots    int             `json:"available_spots"`
	TotalSpots        int             `json:"total_spots"`
}

// ActiveBookingDTO is an open reservation of the caller.
type ActiveBookingDTO struct {
	ReservationID uuid.UUID       `json:"reservation_id"`
	LotID         uuid.UUID       `json:"lot_id"`
	LotName       string          `json:"lot_name"`
	SpotID        uuid.UUID       `json:"spot_id"`
	SpotLabel     string          `json:"spot_label"`
	VehicleType   string          `json:"vehicle_type"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StartedAt     time.Time       `json:"started_at"`
}

// HistoryEntryDTO is one reservation, open or closed.
type HistoryEntryDTO struct {
	ReservationID uuid.UUID        `json:"reservation_id"`
	LotID         uuid.UUID        `json:"lot_id"`
	LotName       string           `json:"lot_name"`
	SpotLabel     string           `json:"spot_label"`
	VehicleType   string           `json:"vehicle_type"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	StartedAt     time.Time        `json:"started_at"`
	EndedAt       *time.Time       `json:"ended_at,omitempty"`
	TotalCost     *decimal.Decimal `json:"total_cost,omitempty"`
	Active        bool             `json:"active"`
}

// LotOccupancyDTO compares open reservations with in-service spots.
type LotOccupancyDTO struct {
	LotID              uuid.UUID `json:"lot_id"`
	LotName            string    `json:"lot_name"`
	ActiveReservations int       `json:"active_reservations"`
	TotalSpots         int       `json:"total_spots"`
	RemainingCapacity  int       `json:"remaining_capacity"`
}

// LotUsageDTO counts one user's bookings in a lot.
type LotUsageDTO struct {
	LotID      uuid.UUID       `json:"lot_id"`
	LotName    string          `json:"lot_name"`
	Bookings   int             `json:"bookings"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// OccupiedSpotDTO is the admin view of an open reservation.
type OccupiedSpotDTO struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	LotID         uuid.UUID `json:"lot_id"`
	LotName       string    `json:"lot_name"`
	SpotID        uuid.UUID `json:"spot_id"`
	SpotLabel     string    `json:"spot_label"`
	SpotStatus    string    `json:"spot_status"`
	UserID        uuid.UUID `json:"user_id"`
	UserName      string    `json:"user_name"`
	UserEmail     string    `json:"user_email"`
	VehicleType   string    `json:"vehicle_type"`
	StartedAt     time.Time `json:"started_at"`
}

// UserSummaryDTO is the admin listing of registered users.
type UserSummaryDTO struct {
	ID             uuid.UUID       `json:"id"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	PostalCode     string          `json:"postal_code"`
	Revenue        decimal.Decimal `json:"revenue"`
	ActiveBookings int             `json:"active_bookings"`
	TotalBookings  int             `json:"total_bookings"`
	CreatedAt      time.Time       `json:"created_at"`
}
