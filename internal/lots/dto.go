package lots

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/parkinglot-backend/internal/spots"
	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
)

// LotDTO is the admin view of a lot.
type LotDTO struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Address           string          `json:"address"`
	PostalCode        string          `json:"postal_code"`
	Status            enums.LotStatus `json:"status"`
	RemainingCapacity int             `json:"remaining_capacity"`
	SpotCount         int             `json:"spot_count"`
	OccupiedCount     int             `json:"occupied_count"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CreateLotInput creates a lot with Capacity spots labelled A1..An.
type CreateLotInput struct {
	Name       string
	Price      decimal.Decimal
	Address    string
	PostalCode string
	Capacity   int
}

// UpdateLotInput is a partial update; nil fields keep their stored value.
// Capacity is the desired number of in-service spots.
type UpdateLotInput struct {
	Name       *string
	Price      *decimal.Decimal
	Address    *string
	PostalCode *string
	Capacity   *int
}

func fromModel(lot *models.ParkingLot, counts spots.StatusCounts) *LotDTO {
	return &LotDTO{
		ID:                lot.ID,
		Name:              lot.Name,
		Price:             lot.Price,
		Address:           lot.Address,
		PostalCode:        lot.PostalCode,
		Status:            lot.Status,
		RemainingCapacity: lot.RemainingCapacity,
		SpotCount:         counts.InService(),
		OccupiedCount:     counts.Occupied,
		CreatedAt:         lot.CreatedAt,
		UpdatedAt:         lot.UpdatedAt,
	}
}
