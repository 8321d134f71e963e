package spots

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
)

// SpotDTO is the transport shape of a parking spot.
type SpotDTO struct {
	ID                 uuid.UUID        `json:"id"`
	LotID              uuid.UUID        `json:"lot_id"`
	Position           int              `json:"position"`
	Label              string           `json:"label"`
	Status             enums.SpotStatus `json:"status"`
	VehicleType        *string          `json:"vehicle_type,omitempty"`
	HandicapAccessible bool             `json:"handicap_accessible"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// RemovalResult is returned by Remove. OrphanedReservationID is set when
// the spot was occupied; that reservation stays open.
type RemovalResult struct {
	Spot                  SpotDTO    `json:"spot"`
	PreviousStatus        string     `json:"previous_status"`
	OrphanedReservationID *uuid.UUID `json:"orphaned_reservation_id,omitempty"`
	RemainingCapacity     int        `json:"remaining_capacity"`
}

func FromModel(s *models.ParkingSpot) SpotDTO {
	return SpotDTO{
		ID:                 s.ID,
		LotID:              s.LotID,
		Position:           s.Position,
		Label:              s.Label,
		Status:             s.Status,
		VehicleType:        s.VehicleType,
		HandicapAccessible: s.HandicapAccessible,
		UpdatedAt:          s.UpdatedAt,
	}
}

func FromModels(spots []models.ParkingSpot) []SpotDTO {
	out := make([]SpotDTO, 0, len(spots))
	for i := range spots {
		out = append(out, FromModel(&spots[i]))
	}
	return out
}
