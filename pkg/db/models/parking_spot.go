package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
)

// ParkingSpot is a single bookable slot inside a lot.
type ParkingSpot struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	LotID              uuid.UUID        `gorm:"column:lot_id;type:uuid;not null;index"`
	Position           int              `gorm:"column:position;not null"`
	Label              string           `gorm:"column:label;not null"`
	Status             enums.SpotStatus `gorm:"column:status;type:spot_status;not null"`
	VehicleType        *string          `gorm:"column:vehicle_type"`
	HandicapAccessible bool             `gorm:"column:handicap_accessible;not null"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (ParkingSpot) TableName() string { return "parking_spots" }

func (s *ParkingSpot) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = enums.SpotStatusAvailable
	}
	if s.Label == "" && s.Position > 0 {
		s.Label = SpotLabel(s.Position)
	}
	return nil
}

// SpotLabel renders the display label for a spot position (A1, A2, ...).
func SpotLabel(position int) string {
	return fmt.Sprintf("A%d", position)
}
