package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reservation records one use of a spot. UnitPrice is captured at booking and
// never changes; TotalCost and EndedAt are only set when the reservation
// closes.
type Reservation struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	SpotID      uuid.UUID        `gorm:"column:spot_id;type:uuid;not null;index"`
	UserID      uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	VehicleType string           `gorm:"column:vehicle_type;not null"`
	StartedAt   time.Time        `gorm:"column:started_at;not null"`
	EndedAt     *time.Time       `gorm:"column:ended_at"`
	UnitPrice   decimal.Decimal  `gorm:"column:unit_price;type:numeric(12,2);not null"`
	TotalCost   *decimal.Decimal `gorm:"column:total_cost;type:numeric(12,2)"`
	Active      bool             `gorm:"column:active;not null"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Reservation) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
