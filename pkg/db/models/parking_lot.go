package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
)

// ParkingLot groups spots under a single hourly price. RemainingCapacity is a
// cached count of available spots, rewritten whenever a spot changes state.
type ParkingLot struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name              string          `gorm:"column:name;not null"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Address           string          `gorm:"column:address;not null"`
	PostalCode        string          `gorm:"column:postal_code;type:varchar(6);not null"`
	Status            enums.LotStatus `gorm:"column:status;type:lot_status;not null"`
	RemainingCapacity int             `gorm:"column:remaining_capacity;not null"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (ParkingLot) TableName() string { return "parking_lots" }

func (l *ParkingLot) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = enums.LotStatusActive
	}
	return nil
}
