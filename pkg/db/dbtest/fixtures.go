package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
)

// SeedUser inserts a user with a placeholder password hash.
func SeedUser(t *testing.T, conn *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "unused",
		Name:         "Test User",
		Address:      "1 Test Street",
		PostalCode:   "560001",
		Revenue:      decimal.Zero,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

// SeedLot inserts an active lot with capacity available spots A1..An and a
// matching remaining_capacity.
func SeedLot(t *testing.T, conn *gorm.DB, price string, capacity int) (*models.ParkingLot, []models.ParkingSpot) {
	t.Helper()
	lot := &models.ParkingLot{
		Name:              fmt.Sprintf("Lot %s", uuid.NewString()[:8]),
		Price:             decimal.RequireFromString(price),
		Address:           "42 Market Road",
		PostalCode:        "400001",
		Status:            enums.LotStatusActive,
		RemainingCapacity: capacity,
	}
	require.NoError(t, conn.Create(lot).Error)

	spots := make([]models.ParkingSpot, 0, capacity)
	for i := 1; i <= capacity; i++ {
		spots = append(spots, models.ParkingSpot{LotID: lot.ID, Position: i})
	}
	if capacity > 0 {
		require.NoError(t, conn.Create(&spots).Error)
	}
	return lot, spots
}

// SetSpotStatus forces a spot into status without touching the lot counter.
func SetSpotStatus(t *testing.T, conn *gorm.DB, spotID uuid.UUID, status enums.SpotStatus) {
	t.Helper()
	require.NoError(t, conn.Model(&models.ParkingSpot{}).Where("id = ?", spotID).Update("status", status).Error)
}

// RemainingCapacity reads the persisted counter of lotID.
func RemainingCapacity(t *testing.T, conn *gorm.DB, lotID uuid.UUID) int {
	t.Helper()
	var lot models.ParkingLot
	require.NoError(t, conn.First(&lot, "id = ?", lotID).Error)
	return lot.RemainingCapacity
}

// AvailableSpots counts available spots of lotID.
func AvailableSpots(t *testing.T, conn *gorm.DB, lotID uuid.UUID) int {
	t.Helper()
	return int(Count(t, conn, "parking_spots", "lot_id = ? AND status = ?", lotID, enums.SpotStatusAvailable))
}
