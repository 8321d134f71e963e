package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/parkinglot-backend/pkg/db/dbtest"
	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/angelmondragon/parkinglot-backend/pkg/pagination"
)

var base = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	_, conn := dbtest.Client(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func seedReservation(t *testing.T, conn *gorm.DB, spot models.ParkingSpot, user *models.User, startedAt time.Time, closedCost string) *models.Reservation {
	t.Helper()
	reservation := &models.Reservation{
		SpotID:      spot.ID,
		UserID:      user.ID,
		VehicleType: "car",
		StartedAt:   startedAt,
		UnitPrice:   decimal.NewFromInt(10),
		Active:      closedCost == "",
	}
	if closedCost != "" {
		ended := startedAt.Add(time.Hour)
		cost := decimal.RequireFromString(closedCost)
		reservation.EndedAt = &ended
		reservation.TotalCost = &cost
	} else {
		dbtest.SetSpotStatus(t, conn, spot.ID, enums.SpotStatusOccupied)
	}
	require.NoError(t, conn.Create(reservation).Error)
	return reservation
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestListAvailableLotsSkipsFullAndRemovedLots(t *testing.T) {
	svc, conn := newTestService(t)
	open, _ := dbtest.SeedLot(t, conn, "10", 2)
	full, fullSpots := dbtest.SeedLot(t, conn, "10", 1)
	gone, _ := dbtest.SeedLot(t, conn, "10", 1)
	dbtest.SetSpotStatus(t, conn, fullSpots[0].ID, enums.SpotStatusOccupied)
	require.NoError(t, conn.Model(&models.ParkingLot{}).Where("id = ?", gone.ID).Update("status", enums.LotStatusRemoved).Error)

	rows, err := svc.ListAvailableLots(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, open.ID, rows[0].LotID)
	assert.Equal(t, 2, rows[0].AvailableSpots)
	assert.Equal(t, 2, rows[0].TotalSpots)
	assert.NotEqual(t, full.ID, rows[0].LotID)
}

func TestListAvailableLotsFiltersByQuery(t *testing.T) {
	svc, conn := newTestService(t)
	lot, _ := dbtest.SeedLot(t, conn, "10", 1)
	other, _ := dbtest.SeedLot(t, conn, "10", 1)
	require.NoError(t, conn.Model(&models.ParkingLot{}).Where("id = ?", other.ID).
		Updates(map[string]any{"address": "9 Harbour Lane", "postal_code": "110011"}).Error)

	rows, err := svc.ListAvailableLots(context.Background(), "MARKET")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, lot.ID, rows[0].LotID)

	rows, err = svc.ListAvailableLots(context.Background(), "110011")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, other.ID, rows[0].LotID)

	rows, err = svc.ListAvailableLots(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestListActiveBookingsOnlyReturnsOpenReservations(t *testing.T) {
	svc, conn := newTestService(t)
	lot, lotSpots := dbtest.SeedLot(t, conn, "10", 3)
	user := dbtest.SeedUser(t, conn, "parker@example.com")
	other := dbtest.SeedUser(t, conn, "other@example.com")

	open := seedReservation(t, conn, lotSpots[0], user, base, "")
	seedReservation(t, conn, lotSpots[1], user, base.Add(-2*time.Hour), "10")
	seedReservation(t, conn, lotSpots[2], other, base, "")

	rows, err := svc.ListActiveBookings(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, open.ID, rows[0].ReservationID)
	assert.Equal(t, lot.Name, rows[0].LotName)
	assert.Equal(t, "A1", rows[0].SpotLabel)

	_, err = svc.ListActiveBookings(context.Background(), uuid.Nil)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestListHistoryPaginatesNewestFirst(t *testing.T) {
	svc, conn := newTestService(t)
	_, lotSpots := dbtest.SeedLot(t, conn, "10", 3)
	user := dbtest.SeedUser(t, conn, "parker@example.com")

	oldest := seedReservation(t, conn, lotSpots[0], user, base.Add(-3*time.Hour), "10")
	middle := seedReservation(t, conn, lotSpots[1], user, base.Add(-2*time.Hour), "10")
	newest := seedReservation(t, conn, lotSpots[2], user, base, "")

	first, err := svc.ListHistory(context.Background(), user.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, newest.ID, first.Items[0].ReservationID)
	assert.True(t, first.Items[0].Active)
	assert.Nil(t, first.Items[0].TotalCost)
	assert.Equal(t, middle.ID, first.Items[1].ReservationID)
	require.NotNil(t, first.Items[1].TotalCost)
	assert.Equal(t, "10.00", first.Items[1].TotalCost.StringFixed(2))
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListHistory(context.Background(), user.ID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, oldest.ID, second.Items[0].ReservationID)
	assert.Empty(t, second.NextCursor)
}

func TestListHistoryRejectsBadCursor(t *testing.T) {
	svc, conn := newTestService(t)
	user := dbtest.SeedUser(t, conn, "parker@example.com")

	_, err := svc.ListHistory(context.Background(), user.ID, pagination.Params{Cursor: "%%%"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestOccupancySummaryCountsActiveReservations(t *testing.T) {
	svc, conn := newTestService(t)
	lot, lotSpots := dbtest.SeedLot(t, conn, "10", 3)
	user := dbtest.SeedUser(t, conn, "parker@example.com")
	seedReservation(t, conn, lotSpots[0], user, base, "")
	seedReservation(t, conn, lotSpots[1], user, base.Add(-time.Hour), "5")
	dbtest.SetSpotStatus(t, conn, lotSpots[2].ID, enums.SpotStatusRemoved)

	rows, err := svc.OccupancySummary(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, lot.ID, rows[0].LotID)
	assert.Equal(t, 1, rows[0].ActiveReservations)
	assert.Equal(t, 2, rows[0].TotalSpots)
}

func TestUsageSummaryGroupsByLot(t *testing.T) {
	svc, conn := newTestService(t)
	busy, busySpots := dbtest.SeedLot(t, conn, "10", 2)
	quiet, quietSpots := dbtest.SeedLot(t, conn, "10", 1)
	user := dbtest.SeedUser(t, conn, "parker@example.com")

	seedReservation(t, conn, busySpots[0], user, base.Add(-4*time.Hour), "10")
	seedReservation(t, conn, busySpots[1], user, base.Add(-2*time.Hour), "12.5")
	seedReservation(t, conn, quietSpots[0], user, base, "")

	rows, err := svc.UsageSummary(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, busy.ID, rows[0].LotID)
	assert.Equal(t, 2, rows[0].Bookings)
	assert.Equal(t, "22.50", rows[0].TotalSpent.StringFixed(2))
	assert.Equal(t, quiet.ID, rows[1].LotID)
	assert.Equal(t, 1, rows[1].Bookings)
	assert.True(t, rows[1].TotalSpent.IsZero())
}

func TestOccupiedSpotDetailsAndUsers(t *testing.T) {
	svc, conn := newTestService(t)
	_, lotSpots := dbtest.SeedLot(t, conn, "10", 2)
	user := dbtest.SeedUser(t, conn, "parker@example.com")
	dbtest.SeedUser(t, conn, "idle@example.com")
	open := seedReservation(t, conn, lotSpots[1], user, base, "")
	seedReservation(t, conn, lotSpots[0], user, base.Add(-time.Hour), "10")

	occupied, err := svc.OccupiedSpotDetails(context.Background())
	require.NoError(t, err)
	require.Len(t, occupied, 1)
	assert.Equal(t, open.ID, occupied[0].ReservationID)
	assert.Equal(t, "parker@example.com", occupied[0].UserEmail)
	assert.Equal(t, "A2", occupied[0].SpotLabel)
	assert.Equal(t, "occupied", occupied[0].SpotStatus)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	byEmail := map[string]UserSummaryDTO{}
	for _, u := range users {
		byEmail[u.Email] = u
	}
	assert.Equal(t, 1, byEmail["parker@example.com"].ActiveBookings)
	assert.Equal(t, 2, byEmail["parker@example.com"].TotalBookings)
	assert.Equal(t, 0, byEmail["idle@example.com"].TotalBookings)
}

func TestLikeTermStripsWildcards(t *testing.T) {
	assert.Equal(t, "", likeTerm("   "))
	assert.Equal(t, "", likeTerm("%_"))
	assert.Equal(t, "%abc%", likeTerm(" A%bC "))
}
