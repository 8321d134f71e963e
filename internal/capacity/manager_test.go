package capacity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/parkinglot-backend/pkg/db/dbtest"
	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/google/uuid"
)

func TestNewManagerRequiresRunner(t *testing.T) {
	_, err := NewManager(nil, nil)
	require.Error(t, err)
}

func TestReconcileCountsAvailableSpots(t *testing.T) {
	client, conn := dbtest.Client(t)
	mgr, err := NewManager(client, nil)
	require.NoError(t, err)

	lot, spots := dbtest.SeedLot(t, conn, "10", 3)
	dbtest.SetSpotStatus(t, conn, spots[0].ID, enums.SpotStatusOccupied)
	dbtest.SetSpotStatus(t, conn, spots[1].ID, enums.SpotStatusRemoved)

	var got int
	err = client.WithTx(context.Background(), func(tx *gorm.DB) error {
		got, err = mgr.OnBook(context.Background(), tx, lot.ID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 1, dbtest.RemainingCapacity(t, conn, lot.ID))
}

func TestHooksNeverGoNegative(t *testing.T) {
	client, conn := dbtest.Client(t)
	mgr, err := NewManager(client, nil)
	require.NoError(t, err)

	lot, spots := dbtest.SeedLot(t, conn, "10", 1)
	dbtest.SetSpotStatus(t, conn, spots[0].ID, enums.SpotStatusOccupied)

	for _, hook := range []func(context.Context, *gorm.DB, uuid.UUID) (int, error){mgr.OnBook, mgr.OnSpotRemoved, mgr.OnBook} {
		err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
			_, err := hook(context.Background(), tx, lot.ID)
			return err
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 0, dbtest.RemainingCapacity(t, conn, lot.ID))

	dbtest.SetSpotStatus(t, conn, spots[0].ID, enums.SpotStatusAvailable)
	err = client.WithTx(context.Background(), func(tx *gorm.DB) error {
		_, err := mgr.OnRelease(context.Background(), tx, lot.ID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, dbtest.RemainingCapacity(t, conn, lot.ID))
}

func TestReconcileUnknownLot(t *testing.T) {
	client, _ := dbtest.Client(t)
	mgr, err := NewManager(client, nil)
	require.NoError(t, err)

	err = client.WithTx(context.Background(), func(tx *gorm.DB) error {
		_, err := mgr.Reconcile(context.Background(), tx, uuid.New())
		return err
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestReconcileRequiresTransaction(t *testing.T) {
	client, _ := dbtest.Client(t)
	mgr, err := NewManager(client, nil)
	require.NoError(t, err)

	_, err = mgr.Reconcile(context.Background(), nil, uuid.New())
	require.Error(t, err)
}

func TestReconcileAllCorrectsDrift(t *testing.T) {
	client, conn := dbtest.Client(t)
	mgr, err := NewManager(client, nil)
	require.NoError(t, err)

	drifted, _ := dbtest.SeedLot(t, conn, "10", 2)
	clean, _ := dbtest.SeedLot(t, conn, "5", 1)
	require.NoError(t, conn.Model(&models.ParkingLot{}).Where("id = ?", drifted.ID).Update("remaining_capacity", 0).Error)

	report, err := mgr.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{Lots: 2, Corrected: 1}, report)
	assert.Equal(t, 2, dbtest.RemainingCapacity(t, conn, drifted.ID))
	assert.Equal(t, 1, dbtest.RemainingCapacity(t, conn, clean.ID))
}
