// Package capacity keeps parking_lots.remaining_capacity equal to the number
// of available spots in the lot.
package capacity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Manager recomputes the cached counter from spot rows. Every hook runs on
// the caller's transaction so the counter commits with the status change
// that caused it.
type Manager struct {
	db   txRunner
	logg *logger.Logger
}

// ReconcileReport summarises a ReconcileAll sweep.
type ReconcileReport struct {
	Lots      int `json:"lots"`
	Corrected int `json:"corrected"`
	Failed    int `json:"failed"`
}

func NewManager(db txRunner, logg *logger.Logger) (*Manager, error) {
	if db == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &Manager{db: db, logg: logg}, nil
}

// Reconcile writes the available spot count of lotID into
// remaining_capacity and returns it.
func (m *Manager) Reconcile(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) (int, error) {
	available, _, err := m.reconcile(ctx, tx, lotID)
	return available, err
}

func (m *Manager) OnBook(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) (int, error) {
	return m.Reconcile(ctx, tx, lotID)
}

func (m *Manager) OnRelease(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) (int, error) {
	return m.Reconcile(ctx, tx, lotID)
}

func (m *Manager) OnSpotRemoved(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) (int, error) {
	return m.Reconcile(ctx, tx, lotID)
}

func (m *Manager) reconcile(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) (int, bool, error) {
	if tx == nil {
		return 0, false, pkgerrors.New(pkgerrors.CodeInternal, "capacity reconcile requires a transaction")
	}
	var lot models.ParkingLot
	if err := tx.WithContext(ctx).Select("id", "remaining_capacity").First(&lot, "id = ?", lotID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, false, pkgerrors.New(pkgerrors.CodeNotFound, "lot not found")
		}
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lot capacity")
	}

	var available int64
	if err := tx.WithContext(ctx).
		Model(&models.ParkingSpot{}).
		Where("lot_id = ? AND status = ?", lotID, enums.SpotStatusAvailable).
		Count(&available).Error; err != nil {
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count available spots")
	}

	if int(available) == lot.RemainingCapacity {
		return int(available), false, nil
	}
	if err := tx.WithContext(ctx).
		Model(&models.ParkingLot{}).
		Where("id = ?", lotID).
		Update("remaining_capacity", available).Error; err != nil {
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update remaining capacity")
	}
	return int(available), true, nil
}

// ReconcileAll sweeps every lot in its own transaction. A failing lot does
// not stop the sweep; failures are combined into the returned error.
func (m *Manager) ReconcileAll(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	var lotIDs []uuid.UUID
	err := m.db.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.WithContext(ctx).Model(&models.ParkingLot{}).Order("created_at ASC").Pluck("id", &lotIDs).Error
	})
	if err != nil {
		return report, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list lots")
	}

	var errs error
	for _, lotID := range lotIDs {
		if ctx.Err() != nil {
			errs = multierr.Append(errs, ctx.Err())
			break
		}
		report.Lots++
		var corrected bool
		err := m.db.WithTx(ctx, func(tx *gorm.DB) error {
			var err error
			_, corrected, err = m.reconcile(ctx, tx, lotID)
			return err
		})
		if err != nil {
			report.Failed++
			errs = multierr.Append(errs, fmt.Errorf("lot %s: %w", lotID, err))
			continue
		}
		if corrected {
			report.Corrected++
			if m.logg != nil {
				m.logg.Warn(m.logg.WithLotID(ctx, lotID.String()), "remaining capacity drifted and was corrected")
			}
		}
	}
	return report, errs
}
