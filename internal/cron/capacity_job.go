package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/parkinglot-backend/internal/capacity"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
)

type capacityReconciler interface {
	ReconcileAll(ctx context.Context) (capacity.ReconcileReport, error)
}

// NewCapacityReconcileJob rewrites every lot's remaining capacity from its
// spot rows.
func NewCapacityReconcileJob(reconciler capacityReconciler, logg *logger.Logger) (Job, error) {
	if reconciler == nil {
		return nil, fmt.Errorf("capacity reconciler required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &capacityReconcileJob{reconciler: reconciler, logg: logg}, nil
}

type capacityReconcileJob struct {
	reconciler capacityReconciler
	logg       *logger.Logger
}

func (j *capacityReconcileJob) Name() string { return "capacity_reconcile" }

func (j *capacityReconcileJob) Run(ctx context.Context) error {
	report, err := j.reconciler.ReconcileAll(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"lots":      report.Lots,
		"corrected": report.Corrected,
		"failed":    report.Failed,
	})
	if err != nil {
		return fmt.Errorf("capacity reconcile: %w", err)
	}
	if report.Corrected > 0 {
		j.logg.Warn(logCtx, "capacity drift corrected")
		return nil
	}
	j.logg.Info(logCtx, "capacity reconcile complete")
	return nil
}
