package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/parkinglot-backend/api/responses"
	"github.com/angelmondragon/parkinglot-backend/api/validators"
	"github.com/angelmondragon/parkinglot-backend/internal/capacity"
	"github.com/angelmondragon/parkinglot-backend/internal/reports"
	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
)

// CapacityReconciler rewrites every lot counter from its spot rows.
type CapacityReconciler interface {
	ReconcileAll(ctx context.Context) (capacity.ReconcileReport, error)
}

// DLQLister reads outbox events that exhausted their publish attempts.
type DLQLister interface {
	List(ctx context.Context, limit int) ([]models.OutboxDLQ, error)
}

type dlqEntryDTO struct {
	ID            uuid.UUID `json:"id"`
	EventID       uuid.UUID `json:"event_id"`
	EventType     string    `json:"event_type"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   uuid.UUID `json:"aggregate_id"`
	ErrorReason   string    `json:"error_reason"`
	ErrorMessage  *string   `json:"error_message,omitempty"`
	AttemptCount  int       `json:"attempt_count"`
	FailedAt      time.Time `json:"failed_at"`
}

func AdminListUsers(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListUsers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminOccupiedSpots lists every open reservation with its parker.
func AdminOccupiedSpots(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.OccupiedSpotDetails(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminOccupancySummary(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.OccupancySummary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// AdminReconcileCapacity recomputes every lot's remaining capacity. Partial
// failures still return the report alongside the error details.
func AdminReconcileCapacity(reconciler CapacityReconciler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reconciler == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "capacity manager unavailable"))
			return
		}

		report, err := reconciler.ReconcileAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reconcile capacity").WithDetails(report))
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func AdminListDLQ(lister DLQLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if lister == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dlq repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := lister.List(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list outbox dlq"))
			return
		}

		out := make([]dlqEntryDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, dlqEntryDTO{
				ID:            row.ID,
				EventID:       row.EventID,
				EventType:     string(row.EventType),
				AggregateType: string(row.AggregateType),
				AggregateID:   row.AggregateID,
				ErrorReason:   string(row.ErrorReason),
				ErrorMessage:  row.ErrorMessage,
				AttemptCount:  row.AttemptCount,
				FailedAt:      row.FailedAt,
			})
		}
		responses.WriteSuccess(w, out)
	}
}
