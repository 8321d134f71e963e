package spots

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/parkinglot-backend/pkg/clock"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
	"github.com/angelmondragon/parkinglot-backend/pkg/outbox"
	"github.com/angelmondragon/parkinglot-backend/pkg/outbox/payloads"
)

var (
	ErrSpotNotFound   = pkgerrors.New(pkgerrors.CodeNotFound, "spot not found")
	ErrAlreadyRemoved = pkgerrors.New(pkgerrors.CodeConflict, "spot already removed")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CapacityHooks is the slice of the capacity manager spot removal needs.
type CapacityHooks interface {
	OnSpotRemoved(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) (int, error)
}

// Service exposes admin spot operations.
type Service interface {
	Remove(ctx context.Context, spotID uuid.UUID, actor *outbox.ActorRef) (*RemovalResult, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	capacity CapacityHooks
	outbox   outbox.Emitter
	clock    clock.Clock
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies of the spots service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Capacity CapacityHooks
	Outbox   outbox.Emitter
	Clock    clock.Clock
	Logger   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("spots repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Capacity == nil {
		return nil, fmt.Errorf("capacity hooks required")
	}
	if params.Outbox == nil {
		params.Outbox = outbox.Noop{}
	}
	if params.Clock == nil {
		params.Clock = clock.NewSystem()
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		capacity: params.Capacity,
		outbox:   params.Outbox,
		clock:    params.Clock,
		logg:     params.Logger,
	}, nil
}

// Remove takes a spot out of service. Occupied spots may be removed; the
// open reservation is left active and still releasable.
func (s *service) Remove(ctx context.Context, spotID uuid.UUID, actor *outbox.ActorRef) (*RemovalResult, error) {
	if spotID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "spot id required")
	}

	var result *RemovalResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		spot, err := repo.LockByID(ctx, spotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSpotNotFound
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load spot")
		}
		if spot.Status == enums.SpotStatusRemoved {
			return ErrAlreadyRemoved
		}
		previous := spot.Status

		var orphan *uuid.UUID
		if previous == enums.SpotStatusOccupied {
			orphan, err = repo.ActiveReservationID(ctx, spot.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup active reservation")
			}
		}

		removed, err := repo.MarkRemoved(ctx, spot.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark spot removed")
		}
		if !removed {
			return ErrAlreadyRemoved
		}
		spot.Status = enums.SpotStatusRemoved

		remaining, err := s.capacity.OnSpotRemoved(ctx, tx, spot.LotID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSpotRemoved,
			AggregateType: enums.AggregateParkingSpot,
			AggregateID:   spot.ID,
			Actor:         actor,
			OccurredAt:    now,
			Data: payloads.SpotRemovedEvent{
				SpotID:                spot.ID,
				LotID:                 spot.LotID,
				Label:                 spot.Label,
				PreviousStatus:        previous.String(),
				OrphanedReservationID: orphan,
				RemainingCapacity:     remaining,
				RemovedAt:             now,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit spot removed")
		}

		result = &RemovalResult{
			Spot:                  FromModel(spot),
			PreviousStatus:        previous.String(),
			OrphanedReservationID: orphan,
			RemainingCapacity:     remaining,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.OrphanedReservationID != nil && s.logg != nil {
		logCtx := s.logg.WithLotID(ctx, result.Spot.LotID.String())
		logCtx = s.logg.WithReservationID(logCtx, result.OrphanedReservationID.String())
		s.logg.Warn(logCtx, "occupied spot removed; reservation left open")
	}
	return result, nil
}
