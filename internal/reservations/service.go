package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/parkinglot-backend/internal/lots"
	"github.com/angelmondragon/parkinglot-backend/internal/spots"
	"github.com/angelmondragon/parkinglot-backend/pkg/clock"
	"github.com/angelmondragon/parkinglot-backend/pkg/db"
	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
	"github.com/angelmondragon/parkinglot-backend/pkg/metrics"
	"github.com/angelmondragon/parkinglot-backend/pkg/outbox"
	"github.com/angelmondragon/parkinglot-backend/pkg/outbox/payloads"
)

const (
	maxVehicleTypeLength = 32
	// maxClaimAttempts bounds how many candidate spots a booking tries
	// before giving up when concurrent bookers keep winning the race.
	maxClaimAttempts = 5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// UserLedger is the users surface bookings need: existence checks and
// revenue posting, both inside the caller's transaction.
type UserLedger interface {
	ExistsWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
	CreditRevenueWithTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error
}

// CapacityHooks keeps the lot counter in step with spot transitions.
type CapacityHooks interface {
	OnBook(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) (int, error)
	OnRelease(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) (int, error)
}

// Service books and releases spots.
type Service interface {
	Book(ctx context.Context, input BookInput) (*BookResult, error)
	Release(ctx context.Context, input ReleaseInput) (*ReleaseResult, error)
}

type service struct {
	repo     Repository
	lots     lots.Repository
	spots    spots.Repository
	users    UserLedger
	tx       txRunner
	capacity CapacityHooks
	outbox   outbox.Emitter
	clock    clock.Clock
	metrics  *metrics.ParkingMetrics
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies of the reservations service.
type ServiceParams struct {
	Repo     Repository
	Lots     lots.Repository
	Spots    spots.Repository
	Users    UserLedger
	Tx       txRunner
	Capacity CapacityHooks
	Outbox   outbox.Emitter
	Clock    clock.Clock
	Metrics  *metrics.ParkingMetrics
	Logger   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("reservations repository required")
	case params.Lots == nil:
		return nil, fmt.Errorf("lots repository required")
	case params.Spots == nil:
		return nil, fmt.Errorf("spots repository required")
	case params.Users == nil:
		return nil, fmt.Errorf("user ledger required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Capacity == nil:
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
		lots:     params.Lots,
		spots:    params.Spots,
		users:    params.Users,
		tx:       params.Tx,
		capacity: params.Capacity,
		outbox:   params.Outbox,
		clock:    params.Clock,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// Book claims the lowest-position available spot in the lot and opens a
// reservation on it. The lot row lock serializes bookings per lot and the
// spot compare-and-swap guarantees a spot is never handed out twice.
func (s *service) Book(ctx context.Context, input BookInput) (*BookResult, error) {
	result, err := s.book(ctx, input)
	s.metrics.BookingOutcome(outcomeFor(err))
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithLotID(ctx, result.Reservation.LotID.String())
		logCtx = s.logg.WithReservationID(logCtx, result.Reservation.ID.String())
		s.logg.Info(logCtx, "spot booked")
	}
	return result, nil
}

func (s *service) book(ctx context.Context, input BookInput) (*BookResult, error) {
	vehicleType := strings.TrimSpace(input.VehicleType)
	details := map[string]string{}
	if input.LotID == uuid.Nil {
		details["lot_id"] = "is required"
	}
	switch {
	case vehicleType == "":
		details["vehicle_type"] = "is required"
	case len(vehicleType) > maxVehicleTypeLength:
		details["vehicle_type"] = fmt.Sprintf("must be at most %d", maxVehicleTypeLength)
	}
	if input.UnitPrice.IsNegative() {
		details["unit_price"] = "must be greater than 0"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var result *BookResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		lot, err := s.lots.WithTx(tx).LockByID(ctx, input.LotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLotNotFound
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lot")
		}
		if lot.Status != enums.LotStatusActive {
			return ErrLotNotFound
		}

		exists, err := s.users.ExistsWithTx(ctx, tx, input.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		if !exists {
			return ErrUserNotFound
		}

		unitPrice := lot.Price
		if input.UnitPrice.IsPositive() {
			unitPrice = input.UnitPrice
		}

		spot, err := s.claimSpot(ctx, s.spots.WithTx(tx), lot.ID, vehicleType)
		if err != nil {
			return err
		}

		reservation := &models.Reservation{
			SpotID:      spot.ID,
			UserID:      input.UserID,
			VehicleType: vehicleType,
			StartedAt:   s.clock.Now(),
			UnitPrice:   unitPrice,
			Active:      true,
		}
		if err := s.repo.WithTx(tx).Create(ctx, reservation); err != nil {
			if db.IsUniqueViolation(err, "") {
				return ErrNoAvailableSpot
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
		}

		remaining, err := s.capacity.OnBook(ctx, tx, lot.ID)
		if err != nil {
			return err
		}

		userID := input.UserID
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationOpened,
			AggregateType: enums.AggregateReservation,
			AggregateID:   reservation.ID,
			Actor:         outbox.NewActor(&userID, enums.PrincipalRoleUser.String()),
			OccurredAt:    reservation.StartedAt,
			Data: payloads.ReservationOpenedEvent{
				ReservationID:     reservation.ID,
				LotID:             lot.ID,
				SpotID:            spot.ID,
				UserID:            reservation.UserID,
				VehicleType:       vehicleType,
				UnitPrice:         unitPrice,
				StartedAt:         reservation.StartedAt,
				RemainingCapacity: remaining,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit reservation opened")
		}

		result = &BookResult{
			Reservation:       fromModel(reservation, spot),
			RemainingCapacity: remaining,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) claimSpot(ctx context.Context, repo spots.Repository, lotID uuid.UUID, vehicleType string) (*models.ParkingSpot, error) {
	var lost []uuid.UUID
	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		spot, err := repo.FirstAvailable(ctx, lotID, lost)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoAvailableSpot
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "select spot")
		}
		claimed, err := repo.Claim(ctx, spot.ID, vehicleType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim spot")
		}
		if claimed {
			spot.Status = enums.SpotStatusOccupied
			spot.VehicleType = &vehicleType
			return spot, nil
		}
		lost = append(lost, spot.ID)
	}
	return nil, ErrNoAvailableSpot
}

// Release closes an active reservation, bills it and returns its spot.
func (s *service) Release(ctx context.Context, input ReleaseInput) (*ReleaseResult, error) {
	result, err := s.release(ctx, input)
	s.metrics.ReleaseOutcome(outcomeFor(err))
	if err != nil {
		return nil, err
	}
	s.metrics.SessionClosed(result.TotalCost, time.Duration(result.DurationSeconds)*time.Second)
	if s.logg != nil {
		logCtx := s.logg.WithReservationID(ctx, result.Reservation.ID.String())
		logCtx = s.logg.WithLotID(logCtx, result.Reservation.LotID.String())
		if !result.SpotReturned {
			s.logg.Warn(logCtx, "reservation released on removed spot")
		} else {
			s.logg.Info(logCtx, "spot released")
		}
	}
	return result, nil
}

func (s *service) release(ctx context.Context, input ReleaseInput) (*ReleaseResult, error) {
	if input.ReservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"reservation_id": "is required"})
	}
	if !input.ActorIsAdmin && (input.ActorUserID == nil || *input.ActorUserID == uuid.Nil) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var result *ReleaseResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		spotRepo := s.spots.WithTx(tx)

		reservation, err := repo.LockByID(ctx, input.ReservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
		}
		if !input.ActorIsAdmin && reservation.UserID != *input.ActorUserID {
			return ErrReservationNotFound
		}
		if !reservation.Active {
			return ErrAlreadyClosed
		}

		endedAt := s.clock.Now()
		cost, elapsed := ComputeCost(reservation.StartedAt, endedAt, reservation.UnitPrice)

		closed, err := repo.Close(ctx, reservation.ID, endedAt, cost)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close reservation")
		}
		if !closed {
			return ErrAlreadyClosed
		}
		reservation.Active = false
		reservation.EndedAt = &endedAt
		reservation.TotalCost = &cost

		spot, err := spotRepo.LockByID(ctx, reservation.SpotID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load spot")
		}
		returned, err := spotRepo.Vacate(ctx, spot.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "vacate spot")
		}
		if returned {
			spot.Status = enums.SpotStatusAvailable
			spot.VehicleType = nil
		}

		remaining, err := s.capacity.OnRelease(ctx, tx, spot.LotID)
		if err != nil {
			return err
		}

		if err := s.users.CreditRevenueWithTx(ctx, tx, reservation.UserID, cost); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit revenue")
		}

		role := enums.PrincipalRoleUser
		if input.ActorIsAdmin {
			role = enums.PrincipalRoleAdmin
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationClosed,
			AggregateType: enums.AggregateReservation,
			AggregateID:   reservation.ID,
			Actor:         outbox.NewActor(input.ActorUserID, role.String()),
			OccurredAt:    endedAt,
			Data: payloads.ReservationClosedEvent{
				ReservationID:     reservation.ID,
				LotID:             spot.LotID,
				SpotID:            spot.ID,
				UserID:            reservation.UserID,
				VehicleType:       reservation.VehicleType,
				UnitPrice:         reservation.UnitPrice,
				TotalCost:         cost,
				StartedAt:         reservation.StartedAt,
				EndedAt:           endedAt,
				DurationSeconds:   int64(elapsed.Seconds()),
				SpotReturned:      returned,
				RemainingCapacity: remaining,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit reservation closed")
		}

		result = &ReleaseResult{
			Reservation:       fromModel(reservation, spot),
			TotalCost:         cost,
			DurationSeconds:   int64(elapsed.Seconds()),
			SpotReturned:      returned,
			RemainingCapacity: remaining,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrNoAvailableSpot):
		return metrics.OutcomeNoSpot
	case errors.Is(err, ErrAlreadyClosed):
		return metrics.OutcomeAlreadyDone
	}
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeNotFound:
		return metrics.OutcomeNotFound
	case pkgerrors.CodeConflict:
		return metrics.OutcomeConflict
	}
	return metrics.OutcomeFailed
}
