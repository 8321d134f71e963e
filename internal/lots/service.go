package lots

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/parkinglot-backend/internal/spots"
	"github.com/angelmondragon/parkinglot-backend/pkg/clock"
	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
	"github.com/angelmondragon/parkinglot-backend/pkg/outbox"
	"github.com/angelmondragon/parkinglot-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/parkinglot-backend/pkg/types"
)

// MaxCapacity bounds the number of spots a single lot may hold.
const MaxCapacity = 500

var (
	ErrLotNotFound     = pkgerrors.New(pkgerrors.CodeNotFound, "lot not found")
	ErrLotRemoved      = pkgerrors.New(pkgerrors.CodeConflict, "lot already removed")
	ErrLotInUse        = pkgerrors.New(pkgerrors.CodeConflict, "lot has occupied spots")
	ErrCannotShrinkLot = pkgerrors.New(pkgerrors.CodeConflict, "not enough available spots to shrink lot")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CapacityReconciler recomputes a lot's remaining capacity inside tx.
type CapacityReconciler interface {
	Reconcile(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) (int, error)
}

// Service exposes lot administration.
type Service interface {
	Create(ctx context.Context, input CreateLotInput, actor *outbox.ActorRef) (*LotDTO, error)
	Update(ctx context.Context, lotID uuid.UUID, input UpdateLotInput, actor *outbox.ActorRef) (*LotDTO, error)
	Delete(ctx context.Context, lotID uuid.UUID, actor *outbox.ActorRef) error
	Get(ctx context.Context, lotID uuid.UUID) (*LotDTO, error)
	ListSpots(ctx context.Context, lotID uuid.UUID, query string) ([]spots.SpotDTO, error)
}

type service struct {
	repo     Repository
	spots    spots.Repository
	tx       txRunner
	capacity CapacityReconciler
	outbox   outbox.Emitter
	clock    clock.Clock
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies of the lots service.
type ServiceParams struct {
	Repo     Repository
	Spots    spots.Repository
	Tx       txRunner
	Capacity CapacityReconciler
	Outbox   outbox.Emitter
	Clock    clock.Clock
	Logger   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("lots repository required")
	}
	if params.Spots == nil {
		return nil, fmt.Errorf("spots repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Capacity == nil {
		return nil, fmt.Errorf("capacity reconciler required")
	}
	if params.Outbox == nil {
		params.Outbox = outbox.Noop{}
	}
	if params.Clock == nil {
		params.Clock = clock.NewSystem()
	}
	return &service{
		repo:     params.Repo,
		spots:    params.Spots,
		tx:       params.Tx,
		capacity: params.Capacity,
		outbox:   params.Outbox,
		clock:    params.Clock,
		logg:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateLotInput, actor *outbox.ActorRef) (*LotDTO, error) {
	fields := lotFields{
		Name:       strings.TrimSpace(input.Name),
		Price:      input.Price,
		Address:    strings.TrimSpace(input.Address),
		PostalCode: types.NormalizePostalCode(input.PostalCode),
	}
	details := fields.validate()
	if input.Capacity <= 0 || input.Capacity > MaxCapacity {
		details["capacity"] = fmt.Sprintf("must be between 1 and %d", MaxCapacity)
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	var out *LotDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		lot := &models.ParkingLot{
			Name:       fields.Name,
			Price:      fields.Price,
			Address:    fields.Address,
			PostalCode: fields.PostalCode,
			Status:     enums.LotStatusActive,
		}
		if err := s.repo.WithTx(tx).Create(ctx, lot); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create lot")
		}
		if err := s.spots.WithTx(tx).CreateBatch(ctx, newSpots(lot.ID, 1, input.Capacity)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create spots")
		}
		remaining, err := s.capacity.Reconcile(ctx, tx, lot.ID)
		if err != nil {
			return err
		}
		lot.RemainingCapacity = remaining

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLotCreated,
			AggregateType: enums.AggregateParkingLot,
			AggregateID:   lot.ID,
			Actor:         actor,
			OccurredAt:    s.clock.Now(),
			Data: payloads.LotCreatedEvent{
				LotID:      lot.ID,
				Name:       lot.Name,
				Price:      lot.Price,
				PostalCode: lot.PostalCode,
				SpotCount:  input.Capacity,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit lot created")
		}
		out = fromModel(lot, spots.StatusCounts{Available: remaining})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithLotID(ctx, out.ID.String()), "parking lot created")
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, lotID uuid.UUID, input UpdateLotInput, actor *outbox.ActorRef) (*LotDTO, error) {
	if input.Capacity != nil && (*input.Capacity <= 0 || *input.Capacity > MaxCapacity) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"capacity": fmt.Sprintf("must be between 1 and %d", MaxCapacity)})
	}

	var out *LotDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		spotRepo := s.spots.WithTx(tx)

		lot, err := s.lockActive(ctx, repo, lotID)
		if err != nil {
			return err
		}

		fields := lotFields{Name: lot.Name, Price: lot.Price, Address: lot.Address, PostalCode: lot.PostalCode}
		if input.Name != nil {
			fields.Name = strings.TrimSpace(*input.Name)
		}
		if input.Price != nil {
			fields.Price = *input.Price
		}
		if input.Address != nil {
			fields.Address = strings.TrimSpace(*input.Address)
		}
		if input.PostalCode != nil {
			fields.PostalCode = types.NormalizePostalCode(*input.PostalCode)
		}
		if details := fields.validate(); len(details) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
		}

		updates := map[string]any{}
		if fields.Name != lot.Name {
			updates["name"] = fields.Name
		}
		if !fields.Price.Equal(lot.Price) {
			updates["price"] = fields.Price
		}
		if fields.Address != lot.Address {
			updates["address"] = fields.Address
		}
		if fields.PostalCode != lot.PostalCode {
			updates["postal_code"] = fields.PostalCode
		}
		if err := repo.Update(ctx, lot.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update lot")
		}

		added, removed := 0, 0
		if input.Capacity != nil {
			added, removed, err = s.resize(ctx, spotRepo, lot.ID, *input.Capacity)
			if err != nil {
				return err
			}
		}

		remaining, err := s.capacity.Reconcile(ctx, tx, lot.ID)
		if err != nil {
			return err
		}
		counts, err := spotRepo.CountByStatus(ctx, lot.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count spots")
		}

		lot.Name, lot.Price, lot.Address, lot.PostalCode = fields.Name, fields.Price, fields.Address, fields.PostalCode
		lot.RemainingCapacity = remaining
		lot.UpdatedAt = s.clock.Now()

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLotUpdated,
			AggregateType: enums.AggregateParkingLot,
			AggregateID:   lot.ID,
			Actor:         actor,
			OccurredAt:    lot.UpdatedAt,
			Data: payloads.LotUpdatedEvent{
				LotID:             lot.ID,
				Name:              lot.Name,
				Price:             lot.Price,
				SpotCount:         counts.InService(),
				SpotsAdded:        added,
				SpotsRemoved:      removed,
				RemainingCapacity: remaining,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit lot updated")
		}
		out = fromModel(lot, counts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// resize grows or shrinks the lot to want in-service spots. Shrinking only
// removes available spots, highest position first.
func (s *service) resize(ctx context.Context, spotRepo spots.Repository, lotID uuid.UUID, want int) (int, int, error) {
	counts, err := spotRepo.CountByStatus(ctx, lotID)
	if err != nil {
		return 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count spots")
	}
	current := counts.InService()

	switch {
	case want > current:
		maxPos, err := spotRepo.MaxPosition(ctx, lotID)
		if err != nil {
			return 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load spot positions")
		}
		n := want - current
		if err := spotRepo.CreateBatch(ctx, newSpots(lotID, maxPos+1, n)); err != nil {
			return 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create spots")
		}
		return n, 0, nil
	case want < current:
		n := current - want
		candidates, err := spotRepo.ListAvailableFromTop(ctx, lotID, n)
		if err != nil {
			return 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list removable spots")
		}
		if len(candidates) < n {
			return 0, 0, ErrCannotShrinkLot
		}
		for _, spot := range candidates {
			ok, err := spotRepo.MarkRemoved(ctx, spot.ID)
			if err != nil {
				return 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove spot")
			}
			if !ok {
				return 0, 0, ErrCannotShrinkLot
			}
		}
		return 0, n, nil
	}
	return 0, 0, nil
}

// Delete retires a lot. Lots with occupied spots cannot be deleted.
func (s *service) Delete(ctx context.Context, lotID uuid.UUID, actor *outbox.ActorRef) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		spotRepo := s.spots.WithTx(tx)

		lot, err := s.lockActive(ctx, repo, lotID)
		if err != nil {
			return err
		}
		counts, err := spotRepo.CountByStatus(ctx, lot.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count spots")
		}
		if counts.Occupied > 0 {
			return ErrLotInUse
		}

		removed, err := spotRepo.MarkLotRemoved(ctx, lot.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove spots")
		}
		if err := repo.Update(ctx, lot.ID, map[string]any{"status": enums.LotStatusRemoved}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove lot")
		}
		if _, err := s.capacity.Reconcile(ctx, tx, lot.ID); err != nil {
			return err
		}

		now := s.clock.Now()
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLotDeleted,
			AggregateType: enums.AggregateParkingLot,
			AggregateID:   lot.ID,
			Actor:         actor,
			OccurredAt:    now,
			Data: payloads.LotDeletedEvent{
				LotID:        lot.ID,
				SpotsRemoved: int(removed),
				DeletedAt:    now,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit lot deleted")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, lotID uuid.UUID) (*LotDTO, error) {
	lot, err := s.repo.FindByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lot")
	}
	counts, err := s.spots.CountByStatus(ctx, lot.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count spots")
	}
	return fromModel(lot, counts), nil
}

func (s *service) ListSpots(ctx context.Context, lotID uuid.UUID, query string) ([]spots.SpotDTO, error) {
	if _, err := s.repo.FindByID(ctx, lotID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lot")
	}
	list, err := s.spots.ListByLot(ctx, lotID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list spots")
	}
	return spots.FromModels(list), nil
}

func (s *service) lockActive(ctx context.Context, repo Repository, lotID uuid.UUID) (*models.ParkingLot, error) {
	lot, err := repo.LockByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lot")
	}
	if lot.Status == enums.LotStatusRemoved {
		return nil, ErrLotRemoved
	}
	return lot, nil
}

type lotFields struct {
	Name       string
	Price      decimal.Decimal
	Address    string
	PostalCode string
}

func (f lotFields) validate() map[string]string {
	details := map[string]string{}
	if f.Name == "" {
		details["name"] = "is required"
	}
	if f.Address == "" {
		details["address"] = "is required"
	}
	if !f.Price.IsPositive() {
		details["price"] = "must be greater than 0"
	} else if f.Price.Exponent() < -2 && !f.Price.Equal(f.Price.Round(2)) {
		details["price"] = "must have at most 2 decimal places"
	}
	if !types.IsPostalCode(f.PostalCode) {
		details["postal_code"] = "must be exactly 6 digits"
	}
	return details
}

func newSpots(lotID uuid.UUID, fromPosition, n int) []models.ParkingSpot {
	out := make([]models.ParkingSpot, 0, n)
	for i := 0; i < n; i++ {
		pos := fromPosition + i
		out = append(out, models.ParkingSpot{
			LotID:    lotID,
			Position: pos,
			Label:    models.SpotLabel(pos),
			Status:   enums.SpotStatusAvailable,
		})
	}
	return out
}
