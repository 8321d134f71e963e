package reports

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/angelmondragon/parkinglot-backend/pkg/pagination"
)

// Service answers the read-only lot, booking and admin summary queries.
// Nothing here is cached; every call reads committed state.
type Service interface {
	ListAvailableLots(ctx context.Context, query string) ([]AvailableLotDTO, error)
	ListActiveBookings(ctx context.Context, userID uuid.UUID) ([]ActiveBookingDTO, error)
	ListHistory(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[HistoryEntryDTO], error)
	OccupancySummary(ctx context.Context) ([]LotOccupancyDTO, error)
	UsageSummary(ctx context.Context, userID uuid.UUID) ([]LotUsageDTO, error)
	OccupiedSpotDetails(ctx context.Context) ([]OccupiedSpotDTO, error)
	ListUsers(ctx context.Context) ([]UserSummaryDTO, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListAvailableLots(ctx context.Context, query string) ([]AvailableLotDTO, error) {
	rows, err := s.repo.AvailableLots(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available lots")
	}
	return nonNil(rows), nil
}

func (s *service) ListActiveBookings(ctx context.Context, userID uuid.UUID) ([]ActiveBookingDTO, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ActiveBookings(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active bookings")
	}
	return nonNil(rows), nil
}

func (s *service) ListHistory(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[HistoryEntryDTO], error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.History(ctx, userID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list booking history")
	}

	page := pagination.Paginate(rows, params.Limit, func(row HistoryEntryDTO) pagination.Cursor {
		return pagination.Cursor{At: row.StartedAt, ID: row.ReservationID}
	})
	return &page, nil
}

func (s *service) OccupancySummary(ctx context.Context) ([]LotOccupancyDTO, error) {
	rows, err := s.repo.Occupancy(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "occupancy summary")
	}
	return nonNil(rows), nil
}

func (s *service) UsageSummary(ctx context.Context, userID uuid.UUID) ([]LotUsageDTO, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.Usage(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "usage summary")
	}
	return nonNil(rows), nil
}

func (s *service) OccupiedSpotDetails(ctx context.Context) ([]OccupiedSpotDTO, error) {
	rows, err := s.repo.OccupiedSpots(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list occupied spots")
	}
	return nonNil(rows), nil
}

func (s *service) ListUsers(ctx context.Context) ([]UserSummaryDTO, error) {
	rows, err := s.repo.Users(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return nonNil(rows), nil
}

func requireUser(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return nil
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
