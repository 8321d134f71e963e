package spots

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/parkinglot-backend/pkg/db"
	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
)

// Repository defines persistence operations for parking_spots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, spots []models.ParkingSpot) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ParkingSpot, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.ParkingSpot, error)
	FirstAvailable(ctx context.Context, lotID uuid.UUID, exclude []uuid.UUID) (*models.ParkingSpot, error)
	Claim(ctx context.Context, id uuid.UUID, vehicleType string) (bool, error)
	Vacate(ctx context.Context, id uuid.UUID) (bool, error)
	MarkRemoved(ctx context.Context, id uuid.UUID) (bool, error)
	MarkLotRemoved(ctx context.Context, lotID uuid.UUID) (int64, error)
	ListByLot(ctx context.Context, lotID uuid.UUID, query string) ([]models.ParkingSpot, error)
	ListAvailableFromTop(ctx context.Context, lotID uuid.UUID, limit int) ([]models.ParkingSpot, error)
	MaxPosition(ctx context.Context, lotID uuid.UUID) (int, error)
	CountByStatus(ctx context.Context, lotID uuid.UUID) (StatusCounts, error)
	ActiveReservationID(ctx context.Context, spotID uuid.UUID) (*uuid.UUID, error)
}

// StatusCounts tallies a lot's spots per status.
type StatusCounts struct {
	Available int
	Occupied  int
	Removed   int
}

// InService is the number of spots that have not been removed.
func (c StatusCounts) InService() int {
	return c.Available + c.Occupied
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a spots repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBatch(ctx context.Context, spots []models.ParkingSpot) error {
	if len(spots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&spots).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ParkingSpot, error) {
	var spot models.ParkingSpot
	if err := r.db.WithContext(ctx).First(&spot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &spot, nil
}

// LockByID loads the spot with a row lock on postgres.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.ParkingSpot, error) {
	q := r.db.WithContext(ctx)
	if db.IsPostgres(q) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var spot models.ParkingSpot
	if err := q.First(&spot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &spot, nil
}

// FirstAvailable returns the lowest-position available spot of the lot,
// skipping ids in exclude. Postgres skips rows locked by concurrent bookers.
func (r *repository) FirstAvailable(ctx context.Context, lotID uuid.UUID, exclude []uuid.UUID) (*models.ParkingSpot, error) {
	q := r.db.WithContext(ctx).
		Where("lot_id = ? AND status = ?", lotID, enums.SpotStatusAvailable)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	if db.IsPostgres(q) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}
	var spot models.ParkingSpot
	err := q.Order("position ASC").Order("id ASC").Limit(1).Take(&spot).Error
	if err != nil {
		return nil, err
	}
	return &spot, nil
}

// Claim flips an available spot to occupied. It reports false when the spot
// was no longer available.
func (r *repository) Claim(ctx context.Context, id uuid.UUID, vehicleType string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ParkingSpot{}).
		Where("id = ? AND status = ?", id, enums.SpotStatusAvailable).
		Updates(map[string]any{
			"status":       enums.SpotStatusOccupied,
			"vehicle_type": vehicleType,
		})
	return res.RowsAffected == 1, res.Error
}

// Vacate returns an occupied spot to available and clears its vehicle tag.
// Removed spots are left untouched.
func (r *repository) Vacate(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ParkingSpot{}).
		Where("id = ? AND status = ?", id, enums.SpotStatusOccupied).
		Updates(map[string]any{
			"status":       enums.SpotStatusAvailable,
			"vehicle_type": gorm.Expr("NULL"),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *repository) MarkRemoved(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ParkingSpot{}).
		Where("id = ? AND status <> ?", id, enums.SpotStatusRemoved).
		Update("status", enums.SpotStatusRemoved)
	return res.RowsAffected == 1, res.Error
}

func (r *repository) MarkLotRemoved(ctx context.Context, lotID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ParkingSpot{}).
		Where("lot_id = ? AND status <> ?", lotID, enums.SpotStatusRemoved).
		Update("status", enums.SpotStatusRemoved)
	return res.RowsAffected, res.Error
}

// ListByLot returns the lot's spots in position order. query filters by a
// case-insensitive match on label or status.
func (r *repository) ListByLot(ctx context.Context, lotID uuid.UUID, query string) ([]models.ParkingSpot, error) {
	q := r.db.WithContext(ctx).Where("lot_id = ?", lotID)
	if needle := strings.ToLower(strings.TrimSpace(query)); needle != "" {
		like := "%" + needle + "%"
		q = q.Where("(LOWER(label) LIKE ? OR LOWER(status) LIKE ?)", like, like)
	}
	var spots []models.ParkingSpot
	if err := q.Order("position ASC").Find(&spots).Error; err != nil {
		return nil, err
	}
	return spots, nil
}

func (r *repository) ListAvailableFromTop(ctx context.Context, lotID uuid.UUID, limit int) ([]models.ParkingSpot, error) {
	q := r.db.WithContext(ctx).
		Where("lot_id = ? AND status = ?", lotID, enums.SpotStatusAvailable).
		Order("position DESC").
		Limit(limit)
	if db.IsPostgres(q) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var spots []models.ParkingSpot
	if err := q.Find(&spots).Error; err != nil {
		return nil, err
	}
	return spots, nil
}

func (r *repository) MaxPosition(ctx context.Context, lotID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lotID).
		Select("COALESCE(MAX(position), 0)").
		Row().
		Scan(&max)
	return max, err
}

func (r *repository) CountByStatus(ctx context.Context, lotID uuid.UUID) (StatusCounts, error) {
	type row struct {
		Status enums.SpotStatus
		N      int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.ParkingSpot{}).
		Select("status, COUNT(*) AS n").
		Where("lot_id = ?", lotID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return StatusCounts{}, err
	}
	var counts StatusCounts
	for _, r := range rows {
		switch r.Status {
		case enums.SpotStatusAvailable:
			counts.Available = r.N
		case enums.SpotStatusOccupied:
			counts.Occupied = r.N
		case enums.SpotStatusRemoved:
			counts.Removed = r.N
		}
	}
	return counts, nil
}

func (r *repository) ActiveReservationID(ctx context.Context, spotID uuid.UUID) (*uuid.UUID, error) {
	var res models.Reservation
	err := r.db.WithContext(ctx).
		Select("id").
		Where("spot_id = ? AND active = ?", spotID, true).
		Limit(1).
		Take(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res.ID, nil
}
