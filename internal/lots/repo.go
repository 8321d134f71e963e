package lots

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/parkinglot-backend/pkg/db"
	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
)

// Repository defines persistence operations for parking_lots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, lot *models.ParkingLot) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ParkingLot, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.ParkingLot, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a lots repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, lot *models.ParkingLot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ParkingLot, error) {
	var lot models.ParkingLot
	if err := r.db.WithContext(ctx).First(&lot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lot, nil
}

// LockByID loads the lot holding a row lock on postgres. Bookings take this
// lock first, which serializes spot selection within a lot.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.ParkingLot, error) {
	q := r.db.WithContext(ctx)
	if db.IsPostgres(q) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var lot models.ParkingLot
	if err := q.First(&lot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.ParkingLot{}).
		Where("id = ?", id).
		Updates(updates).Error
}
