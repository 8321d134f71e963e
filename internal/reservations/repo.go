package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/parkinglot-backend/pkg/db"
	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
)

// Repository defines persistence operations for reservations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reservation *models.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	Close(ctx context.Context, id uuid.UUID, endedAt time.Time, totalCost decimal.Decimal) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reservations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	q := r.db.WithContext(ctx)
	if db.IsPostgres(q) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var reservation models.Reservation
	if err := q.First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Close ends an active reservation. It reports false when the reservation
// was already closed.
func (r *repository) Close(ctx context.Context, id uuid.UUID, endedAt time.Time, totalCost decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]any{
			"active":     false,
			"ended_at":   endedAt,
			"total_cost": totalCost,
		})
	return res.RowsAffected == 1, res.Error
}
