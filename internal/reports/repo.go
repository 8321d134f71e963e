package reports

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	"github.com/angelmondragon/parkinglot-backend/pkg/pagination"
)

// Repository runs the read-only joins behind the reporting endpoints.
type Repository interface {
	AvailableLots(ctx context.Context, query string) ([]AvailableLotDTO, error)
	ActiveBookings(ctx context.Context, userID uuid.UUID) ([]ActiveBookingDTO, error)
	History(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]HistoryEntryDTO, error)
	Occupancy(ctx context.Context) ([]LotOccupancyDTO, error)
	Usage(ctx context.Context, userID uuid.UUID) ([]LotUsageDTO, error)
	OccupiedSpots(ctx context.Context) ([]OccupiedSpotDTO, error)
	Users(ctx context.Context) ([]UserSummaryDTO, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) AvailableLots(ctx context.Context, query string) ([]AvailableLotDTO, error) {
	selectColumns := []string{
		"l.id AS lot_id",
		"l.name",
		"l.address",
		"l.postal_code",
		"l.price",
		"l.remaining_capacity",
		"COALESCE(SUM(CASE WHEN s.status = 'available' THEN 1 ELSE 0 END), 0) AS available_spots",
		"COALESCE(SUM(CASE WHEN s.status <> 'removed' THEN 1 ELSE 0 END), 0) AS total_spots",
	}
	q := r.db.WithContext(ctx).
		Table("parking_lots l").
		Select(strings.Join(selectColumns, ", ")).
		Joins("LEFT JOIN parking_spots s ON s.lot_id = l.id").
		Where("l.status = ?", enums.LotStatusActive)

	if term := likeTerm(query); term != "" {
		q = q.Where("LOWER(l.address) LIKE ? OR LOWER(l.postal_code) LIKE ? OR LOWER(l.name) LIKE ?", term, term, term)
	}

	var rows []AvailableLotDTO
	err := q.Group("l.id, l.name, l.address, l.postal_code, l.price, l.remaining_capacity").
		Having("SUM(CASE WHEN s.status = 'available' THEN 1 ELSE 0 END) > 0").
		Order("l.name ASC").Order("l.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) ActiveBookings(ctx context.Context, userID uuid.UUID) ([]ActiveBookingDTO, error) {
	var rows []ActiveBookingDTO
	err := r.db.WithContext(ctx).
		Table("reservations r").
		Select(`r.id AS reservation_id, l.id AS lot_id, l.name AS lot_name, s.id AS spot_id,
			s.label AS spot_label, r.vehicle_type, r.unit_price, r.started_at`).
		Joins("JOIN parking_spots s ON s.id = r.spot_id").
		Joins("JOIN parking_lots l ON l.id = s.lot_id").
		Where("r.user_id = ? AND r.active = ?", userID, true).
		Order("r.started_at DESC").Order("r.id DESC").
		Scan(&rows).Error
	return rows, err
}

// History returns up to limit reservations of the user older than cursor,
// newest first.
func (r *repository) History(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]HistoryEntryDTO, error) {
	q := r.db.WithContext(ctx).
		Table("reservations r").
		Select(`r.id AS reservation_id, l.id AS lot_id, l.name AS lot_name, s.label AS spot_label,
			r.vehicle_type, r.unit_price, r.started_at, r.ended_at, r.total_cost, r.active`).
		Joins("JOIN parking_spots s ON s.id = r.spot_id").
		Joins("JOIN parking_lots l ON l.id = s.lot_id").
		Where("r.user_id = ?", userID)

	if cursor != nil {
		q = q.Where("(r.started_at < ?) OR (r.started_at = ? AND r.id < ?)", cursor.At, cursor.At, cursor.ID)
	}

	var rows []HistoryEntryDTO
	err := q.Order("r.started_at DESC").Order("r.id DESC").Limit(limit).Scan(&rows).Error
	return rows, err
}

func (r *repository) Occupancy(ctx context.Context) ([]LotOccupancyDTO, error) {
	var rows []LotOccupancyDTO
	err := r.db.WithContext(ctx).Raw(`
SELECT l.id AS lot_id, l.name AS lot_name, l.remaining_capacity,
  (SELECT COUNT(*) FROM parking_spots s WHERE s.lot_id = l.id AND s.status <> ?) AS total_spots,
  (SELECT COUNT(*) FROM reservations r JOIN parking_spots s ON s.id = r.spot_id
     WHERE s.lot_id = l.id AND r.active = ?) AS active_reservations
FROM parking_lots l
WHERE l.status = ?
ORDER BY l.name ASC, l.id ASC`,
		enums.SpotStatusRemoved, true, enums.LotStatusActive,
	).Scan(&rows).Error
	return rows, err
}

func (r *repository) Usage(ctx context.Context, userID uuid.UUID) ([]LotUsageDTO, error) {
	var rows []LotUsageDTO
	err := r.db.WithContext(ctx).
		Table("reservations r").
		Select("l.id AS lot_id, l.name AS lot_name, COUNT(r.id) AS bookings, COALESCE(SUM(r.total_cost), 0) AS total_spent").
		Joins("JOIN parking_spots s ON s.id = r.spot_id").
		Joins("JOIN parking_lots l ON l.id = s.lot_id").
		Where("r.user_id = ?", userID).
		Group("l.id, l.name").
		Order("bookings DESC").Order("l.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) OccupiedSpots(ctx context.Context) ([]OccupiedSpotDTO, error) {
	var rows []OccupiedSpotDTO
	err := r.db.WithContext(ctx).
		Table("reservations r").
		Select(`r.id AS reservation_id, l.id AS lot_id, l.name AS lot_name, s.id AS spot_id,
			s.label AS spot_label, s.status AS spot_status, u.id AS user_id, u.name AS user_name,
			u.email AS user_email, r.vehicle_type, r.started_at`).
		Joins("JOIN parking_spots s ON s.id = r.spot_id").
		Joins("JOIN parking_lots l ON l.id = s.lot_id").
		Joins("JOIN users u ON u.id = r.user_id").
		Where("r.active = ?", true).
		Order("l.name ASC").Order("s.position ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) Users(ctx context.Context) ([]UserSummaryDTO, error) {
	var rows []UserSummaryDTO
	err := r.db.WithContext(ctx).Raw(`
SELECT u.id, u.email, u.name, u.postal_code, u.revenue, u.created_at,
  (SELECT COUNT(*) FROM reservations r WHERE r.user_id = u.id AND r.active = ?) AS active_bookings,
  (SELECT COUNT(*) FROM reservations r WHERE r.user_id = u.id) AS total_bookings
FROM users u
ORDER BY u.created_at ASC, u.id ASC`, true).Scan(&rows).Error
	return rows, err
}

func likeTerm(query string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return ""
	}
	replacer := strings.NewReplacer("%", "", "_", "")
	query = replacer.Replace(query)
	if query == "" {
		return ""
	}
	return "%" + query + "%"
}
