package types

import (
	"math/big"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// ReservationEventRow mirrors the reservation_events BigQuery schema. One
// row per opened or closed reservation.
type ReservationEventRow struct {
	EventID           string             `bigquery:"event_id"`
	EventType         string             `bigquery:"event_type"`
	OccurredAt        time.Time          `bigquery:"occurred_at"`
	ReservationID     string             `bigquery:"reservation_id"`
	LotID             string             `bigquery:"lot_id"`
	SpotID            string             `bigquery:"spot_id"`
	UserID            string             `bigquery:"user_id"`
	VehicleType       string             `bigquery:"vehicle_type"`
	UnitPrice         *big.Rat           `bigquery:"unit_price"`
	TotalCost         *big.Rat           `bigquery:"total_cost"`
	StartedAt         time.Time          `bigquery:"started_at"`
	EndedAt           *time.Time         `bigquery:"ended_at"`
	DurationSeconds   *int64             `bigquery:"duration_seconds"`
	SpotReturned      *bool              `bigquery:"spot_returned"`
	RemainingCapacity int64              `bigquery:"remaining_capacity"`
	ActorRole         *string            `bigquery:"actor_role"`
	Payload           cbigquery.NullJSON `bigquery:"payload"`
}

// SpotEventRow mirrors the spot_events BigQuery schema. Lot lifecycle events
// land here too since they add or retire spots.
type SpotEventRow struct {
	EventID               string             `bigquery:"event_id"`
	EventType             string             `bigquery:"event_type"`
	OccurredAt            time.Time          `bigquery:"occurred_at"`
	LotID                 string             `bigquery:"lot_id"`
	SpotID                *string            `bigquery:"spot_id"`
	SpotLabel             *string            `bigquery:"spot_label"`
	PreviousStatus        *string            `bigquery:"previous_status"`
	OrphanedReservationID *string            `bigquery:"orphaned_reservation_id"`
	SpotsAdded            int64              `bigquery:"spots_added"`
	SpotsRemoved          int64              `bigquery:"spots_removed"`
	RemainingCapacity     *int64             `bigquery:"remaining_capacity"`
	Price                 *big.Rat           `bigquery:"price"`
	ActorRole             *string            `bigquery:"actor_role"`
	Payload               cbigquery.NullJSON `bigquery:"payload"`
}
