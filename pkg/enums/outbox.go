package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateParkingLot  OutboxAggregateType = "parking_lot"
	AggregateParkingSpot OutboxAggregateType = "parking_spot"
	AggregateReservation OutboxAggregateType = "reservation"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateParkingLot,
	AggregateParkingSpot,
	AggregateReservation,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventLotCreated        OutboxEventType = "lot_created"
	EventLotUpdated        OutboxEventType = "lot_updated"
	EventLotDeleted        OutboxEventType = "lot_deleted"
	EventSpotRemoved       OutboxEventType = "spot_removed"
	EventReservationOpened OutboxEventType = "reservation_opened"
	EventReservationClosed OutboxEventType = "reservation_closed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventLotCreated,
	EventLotUpdated,
	EventLotDeleted,
	EventSpotRemoved,
	EventReservationOpened,
	EventReservationClosed,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
