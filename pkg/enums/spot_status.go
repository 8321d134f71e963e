package enums

import "fmt"

// SpotStatus represents the spot_status enum in Postgres.
// Removed is terminal; spots are never physically deleted.
type SpotStatus string

const (
	SpotStatusAvailable SpotStatus = "available"
	SpotStatusOccupied  SpotStatus = "occupied"
	SpotStatusRemoved   SpotStatus = "removed"
)

var validSpotStatuses = []SpotStatus{
	SpotStatusAvailable,
	SpotStatusOccupied,
	SpotStatusRemoved,
}

// String implements fmt.Stringer.
func (s SpotStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SpotStatus.
func (s SpotStatus) IsValid() bool {
	for _, candidate := range validSpotStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSpotStatus converts raw input into a SpotStatus.
// The single letter codes A/O/X used by older exports are accepted too.
func ParseSpotStatus(value string) (SpotStatus, error) {
	switch value {
	case "A":
		return SpotStatusAvailable, nil
	case "O":
		return SpotStatusOccupied, nil
	case "X":
		return SpotStatusRemoved, nil
	}
	for _, candidate := range validSpotStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid spot status %q", value)
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s SpotStatus) CanTransitionTo(next SpotStatus) bool {
	switch s {
	case SpotStatusAvailable:
		return next == SpotStatusOccupied || next == SpotStatusRemoved
	case SpotStatusOccupied:
		return next == SpotStatusAvailable || next == SpotStatusRemoved
	default:
		return false
	}
}
