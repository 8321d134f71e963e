package enums

import "fmt"

// LotStatus represents the lot_status enum in Postgres.
type LotStatus string

const (
	LotStatusActive  LotStatus = "active"
	LotStatusRemoved LotStatus = "removed"
)

var validLotStatuses = []LotStatus{
	LotStatusActive,
	LotStatusRemoved,
}

// String implements fmt.Stringer.
func (s LotStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LotStatus.
func (s LotStatus) IsValid() bool {
	for _, candidate := range validLotStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLotStatus converts raw input into a LotStatus.
func ParseLotStatus(value string) (LotStatus, error) {
	for _, candidate := range validLotStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lot status %q", value)
}
