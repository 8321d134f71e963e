package reservations

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeCost(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		elapsed time.Duration
		price   string
		want    string
	}{
		{"two hours", 2 * time.Hour, "10", "20"},
		{"ninety minutes", 90 * time.Minute, "10", "15"},
		{"one minute", time.Minute, "10", "0.17"},
		{"half cent rounds up", 3 * time.Minute, "0.10", "0.01"},
		{"just below half cent rounds down", 18*time.Second - time.Nanosecond, "1", "0"},
		{"just above half cent rounds up", 18*time.Second + time.Nanosecond, "1", "0.01"},
		{"zero", 0, "10", "0"},
		{"sub second", 500 * time.Millisecond, "3600", "0.5"},
		{"negative clamps", -time.Hour, "10", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, elapsed := ComputeCost(start, start.Add(tc.elapsed), decimal.RequireFromString(tc.price))
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
			assert.GreaterOrEqual(t, elapsed, time.Duration(0))
		})
	}
}
