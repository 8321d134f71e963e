package reservations

import (
	"time"

	"github.com/shopspring/decimal"
)

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// ComputeCost bills the elapsed time between start and end at unitPrice per
// hour. Hours are fractional (derived from nanoseconds) and the result is
// rounded half-up to cents. A negative elapsed time bills nothing.
func ComputeCost(start, end time.Time, unitPrice decimal.Decimal) (decimal.Decimal, time.Duration) {
	elapsed := end.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	cost := unitPrice.
		Mul(decimal.NewFromInt(elapsed.Nanoseconds())).
		DivRound(nanosPerHour, 2)
	return cost, elapsed
}
