package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClockReturnsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	at := time.Date(2024, 5, 1, 15, 0, 0, 0, loc)

	c := NewFixed(at)
	assert.Equal(t, time.UTC, c.Now().Location())
	assert.True(t, c.Now().Equal(at))
}

func TestManualClockAdvance(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c := NewManual(start)

	assert.Equal(t, start, c.Now())
	next := c.Advance(2 * time.Hour)
	assert.Equal(t, start.Add(2*time.Hour), next)
	assert.Equal(t, next, c.Now())
}

func TestSystemClockIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, NewSystem().Now().Location())
}
