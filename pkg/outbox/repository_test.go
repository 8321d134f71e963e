package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/parkinglot-backend/pkg/db/dbtest"
	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
)

func TestDeletePublishedBefore(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-60 * 24 * time.Hour)
	published := old.Add(time.Minute)

	seed := func(createdAt time.Time, publishedAt *time.Time, attempts int) uuid.UUID {
		event := models.OutboxEvent{
			EventType:     enums.EventReservationOpened,
			AggregateType: enums.AggregateReservation,
			AggregateID:   uuid.New(),
			Payload:       json.RawMessage(`{}`),
			CreatedAt:     createdAt,
			PublishedAt:   publishedAt,
			AttemptCount:  attempts,
		}
		require.NoError(t, conn.Create(&event).Error)
		return event.ID
	}

	oldPublished := seed(old, &published, 1)
	oldParked := seed(old, nil, 10)
	oldPending := seed(old, nil, 2)
	recentPublished := seed(now.Add(-time.Hour), &now, 1)

	deleted, err := repo.DeletePublishedBefore(context.Background(), nil, now.Add(-30*24*time.Hour), 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	var remaining []uuid.UUID
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Order("created_at ASC").Pluck("id", &remaining).Error)
	require.ElementsMatch(t, []uuid.UUID{oldPending, recentPublished}, remaining)
	require.NotContains(t, remaining, oldPublished)
	require.NotContains(t, remaining, oldParked)
}
