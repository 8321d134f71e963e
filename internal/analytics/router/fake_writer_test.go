package router

import (
	"context"

	"github.com/angelmondragon/parkinglot-backend/internal/analytics/types"
)

type fakeWriter struct {
	reservations []types.ReservationEventRow
	spots        []types.SpotEventRow
}

func (f *fakeWriter) InsertReservationEvent(_ context.Context, row types.ReservationEventRow) error {
	f.reservations = append(f.reservations, row)
	return nil
}

func (f *fakeWriter) InsertSpotEvent(_ context.Context, row types.SpotEventRow) error {
	f.spots = append(f.spots, row)
	return nil
}
