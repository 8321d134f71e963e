package writer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/parkinglot-backend/internal/analytics/types"
)

func TestNewWriterValidation(t *testing.T) {
	if _, err := New(nil, Config{}); err == nil {
		t.Fatal("expected error when client missing")
	}
	if _, err := New(&fakeInserter{}, Config{ReservationTable: " ", SpotTable: "spot_events"}); err == nil {
		t.Fatal("expected error when reservation table missing")
	}
	if _, err := New(&fakeInserter{}, Config{ReservationTable: "reservation_events", SpotTable: " "}); err == nil {
		t.Fatal("expected error when spot table missing")
	}
}

func TestEncodeJSON(t *testing.T) {
	raw := map[string]any{"lot_id": "lot-1"}
	nj, err := EncodeJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error encoding json: %v", err)
	}
	if !nj.Valid {
		t.Fatal("expected json to be marked valid")
	}

	nj, err = EncodeJSON(nil)
	if err != nil {
		t.Fatalf("unexpected error for nil json: %v", err)
	}
	if nj.Valid {
		t.Fatal("expected nil json to be invalid")
	}

	rawMessage := json.RawMessage(`{"spot_id":"s-1"}`)
	nj, err = EncodeJSON(rawMessage)
	if err != nil {
		t.Fatalf("unexpected error encoding raw json: %v", err)
	}
	if nj.JSONVal != string(rawMessage) {
		t.Fatalf("expected raw json passed through, got %s", nj.JSONVal)
	}
}

func TestWriterRetriesOnTransientError(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	fake.responses = []error{
		&googleapi.Error{Code: http.StatusServiceUnavailable},
		nil,
	}

	if err := writer.InsertReservationEvent(context.Background(), types.ReservationEventRow{EventID: "1"}); err != nil {
		t.Fatalf("unexpected error writing row: %v", err)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("expected two insert attempts, got %d", len(fake.calls))
	}
	if fake.calls[1].table != "reservation_events" {
		t.Fatalf("expected reservation table on retry, got %s", fake.calls[1].table)
	}
	if len(writer.reservationBuffer) != 0 {
		t.Fatal("expected buffer to be empty after success")
	}
}

func TestWriterDoesNotRetryPermanentError(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	fake.responses = []error{&googleapi.Error{Code: http.StatusBadRequest}}

	if err := writer.InsertSpotEvent(context.Background(), types.SpotEventRow{EventID: "1"}); err == nil {
		t.Fatal("expected permanent error to surface")
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(fake.calls))
	}
	if fake.calls[0].table != "spot_events" {
		t.Fatalf("expected spot table, got %s", fake.calls[0].table)
	}
}

func TestWriterBatching(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	writer.batchSize = 2

	if err := writer.InsertSpotEvent(context.Background(), types.SpotEventRow{EventID: "1"}); err != nil {
		t.Fatalf("unexpected error on first insert: %v", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("expected no insert before batch full, got %d", len(fake.calls))
	}

	if err := writer.InsertSpotEvent(context.Background(), types.SpotEventRow{EventID: "2"}); err != nil {
		t.Fatalf("unexpected error on second insert: %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected single insert after batch flush, got %d", len(fake.calls))
	}
	if fake.calls[0].rowCount != 2 {
		t.Fatalf("expected two rows inserted, got %d", fake.calls[0].rowCount)
	}
}

func TestWriterFlush(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	writer.batchSize = 10
	if err := writer.InsertReservationEvent(context.Background(), types.ReservationEventRow{EventID: "1"}); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	if err := writer.InsertSpotEvent(context.Background(), types.SpotEventRow{EventID: "2"}); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	if err := writer.Flush(context.Background()); err != nil {
		t.Fatalf("unexpected flush error: %v", err)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("expected flush to insert into both tables, got %d", len(fake.calls))
	}
	if len(writer.reservationBuffer) != 0 || len(writer.spotBuffer) != 0 {
		t.Fatal("expected buffers to be empty after flush")
	}
}

func TestIsRetryableBigQueryError(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"nil":          {err: nil, want: false},
		"http 503":     {err: &googleapi.Error{Code: http.StatusServiceUnavailable}, want: true},
		"http 400":     {err: &googleapi.Error{Code: http.StatusBadRequest}, want: false},
		"grpc busy":    {err: status.Error(codes.Unavailable, "busy"), want: true},
		"grpc invalid": {err: status.Error(codes.InvalidArgument, "bad"), want: false},
		"plain":        {err: errors.New("boom"), want: false},
	}
	for name, tc := range cases {
		if got := isRetryableBigQueryError(tc.err); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", name, tc.want, got)
		}
	}
}

type insertCall struct {
	table    string
	rowCount int
}

type fakeInserter struct {
	responses []error
	calls     []insertCall
	index     int
}

func (f *fakeInserter) InsertRows(_ context.Context, table string, rows []any) error {
	f.calls = append(f.calls, insertCall{table: table, rowCount: len(rows)})
	var err error
	if f.index < len(f.responses) {
		err = f.responses[f.index]
	}
	f.index++
	return err
}

func newWriterWithFakeInserter(t *testing.T) (*BigQueryWriter, *fakeInserter) {
	t.Helper()
	fake := &fakeInserter{}
	writer, err := New(fake, Config{
		ReservationTable: "reservation_events",
		SpotTable:        "spot_events",
		RetryPolicy:      RetryPolicy{InitialBackoff: time.Millisecond, MaximumBackoff: time.Millisecond},
	})
	if err != nil {
		t.Fatalf("construct writer: %v", err)
	}
	return writer, fake
}
