package bigquery

import (
	"context"
	"testing"

	"github.com/angelmondragon/parkinglot-backend/pkg/config"
)

func TestConfiguredTables(t *testing.T) {
	cfg := config.BigQueryConfig{
		ReservationTable: " reservation_events ",
		SpotTable:        "",
	}

	tables := configuredTables(cfg)

	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if tables[0] != "reservation_events" {
		t.Fatalf("expected reservation_events, got %s", tables[0])
	}

	both := configuredTables(config.BigQueryConfig{ReservationTable: "r", SpotTable: "s"})
	if len(both) != 2 || both[1] != "s" {
		t.Fatalf("expected both tables, got %v", both)
	}
}

func TestClientOptionsPrioritizesJSON(t *testing.T) {
	gcp := config.GCPConfig{
		CredentialsJSON:        `{"dummy": "value"}`,
		ApplicationCredentials: "/tmp/creds",
	}

	opts := clientOptions(gcp)
	if len(opts) != 1 {
		t.Fatalf("expected 1 option, got %d", len(opts))
	}
}

func TestClientOptionsWithFile(t *testing.T) {
	gcp := config.GCPConfig{
		ApplicationCredentials: "/tmp/creds",
	}

	opts := clientOptions(gcp)
	if len(opts) != 1 {
		t.Fatalf("expected 1 option when using credentials file, got %d", len(opts))
	}
}

func TestClientOptionsEmpty(t *testing.T) {
	gcp := config.GCPConfig{}

	opts := clientOptions(gcp)
	if len(opts) != 0 {
		t.Fatalf("expected 0 options when no credentials provided, got %d", len(opts))
	}
}

func TestNilClientReturnsNotInitialized(t *testing.T) {
	var c *Client
	if err := c.InsertRows(context.Background(), "t", []any{1}); err != errClientNotInitialized {
		t.Fatalf("expected errClientNotInitialized, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("expected nil close on nil client, got %v", err)
	}
}
