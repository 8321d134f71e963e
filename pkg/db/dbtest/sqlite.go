// Package dbtest opens throwaway sqlite databases that mirror the postgres
// schema closely enough for repository and service tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/parkinglot-backend/pkg/db"
)

const schema = `
CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  address TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  revenue NUMERIC NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE parking_lots (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price > 0),
  address TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  remaining_capacity INTEGER NOT NULL DEFAULT 0 CHECK (remaining_capacity >= 0),
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE parking_spots (
  id TEXT PRIMARY KEY,
  lot_id TEXT NOT NULL REFERENCES parking_lots(id),
  position INTEGER NOT NULL,
  label TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'available',
  vehicle_type TEXT,
  handicap_accessible BOOLEAN NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (lot_id, position)
);
CREATE TABLE reservations (
  id TEXT PRIMARY KEY,
  spot_id TEXT NOT NULL REFERENCES parking_spots(id),
  user_id TEXT NOT NULL REFERENCES users(id),
  vehicle_type TEXT NOT NULL,
  started_at DATETIME NOT NULL,
  ended_at DATETIME,
  unit_price NUMERIC NOT NULL,
  total_cost NUMERIC,
  active BOOLEAN NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX ux_reservations_active_spot ON reservations (spot_id) WHERE active = 1;
CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);
CREATE TABLE outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME,
  created_at DATETIME
);
`

// Open returns a gorm handle on a private in-memory database with the
// parking schema applied. The pool is pinned to one connection so a
// transaction always sees its own writes.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

// Client wraps Open in the shared db.Client so services get a real WithTx.
func Client(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.NewFromGorm(conn), conn
}

// Count returns the number of rows in table matching the optional where.
func Count(t *testing.T, conn *gorm.DB, table, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := conn.WithContext(context.Background()).Table(table)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
