package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/parkinglot-backend/pkg/db/dbtest"
)

func TestCreditRevenueAccumulates(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	user := dbtest.SeedUser(t, conn, "driver@example.com")

	require.NoError(t, repo.CreditRevenueWithTx(ctx, conn, user.ID, decimal.RequireFromString("20.00")))
	require.NoError(t, repo.CreditRevenueWithTx(ctx, conn, user.ID, decimal.RequireFromString("5.50")))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Revenue.Equal(decimal.RequireFromString("25.5")), "got %s", reloaded.Revenue)

	err = repo.CreditRevenueWithTx(ctx, conn, uuid.New(), decimal.NewFromInt(1))
	require.Error(t, err)
}

func TestExistsWithTx(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	user := dbtest.SeedUser(t, conn, "exists@example.com")

	ok, err := repo.ExistsWithTx(context.Background(), conn, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsWithTx(context.Background(), conn, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}
