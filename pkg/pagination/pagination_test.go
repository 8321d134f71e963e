package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{At: time.Date(2025, 3, 1, 10, 30, 0, 123, time.UTC), ID: uuid.New()}

	got, err := ParseCursor(EncodeCursor(want))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, want.At.Equal(got.At))
	assert.Equal(t, want.ID, got.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	c, err := ParseCursor("   ")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = ParseCursor("!!!")
	assert.Error(t, err)

	_, err = ParseCursor(EncodeCursor(Cursor{At: time.Now()})[:4])
	assert.Error(t, err)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
	assert.Equal(t, 7, NormalizeLimit(7))
	assert.Equal(t, 8, LimitWithBuffer(7))
}

func TestPaginate(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	key := func(i int) Cursor { return Cursor{At: base.Add(time.Duration(i) * time.Hour), ID: ids[i]} }

	page := Paginate([]int{0, 1, 2}, 2, key)
	assert.Equal(t, []int{0, 1}, page.Items)
	require.NotEmpty(t, page.NextCursor)
	next, err := ParseCursor(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, ids[1], next.ID)

	last := Paginate([]int{2}, 2, key)
	assert.Equal(t, []int{2}, last.Items)
	assert.Empty(t, last.NextCursor)

	empty := Paginate[int](nil, 2, key)
	assert.NotNil(t, empty.Items)
}
