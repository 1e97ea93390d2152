package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Hearings/internal/core"
)

func newTestMemDB(t *testing.T) (*MemDB, *time.Time) {
	t.Helper()
	m, err := NewMemDB()
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestMemDBSetGet(t *testing.T) {
	m, _ := newTestMemDB(t)
	ctx := context.Background()

	_, err := m.Get(ctx, "conference:1")
	assert.ErrorIs(t, err, core.ErrMiss)

	require.NoError(t, m.Set(ctx, "conference:1", []byte(`{"id":1}`), 0))
	got, err := m.Get(ctx, "conference:1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":1}`), got)

	require.NoError(t, m.Set(ctx, "conference:1", []byte(`{"id":2}`), 0))
	got, err = m.Get(ctx, "conference:1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":2}`), got, "set overwrites")
}

func TestMemDBReturnsCopies(t *testing.T) {
	m, _ := newTestMemDB(t)
	ctx := context.Background()
	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'y'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemDBExpiry(t *testing.T) {
	m, now := newTestMemDB(t)
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))

	*now = now.Add(59 * time.Second)
	_, err := m.Get(ctx, "k")
	require.NoError(t, err)

	*now = now.Add(time.Second)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrMiss)

	n, err := m.Del(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, n, "expired entries do not count as removed")
}

func TestMemDBDel(t *testing.T) {
	m, _ := newTestMemDB(t)
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), 0))

	n, err := m.Del(ctx, "a", "b", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, core.ErrMiss)
}

func TestMemDBCancelledContext(t *testing.T) {
	m, _ := newTestMemDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Set(ctx, "k", []byte("v"), 0), context.Canceled)
	_, err := m.Get(context.Background(), "k")
	assert.ErrorIs(t, err, core.ErrMiss, "cancelled write leaves nothing behind")
}

func storedKeys(t *testing.T, m *MemDB) []string {
	t.Helper()
	txn := m.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get(tblEntries, idxKey)
	require.NoError(t, err)
	var keys []string
	for raw := it.Next(); raw != nil; raw = it.Next() {
		keys = append(keys, raw.(*entry).Key)
	}
	return keys
}

func TestMemDBExpiredEntriesAreDeleted(t *testing.T) {
	t.Run("given expired entry when read then it is deleted", func(t *testing.T) {
		m, now := newTestMemDB(t)
		ctx := context.Background()
		require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
		*now = now.Add(time.Minute)

		_, err := m.Get(ctx, "k")
		assert.ErrorIs(t, err, core.ErrMiss)
		assert.Empty(t, storedKeys(t, m))
	})

	t.Run("given mixed entries when swept then only expired ones go", func(t *testing.T) {
		m, now := newTestMemDB(t)
		ctx := context.Background()
		require.NoError(t, m.Set(ctx, "short", []byte("1"), time.Second))
		require.NoError(t, m.Set(ctx, "long", []byte("2"), time.Hour))
		require.NoError(t, m.Set(ctx, "forever", []byte("3"), 0))
		*now = now.Add(time.Minute)

		n, err := m.Sweep()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.ElementsMatch(t, []string{"long", "forever"}, storedKeys(t, m))
	})

	t.Run("given running sweeper when entries expire then they are removed", func(t *testing.T) {
		m, err := NewMemDB()
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		require.NoError(t, m.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

		go m.RunSweeper(ctx, 5*time.Millisecond)

		assert.Eventually(t, func() bool { return len(storedKeys(t, m)) == 0 }, time.Second, 5*time.Millisecond)
	})
}
