package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/bow-comb/app/dates"
)

func newTestRedisLedger(t *testing.T) (*RedisLedger, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	l, err := NewRedisLedger(context.Background(), mr.Addr(), "bow:item:")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	return l, mr
}

func TestRedisLedger_RecordFirstSeenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestRedisLedger(t)

	_, ok, err := l.Lookup(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)

	first := time.Date(2021, 11, 3, 12, 30, 0, 0, time.UTC)
	got, err := l.RecordFirstSeen(ctx, 99, "Gear Cube", first)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	again, err := l.RecordFirstSeen(ctx, 99, "Other Title", first.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first, again)

	assert.Equal(t, "2021-11-03T12:30:00+00:00", mr.HGet("bow:item:99", "first_seen"))
	assert.Equal(t, "Gear Cube", mr.HGet("bow:item:99", "title"))
	assert.Len(t, mr.Keys(), 1)
}

func TestRedisLedger_UnreadableFirstSeen(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestRedisLedger(t)
	mr.HSet("bow:item:5", "first_seen", "garbage")

	_, err := l.RecordFirstSeen(ctx, 5, "Anything", time.Time{})
	require.Error(t, err)

	var parseErr *dates.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestNewRedisLedger_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisLedger(context.Background(), addr, "bow:item:")
	require.Error(t, err)

	var connErr *ConnectionError
	assert.True(t, errors.As(err, &connErr))
	assert.Equal(t, "redis", connErr.Backend)
}
