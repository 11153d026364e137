package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lysyi3m/bow-comb/app/dates"
)

var _ Ledger = (*RedisLedger)(nil)

const (
	redisFirstSeenField = "first_seen"
	redisTitleField     = "title"
)

// RedisLedger stores one hash per item. HSETNX on first_seen makes the first
// writer win even when two runs race on the same item.
type RedisLedger struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisLedger(ctx context.Context, addr, prefix string) (*RedisLedger, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, &ConnectionError{Backend: "redis", Err: err}
	}

	return &RedisLedger{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}, nil
}

func (l *RedisLedger) key(itemID int64) string {
	return l.prefix + strconv.FormatInt(itemID, 10)
}

func (l *RedisLedger) Lookup(ctx context.Context, itemID int64) (time.Time, bool, error) {
	raw, err := l.client.HGet(ctx, l.key(itemID), redisFirstSeenField).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to look up item %d: %w", itemID, err)
	}

	firstSeen, err := dates.Parse(raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("item %d has an unreadable first_seen: %w", itemID, err)
	}

	return firstSeen, true, nil
}

func (l *RedisLedger) RecordFirstSeen(ctx context.Context, itemID int64, title string, observedAt time.Time) (time.Time, error) {
	firstSeen := observedTime(observedAt, l.now)
	key := l.key(itemID)

	created, err := l.client.HSetNX(ctx, key, redisFirstSeenField, dates.Format(firstSeen)).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to record item %d: %w", itemID, err)
	}

	if !created {
		seen, ok, err := l.Lookup(ctx, itemID)
		if err != nil {
			return time.Time{}, err
		}
		if !ok {
			return time.Time{}, fmt.Errorf("item %d vanished from the ledger", itemID)
		}
		return seen, nil
	}

	if err := l.client.HSet(ctx, key, redisTitleField, truncateTitle(title)).Err(); err != nil {
		return time.Time{}, fmt.Errorf("failed to store title for item %d: %w", itemID, err)
	}

	return firstSeen, nil
}

func (l *RedisLedger) Close() error {
	return l.client.Close()
}
