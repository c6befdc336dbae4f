package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const (
	// RedisKey holds the capped entry list.
	RedisKey = "hkustjob:activity"
	// EventChannel receives every recorded entry as JSON.
	EventChannel = "EVENT_ACTIVITY"
)

// RedisLog stores entries in a capped Redis list and publishes each one
// so live dashboards can follow along.
type RedisLog struct {
	rdb *redis.Client
	cap int64
}

func NewRedisLog(rdb *redis.Client, capacity int) *RedisLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RedisLog{rdb: rdb, cap: int64(capacity)}
}

func (l *RedisLog) Record(ctx context.Context, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	pipe := l.rdb.TxPipeline()
	pipe.LPush(ctx, RedisKey, raw)
	pipe.LTrim(ctx, RedisKey, 0, l.cap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}

	// Publish for live listeners (non-fatal)
	if err := l.rdb.Publish(ctx, EventChannel, raw).Err(); err != nil {
		slog.Warn("publish EVENT_ACTIVITY failed", "err", err)
	}
	return nil
}

func (l *RedisLog) Recent(ctx context.Context, n int) ([]Entry, error) {
	stop := int64(n) - 1
	if n <= 0 {
		stop = -1
	}
	raws, err := l.rdb.LRange(ctx, RedisKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read activity: %w", err)
	}

	entries := make([]Entry, 0, len(raws))
	for _, raw := range raws {
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			slog.Warn("skipping unreadable activity entry", "err", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
