package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MySundayS/employee-lita/internal/store"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const snapshotCacheKey = "dashboard:snapshot"

// SnapshotLoader reads the full table behind a singleflight group and an
// optional Redis cache, so a burst of dashboard refreshes costs one store
// read instead of one per request.
type SnapshotLoader struct {
	store  store.Store
	rdb    *redis.Client // nil disables the cache
	ttl    time.Duration
	sf     singleflight.Group
	logger *zap.Logger
}

func NewSnapshotLoader(st store.Store, rdb *redis.Client, ttl time.Duration) *SnapshotLoader {
	return &SnapshotLoader{
		store:  st,
		rdb:    rdb,
		ttl:    ttl,
		logger: zap.L().Named("dashboard.snapshot"),
	}
}

func (l *SnapshotLoader) Load(ctx context.Context) ([]store.Record, error) {
	if l.rdb != nil {
		if cached, err := l.rdb.Get(ctx, snapshotCacheKey).Result(); err == nil {
			var records []store.Record
			if err := json.Unmarshal([]byte(cached), &records); err == nil {
				return records, nil
			}
			l.logger.Warn("dropping unreadable snapshot cache entry")
			l.rdb.Del(ctx, snapshotCacheKey)
		}
	}

	v, err, _ := l.sf.Do(snapshotCacheKey, func() (interface{}, error) {
		records, err := l.store.ReadAll(ctx)
		if err != nil {
			return nil, err
		}
		if l.rdb != nil {
			if payload, err := json.Marshal(records); err == nil {
				if err := l.rdb.Set(ctx, snapshotCacheKey, payload, l.ttl).Err(); err != nil {
					l.logger.Warn("snapshot cache write failed", zap.Error(err))
				}
			}
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]store.Record), nil
}

// Invalidate drops the cached snapshot, called after a manual sync so the
// dashboard reflects the new rows immediately.
func (l *SnapshotLoader) Invalidate(ctx context.Context) {
	if l.rdb == nil {
		return
	}
	if err := l.rdb.Del(ctx, snapshotCacheKey).Err(); err != nil {
		l.logger.Warn("snapshot cache invalidation failed", zap.Error(err))
	}
}
