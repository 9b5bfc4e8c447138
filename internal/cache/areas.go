package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	areasKey    = "cache:areas"
	areasGenKey = "cache:areas:gen"
)

var errStaleAreas = errors.New("areas changed since read")

// IAreaCache holds the sorted list of distinct property areas.
// Misses and cache failures are indistinguishable to callers.
//
// Get also returns the current generation. Set only stores when no Invalidate
// has happened since that generation was read, so a list computed before a
// property change never overwrites the invalidation.
type IAreaCache interface {
	Get(ctx context.Context) (areas []string, gen int64, ok bool)
	Set(ctx context.Context, areas []string, gen int64)
	Invalidate(ctx context.Context)
}

type redisAreaCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewAreaCache returns a Redis-backed cache, or a no-op cache when rdb is nil or ttl is not positive.
func NewAreaCache(rdb *redis.Client, ttl time.Duration) IAreaCache {
	if rdb == nil || ttl <= 0 {
		return noopAreaCache{}
	}
	return &redisAreaCache{rdb: rdb, ttl: ttl}
}

func (c *redisAreaCache) Get(ctx context.Context) ([]string, int64, bool) {
	vals, err := c.rdb.MGet(ctx, areasKey, areasGenKey).Result()
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("areas cache read failed")
		return nil, -1, false
	}
	var gen int64
	if s, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, -1, false
		}
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false
	}
	var areas []string
	if err := json.Unmarshal([]byte(raw), &areas); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("areas cache entry corrupt")
		return nil, gen, false
	}
	return areas, gen, true
}

func (c *redisAreaCache) Set(ctx context.Context, areas []string, gen int64) {
	if gen < 0 {
		return
	}
	raw, err := json.Marshal(areas)
	if err != nil {
		return
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, areasGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleAreas
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, areasKey, raw, c.ttl)
			return nil
		})
		return err
	}, areasGenKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleAreas), errors.Is(err, redis.TxFailedErr):
		zerolog.Ctx(ctx).Debug().Int64("gen", gen).Msg("areas cache write skipped, list changed")
	default:
		zerolog.Ctx(ctx).Warn().Err(err).Msg("areas cache write failed")
	}
}

func (c *redisAreaCache) Invalidate(ctx context.Context) {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, areasGenKey)
		pipe.Del(ctx, areasKey)
		return nil
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("areas cache invalidation failed")
	}
}

type noopAreaCache struct{}

func (noopAreaCache) Get(context.Context) ([]string, int64, bool) { return nil, 0, false }
func (noopAreaCache) Set(context.Context, []string, int64)        {}
func (noopAreaCache) Invalidate(context.Context)                  {}
