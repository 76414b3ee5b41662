package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"facility_equipment_ledger/db"

	"github.com/redis/go-redis/v9"
)

// StatsCache keeps usage-stat responses in redis for a short TTL.
// Invalidation bumps a generation counter instead of scanning keys:
// every write to the ledger rotates the key space and the old entries
// expire on their own.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{rdb: rdb, ttl: ttl}
}

type StatsPayload struct {
	Rows  []db.StatRow `json:"rows"`
	Total int          `json:"total"`
}

const genKey = "ledger:stats:gen"

func statsKey(gen int64, from, to, action string) string {
	return fmt.Sprintf("ledger:stats:%d:%s:%s:%s", gen, from, to, action)
}

func (c *StatsCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

func (c *StatsCache) Get(ctx context.Context, from, to, action string) (*StatsPayload, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, err
	}
	b, err := c.rdb.Get(ctx, statsKey(gen, from, to, action)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p StatsPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *StatsCache) Set(ctx context.Context, from, to, action string, p StatsPayload) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	b, _ := json.Marshal(p)
	return c.rdb.Set(ctx, statsKey(gen, from, to, action), b, c.ttl).Err()
}

// Invalidate rotates the generation. Called after every accepted
// ledger command.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, genKey).Err()
}
