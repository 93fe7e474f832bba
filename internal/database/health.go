package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Health reports reachability of the backing stores.
type Health struct {
	Postgres bool `json:"postgres"`
	Redis    bool `json:"redis"`
}

// OK is true when every store answered.
func (h Health) OK() bool {
	return h.Postgres && h.Redis
}

// Check pings PostgreSQL and Redis with a short timeout.
func Check(ctx context.Context, pool *pgxpool.Pool, rdb *redis.Client) Health {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return Health{
		Postgres: pool != nil && pool.Ping(ctx) == nil,
		Redis:    rdb != nil && rdb.Ping(ctx).Err() == nil,
	}
}
