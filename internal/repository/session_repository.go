package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bunkmate/bunkmate-backend/internal/config"
)

// SessionRepository keeps signed-in sessions in Redis, keyed by JWT id.
type SessionRepository struct {
	rdb *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{rdb: rdb}
}

// Save stores the session with the same lifetime as its token.
func (r *SessionRepository) Save(ctx context.Context, jti, userID string, ttl time.Duration) error {
	return r.rdb.Set(ctx, config.CacheKey.SessionKey(jti), userID, ttl).Err()
}

// UserID returns the user owning a session, or ErrNotFound if it has ended.
func (r *SessionRepository) UserID(ctx context.Context, jti string) (string, error) {
	v, err := r.rdb.Get(ctx, config.CacheKey.SessionKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

// Delete ends a session.
func (r *SessionRepository) Delete(ctx context.Context, jti string) error {
	return r.rdb.Del(ctx, config.CacheKey.SessionKey(jti)).Err()
}
