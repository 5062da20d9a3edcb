package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "inkwell:revoked:"

// Revocations records revoked token ids in Redis.
// A nil *Revocations or an unreachable server behaves as an empty list.
type Revocations struct {
	client *redis.Client
}

// NewRevocations connects to Redis at addr. An empty addr disables revocation.
func NewRevocations(addr, password string, db int) *Revocations {
	if addr == "" {
		return nil
	}
	return &Revocations{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Revoke marks jti revoked until ttl elapses. Non-positive ttl is a no-op.
func (r *Revocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r == nil || r.client == nil || ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked. Redis errors read as not revoked.
func (r *Revocations) IsRevoked(ctx context.Context, jti string) bool {
	if r == nil || r.client == nil {
		return false
	}
	n, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// Close releases the Redis connection.
func (r *Revocations) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
