package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/vidshare-backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const consumedKeyPrefix = "refresh:consumed:"

// RedisReuseDetector layers replay detection over another strategy. Every
// exchanged token's jti is claimed in Redis until the token would have
// expired, so a second presentation is recognised as reuse rather than mere
// staleness. The claim is only made after the new pair is stored, so a failed
// exchange can be retried with the same token.
type RedisReuseDetector struct {
	client redis.Cmdable
	next   RotationStrategy
	now    func() time.Time
}

func NewRedisReuseDetector(client redis.Cmdable, next RotationStrategy) *RedisReuseDetector {
	if next == nil {
		next = SingleSlotRotation{}
	}
	return &RedisReuseDetector{client: client, next: next, now: time.Now}
}

func (d *RedisReuseDetector) Check(ctx context.Context, user *domain.User, presented string, claims *Claims) error {
	if claims.ID == "" {
		return domain.ErrInvalidToken
	}

	n, err := d.client.Exists(ctx, consumedKeyPrefix+claims.ID).Result()
	if err != nil {
		return fmt.Errorf("check consumed refresh token: %w", err)
	}
	if n > 0 {
		return ErrRefreshTokenReused
	}

	return d.next.Check(ctx, user, presented, claims)
}

// Rotated claims the consumed jti. SETNX keeps the claim atomic: when two
// exchanges of the same token race past Check, the loser gets
// ErrRefreshTokenReused.
func (d *RedisReuseDetector) Rotated(ctx context.Context, user *domain.User, consumed *Claims) error {
	if err := d.next.Rotated(ctx, user, consumed); err != nil {
		return err
	}
	if consumed.ID == "" {
		return domain.ErrInvalidToken
	}

	ok, err := d.client.SetNX(ctx, consumedKeyPrefix+consumed.ID, user.ID.String(), d.ttl(consumed)).Result()
	if err != nil {
		return fmt.Errorf("claim refresh token: %w", err)
	}
	if !ok {
		return ErrRefreshTokenReused
	}
	return nil
}

func (d *RedisReuseDetector) ttl(claims *Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return time.Minute
	}
	ttl := claims.ExpiresAt.Time.Sub(d.now())
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}
