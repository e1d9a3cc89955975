package delivery

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionFlags stores the one piece of cross-page-view state in the
// subsystem: whether this session dismissed the popup. Read once at
// selection, written once on dismissal.
type SessionFlags interface {
	Dismissed(ctx context.Context, sessionID string) (bool, error)
	SetDismissed(ctx context.Context, sessionID string) error
}

const dismissKeyPrefix = "ads:popup:dismissed:"

// RedisSessionFlags keeps dismissal flags in Redis with a TTL so a
// dismissed popup stays away for the rest of the browsing session.
type RedisSessionFlags struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionFlags(client *redis.Client, ttl time.Duration) *RedisSessionFlags {
	return &RedisSessionFlags{client: client, ttl: ttl}
}

func (s *RedisSessionFlags) Dismissed(ctx context.Context, sessionID string) (bool, error) {
	if s.client == nil || sessionID == "" {
		return false, nil
	}
	n, err := s.client.Exists(ctx, dismissKeyPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisSessionFlags) SetDismissed(ctx context.Context, sessionID string) error {
	if s.client == nil || sessionID == "" {
		return nil
	}
	return s.client.Set(ctx, dismissKeyPrefix+sessionID, "1", s.ttl).Err()
}
