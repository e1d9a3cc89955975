package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupFlags(t *testing.T, ttl time.Duration) (*RedisSessionFlags, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSessionFlags(client, ttl), mr
}

func TestSessionFlags_DismissOnce(t *testing.T) {
	flags, _ := setupFlags(t, time.Hour)
	ctx := context.Background()

	dismissed, err := flags.Dismissed(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Dismissed() error: %v", err)
	}
	if dismissed {
		t.Fatal("fresh session already dismissed")
	}

	if err := flags.SetDismissed(ctx, "sess-1"); err != nil {
		t.Fatalf("SetDismissed() error: %v", err)
	}

	dismissed, err = flags.Dismissed(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Dismissed() error: %v", err)
	}
	if !dismissed {
		t.Error("dismissal not recorded")
	}

	// other sessions are unaffected
	dismissed, _ = flags.Dismissed(ctx, "sess-2")
	if dismissed {
		t.Error("dismissal leaked across sessions")
	}
}

func TestSessionFlags_TTLExpiry(t *testing.T) {
	flags, mr := setupFlags(t, time.Minute)
	ctx := context.Background()

	if err := flags.SetDismissed(ctx, "sess-1"); err != nil {
		t.Fatalf("SetDismissed() error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	dismissed, err := flags.Dismissed(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Dismissed() error: %v", err)
	}
	if dismissed {
		t.Error("dismissal survived past its TTL")
	}
}

func TestSessionFlags_NilClient(t *testing.T) {
	flags := NewRedisSessionFlags(nil, time.Hour)
	ctx := context.Background()

	if err := flags.SetDismissed(ctx, "sess-1"); err != nil {
		t.Errorf("SetDismissed() with nil client error: %v", err)
	}
	dismissed, err := flags.Dismissed(ctx, "sess-1")
	if err != nil || dismissed {
		t.Errorf("nil client must report not dismissed, got %v, %v", dismissed, err)
	}
}
