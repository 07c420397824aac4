package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestPresenceMarksAndClears(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	presence := NewPresence(client, time.Minute)

	presence.MarkOnline("u1")
	online, err := presence.IsOnline(ctx, "u1")
	if err != nil || !online {
		t.Fatalf("expected u1 online, got online=%v err=%v", online, err)
	}

	presence.MarkOffline("u1")
	online, err = presence.IsOnline(ctx, "u1")
	if err != nil || online {
		t.Fatalf("expected u1 offline, got online=%v err=%v", online, err)
	}
}
