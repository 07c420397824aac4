package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Presence marks which users currently hold at least one live socket
// connection. Markers carry a TTL so a crashed instance cannot leave users
// online forever.
type Presence struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPresence(client *redis.Client, ttl time.Duration) *Presence {
	return &Presence{client: client, ttl: ttl}
}

// MarkOnline sets (or refreshes) the user's liveness marker. Best effort.
func (p *Presence) MarkOnline(userID string) {
	_ = p.client.Set(context.Background(), p.key(userID), "1", p.ttl).Err()
}

// MarkOffline clears the marker once the user's last connection closes.
func (p *Presence) MarkOffline(userID string) {
	_ = p.client.Del(context.Background(), p.key(userID)).Err()
}

// IsOnline reports whether a liveness marker exists for the user.
func (p *Presence) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := p.client.Exists(ctx, p.key(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *Presence) key(userID string) string {
	return "presence:user:" + userID
}
