package http

import (
	"sync"
	"testing"

	"quizify-service/internal/domain"
	"quizify-service/internal/pkg/logger"
)

type fakePresence struct {
	mu      sync.Mutex
	online  map[string]int
	offline map[string]int
}

func newFakePresence() *fakePresence {
	return &fakePresence{online: make(map[string]int), offline: make(map[string]int)}
}

func (p *fakePresence) MarkOnline(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID]++
}

func (p *fakePresence) MarkOffline(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offline[userID]++
}

func TestHubBroadcastsToAllRoomConnections(t *testing.T) {
	hub := NewHub(nil, logger.NewNop())
	a := hub.Register("u1")
	b := hub.Register("u1")
	other := hub.Register("u2")

	hub.EmitToUser("u1", domain.LevelUpEvent{PreviousLevel: 1, NewLevel: 2, TotalQuizzesAnswered: 6})

	for _, client := range []*hubClient{a, b} {
		select {
		case env := <-client.send:
			if env.Type != string(domain.EventLevelUp) {
				t.Fatalf("unexpected envelope type %q", env.Type)
			}
		default:
			t.Fatalf("expected a queued event for every room connection")
		}
	}
	select {
	case env := <-other.send:
		t.Fatalf("u2 must not receive u1's event, got %+v", env)
	default:
	}
}

func TestHubEmitToEmptyRoomIsFireAndForget(t *testing.T) {
	hub := NewHub(nil, logger.NewNop())
	// No subscribers: the emit is dropped, not queued or retried.
	hub.EmitToUser("ghost", domain.LevelUpEvent{PreviousLevel: 1, NewLevel: 2, TotalQuizzesAnswered: 6})
	if n := hub.Subscribers("ghost"); n != 0 {
		t.Fatalf("expected no room for ghost, got %d", n)
	}
}

func TestHubDropsOldestWhenQueueFull(t *testing.T) {
	hub := NewHub(nil, logger.NewNop())
	client := hub.Register("u1")

	for i := 0; i < cap(client.send)+1; i++ {
		hub.EmitToUser("u1", domain.LevelUpEvent{PreviousLevel: i, NewLevel: i + 1})
	}

	first := <-client.send
	evt, ok := first.Payload.(domain.LevelUpEvent)
	if !ok {
		t.Fatalf("unexpected payload %+v", first.Payload)
	}
	// Event 0 was dropped to make room for the overflowing emit.
	if evt.PreviousLevel != 1 {
		t.Fatalf("expected oldest event dropped, head is %+v", evt)
	}
	if len(client.send) != cap(client.send)-1 {
		t.Fatalf("expected a full queue minus the one read, got %d", len(client.send))
	}
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(nil, logger.NewNop())
	client := hub.Register("u1")

	hub.Unregister(client)
	hub.Unregister(client) // second call must not double-close

	if n := hub.Subscribers("u1"); n != 0 {
		t.Fatalf("expected empty room, got %d subscribers", n)
	}
	if _, open := <-client.send; open {
		t.Fatalf("expected send channel closed after unregister")
	}
}

func TestHubPresenceTracksLastConnection(t *testing.T) {
	presence := newFakePresence()
	hub := NewHub(presence, logger.NewNop())

	a := hub.Register("u1")
	b := hub.Register("u1")
	hub.Unregister(a)

	presence.mu.Lock()
	offline := presence.offline["u1"]
	presence.mu.Unlock()
	if offline != 0 {
		t.Fatalf("user still has a connection, offline must not fire")
	}

	hub.Unregister(b)
	presence.mu.Lock()
	defer presence.mu.Unlock()
	if presence.offline["u1"] != 1 {
		t.Fatalf("expected offline once last connection closed, got %d", presence.offline["u1"])
	}
	if presence.online["u1"] != 2 {
		t.Fatalf("expected online marked per connection, got %d", presence.online["u1"])
	}
}
