package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizify-service/internal/app"
	"quizify-service/internal/domain"
	"quizify-service/internal/infra/memory"
	"quizify-service/internal/pkg/logger"
)

type wsFixture struct {
	srv    *httptest.Server
	hub    *Hub
	tokens *TokenManager
	store  *memory.NotificationStore
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	log := logger.NewNop()
	hub := NewHub(nil, log)
	store := memory.NewNotificationStore()
	notifications := app.NewNotificationService(store, hub, log)
	tokens := NewTokenManager("test-secret", time.Hour)
	handler := NewWSHandler(tokens, hub, notifications, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &wsFixture{srv: srv, hub: hub, tokens: tokens, store: store}
}

func (f *wsFixture) dial(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	token, err := f.tokens.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type wireEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readNext(t *testing.T, conn *websocket.Conn) wireEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env wireEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	return env
}

func waitSubscribers(t *testing.T, hub *Hub, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Subscribers(userID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d subscribers, have %d", want, hub.Subscribers(userID))
}

func TestServeWSRejectsBadTokens(t *testing.T) {
	f := newWSFixture(t)

	for _, url := range []string{
		"ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws",
		"ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws?token=not-a-jwt",
	} {
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			t.Fatalf("expected handshake failure for %s", url)
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %+v", resp)
		}
	}
}

func TestServeWSPushesLevelUpEvents(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "u1")
	waitSubscribers(t, f.hub, "u1", 1)

	f.hub.EmitToUser("u1", domain.LevelUpEvent{PreviousLevel: 1, NewLevel: 2, TotalQuizzesAnswered: 6})

	env := readNext(t, conn)
	if env.Type != string(domain.EventLevelUp) {
		t.Fatalf("expected levelUp envelope, got %q", env.Type)
	}
	var evt domain.LevelUpEvent
	if err := json.Unmarshal(env.Payload, &evt); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if evt.PreviousLevel != 1 || evt.NewLevel != 2 || evt.TotalQuizzesAnswered != 6 {
		t.Fatalf("unexpected payload: %+v", evt)
	}
}

func TestServeWSNotificationGetReturnsFullList(t *testing.T) {
	f := newWSFixture(t)
	for _, id := range []string{"n1", "n2"} {
		err := f.store.CreateNotification(context.Background(), domain.Notification{
			ID: id, UserID: "u1", Title: "Level Up!", Type: domain.NotificationLevelUp, CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	conn := f.dial(t, "u1")
	waitSubscribers(t, f.hub, "u1", 1)

	if err := conn.WriteJSON(map[string]any{"type": "notification:get"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	env := readNext(t, conn)
	if env.Type != string(domain.EventNotificationData) {
		t.Fatalf("expected notification:data, got %q", env.Type)
	}
	var data domain.NotificationDataEvent
	if err := json.Unmarshal(env.Payload, &data); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(data.Notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(data.Notifications))
	}
}

func TestServeWSReadAndDeleteBroadcastDeltas(t *testing.T) {
	f := newWSFixture(t)
	err := f.store.CreateNotification(context.Background(), domain.Notification{
		ID: "n1", UserID: "u1", Title: "Level Up!", Type: domain.NotificationLevelUp, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	conn := f.dial(t, "u1")
	second := f.dial(t, "u1")
	waitSubscribers(t, f.hub, "u1", 2)

	payload, _ := json.Marshal(map[string]string{"notificationId": "n1"})
	if err := conn.WriteJSON(map[string]any{"type": "notification:read", "payload": json.RawMessage(payload)}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The delta reaches every connection in the room, sender included.
	for _, c := range []*websocket.Conn{conn, second} {
		env := readNext(t, c)
		if env.Type != string(domain.EventNotificationRead) {
			t.Fatalf("expected notification:read delta, got %q", env.Type)
		}
	}

	// Replaying the same delete after it succeeded stays silent: the
	// not-found error is treated as already-applied.
	if err := conn.WriteJSON(map[string]any{"type": "notification:delete", "payload": json.RawMessage(payload)}); err != nil {
		t.Fatalf("write: %v", err)
	}
	env := readNext(t, second)
	if env.Type != string(domain.EventNotificationDeleted) {
		t.Fatalf("expected notification:deleted delta, got %q", env.Type)
	}
	if err := conn.WriteJSON(map[string]any{"type": "notification:delete", "payload": json.RawMessage(payload)}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := conn.WriteJSON(map[string]any{"type": "notification:delete-all"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	env = readNext(t, second)
	if env.Type != string(domain.EventNotificationsCleared) {
		t.Fatalf("expected notification:deleted-all, got %q", env.Type)
	}
}

func TestServeWSRejectsUnknownMessageTypes(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "u1")
	waitSubscribers(t, f.hub, "u1", 1)

	if err := conn.WriteJSON(map[string]any{"type": "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	env := readNext(t, conn)
	if env.Type != "error" {
		t.Fatalf("expected error envelope, got %q", env.Type)
	}
}

func TestServeWSCleansUpRoomOnDisconnect(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "u1")
	waitSubscribers(t, f.hub, "u1", 1)

	conn.Close()
	waitSubscribers(t, f.hub, "u1", 0)
}
