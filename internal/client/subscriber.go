package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"quizify-service/internal/domain"
)

// State is the subscriber's connection lifecycle state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// LevelUpBanner is the transient modal state raised by a levelUp event.
type LevelUpBanner struct {
	Visible       bool
	NewLevel      int
	PreviousLevel int
}

// DefaultBannerDuration is how long the level-up banner stays visible unless
// dismissed first.
const DefaultBannerDuration = 3 * time.Second

// Subscriber maintains a user's event-channel connection and reconciles the
// local notification list against push deltas. Pushes are best-effort and not
// replayed, so every (re)connect starts with a full notification fetch.
type Subscriber struct {
	url            string
	dialer         *websocket.Dialer
	BannerDuration time.Duration

	mu            sync.Mutex
	state         State
	conn          *websocket.Conn
	notifications []domain.Notification
	banner        LevelUpBanner
	bannerTimer   *time.Timer

	writeMu sync.Mutex
}

// New builds a subscriber for a ws endpoint that already carries the auth
// token (e.g. "ws://host/ws?token=...").
func New(url string) *Subscriber {
	return &Subscriber{
		url:            url,
		dialer:         websocket.DefaultDialer,
		BannerDuration: DefaultBannerDuration,
		state:          StateDisconnected,
	}
}

// Connect dials the server, requests the current notification list, and
// starts the read loop. Returns once the socket is established.
func (s *Subscriber) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return errors.New("already connected")
	}
	s.state = StateConnecting
	s.mu.Unlock()

	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		s.setState(StateDisconnected)
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.state = StateConnected
	s.mu.Unlock()

	// Reconcile whatever was missed while disconnected.
	if err := s.request("notification:get", nil); err != nil {
		s.teardown()
		return err
	}

	go s.readLoop(conn)
	return nil
}

// Run keeps the subscriber connected until ctx is done, redialing with
// doubling backoff capped at 30s.
func (s *Subscriber) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if err := s.Connect(ctx); err == nil {
			backoff = time.Second
			s.waitDisconnected(ctx)
		}
		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// Close drops the connection and moves to disconnected.
func (s *Subscriber) Close() {
	s.teardown()
}

// State returns the current lifecycle state.
func (s *Subscriber) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Notifications returns a copy of the local list.
func (s *Subscriber) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// Banner returns the current level-up banner state.
func (s *Subscriber) Banner() LevelUpBanner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banner
}

// Dismiss hides the banner before its timer fires.
func (s *Subscriber) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hideBannerLocked()
}

// MarkRead asks the server to flag a notification and applies the change
// locally. The local merge is idempotent, so a concurrent push delta for the
// same notification is harmless.
func (s *Subscriber) MarkRead(notificationID string) error {
	if err := s.request("notification:read", notificationRef{NotificationID: notificationID}); err != nil {
		return err
	}
	s.applyRead(notificationID)
	return nil
}

// Delete asks the server to remove a notification and removes it locally.
func (s *Subscriber) Delete(notificationID string) error {
	if err := s.request("notification:delete", notificationRef{NotificationID: notificationID}); err != nil {
		return err
	}
	s.applyDeleted(notificationID)
	return nil
}

// ClearAll asks the server to empty the list and clears it locally.
func (s *Subscriber) ClearAll() error {
	if err := s.request("notification:delete-all", nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.notifications = nil
	s.mu.Unlock()
	return nil
}

type outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type notificationRef struct {
	NotificationID string `json:"notificationId"`
}

func (s *Subscriber) request(kind string, payload any) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return errors.New("not connected")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteJSON(outbound{Type: kind, Payload: payload})
}

func (s *Subscriber) readLoop(conn *websocket.Conn) {
	defer s.teardown()
	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.handle(msg)
	}
}

func (s *Subscriber) handle(msg inbound) {
	switch domain.EventKind(msg.Type) {
	case domain.EventLevelUp:
		var evt domain.LevelUpEvent
		if json.Unmarshal(msg.Payload, &evt) == nil {
			s.showBanner(evt)
		}
	case domain.EventNotificationData:
		var evt domain.NotificationDataEvent
		if json.Unmarshal(msg.Payload, &evt) == nil {
			s.mu.Lock()
			s.notifications = evt.Notifications
			s.mu.Unlock()
		}
	case domain.EventNotificationCreated:
		var evt domain.NotificationCreatedEvent
		if json.Unmarshal(msg.Payload, &evt) == nil {
			s.applyCreated(evt.Notification)
		}
	case domain.EventNotificationRead:
		var evt domain.NotificationReadEvent
		if json.Unmarshal(msg.Payload, &evt) == nil {
			s.applyRead(evt.NotificationID)
		}
	case domain.EventNotificationDeleted:
		var evt domain.NotificationDeletedEvent
		if json.Unmarshal(msg.Payload, &evt) == nil {
			s.applyDeleted(evt.NotificationID)
		}
	case domain.EventNotificationsCleared:
		s.mu.Lock()
		s.notifications = nil
		s.mu.Unlock()
	}
}

// applyCreated inserts at the head unless the notification is already known.
func (s *Subscriber) applyCreated(notif domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.notifications {
		if existing.ID == notif.ID {
			return
		}
	}
	s.notifications = append([]domain.Notification{notif}, s.notifications...)
}

func (s *Subscriber) applyRead(notificationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == notificationID {
			s.notifications[i].IsRead = true
			return
		}
	}
}

func (s *Subscriber) applyDeleted(notificationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == notificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

func (s *Subscriber) showBanner(evt domain.LevelUpEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
	}
	s.banner = LevelUpBanner{Visible: true, NewLevel: evt.NewLevel, PreviousLevel: evt.PreviousLevel}
	s.bannerTimer = time.AfterFunc(s.BannerDuration, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.hideBannerLocked()
	})
}

func (s *Subscriber) hideBannerLocked() {
	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
		s.bannerTimer = nil
	}
	s.banner.Visible = false
}

func (s *Subscriber) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Subscriber) teardown() {
	s.mu.Lock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.state = StateDisconnected
	s.mu.Unlock()
}

func (s *Subscriber) waitDisconnected(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.State() == StateDisconnected {
				return
			}
		}
	}
}
