package memory

import (
	"context"
	"sort"
	"sync"

	"quizify-service/internal/domain"
)

// NotificationStore is an in-memory implementation of app.NotificationStore.
type NotificationStore struct {
	mu    sync.RWMutex
	byID  map[string]domain.Notification
	order map[string][]string // userID -> notification IDs in insert order
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		byID:  make(map[string]domain.Notification),
		order: make(map[string][]string),
	}
}

func (s *NotificationStore) CreateNotification(_ context.Context, notif domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[notif.ID] = notif
	s.order[notif.UserID] = append(s.order[notif.UserID], notif.ID)
	return nil
}

func (s *NotificationStore) ListNotifications(_ context.Context, userID string) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Notification, 0, len(s.order[userID]))
	for _, id := range s.order[userID] {
		if notif, ok := s.byID[id]; ok {
			out = append(out, notif)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *NotificationStore) MarkNotificationRead(_ context.Context, userID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notif, ok := s.byID[notificationID]
	if !ok || notif.UserID != userID {
		return domain.ErrNotificationNotFound
	}
	notif.IsRead = true
	s.byID[notificationID] = notif
	return nil
}

func (s *NotificationStore) DeleteNotification(_ context.Context, userID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notif, ok := s.byID[notificationID]
	if !ok || notif.UserID != userID {
		return domain.ErrNotificationNotFound
	}
	delete(s.byID, notificationID)
	ids := s.order[userID]
	for i, id := range ids {
		if id == notificationID {
			s.order[userID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *NotificationStore) DeleteAllNotifications(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order[userID] {
		delete(s.byID, id)
	}
	delete(s.order, userID)
	return nil
}
