package app

import (
	"context"
	"fmt"

	"quizify-service/internal/domain"
	"quizify-service/internal/pkg/logger"
)

// NotificationStore persists per-user notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notif domain.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
	DeleteNotification(ctx context.Context, userID, notificationID string) error
	DeleteAllNotifications(ctx context.Context, userID string) error
}

// NotificationService serves the notification list and pushes a delta event
// to the user's channel for every mutation, so other connected devices stay
// in sync without refetching.
type NotificationService struct {
	store    NotificationStore
	notifier Notifier
	log      *logger.Logger
}

func NewNotificationService(store NotificationStore, notifier Notifier, log *logger.Logger) *NotificationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &NotificationService{store: store, notifier: notifier, log: log.With("service", "notifications")}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	if userID == "" {
		return nil, domain.ErrUserRequired
	}
	notifs, err := s.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifs, nil
}

// MarkRead flags one notification as read and pushes the read delta.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if userID == "" {
		return domain.ErrUserRequired
	}
	if err := s.store.MarkNotificationRead(ctx, userID, notificationID); err != nil {
		return err
	}
	s.notifier.EmitToUser(userID, domain.NotificationReadEvent{NotificationID: notificationID})
	return nil
}

// Delete removes one notification and pushes the deleted delta.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	if userID == "" {
		return domain.ErrUserRequired
	}
	if err := s.store.DeleteNotification(ctx, userID, notificationID); err != nil {
		return err
	}
	s.notifier.EmitToUser(userID, domain.NotificationDeletedEvent{NotificationID: notificationID})
	return nil
}

// DeleteAll empties the user's list and pushes the cleared delta.
func (s *NotificationService) DeleteAll(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrUserRequired
	}
	if err := s.store.DeleteAllNotifications(ctx, userID); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	s.notifier.EmitToUser(userID, domain.NotificationsClearedEvent{})
	return nil
}
