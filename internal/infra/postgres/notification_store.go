package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quizify-service/internal/domain"
)

// NotificationStore persists per-user notifications.
type NotificationStore struct {
	pool *pgxpool.Pool
}

func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

func (s *NotificationStore) CreateNotification(ctx context.Context, notif domain.Notification) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, is_read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		notif.ID, notif.UserID, notif.Title, notif.Message, string(notif.Type), notif.IsRead, notif.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, message, type, is_read, created_at
		FROM notifications
		WHERE user_id=$1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		var notif domain.Notification
		var typ string
		if err := rows.Scan(&notif.ID, &notif.UserID, &notif.Title, &notif.Message, &typ, &notif.IsRead, &notif.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notif.Type = domain.NotificationType(typ)
		notifs = append(notifs, notif)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifs, nil
}

func (s *NotificationStore) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET is_read=true WHERE id=$1 AND user_id=$2`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationStore) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM notifications WHERE id=$1 AND user_id=$2`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationStore) DeleteAllNotifications(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE user_id=$1`, userID)
	if err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}
