package domain

// EventKind tags a real-time event pushed to a user's channel. Kinds are a
// closed set; handlers dispatch on them with an explicit switch rather than
// string-keyed lookup tables.
type EventKind string

const (
	EventLevelUp              EventKind = "levelUp"
	EventNotificationData     EventKind = "notification:data"
	EventNotificationCreated  EventKind = "notification:created"
	EventNotificationRead     EventKind = "notification:read"
	EventNotificationDeleted  EventKind = "notification:deleted"
	EventNotificationsCleared EventKind = "notification:deleted-all"
)

// Event is a tagged variant delivered over the per-user channel.
type Event interface {
	Kind() EventKind
}

// LevelUpEvent is emitted once per level crossing. It is transmitted, never
// stored; if no client is subscribed at emission time it is lost.
type LevelUpEvent struct {
	NewLevel             int `json:"newLevel"`
	PreviousLevel        int `json:"previousLevel"`
	TotalQuizzesAnswered int `json:"totalQuizzesAnswered"`
}

func (LevelUpEvent) Kind() EventKind { return EventLevelUp }

// NotificationDataEvent carries the full notification list in response to a
// client's notification:get request.
type NotificationDataEvent struct {
	Notifications []Notification `json:"notifications"`
}

func (NotificationDataEvent) Kind() EventKind { return EventNotificationData }

// NotificationCreatedEvent announces a newly persisted notification.
type NotificationCreatedEvent struct {
	Notification Notification `json:"notification"`
}

func (NotificationCreatedEvent) Kind() EventKind { return EventNotificationCreated }

// NotificationReadEvent announces that one notification was marked read.
type NotificationReadEvent struct {
	NotificationID string `json:"notificationId"`
}

func (NotificationReadEvent) Kind() EventKind { return EventNotificationRead }

// NotificationDeletedEvent announces that one notification was removed.
type NotificationDeletedEvent struct {
	NotificationID string `json:"notificationId"`
}

func (NotificationDeletedEvent) Kind() EventKind { return EventNotificationDeleted }

// NotificationsClearedEvent announces that the user's list was emptied.
type NotificationsClearedEvent struct{}

func (NotificationsClearedEvent) Kind() EventKind { return EventNotificationsCleared }
