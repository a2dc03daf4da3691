package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// NotificationPriority orders notifications in the recipient's feed.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityNormal NotificationPriority = "normal"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// Notification is a message for the out-of-scope notification system.
type Notification struct {
	UserID    kernel.UUID
	Type      string
	Title     string
	Message   string
	Priority  NotificationPriority
	ActionURL string
}

// Notifier publishes notifications to the external notification system.
// Fire-and-forget: a publish failure must never roll back the state
// transition that produced the notification; callers log and move on.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
