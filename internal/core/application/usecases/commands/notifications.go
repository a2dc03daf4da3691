package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/ports"
)

// notify publishes a notification after a commit. Publishing is
// fire-and-forget: failures are logged and never propagate, because the state
// transition that produced the notification has already been persisted.
func notify(ctx context.Context, notifier ports.Notifier, logger *slog.Logger, n ports.Notification) {
	if notifier == nil {
		return
	}

	if err := notifier.Notify(ctx, n); err != nil && logger != nil {
		logger.WarnContext(ctx, "notification publish failed",
			"user_id", n.UserID.String(),
			"type", n.Type,
			"error", err)
	}
}
