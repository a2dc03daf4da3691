package http

import (
	"log/slog"
	"net/http"
	"strings"

	"fulfillment/internal/adapters/out/lalamove"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/jobs"

	"github.com/labstack/echo/v4"
)

// WebhookPayload is the courier's status push. Lalamove v3 nests the order
// under data.order; older sandboxes send the fields flat, so both shapes are
// accepted.
type WebhookPayload struct {
	EventType string `json:"eventType"`
	Data      struct {
		Order struct {
			OrderID string `json:"orderId"`
			Status  string `json:"status"`
		} `json:"order"`
	} `json:"data"`

	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func (p WebhookPayload) orderID() string {
	if p.Data.Order.OrderID != "" {
		return p.Data.Order.OrderID
	}
	return p.OrderID
}

func (p WebhookPayload) status() string {
	if p.Data.Order.Status != "" {
		return p.Data.Order.Status
	}
	return p.Status
}

// WebhookReceiver handles courier status pushes. It always acknowledges with
// a 2xx promptly; the courier disables webhooks that keep failing, so a
// reconciliation that cannot complete now is parked on the retry queue
// instead of surfacing an error to the courier.
type WebhookReceiver struct {
	reconcile  commands.ReconcileCourierStatusCommandHandler
	retryQueue *jobs.RetryQueue
	logger     *slog.Logger
}

// NewWebhookReceiver creates a webhook receiver.
func NewWebhookReceiver(
	reconcile commands.ReconcileCourierStatusCommandHandler,
	retryQueue *jobs.RetryQueue,
	logger *slog.Logger,
) *WebhookReceiver {
	return &WebhookReceiver{
		reconcile:  reconcile,
		retryQueue: retryQueue,
		logger:     logger,
	}
}

// Receive handles POST /api/v1/lalamove/webhook.
func (r *WebhookReceiver) Receive(c echo.Context) error {
	ctx := c.Request().Context()

	var payload WebhookPayload
	if err := c.Bind(&payload); err != nil {
		r.logger.WarnContext(ctx, "courier webhook with unreadable body", "error", err)
		return c.NoContent(http.StatusAccepted)
	}

	externalOrderID := strings.TrimSpace(payload.orderID())
	if externalOrderID == "" {
		r.logger.WarnContext(ctx, "courier webhook without order id",
			"event_type", payload.EventType)
		return c.NoContent(http.StatusAccepted)
	}

	rawStatus := payload.status()
	status, _ := lalamove.TranslateStatus(rawStatus)

	cmd, err := commands.NewReconcileCourierStatusCommand(externalOrderID, status, rawStatus)
	if err != nil {
		r.logger.WarnContext(ctx, "courier webhook rejected",
			"external_order_id", externalOrderID, "error", err)
		return c.NoContent(http.StatusAccepted)
	}

	if _, err = r.reconcile.Handle(ctx, cmd); err != nil {
		r.logger.WarnContext(ctx, "webhook reconciliation failed, queued for retry",
			"external_order_id", externalOrderID,
			"raw_status", rawStatus,
			"error", err)
		r.retryQueue.Enqueue(cmd)
	}

	return c.NoContent(http.StatusAccepted)
}
