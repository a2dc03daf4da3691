package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// ReconcileCourierStatusCommandHandler folds one courier status observation
// into the delivery state machine and keeps Order.status in lockstep.
//
// Observations arrive from two sources with no ordering guarantee between
// them: webhook pushes and the background poller. The aggregate only applies
// forward transitions, so replays and out-of-order arrivals degrade to
// no-ops; combined with the repository's version check this makes
// reconciliation safe to run concurrently for the same delivery. One of two
// racing writers loses the version check, reloads and finds nothing left to
// apply.
type ReconcileCourierStatusCommandHandler struct {
	uowFactory UoWFactory
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewReconcileCourierStatusCommandHandler creates a handler for status reconciliation.
func NewReconcileCourierStatusCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) (ReconcileCourierStatusCommandHandler, error) {
	if uowFactory == nil {
		return ReconcileCourierStatusCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}

	return ReconcileCourierStatusCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     logger,
	}, nil
}

// Handle applies the observation and reports whether the delivery moved.
// A stale or untranslatable observation still records the raw vendor string
// but changes nothing else and returns false.
func (h ReconcileCourierStatusCommandHandler) Handle(
	ctx context.Context, command ReconcileCourierStatusCommand,
) (bool, error) {
	if err := command.Validate(); err != nil {
		return false, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.DeliveryRepository().GetByExternalOrderID(ctx, command.ExternalOrderID())
	if err != nil {
		return false, err
	}

	aggregate.RecordCourierRawStatus(command.RawStatus())

	changed := false
	if command.Status() != delivery.CourierStatusUnknown {
		changed, err = aggregate.ApplyCourierStatus(command.Status(), time.Now())
		if err != nil {
			return false, err
		}
	} else if h.logger != nil {
		h.logger.WarnContext(ctx, "untranslatable courier status recorded",
			"external_order_id", command.ExternalOrderID(),
			"raw_status", command.RawStatus())
	}

	if !changed {
		if err = uow.DeliveryRepository().Update(ctx, aggregate); err != nil {
			return false, err
		}

		return false, uow.Commit(ctx)
	}

	orderAggregate, err := uow.OrderRepository().Get(ctx, aggregate.OrderID())
	if err != nil {
		return false, err
	}

	if err = syncOrderStatus(orderAggregate, aggregate.Status()); err != nil {
		return false, err
	}

	if err = uow.DeliveryRepository().Update(ctx, aggregate); err != nil {
		return false, err
	}

	if err = uow.OrderRepository().Update(ctx, orderAggregate); err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	h.notifyTransition(ctx, aggregate)

	return true, nil
}

// syncOrderStatus maps the delivery's new state onto the order's fulfillment
// status. Intermediate order states are walked when the courier jumped ahead
// of the last observation, so the order never skips a transition its own
// machine forbids.
func syncOrderStatus(o *order.Order, s delivery.Status) error {
	switch s {
	case delivery.Assigned:
		return o.Confirm()

	case delivery.PickedUp, delivery.InTransit:
		if o.Status() == order.Pending {
			if err := o.Confirm(); err != nil {
				return err
			}
		}
		return o.Ship()

	case delivery.Delivered:
		if o.Status() == order.Pending {
			if err := o.Confirm(); err != nil {
				return err
			}
		}
		return o.CompleteDelivery()

	case delivery.Cancelled:
		return o.RevertToConfirmed()

	case delivery.Unknown, delivery.Pending:
		return nil
	}

	return nil
}

func (h ReconcileCourierStatusCommandHandler) notifyTransition(ctx context.Context, aggregate *delivery.Delivery) {
	switch aggregate.Status() {
	case delivery.Delivered:
		notify(ctx, h.notifier, h.logger, ports.Notification{
			UserID:   aggregate.BuyerID(),
			Type:     "delivery_completed",
			Title:    "Your order has arrived",
			Message:  fmt.Sprintf("Delivery %s was completed.", aggregate.TrackingNumber()),
			Priority: ports.NotificationPriorityNormal,
		})

	case delivery.Cancelled:
		// A cancellation reported by the courier blocks the buyer's order,
		// so the buyer hears about it first; the seller has to rebook.
		notify(ctx, h.notifier, h.logger, ports.Notification{
			UserID:   aggregate.BuyerID(),
			Type:     "delivery_cancelled",
			Title:    "Your delivery was cancelled",
			Message:  fmt.Sprintf("The courier order for delivery %s was cancelled.", aggregate.TrackingNumber()),
			Priority: ports.NotificationPriorityHigh,
		})
		notify(ctx, h.notifier, h.logger, ports.Notification{
			UserID:   aggregate.SellerID(),
			Type:     "delivery_cancelled",
			Title:    "Courier cancelled the delivery",
			Message:  fmt.Sprintf("The courier order for delivery %s was cancelled.", aggregate.TrackingNumber()),
			Priority: ports.NotificationPriorityHigh,
		})

	case delivery.Unknown, delivery.Pending, delivery.Assigned, delivery.PickedUp, delivery.InTransit:
		return
	}
}
