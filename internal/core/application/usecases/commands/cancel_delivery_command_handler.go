package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// CancelResult reports the outcome of a cancellation. Cancelled tells whether
// the delivery was cancelled locally; CourierNotified whether the
// courier-side cancel went through. An upstream failure does not fail the
// command: before pickup the local record stays authoritative and the courier
// order is reconciled later by the poller, past pickup the delivery simply
// remains in its current state.
type CancelResult struct {
	Cancelled       bool
	CourierNotified bool
	CourierError    string
}

// CancelDeliveryCommandHandler abandons a delivery. Before pickup the local
// state change is persisted first and the courier is then asked to cancel
// best-effort, so a courier outage can never leave the delivery active
// locally. Once the package is picked up the courier is asked first and the
// local cancellation follows its actual answer, since the package is
// physically moving and a refused cancel must leave the delivery tracked.
type CancelDeliveryCommandHandler struct {
	uowFactory UoWFactory
	courier    ports.CourierClient
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewCancelDeliveryCommandHandler creates a handler for delivery cancellation.
func NewCancelDeliveryCommandHandler(
	uowFactory UoWFactory,
	courier ports.CourierClient,
	notifier ports.Notifier,
	logger *slog.Logger,
) (CancelDeliveryCommandHandler, error) {
	if uowFactory == nil {
		return CancelDeliveryCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}
	if courier == nil {
		return CancelDeliveryCommandHandler{}, errs.NewValueIsRequiredError("courier")
	}

	return CancelDeliveryCommandHandler{
		uowFactory: uowFactory,
		courier:    courier,
		notifier:   notifier,
		logger:     logger,
	}, nil
}

// Handle cancels the delivery and reverts the order to confirmed in one
// transaction. Before pickup the courier-side cancellation runs best-effort
// after the commit; past pickup it runs first and a refusal leaves the
// delivery untouched. Either party of the delivery may cancel.
func (h CancelDeliveryCommandHandler) Handle(
	ctx context.Context, command CancelDeliveryCommand,
) (CancelResult, error) {
	if err := command.Validate(); err != nil {
		return CancelResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CancelResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.DeliveryRepository().Get(ctx, command.DeliveryID())
	if err != nil {
		return CancelResult{}, err
	}

	if !aggregate.BuyerID().IsEqual(command.CallerID()) && !aggregate.SellerID().IsEqual(command.CallerID()) {
		return CancelResult{}, errs.NewForbiddenError(
			command.CallerID().String(), "only a party of the delivery may cancel it")
	}

	if aggregate.Status().IsTerminal() {
		return CancelResult{}, delivery.ErrDeliveryIsTerminal
	}

	link := aggregate.Courier()
	pastPickup := aggregate.Status().Rank() >= delivery.PickedUp.Rank()

	if link != nil && pastPickup {
		if cancelErr := h.courier.CancelOrder(ctx, link.ExternalOrderID()); cancelErr != nil {
			if h.logger != nil {
				h.logger.WarnContext(ctx, "courier refused cancellation of picked-up order",
					"delivery_id", aggregate.ID().String(),
					"external_order_id", link.ExternalOrderID(),
					"error", cancelErr)
			}

			return CancelResult{CourierError: cancelErr.Error()}, nil
		}
	}

	if err = aggregate.Cancel(time.Now()); err != nil {
		return CancelResult{}, err
	}

	orderAggregate, err := uow.OrderRepository().Get(ctx, aggregate.OrderID())
	if err != nil {
		return CancelResult{}, err
	}

	if err = orderAggregate.RevertToConfirmed(); err != nil {
		return CancelResult{}, err
	}

	if err = uow.DeliveryRepository().Update(ctx, aggregate); err != nil {
		return CancelResult{}, err
	}

	if err = uow.OrderRepository().Update(ctx, orderAggregate); err != nil {
		return CancelResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CancelResult{}, err
	}

	result := CancelResult{Cancelled: true, CourierNotified: true}
	if link != nil && !pastPickup {
		if cancelErr := h.courier.CancelOrder(ctx, link.ExternalOrderID()); cancelErr != nil {
			result.CourierNotified = false
			result.CourierError = cancelErr.Error()

			if h.logger != nil {
				h.logger.WarnContext(ctx, "courier-side cancellation failed",
					"delivery_id", aggregate.ID().String(),
					"external_order_id", link.ExternalOrderID(),
					"error", cancelErr)
			}
		}
	}

	counterparty := aggregate.BuyerID()
	if aggregate.BuyerID().IsEqual(command.CallerID()) {
		counterparty = aggregate.SellerID()
	}

	notify(ctx, h.notifier, h.logger, ports.Notification{
		UserID:   counterparty,
		Type:     "delivery_cancelled",
		Title:    "Delivery cancelled",
		Message:  fmt.Sprintf("Delivery %s was cancelled.", aggregate.TrackingNumber()),
		Priority: ports.NotificationPriorityHigh,
	})

	return result, nil
}
