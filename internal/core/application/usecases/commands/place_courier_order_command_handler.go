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

// PlaceCourierOrderCommandHandler dispatches a courier order against a
// quotation and links it to the delivery. The set-once linkage rule is
// checked locally before the upstream call: a delivery that already carries
// a courier order is rejected with delivery.ErrCourierAlreadyPlaced and the
// courier is never contacted, which is what prevents duplicate physical
// dispatches. PlaceOrder is not idempotent upstream, so it is never retried
// here.
type PlaceCourierOrderCommandHandler struct {
	uowFactory UoWFactory
	courier    ports.CourierClient
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewPlaceCourierOrderCommandHandler creates a handler for courier order placement.
func NewPlaceCourierOrderCommandHandler(
	uowFactory UoWFactory,
	courier ports.CourierClient,
	notifier ports.Notifier,
	logger *slog.Logger,
) (PlaceCourierOrderCommandHandler, error) {
	if uowFactory == nil {
		return PlaceCourierOrderCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}
	if courier == nil {
		return PlaceCourierOrderCommandHandler{}, errs.NewValueIsRequiredError("courier")
	}

	return PlaceCourierOrderCommandHandler{
		uowFactory: uowFactory,
		courier:    courier,
		notifier:   notifier,
		logger:     logger,
	}, nil
}

// Handle places the courier order, records the linkage, moves the delivery to
// assigned and confirms the order. An expired quotation surfaces as
// errs.ErrQuotationExpired so the caller can re-quote.
func (h PlaceCourierOrderCommandHandler) Handle(
	ctx context.Context, command PlaceCourierOrderCommand,
) (ports.PlacedOrder, error) {
	if err := command.Validate(); err != nil {
		return ports.PlacedOrder{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ports.PlacedOrder{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.DeliveryRepository().Get(ctx, command.DeliveryID())
	if err != nil {
		return ports.PlacedOrder{}, err
	}

	if !aggregate.SellerID().IsEqual(command.CallerID()) {
		return ports.PlacedOrder{}, errs.NewForbiddenError(
			command.CallerID().String(), "only the seller may place a courier order")
	}

	if err = ensurePlaceable(aggregate); err != nil {
		return ports.PlacedOrder{}, err
	}

	placed, err := h.courier.PlaceOrder(ctx, ports.PlaceOrderRequest{
		QuotationID:   command.QuotationID(),
		Sender:        command.Sender(),
		SenderStop:    command.SenderStop(),
		Recipient:     command.Recipient(),
		RecipientStop: command.RecipientStop(),
		Remarks:       command.Remarks(),
		Metadata:      command.Metadata(),
	})
	if err != nil {
		return ports.PlacedOrder{}, err
	}

	link, err := delivery.NewCourierLink(placed.OrderID, command.QuotationID(), placed.ShareURL)
	if err != nil {
		return ports.PlacedOrder{}, err
	}

	if err = aggregate.LinkCourierOrder(link, time.Now()); err != nil {
		return ports.PlacedOrder{}, err
	}

	orderAggregate, err := uow.OrderRepository().Get(ctx, aggregate.OrderID())
	if err != nil {
		return ports.PlacedOrder{}, err
	}

	if err = orderAggregate.Confirm(); err != nil {
		return ports.PlacedOrder{}, err
	}

	if err = uow.DeliveryRepository().Update(ctx, aggregate); err != nil {
		return ports.PlacedOrder{}, err
	}

	if err = uow.OrderRepository().Update(ctx, orderAggregate); err != nil {
		return ports.PlacedOrder{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ports.PlacedOrder{}, err
	}

	notify(ctx, h.notifier, h.logger, ports.Notification{
		UserID:    aggregate.BuyerID(),
		Type:      "delivery_assigned",
		Title:     "Your order is on the way",
		Message:   fmt.Sprintf("A courier has been booked for delivery %s.", aggregate.TrackingNumber()),
		Priority:  ports.NotificationPriorityNormal,
		ActionURL: placed.ShareURL,
	})

	return placed, nil
}
