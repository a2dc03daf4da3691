package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// CreateDeliveryCommandHandler opens the delivery record for a paid order.
// The repository enforces the one-delivery-per-order rule, so a duplicate
// request surfaces as errs.ErrConflict.
type CreateDeliveryCommandHandler struct {
	uowFactory DeliveryUoWFactory
}

// NewCreateDeliveryCommandHandler creates a handler for delivery creation.
func NewCreateDeliveryCommandHandler(uowFactory DeliveryUoWFactory) (CreateDeliveryCommandHandler, error) {
	if uowFactory == nil {
		return CreateDeliveryCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}

	return CreateDeliveryCommandHandler{uowFactory: uowFactory}, nil
}

// Handle creates a pending delivery for the command's order and returns its
// identifier and tracking number.
func (h CreateDeliveryCommandHandler) Handle(
	ctx context.Context, command CreateDeliveryCommand,
) (*delivery.Delivery, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	aggregate, err := delivery.NewDelivery(
		kernel.NewUUID(),
		command.OrderID(),
		command.BuyerID(),
		command.SellerID(),
		command.PickupAddress(),
		command.DeliveryAddress(),
		time.Now(),
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.DeliveryRepository().Add(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return aggregate, nil
}
