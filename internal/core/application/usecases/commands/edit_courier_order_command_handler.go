package commands

import (
	"context"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// EditCourierOrderCommandHandler redirects a courier order to a new drop-off
// address. The pre-pickup window is checked locally before anything leaves
// the process: once the package was picked up the edit is rejected with
// delivery.ErrTooLateToEdit and the courier is never called.
type EditCourierOrderCommandHandler struct {
	uowFactory DeliveryUoWFactory
	geocoder   ports.Geocoder
	courier    ports.CourierClient
}

// NewEditCourierOrderCommandHandler creates a handler for courier order edits.
func NewEditCourierOrderCommandHandler(
	uowFactory DeliveryUoWFactory,
	geocoder ports.Geocoder,
	courier ports.CourierClient,
) (EditCourierOrderCommandHandler, error) {
	if uowFactory == nil {
		return EditCourierOrderCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}
	if geocoder == nil {
		return EditCourierOrderCommandHandler{}, errs.NewValueIsRequiredError("geocoder")
	}
	if courier == nil {
		return EditCourierOrderCommandHandler{}, errs.NewValueIsRequiredError("courier")
	}

	return EditCourierOrderCommandHandler{
		uowFactory: uowFactory,
		geocoder:   geocoder,
		courier:    courier,
	}, nil
}

// Handle resolves the new drop-off, pushes the edit to the courier and
// persists the address change. Either party of the delivery may request it.
func (h EditCourierOrderCommandHandler) Handle(ctx context.Context, command EditCourierOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.DeliveryRepository().Get(ctx, command.DeliveryID())
	if err != nil {
		return err
	}

	if !aggregate.BuyerID().IsEqual(command.CallerID()) && !aggregate.SellerID().IsEqual(command.CallerID()) {
		return errs.NewForbiddenError(
			command.CallerID().String(), "only a party of the delivery may edit the courier order")
	}

	if err = aggregate.EnsureEditable(); err != nil {
		return err
	}

	pickupPoint, err := resolvePoint(ctx, h.geocoder, aggregate.PickupAddress())
	if err != nil {
		return err
	}

	dropoffPoint, err := resolvePoint(ctx, h.geocoder, command.NewAddress())
	if err != nil {
		return err
	}

	err = h.courier.EditOrder(ctx, aggregate.Courier().ExternalOrderID(), ports.EditOrderRequest{
		Stops: []ports.Stop{
			{Point: pickupPoint, Address: fullAddress(aggregate.PickupAddress())},
			{Point: dropoffPoint, Address: fullAddress(command.NewAddress())},
		},
	})
	if err != nil {
		return err
	}

	resolved, err := command.NewAddress().WithPoint(dropoffPoint)
	if err != nil {
		return err
	}

	if err = aggregate.UpdateDeliveryAddress(resolved); err != nil {
		return err
	}

	if err = uow.DeliveryRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
