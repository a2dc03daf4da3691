package commands

import (
	"context"

	"fulfillment/internal/pkg/errs"
)

// RecordCourierDriverCommandHandler persists driver details observed by the
// reconciliation poller. Unlike manual assignment this never advances the
// delivery's status; the status machine is driven by status observations only.
type RecordCourierDriverCommandHandler struct {
	uowFactory DeliveryUoWFactory
}

// NewRecordCourierDriverCommandHandler creates a handler for driver detail updates.
func NewRecordCourierDriverCommandHandler(uowFactory DeliveryUoWFactory) (RecordCourierDriverCommandHandler, error) {
	if uowFactory == nil {
		return RecordCourierDriverCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}

	return RecordCourierDriverCommandHandler{uowFactory: uowFactory}, nil
}

// Handle stores the driver details on the delivery linked to the courier order.
func (h RecordCourierDriverCommandHandler) Handle(ctx context.Context, command RecordCourierDriverCommand) error {
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

	aggregate, err := uow.DeliveryRepository().GetByExternalOrderID(ctx, command.ExternalOrderID())
	if err != nil {
		return err
	}

	if err = aggregate.SetDriver(command.Driver()); err != nil {
		return err
	}

	if err = uow.DeliveryRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
