package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// AssignDriverCommandHandler handles manual driver assignment, the
// non-courier fulfillment path. Looks the driver up in the internal
// directory, moves the delivery to assigned and confirms the order, all in
// one transaction. The buyer is notified after commit.
type AssignDriverCommandHandler struct {
	uowFactory UoWFactory
	directory  ports.DriverDirectory
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewAssignDriverCommandHandler creates a handler for manual driver assignment.
func NewAssignDriverCommandHandler(
	uowFactory UoWFactory,
	directory ports.DriverDirectory,
	notifier ports.Notifier,
	logger *slog.Logger,
) (AssignDriverCommandHandler, error) {
	if uowFactory == nil {
		return AssignDriverCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}
	if directory == nil {
		return AssignDriverCommandHandler{}, errs.NewValueIsRequiredError("directory")
	}

	return AssignDriverCommandHandler{
		uowFactory: uowFactory,
		directory:  directory,
		notifier:   notifier,
		logger:     logger,
	}, nil
}

// Handle assigns the driver to the delivery. Only the seller may assign;
// a delivery that already has a driver or courier order is rejected with
// delivery.ErrAlreadyAssigned before anything is written.
func (h AssignDriverCommandHandler) Handle(ctx context.Context, command AssignDriverCommand) error {
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

	if !aggregate.SellerID().IsEqual(command.CallerID()) {
		return errs.NewForbiddenError(command.CallerID().String(), "only the seller may assign a driver")
	}

	entry, err := h.directory.Get(ctx, command.DriverID())
	if err != nil {
		return err
	}

	if err = aggregate.AssignDriver(entry.Driver, time.Now()); err != nil {
		return err
	}

	orderAggregate, err := uow.OrderRepository().Get(ctx, aggregate.OrderID())
	if err != nil {
		return err
	}

	if err = orderAggregate.Confirm(); err != nil {
		return err
	}

	if err = uow.DeliveryRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, orderAggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	notify(ctx, h.notifier, h.logger, ports.Notification{
		UserID:   aggregate.BuyerID(),
		Type:     "delivery_assigned",
		Title:    "Your order is on the way",
		Message:  fmt.Sprintf("A driver has been assigned to delivery %s.", aggregate.TrackingNumber()),
		Priority: ports.NotificationPriorityNormal,
	})

	return nil
}
