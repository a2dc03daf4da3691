package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrEditCourierOrderCommandIsNotConstructed = errors.New(
	"EditCourierOrderCommand must be created via NewEditCourierOrderCommand constructor",
)

// EditCourierOrderCommand represents a request to change the drop-off address
// of a courier order before the package is picked up.
type EditCourierOrderCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	callerID   kernel.UUID
	newAddress kernel.Address

	guard guard.ConstructorGuard
}

// NewEditCourierOrderCommand creates a command to redirect a courier order to
// a new drop-off address.
func NewEditCourierOrderCommand(
	deliveryID, callerID kernel.UUID, newAddress kernel.Address,
) (EditCourierOrderCommand, error) {
	cmd := EditCourierOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setCallerID(callerID),
		cmd.setNewAddress(newAddress),
	); err != nil {
		return EditCourierOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c EditCourierOrderCommand) Validate() error {
	return c.guard.Validate(ErrEditCourierOrderCommandIsNotConstructed)
}

// DeliveryID returns the target delivery's identifier.
func (c EditCourierOrderCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// CallerID returns the identifier of the requesting user.
func (c EditCourierOrderCommand) CallerID() kernel.UUID {
	return c.callerID
}

// NewAddress returns the replacement drop-off address.
func (c EditCourierOrderCommand) NewAddress() kernel.Address {
	return c.newAddress
}

func (c *EditCourierOrderCommand) setDeliveryID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.deliveryID = id
	return nil
}

func (c *EditCourierOrderCommand) setCallerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("caller id", err)
	}

	c.callerID = id
	return nil
}

func (c *EditCourierOrderCommand) setNewAddress(addr kernel.Address) error {
	if err := addr.Validate(); err != nil {
		return err
	}

	c.newAddress = addr
	return nil
}
