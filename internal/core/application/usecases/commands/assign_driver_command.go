package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrAssignDriverCommandIsNotConstructed = errors.New(
	"AssignDriverCommand must be created via NewAssignDriverCommand constructor",
)

// AssignDriverCommand represents a seller's request to assign an internal
// driver to a delivery, bypassing the external courier entirely.
type AssignDriverCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	driverID   kernel.UUID
	callerID   kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignDriverCommand creates a command to manually assign a driver.
// callerID identifies the requesting user; only the seller may assign.
func NewAssignDriverCommand(deliveryID, driverID, callerID kernel.UUID) (AssignDriverCommand, error) {
	cmd := AssignDriverCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setDriverID(driverID),
		cmd.setCallerID(callerID),
	); err != nil {
		return AssignDriverCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AssignDriverCommand) Validate() error {
	return c.guard.Validate(ErrAssignDriverCommandIsNotConstructed)
}

// DeliveryID returns the target delivery's identifier.
func (c AssignDriverCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// DriverID returns the directory id of the driver to assign.
func (c AssignDriverCommand) DriverID() kernel.UUID {
	return c.driverID
}

// CallerID returns the identifier of the requesting user.
func (c AssignDriverCommand) CallerID() kernel.UUID {
	return c.callerID
}

func (c *AssignDriverCommand) setDeliveryID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.deliveryID = id
	return nil
}

func (c *AssignDriverCommand) setDriverID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.driverID = id
	return nil
}

func (c *AssignDriverCommand) setCallerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.callerID = id
	return nil
}
