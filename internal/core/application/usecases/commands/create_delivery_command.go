package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrCreateDeliveryCommandIsNotConstructed = errors.New(
	"CreateDeliveryCommand must be created via NewCreateDeliveryCommand constructor",
)

// CreateDeliveryCommand represents a request to create the delivery record
// for a paid order. Issued by the commerce module once payment is confirmed;
// exactly one delivery may exist per order.
type CreateDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	buyerID  kernel.UUID
	sellerID kernel.UUID

	pickupAddress   kernel.Address
	deliveryAddress kernel.Address

	guard guard.ConstructorGuard
}

// NewCreateDeliveryCommand creates a command to open a delivery for an order.
func NewCreateDeliveryCommand(
	orderID, buyerID, sellerID kernel.UUID,
	pickupAddress, deliveryAddress kernel.Address,
) (CreateDeliveryCommand, error) {
	cmd := CreateDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setBuyerID(buyerID),
		cmd.setSellerID(sellerID),
		cmd.setPickupAddress(pickupAddress),
		cmd.setDeliveryAddress(deliveryAddress),
	); err != nil {
		return CreateDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCreateDeliveryCommandIsNotConstructed)
}

// OrderID returns the owning order's identifier.
func (c CreateDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

// BuyerID returns the buyer's identifier.
func (c CreateDeliveryCommand) BuyerID() kernel.UUID {
	return c.buyerID
}

// SellerID returns the seller's identifier.
func (c CreateDeliveryCommand) SellerID() kernel.UUID {
	return c.sellerID
}

// PickupAddress returns the seller-side address.
func (c CreateDeliveryCommand) PickupAddress() kernel.Address {
	return c.pickupAddress
}

// DeliveryAddress returns the buyer-side address.
func (c CreateDeliveryCommand) DeliveryAddress() kernel.Address {
	return c.deliveryAddress
}

func (c *CreateDeliveryCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateDeliveryCommand) setBuyerID(buyerID kernel.UUID) error {
	if err := buyerID.Validate(); err != nil {
		return err
	}

	c.buyerID = buyerID
	return nil
}

func (c *CreateDeliveryCommand) setSellerID(sellerID kernel.UUID) error {
	if err := sellerID.Validate(); err != nil {
		return err
	}

	c.sellerID = sellerID
	return nil
}

func (c *CreateDeliveryCommand) setPickupAddress(addr kernel.Address) error {
	if err := addr.Validate(); err != nil {
		return err
	}

	c.pickupAddress = addr
	return nil
}

func (c *CreateDeliveryCommand) setDeliveryAddress(addr kernel.Address) error {
	if err := addr.Validate(); err != nil {
		return err
	}

	c.deliveryAddress = addr
	return nil
}
