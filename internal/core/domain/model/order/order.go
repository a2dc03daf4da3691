package order

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through the RestoreOrder factory method.
var ErrOrderIsNotConstructed = errors.New("Order must be created via RestoreOrder constructor")

// Order is the orchestrator's narrow view of a marketplace order. The full
// order (items, payment, checkout details) is owned by the commerce module;
// this aggregate carries only what the delivery lifecycle needs: the parties,
// the subtotal for free-shipping decisions, and the fulfillment status the
// orchestrator keeps in lockstep with the delivery.
//
// Orders are never created here, only restored from persistence, which is why
// there is no NewOrder.
type Order struct {
	id       kernel.UUID
	buyerID  kernel.UUID
	sellerID kernel.UUID
	subtotal float64
	status   Status

	isConstructed bool
}

// RestoreOrder reconstructs an Order from persistence.
func RestoreOrder(id, buyerID, sellerID kernel.UUID, subtotal float64, status Status) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		buyerID.Validate(),
		sellerID.Validate(),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if subtotal < 0 {
		return nil, errs.NewValueIsInvalidError("subtotal")
	}

	return &Order{
		id:            id,
		buyerID:       buyerID,
		sellerID:      sellerID,
		subtotal:      subtotal,
		status:        status,
		isConstructed: true,
	}, nil
}

// Validate ensures the Order was produced by RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID { return o.id }

// BuyerID returns the buyer's identifier.
func (o *Order) BuyerID() kernel.UUID { return o.buyerID }

// SellerID returns the seller's identifier.
func (o *Order) SellerID() kernel.UUID { return o.sellerID }

// Subtotal returns the order subtotal used for free-shipping thresholds.
func (o *Order) Subtotal() float64 { return o.subtotal }

// Status returns the current fulfillment status.
func (o *Order) Status() Status { return o.status }

// Confirm marks the order confirmed, the state it enters when a delivery is
// arranged for it.
func (o *Order) Confirm() error {
	newStatus, err := o.status.Confirm()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Ship marks the order shipped.
func (o *Order) Ship() error {
	newStatus, err := o.status.Ship()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// CompleteDelivery marks the order delivered.
func (o *Order) CompleteDelivery() error {
	newStatus, err := o.status.CompleteDelivery()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// RevertToConfirmed returns the order to confirmed after its delivery was
// cancelled, leaving it fulfillable by another attempt.
func (o *Order) RevertToConfirmed() error {
	newStatus, err := o.status.RevertToConfirmed()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}
