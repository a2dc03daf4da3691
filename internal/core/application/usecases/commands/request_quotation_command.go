package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrRequestQuotationCommandIsNotConstructed = errors.New(
	"RequestQuotationCommand must be created via NewRequestQuotationCommand constructor",
)

// defaultServiceType is the vehicle class quoted when the seller does not
// pick one.
const defaultServiceType = "MOTORCYCLE"

// RequestQuotationCommand represents a seller's request to price a courier
// route for a delivery. Stateless on the courier side; the resolved
// coordinates are kept on the delivery for the subsequent placement.
type RequestQuotationCommand struct { //nolint:recvcheck //using for validation
	deliveryID      kernel.UUID
	callerID        kernel.UUID
	serviceType     string
	specialRequests []string
	item            ports.Item

	guard guard.ConstructorGuard
}

// NewRequestQuotationCommand creates a command to request a courier quotation.
// An empty serviceType defaults to MOTORCYCLE; specialRequests and item are
// optional and passed to the courier as given.
func NewRequestQuotationCommand(
	deliveryID, callerID kernel.UUID,
	serviceType string,
	specialRequests []string,
	item ports.Item,
) (RequestQuotationCommand, error) {
	cmd := RequestQuotationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setCallerID(callerID),
	); err != nil {
		return RequestQuotationCommand{}, err
	}

	cmd.serviceType = strings.TrimSpace(serviceType)
	if cmd.serviceType == "" {
		cmd.serviceType = defaultServiceType
	}

	cmd.specialRequests = specialRequests
	cmd.item = item

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RequestQuotationCommand) Validate() error {
	return c.guard.Validate(ErrRequestQuotationCommandIsNotConstructed)
}

// DeliveryID returns the target delivery's identifier.
func (c RequestQuotationCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// CallerID returns the identifier of the requesting user.
func (c RequestQuotationCommand) CallerID() kernel.UUID {
	return c.callerID
}

// ServiceType returns the requested vehicle class in courier vocabulary.
func (c RequestQuotationCommand) ServiceType() string {
	return c.serviceType
}

// SpecialRequests returns the courier add-on codes, possibly empty.
func (c RequestQuotationCommand) SpecialRequests() []string {
	return c.specialRequests
}

// Item returns the shipped goods description, possibly zero.
func (c RequestQuotationCommand) Item() ports.Item {
	return c.item
}

func (c *RequestQuotationCommand) setDeliveryID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.deliveryID = id
	return nil
}

func (c *RequestQuotationCommand) setCallerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("caller id", err)
	}

	c.callerID = id
	return nil
}
