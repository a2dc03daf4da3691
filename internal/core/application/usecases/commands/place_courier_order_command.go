package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrPlaceCourierOrderCommandIsNotConstructed = errors.New(
	"PlaceCourierOrderCommand must be created via NewPlaceCourierOrderCommand constructor",
)

// PlaceCourierOrderCommand represents a seller's request to turn an unexpired
// quotation into a dispatched courier order. The stop ids come from the
// quotation being consumed.
type PlaceCourierOrderCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	callerID   kernel.UUID

	quotationID   string
	senderStop    string
	recipientStop string
	sender        ports.Contact
	recipient     ports.Contact
	remarks       string
	metadata      map[string]string

	guard guard.ConstructorGuard
}

// NewPlaceCourierOrderCommand creates a command to place a courier order
// against a quotation. Metadata is optional and echoed back by the courier
// on webhooks and order lookups.
func NewPlaceCourierOrderCommand(
	deliveryID, callerID kernel.UUID,
	quotationID, senderStop, recipientStop string,
	sender, recipient ports.Contact,
	remarks string,
	metadata map[string]string,
) (PlaceCourierOrderCommand, error) {
	cmd := PlaceCourierOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setCallerID(callerID),
		cmd.setQuotationID(quotationID),
		cmd.setStops(senderStop, recipientStop),
		cmd.setContacts(sender, recipient),
	); err != nil {
		return PlaceCourierOrderCommand{}, err
	}

	cmd.remarks = strings.TrimSpace(remarks)
	cmd.metadata = metadata

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c PlaceCourierOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceCourierOrderCommandIsNotConstructed)
}

// DeliveryID returns the target delivery's identifier.
func (c PlaceCourierOrderCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// CallerID returns the identifier of the requesting user.
func (c PlaceCourierOrderCommand) CallerID() kernel.UUID {
	return c.callerID
}

// QuotationID returns the quotation being consumed.
func (c PlaceCourierOrderCommand) QuotationID() string {
	return c.quotationID
}

// SenderStop returns the courier stop id of the pickup.
func (c PlaceCourierOrderCommand) SenderStop() string {
	return c.senderStop
}

// RecipientStop returns the courier stop id of the drop-off.
func (c PlaceCourierOrderCommand) RecipientStop() string {
	return c.recipientStop
}

// Sender returns the pickup contact.
func (c PlaceCourierOrderCommand) Sender() ports.Contact {
	return c.sender
}

// Recipient returns the drop-off contact.
func (c PlaceCourierOrderCommand) Recipient() ports.Contact {
	return c.recipient
}

// Remarks returns the free-text note passed to the driver.
func (c PlaceCourierOrderCommand) Remarks() string {
	return c.remarks
}

// Metadata returns the key-value pairs echoed back by the courier.
func (c PlaceCourierOrderCommand) Metadata() map[string]string {
	return c.metadata
}

func (c *PlaceCourierOrderCommand) setDeliveryID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.deliveryID = id
	return nil
}

func (c *PlaceCourierOrderCommand) setCallerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("caller id", err)
	}

	c.callerID = id
	return nil
}

func (c *PlaceCourierOrderCommand) setQuotationID(quotationID string) error {
	quotationID = strings.TrimSpace(quotationID)
	if quotationID == "" {
		return errs.NewValueIsRequiredError("quotation id")
	}

	c.quotationID = quotationID
	return nil
}

func (c *PlaceCourierOrderCommand) setStops(senderStop, recipientStop string) error {
	senderStop = strings.TrimSpace(senderStop)
	recipientStop = strings.TrimSpace(recipientStop)

	if senderStop == "" {
		return errs.NewValueIsRequiredError("sender stop id")
	}
	if recipientStop == "" {
		return errs.NewValueIsRequiredError("recipient stop id")
	}

	c.senderStop = senderStop
	c.recipientStop = recipientStop
	return nil
}

func (c *PlaceCourierOrderCommand) setContacts(sender, recipient ports.Contact) error {
	if strings.TrimSpace(sender.Name) == "" || strings.TrimSpace(sender.Phone) == "" {
		return errs.NewValueIsRequiredError("sender contact")
	}
	if strings.TrimSpace(recipient.Name) == "" || strings.TrimSpace(recipient.Phone) == "" {
		return errs.NewValueIsRequiredError("recipient contact")
	}

	c.sender = sender
	c.recipient = recipient
	return nil
}
