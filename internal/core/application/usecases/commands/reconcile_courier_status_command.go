package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrReconcileCourierStatusCommandIsNotConstructed = errors.New(
	"ReconcileCourierStatusCommand must be created via NewReconcileCourierStatusCommand constructor",
)

// ReconcileCourierStatusCommand carries one courier status observation for a
// delivery, identified by the courier-side order id (webhooks and the poller
// only know that id). Status is the vendor-neutral translation; the raw
// vendor string travels alongside for diagnostics. An untranslatable vendor
// status is a valid observation: Status stays CourierStatusUnknown, and
// reconciliation only records the raw string.
type ReconcileCourierStatusCommand struct { //nolint:recvcheck //using for validation
	externalOrderID string
	status          delivery.CourierStatus
	rawStatus       string

	guard guard.ConstructorGuard
}

// NewReconcileCourierStatusCommand creates a command to reconcile one courier
// status observation.
func NewReconcileCourierStatusCommand(
	externalOrderID string,
	status delivery.CourierStatus,
	rawStatus string,
) (ReconcileCourierStatusCommand, error) {
	cmd := ReconcileCourierStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setExternalOrderID(externalOrderID); err != nil {
		return ReconcileCourierStatusCommand{}, err
	}

	cmd.status = status
	cmd.rawStatus = strings.TrimSpace(rawStatus)

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ReconcileCourierStatusCommand) Validate() error {
	return c.guard.Validate(ErrReconcileCourierStatusCommandIsNotConstructed)
}

// ExternalOrderID returns the courier-side order identifier.
func (c ReconcileCourierStatusCommand) ExternalOrderID() string {
	return c.externalOrderID
}

// Status returns the vendor-neutral courier status, possibly
// CourierStatusUnknown.
func (c ReconcileCourierStatusCommand) Status() delivery.CourierStatus {
	return c.status
}

// RawStatus returns the vendor status string as received.
func (c ReconcileCourierStatusCommand) RawStatus() string {
	return c.rawStatus
}

func (c *ReconcileCourierStatusCommand) setExternalOrderID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errs.NewValueIsRequiredError("external order id")
	}

	c.externalOrderID = id
	return nil
}
