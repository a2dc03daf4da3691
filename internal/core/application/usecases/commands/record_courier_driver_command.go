package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrRecordCourierDriverCommandIsNotConstructed = errors.New(
	"RecordCourierDriverCommand must be created via NewRecordCourierDriverCommand constructor",
)

// RecordCourierDriverCommand stores driver details the poller learned from a
// courier driver lookup. Couriers reassign drivers, so repeated observations
// overwrite earlier ones.
type RecordCourierDriverCommand struct { //nolint:recvcheck //using for validation
	externalOrderID string
	driver          delivery.Driver

	guard guard.ConstructorGuard
}

// NewRecordCourierDriverCommand creates a command to record courier driver details.
func NewRecordCourierDriverCommand(
	externalOrderID string, driver delivery.Driver,
) (RecordCourierDriverCommand, error) {
	cmd := RecordCourierDriverCommand{
		guard: guard.NewConstructorGuard(),
	}

	externalOrderID = strings.TrimSpace(externalOrderID)
	if externalOrderID == "" {
		return RecordCourierDriverCommand{}, errs.NewValueIsRequiredError("external order id")
	}

	if err := driver.Validate(); err != nil {
		return RecordCourierDriverCommand{}, err
	}

	cmd.externalOrderID = externalOrderID
	cmd.driver = driver

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordCourierDriverCommand) Validate() error {
	return c.guard.Validate(ErrRecordCourierDriverCommandIsNotConstructed)
}

// ExternalOrderID returns the courier-side order identifier.
func (c RecordCourierDriverCommand) ExternalOrderID() string {
	return c.externalOrderID
}

// Driver returns the observed driver details.
func (c RecordCourierDriverCommand) Driver() delivery.Driver {
	return c.driver
}
