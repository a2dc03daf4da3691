package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status represents the marketplace order's fulfillment state as seen by the
// commerce module. Once a delivery exists the orchestrator is the only writer
// of this status, keeping it in lockstep with the delivery state machine.
//
// State transitions driven by the orchestrator:
//
//	pending ──> confirmed ──> shipped ──> delivered
//	                ^────────────┘
//	        (delivery cancelled: revert, order stays fulfillable)
//
// delivered and cancelled are terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Pending means the order awaits fulfillment arrangements.
	Pending

	// Confirmed means a delivery was arranged (driver assigned or courier
	// order placed) or a previous delivery attempt was cancelled and the
	// order is fulfillable again.
	Confirmed

	// Shipped means the package left the seller.
	Shipped

	// Delivered means the buyer received the package. Terminal.
	Delivered

	// Cancelled means the order itself was cancelled. Terminal. The
	// orchestrator never sets this; cancelling a delivery reverts the order
	// to Confirmed instead, leaving it fulfillable by another attempt.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Pending:   "pending",
		Confirmed: "confirmed",
		Shipped:   "shipped",
		Delivered: "delivered",
		Cancelled: "cancelled",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "pending",
		Confirmed: "confirmed",
		Shipped:   "shipped",
		Delivered: "delivered",
		Cancelled: "cancelled",
	}
}

// Validate checks that the Status is one of the defined order states.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the canonical lower-case name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// Confirm transitions the status to Confirmed.
//
// Valid from pending, and idempotently from confirmed.
func (s Status) Confirm() (Status, error) {
	if s != Pending && s != Confirmed {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to confirm", s.String()),
		)
	}

	return Confirmed, nil
}

// Ship transitions the status to Shipped.
//
// Valid from confirmed, and idempotently from shipped: both picked_up and
// in_transit delivery states map to shipped, so a second report is a no-op.
func (s Status) Ship() (Status, error) {
	if s != Confirmed && s != Shipped {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to ship", s.String()),
		)
	}

	return Shipped, nil
}

// CompleteDelivery transitions the status to Delivered.
//
// Valid from confirmed or shipped: a courier may report completion before any
// pickup signal was observed.
func (s Status) CompleteDelivery() (Status, error) {
	if s != Confirmed && s != Shipped {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to complete delivery", s.String()),
		)
	}

	return Delivered, nil
}

// RevertToConfirmed transitions the status back to Confirmed after a delivery
// was cancelled. The order remains fulfillable by another delivery attempt.
//
// Valid from any non-terminal status.
func (s Status) RevertToConfirmed() (Status, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	if s.IsTerminal() {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to revert to confirmed", s.String()),
		)
	}

	return Confirmed, nil
}
