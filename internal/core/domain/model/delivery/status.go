package delivery

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery.
// It implements a state machine with defined transitions so that deliveries
// always follow the physical fulfillment workflow.
//
// State transitions:
//
//	pending ──> assigned ──> picked_up ──> in_transit ──> delivered
//	   │            │         │    └──────────┬──────────────^
//	   │            │         │               │
//	   └────────────┴─────────┴───────────────┴──> cancelled
//
// pending is the only initial state; delivered and cancelled are terminal.
// Status is a value object that validates transitions and provides the string
// representations used for persistence and the HTTP surface.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status of a freshly created delivery. No driver
	// or courier order exists yet.
	Pending

	// Assigned indicates a driver was assigned manually or a courier order
	// was placed (possibly still matching a driver on the courier side).
	Assigned

	// PickedUp indicates the driver has collected the package from the seller.
	PickedUp

	// InTransit indicates the package is on its way to the buyer.
	InTransit

	// Delivered indicates the package reached the buyer. Terminal.
	Delivered

	// Cancelled indicates the delivery was abandoned before completion. Terminal.
	Cancelled
)

// getStatusStrings returns the full Status-to-string map, including Unknown.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Pending:   "pending",
		Assigned:  "assigned",
		PickedUp:  "picked_up",
		InTransit: "in_transit",
		Delivered: "delivered",
		Cancelled: "cancelled",
	}
}

// getValidStatusStrings returns only the statuses accepted from external sources.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "pending",
		Assigned:  "assigned",
		PickedUp:  "picked_up",
		InTransit: "in_transit",
		Delivered: "delivered",
		Cancelled: "cancelled",
	}
}

// Validate checks that the Status is one of the defined lifecycle states.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the canonical lower-snake name of the status.
// Safe to call on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// StatusFromString parses the canonical string form back into a Status.
func StatusFromString(raw string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == raw {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid",
		fmt.Errorf("%q is not a valid status", raw))
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// Rank orders the forward progression of the happy path. Reconciliation uses
// it to ignore courier reports that would move a delivery backwards.
// Terminal statuses rank above every transient one.
func (s Status) Rank() int {
	switch s {
	case Pending:
		return 1
	case Assigned:
		return 2
	case PickedUp:
		return 3
	case InTransit:
		return 4
	case Delivered, Cancelled:
		return 5
	default:
		return 0
	}
}

// Assign transitions the status to Assigned.
//
// Valid transitions:
//   - pending -> assigned
func (s Status) Assign() (Status, error) {
	if s != Pending {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to assign", s.String()),
		)
	}

	return Assigned, nil
}

// PickUp transitions the status to PickedUp.
//
// Valid transitions:
//   - assigned -> picked_up
func (s Status) PickUp() (Status, error) {
	if s != Assigned {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to pick up from", s.String()),
		)
	}

	return PickedUp, nil
}

// Transit transitions the status to InTransit.
//
// Valid transitions:
//   - assigned -> in_transit (courier reports ON_GOING before a pickup signal)
//   - picked_up -> in_transit
func (s Status) Transit() (Status, error) {
	if s != Assigned && s != PickedUp {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to go in transit from", s.String()),
		)
	}

	return InTransit, nil
}

// Complete transitions the status to Delivered.
//
// Valid transitions:
//   - picked_up -> delivered (couriers may skip the ON_GOING signal)
//   - in_transit -> delivered
func (s Status) Complete() (Status, error) {
	if s != PickedUp && s != InTransit {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s.String()),
		)
	}

	return Delivered, nil
}

// Cancel transitions the status to Cancelled.
//
// Valid transitions: any non-terminal status -> cancelled.
func (s Status) Cancel() (Status, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	if s.IsTerminal() {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to cancel", s.String()),
		)
	}

	return Cancelled, nil
}
