package delivery

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// CourierStatus is the internal, vendor-neutral view of an external courier
// order's state. Courier adapters translate their vendor's vocabulary into
// these values before anything reaches the orchestrator, so the state machine
// never sees vendor strings.
type CourierStatus int

const (
	// CourierStatusUnknown catches untranslatable vendor statuses.
	CourierStatusUnknown CourierStatus = iota

	// CourierAssigningDriver means the courier accepted the order and is
	// matching a driver.
	CourierAssigningDriver

	// CourierOnGoing means the driver is moving toward the dropoff.
	CourierOnGoing

	// CourierPickedUp means the driver collected the package.
	CourierPickedUp

	// CourierCompleted means the package was delivered.
	CourierCompleted

	// CourierCancelled means the courier order was cancelled, rejected, or
	// expired on the vendor side.
	CourierCancelled
)

func getCourierStatusStrings() map[CourierStatus]string {
	return map[CourierStatus]string{
		CourierStatusUnknown:   "unknown",
		CourierAssigningDriver: "assigning_driver",
		CourierOnGoing:         "on_going",
		CourierPickedUp:        "picked_up",
		CourierCompleted:       "completed",
		CourierCancelled:       "cancelled",
	}
}

// String returns the vendor-neutral name of the courier status.
func (cs CourierStatus) String() string {
	if str, ok := getCourierStatusStrings()[cs]; ok {
		return str
	}
	return "unknown"
}

// Validate rejects CourierStatusUnknown and out-of-range values.
func (cs CourierStatus) Validate() error {
	if cs <= CourierStatusUnknown || cs > CourierCancelled {
		return errs.NewValueIsInvalidErrorWithCause("courier status is invalid",
			fmt.Errorf("%d is not a valid courier status", cs))
	}
	return nil
}

// DeliveryStatus maps the courier-reported state onto the internal delivery
// status it corresponds to. This is the single translation point of the
// reconciliation algorithm.
func (cs CourierStatus) DeliveryStatus() (Status, error) {
	switch cs {
	case CourierAssigningDriver:
		return Assigned, nil
	case CourierPickedUp:
		return PickedUp, nil
	case CourierOnGoing:
		return InTransit, nil
	case CourierCompleted:
		return Delivered, nil
	case CourierCancelled:
		return Cancelled, nil
	default:
		return Unknown, errs.NewValueIsInvalidErrorWithCause("courier status is invalid",
			fmt.Errorf("%s has no delivery status mapping", cs.String()))
	}
}
