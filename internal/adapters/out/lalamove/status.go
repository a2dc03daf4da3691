package lalamove

import (
	"strings"

	"fulfillment/internal/core/domain/model/delivery"
)

// vendorStatuses translates Lalamove order status strings into the internal
// vendor-neutral CourierStatus. REJECTED and EXPIRED are terminal on the
// vendor side and collapse into cancellation; both CANCELED spellings appear
// in the wild.
var vendorStatuses = map[string]delivery.CourierStatus{
	"ASSIGNING_DRIVER": delivery.CourierAssigningDriver,
	"ON_GOING":         delivery.CourierOnGoing,
	"PICKED_UP":        delivery.CourierPickedUp,
	"COMPLETED":        delivery.CourierCompleted,
	"CANCELED":         delivery.CourierCancelled,
	"CANCELLED":        delivery.CourierCancelled,
	"REJECTED":         delivery.CourierCancelled,
	"EXPIRED":          delivery.CourierCancelled,
}

// TranslateStatus maps a raw vendor status string onto the internal
// CourierStatus. Unrecognized strings translate to CourierStatusUnknown with
// ok=false; callers keep the raw string for diagnostics either way.
func TranslateStatus(raw string) (delivery.CourierStatus, bool) {
	status, ok := vendorStatuses[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return delivery.CourierStatusUnknown, false
	}
	return status, true
}
