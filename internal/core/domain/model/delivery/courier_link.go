package delivery

import (
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrCourierLinkIsNotConstructed is returned when attempting to use an
// improperly initialized CourierLink. Links must be created via NewCourierLink.
var ErrCourierLinkIsNotConstructed = errs.NewValueIsRequiredError(
	"courier link must be created via NewCourierLink constructor")

// CourierLink holds the identifiers tying a delivery to an order placed with
// the external courier. Once attached to a delivery it is never replaced;
// only the last-known vendor status string is updated as signals arrive.
type CourierLink struct { //nolint:recvcheck //using for validation
	externalOrderID string
	quotationID     string
	trackingURL     string
	lastRawStatus   string

	guard guard.ConstructorGuard
}

// NewCourierLink creates a CourierLink. The external order id is required;
// quotation id and tracking URL are kept for audit and buyer-facing links.
func NewCourierLink(externalOrderID, quotationID, trackingURL string) (CourierLink, error) {
	l := CourierLink{
		guard: guard.NewConstructorGuard(),
	}

	externalOrderID = strings.TrimSpace(externalOrderID)
	if externalOrderID == "" {
		return CourierLink{}, errs.NewValueIsRequiredError("external order id")
	}

	l.externalOrderID = externalOrderID
	l.quotationID = strings.TrimSpace(quotationID)
	l.trackingURL = strings.TrimSpace(trackingURL)

	return l, nil
}

// RestoreCourierLink reconstructs a link from persistence, including the
// last-known vendor status string.
func RestoreCourierLink(externalOrderID, quotationID, trackingURL, lastRawStatus string) (CourierLink, error) {
	l, err := NewCourierLink(externalOrderID, quotationID, trackingURL)
	if err != nil {
		return CourierLink{}, err
	}

	l.lastRawStatus = lastRawStatus
	return l, nil
}

// Validate checks that the CourierLink was produced by a constructor.
func (l CourierLink) Validate() error {
	return l.guard.Validate(ErrCourierLinkIsNotConstructed)
}

// ExternalOrderID returns the courier-side order identifier.
func (l CourierLink) ExternalOrderID() string {
	return l.externalOrderID
}

// QuotationID returns the quotation the courier order was placed against.
func (l CourierLink) QuotationID() string {
	return l.quotationID
}

// TrackingURL returns the courier's shareable tracking link, empty when the
// vendor did not provide one.
func (l CourierLink) TrackingURL() string {
	return l.trackingURL
}

// LastRawStatus returns the most recent vendor status string observed for the
// courier order. Kept verbatim for diagnostics; business logic uses the
// translated CourierStatus instead.
func (l CourierLink) LastRawStatus() string {
	return l.lastRawStatus
}
