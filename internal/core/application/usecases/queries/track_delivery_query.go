// Package queries contains read-only operations backed by raw SQL over the
// persistence layer, bypassing the aggregate repositories. Responses are
// shaped for their consumers; the public tracking view in particular redacts
// everything a stranger with a tracking number must not see.
package queries

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrTrackDeliveryQueryIsNotConstructed = errors.New(
	"TrackDeliveryQuery must be created via NewTrackDeliveryQuery constructor",
)

// TrackDeliveryQuery retrieves the public view of a delivery by its tracking
// number. No authentication required; anyone holding the tracking number may
// look it up.
type TrackDeliveryQuery struct {
	trackingNumber string

	guard guard.ConstructorGuard
}

// NewTrackDeliveryQuery creates a query for the public tracking view.
func NewTrackDeliveryQuery(trackingNumber string) (TrackDeliveryQuery, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return TrackDeliveryQuery{}, errs.NewValueIsRequiredError("tracking number")
	}

	return TrackDeliveryQuery{
		trackingNumber: trackingNumber,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q TrackDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrTrackDeliveryQueryIsNotConstructed)
}

// TrackingNumber returns the tracking number being looked up.
func (q TrackDeliveryQuery) TrackingNumber() string {
	return q.trackingNumber
}

// TrackDeliveryQueryResponse is the redacted, public shape of a delivery.
// It carries the status, the destination city (never the full address), the
// driver's name and phone, and the lifecycle timestamps. Party identifiers,
// street addresses and courier internals are deliberately absent.
type TrackDeliveryQueryResponse struct {
	TrackingNumber  string
	Status          string
	DestinationCity string

	DriverName  string
	DriverPhone string
	TrackingURL string

	CreatedAt   time.Time
	AssignedAt  *time.Time
	PickedUpAt  *time.Time
	InTransitAt *time.Time
	DeliveredAt *time.Time
}
