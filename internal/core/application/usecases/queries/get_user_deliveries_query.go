package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetUserDeliveriesQueryIsNotConstructed = errors.New(
	"GetUserDeliveriesQuery must be created via NewGetUserDeliveriesQuery constructor",
)

// GetUserDeliveriesQuery retrieves every delivery where the user is a party,
// as buyer or as seller, most recent first.
type GetUserDeliveriesQuery struct {
	userID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetUserDeliveriesQuery creates a query for a user's deliveries.
func NewGetUserDeliveriesQuery(userID kernel.UUID) (GetUserDeliveriesQuery, error) {
	if err := userID.Validate(); err != nil {
		return GetUserDeliveriesQuery{}, err
	}

	return GetUserDeliveriesQuery{
		userID: userID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetUserDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrGetUserDeliveriesQueryIsNotConstructed)
}

// UserID returns the user whose deliveries are being listed.
func (q GetUserDeliveriesQuery) UserID() kernel.UUID {
	return q.userID
}

// GetUserDeliveriesQueryResponse is one delivery in a party's listing.
// Role tells whether the user is the buyer or the seller of this delivery.
type GetUserDeliveriesQueryResponse struct {
	ID             kernel.UUID
	OrderID        kernel.UUID
	TrackingNumber string
	Status         string
	Role           string

	PickupCity   string
	DeliveryCity string

	DriverName  string
	TrackingURL string

	CreatedAt   time.Time
	DeliveredAt *time.Time
}
