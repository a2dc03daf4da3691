// Package ports defines the contracts between the application core and the
// outside world: repositories, the unit of work, the courier client, the
// geocoder, notifications and the driver directory. These interfaces enable
// dependency inversion and testability.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
)

// DeliveryRepository defines the persistence contract for delivery aggregates.
type DeliveryRepository interface {
	// Add persists a new delivery aggregate to storage. Fails if a delivery
	// for the same order already exists (one delivery per order).
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Update persists changes to an existing delivery aggregate. The update
	// is conditional on the aggregate's version: a concurrent writer having
	// advanced the row yields errs.ErrVersionIsInvalid and no mutation.
	Update(ctx context.Context, aggregate *delivery.Delivery) error

	// Get retrieves a delivery aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// GetByOrderID retrieves the delivery created for the given order.
	GetByOrderID(ctx context.Context, orderID kernel.UUID) (*delivery.Delivery, error)

	// GetByTrackingNumber retrieves a delivery by its public tracking number.
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*delivery.Delivery, error)

	// GetByExternalOrderID retrieves the delivery linked to the given courier
	// order. Used by the webhook receiver, which only knows the courier's id.
	GetByExternalOrderID(ctx context.Context, externalOrderID string) (*delivery.Delivery, error)

	// GetAllWithActiveCourierOrders retrieves every delivery that has courier
	// linkage and is not yet in a terminal status. The reconciliation poller
	// works through this set.
	GetAllWithActiveCourierOrders(ctx context.Context) ([]*delivery.Delivery, error)

	// GetAllForUser retrieves deliveries where the user is the buyer or the
	// seller, most recent first.
	GetAllForUser(ctx context.Context, userID kernel.UUID) ([]*delivery.Delivery, error)
}
