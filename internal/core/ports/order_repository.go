package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for the orchestrator's
// narrow view of marketplace orders. Orders are created by the commerce
// module; this repository only reads them and writes back the fulfillment
// status kept in lockstep with the delivery.
type OrderRepository interface {
	// Get retrieves an order by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// Update persists the order's fulfillment status.
	Update(ctx context.Context, aggregate *order.Order) error
}
