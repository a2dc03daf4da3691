package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
)

// DirectoryDriver is one entry of the internal driver reference dataset used
// by the manual assignment path.
type DirectoryDriver struct {
	ID     kernel.UUID
	Driver delivery.Driver
}

// DriverDirectory looks up the internal drivers available for manual
// assignment. Reference data only; no state beyond lookup.
type DriverDirectory interface {
	// Get retrieves a driver by id. Fails with errs.ErrObjectNotFound when
	// no such driver exists.
	Get(ctx context.Context, id kernel.UUID) (DirectoryDriver, error)

	// List retrieves all drivers available for assignment.
	List(ctx context.Context) ([]DirectoryDriver, error)
}
