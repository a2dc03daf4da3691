// Package directory implements the DriverDirectory port over a static
// in-memory dataset. The manual assignment path only ever reads it.
package directory

import (
	"context"
	"sort"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// StaticDirectory serves driver lookups from a fixed set loaded at startup.
type StaticDirectory struct {
	drivers map[kernel.UUID]ports.DirectoryDriver
}

// SeedEntry is one driver row of the startup dataset.
type SeedEntry struct {
	Name        string
	Phone       string
	Email       string
	VehicleType string
	PlateNumber string
}

// NewStaticDirectory builds a directory from seed entries, assigning each a
// fresh id.
func NewStaticDirectory(seed []SeedEntry) (*StaticDirectory, error) {
	drivers := make(map[kernel.UUID]ports.DirectoryDriver, len(seed))
	for _, entry := range seed {
		driver, err := delivery.NewDriver(entry.Name, entry.Phone, entry.Email, entry.VehicleType, entry.PlateNumber)
		if err != nil {
			return nil, err
		}

		id := kernel.NewUUID()
		drivers[id] = ports.DirectoryDriver{ID: id, Driver: driver}
	}

	return &StaticDirectory{drivers: drivers}, nil
}

// Get retrieves a driver by id.
func (d *StaticDirectory) Get(_ context.Context, id kernel.UUID) (ports.DirectoryDriver, error) {
	if err := id.Validate(); err != nil {
		return ports.DirectoryDriver{}, err
	}

	driver, ok := d.drivers[id]
	if !ok {
		return ports.DirectoryDriver{}, errs.NewObjectNotFoundError("driver", id.String())
	}

	return driver, nil
}

// List retrieves all drivers, ordered by name for stable output.
func (d *StaticDirectory) List(_ context.Context) ([]ports.DirectoryDriver, error) {
	drivers := make([]ports.DirectoryDriver, 0, len(d.drivers))
	for _, driver := range d.drivers {
		drivers = append(drivers, driver)
	}

	sort.Slice(drivers, func(i, j int) bool {
		return drivers[i].Driver.Name() < drivers[j].Driver.Name()
	})

	return drivers, nil
}
