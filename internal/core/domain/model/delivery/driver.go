package delivery

import (
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrDriverIsNotConstructed is returned when attempting to use an improperly
// initialized Driver. Drivers must be created via NewDriver.
var ErrDriverIsNotConstructed = errs.NewValueIsRequiredError(
	"driver must be created via NewDriver constructor")

// Driver is a value object describing the person and vehicle fulfilling a
// delivery. It is populated either from the internal driver directory (manual
// assignment) or from a courier driver lookup.
type Driver struct { //nolint:recvcheck //using for validation
	name        string
	phone       string
	email       string
	vehicleType string
	plateNumber string

	guard guard.ConstructorGuard
}

// NewDriver creates a Driver. Name and phone are required; email, vehicle
// type and plate number are optional (courier lookups often omit them).
func NewDriver(name, phone, email, vehicleType, plateNumber string) (Driver, error) {
	d := Driver{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(d.setName(name), d.setPhone(phone)); err != nil {
		return Driver{}, err
	}

	d.email = strings.TrimSpace(email)
	d.vehicleType = strings.TrimSpace(vehicleType)
	d.plateNumber = strings.TrimSpace(plateNumber)

	return d, nil
}

// Validate checks that the Driver was produced by NewDriver.
func (d Driver) Validate() error {
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

// Name returns the driver's display name.
func (d Driver) Name() string {
	return d.name
}

// Phone returns the driver's contact phone.
func (d Driver) Phone() string {
	return d.phone
}

// Email returns the driver's email, empty when unknown.
func (d Driver) Email() string {
	return d.email
}

// VehicleType returns the vehicle category (e.g. "MOTORCYCLE"), empty when unknown.
func (d Driver) VehicleType() string {
	return d.vehicleType
}

// PlateNumber returns the vehicle plate, empty when unknown.
func (d Driver) PlateNumber() string {
	return d.plateNumber
}

func (d *Driver) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("driver name")
	}

	d.name = name
	return nil
}

func (d *Driver) setPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return errs.NewValueIsRequiredError("driver phone")
	}

	d.phone = phone
	return nil
}
