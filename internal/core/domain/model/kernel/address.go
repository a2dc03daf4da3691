package kernel

import (
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when attempting to use an improperly
// initialized Address. Addresses must be created via NewAddress.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"address must be created via NewAddress constructor")

// Address is a value object holding a free-text postal address, optional
// structured components used by zone-based shipping rates, and an optional
// resolved coordinate. The zero value is invalid; use NewAddress.
//
// Structured components are best-effort: an address may carry only the
// free-text line, in which case zone matching is impossible and fee
// calculation falls back to geocoded distance.
type Address struct { //nolint:recvcheck //using for validation
	line     string
	city     string
	province string
	region   string
	point    *GeoPoint

	guard guard.ConstructorGuard
}

// NewAddress creates an Address. The free-text line is required; city,
// province and region are optional structured components.
func NewAddress(line, city, province, region string) (Address, error) {
	a := Address{
		guard: guard.NewConstructorGuard(),
	}

	if err := a.setLine(line); err != nil {
		return Address{}, err
	}

	a.city = strings.TrimSpace(city)
	a.province = strings.TrimSpace(province)
	a.region = strings.TrimSpace(region)

	return a, nil
}

// Validate checks that the Address was produced by NewAddress.
func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

// Line returns the free-text address line.
func (a Address) Line() string {
	return a.line
}

// City returns the city component, empty when unknown.
func (a Address) City() string {
	return a.city
}

// Province returns the province component, empty when unknown.
func (a Address) Province() string {
	return a.province
}

// Region returns the region component, empty when unknown.
func (a Address) Region() string {
	return a.region
}

// Point returns the resolved coordinate, nil when the address has not been
// geocoded yet.
func (a Address) Point() *GeoPoint {
	return a.point
}

// WithPoint returns a copy of the Address carrying the resolved coordinate.
func (a Address) WithPoint(p GeoPoint) (Address, error) {
	if err := errors.Join(a.Validate(), p.Validate()); err != nil {
		return Address{}, err
	}

	out := a
	out.point = &p
	return out, nil
}

// Normalized returns a canonical form of the free-text line for use as a
// geocode cache key: lower-cased, with interior whitespace collapsed.
func (a Address) Normalized() string {
	return NormalizeAddressLine(a.line)
}

// NormalizeAddressLine canonicalizes a free-text address for cache keying.
func NormalizeAddressLine(line string) string {
	return strings.Join(strings.Fields(strings.ToLower(line)), " ")
}

func (a *Address) setLine(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return errs.NewValueIsRequiredError("address line")
	}

	a.line = line
	return nil
}
