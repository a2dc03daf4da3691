package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// GeocodeResult is a resolved address: coordinates plus the upstream's
// canonical formatting of the input.
type GeocodeResult struct {
	Point            kernel.GeoPoint
	FormattedAddress string
}

// ReverseGeocodeResult is a resolved coordinate pair: the display address and
// its structured components.
type ReverseGeocodeResult struct {
	DisplayAddress string
	City           string
	Province       string
	Region         string
	Country        string
}

// Geocoder resolves free-text addresses to coordinates and back.
//
// Implementations cache results and rate-limit upstream calls; callers may
// block for the limiter's interval on a cache miss. A zero-result resolution
// fails with errs.ErrObjectNotFound, transport and non-2xx failures with
// errs.ErrUpstream.
type Geocoder interface {
	// Geocode resolves a free-text address to coordinates.
	Geocode(ctx context.Context, address string) (GeocodeResult, error)

	// ReverseGeocode resolves coordinates to an address.
	ReverseGeocode(ctx context.Context, point kernel.GeoPoint) (ReverseGeocodeResult, error)
}
