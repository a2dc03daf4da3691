package commands

import (
	"context"
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// resolvePoint returns the address's coordinates, geocoding the full address
// text only when no resolved point is attached yet. An address the geocoder
// cannot resolve is a problem with the caller's input, so the geocoder's
// not-found surfaces as a validation error.
func resolvePoint(ctx context.Context, geocoder ports.Geocoder, addr kernel.Address) (kernel.GeoPoint, error) {
	if p := addr.Point(); p != nil {
		return *p, nil
	}

	result, err := geocoder.Geocode(ctx, fullAddress(addr))
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return kernel.GeoPoint{}, errs.NewValueIsInvalidErrorWithCause("address", err)
		}
		return kernel.GeoPoint{}, err
	}

	return result.Point, nil
}

// fullAddress joins the address components into the single line geocoders
// expect.
func fullAddress(addr kernel.Address) string {
	parts := make([]string, 0, 4)
	for _, part := range []string{addr.Line(), addr.City(), addr.Province(), addr.Region()} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}

	return strings.Join(parts, ", ")
}
