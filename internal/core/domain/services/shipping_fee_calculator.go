package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// FeeBasis names the rule that produced a shipping fee.
type FeeBasis string

const (
	// BasisFreeShipping means the subtotal cleared the free-shipping threshold.
	BasisFreeShipping FeeBasis = "free_shipping"

	// BasisSameCity means both addresses share city, province and region.
	BasisSameCity FeeBasis = "same_city"

	// BasisSameProvince means both addresses share province and region.
	BasisSameProvince FeeBasis = "same_province"

	// BasisSameRegion means both addresses share only the region.
	BasisSameRegion FeeBasis = "same_region"

	// BasisDistance means no zone matched and a distance band was applied.
	BasisDistance FeeBasis = "distance"

	// BasisDefault means the distance could not be resolved (or exceeded every
	// band) and the highest-tier default rate was applied.
	BasisDefault FeeBasis = "default"
)

// Quote is the result of a shipping fee calculation.
type Quote struct {
	Fee                 float64
	Basis               FeeBasis
	FreeShippingApplied bool
}

// DistanceBand maps distances up to UpToKm (inclusive) to a flat fee. Bands
// are matched in ascending order of UpToKm.
type DistanceBand struct {
	UpToKm float64
	Fee    float64
}

// RateTable holds the zone tiers, the distance-band fallback and the
// free-shipping threshold the calculator works from.
type RateTable struct {
	SameCityFee     float64
	SameProvinceFee float64
	SameRegionFee   float64

	// DistanceBands is consulted when no zone tier matches. Must be sorted by
	// UpToKm ascending; distances past the last band fall through to DefaultFee.
	DistanceBands []DistanceBand

	// DefaultFee is the highest-tier rate, applied when the distance exceeds
	// every band or cannot be resolved at all.
	DefaultFee float64

	// FreeShippingThreshold waives the fee for subtotals at or above it.
	// Zero disables free shipping.
	FreeShippingThreshold float64
}

// Validate checks that all fees are non-negative and bands are sorted.
func (t RateTable) Validate() error {
	fees := []float64{t.SameCityFee, t.SameProvinceFee, t.SameRegionFee, t.DefaultFee, t.FreeShippingThreshold}
	for _, f := range fees {
		if f < 0 {
			return errs.NewValueIsOutOfRangeError("rate table fee", f, 0, maxFee)
		}
	}

	for _, b := range t.DistanceBands {
		if b.UpToKm <= 0 || b.Fee < 0 {
			return errs.NewValueIsInvalidError("distance band")
		}
	}

	if !sort.SliceIsSorted(t.DistanceBands, func(i, j int) bool {
		return t.DistanceBands[i].UpToKm < t.DistanceBands[j].UpToKm
	}) {
		return errs.NewValueIsInvalidErrorWithCause("distance bands",
			fmt.Errorf("bands must be sorted by distance ascending"))
	}

	return nil
}

const maxFee = 1_000_000

// DistanceResolver resolves the road-agnostic distance in kilometers between
// two addresses, geocoding them first when needed.
type DistanceResolver interface {
	DistanceBetween(ctx context.Context, a, b kernel.Address) (float64, error)
}

// ShippingFeeCalculator computes shipping fees by matching both addresses
// against zone tiers and falling back to distance bands when no tier applies.
// Given the same inputs and rate table the result is always identical; the
// only I/O is the distance resolution fallback, and a resolver failure
// degrades to the default rate instead of failing the calculation.
type ShippingFeeCalculator struct {
	table    RateTable
	resolver DistanceResolver
}

// NewShippingFeeCalculator creates a calculator over the given rate table.
// The resolver may be nil, in which case the distance fallback always
// degrades to the default rate.
func NewShippingFeeCalculator(table RateTable, resolver DistanceResolver) (*ShippingFeeCalculator, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}

	return &ShippingFeeCalculator{table: table, resolver: resolver}, nil
}

// Calculate computes the shipping fee for an order with the given subtotal,
// shipped from seller to buyer.
//
// Resolution order: free-shipping threshold, zone tiers (same city, same
// province, same region), distance bands, default rate. Distances are taken
// from the addresses' resolved coordinates when both carry them, otherwise
// from the resolver.
func (c *ShippingFeeCalculator) Calculate(ctx context.Context, seller, buyer kernel.Address, subtotal float64) (Quote, error) {
	if err := seller.Validate(); err != nil {
		return Quote{}, err
	}
	if err := buyer.Validate(); err != nil {
		return Quote{}, err
	}
	if subtotal < 0 {
		return Quote{}, errs.NewValueIsInvalidError("subtotal")
	}

	if c.table.FreeShippingThreshold > 0 && subtotal >= c.table.FreeShippingThreshold {
		return Quote{Fee: 0, Basis: BasisFreeShipping, FreeShippingApplied: true}, nil
	}

	if basis, fee, ok := c.matchZone(seller, buyer); ok {
		return Quote{Fee: fee, Basis: basis}, nil
	}

	km, err := c.distanceKm(ctx, seller, buyer)
	if err != nil {
		return Quote{Fee: c.table.DefaultFee, Basis: BasisDefault}, nil
	}

	for _, band := range c.table.DistanceBands {
		if km <= band.UpToKm {
			return Quote{Fee: band.Fee, Basis: BasisDistance}, nil
		}
	}

	return Quote{Fee: c.table.DefaultFee, Basis: BasisDefault}, nil
}

func (c *ShippingFeeCalculator) matchZone(seller, buyer kernel.Address) (FeeBasis, float64, bool) {
	sameRegion := equalFoldTrim(seller.Region(), buyer.Region())
	sameProvince := sameRegion && equalFoldTrim(seller.Province(), buyer.Province())
	sameCity := sameProvince && equalFoldTrim(seller.City(), buyer.City())

	switch {
	case sameCity:
		return BasisSameCity, c.table.SameCityFee, true
	case sameProvince:
		return BasisSameProvince, c.table.SameProvinceFee, true
	case sameRegion:
		return BasisSameRegion, c.table.SameRegionFee, true
	default:
		return "", 0, false
	}
}

func (c *ShippingFeeCalculator) distanceKm(ctx context.Context, seller, buyer kernel.Address) (float64, error) {
	if sp, bp := seller.Point(), buyer.Point(); sp != nil && bp != nil {
		return sp.DistanceKm(*bp)
	}

	if c.resolver == nil {
		return 0, errs.NewValueIsRequiredError("distance resolver")
	}

	return c.resolver.DistanceBetween(ctx, seller, buyer)
}

func equalFoldTrim(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}
