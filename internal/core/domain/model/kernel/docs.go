// Package kernel provides core domain primitives shared across the fulfillment
// domain model.
//
// The package includes:
//   - UUID: a value object for unique identifiers with validation and comparison
//   - GeoPoint: a validated WGS84 coordinate pair with great-circle distance
//   - Address: a free-text postal address with optional structured components
//     and an optional resolved GeoPoint
//
// These primitives enforce domain invariants at construction time: the zero
// value of each type is invalid, and instances can only be obtained through
// the provided constructors. All types are immutable and safe for concurrent
// use.
package kernel
