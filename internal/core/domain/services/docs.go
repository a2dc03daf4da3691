// Package services provides domain services that implement business logic
// spanning multiple aggregates in the fulfillment system.
//
// The package includes:
//   - ShippingFeeCalculator: computes shipping fees from a zone/distance rate
//     table with free-shipping thresholds
package services
