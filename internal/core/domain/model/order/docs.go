// Package order provides the orchestrator's view of a marketplace order's
// fulfillment status. The commerce module owns the order; once a delivery
// exists, this package's Status is written exclusively by the delivery
// orchestrator, in lockstep with the delivery state machine.
//
// The package includes:
//   - Order: a narrow aggregate restored from persistence (never created here)
//   - Status: a state machine over pending, confirmed, shipped, delivered
//     and cancelled
//
// Key business rules:
//   - confirming and shipping are idempotent, since several delivery states
//     map onto the same order state
//   - cancelling a delivery reverts the order to confirmed rather than
//     cancelling it, so the order stays fulfillable by another attempt
package order
