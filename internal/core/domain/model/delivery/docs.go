// Package delivery provides the domain model for physical fulfillment of paid
// marketplace orders. It implements the Delivery aggregate root with its
// lifecycle state machine and courier linkage.
//
// The package includes:
//   - Delivery: the aggregate root, one per order, owning all status transitions
//   - Status: a state machine over pending, assigned, picked_up, in_transit,
//     delivered and cancelled
//   - CourierStatus: the vendor-neutral view of an external courier order's
//     state, the translation target for every courier adapter
//   - Driver and CourierLink: value objects for driver details and the
//     external courier order identifiers
//
// Key business rules:
//   - deliveries are created pending and reach exactly one terminal status
//   - the courier linkage is set at most once; a second placement is rejected
//   - reconciliation applies forward transitions only, so out-of-order courier
//     signals can never regress a delivery
//   - terminal deliveries permit reads only
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package delivery
