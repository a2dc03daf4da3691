package delivery

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	// ErrDeliveryIsNotConstructed is returned when a Delivery instance was not
	// created through NewDelivery or RestoreDelivery.
	ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery constructor")

	// ErrDeliveryIsTerminal rejects any mutation of a delivered or cancelled delivery.
	ErrDeliveryIsTerminal = errs.NewConflictError("delivery is in a terminal status")

	// ErrAlreadyAssigned rejects driver assignment once the delivery advanced past pending.
	ErrAlreadyAssigned = errs.NewConflictError("delivery is already assigned")

	// ErrCourierAlreadyPlaced rejects a second courier placement while linkage exists.
	ErrCourierAlreadyPlaced = errs.NewConflictError("courier order is already placed")

	// ErrTooLateToEdit rejects courier order edits once the package was picked up.
	ErrTooLateToEdit = errs.NewConflictError("courier order can no longer be edited")

	// ErrNoCourierOrder rejects courier operations on a delivery without linkage.
	ErrNoCourierOrder = errs.NewConflictError("delivery has no courier order")
)

// Delivery is the aggregate root for physical fulfillment of a paid order.
// Exactly one Delivery exists per order. It owns the delivery status state
// machine and the courier linkage, and is the only object allowed to decide
// status transitions.
//
// Invariants:
//   - tracking number is generated at creation and never reassigned
//   - buyer and seller are immutable once set
//   - courier linkage is set at most once
//   - once status reaches delivered or cancelled, no further mutation
//
// All mutating methods take the current time explicitly so that handlers stay
// deterministic under test.
type Delivery struct {
	id             kernel.UUID
	orderID        kernel.UUID
	trackingNumber string

	buyerID  kernel.UUID
	sellerID kernel.UUID

	pickupAddress   kernel.Address
	deliveryAddress kernel.Address

	status  Status
	driver  *Driver
	courier *CourierLink

	assignedAt  *time.Time
	pickedUpAt  *time.Time
	inTransitAt *time.Time
	deliveredAt *time.Time

	createdAt time.Time

	version int

	isConstructed bool
}

// NewDelivery creates a pending Delivery for a paid order. A fresh tracking
// number is generated; parties and addresses are validated up front.
func NewDelivery(
	id, orderID, buyerID, sellerID kernel.UUID,
	pickupAddress, deliveryAddress kernel.Address,
	now time.Time,
) (*Delivery, error) {
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		buyerID.Validate(),
		sellerID.Validate(),
		pickupAddress.Validate(),
		deliveryAddress.Validate(),
	); err != nil {
		return nil, err
	}

	return &Delivery{
		id:              id,
		orderID:         orderID,
		trackingNumber:  generateTrackingNumber(),
		buyerID:         buyerID,
		sellerID:        sellerID,
		pickupAddress:   pickupAddress,
		deliveryAddress: deliveryAddress,
		status:          Pending,
		createdAt:       now.UTC(),
		isConstructed:   true,
	}, nil
}

// RestoreDelivery reconstructs a Delivery from persistence. The version is the
// optimistic-concurrency counter the repository checks on update.
func RestoreDelivery(
	id, orderID kernel.UUID,
	trackingNumber string,
	buyerID, sellerID kernel.UUID,
	pickupAddress, deliveryAddress kernel.Address,
	status Status,
	driver *Driver,
	courier *CourierLink,
	assignedAt, pickedUpAt, inTransitAt, deliveredAt *time.Time,
	createdAt time.Time,
	version int,
) (*Delivery, error) {
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		buyerID.Validate(),
		sellerID.Validate(),
		pickupAddress.Validate(),
		deliveryAddress.Validate(),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if strings.TrimSpace(trackingNumber) == "" {
		return nil, errs.NewValueIsRequiredError("tracking number")
	}

	if driver != nil {
		if err := driver.Validate(); err != nil {
			return nil, err
		}
	}

	if courier != nil {
		if err := courier.Validate(); err != nil {
			return nil, err
		}
	}

	return &Delivery{
		id:              id,
		orderID:         orderID,
		trackingNumber:  trackingNumber,
		buyerID:         buyerID,
		sellerID:        sellerID,
		pickupAddress:   pickupAddress,
		deliveryAddress: deliveryAddress,
		status:          status,
		driver:          driver,
		courier:         courier,
		assignedAt:      assignedAt,
		pickedUpAt:      pickedUpAt,
		inTransitAt:     inTransitAt,
		deliveredAt:     deliveredAt,
		createdAt:       createdAt,
		version:         version,
		isConstructed:   true,
	}, nil
}

// Validate ensures the Delivery was produced by a constructor.
func (d *Delivery) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDeliveryIsNotConstructed
	}
	return nil
}

// ID returns the delivery's unique identifier.
func (d *Delivery) ID() kernel.UUID { return d.id }

// OrderID returns the owning order's identifier.
func (d *Delivery) OrderID() kernel.UUID { return d.orderID }

// TrackingNumber returns the public tracking number.
func (d *Delivery) TrackingNumber() string { return d.trackingNumber }

// BuyerID returns the buyer's identifier.
func (d *Delivery) BuyerID() kernel.UUID { return d.buyerID }

// SellerID returns the seller's identifier.
func (d *Delivery) SellerID() kernel.UUID { return d.sellerID }

// PickupAddress returns the seller-side address.
func (d *Delivery) PickupAddress() kernel.Address { return d.pickupAddress }

// DeliveryAddress returns the buyer-side address.
func (d *Delivery) DeliveryAddress() kernel.Address { return d.deliveryAddress }

// Status returns the current lifecycle status.
func (d *Delivery) Status() Status { return d.status }

// Driver returns the assigned driver, nil when none is known yet.
func (d *Delivery) Driver() *Driver { return d.driver }

// Courier returns the courier linkage, nil for the manual path or before placement.
func (d *Delivery) Courier() *CourierLink { return d.courier }

// AssignedAt returns when the delivery became assigned, nil before that.
func (d *Delivery) AssignedAt() *time.Time { return d.assignedAt }

// PickedUpAt returns when the package was picked up, nil before that.
func (d *Delivery) PickedUpAt() *time.Time { return d.pickedUpAt }

// InTransitAt returns when the package went in transit, nil before that.
func (d *Delivery) InTransitAt() *time.Time { return d.inTransitAt }

// DeliveredAt returns the actual delivery time, nil before completion.
func (d *Delivery) DeliveredAt() *time.Time { return d.deliveredAt }

// CreatedAt returns when the delivery record was created.
func (d *Delivery) CreatedAt() time.Time { return d.createdAt }

// Version returns the optimistic-concurrency version loaded from persistence.
func (d *Delivery) Version() int { return d.version }

// IsEqual compares two deliveries by identifier.
func (d *Delivery) IsEqual(other *Delivery) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// AssignDriver performs the manual assignment path: attaches a driver from
// the internal directory and moves the delivery from pending to assigned.
// Rejected with ErrAlreadyAssigned once the delivery has advanced past pending.
func (d *Delivery) AssignDriver(driver Driver, now time.Time) error {
	if err := driver.Validate(); err != nil {
		return err
	}

	if d.status.IsTerminal() {
		return ErrDeliveryIsTerminal
	}

	if d.status != Pending {
		return ErrAlreadyAssigned
	}

	newStatus, err := d.status.Assign()
	if err != nil {
		return err
	}

	ts := now.UTC()
	d.status = newStatus
	d.assignedAt = &ts
	d.driver = &driver
	return nil
}

// LinkCourierOrder records a placed courier order and moves the delivery to
// assigned. Linkage is set at most once: a second call is rejected with
// ErrCourierAlreadyPlaced regardless of the delivery's current status, which
// is what prevents duplicate physical dispatches.
func (d *Delivery) LinkCourierOrder(link CourierLink, now time.Time) error {
	if err := link.Validate(); err != nil {
		return err
	}

	if d.courier != nil {
		return ErrCourierAlreadyPlaced
	}

	if d.status.IsTerminal() {
		return ErrDeliveryIsTerminal
	}

	if d.status != Pending {
		return ErrAlreadyAssigned
	}

	newStatus, err := d.status.Assign()
	if err != nil {
		return err
	}

	ts := now.UTC()
	d.status = newStatus
	d.assignedAt = &ts
	d.courier = &link
	return nil
}

// SetDriver records driver details learned after placement, typically from a
// courier driver lookup. Unlike AssignDriver it does not advance the status
// and may overwrite earlier details (couriers reassign drivers).
func (d *Delivery) SetDriver(driver Driver) error {
	if err := driver.Validate(); err != nil {
		return err
	}

	if d.status.IsTerminal() {
		return ErrDeliveryIsTerminal
	}

	d.driver = &driver
	return nil
}

// ConfirmPickup is the manual pickup confirmation used on the non-courier path.
func (d *Delivery) ConfirmPickup(now time.Time) error {
	if d.status.IsTerminal() {
		return ErrDeliveryIsTerminal
	}

	newStatus, err := d.status.PickUp()
	if err != nil {
		return err
	}

	ts := now.UTC()
	d.status = newStatus
	d.pickedUpAt = &ts
	return nil
}

// MarkInTransit moves the delivery to in_transit.
func (d *Delivery) MarkInTransit(now time.Time) error {
	if d.status.IsTerminal() {
		return ErrDeliveryIsTerminal
	}

	newStatus, err := d.status.Transit()
	if err != nil {
		return err
	}

	ts := now.UTC()
	d.status = newStatus
	d.inTransitAt = &ts
	return nil
}

// MarkDelivered completes the delivery and records the actual delivery time.
func (d *Delivery) MarkDelivered(now time.Time) error {
	if d.status.IsTerminal() {
		return ErrDeliveryIsTerminal
	}

	newStatus, err := d.status.Complete()
	if err != nil {
		return err
	}

	ts := now.UTC()
	d.status = newStatus
	d.deliveredAt = &ts
	return nil
}

// Cancel abandons the delivery from any non-terminal status.
func (d *Delivery) Cancel(_ time.Time) error {
	if d.status.IsTerminal() {
		return ErrDeliveryIsTerminal
	}

	newStatus, err := d.status.Cancel()
	if err != nil {
		return err
	}

	d.status = newStatus
	return nil
}

// EnsureEditable verifies that the courier order can still be edited. The
// check runs locally before any upstream call so that conflicts never reach
// the courier. Rejected with ErrTooLateToEdit once the package was picked up.
func (d *Delivery) EnsureEditable() error {
	if d.courier == nil {
		return ErrNoCourierOrder
	}

	if d.status.IsTerminal() || d.status.Rank() >= PickedUp.Rank() {
		return ErrTooLateToEdit
	}

	return nil
}

// UpdateDeliveryAddress replaces the buyer-side address following a courier
// order edit. Only permitted while the order is still editable.
func (d *Delivery) UpdateDeliveryAddress(addr kernel.Address) error {
	if err := addr.Validate(); err != nil {
		return err
	}

	if err := d.EnsureEditable(); err != nil {
		return err
	}

	d.deliveryAddress = addr
	return nil
}

// AttachResolvedPoints stores geocoded coordinates on both addresses so later
// calculations and courier calls can reuse them.
func (d *Delivery) AttachResolvedPoints(pickup, dropoff kernel.GeoPoint) error {
	if d.status.IsTerminal() {
		return ErrDeliveryIsTerminal
	}

	resolvedPickup, err := d.pickupAddress.WithPoint(pickup)
	if err != nil {
		return err
	}

	resolvedDropoff, err := d.deliveryAddress.WithPoint(dropoff)
	if err != nil {
		return err
	}

	d.pickupAddress = resolvedPickup
	d.deliveryAddress = resolvedDropoff
	return nil
}

// RecordCourierRawStatus keeps the last vendor status string on the linkage
// for diagnostics. No-op without linkage.
func (d *Delivery) RecordCourierRawStatus(raw string) {
	if d.courier == nil {
		return
	}

	link := *d.courier
	link.lastRawStatus = raw
	d.courier = &link
}

// ApplyCourierStatus reconciles a courier-reported status into the delivery's
// state machine. Only forward transitions are applied: a report that would
// move the delivery backwards (out-of-order webhook delivery) returns
// (false, nil) and must be logged by the caller, never applied. Reports
// against a terminal delivery are ignored the same way.
//
// Forward jumps (e.g. COMPLETED arriving while still assigned) are walked
// through the intermediate states edge by edge, stamping each timestamp, so
// the resulting state is always reachable through the transition graph.
func (d *Delivery) ApplyCourierStatus(cs CourierStatus, now time.Time) (bool, error) {
	if err := cs.Validate(); err != nil {
		return false, err
	}

	if d.courier == nil {
		return false, ErrNoCourierOrder
	}

	if d.status.IsTerminal() {
		return false, nil
	}

	target, err := cs.DeliveryStatus()
	if err != nil {
		return false, err
	}

	if target == Cancelled {
		if err := d.Cancel(now); err != nil {
			return false, err
		}
		return true, nil
	}

	if target.Rank() <= d.status.Rank() {
		return false, nil
	}

	for d.status.Rank() < target.Rank() {
		if err := d.advanceToward(target, now); err != nil {
			return false, err
		}
	}

	return true, nil
}

// advanceToward applies exactly one edge of the transition graph in the
// direction of target.
func (d *Delivery) advanceToward(target Status, now time.Time) error {
	switch d.status {
	case Pending:
		ts := now.UTC()
		newStatus, err := d.status.Assign()
		if err != nil {
			return err
		}
		d.status = newStatus
		d.assignedAt = &ts
		return nil
	case Assigned:
		// assigned has two outgoing forward edges; take in_transit directly
		// when that is all the courier reported.
		if target == InTransit {
			return d.MarkInTransit(now)
		}
		return d.ConfirmPickup(now)
	case PickedUp:
		if target == Delivered {
			return d.MarkDelivered(now)
		}
		return d.MarkInTransit(now)
	case InTransit:
		return d.MarkDelivered(now)
	default:
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("cannot advance from %s", d.status.String()))
	}
}

// generateTrackingNumber mints a public tracking number of the form
// TRK-XXXXXXXXXXXX. Uniqueness is backed by the random UUID space and
// enforced by the unique index on the deliveries table.
func generateTrackingNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "TRK-" + raw[:12]
}
