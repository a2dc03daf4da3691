package deliveryrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDeliveryRepository implements DeliveryRepository using GORM.
type GormDeliveryRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormDeliveryRepository creates a new GORM delivery repository.
func NewGormDeliveryRepository(db *gorm.DB, tracker aggregateTracker) *GormDeliveryRepository {
	return &GormDeliveryRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new delivery to the database. The unique index on order_id
// rejects a second delivery for the same order.
func (r *GormDeliveryRepository) Add(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if isUniqueViolation(err) {
			return errs.NewConflictErrorWithCause("delivery already exists for order", err)
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing delivery conditionally on its loaded version.
// The write bumps the version column; zero affected rows means a concurrent
// writer advanced the row first (or the row is gone) and surfaces as
// errs.ErrVersionIsInvalid so the caller can reload and retry.
func (r *GormDeliveryRepository) Update(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).
		Model(&DeliveryDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewVersionIsInvalidError("delivery",
			fmt.Errorf("delivery %s was modified concurrently at version %d",
				aggregate.ID().String(), aggregate.Version()))
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a delivery by ID.
func (r *GormDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	return r.getOne(ctx, "id = ?", id.Bytes(), id.String())
}

// GetByOrderID retrieves the delivery created for the given order.
func (r *GormDeliveryRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) (*delivery.Delivery, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	return r.getOne(ctx, "order_id = ?", orderID.Bytes(), orderID.String())
}

// GetByTrackingNumber retrieves a delivery by its public tracking number.
func (r *GormDeliveryRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*delivery.Delivery, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, errs.NewValueIsRequiredError("tracking number")
	}

	return r.getOne(ctx, "tracking_number = ?", trackingNumber, trackingNumber)
}

// GetByExternalOrderID retrieves the delivery linked to a courier order.
func (r *GormDeliveryRepository) GetByExternalOrderID(ctx context.Context, externalOrderID string) (*delivery.Delivery, error) {
	if externalOrderID == "" {
		return nil, errs.NewValueIsRequiredError("external order id")
	}

	return r.getOne(ctx, "external_order_id = ?", externalOrderID, externalOrderID)
}

// GetAllWithActiveCourierOrders retrieves every delivery with courier linkage
// that has not yet reached a terminal status. The reconciliation poller works
// through this set.
func (r *GormDeliveryRepository) GetAllWithActiveCourierOrders(ctx context.Context) ([]*delivery.Delivery, error) {
	var dtos []DeliveryDTO
	if err := r.db.WithContext(ctx).
		Where("external_order_id IS NOT NULL").
		Where("status NOT IN ?", []int{int(delivery.Delivered), int(delivery.Cancelled)}).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetAllForUser retrieves deliveries where the user is the buyer or the
// seller, most recent first.
func (r *GormDeliveryRepository) GetAllForUser(ctx context.Context, userID kernel.UUID) ([]*delivery.Delivery, error) {
	if err := userID.Validate(); err != nil {
		return nil, err
	}

	var dtos []DeliveryDTO
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID.Bytes(), userID.Bytes()).
		Order("created_at DESC").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func (r *GormDeliveryRepository) getOne(ctx context.Context, condition string, value any, id string) (*delivery.Delivery, error) {
	var dto DeliveryDTO
	if err := r.db.WithContext(ctx).First(&dto, condition, value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("delivery", id)
		}
		return nil, err
	}

	return toDomain(dto)
}

func toDomainSlice(dtos []DeliveryDTO) ([]*delivery.Delivery, error) {
	deliveries := make([]*delivery.Delivery, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}

	return deliveries, nil
}

// isUniqueViolation matches postgres unique constraint failures without
// importing the driver's error types.
func isUniqueViolation(err error) bool {
	return err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key value"))
}
