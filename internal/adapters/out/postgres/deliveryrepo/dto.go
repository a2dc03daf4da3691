// Package deliveryrepo provides data transfer objects and mapping functions
// for delivery persistence. It implements the repository pattern for the
// delivery aggregate, handling the conversion between domain entities and
// database rows.
package deliveryrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DeliveryDTO represents the database structure for persisting delivery
// aggregates. One row per order, enforced by the unique index on order_id;
// tracking numbers carry their own unique index for the public tracking
// endpoint. The version column backs the optimistic concurrency check on
// updates.
type DeliveryDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	TrackingNumber string    `gorm:"type:varchar(32);not null;uniqueIndex"`

	BuyerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	SellerID uuid.UUID `gorm:"type:uuid;not null;index"`

	PickupAddress   AddressDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	DeliveryAddress AddressDTO `gorm:"embedded;embeddedPrefix:delivery_"`

	Status int `gorm:"type:int;not null;index"`

	DriverName  *string `gorm:"type:varchar(255)"`
	DriverPhone *string `gorm:"type:varchar(32)"`
	DriverEmail *string `gorm:"type:varchar(255)"`
	VehicleType *string `gorm:"type:varchar(64)"`
	PlateNumber *string `gorm:"type:varchar(32)"`

	ExternalOrderID     *string `gorm:"type:varchar(64);uniqueIndex"`
	ExternalQuotationID *string `gorm:"type:varchar(64)"`
	TrackingURL         *string `gorm:"type:varchar(512)"`
	LastRawStatus       *string `gorm:"type:varchar(64)"`

	AssignedAt  *time.Time
	PickedUpAt  *time.Time
	InTransitAt *time.Time
	DeliveredAt *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time

	Version int `gorm:"type:int;not null;default:0"`
}

// TableName overrides GORM's default naming to use "deliveries".
func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// AddressDTO represents an embedded address within the delivery table,
// with optional resolved coordinates.
type AddressDTO struct {
	Line     string `gorm:"type:varchar(512);not null"`
	City     string `gorm:"type:varchar(128);not null"`
	Province string `gorm:"type:varchar(128);not null"`
	Region   string `gorm:"type:varchar(128);not null"`
	Lat      *float64
	Lon      *float64
}

// fromDomain converts a delivery aggregate to its database representation.
// The version column is left at the aggregate's loaded value; the repository
// bumps it on update.
func fromDomain(aggregate *delivery.Delivery) DeliveryDTO {
	dto := DeliveryDTO{
		ID:              aggregate.ID().Bytes(),
		OrderID:         aggregate.OrderID().Bytes(),
		TrackingNumber:  aggregate.TrackingNumber(),
		BuyerID:         aggregate.BuyerID().Bytes(),
		SellerID:        aggregate.SellerID().Bytes(),
		PickupAddress:   addressFromDomain(aggregate.PickupAddress()),
		DeliveryAddress: addressFromDomain(aggregate.DeliveryAddress()),
		Status:          int(aggregate.Status()),
		AssignedAt:      aggregate.AssignedAt(),
		PickedUpAt:      aggregate.PickedUpAt(),
		InTransitAt:     aggregate.InTransitAt(),
		DeliveredAt:     aggregate.DeliveredAt(),
		CreatedAt:       aggregate.CreatedAt(),
		Version:         aggregate.Version(),
	}

	if driver := aggregate.Driver(); driver != nil {
		dto.DriverName = ptr(driver.Name())
		dto.DriverPhone = ptr(driver.Phone())
		dto.DriverEmail = optionalPtr(driver.Email())
		dto.VehicleType = optionalPtr(driver.VehicleType())
		dto.PlateNumber = optionalPtr(driver.PlateNumber())
	}

	if courier := aggregate.Courier(); courier != nil {
		dto.ExternalOrderID = ptr(courier.ExternalOrderID())
		dto.ExternalQuotationID = optionalPtr(courier.QuotationID())
		dto.TrackingURL = optionalPtr(courier.TrackingURL())
		dto.LastRawStatus = optionalPtr(courier.LastRawStatus())
	}

	return dto
}

// toDomain converts a database row to a delivery aggregate using
// RestoreDelivery.
func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	buyerID, err := kernel.UUIDFromBytes(dto.BuyerID[:])
	if err != nil {
		return nil, err
	}

	sellerID, err := kernel.UUIDFromBytes(dto.SellerID[:])
	if err != nil {
		return nil, err
	}

	pickupAddress, err := addressToDomain(dto.PickupAddress)
	if err != nil {
		return nil, err
	}

	deliveryAddress, err := addressToDomain(dto.DeliveryAddress)
	if err != nil {
		return nil, err
	}

	var driver *delivery.Driver
	if dto.DriverName != nil && dto.DriverPhone != nil {
		restored, driverErr := delivery.NewDriver(
			*dto.DriverName,
			*dto.DriverPhone,
			deref(dto.DriverEmail),
			deref(dto.VehicleType),
			deref(dto.PlateNumber),
		)
		if driverErr != nil {
			return nil, driverErr
		}
		driver = &restored
	}

	var courier *delivery.CourierLink
	if dto.ExternalOrderID != nil {
		restored, linkErr := delivery.RestoreCourierLink(
			*dto.ExternalOrderID,
			deref(dto.ExternalQuotationID),
			deref(dto.TrackingURL),
			deref(dto.LastRawStatus),
		)
		if linkErr != nil {
			return nil, linkErr
		}
		courier = &restored
	}

	return delivery.RestoreDelivery(
		id, orderID, dto.TrackingNumber,
		buyerID, sellerID,
		pickupAddress, deliveryAddress,
		delivery.Status(dto.Status),
		driver, courier,
		dto.AssignedAt, dto.PickedUpAt, dto.InTransitAt, dto.DeliveredAt,
		dto.CreatedAt,
		dto.Version,
	)
}

func addressFromDomain(addr kernel.Address) AddressDTO {
	dto := AddressDTO{
		Line:     addr.Line(),
		City:     addr.City(),
		Province: addr.Province(),
		Region:   addr.Region(),
	}

	if point := addr.Point(); point != nil {
		dto.Lat = ptr(point.Lat())
		dto.Lon = ptr(point.Lon())
	}

	return dto
}

func addressToDomain(dto AddressDTO) (kernel.Address, error) {
	addr, err := kernel.NewAddress(dto.Line, dto.City, dto.Province, dto.Region)
	if err != nil {
		return kernel.Address{}, err
	}

	if dto.Lat != nil && dto.Lon != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.Lat, *dto.Lon)
		if pointErr != nil {
			return kernel.Address{}, pointErr
		}
		return addr.WithPoint(point)
	}

	return addr, nil
}

func ptr[T any](v T) *T {
	return &v
}

func optionalPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
