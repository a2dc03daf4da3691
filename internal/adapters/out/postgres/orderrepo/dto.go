// Package orderrepo provides data transfer objects and mapping functions for
// the orchestrator's view of marketplace orders. Only the columns the
// delivery lifecycle needs are mapped; the commerce module owns the rest of
// the orders table.
package orderrepo

import (
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the orchestrator-visible columns of the orders table.
type OrderDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuyerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	SellerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Subtotal float64   `gorm:"type:numeric(12,2);not null"`
	Status   int       `gorm:"type:int;not null;index"`
}

// TableName overrides GORM's default naming to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	return OrderDTO{
		ID:       aggregate.ID().Bytes(),
		BuyerID:  aggregate.BuyerID().Bytes(),
		SellerID: aggregate.SellerID().Bytes(),
		Subtotal: aggregate.Subtotal(),
		Status:   int(aggregate.Status()),
	}
}

// toDomain converts a database row to an order aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
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

	return order.RestoreOrder(id, buyerID, sellerID, dto.Subtotal, order.Status(dto.Status))
}
