package queries

import (
	"context"
	"database/sql"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetUserDeliveriesQueryHandler lists a party's deliveries from a raw SQL
// projection of the deliveries table.
type GetUserDeliveriesQueryHandler struct {
	db *gorm.DB
}

// NewGetUserDeliveriesQueryHandler creates a handler for user delivery listings.
func NewGetUserDeliveriesQueryHandler(db *gorm.DB) GetUserDeliveriesQueryHandler {
	return GetUserDeliveriesQueryHandler{db: db}
}

// Handle returns the user's deliveries, buyer-side and seller-side alike,
// newest first. An empty slice means the user has none.
func (h GetUserDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query GetUserDeliveriesQuery,
) ([]GetUserDeliveriesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	userID := query.UserID().Bytes()

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			tracking_number,
			status,
			buyer_id,
			pickup_city,
			delivery_city,
			driver_name,
			tracking_url,
			created_at,
			delivered_at
		FROM deliveries
		WHERE buyer_id = ? OR seller_id = ?
		ORDER BY created_at DESC
	`, userID, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliveries := make([]GetUserDeliveriesQueryResponse, 0)

	for rows.Next() {
		var (
			resp        GetUserDeliveriesQueryResponse
			id          uuid.UUID
			orderID     uuid.UUID
			status      int
			buyerID     uuid.UUID
			driverName  sql.NullString
			trackingURL sql.NullString
			deliveredAt sql.NullTime
		)

		err = rows.Scan(
			&id,
			&orderID,
			&resp.TrackingNumber,
			&status,
			&buyerID,
			&resp.PickupCity,
			&resp.DeliveryCity,
			&driverName,
			&trackingURL,
			&resp.CreatedAt,
			&deliveredAt,
		)
		if err != nil {
			return nil, err
		}

		resp.ID, err = kernel.UUIDFromBytes(id[:])
		if err != nil {
			return nil, err
		}

		resp.OrderID, err = kernel.UUIDFromBytes(orderID[:])
		if err != nil {
			return nil, err
		}

		resp.Status = delivery.Status(status).String()
		resp.Role = "seller"
		if buyerID == query.UserID().Bytes() {
			resp.Role = "buyer"
		}
		resp.DriverName = driverName.String
		resp.TrackingURL = trackingURL.String
		resp.DeliveredAt = nullTimePtr(deliveredAt)

		deliveries = append(deliveries, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return deliveries, nil
}
