package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// TrackDeliveryQueryHandler serves the public tracking endpoint from a raw
// SQL projection of the deliveries table.
type TrackDeliveryQueryHandler struct {
	db *gorm.DB
}

// NewTrackDeliveryQueryHandler creates a handler for public delivery tracking.
func NewTrackDeliveryQueryHandler(db *gorm.DB) TrackDeliveryQueryHandler {
	return TrackDeliveryQueryHandler{db: db}
}

// Handle looks the delivery up by tracking number and returns its redacted
// view. Fails with errs.ErrObjectNotFound for an unknown tracking number.
func (h TrackDeliveryQueryHandler) Handle(
	ctx context.Context,
	query TrackDeliveryQuery,
) (TrackDeliveryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return TrackDeliveryQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			tracking_number,
			status,
			delivery_city,
			driver_name,
			driver_phone,
			tracking_url,
			created_at,
			assigned_at,
			picked_up_at,
			in_transit_at,
			delivered_at
		FROM deliveries
		WHERE tracking_number = ?
	`, query.TrackingNumber()).Row()

	var (
		resp        TrackDeliveryQueryResponse
		status      int
		driverName  sql.NullString
		driverPhone sql.NullString
		trackingURL sql.NullString
		assignedAt  sql.NullTime
		pickedUpAt  sql.NullTime
		inTransitAt sql.NullTime
		deliveredAt sql.NullTime
	)

	err := row.Scan(
		&resp.TrackingNumber,
		&status,
		&resp.DestinationCity,
		&driverName,
		&driverPhone,
		&trackingURL,
		&resp.CreatedAt,
		&assignedAt,
		&pickedUpAt,
		&inTransitAt,
		&deliveredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return TrackDeliveryQueryResponse{}, errs.NewObjectNotFoundError(
			"tracking number", query.TrackingNumber())
	}
	if err != nil {
		return TrackDeliveryQueryResponse{}, err
	}

	resp.Status = delivery.Status(status).String()
	resp.DriverName = driverName.String
	resp.DriverPhone = driverPhone.String
	resp.TrackingURL = trackingURL.String
	resp.AssignedAt = nullTimePtr(assignedAt)
	resp.PickedUpAt = nullTimePtr(pickedUpAt)
	resp.InTransitAt = nullTimePtr(inTransitAt)
	resp.DeliveredAt = nullTimePtr(deliveredAt)

	return resp, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
