package jobs

import (
	"context"
	"errors"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

// ReconciliationPollerJob polls the courier every thirty seconds for the
// current state of every delivery with an active courier order. Webhooks are
// the fast path; the poller guarantees that a dropped webhook only delays a
// status change instead of losing it. Driver details are picked up along the
// way, since couriers assign and reassign drivers without a webhook.
type ReconciliationPollerJob struct {
	deliveries   ports.DeliveryRepository
	courier      ports.CourierClient
	reconcile    commands.ReconcileCourierStatusCommandHandler
	recordDriver commands.RecordCourierDriverCommandHandler
	cron         *cron.Cron
	logger       *slog.Logger
}

// NewReconciliationPollerJob creates the courier polling job.
func NewReconciliationPollerJob(
	deliveries ports.DeliveryRepository,
	courier ports.CourierClient,
	reconcile commands.ReconcileCourierStatusCommandHandler,
	recordDriver commands.RecordCourierDriverCommandHandler,
	logger *slog.Logger,
) *ReconciliationPollerJob {
	return &ReconciliationPollerJob{
		deliveries:   deliveries,
		courier:      courier,
		reconcile:    reconcile,
		recordDriver: recordDriver,
		cron:         cron.New(cron.WithSeconds()),
		logger:       logger.With("component", "reconciliation_poller_job"),
	}
}

// Start schedules the poll to run every thirty seconds.
func (j *ReconciliationPollerJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		j.pollOnce(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Reconciliation poller started (running every 30s)")
	return nil
}

// Stop stops the polling job.
func (j *ReconciliationPollerJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Reconciliation poller stopped")
}

// pollOnce works through every active courier order. Failures are per-order:
// one courier hiccup must not starve the rest of the set.
func (j *ReconciliationPollerJob) pollOnce(ctx context.Context) {
	active, err := j.deliveries.GetAllWithActiveCourierOrders(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "failed to list active courier orders", "error", err)
		return
	}

	for _, aggregate := range active {
		j.pollDelivery(ctx, aggregate)
	}
}

func (j *ReconciliationPollerJob) pollDelivery(ctx context.Context, aggregate *delivery.Delivery) {
	externalOrderID := aggregate.Courier().ExternalOrderID()

	details, err := j.courier.GetOrderDetails(ctx, externalOrderID)
	if err != nil {
		j.logger.WarnContext(ctx, "courier order lookup failed",
			"external_order_id", externalOrderID,
			"error", err)
		return
	}

	cmd, err := commands.NewReconcileCourierStatusCommand(externalOrderID, details.Status, details.RawStatus)
	if err != nil {
		j.logger.ErrorContext(ctx, "failed to build reconciliation command",
			"external_order_id", externalOrderID,
			"error", err)
		return
	}

	changed, err := j.reconcile.Handle(ctx, cmd)
	if err != nil {
		// Version conflicts mean a webhook won the race for this delivery;
		// the next poll sees the settled state.
		if errors.Is(err, errs.ErrVersionIsInvalid) {
			return
		}

		j.logger.ErrorContext(ctx, "reconciliation failed",
			"external_order_id", externalOrderID,
			"error", err)
		return
	}

	if changed {
		j.logger.InfoContext(ctx, "delivery reconciled from poll",
			"external_order_id", externalOrderID,
			"raw_status", details.RawStatus)
	}

	j.recordDriverDetails(ctx, aggregate, details)
}

// recordDriverDetails stores the driver working the order when the courier
// reports one and the delivery has none yet, or reports a different driver.
func (j *ReconciliationPollerJob) recordDriverDetails(
	ctx context.Context, aggregate *delivery.Delivery, details ports.CourierOrderDetails,
) {
	if details.DriverID == "" {
		return
	}

	driverDetails, err := j.courier.GetDriverDetails(ctx, details.OrderID, details.DriverID)
	if err != nil {
		j.logger.WarnContext(ctx, "courier driver lookup failed",
			"external_order_id", details.OrderID,
			"driver_id", details.DriverID,
			"error", err)
		return
	}

	if current := aggregate.Driver(); current != nil &&
		current.Name() == driverDetails.Name && current.Phone() == driverDetails.Phone {
		return
	}

	driver, err := delivery.NewDriver(driverDetails.Name, driverDetails.Phone, "", "", driverDetails.PlateNumber)
	if err != nil {
		j.logger.WarnContext(ctx, "courier returned unusable driver details",
			"external_order_id", details.OrderID,
			"error", err)
		return
	}

	cmd, err := commands.NewRecordCourierDriverCommand(details.OrderID, driver)
	if err != nil {
		j.logger.ErrorContext(ctx, "failed to build driver record command",
			"external_order_id", details.OrderID,
			"error", err)
		return
	}

	if err = j.recordDriver.Handle(ctx, cmd); err != nil {
		j.logger.WarnContext(ctx, "failed to record courier driver",
			"external_order_id", details.OrderID,
			"error", err)
	}
}
