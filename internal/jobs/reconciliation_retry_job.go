package jobs

import (
	"context"
	"errors"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

// ReconciliationRetryJob drains the retry queue every ten seconds, replaying
// webhook observations whose first reconciliation attempt failed.
type ReconciliationRetryJob struct {
	queue   *RetryQueue
	handler commands.ReconcileCourierStatusCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewReconciliationRetryJob creates a job that replays failed reconciliations.
func NewReconciliationRetryJob(
	queue *RetryQueue,
	handler commands.ReconcileCourierStatusCommandHandler,
	logger *slog.Logger,
) *ReconciliationRetryJob {
	return &ReconciliationRetryJob{
		queue:   queue,
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "reconciliation_retry_job"),
	}
}

// Start schedules the drain to run every ten seconds.
func (j *ReconciliationRetryJob) Start() error {
	_, err := j.cron.AddFunc("*/10 * * * * *", func() {
		j.drainOnce(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Reconciliation retry job started (running every 10s)")
	return nil
}

// Stop stops the retry job.
func (j *ReconciliationRetryJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Reconciliation retry job stopped")
}

func (j *ReconciliationRetryJob) drainOnce(ctx context.Context) {
	for _, entry := range j.queue.drain() {
		_, err := j.handler.Handle(ctx, entry.command)
		if err == nil {
			continue
		}

		// The delivery disappearing means the observation can never apply;
		// drop it instead of cycling it through the queue.
		if errors.Is(err, errs.ErrObjectNotFound) {
			j.logger.WarnContext(ctx, "dropping reconciliation for unknown courier order",
				"external_order_id", entry.command.ExternalOrderID(),
				"error", err)
			continue
		}

		if kept := j.queue.requeue(entry); !kept {
			j.logger.ErrorContext(ctx, "reconciliation retry budget exhausted",
				"external_order_id", entry.command.ExternalOrderID(),
				"raw_status", entry.command.RawStatus(),
				"error", err)
			continue
		}

		j.logger.WarnContext(ctx, "reconciliation retry failed, requeued",
			"external_order_id", entry.command.ExternalOrderID(),
			"error", err)
	}
}
