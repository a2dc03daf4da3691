package jobs

import (
	"fmt"
)

// JobManager coordinates the scheduled jobs of the service behind a unified
// start/stop interface.
type JobManager struct {
	pollerJob *ReconciliationPollerJob
	retryJob  *ReconciliationRetryJob
}

// NewJobManager creates a job manager over the given jobs.
func NewJobManager(pollerJob *ReconciliationPollerJob, retryJob *ReconciliationRetryJob) *JobManager {
	return &JobManager{
		pollerJob: pollerJob,
		retryJob:  retryJob,
	}
}

// StartAll starts all scheduled jobs. If a later job fails to start, the
// already running ones are stopped again.
func (jm *JobManager) StartAll() error {
	if err := jm.pollerJob.Start(); err != nil {
		return fmt.Errorf("failed to start reconciliation poller: %w", err)
	}

	if err := jm.retryJob.Start(); err != nil {
		jm.pollerJob.Stop()
		return fmt.Errorf("failed to start reconciliation retry job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs.
func (jm *JobManager) StopAll() {
	jm.retryJob.Stop()
	jm.pollerJob.Stop()
}
