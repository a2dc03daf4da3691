// Package jobs provides the scheduled background tasks of the fulfillment
// service, built on github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. ReconciliationPollerJob - Polls the courier for every delivery with an
// active courier order and folds the reported status into the state machine.
// The poller is the safety net behind webhooks: a missed or dropped webhook
// is caught on the next poll.
//
// 2. ReconciliationRetryJob - Drains the retry queue of webhook observations
// whose first reconciliation attempt failed. The webhook receiver always
// acknowledges receipt to the courier; failures land here instead of in a
// courier-side redelivery loop.
//
// Jobs are managed through JobManager:
//
//	jobManager := jobs.NewJobManager(pollerJob, retryJob)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
package jobs
