// Package jobs provides scheduled background tasks for the marketplace.
//
// Jobs are cron-based (github.com/robfig/cron/v3, six-field expressions with
// seconds) and are started and stopped through JobManager:
//
//	jobManager := jobs.NewJobManager(tenderHandler, dispatcher, jobs.DefaultSchedules(), m, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Available Jobs
//
// 1. TenderDeadlineJob closes open tenders once their submission deadline passes.
// 2. OutboxRedeliveryJob publishes outbox events that are still unpublished
// after a grace period, in commit order.
//
// Each run increments freight_job_runs_total with the job name and result.
// A failed run is logged and retried on the next tick.
package jobs
