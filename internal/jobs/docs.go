// Package jobs provides scheduled background tasks for parcelbot.
//
// Jobs are cron-based, using github.com/robfig/cron/v3 with a seconds field.
//
// # Available Jobs
//
// 1. PaymentExpiryJob - gives up on pending payments whose gateway outcome
// never arrived within the configured time-to-live
//
// # Usage
//
//	expiry := jobs.NewPaymentExpiryJob(expireHandler, m.ExpiredPayments, "", logger)
//	jobManager := jobs.NewJobManager(expiry)
//
//	if err := jobManager.StartAll(); err != nil {
//		return fmt.Errorf("start jobs: %w", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The expiry job runs every 30 seconds by default. A run that is still
// draining batches when the next tick fires makes the tick a no-op.
//
// # Error Handling
//
// Errors are logged and the run is abandoned; the next tick picks up the
// remaining payments. Failed job starts stop any already running jobs.
package jobs
