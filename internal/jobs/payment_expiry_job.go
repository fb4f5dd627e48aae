package jobs

import (
	"context"
	"log/slog"
	"time"

	"parcelbot/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultExpirySchedule runs the expiry every 30 seconds.
const DefaultExpirySchedule = "*/30 * * * * *"

// maxBatchesPerRun stops one run from holding the job forever when payments
// keep expiring faster than they are drained.
const maxBatchesPerRun = 10

type expirePendingPaymentsHandler interface {
	Handle(ctx context.Context, cmd commands.ExpirePendingPaymentsCommand) (int, error)
}

type expiredCounter interface {
	Add(float64)
}

// PaymentExpiryJob gives up on pending payments whose outcome never arrived
// within the time-to-live.
type PaymentExpiryJob struct {
	handler  expirePendingPaymentsHandler
	expired  expiredCounter
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewPaymentExpiryJob creates the job. An empty schedule means
// DefaultExpirySchedule; expired may be nil.
func NewPaymentExpiryJob(
	handler expirePendingPaymentsHandler,
	expired expiredCounter,
	schedule string,
	logger *slog.Logger,
) *PaymentExpiryJob {
	if schedule == "" {
		schedule = DefaultExpirySchedule
	}
	return &PaymentExpiryJob{
		handler:  handler,
		expired:  expired,
		schedule: schedule,
		timeout:  20 * time.Second,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "payment_expiry_job"),
	}
}

// Start schedules the job.
func (j *PaymentExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Payment expiry job started", "schedule", j.schedule)
	return nil
}

// Run expires overdue payments batch by batch until a batch comes back short.
func (j *PaymentExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	total := 0
	for range maxBatchesPerRun {
		n, err := j.handler.Handle(ctx, commands.NewExpirePendingPaymentsCommand())
		total += n
		if err != nil {
			j.logger.ErrorContext(ctx, "Payment expiry job failed", "error", err, "expired", total)
			break
		}
		if n < commands.ExpireBatchSize {
			break
		}
	}

	if total == 0 {
		return
	}
	if j.expired != nil {
		j.expired.Add(float64(total))
	}
	j.logger.InfoContext(ctx, "Expired pending payments", "count", total)
}

// Stop stops scheduling and waits for a running expiry to finish.
func (j *PaymentExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Payment expiry job stopped")
}
