package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parcelbot/cmd"
	httpin "parcelbot/internal/adapters/in/http"
	kafkain "parcelbot/internal/adapters/in/kafka"
	"parcelbot/internal/adapters/out/paymentgw"
	"parcelbot/internal/adapters/out/postgres"
	"parcelbot/internal/jobs"
	"parcelbot/internal/pkg/metrics"

	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config, err := cmd.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger := cmd.NewLogger(os.Stdout, config.LogLevel)
	if err = run(config, logger); err != nil {
		logger.Error("parcelbot stopped", "error", err)
		os.Exit(1)
	}
}

func run(config cmd.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := gorm.Open(gormpostgres.Open(config.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err = postgres.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	producer, err := paymentgw.NewSyncProducer(config.KafkaBrokers)
	if err != nil {
		return fmt.Errorf("create charge producer: %w", err)
	}
	defer producer.Close()

	m := metrics.New()
	app, err := cmd.NewCompositionRoot(config, gormDB, producer, m, logger)
	if err != nil {
		return err
	}

	expiryJob := jobs.NewPaymentExpiryJob(
		app.CreateExpirePendingPaymentsCommandHandler(), m.ExpiredPayments, config.PaymentExpirySchedule, logger,
	)
	jobManager := jobs.NewJobManager(expiryJob)
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	consumer, err := startConsumer(ctx, app, config, m, logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	return startWebServer(ctx, app, config, m, logger)
}

func startConsumer(
	ctx context.Context,
	app cmd.CompositionRoot,
	config cmd.Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*kafkain.Consumer, error) {
	group, err := kafkain.NewConsumerGroup(config.KafkaBrokers, config.KafkaConsumerGroup)
	if err != nil {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	consumer := kafkain.NewConsumer(
		group,
		config.KafkaPaymentEventsTopic,
		app.CreateConfirmPaymentCommandHandler(),
		app.CreateFailPaymentCommandHandler(),
		m,
		kafkain.DefaultRetryPolicy,
		logger,
	)
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("payment events consumer stopped", "error", err)
		}
	}()
	return consumer, nil
}

func startWebServer(
	ctx context.Context,
	app cmd.CompositionRoot,
	config cmd.Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) error {
	doc, err := httpin.LoadOpenAPI(ctx)
	if err != nil {
		return err
	}

	server := httpin.NewServer(httpin.Handlers{
		RegisterOrder:     app.CreateRegisterOrderCommandHandler(),
		RescheduleOrder:   app.CreateRescheduleOrderCommandHandler(),
		UpgradeTier:       app.CreateUpgradeTierCommandHandler(),
		TopUpReschedules:  app.CreateTopUpReschedulesCommandHandler(),
		ConfirmPayment:    app.CreateConfirmPaymentCommandHandler(),
		FailPayment:       app.CreateFailPaymentCommandHandler(),
		GetOrder:          app.CreateGetOrderQueryHandler(),
		GetUpgradeOptions: app.CreateGetUpgradeOptionsQueryHandler(),
		GetPayment:        app.CreateGetPaymentQueryHandler(),
		ListTiers:         app.CreateListTiersQueryHandler(),
	}, config.WebhookSecret, m, logger)

	e, err := httpin.NewEcho(server, doc, m, m.Handler(), logger)
	if err != nil {
		return err
	}
	e.Logger.SetLevel(cmd.EchoLogLevel(config.LogLevel))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "port", config.HTTPPort)
		errCh <- e.Start(fmt.Sprintf("0.0.0.0:%s", config.HTTPPort))
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
