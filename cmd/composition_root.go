package cmd

import (
	"fmt"
	"log/slog"

	"parcelbot/internal/adapters/out/clock"
	"parcelbot/internal/adapters/out/paymentgw"
	"parcelbot/internal/adapters/out/postgres"
	"parcelbot/internal/core/application/usecases/commands"
	"parcelbot/internal/core/application/usecases/queries"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/core/domain/services"
	"parcelbot/internal/core/ports"
	"parcelbot/internal/pkg/metrics"

	"github.com/IBM/sarama"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	metrics    *metrics.Metrics
	logger     *slog.Logger

	catalog     *tier.Catalog
	policy      services.SchedulingPolicy
	upgrader    services.TierUpgrader
	quota       services.RescheduleQuota
	rescheduler services.Rescheduler
	clock       ports.Clock
	gateway     ports.PaymentGateway
}

// NewCompositionRoot builds the domain services from the configured price
// table and wraps the charge producer into the retrying payment gateway.
func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	producer sarama.SyncProducer,
	m *metrics.Metrics,
	logger *slog.Logger,
) (CompositionRoot, error) {
	prices, err := tier.ParsePrices(config.TierPrices)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("tier prices: %w", err)
	}
	catalog, err := tier.NewCatalog(prices, config.Currency, config.TopUpPrice)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("tier catalog: %w", err)
	}
	policy, err := services.NewSchedulingPolicy(catalog)
	if err != nil {
		return CompositionRoot{}, err
	}
	upgrader, err := services.NewTierUpgrader(catalog)
	if err != nil {
		return CompositionRoot{}, err
	}
	systemClock, err := clock.NewSystemClock(config.Timezone)
	if err != nil {
		return CompositionRoot{}, err
	}
	quota := services.NewRescheduleQuota()

	gateway := paymentgw.NewRetryingGateway(
		paymentgw.NewKafkaGateway(producer, config.KafkaPaymentChargesTopic),
		logger,
		m.GatewayRetries,
		paymentgw.RetryConfig{
			MaxAttempts: config.GatewayMaxAttempts,
			BaseDelay:   config.GatewayBaseDelay,
			MaxDelay:    config.GatewayMaxDelay,
		},
	)

	return CompositionRoot{
		config:      config,
		gormDB:      gormDB,
		uowFactory:  *postgres.NewGormUnitOfWorkFactory(gormDB),
		metrics:     m,
		logger:      logger,
		catalog:     catalog,
		policy:      policy,
		upgrader:    upgrader,
		quota:       quota,
		rescheduler: services.NewRescheduler(policy, quota),
		clock:       systemClock,
		gateway:     gateway,
	}, nil
}

func (c *CompositionRoot) Metrics() *metrics.Metrics {
	return c.metrics
}

func (c *CompositionRoot) CreateRegisterOrderCommandHandler() commands.RegisterOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRegisterOrderCommandHandler(f, c.policy)
}

func (c *CompositionRoot) CreateRescheduleOrderCommandHandler() commands.RescheduleOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRescheduleOrderCommandHandler(f, c.rescheduler, c.clock, c.logger)
}

func (c *CompositionRoot) CreateUpgradeTierCommandHandler() commands.UpgradeTierCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpgradeTierCommandHandler(
		f, c.upgrader, c.catalog, c.gateway, c.clock, c.config.CheckoutURLTemplate, c.logger,
	)
}

func (c *CompositionRoot) CreateTopUpReschedulesCommandHandler() commands.TopUpReschedulesCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewTopUpReschedulesCommandHandler(
		f, c.catalog, c.gateway, c.clock, c.config.CheckoutURLTemplate, c.logger,
	)
}

func (c *CompositionRoot) CreateConfirmPaymentCommandHandler() commands.ConfirmPaymentCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewConfirmPaymentCommandHandler(f, c.upgrader, c.quota, c.logger)
}

func (c *CompositionRoot) CreateFailPaymentCommandHandler() commands.FailPaymentCommandHandler {
	var f commands.PaymentUoWFactory = FuncPaymentUoWFactory(func() commands.PaymentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewFailPaymentCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateExpirePendingPaymentsCommandHandler() commands.ExpirePendingPaymentsCommandHandler {
	var f commands.PaymentUoWFactory = FuncPaymentUoWFactory(func() commands.PaymentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewExpirePendingPaymentsCommandHandler(f, c.clock, c.config.PaymentPendingTTL)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB, c.policy, c.clock)
}

func (c *CompositionRoot) CreateGetUpgradeOptionsQueryHandler() queries.GetUpgradeOptionsQueryHandler {
	return queries.NewGetUpgradeOptionsQueryHandler(c.gormDB, c.upgrader, c.catalog.Currency())
}

func (c *CompositionRoot) CreateGetPaymentQueryHandler() queries.GetPaymentQueryHandler {
	return queries.NewGetPaymentQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListTiersQueryHandler() queries.ListTiersQueryHandler {
	return queries.NewListTiersQueryHandler(c.catalog)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncPaymentUoWFactory func() commands.PaymentUoW

func (f FuncPaymentUoWFactory) Create() commands.PaymentUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
