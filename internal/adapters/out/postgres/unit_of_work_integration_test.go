package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	postgres_adapter "parcelbot/internal/adapters/out/postgres"
	"parcelbot/internal/core/application/usecases/commands"
	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/order"
	"parcelbot/internal/core/domain/model/payment"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/core/domain/services"
	"parcelbot/internal/core/ports"
	"parcelbot/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite exercises the GORM unit of work against a
// real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, payments").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")
	suite.NotNil(uow1.OrderRepository())
	suite.NotNil(uow1.PaymentRepository())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "second Begin is a no-op")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_MultiRepositoryCommit() {
	ctx := context.Background()
	o := createTestOrder(suite)
	p := createTestPayment(suite, o.ID())

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.PaymentRepository().Add(ctx, p))
	suite.Require().NoError(uow.Commit(ctx))

	reader := suite.factory.Create()
	_, err := reader.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	_, err = reader.PaymentRepository().Get(ctx, p.ID())
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionRollback() {
	ctx := context.Background()
	o := createTestOrder(suite)
	p := createTestPayment(suite, o.ID())

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.PaymentRepository().Add(ctx, p))

	_, err := uow.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err, "order is visible inside its transaction")

	suite.Require().NoError(uow.Rollback(ctx))

	reader := suite.factory.Create()
	_, err = reader.OrderRepository().Get(ctx, o.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound, "Order should not exist after rollback")
	_, err = reader.PaymentRepository().Get(ctx, p.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound, "Payment should not exist after rollback")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_UncommittedWritesAreIsolated() {
	ctx := context.Background()
	o := createTestOrder(suite)

	writer := suite.factory.Create()
	suite.Require().NoError(writer.Begin(ctx))
	defer func() {
		_ = writer.Rollback(ctx)
	}()
	suite.Require().NoError(writer.OrderRepository().Add(ctx, o))

	_, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

// TestUnitOfWork_ConfirmPaymentWorkflow runs a paid upgrade from reservation
// to confirmation through the real command handler.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_ConfirmPaymentWorkflow() {
	ctx := context.Background()
	o := createTestOrder(suite)
	p := createTestPayment(suite, o.ID())
	suite.Require().NoError(p.AttachCharge("ch_1"))

	seed := suite.factory.Create()
	suite.Require().NoError(seed.Begin(ctx))
	suite.Require().NoError(seed.OrderRepository().Add(ctx, o))
	suite.Require().NoError(seed.PaymentRepository().Add(ctx, p))
	suite.Require().NoError(seed.Commit(ctx))

	handler := suite.confirmHandler()
	cmd, err := commands.NewConfirmPaymentCommand("ch_1")
	suite.Require().NoError(err)

	res, err := handler.Handle(ctx, cmd)
	suite.Require().NoError(err)
	suite.False(res.AlreadyConfirmed)

	replay, err := handler.Handle(ctx, cmd)
	suite.Require().NoError(err)
	suite.True(replay.AlreadyConfirmed)

	reader := suite.factory.Create()
	stored, err := reader.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(tier.Timeslot, stored.Tier())
	suite.True(stored.AwaitingSlot())
	suite.Equal(int64(1), stored.Version(), "replay must not write the order again")

	storedPayment, err := reader.PaymentRepository().Get(ctx, p.ID())
	suite.Require().NoError(err)
	suite.Equal(payment.Confirmed, storedPayment.Status())
}

// TestUnitOfWork_ConfirmPaymentConflictRollsBackPayment checks that a lost
// order race leaves the payment pending.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_ConfirmPaymentConflictRollsBackPayment() {
	ctx := context.Background()
	o := createTestOrder(suite)
	p := createTestPayment(suite, o.ID())
	suite.Require().NoError(p.AttachCharge("ch_1"))

	seed := suite.factory.Create()
	suite.Require().NoError(seed.Begin(ctx))
	suite.Require().NoError(seed.OrderRepository().Add(ctx, o))
	suite.Require().NoError(seed.PaymentRepository().Add(ctx, p))
	suite.Require().NoError(seed.Commit(ctx))

	// another writer holds a row lock on the order until it commits
	blocker := suite.factory.Create()
	suite.Require().NoError(blocker.Begin(ctx))
	next, err := o.Apply(order.ConsumeReschedule{})
	suite.Require().NoError(err)
	suite.Require().NoError(blocker.OrderRepository().CompareAndSet(ctx, o.ID(), 0, next))

	done := make(chan error, 1)
	go func() {
		cmd, cmdErr := commands.NewConfirmPaymentCommand("ch_1")
		if cmdErr != nil {
			done <- cmdErr
			return
		}
		_, handleErr := suite.confirmHandler().Handle(ctx, cmd)
		done <- handleErr
	}()

	time.Sleep(200 * time.Millisecond)
	suite.Require().NoError(blocker.Commit(ctx))

	suite.Require().ErrorIs(<-done, errs.ErrVersionIsInvalid)

	storedPayment, err := suite.factory.Create().PaymentRepository().Get(ctx, p.ID())
	suite.Require().NoError(err)
	suite.Equal(payment.Pending, storedPayment.Status())
}

// TestUnitOfWork_StaleExpiryAfterConfirmation checks that an expiry working
// from a snapshot taken before a confirmation cannot overwrite it, so a
// replayed confirmation never tops up a second time.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_StaleExpiryAfterConfirmation() {
	ctx := context.Background()
	o, err := createTestOrder(suite).Apply(order.ConsumeReschedule{})
	suite.Require().NoError(err)
	p, err := payment.NewTopUpPayment(kernel.NewUUID(), o.ID(), 200, "SGD", time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(p.AttachCharge("ch_1"))

	seed := suite.factory.Create()
	suite.Require().NoError(seed.Begin(ctx))
	suite.Require().NoError(seed.OrderRepository().Add(ctx, o))
	suite.Require().NoError(seed.PaymentRepository().Add(ctx, p))
	suite.Require().NoError(seed.Commit(ctx))

	expiry := suite.factory.Create()
	suite.Require().NoError(expiry.Begin(ctx))
	defer func() {
		_ = expiry.Rollback(ctx)
	}()
	overdue, err := expiry.PaymentRepository().GetPendingCreatedBefore(ctx, time.Now().Add(time.Minute), 10)
	suite.Require().NoError(err)
	suite.Require().Len(overdue, 1)

	handler := suite.confirmHandler()
	cmd, err := commands.NewConfirmPaymentCommand("ch_1")
	suite.Require().NoError(err)
	_, err = handler.Handle(ctx, cmd)
	suite.Require().NoError(err)

	expired, err := overdue[0].Expire(time.Now().Add(time.Hour), time.Minute)
	suite.Require().NoError(err)
	suite.Require().True(expired)
	suite.Require().ErrorIs(expiry.PaymentRepository().Update(ctx, overdue[0]), errs.ErrVersionIsInvalid)
	suite.Require().NoError(expiry.Commit(ctx))

	reader := suite.factory.Create()
	topped, err := reader.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	spent, err := topped.Apply(order.ConsumeReschedule{})
	suite.Require().NoError(err)
	suite.Require().NoError(reader.OrderRepository().CompareAndSet(ctx, o.ID(), topped.Version(), spent))

	replay, err := handler.Handle(ctx, cmd)
	suite.Require().NoError(err)
	suite.True(replay.AlreadyConfirmed)

	stored, err := reader.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(spent.ReschedulesRemaining(), stored.ReschedulesRemaining())
	storedPayment, err := reader.PaymentRepository().Get(ctx, p.ID())
	suite.Require().NoError(err)
	suite.Equal(payment.Confirmed, storedPayment.Status())
}

func (suite *UnitOfWorkIntegrationTestSuite) confirmHandler() commands.ConfirmPaymentCommandHandler {
	upgrader, err := services.NewTierUpgrader(tier.DefaultCatalog())
	suite.Require().NoError(err)
	return commands.NewConfirmPaymentCommandHandler(
		uowFactory{suite.factory},
		upgrader,
		services.NewRescheduleQuota(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

type uowFactory struct{ f ports.UnitOfWorkFactory }

func (u uowFactory) Create() commands.UoW { return u.f.Create() }

func createTestOrder(suite *UnitOfWorkIntegrationTestSuite) order.Order {
	o, err := order.NewOrder(
		kernel.MustOrderID("NVSG0001"),
		tier.Standard,
		kernel.MustDate(2024, time.January, 1),
		kernel.MustDate(2024, time.January, 5),
		kernel.Slot{},
	)
	suite.Require().NoError(err)
	return o
}

func createTestPayment(suite *UnitOfWorkIntegrationTestSuite, orderID kernel.OrderID) *payment.Payment {
	p, err := payment.NewTierUpgradePayment(kernel.NewUUID(), orderID, tier.Timeslot, 500, "SGD", time.Now())
	suite.Require().NoError(err)
	return p
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
