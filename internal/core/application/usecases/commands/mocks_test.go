package commands_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"parcelbot/internal/core/application/usecases/commands"
	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/order"
	"parcelbot/internal/core/domain/model/payment"
	"parcelbot/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.OrderID) (order.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *MockOrderRepository) CompareAndSet(ctx context.Context, id kernel.OrderID, expected int64, o order.Order) error {
	args := m.Called(ctx, id, expected, o)
	return args.Error(0)
}

type MockPaymentRepository struct{ mock.Mock }

func (m *MockPaymentRepository) Add(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) Get(ctx context.Context, id kernel.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByChargeReference(ctx context.Context, ref string) (*payment.Payment, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetPendingCreatedBefore(
	ctx context.Context,
	before time.Time,
	limit int,
) ([]*payment.Payment, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

type MockUoW struct {
	mock.Mock
	orders   *MockOrderRepository
	payments *MockPaymentRepository
}

func newMockUoW() *MockUoW {
	uow := &MockUoW{orders: new(MockOrderRepository), payments: new(MockPaymentRepository)}
	uow.On("Rollback", mock.Anything).Return(nil).Maybe()
	return uow
}

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	return m.orders
}

func (m *MockUoW) PaymentRepository() ports.PaymentRepository {
	return m.payments
}

// expectTx expects n successful begin/commit pairs.
func (m *MockUoW) expectTx(n int) {
	m.On("Begin", mock.Anything).Return(nil).Times(n)
	m.On("Commit", mock.Anything).Return(nil).Times(n)
}

func (m *MockUoW) assertAll(t mock.TestingT) {
	m.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.payments.AssertExpectations(t)
}

type uowFactory struct{ uow *MockUoW }

func (f uowFactory) Create() commands.UoW { return f.uow }

type orderUoWFactory struct{ uow *MockUoW }

func (f orderUoWFactory) Create() commands.OrderUoW { return f.uow }

type paymentUoWFactory struct{ uow *MockUoW }

func (f paymentUoWFactory) Create() commands.PaymentUoW { return f.uow }

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) CreateCharge(ctx context.Context, req ports.ChargeRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time     { return c.now }
func (c fixedClock) Today() kernel.Date { return kernel.DateOf(c.now) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	testOrderID = kernel.MustOrderID("NVSG0001")
	testNow     = time.Date(2024, time.January, 2, 10, 0, 0, 0, time.UTC)
	testClock   = fixedClock{now: testNow}
)

func day(d int) kernel.Date {
	return kernel.MustDate(2024, time.January, d)
}
