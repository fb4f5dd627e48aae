package commands_test

import (
	"errors"
	"testing"

	"parcelbot/internal/core/application/usecases/commands"
	"parcelbot/internal/core/domain/model/decision"
	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/order"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/core/domain/services"
	"parcelbot/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRescheduleHandler(t *testing.T, uow *MockUoW) commands.RescheduleOrderCommandHandler {
	t.Helper()
	policy, err := services.NewSchedulingPolicy(tier.DefaultCatalog())
	require.NoError(t, err)
	rescheduler := services.NewRescheduler(policy, services.NewRescheduleQuota())
	return commands.NewRescheduleOrderCommandHandler(orderUoWFactory{uow}, rescheduler, testClock, discardLogger())
}

func storedOrder(t *testing.T, tr tier.Tier, slot kernel.Slot, remaining int) order.Order {
	t.Helper()
	o, err := order.RestoreOrder(testOrderID, tr, day(1), day(5), slot, remaining, 3)
	require.NoError(t, err)
	return o
}

func rescheduleCommand(t *testing.T, date kernel.Date, slot kernel.Slot) commands.RescheduleOrderCommand {
	t.Helper()
	cmd, err := commands.NewRescheduleOrderCommand(testOrderID, date, slot)
	require.NoError(t, err)
	return cmd
}

func TestRescheduleOrderCommandHandler_Handle_Success(t *testing.T) {
	uow := newMockUoW()
	uow.expectTx(1)
	uow.orders.On("Get", mock.Anything, testOrderID).Return(storedOrder(t, tier.Standard, kernel.Slot{}, 2), nil).Once()
	uow.orders.On("CompareAndSet", mock.Anything, testOrderID, int64(3), mock.MatchedBy(func(o order.Order) bool {
		return o.DeliveryDate().Equal(day(6)) && o.ReschedulesRemaining() == 1
	})).Return(nil).Once()

	// today is 2024-01-02, so the standard window is [01-04, 01-08]
	res, err := newRescheduleHandler(t, uow).Handle(t.Context(), rescheduleCommand(t, day(6), kernel.Slot{}))

	require.NoError(t, err)
	assert.Equal(t, "2024-01-06", res.DeliveryDate.String())
	assert.Equal(t, 1, res.ReschedulesRemaining)
	assert.False(t, res.Free)
	uow.assertAll(t)
}

func TestRescheduleOrderCommandHandler_Handle_OutOfRange(t *testing.T) {
	uow := newMockUoW()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.orders.On("Get", mock.Anything, testOrderID).Return(storedOrder(t, tier.Standard, kernel.Slot{}, 2), nil).Once()

	_, err := newRescheduleHandler(t, uow).Handle(t.Context(), rescheduleCommand(t, day(3), kernel.Slot{}))

	require.ErrorIs(t, err, decision.ErrOutOfRange)
	uow.orders.AssertNotCalled(t, "CompareAndSet", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	uow.assertAll(t)
}

func TestRescheduleOrderCommandHandler_Handle_QuotaExhausted(t *testing.T) {
	uow := newMockUoW()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.orders.On("Get", mock.Anything, testOrderID).Return(storedOrder(t, tier.Standard, kernel.Slot{}, 0), nil).Once()

	_, err := newRescheduleHandler(t, uow).Handle(t.Context(), rescheduleCommand(t, day(6), kernel.Slot{}))

	require.ErrorIs(t, err, decision.ErrQuotaExhausted)
	uow.assertAll(t)
}

func TestRescheduleOrderCommandHandler_Handle_FreeSlotChoice(t *testing.T) {
	uow := newMockUoW()
	uow.expectTx(1)
	uow.orders.On("Get", mock.Anything, testOrderID).
		Return(storedOrder(t, tier.Timeslot, kernel.Slot{}, 0), nil).Once()
	uow.orders.On("CompareAndSet", mock.Anything, testOrderID, int64(3), mock.MatchedBy(func(o order.Order) bool {
		return o.Slot() == kernel.SlotEvening && o.ReschedulesRemaining() == 0
	})).Return(nil).Once()

	res, err := newRescheduleHandler(t, uow).Handle(t.Context(), rescheduleCommand(t, day(5), kernel.SlotEvening))

	require.NoError(t, err)
	assert.True(t, res.Free)
	assert.Equal(t, kernel.SlotEvening, res.Slot)
	uow.assertAll(t)
}

func TestRescheduleOrderCommandHandler_Handle_NotFound(t *testing.T) {
	uow := newMockUoW()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.orders.On("Get", mock.Anything, testOrderID).
		Return(order.Order{}, errs.NewObjectNotFoundError("order", testOrderID.String())).Once()

	_, err := newRescheduleHandler(t, uow).Handle(t.Context(), rescheduleCommand(t, day(6), kernel.Slot{}))

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	uow.assertAll(t)
}

func TestRescheduleOrderCommandHandler_Handle_StoreUnavailable(t *testing.T) {
	uow := newMockUoW()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.orders.On("Get", mock.Anything, testOrderID).Return(order.Order{}, errors.New("i/o timeout")).Once()

	_, err := newRescheduleHandler(t, uow).Handle(t.Context(), rescheduleCommand(t, day(6), kernel.Slot{}))

	require.ErrorIs(t, err, decision.ErrUnavailable)
	uow.assertAll(t)
}

func TestRescheduleOrderCommandHandler_Handle_Conflict(t *testing.T) {
	uow := newMockUoW()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.orders.On("Get", mock.Anything, testOrderID).Return(storedOrder(t, tier.Standard, kernel.Slot{}, 1), nil).Once()
	uow.orders.On("CompareAndSet", mock.Anything, testOrderID, int64(3), mock.Anything).
		Return(errs.NewVersionIsInvalidError("order")).Once()

	_, err := newRescheduleHandler(t, uow).Handle(t.Context(), rescheduleCommand(t, day(6), kernel.Slot{}))

	require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	uow.assertAll(t)
}
