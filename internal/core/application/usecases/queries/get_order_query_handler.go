package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/order"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/core/domain/services"
	"parcelbot/internal/core/ports"
	"parcelbot/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderQueryHandler reads one order and computes its current reschedule
// window.
type GetOrderQueryHandler struct {
	db     *gorm.DB
	policy services.SchedulingPolicy
	clock  ports.Clock
}

func NewGetOrderQueryHandler(db *gorm.DB, policy services.SchedulingPolicy, clock ports.Clock) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db, policy: policy, clock: clock}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	o, err := loadOrder(ctx, h.db, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	today := h.clock.Today()
	window, err := h.policy.AdmissibleWindow(o.Tier(), o.PickupDate(), today)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	return GetOrderQueryResponse{
		ID:                   o.ID(),
		Tier:                 o.Tier(),
		PickupDate:           o.PickupDate(),
		DeliveryDate:         o.DeliveryDate(),
		Slot:                 o.Slot(),
		ReschedulesRemaining: o.ReschedulesRemaining(),
		AwaitingSlot:         o.AwaitingSlot(),
		Window:               window,
		Version:              o.Version(),
		CheckedAt:            h.clock.Now(),
	}, nil
}

// loadOrder reads the orders row behind id and rebuilds the aggregate so the
// read side applies the same rules as the write side.
func loadOrder(ctx context.Context, db *gorm.DB, id kernel.OrderID) (order.Order, error) {
	var (
		tierName       string
		pickup         time.Time
		delivery       time.Time
		numReschedules int
		version        int64
	)

	row := db.WithContext(ctx).Raw(`
		SELECT
			tier,
			pickup_date,
			delivery_date,
			num_reschedules,
			version
		FROM orders
		WHERE id = ?
	`, id.String()).Row()
	if err := row.Scan(&tierName, &pickup, &delivery, &numReschedules, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return order.Order{}, errs.NewObjectNotFoundError("order", id.String())
		}
		return order.Order{}, storeError(err)
	}

	t, err := tier.Parse(tierName)
	if err != nil {
		return order.Order{}, err
	}

	delivery = delivery.UTC()
	slot, err := kernel.SlotStartingAt(delivery.Hour())
	if err != nil {
		return order.Order{}, err
	}

	return order.RestoreOrder(
		id,
		t,
		kernel.DateOf(pickup.UTC()),
		kernel.DateOf(delivery),
		slot,
		numReschedules,
		version,
	)
}
