// Package queries contains read operations for retrieving system state.
// Query handlers read the store directly with SQL and return read models
// shaped for the chat front end.
package queries

import (
	"errors"
	"time"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/core/domain/services"
	"parcelbot/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves what the customer is shown about one order.
//
// Example:
//
//	query, err := NewGetOrderQuery(kernel.MustOrderID("NVSG0001"))
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
type GetOrderQuery struct {
	orderID kernel.OrderID
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.OrderID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.OrderID { return q.orderID }

// GetOrderQueryResponse is the order read model.
type GetOrderQueryResponse struct {
	ID                   kernel.OrderID
	Tier                 tier.Tier
	PickupDate           kernel.Date
	DeliveryDate         kernel.Date
	Slot                 kernel.Slot
	ReschedulesRemaining int
	AwaitingSlot         bool

	// Window is the range a reschedule may pick today. It is empty once
	// today has passed the last admissible day.
	Window services.Window

	Version   int64
	CheckedAt time.Time
}
