package http

import (
	"time"

	"parcelbot/internal/core/application/usecases/commands"
	"parcelbot/internal/core/application/usecases/queries"
	"parcelbot/internal/core/domain/model/tier"
)

// Error is the body of every failed response. Reason carries the rejection
// code when the request was understood but refused.
type Error struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

type NewOrder struct {
	OrderID      string `json:"order_id"`
	Tier         string `json:"tier"`
	PickupDate   string `json:"pickup_date"`
	DeliveryDate string `json:"delivery_date"`
	Slot         string `json:"slot,omitempty"`
}

type RescheduleRequest struct {
	Date string `json:"date"`
	Slot string `json:"slot,omitempty"`
}

type UpgradeRequest struct {
	Tier string `json:"tier"`
}

type Tier struct {
	Tier          string `json:"tier"`
	Price         int64  `json:"price"`
	Currency      string `json:"currency"`
	RequiresSlot  bool   `json:"requires_slot"`
	MinOffsetDays int    `json:"min_offset_days"`
	MaxOffsetDays int    `json:"max_offset_days"`
}

type Window struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type Order struct {
	OrderID              string  `json:"order_id"`
	Tier                 string  `json:"tier"`
	PickupDate           string  `json:"pickup_date"`
	DeliveryDate         string  `json:"delivery_date"`
	Slot                 string  `json:"slot,omitempty"`
	ReschedulesRemaining int     `json:"reschedules_remaining"`
	AwaitingSlot         bool    `json:"awaiting_slot"`
	Window               *Window `json:"window,omitempty"`
	Version              int64   `json:"version"`
}

type UpgradeOption struct {
	Tier         string `json:"tier"`
	PriceDelta   int64  `json:"price_delta"`
	Currency     string `json:"currency"`
	RequiresSlot bool   `json:"requires_slot"`
}

type UpgradeOptions struct {
	OrderID     string          `json:"order_id"`
	CurrentTier string          `json:"current_tier"`
	Options     []UpgradeOption `json:"options"`
}

type Rescheduled struct {
	DeliveryDate         string `json:"delivery_date"`
	Slot                 string `json:"slot,omitempty"`
	ReschedulesRemaining int    `json:"reschedules_remaining"`
	Free                 bool   `json:"free"`
}

type Charge struct {
	PaymentID       string `json:"payment_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	ChargeReference string `json:"charge_reference,omitempty"`
	CheckoutURL     string `json:"checkout_url,omitempty"`
}

type Upgrade struct {
	OrderID    string  `json:"order_id"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	PriceDelta int64   `json:"price_delta"`
	Committed  bool    `json:"committed"`
	Payment    *Charge `json:"payment,omitempty"`
}

type Payment struct {
	PaymentID       string    `json:"payment_id"`
	OrderID         string    `json:"order_id"`
	Purpose         string    `json:"purpose"`
	TargetTier      string    `json:"target_tier,omitempty"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	ChargeReference string    `json:"charge_reference,omitempty"`
	Status          string    `json:"status"`
	FailureReason   string    `json:"failure_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type PaymentEvent struct {
	ChargeReference string `json:"charge_reference"`
	Status          string `json:"status"`
	Reason          string `json:"reason,omitempty"`
}

type WebhookResult struct {
	Result string `json:"result"`
}

func toOrder(o queries.GetOrderQueryResponse) Order {
	res := Order{
		OrderID:              o.ID.String(),
		Tier:                 o.Tier.String(),
		PickupDate:           o.PickupDate.String(),
		DeliveryDate:         o.DeliveryDate.String(),
		ReschedulesRemaining: o.ReschedulesRemaining,
		AwaitingSlot:         o.AwaitingSlot,
		Version:              o.Version,
	}
	if !o.Slot.IsZero() {
		res.Slot = o.Slot.String()
	}
	if !o.Window.IsEmpty() {
		res.Window = &Window{Min: o.Window.Min.String(), Max: o.Window.Max.String()}
	}
	return res
}

func toCharge(c commands.ChargeResult) *Charge {
	return &Charge{
		PaymentID:       c.PaymentID.String(),
		Amount:          c.Amount,
		Currency:        c.Currency,
		ChargeReference: c.ChargeReference,
		CheckoutURL:     c.CheckoutURL,
	}
}

func toPayment(p queries.GetPaymentQueryResponse) Payment {
	res := Payment{
		PaymentID:       p.ID.String(),
		OrderID:         p.OrderID.String(),
		Purpose:         p.Purpose.String(),
		Amount:          p.Amount,
		Currency:        p.Currency,
		ChargeReference: p.ChargeReference,
		Status:          p.Status.String(),
		FailureReason:   p.FailureReason,
		CreatedAt:       p.CreatedAt,
	}
	if p.TargetTier != tier.Unknown {
		res.TargetTier = p.TargetTier.String()
	}
	return res
}
