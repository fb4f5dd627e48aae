// Package http exposes the order and payment use cases to the customer chat
// front end and receives payment gateway callbacks.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"parcelbot/internal/core/application/usecases/commands"
	"parcelbot/internal/core/application/usecases/queries"
	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
)

// Operation names used as the decision counter label.
const (
	OpRegister   = "register"
	OpReschedule = "reschedule"
	OpUpgrade    = "upgrade"
	OpTopUp      = "top_up"
	OpConfirm    = "confirm_payment"
	OpFail       = "fail_payment"
)

type (
	registerOrderHandler interface {
		Handle(ctx context.Context, cmd commands.RegisterOrderCommand) error
	}
	rescheduleOrderHandler interface {
		Handle(ctx context.Context, cmd commands.RescheduleOrderCommand) (commands.RescheduleOrderResult, error)
	}
	upgradeTierHandler interface {
		Handle(ctx context.Context, cmd commands.UpgradeTierCommand) (commands.UpgradeTierResult, error)
	}
	topUpReschedulesHandler interface {
		Handle(ctx context.Context, cmd commands.TopUpReschedulesCommand) (commands.ChargeResult, error)
	}
	confirmPaymentHandler interface {
		Handle(ctx context.Context, cmd commands.ConfirmPaymentCommand) (commands.ConfirmPaymentResult, error)
	}
	failPaymentHandler interface {
		Handle(ctx context.Context, cmd commands.FailPaymentCommand) error
	}
	getOrderHandler interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (queries.GetOrderQueryResponse, error)
	}
	getUpgradeOptionsHandler interface {
		Handle(ctx context.Context, query queries.GetUpgradeOptionsQuery) (queries.GetUpgradeOptionsQueryResponse, error)
	}
	getPaymentHandler interface {
		Handle(ctx context.Context, query queries.GetPaymentQuery) (queries.GetPaymentQueryResponse, error)
	}
	listTiersHandler interface {
		Handle(ctx context.Context, query queries.ListTiersQuery) ([]queries.TierInfo, error)
	}
	decisionObserver interface {
		ObserveDecision(operation, outcome string)
	}
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	// Command handlers
	RegisterOrder    registerOrderHandler
	RescheduleOrder  rescheduleOrderHandler
	UpgradeTier      upgradeTierHandler
	TopUpReschedules topUpReschedulesHandler
	ConfirmPayment   confirmPaymentHandler
	FailPayment      failPaymentHandler

	// Query handlers
	GetOrder          getOrderHandler
	GetUpgradeOptions getUpgradeOptionsHandler
	GetPayment        getPaymentHandler
	ListTiers         listTiersHandler
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers      Handlers
	webhookSecret []byte
	metrics       decisionObserver
	logger        *slog.Logger
}

// NewServer creates the HTTP server. Webhook calls must be signed with
// webhookSecret.
func NewServer(handlers Handlers, webhookSecret string, m decisionObserver, logger *slog.Logger) *Server {
	return &Server{
		handlers:      handlers,
		webhookSecret: []byte(webhookSecret),
		metrics:       m,
		logger:        logger.With("component", "http"),
	}
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

// ListTiers handles GET /api/v1/tiers.
func (s *Server) ListTiers(c echo.Context) error {
	tiers, err := s.handlers.ListTiers.Handle(c.Request().Context(), queries.NewListTiersQuery())
	if err != nil {
		return s.fail(c, "list_tiers", err)
	}

	response := make([]Tier, len(tiers))
	for i, t := range tiers {
		response[i] = Tier{
			Tier:          t.Tier.String(),
			Price:         t.Price,
			Currency:      t.Currency,
			RequiresSlot:  t.RequiresSlot,
			MinOffsetDays: t.MinOffsetDays,
			MaxOffsetDays: t.MaxOffsetDays,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// RegisterOrder handles POST /api/v1/orders.
func (s *Server) RegisterOrder(c echo.Context) error {
	var body NewOrder
	if err := c.Bind(&body); err != nil {
		return badRequest(c, errors.New("invalid request body"))
	}

	cmd, err := parseNewOrder(body)
	if err != nil {
		return badRequest(c, err)
	}

	if err = s.handlers.RegisterOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, OpRegister, err)
	}
	s.metrics.ObserveDecision(OpRegister, metrics.OutcomeAccepted)

	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/orders/"+cmd.OrderID().String())
	return c.NoContent(http.StatusCreated)
}

// GetOrder handles GET /api/v1/orders/:orderId.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := kernel.NewOrderID(c.Param("orderId"))
	if err != nil {
		return badRequest(c, err)
	}
	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return badRequest(c, err)
	}

	view, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, "get_order", err)
	}
	return c.JSON(http.StatusOK, toOrder(view))
}

// GetUpgradeOptions handles GET /api/v1/orders/:orderId/upgrades.
func (s *Server) GetUpgradeOptions(c echo.Context) error {
	orderID, err := kernel.NewOrderID(c.Param("orderId"))
	if err != nil {
		return badRequest(c, err)
	}
	query, err := queries.NewGetUpgradeOptionsQuery(orderID)
	if err != nil {
		return badRequest(c, err)
	}

	res, err := s.handlers.GetUpgradeOptions.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, "get_upgrade_options", err)
	}

	response := UpgradeOptions{
		OrderID:     res.OrderID.String(),
		CurrentTier: res.CurrentTier.String(),
		Options:     make([]UpgradeOption, len(res.Options)),
	}
	for i, o := range res.Options {
		response.Options[i] = UpgradeOption{
			Tier:         o.Tier.String(),
			PriceDelta:   o.PriceDelta,
			Currency:     o.Currency,
			RequiresSlot: o.RequiresSlot,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// RescheduleOrder handles POST /api/v1/orders/:orderId/reschedule.
func (s *Server) RescheduleOrder(c echo.Context) error {
	var body RescheduleRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, errors.New("invalid request body"))
	}

	orderID, idErr := kernel.NewOrderID(c.Param("orderId"))
	date, dateErr := kernel.ParseDate(body.Date)
	slot, slotErr := kernel.ParseSlot(body.Slot)
	if err := errors.Join(idErr, dateErr, slotErr); err != nil {
		return badRequest(c, err)
	}
	cmd, err := commands.NewRescheduleOrderCommand(orderID, date, slot)
	if err != nil {
		return badRequest(c, err)
	}

	res, err := s.handlers.RescheduleOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, OpReschedule, err)
	}
	s.metrics.ObserveDecision(OpReschedule, metrics.OutcomeAccepted)

	response := Rescheduled{
		DeliveryDate:         res.DeliveryDate.String(),
		ReschedulesRemaining: res.ReschedulesRemaining,
		Free:                 res.Free,
	}
	if !res.Slot.IsZero() {
		response.Slot = res.Slot.String()
	}
	return c.JSON(http.StatusOK, response)
}

// UpgradeTier handles POST /api/v1/orders/:orderId/upgrade. A free upgrade
// is applied at once (200); a paid one answers 202 with the charge to pay.
func (s *Server) UpgradeTier(c echo.Context) error {
	var body UpgradeRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, errors.New("invalid request body"))
	}

	orderID, idErr := kernel.NewOrderID(c.Param("orderId"))
	to, tierErr := tier.Parse(body.Tier)
	if err := errors.Join(idErr, tierErr); err != nil {
		return badRequest(c, err)
	}
	cmd, err := commands.NewUpgradeTierCommand(orderID, to)
	if err != nil {
		return badRequest(c, err)
	}

	res, err := s.handlers.UpgradeTier.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, OpUpgrade, err)
	}
	s.metrics.ObserveDecision(OpUpgrade, metrics.OutcomeAccepted)

	response := Upgrade{
		OrderID:    res.Transition.OrderID.String(),
		From:       res.Transition.From.String(),
		To:         res.Transition.To.String(),
		PriceDelta: res.Transition.PriceDelta,
		Committed:  res.Committed,
	}
	if res.Committed {
		return c.JSON(http.StatusOK, response)
	}
	response.Payment = toCharge(res.Charge)
	return c.JSON(http.StatusAccepted, response)
}

// TopUpReschedules handles POST /api/v1/orders/:orderId/top-up.
func (s *Server) TopUpReschedules(c echo.Context) error {
	orderID, err := kernel.NewOrderID(c.Param("orderId"))
	if err != nil {
		return badRequest(c, err)
	}
	cmd, err := commands.NewTopUpReschedulesCommand(orderID)
	if err != nil {
		return badRequest(c, err)
	}

	res, err := s.handlers.TopUpReschedules.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, OpTopUp, err)
	}
	s.metrics.ObserveDecision(OpTopUp, metrics.OutcomeAccepted)

	return c.JSON(http.StatusAccepted, toCharge(res))
}

// GetPayment handles GET /api/v1/payments/:paymentId.
func (s *Server) GetPayment(c echo.Context) error {
	paymentID, err := kernel.UUIDFromString(c.Param("paymentId"))
	if err != nil {
		return badRequest(c, err)
	}
	query, err := queries.NewGetPaymentQuery(paymentID)
	if err != nil {
		return badRequest(c, err)
	}

	res, err := s.handlers.GetPayment.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, "get_payment", err)
	}
	return c.JSON(http.StatusOK, toPayment(res))
}

func parseNewOrder(body NewOrder) (commands.RegisterOrderCommand, error) {
	orderID, idErr := kernel.NewOrderID(body.OrderID)
	t, tierErr := tier.Parse(body.Tier)
	pickup, pickupErr := kernel.ParseDate(body.PickupDate)
	delivery, deliveryErr := kernel.ParseDate(body.DeliveryDate)
	slot, slotErr := kernel.ParseSlot(body.Slot)
	if err := errors.Join(idErr, tierErr, pickupErr, deliveryErr, slotErr); err != nil {
		return commands.RegisterOrderCommand{}, err
	}
	return commands.NewRegisterOrderCommand(orderID, t, pickup, delivery, slot)
}
