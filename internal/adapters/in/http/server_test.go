package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpin "parcelbot/internal/adapters/in/http"
	"parcelbot/internal/core/application/usecases/commands"
	"parcelbot/internal/core/application/usecases/queries"
	"parcelbot/internal/core/domain/model/decision"
	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/payment"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/core/domain/services"
	"parcelbot/internal/pkg/errs"
	"parcelbot/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "s3cret"

type registerFunc func(context.Context, commands.RegisterOrderCommand) error

func (f registerFunc) Handle(ctx context.Context, cmd commands.RegisterOrderCommand) error {
	return f(ctx, cmd)
}

type rescheduleFunc func(context.Context, commands.RescheduleOrderCommand) (commands.RescheduleOrderResult, error)

func (f rescheduleFunc) Handle(ctx context.Context, cmd commands.RescheduleOrderCommand) (commands.RescheduleOrderResult, error) {
	return f(ctx, cmd)
}

type upgradeFunc func(context.Context, commands.UpgradeTierCommand) (commands.UpgradeTierResult, error)

func (f upgradeFunc) Handle(ctx context.Context, cmd commands.UpgradeTierCommand) (commands.UpgradeTierResult, error) {
	return f(ctx, cmd)
}

type topUpFunc func(context.Context, commands.TopUpReschedulesCommand) (commands.ChargeResult, error)

func (f topUpFunc) Handle(ctx context.Context, cmd commands.TopUpReschedulesCommand) (commands.ChargeResult, error) {
	return f(ctx, cmd)
}

type confirmFunc func(context.Context, commands.ConfirmPaymentCommand) (commands.ConfirmPaymentResult, error)

func (f confirmFunc) Handle(ctx context.Context, cmd commands.ConfirmPaymentCommand) (commands.ConfirmPaymentResult, error) {
	return f(ctx, cmd)
}

type failFunc func(context.Context, commands.FailPaymentCommand) error

func (f failFunc) Handle(ctx context.Context, cmd commands.FailPaymentCommand) error {
	return f(ctx, cmd)
}

type getOrderFunc func(context.Context, queries.GetOrderQuery) (queries.GetOrderQueryResponse, error)

func (f getOrderFunc) Handle(ctx context.Context, q queries.GetOrderQuery) (queries.GetOrderQueryResponse, error) {
	return f(ctx, q)
}

type optionsFunc func(context.Context, queries.GetUpgradeOptionsQuery) (queries.GetUpgradeOptionsQueryResponse, error)

func (f optionsFunc) Handle(ctx context.Context, q queries.GetUpgradeOptionsQuery) (queries.GetUpgradeOptionsQueryResponse, error) {
	return f(ctx, q)
}

type getPaymentFunc func(context.Context, queries.GetPaymentQuery) (queries.GetPaymentQueryResponse, error)

func (f getPaymentFunc) Handle(ctx context.Context, q queries.GetPaymentQuery) (queries.GetPaymentQueryResponse, error) {
	return f(ctx, q)
}

type listTiersFunc func(context.Context, queries.ListTiersQuery) ([]queries.TierInfo, error)

func (f listTiersFunc) Handle(ctx context.Context, q queries.ListTiersQuery) ([]queries.TierInfo, error) {
	return f(ctx, q)
}

func unexpected(t *testing.T) func() {
	return func() { t.Helper(); t.Fatal("handler must not be called") }
}

// testHandlers fails the test on any use case call that a case did not set up.
func testHandlers(t *testing.T) httpin.Handlers {
	fatal := unexpected(t)
	return httpin.Handlers{
		RegisterOrder: registerFunc(func(context.Context, commands.RegisterOrderCommand) error {
			fatal()
			return nil
		}),
		RescheduleOrder: rescheduleFunc(func(context.Context, commands.RescheduleOrderCommand) (commands.RescheduleOrderResult, error) {
			fatal()
			return commands.RescheduleOrderResult{}, nil
		}),
		UpgradeTier: upgradeFunc(func(context.Context, commands.UpgradeTierCommand) (commands.UpgradeTierResult, error) {
			fatal()
			return commands.UpgradeTierResult{}, nil
		}),
		TopUpReschedules: topUpFunc(func(context.Context, commands.TopUpReschedulesCommand) (commands.ChargeResult, error) {
			fatal()
			return commands.ChargeResult{}, nil
		}),
		ConfirmPayment: confirmFunc(func(context.Context, commands.ConfirmPaymentCommand) (commands.ConfirmPaymentResult, error) {
			fatal()
			return commands.ConfirmPaymentResult{}, nil
		}),
		FailPayment: failFunc(func(context.Context, commands.FailPaymentCommand) error {
			fatal()
			return nil
		}),
		GetOrder: getOrderFunc(func(context.Context, queries.GetOrderQuery) (queries.GetOrderQueryResponse, error) {
			fatal()
			return queries.GetOrderQueryResponse{}, nil
		}),
		GetUpgradeOptions: optionsFunc(func(context.Context, queries.GetUpgradeOptionsQuery) (queries.GetUpgradeOptionsQueryResponse, error) {
			fatal()
			return queries.GetUpgradeOptionsQueryResponse{}, nil
		}),
		GetPayment: getPaymentFunc(func(context.Context, queries.GetPaymentQuery) (queries.GetPaymentQueryResponse, error) {
			fatal()
			return queries.GetPaymentQueryResponse{}, nil
		}),
		ListTiers: listTiersFunc(func(context.Context, queries.ListTiersQuery) ([]queries.TierInfo, error) {
			fatal()
			return nil, nil
		}),
	}
}

type testAPI struct {
	e       *echo.Echo
	metrics *metrics.Metrics
}

func newTestAPI(t *testing.T, h httpin.Handlers) testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	doc, err := httpin.LoadOpenAPI(context.Background())
	require.NoError(t, err)

	s := httpin.NewServer(h, webhookSecret, m, logger)
	e, err := httpin.NewEcho(s, doc, m, m.Handler(), logger)
	require.NoError(t, err)

	return testAPI{e: e, metrics: m}
}

func (a testAPI) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, testHandlers(t))

	rec := api.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t, testHandlers(t))
	api.do(t, http.MethodGet, "/health", "")

	rec := api.do(t, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "parcelbot_http_request_duration_seconds")
}

func TestListTiers(t *testing.T) {
	h := testHandlers(t)
	h.ListTiers = listTiersFunc(func(context.Context, queries.ListTiersQuery) ([]queries.TierInfo, error) {
		return []queries.TierInfo{
			{Tier: tier.Standard, Price: 0, Currency: "SGD", MinOffsetDays: 1, MaxOffsetDays: 7},
			{Tier: tier.Timeslot, Price: 500, Currency: "SGD", RequiresSlot: true, MinOffsetDays: 1, MaxOffsetDays: 7},
		}, nil
	})
	api := newTestAPI(t, h)

	rec := api.do(t, http.MethodGet, "/api/v1/tiers", "")

	require.Equal(t, http.StatusOK, rec.Code)
	tiers := decode[[]httpin.Tier](t, rec)
	require.Len(t, tiers, 2)
	assert.Equal(t, "timeslot", tiers[1].Tier)
	assert.True(t, tiers[1].RequiresSlot)
	assert.Equal(t, int64(500), tiers[1].Price)
}

func TestRegisterOrder(t *testing.T) {
	var got commands.RegisterOrderCommand
	h := testHandlers(t)
	h.RegisterOrder = registerFunc(func(_ context.Context, cmd commands.RegisterOrderCommand) error {
		got = cmd
		return nil
	})
	api := newTestAPI(t, h)

	rec := api.do(t, http.MethodPost, "/api/v1/orders",
		`{"order_id":"NVSG0001","tier":"timeslot","pickup_date":"2024-01-01","delivery_date":"2024-01-05","slot":"09:00-12:00"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/api/v1/orders/NVSG0001", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "NVSG0001", got.OrderID().String())
	assert.Equal(t, tier.Timeslot, got.Tier())
	assert.Equal(t, "2024-01-05", got.Delivery().String())
	assert.Equal(t, 9, got.Slot().StartHour())
	assert.InDelta(t, 1, testutil.ToFloat64(api.metrics.Decisions.WithLabelValues(httpin.OpRegister, metrics.OutcomeAccepted)), 0)
}

func TestRegisterOrder_RequestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing tier", `{"order_id":"NVSG0001","pickup_date":"2024-01-01","delivery_date":"2024-01-05"}`},
		{"double prefixed tier", `{"order_id":"NVSG0001","tier":"14day-14day-standard","pickup_date":"2024-01-01","delivery_date":"2024-01-05"}`},
		{"malformed date", `{"order_id":"NVSG0001","tier":"standard","pickup_date":"01/01/2024","delivery_date":"2024-01-05"}`},
		{"unknown field", `{"order_id":"NVSG0001","tier":"standard","pickup_date":"2024-01-01","delivery_date":"2024-01-05","x":1}`},
	}
	api := newTestAPI(t, testHandlers(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/v1/orders", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid_request", decode[httpin.Error](t, rec).Reason)
		})
	}
}

func TestRegisterOrder_Duplicate(t *testing.T) {
	h := testHandlers(t)
	h.RegisterOrder = registerFunc(func(context.Context, commands.RegisterOrderCommand) error {
		return errs.NewObjectAlreadyExistsError("order", "NVSG0001")
	})
	api := newTestAPI(t, h)

	rec := api.do(t, http.MethodPost, "/api/v1/orders",
		`{"order_id":"NVSG0001","tier":"standard","pickup_date":"2024-01-01","delivery_date":"2024-01-05"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetOrder(t *testing.T) {
	h := testHandlers(t)
	h.GetOrder = getOrderFunc(func(_ context.Context, q queries.GetOrderQuery) (queries.GetOrderQueryResponse, error) {
		assert.Equal(t, "NVSG0001", q.OrderID().String())
		return queries.GetOrderQueryResponse{
			ID:                   q.OrderID(),
			Tier:                 tier.Express,
			PickupDate:           kernel.MustDate(2024, 1, 1),
			DeliveryDate:         kernel.MustDate(2024, 1, 3),
			ReschedulesRemaining: 2,
			Window:               services.Window{Min: kernel.MustDate(2024, 1, 3), Max: kernel.MustDate(2024, 1, 8)},
			Version:              4,
		}, nil
	})
	api := newTestAPI(t, h)

	rec := api.do(t, http.MethodGet, "/api/v1/orders/NVSG0001", "")

	require.Equal(t, http.StatusOK, rec.Code)
	o := decode[httpin.Order](t, rec)
	assert.Equal(t, "express", o.Tier)
	assert.Equal(t, "2024-01-03", o.DeliveryDate)
	assert.Empty(t, o.Slot)
	require.NotNil(t, o.Window)
	assert.Equal(t, "2024-01-08", o.Window.Max)
	assert.Equal(t, int64(4), o.Version)
}

func TestGetOrder_NotFound(t *testing.T) {
	h := testHandlers(t)
	h.GetOrder = getOrderFunc(func(context.Context, queries.GetOrderQuery) (queries.GetOrderQueryResponse, error) {
		return queries.GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", "NVSG0404")
	})
	api := newTestAPI(t, h)

	rec := api.do(t, http.MethodGet, "/api/v1/orders/NVSG0404", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[httpin.Error](t, rec).Reason)
}

func TestGetUpgradeOptions(t *testing.T) {
	h := testHandlers(t)
	h.GetUpgradeOptions = optionsFunc(func(_ context.Context, q queries.GetUpgradeOptionsQuery) (queries.GetUpgradeOptionsQueryResponse, error) {
		return queries.GetUpgradeOptionsQueryResponse{
			OrderID:     q.OrderID(),
			CurrentTier: tier.Express,
			Options: []queries.UpgradeOption{
				{Tier: tier.Timeslot, PriceDelta: 200, Currency: "SGD", RequiresSlot: true},
			},
		}, nil
	})
	api := newTestAPI(t, h)

	rec := api.do(t, http.MethodGet, "/api/v1/orders/NVSG0001/upgrades", "")

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[httpin.UpgradeOptions](t, rec)
	assert.Equal(t, "express", res.CurrentTier)
	require.Len(t, res.Options, 1)
	assert.Equal(t, int64(200), res.Options[0].PriceDelta)
}

func TestRescheduleOrder(t *testing.T) {
	h := testHandlers(t)
	h.RescheduleOrder = rescheduleFunc(func(_ context.Context, cmd commands.RescheduleOrderCommand) (commands.RescheduleOrderResult, error) {
		return commands.RescheduleOrderResult{
			DeliveryDate:         cmd.Date(),
			Slot:                 cmd.Slot(),
			ReschedulesRemaining: 1,
		}, nil
	})
	api := newTestAPI(t, h)

	rec := api.do(t, http.MethodPost, "/api/v1/orders/NVSG0001/reschedule", `{"date":"2024-01-06","slot":"18:00-22:00"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[httpin.Rescheduled](t, rec)
	assert.Equal(t, "2024-01-06", res.DeliveryDate)
	assert.Equal(t, "18:00-22:00", res.Slot)
	assert.Equal(t, 1, res.ReschedulesRemaining)
	assert.False(t, res.Free)
}

func TestRescheduleOrder_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
		outcome    string
	}{
		{"out of range", decision.Rejectf(decision.OutOfRange, "2024-02-01 not in window"),
			http.StatusUnprocessableEntity, "out_of_range", "out_of_range"},
		{"quota exhausted", decision.Reject(decision.QuotaExhausted, nil),
			http.StatusUnprocessableEntity, "quota_exhausted", "quota_exhausted"},
		{"store down", decision.Reject(decision.Unavailable, errors.New("connection refused")),
			http.StatusServiceUnavailable, "unavailable", metrics.OutcomeError},
		{"version conflict", errs.NewVersionIsInvalidError("order"),
			http.StatusConflict, "version_conflict", metrics.OutcomeConflict},
		{"not found", errs.NewObjectNotFoundError("order", "NVSG0001"),
			http.StatusNotFound, "not_found", metrics.OutcomeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHandlers(t)
			h.RescheduleOrder = rescheduleFunc(func(context.Context, commands.RescheduleOrderCommand) (commands.RescheduleOrderResult, error) {
				return commands.RescheduleOrderResult{}, tt.err
			})
			api := newTestAPI(t, h)

			rec := api.do(t, http.MethodPost, "/api/v1/orders/NVSG0001/reschedule", `{"date":"2024-01-06"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantReason, decode[httpin.Error](t, rec).Reason)
			assert.InDelta(t, 1, testutil.ToFloat64(api.metrics.Decisions.WithLabelValues(httpin.OpReschedule, tt.outcome)), 0)
		})
	}
}

func TestRescheduleOrder_MalformedSlot(t *testing.T) {
	api := newTestAPI(t, testHandlers(t))

	rec := api.do(t, http.MethodPost, "/api/v1/orders/NVSG0001/reschedule", `{"date":"2024-01-06","slot":"morning"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRescheduleOrder_HalfHourSlotReachesPolicy(t *testing.T) {
	h := testHandlers(t)
	var gotSlot string
	h.RescheduleOrder = rescheduleFunc(func(_ context.Context, cmd commands.RescheduleOrderCommand) (commands.RescheduleOrderResult, error) {
		gotSlot = cmd.Slot().String()
		return commands.RescheduleOrderResult{}, decision.Rejectf(decision.OutOfRange, "%s is not one of the delivery slots", gotSlot)
	})
	api := newTestAPI(t, h)

	rec := api.do(t, http.MethodPost, "/api/v1/orders/NVSG0001/reschedule", `{"date":"2024-01-06","slot":"08:30-09:00"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "out_of_range", decode[httpin.Error](t, rec).Reason)
	assert.Equal(t, "08:30-09:00", gotSlot)
}

func TestUpgradeTier_Paid(t *testing.T) {
	paymentID := kernel.NewUUID()
	h := testHandlers(t)
	h.UpgradeTier = upgradeFunc(func(_ context.Context, cmd commands.UpgradeTierCommand) (commands.UpgradeTierResult, error) {
		return commands.UpgradeTierResult{
			Transition: services.Transition{OrderID: cmd.OrderID(), From: tier.Standard, To: cmd.ToTier(), PriceDelta: 300},
			Charge: commands.ChargeResult{
				PaymentID:       paymentID,
				Amount:          300,
				Currency:        "SGD",
				ChargeReference: paymentID.String(),
				CheckoutURL:     "https://pay.example/" + paymentID.String(),
			},
		}, nil
	})
	api := newTestAPI(t, h)

	rec := api.do(t, http.MethodPost, "/api/v1/orders/NVSG0001/upgrade", `{"tier":"express"}`)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	res := decode[httpin.Upgrade](t, rec)
	assert.False(t, res.Committed)
	assert.Equal(t, "standard", res.From)
	assert.Equal(t, "express", res.To)
	require.NotNil(t, res.Payment)
	assert.Equal(t, paymentID.String(), res.Payment.PaymentID)
	assert.Equal(t, int64(300), res.Payment.Amount)
}

func TestUpgradeTier_Free(t *testing.T) {
	h := testHandlers(t)
	h.UpgradeTier = upgradeFunc(func(_ context.Context, cmd commands.UpgradeTierCommand) (commands.UpgradeTierResult, error) {
		return commands.UpgradeTierResult{
			Transition: services.Transition{OrderID: cmd.OrderID(), From: tier.Standard, To: cmd.ToTier()},
			Committed:  true,
		}, nil
	})
	api := newTestAPI(t, h)

	rec := api.do(t, http.MethodPost, "/api/v1/orders/NVSG0001/upgrade", `{"tier":"express"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[httpin.Upgrade](t, rec)
	assert.True(t, res.Committed)
	assert.Nil(t, res.Payment)
}

func TestUpgradeTier_Declined(t *testing.T) {
	h := testHandlers(t)
	h.UpgradeTier = upgradeFunc(func(context.Context, commands.UpgradeTierCommand) (commands.UpgradeTierResult, error) {
		return commands.UpgradeTierResult{}, decision.Reject(decision.PaymentFailed, errors.New("card declined"))
	})
	api := newTestAPI(t, h)

	rec := api.do(t, http.MethodPost, "/api/v1/orders/NVSG0001/upgrade", `{"tier":"14day-timeslot"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "payment_failed", decode[httpin.Error](t, rec).Reason)
}

func TestTopUpReschedules(t *testing.T) {
	paymentID := kernel.NewUUID()
	h := testHandlers(t)
	h.TopUpReschedules = topUpFunc(func(context.Context, commands.TopUpReschedulesCommand) (commands.ChargeResult, error) {
		return commands.ChargeResult{PaymentID: paymentID, Amount: 200, Currency: "SGD"}, nil
	})
	api := newTestAPI(t, h)

	rec := api.do(t, http.MethodPost, "/api/v1/orders/NVSG0001/top-up", "")

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	res := decode[httpin.Charge](t, rec)
	assert.Equal(t, paymentID.String(), res.PaymentID)
	assert.Equal(t, int64(200), res.Amount)
}

func TestGetPayment(t *testing.T) {
	paymentID := kernel.NewUUID()
	created := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	h := testHandlers(t)
	h.GetPayment = getPaymentFunc(func(_ context.Context, q queries.GetPaymentQuery) (queries.GetPaymentQueryResponse, error) {
		return queries.GetPaymentQueryResponse{
			ID:            q.PaymentID(),
			OrderID:       kernel.MustOrderID("NVSG0001"),
			Purpose:       payment.RescheduleTopUp,
			Amount:        200,
			Currency:      "SGD",
			Status:        payment.Failed,
			FailureReason: "card_declined",
			CreatedAt:     created,
		}, nil
	})
	api := newTestAPI(t, h)

	rec := api.do(t, http.MethodGet, "/api/v1/payments/"+paymentID.String(), "")

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[httpin.Payment](t, rec)
	assert.Equal(t, paymentID.String(), res.PaymentID)
	assert.Equal(t, "failed", res.Status)
	assert.Equal(t, "card_declined", res.FailureReason)
	assert.Empty(t, res.TargetTier)
}

func TestGetPayment_InvalidID(t *testing.T) {
	api := newTestAPI(t, testHandlers(t))

	rec := api.do(t, http.MethodGet, "/api/v1/payments/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentWebhook(t *testing.T) {
	const succeeded = `{"charge_reference":"ch_1","status":"succeeded"}`

	t.Run("bad signature", func(t *testing.T) {
		api := newTestAPI(t, testHandlers(t))

		rec := api.do(t, http.MethodPost, "/api/v1/payments/webhook", succeeded,
			httpin.SignatureHeader, httpin.Sign([]byte("other"), []byte(succeeded)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing signature", func(t *testing.T) {
		api := newTestAPI(t, testHandlers(t))

		rec := api.do(t, http.MethodPost, "/api/v1/payments/webhook", succeeded)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("confirms", func(t *testing.T) {
		var got string
		h := testHandlers(t)
		h.ConfirmPayment = confirmFunc(func(_ context.Context, cmd commands.ConfirmPaymentCommand) (commands.ConfirmPaymentResult, error) {
			got = cmd.ChargeReference()
			return commands.ConfirmPaymentResult{}, nil
		})
		api := newTestAPI(t, h)

		rec := api.do(t, http.MethodPost, "/api/v1/payments/webhook", succeeded,
			httpin.SignatureHeader, "sha256="+httpin.Sign([]byte(webhookSecret), []byte(succeeded)))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "ch_1", got)
		assert.Equal(t, "applied", decode[httpin.WebhookResult](t, rec).Result)
	})

	t.Run("replay", func(t *testing.T) {
		h := testHandlers(t)
		h.ConfirmPayment = confirmFunc(func(context.Context, commands.ConfirmPaymentCommand) (commands.ConfirmPaymentResult, error) {
			return commands.ConfirmPaymentResult{AlreadyConfirmed: true}, nil
		})
		api := newTestAPI(t, h)

		rec := api.do(t, http.MethodPost, "/api/v1/payments/webhook", succeeded,
			httpin.SignatureHeader, httpin.Sign([]byte(webhookSecret), []byte(succeeded)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "duplicate", decode[httpin.WebhookResult](t, rec).Result)
	})

	t.Run("unknown reference", func(t *testing.T) {
		h := testHandlers(t)
		h.ConfirmPayment = confirmFunc(func(context.Context, commands.ConfirmPaymentCommand) (commands.ConfirmPaymentResult, error) {
			return commands.ConfirmPaymentResult{}, errs.NewObjectNotFoundError("chargeReference", "ch_1")
		})
		api := newTestAPI(t, h)

		rec := api.do(t, http.MethodPost, "/api/v1/payments/webhook", succeeded,
			httpin.SignatureHeader, httpin.Sign([]byte(webhookSecret), []byte(succeeded)))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("payment already failed", func(t *testing.T) {
		h := testHandlers(t)
		h.ConfirmPayment = confirmFunc(func(context.Context, commands.ConfirmPaymentCommand) (commands.ConfirmPaymentResult, error) {
			return commands.ConfirmPaymentResult{}, errs.NewValueIsInvalidError("payment status")
		})
		api := newTestAPI(t, h)

		rec := api.do(t, http.MethodPost, "/api/v1/payments/webhook", succeeded,
			httpin.SignatureHeader, httpin.Sign([]byte(webhookSecret), []byte(succeeded)))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "invalid_transition", decode[httpin.Error](t, rec).Reason)
	})

	t.Run("failed", func(t *testing.T) {
		const failed = `{"charge_reference":"ch_2","status":"failed","reason":"insufficient_funds"}`
		var reason string
		h := testHandlers(t)
		h.FailPayment = failFunc(func(_ context.Context, cmd commands.FailPaymentCommand) error {
			reason = cmd.Reason()
			return nil
		})
		api := newTestAPI(t, h)

		rec := api.do(t, http.MethodPost, "/api/v1/payments/webhook", failed,
			httpin.SignatureHeader, httpin.Sign([]byte(webhookSecret), []byte(failed)))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "insufficient_funds", reason)
	})
}
