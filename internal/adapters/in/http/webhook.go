package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"parcelbot/internal/core/application/usecases/commands"
	"parcelbot/internal/core/domain/model/decision"
	"parcelbot/internal/pkg/errs"
	"parcelbot/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of the request body.
	SignatureHeader = "X-Signature"

	signaturePrefix = "sha256="
)

// Sign returns the signature the gateway is expected to send for body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Server) verifySignature(header string, body []byte) bool {
	if len(s.webhookSecret) == 0 {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(header), signaturePrefix))
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, s.webhookSecret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// PaymentWebhook handles POST /api/v1/payments/webhook, the gateway's
// synchronous callback carrying the same outcome as the payment events topic.
func (s *Server) PaymentWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(c, errors.New("unreadable request body"))
	}
	if !s.verifySignature(c.Request().Header.Get(SignatureHeader), body) {
		s.logger.WarnContext(c.Request().Context(), "webhook signature mismatch",
			"remote_ip", c.RealIP())
		return c.JSON(http.StatusUnauthorized, Error{
			Code:    http.StatusUnauthorized,
			Message: "invalid signature",
		})
	}

	var event PaymentEvent
	if err = json.Unmarshal(body, &event); err != nil {
		return badRequest(c, errors.New("invalid request body"))
	}

	ctx := c.Request().Context()
	switch event.Status {
	case "succeeded":
		cmd, err := commands.NewConfirmPaymentCommand(event.ChargeReference)
		if err != nil {
			return badRequest(c, err)
		}
		res, err := s.handlers.ConfirmPayment.Handle(ctx, cmd)
		if err != nil {
			return s.failWebhook(c, OpConfirm, err)
		}
		s.metrics.ObserveDecision(OpConfirm, metrics.OutcomeAccepted)
		if res.AlreadyConfirmed {
			return c.JSON(http.StatusOK, WebhookResult{Result: "duplicate"})
		}
		return c.JSON(http.StatusOK, WebhookResult{Result: "applied"})

	case "failed":
		cmd, err := commands.NewFailPaymentCommand(event.ChargeReference, event.Reason)
		if err != nil {
			return badRequest(c, err)
		}
		if err = s.handlers.FailPayment.Handle(ctx, cmd); err != nil {
			return s.failWebhook(c, OpFail, err)
		}
		s.metrics.ObserveDecision(OpFail, metrics.OutcomeAccepted)
		return c.JSON(http.StatusOK, WebhookResult{Result: "applied"})

	default:
		return badRequest(c, errs.NewValueIsInvalidError("status"))
	}
}

// failWebhook answers 409 when the payment cannot move to the reported
// state, so the gateway stops retrying a callback that will never apply.
func (s *Server) failWebhook(c echo.Context, operation string, err error) error {
	if !decision.IsRejected(err) && errors.Is(err, errs.ErrValueIsInvalid) {
		s.metrics.ObserveDecision(operation, metrics.OutcomeConflict)
		return c.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Reason:  "invalid_transition",
			Message: err.Error(),
		})
	}
	return s.fail(c, operation, err)
}
