package http

import (
	"errors"
	"net/http"

	"parcelbot/internal/core/domain/model/decision"
	"parcelbot/internal/pkg/errs"
	"parcelbot/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
)

// classify maps a use case error to an HTTP status, the reason code shown to
// the client and the outcome label of the decision counter.
func classify(err error) (status int, reason, outcome string) {
	if r, ok := decision.ReasonOf(err); ok {
		if r == decision.Unavailable {
			return http.StatusServiceUnavailable, r.Code(), metrics.OutcomeError
		}
		return http.StatusUnprocessableEntity, r.Code(), r.Code()
	}

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, "not_found", metrics.OutcomeNotFound
	case errors.Is(err, errs.ErrVersionIsInvalid):
		return http.StatusConflict, "version_conflict", metrics.OutcomeConflict
	case errors.Is(err, errs.ErrObjectExists):
		return http.StatusConflict, "already_exists", metrics.OutcomeConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest, "invalid_request", metrics.OutcomeInvalid
	default:
		return http.StatusInternalServerError, "internal", metrics.OutcomeError
	}
}

func (s *Server) fail(c echo.Context, operation string, err error) error {
	status, reason, outcome := classify(err)
	s.metrics.ObserveDecision(operation, outcome)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"operation", operation, "error", err)
		message = http.StatusText(status)
	}

	return c.JSON(status, Error{Code: status, Reason: reason, Message: message})
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Reason:  "invalid_request",
		Message: err.Error(),
	})
}
