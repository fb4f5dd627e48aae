package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// requestTimeout bounds one request, gateway retries included.
const requestTimeout = 15 * time.Second

type httpObserver interface {
	ObserveHTTPRequest(route, method string, status int, elapsed time.Duration)
}

// NewEcho builds the echo instance with all routes of the server registered.
// metricsHandler is mounted at /metrics.
func NewEcho(
	s *Server,
	doc *openapi3.T,
	observer httpObserver,
	metricsHandler http.Handler,
	logger *slog.Logger,
) (*echo.Echo, error) {
	validator, err := RequestValidator(doc)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	e.Use(observeRequests(observer))

	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(metricsHandler))

	api := e.Group("/api/v1", validator, middleware.ContextTimeout(requestTimeout))
	api.GET("/tiers", s.ListTiers)
	api.POST("/orders", s.RegisterOrder)
	api.GET("/orders/:orderId", s.GetOrder)
	api.GET("/orders/:orderId/upgrades", s.GetUpgradeOptions)
	api.POST("/orders/:orderId/reschedule", s.RescheduleOrder)
	api.POST("/orders/:orderId/upgrade", s.UpgradeTier)
	api.POST("/orders/:orderId/top-up", s.TopUpReschedules)
	api.GET("/payments/:paymentId", s.GetPayment)
	api.POST("/payments/webhook", s.PaymentWebhook)

	return e, nil
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	logger = logger.With("component", "http-access")

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.RequestID != "" {
				attrs = append(attrs, "request_id", v.RequestID)
			}
			if v.Error != nil {
				logger.ErrorContext(c.Request().Context(), "request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.InfoContext(c.Request().Context(), "request", attrs...)
			return nil
		},
	})
}

func observeRequests(observer httpObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			observer.ObserveHTTPRequest(route, c.Request().Method, status, time.Since(start))
			return err
		}
	}
}
