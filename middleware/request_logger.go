package middleware

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/metrics"
)

// RequestLogger writes one zerolog event per request and records the HTTP
// Prometheus metrics.
func RequestLogger() echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/metrics" || p == "/health"
		},
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogRoutePath: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			status := v.Status
			if v.Error != nil && status < 400 {
				status, _ = classify(v.Error)
			}
			route := v.RoutePath
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequestsTotal.WithLabelValues(v.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(v.Method, route).Observe(v.Latency.Seconds())

			var event *zerolog.Event
			switch {
			case status >= 500:
				event = logger.Error()
			case status >= 400:
				event = logger.Warn()
			default:
				event = logger.Info()
			}
			if strings.HasPrefix(v.URI, "/uploads/") && status < 400 {
				event = logger.Debug()
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", status).
				Dur("latency", v.Latency).
				Str("ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
