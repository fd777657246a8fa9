package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/day-booking/internal/logger"
	"github.com/iliyamo/day-booking/internal/metrics"
)

// RequestLog logs every request once it has been served and records its
// latency.  The route label is the registered path pattern (for example
// /v1/bookings/:id) so ids do not explode the metric cardinality.
func RequestLog(log logger.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the error response so Status is final
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			elapsed := time.Since(start)
			m.ObserveRequest(req.Method, route, status, elapsed)

			kv := []interface{}{
				"method", req.Method,
				"path", req.URL.Path,
				"route", route,
				"status", status,
				"duration_ms", elapsed.Milliseconds(),
			}
			switch {
			case status >= 500:
				log.Error("request failed", append(kv, "error", err)...)
			case status >= 400:
				log.Warn("request rejected", kv...)
			default:
				log.Debug("request served", kv...)
			}
			return nil
		}
	}
}
