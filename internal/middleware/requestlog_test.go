package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iliyamo/day-booking/internal/logger"
	"github.com/iliyamo/day-booking/internal/metrics"
)

func TestRequestLogRecordsRoutePattern(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	e := echo.New()
	e.Use(RequestLog(logger.NewNop(), m))
	e.GET("/v1/bookings/:id", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id")})
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "down")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bookings/abc", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("error status = %d, want 503", rec.Code)
	}

	if n := testutil.CollectAndCount(m.HTTPDuration); n != 2 {
		t.Fatalf("histogram series = %d, want 2", n)
	}
	// one series for the pattern, not one per id
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bookings/def", nil))
	if n := testutil.CollectAndCount(m.HTTPDuration); n != 2 {
		t.Fatalf("histogram series after second id = %d, want 2", n)
	}
}
