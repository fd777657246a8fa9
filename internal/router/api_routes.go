package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/day-booking/internal/handler"
)

// API bundles the handlers mounted under /v1.
type API struct {
	Bookings *handler.BookingHandler
	Calendar *handler.CalendarHandler
	Profile  *handler.ProfileHandler
	Backup   *handler.BackupHandler
}

// RegisterAPI mounts the booking, calendar, profile and backup endpoints.
// The application has a single local user, so no authentication middleware
// is applied.
func RegisterAPI(e *echo.Echo, api API) {
	v1 := e.Group("/v1")

	v1.GET("/calendar/:month", api.Calendar.Month)

	dates := v1.Group("/dates/:date")
	dates.GET("/availability", api.Bookings.Availability)
	dates.GET("/bookings", api.Bookings.ListForDate)

	b := v1.Group("/bookings")
	b.GET("", api.Bookings.List)
	b.POST("", api.Bookings.Create)
	b.GET("/:id", api.Bookings.Get)
	b.PUT("/:id", api.Bookings.Update)
	b.DELETE("/:id", api.Bookings.Delete)

	v1.GET("/profile", api.Profile.Get)
	v1.PUT("/profile", api.Profile.Put)

	v1.GET("/backup", api.Backup.Export)
	v1.POST("/restore", api.Backup.Restore)
}
