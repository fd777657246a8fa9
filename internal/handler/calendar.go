package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/day-booking/internal/service"
)

type CalendarHandler struct {
	Calendar *service.CalendarService
}

func NewCalendarHandler(cal *service.CalendarService) *CalendarHandler {
	if cal == nil {
		panic("nil service passed to NewCalendarHandler")
	}
	return &CalendarHandler{Calendar: cal}
}

// Month handles GET /v1/calendar/:month where month is yyyy-MM.
func (h *CalendarHandler) Month(c echo.Context) error {
	month := c.Param("month")
	days, err := h.Calendar.Month(c.Request().Context(), month)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"month": month, "days": days})
}
