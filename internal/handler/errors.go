package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/day-booking/internal/model"
	"github.com/iliyamo/day-booking/internal/repository"
	"github.com/iliyamo/day-booking/internal/service"
)

// writeError maps a service error to its HTTP status.  Unknown errors are
// reported as 500 without leaking their text.
func writeError(c echo.Context, err error) error {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, service.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, service.ErrDateFull):
		return c.JSON(http.StatusConflict, echo.Map{"error": "date is fully booked"})
	case errors.Is(err, service.ErrDuplicatePhone):
		return c.JSON(http.StatusConflict, echo.Map{"error": "phone number already exists for this date"})
	case errors.Is(err, service.ErrInvalidBackupFormat):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid backup format"})
	case errors.Is(err, repository.ErrPersistence):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
