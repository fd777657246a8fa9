package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/day-booking/internal/model"
	"github.com/iliyamo/day-booking/internal/service"
)

// BookingHandler exposes the booking lifecycle and the per-date
// availability queries.
type BookingHandler struct {
	Bookings *service.BookingService
}

// NewBookingHandler panics when the service is nil.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

type createBookingRequest struct {
	Date             string        `json:"date"`
	PrimaryBooker    model.Guest   `json:"primaryBooker"`
	AdditionalGuests []model.Guest `json:"additionalGuests"`
}

type updateBookingRequest struct {
	PrimaryBooker    model.Guest   `json:"primaryBooker"`
	AdditionalGuests []model.Guest `json:"additionalGuests"`
}

// Create handles POST /v1/bookings and returns 201 with the stored booking.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	b, err := h.Bookings.Create(c.Request().Context(), req.Date, req.PrimaryBooker, req.AdditionalGuests)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Update handles PUT /v1/bookings/:id.  Only the guests can change; the
// date of a booking is fixed once created.
func (h *BookingHandler) Update(c echo.Context) error {
	var req updateBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	b, err := h.Bookings.Update(c.Request().Context(), c.Param("id"), req.PrimaryBooker, req.AdditionalGuests)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete handles DELETE /v1/bookings/:id.
func (h *BookingHandler) Delete(c echo.Context) error {
	if err := h.Bookings.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	b, err := h.Bookings.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// List handles GET /v1/bookings.  With both from and to it returns the
// inclusive range; with only one of them the open side is unbounded.
func (h *BookingHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	from, to := c.QueryParam("from"), c.QueryParam("to")
	var (
		list []model.Booking
		err  error
	)
	if from == "" && to == "" {
		list, err = h.Bookings.ListAll(ctx)
	} else {
		if from == "" {
			from = "0001-01-01"
		}
		if to == "" {
			to = "9999-12-31"
		}
		list, err = h.Bookings.ListRange(ctx, from, to)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list, "count": len(list)})
}

// ListForDate handles GET /v1/dates/:date/bookings.
func (h *BookingHandler) ListForDate(c echo.Context) error {
	list, err := h.Bookings.ListForDate(c.Request().Context(), c.Param("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list, "count": len(list)})
}

// Availability handles GET /v1/dates/:date/availability.  An optional phone
// query parameter also reports whether that number is still free on the
// date, excluding the booking named by exclude.  The leading + of the phone
// must be sent as %2B; a literal + decodes to a space, which matches no
// stored number and always reports the phone as unique.
func (h *BookingHandler) Availability(c echo.Context) error {
	date := c.Param("date")
	if _, err := model.ParseDate(date); err != nil {
		return writeError(c, err)
	}
	policy, err := h.Bookings.Availability(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	resp := echo.Map{
		"date":      date,
		"available": policy.IsDateAvailable(date),
		"remaining": policy.RemainingSlots(date),
	}
	if phone := c.QueryParam("phone"); phone != "" {
		resp["phoneUnique"] = policy.IsPhoneNumberUnique(date, phone, c.QueryParam("exclude"))
	}
	return c.JSON(http.StatusOK, resp)
}
