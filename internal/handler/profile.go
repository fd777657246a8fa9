package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/day-booking/internal/model"
	"github.com/iliyamo/day-booking/internal/service"
)

// ProfileHandler serves the single user profile.
type ProfileHandler struct {
	Profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	if profiles == nil {
		panic("nil service passed to NewProfileHandler")
	}
	return &ProfileHandler{Profiles: profiles}
}

// Get handles GET /v1/profile.  A profile that was never saved is returned
// with empty fields.
func (h *ProfileHandler) Get(c echo.Context) error {
	p, err := h.Profiles.Get(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Put handles PUT /v1/profile.
func (h *ProfileHandler) Put(c echo.Context) error {
	var p model.Profile
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	saved, err := h.Profiles.Save(c.Request().Context(), p)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, saved)
}
