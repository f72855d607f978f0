package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"garrafinha/internal/infrastructure/location"
	"garrafinha/pkg/errors"
	"garrafinha/pkg/geo"
	"garrafinha/pkg/response"
)

type LocationHandler struct {
	locations *location.Directory
}

func NewLocationHandler(locations *location.Directory) *LocationHandler {
	return &LocationHandler{
		locations: locations,
	}
}

type reportLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// ReportLocation records the caller's position. Reporting implies
// permission; a later revoke clears both.
func (h *LocationHandler) ReportLocation(c echo.Context) error {
	var req reportLocationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("email").(string)
	h.locations.Report(userID, geo.Point{Latitude: req.Latitude, Longitude: req.Longitude})

	return c.NoContent(http.StatusNoContent)
}

// GetLocation returns the caller's last known position, if sharing is on
func (h *LocationHandler) GetLocation(c echo.Context) error {
	userID := c.Get("email").(string)

	pos, ok := h.locations.LastKnown(userID)
	if !ok {
		// Unknown is a valid outcome, not a failure of the caller.
		return response.Error(c, errors.NotFound("Location", nil))
	}

	return response.Success(c, pos)
}

// RevokeLocation withdraws location sharing and forgets the position
func (h *LocationHandler) RevokeLocation(c echo.Context) error {
	userID := c.Get("email").(string)
	h.locations.Revoke(userID)

	return c.NoContent(http.StatusNoContent)
}
