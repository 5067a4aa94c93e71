package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goldenfork/reservation-api/internal/service"
)

// AdminReservationHandler serves the back-office reservation manager.
// All routes assume JWT authentication and the ADMIN role have been
// enforced by middleware.
type AdminReservationHandler struct {
	Booking *service.BookingService
}

// NewAdminReservationHandler constructs the handler.
func NewAdminReservationHandler(booking *service.BookingService) *AdminReservationHandler {
	if booking == nil {
		panic("nil service passed to NewAdminReservationHandler")
	}
	return &AdminReservationHandler{Booking: booking}
}

// List handles GET /v1/admin/reservations.  Reading the list lazily
// marks reservations whose interval has fully passed as done, newest
// first.
func (h *AdminReservationHandler) List(c echo.Context) error {
	all, err := h.Booking.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": all})
}

// Confirm handles POST /v1/admin/reservations/:id/confirm.
func (h *AdminReservationHandler) Confirm(c echo.Context) error {
	res, err := h.Booking.Confirm(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Cancel handles POST /v1/admin/reservations/:id/cancel with an
// optional JSON body {"reason": "..."}.
func (h *AdminReservationHandler) Cancel(c echo.Context) error {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.Bind(&body) // body is optional
	res, err := h.Booking.Cancel(c.Request().Context(), c.Param("id"), body.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Delete handles DELETE /v1/admin/reservations/:id.
func (h *AdminReservationHandler) Delete(c echo.Context) error {
	if err := h.Booking.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
