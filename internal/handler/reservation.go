package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/goldenfork/reservation-api/internal/service"
)

// ReservationHandler serves the public booking surface: intake,
// availability lookup, and the confirm/cancel links embedded in
// reservation mail.  All scheduling decisions happen in the services;
// handlers only bind, call and map errors.
type ReservationHandler struct {
	Booking *service.BookingService
}

// NewReservationHandler constructs the handler.
func NewReservationHandler(booking *service.BookingService) *ReservationHandler {
	if booking == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Booking: booking}
}

// Availability handles GET /v1/availability.  Query parameters: date,
// start_time, end_time, party_size.  It returns the ordered candidate
// table ids; an empty list means a request now would be waitlisted.
func (h *ReservationHandler) Availability(c echo.Context) error {
	partySize, err := strconv.Atoi(c.QueryParam("party_size"))
	if err != nil || partySize < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid party_size"})
	}
	tables, err := h.Booking.Availability(c.Request().Context(),
		c.QueryParam("date"), c.QueryParam("start_time"), c.QueryParam("end_time"), partySize)
	if err != nil {
		return writeError(c, err)
	}
	if tables == nil {
		tables = []string{}
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": tables})
}

// Create handles POST /v1/reservations.  The captcha middleware has
// already vetted the request.  A granted table yields 201 with the
// pending reservation; a full house yields 202 and a waiting-list
// entry.
func (h *ReservationHandler) Create(c echo.Context) error {
	var in service.BookingInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, waitlisted, err := h.Booking.Request(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	if waitlisted {
		return c.JSON(http.StatusAccepted, echo.Map{
			"reservation": res,
			"waitlisted":  true,
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"reservation": res,
		"waitlisted":  false,
	})
}

// Confirm handles GET /v1/reservations/confirm?code=...  It is the
// target of the confirmation link in reservation mail.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing confirmation code"})
	}
	res, err := h.Booking.ConfirmByCode(c.Request().Context(), code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Cancel handles GET /v1/reservations/cancel?code=...  It is the
// target of the cancellation link in reservation mail.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing cancellation code"})
	}
	res, err := h.Booking.CancelByCode(c.Request().Context(), code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}
