package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goldenfork/reservation-api/internal/schedule"
	"github.com/goldenfork/reservation-api/internal/service"
)

// WaitlistHandler serves the back-office waiting list: automatic
// promotion, manual reassignment at a proposed interval, and
// declining a request.
type WaitlistHandler struct {
	Waitlist *service.WaitlistService
}

// NewWaitlistHandler constructs the handler.
func NewWaitlistHandler(waitlist *service.WaitlistService) *WaitlistHandler {
	if waitlist == nil {
		panic("nil service passed to NewWaitlistHandler")
	}
	return &WaitlistHandler{Waitlist: waitlist}
}

// List handles GET /v1/admin/waitlist, newest requests first.
func (h *WaitlistHandler) List(c echo.Context) error {
	waiting, err := h.Waitlist.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"waitlist": waiting})
}

// Promote handles POST /v1/admin/waitlist/:id/promote.  When no table
// fits the original interval the response carries the candidate
// tables and the day's reservations so the operator can propose an
// alternative.
func (h *WaitlistHandler) Promote(c echo.Context) error {
	res, err := h.Waitlist.Promote(c.Request().Context(), c.Param("id"))
	if err != nil {
		var manual *service.ManualAssignmentRequired
		if errors.As(err, &manual) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":        "manual reassignment required",
				"reservation":  manual.Reservation,
				"tables":       manual.Tables,
				"reservations": manual.Reservations,
			})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// PromoteAt handles POST /v1/admin/waitlist/:id/promote-at with a
// JSON body carrying the proposed interval.  When nothing is free at
// the proposal the record stays on the waiting list.
func (h *WaitlistHandler) PromoteAt(c echo.Context) error {
	var proposal schedule.ProposedInterval
	if err := c.Bind(&proposal); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Waitlist.PromoteAt(c.Request().Context(), c.Param("id"), proposal)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Decline handles POST /v1/admin/waitlist/:id/decline.  The record is
// cancelled and the requester is notified that no slot could be
// offered.
func (h *WaitlistHandler) Decline(c echo.Context) error {
	res, err := h.Waitlist.Decline(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}
