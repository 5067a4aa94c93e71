package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goldenfork/reservation-api/internal/model"
	"github.com/goldenfork/reservation-api/internal/repository"
	"github.com/goldenfork/reservation-api/internal/schedule"
	"github.com/goldenfork/reservation-api/internal/service"
)

// writeError maps engine errors onto HTTP responses.  The mapping is
// deliberately coarse: callers get enough to act (retry, waitlist,
// fix input) without leaking store internals.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, schedule.ErrInvalidInterval), errors.Is(err, schedule.ErrInvalidPartySize):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, schedule.ErrCapacityExceeded):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrTableNotEligible), errors.Is(err, service.ErrNotWaitlisted), errors.Is(err, service.ErrNoTableForProposal):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrCodeNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid or expired link"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrTableExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
