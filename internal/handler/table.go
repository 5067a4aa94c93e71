package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/goldenfork/reservation-api/internal/model"
	"github.com/goldenfork/reservation-api/internal/repository"
	"github.com/goldenfork/reservation-api/internal/store"
)

// TableHandler serves the floor layout: a public read-only listing and
// the admin CRUD used to add, retire and repair tables.
type TableHandler struct {
	Tables *repository.TableRepo
}

// NewTableHandler constructs the handler.
func NewTableHandler(tables *repository.TableRepo) *TableHandler {
	if tables == nil {
		panic("nil repository passed to NewTableHandler")
	}
	return &TableHandler{Tables: tables}
}

// List handles GET /v1/tables.  The route sits behind the response
// cache; table data changes rarely.
func (h *TableHandler) List(c echo.Context) error {
	tables, err := h.Tables.All(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	if tables == nil {
		tables = []model.Table{}
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": tables})
}

type tableInput struct {
	TableID  string `json:"table_id"`
	Capacity int    `json:"capacity"`
	Type     string `json:"type"`
	Status   string `json:"status"`
}

// Create handles POST /v1/admin/tables.  Capacity must be one of the
// fixed tiers; status defaults to available.
func (h *TableHandler) Create(c echo.Context) error {
	var in tableInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if in.TableID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id is required"})
	}
	if !model.ValidCapacity(in.Capacity) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be one of the fixed tiers"})
	}
	if in.Status == "" {
		in.Status = model.TableAvailable
	}
	if in.Status != model.TableAvailable && in.Status != model.TableUnderRepair {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table status"})
	}
	now := time.Now().UTC()
	t := model.Table{
		TableID:   in.TableID,
		Capacity:  in.Capacity,
		Type:      in.Type,
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Tables.Create(c.Request().Context(), &t); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"table": t})
}

// Update handles PATCH /v1/admin/tables/:id.  Only provided fields
// are patched; the business id is immutable.
func (h *TableHandler) Update(c echo.Context) error {
	var in struct {
		Capacity *int    `json:"capacity"`
		Type     *string `json:"type"`
		Status   *string `json:"status"`
	}
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	patch := store.Patch{}
	if in.Capacity != nil {
		if !model.ValidCapacity(*in.Capacity) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be one of the fixed tiers"})
		}
		patch["capacity"] = *in.Capacity
	}
	if in.Type != nil {
		patch["type"] = *in.Type
	}
	if in.Status != nil {
		if *in.Status != model.TableAvailable && *in.Status != model.TableUnderRepair {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table status"})
		}
		patch["status"] = *in.Status
	}
	if len(patch) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	patch["updated_at"] = time.Now().UTC()
	if err := h.Tables.Update(c.Request().Context(), c.Param("id"), patch); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Delete handles DELETE /v1/admin/tables/:id.
func (h *TableHandler) Delete(c echo.Context) error {
	if err := h.Tables.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
