package worklist

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vitaltriage/api/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	grp := api.Group("", auth.RequireRole(auth.RoleRadiologist, auth.RoleTechnologist))
	grp.GET("/worklist", h.GetWorklist)
}

func (h *Handler) GetWorklist(c echo.Context) error {
	var facilityID *uuid.UUID
	if raw := c.QueryParam("facility_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid facility_id")
		}
		facilityID = &id
	}

	entries, err := h.svc.Queue(c.Request().Context(), facilityID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []*QueueEntry{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"queue": entries,
		"count": len(entries),
	})
}
