package triage

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vitaltriage/api/internal/platform/auth"
	"github.com/vitaltriage/api/pkg/clinical"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	grp := api.Group("", auth.RequireRole(auth.RoleRadiologist, auth.RoleTechnologist))
	grp.POST("/triage/evaluate", h.Evaluate)
}

// EvaluateRequest asks for an assessment without persisting anything.
type EvaluateRequest struct {
	Findings     []clinical.Finding `json:"findings"`
	FacilityName string             `json:"facility_name"`
	QueueLength  int                `json:"queue_length"`
	PatientID    string             `json:"patient_id,omitempty"`
}

func (h *Handler) Evaluate(c echo.Context) error {
	var req EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := clinical.ValidateFindings(req.Findings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.FacilityName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "facility_name is required")
	}
	if req.QueueLength < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "queue_length must not be negative")
	}

	fc := FacilityContext{
		Name:        req.FacilityName,
		QueueLength: req.QueueLength,
		CurrentTime: time.Now(),
	}
	assessment := h.svc.Evaluate(c.Request().Context(), req.Findings, fc, req.PatientID)
	return c.JSON(http.StatusOK, assessment)
}
