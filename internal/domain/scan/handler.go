package scan

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vitaltriage/api/internal/domain/facility"
	"github.com/vitaltriage/api/internal/domain/patient"
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
	grp.POST("/scans", h.CreateScan)
	grp.GET("/scans/:id", h.GetScan)
	grp.GET("/stats", h.Stats)

	reviewGroup := api.Group("", auth.RequireRole(auth.RoleRadiologist))
	reviewGroup.PATCH("/scans/:id/status", h.UpdateStatus)
}

// CreateScanRequest is the body of an upload from a facility's classifier.
type CreateScanRequest struct {
	FacilityID        uuid.UUID          `json:"facility_id"`
	Findings          []clinical.Finding `json:"findings"`
	PatientIdentifier string             `json:"patient_identifier,omitempty"`
	PatientProfile    patient.Profile    `json:"patient_profile,omitempty"`
}

func (h *Handler) CreateScan(c echo.Context) error {
	var req CreateScanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.FacilityID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "facility_id is required")
	}
	if err := clinical.ValidateFindings(req.Findings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sc, err := h.svc.Ingest(c.Request().Context(), IngestInput{
		FacilityID:        req.FacilityID,
		Findings:          req.Findings,
		PatientIdentifier: req.PatientIdentifier,
		PatientProfile:    req.PatientProfile,
	})
	if errors.Is(err, facility.ErrNotFound) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown facility")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, sc)
}

func (h *Handler) GetScan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sc, err := h.svc.GetScan(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "scan not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sc)
}

// UpdateStatusRequest moves a scan to a new review state.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "scan not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id.String(), "status": string(req.Status)})
}

func (h *Handler) Stats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}
