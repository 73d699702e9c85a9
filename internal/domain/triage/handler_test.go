package triage

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vitaltriage/api/pkg/clinical"
)

func newTestHandler(reasoner Reasoner) (*Handler, *echo.Echo) {
	svc := NewService(&mockRetriever{}, reasoner, zerolog.Nop())
	return NewHandler(svc), echo.New()
}

func TestHandler_Evaluate(t *testing.T) {
	h, e := newTestHandler(&mockReasoner{err: ErrBackendUnavailable})

	body := `{"findings":[{"name":"Pneumothorax","confidence":0.95}],"facility_name":"Missoula Community ER","queue_length":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/triage/evaluate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Evaluate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var a clinical.Assessment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if a.UrgencyScore != 10 || a.RecommendedAction != clinical.ActionImmediate {
		t.Errorf("expected fallback assessment for pneumothorax, got %+v", a)
	}
}

func TestHandler_Evaluate_BadRequest(t *testing.T) {
	h, e := newTestHandler(&mockReasoner{err: ErrBackendUnavailable})

	cases := []struct {
		name string
		body string
	}{
		{"missing facility", `{"findings":[{"name":"Mass","confidence":0.5}]}`},
		{"confidence out of range", `{"findings":[{"name":"Mass","confidence":1.5}],"facility_name":"Plains Clinic"}`},
		{"negative queue", `{"findings":[],"facility_name":"Plains Clinic","queue_length":-1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/triage/evaluate", strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h.Evaluate(c)
			if err == nil {
				t.Fatal("expected error")
			}
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %v", err)
			}
		})
	}
}
