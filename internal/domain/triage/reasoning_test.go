package triage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vitaltriage/api/pkg/clinical"
)

func TestParseAssessmentValid(t *testing.T) {
	a := ParseAssessment(`{
		"urgency_score": 8.5,
		"reasoning": "Large effusion with respiratory compromise.",
		"recommended_action": "urgent",
		"risk_factors": ["Effusion", "COPD"],
		"confidence": "high"
	}`)

	if a.UrgencyScore != 8.5 {
		t.Errorf("expected 8.5, got %v", a.UrgencyScore)
	}
	if a.RecommendedAction != clinical.ActionUrgent {
		t.Errorf("expected urgent, got %s", a.RecommendedAction)
	}
	if a.Confidence != clinical.ConfidenceHigh {
		t.Errorf("expected high, got %s", a.Confidence)
	}
	if len(a.RiskFactors) != 2 {
		t.Errorf("unexpected risk factors: %v", a.RiskFactors)
	}
}

func TestParseAssessmentStripsCodeFences(t *testing.T) {
	inputs := []string{
		"```json\n{\"urgency_score\": 3, \"reasoning\": \"r\", \"recommended_action\": \"routine\", \"risk_factors\": []}\n```",
		"```\n{\"urgency_score\": 3, \"reasoning\": \"r\", \"recommended_action\": \"routine\", \"risk_factors\": []}\n```",
	}
	for _, in := range inputs {
		a := ParseAssessment(in)
		if a.UrgencyScore != 3 {
			t.Errorf("expected 3 for %q, got %v", in, a.UrgencyScore)
		}
	}
}

func TestParseAssessmentClampsScore(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`{"urgency_score": 0, "reasoning": "r", "recommended_action": "routine", "risk_factors": []}`, 1},
		{`{"urgency_score": -3, "reasoning": "r", "recommended_action": "routine", "risk_factors": []}`, 1},
		{`{"urgency_score": 15, "reasoning": "r", "recommended_action": "immediate", "risk_factors": []}`, 10},
		{`{"urgency_score": 5.5, "reasoning": "r", "recommended_action": "urgent", "risk_factors": []}`, 5.5},
	}
	for _, tt := range tests {
		if a := ParseAssessment(tt.raw); a.UrgencyScore != tt.want {
			t.Errorf("score for %s: expected %v, got %v", tt.raw, tt.want, a.UrgencyScore)
		}
	}
}

func TestParseAssessmentDefaultsConfidence(t *testing.T) {
	a := ParseAssessment(`{"urgency_score": 4, "reasoning": "r", "recommended_action": "routine", "risk_factors": []}`)
	if a.Confidence != clinical.ConfidenceMedium {
		t.Errorf("expected medium, got %s", a.Confidence)
	}
}

func TestParseAssessmentDegradedOnFailure(t *testing.T) {
	inputs := []string{
		"not json at all",
		`{"urgency_score": 5}`,
		`{"reasoning": "r", "recommended_action": "urgent", "risk_factors": []}`,
		"",
	}
	for _, in := range inputs {
		a := ParseAssessment(in)
		if a.UrgencyScore != 5.0 {
			t.Errorf("degraded score for %q: expected 5.0, got %v", in, a.UrgencyScore)
		}
		if a.RecommendedAction != clinical.ActionUrgent {
			t.Errorf("degraded action for %q: expected urgent, got %s", in, a.RecommendedAction)
		}
		if a.Confidence != clinical.ConfidenceLow {
			t.Errorf("degraded confidence for %q: expected low, got %s", in, a.Confidence)
		}
		if len(a.RiskFactors) != 1 || a.RiskFactors[0] != "parsing_error" {
			t.Errorf("degraded risk factors for %q: got %v", in, a.RiskFactors)
		}
	}
}

func geminiResponse(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + jsonString(text) + `}]}}]}`
}

func jsonString(s string) string {
	out := `"`
	for _, r := range s {
		switch r {
		case '"':
			out += `\"`
		case '\\':
			out += `\\`
		case '\n':
			out += `\n`
		default:
			out += string(r)
		}
	}
	return out + `"`
}

func TestGeminiClientAssess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.0-flash:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "key-1" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiResponse(
			`{"urgency_score": 7, "reasoning": "r", "recommended_action": "urgent", "risk_factors": [], "confidence": "high"}`,
		)))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "key-1", "gemini-2.0-flash", 5*time.Second)
	a, err := c.Assess(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if a.UrgencyScore != 7 || a.RecommendedAction != clinical.ActionUrgent {
		t.Errorf("unexpected assessment: %+v", a)
	}
}

func TestGeminiClientBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "", "gemini-2.0-flash", 5*time.Second)
	_, err := c.Assess(context.Background(), "prompt")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestGeminiClientUnreachable(t *testing.T) {
	c := NewGeminiClient("http://127.0.0.1:1", "", "gemini-2.0-flash", 500*time.Millisecond)
	_, err := c.Assess(context.Background(), "prompt")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestGeminiClientEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "", "gemini-2.0-flash", 5*time.Second)
	_, err := c.Assess(context.Background(), "prompt")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
