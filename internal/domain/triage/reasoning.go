package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vitaltriage/api/pkg/clinical"
)

// Sentinel errors returned by Reasoner implementations. The orchestrator
// matches these with errors.Is to choose the fallback path; raw transport
// errors never reach it.
var (
	ErrBackendUnavailable = errors.New("reasoning backend unavailable")
	ErrEmptyResponse      = errors.New("empty response from reasoning backend")
)

// Reasoner produces an assessment from a rendered prompt. One round trip per
// call, no retries. Implementations own all backend-specific error handling
// and return one of the sentinel errors above on failure.
type Reasoner interface {
	Assess(ctx context.Context, prompt string) (*clinical.Assessment, error)
}

// DisabledReasoner reports the backend unavailable on every call, so each
// evaluation takes the rule-based fallback path. Used when no reasoning
// backend is configured.
type DisabledReasoner struct{}

func (DisabledReasoner) Assess(context.Context, string) (*clinical.Assessment, error) {
	return nil, ErrBackendUnavailable
}

// GeminiClient calls a Gemini-style generateContent HTTP endpoint.
type GeminiClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewGeminiClient(baseURL, apiKey, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Assess sends the prompt to the backend and parses the structured response.
// Transport failures and empty responses come back as sentinel errors; a
// malformed response body still yields a degraded but valid assessment.
func (c *GeminiClient) Assess(ctx context.Context, prompt string) (*clinical.Assessment, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrBackendUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyResponse, err)
	}

	text := responseText(gr)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	return ParseAssessment(text), nil
}

func responseText(gr generateResponse) string {
	var b strings.Builder
	for _, cand := range gr.Candidates {
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

type assessmentPayload struct {
	UrgencyScore      *float64  `json:"urgency_score"`
	Reasoning         *string   `json:"reasoning"`
	RecommendedAction *string   `json:"recommended_action"`
	RiskFactors       *[]string `json:"risk_factors"`
	Confidence        string    `json:"confidence"`
}

// ParseAssessment decodes the backend's JSON payload into an assessment.
// Strips optional markdown code fences, requires urgency_score, reasoning,
// recommended_action and risk_factors, clamps the score to [1,10], and
// defaults a missing confidence to "medium". Any parse failure yields a
// fixed degraded assessment instead of an error: triage must always return
// something actionable.
func ParseAssessment(text string) *clinical.Assessment {
	cleaned := stripCodeFences(text)

	var payload assessmentPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return degradedAssessment()
	}
	if payload.UrgencyScore == nil || payload.Reasoning == nil ||
		payload.RecommendedAction == nil || payload.RiskFactors == nil {
		return degradedAssessment()
	}

	confidence := clinical.Confidence(payload.Confidence)
	if confidence == "" {
		confidence = clinical.ConfidenceMedium
	}

	return &clinical.Assessment{
		UrgencyScore:      clinical.ClampUrgency(*payload.UrgencyScore),
		Reasoning:         *payload.Reasoning,
		RecommendedAction: clinical.Action(*payload.RecommendedAction),
		RiskFactors:       *payload.RiskFactors,
		Confidence:        confidence,
	}
}

func degradedAssessment() *clinical.Assessment {
	return &clinical.Assessment{
		UrgencyScore:      5.0,
		Reasoning:         "Unable to parse AI reasoning. Using default urgency.",
		RecommendedAction: clinical.ActionUrgent,
		RiskFactors:       []string{"parsing_error"},
		Confidence:        clinical.ConfidenceLow,
	}
}

// stripCodeFences removes a surrounding markdown code block, with or without
// a json language tag, and returns the inner payload.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	parts := strings.Split(cleaned, "```")
	if len(parts) < 2 {
		return cleaned
	}
	block := parts[1]
	if strings.HasPrefix(strings.ToLower(block), "json") {
		block = block[4:]
	}
	return strings.TrimSpace(block)
}
