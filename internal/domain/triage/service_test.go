package triage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitaltriage/api/internal/domain/rag"
	"github.com/vitaltriage/api/pkg/clinical"
)

// -- Mocks --

type mockRetriever struct {
	cases          []*rag.HospitalCase
	history        *rag.PatientHistory
	caseQueries    int
	historyQueries int
}

func (m *mockRetriever) FindSimilarCases(_ context.Context, conditionNames []string) []*rag.HospitalCase {
	m.caseQueries++
	return m.cases
}

func (m *mockRetriever) GetPatientHistory(_ context.Context, patientID string) *rag.PatientHistory {
	m.historyQueries++
	return m.history
}

type mockReasoner struct {
	assessment *clinical.Assessment
	err        error
	lastPrompt string
}

func (m *mockReasoner) Assess(_ context.Context, prompt string) (*clinical.Assessment, error) {
	m.lastPrompt = prompt
	if m.err != nil {
		return nil, m.err
	}
	return m.assessment, nil
}

func evalContext() FacilityContext {
	return FacilityContext{
		Name:        "Plains Clinic",
		QueueLength: 2,
		CurrentTime: time.Date(2025, 8, 4, 10, 0, 0, 0, time.UTC),
	}
}

// -- Tests --

func TestEvaluateBackendDownFallsBack(t *testing.T) {
	retriever := &mockRetriever{cases: []*rag.HospitalCase{{Conditions: []string{"Pneumothorax"}, UrgencyScore: 10}}}
	reasoner := &mockReasoner{err: ErrBackendUnavailable}
	svc := NewService(retriever, reasoner, zerolog.Nop())

	a := svc.Evaluate(context.Background(),
		[]clinical.Finding{{Name: "Pneumothorax", Confidence: 0.95}},
		evalContext(), "")

	if a.UrgencyScore != 10 {
		t.Errorf("expected fallback urgency 10, got %v", a.UrgencyScore)
	}
	if a.RecommendedAction != clinical.ActionImmediate {
		t.Errorf("expected immediate, got %s", a.RecommendedAction)
	}
	if a.Confidence != clinical.ConfidenceMedium {
		t.Errorf("expected medium confidence, got %s", a.Confidence)
	}
	if !a.RAGEnabled {
		t.Error("expected rag_enabled true")
	}
	if a.HospitalCasesUsed != 1 {
		t.Errorf("expected 1 case used, got %d", a.HospitalCasesUsed)
	}
	if a.PatientHistoryFound {
		t.Error("expected patient_history_found false without identifier")
	}
	if retriever.historyQueries != 0 {
		t.Error("expected no history lookup without identifier")
	}
}

func TestEvaluateEmptyFindingsSkipsRetrieval(t *testing.T) {
	retriever := &mockRetriever{}
	reasoner := &mockReasoner{assessment: &clinical.Assessment{
		UrgencyScore:      2,
		Reasoning:         "Normal study.",
		RecommendedAction: clinical.ActionRoutine,
		RiskFactors:       []string{},
		Confidence:        clinical.ConfidenceHigh,
	}}
	svc := NewService(retriever, reasoner, zerolog.Nop())

	a := svc.Evaluate(context.Background(), nil, evalContext(), "")

	if retriever.caseQueries != 0 {
		t.Error("expected no case retrieval for empty findings")
	}
	if a.UrgencyScore != 2 || a.RecommendedAction != clinical.ActionRoutine {
		t.Errorf("expected passthrough assessment, got %+v", a)
	}
	if a.Confidence != clinical.ConfidenceHigh {
		t.Errorf("expected high confidence, got %s", a.Confidence)
	}
	if a.HospitalCasesUsed != 0 {
		t.Errorf("expected 0 cases used, got %d", a.HospitalCasesUsed)
	}
	if !a.RAGEnabled {
		t.Error("expected rag_enabled true")
	}
}

func TestEvaluateHistoryProvenance(t *testing.T) {
	age := 72
	retriever := &mockRetriever{history: &rag.PatientHistory{PatientID: "P12345", Age: &age}}
	reasoner := &mockReasoner{assessment: &clinical.Assessment{
		UrgencyScore:      6,
		Reasoning:         "Moderate concern.",
		RecommendedAction: clinical.ActionRoutine,
		RiskFactors:       []string{},
		Confidence:        clinical.ConfidenceMedium,
	}}
	svc := NewService(retriever, reasoner, zerolog.Nop())

	a := svc.Evaluate(context.Background(),
		[]clinical.Finding{{Name: "Nodule", Confidence: 0.5}},
		evalContext(), "P12345")

	if !a.PatientHistoryFound {
		t.Error("expected patient_history_found true")
	}
	if retriever.historyQueries != 1 {
		t.Errorf("expected 1 history lookup, got %d", retriever.historyQueries)
	}
}

func TestEvaluateHistoryFoundEvenWhenEmpty(t *testing.T) {
	// A merged history with empty fields still counts as found.
	retriever := &mockRetriever{history: &rag.PatientHistory{PatientID: "P67891"}}
	reasoner := &mockReasoner{err: ErrEmptyResponse}
	svc := NewService(retriever, reasoner, zerolog.Nop())

	a := svc.Evaluate(context.Background(),
		[]clinical.Finding{{Name: "Nodule", Confidence: 0.5}},
		evalContext(), "P67891")

	if !a.PatientHistoryFound {
		t.Error("expected patient_history_found true for empty-but-present history")
	}
}

func TestEvaluatePromptCarriesRetrievedContext(t *testing.T) {
	retriever := &mockRetriever{
		cases: []*rag.HospitalCase{{Conditions: []string{"Pneumonia"}, UrgencyScore: 6, Outcome: "Admitted", Similarity: 0.8}},
	}
	reasoner := &mockReasoner{assessment: FallbackScore(nil)}
	svc := NewService(retriever, reasoner, zerolog.Nop())

	svc.Evaluate(context.Background(),
		[]clinical.Finding{{Name: "Pneumonia", Confidence: 0.7}},
		evalContext(), "")

	if !strings.Contains(reasoner.lastPrompt, "HOSPITAL PATTERNS") {
		t.Error("expected retrieved cases rendered into prompt")
	}
	if !strings.Contains(reasoner.lastPrompt, "Pneumonia: 0.70 confidence") {
		t.Error("expected findings rendered into prompt")
	}
}
