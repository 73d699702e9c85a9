package triage

import (
	"strings"
	"testing"
	"time"

	"github.com/vitaltriage/api/internal/domain/rag"
	"github.com/vitaltriage/api/pkg/clinical"
)

func testFacility() FacilityContext {
	return FacilityContext{
		Name:        "St. Vincent Healthcare",
		QueueLength: 4,
		CurrentTime: time.Date(2025, 8, 4, 14, 30, 0, 0, time.UTC),
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	findings := []clinical.Finding{{Name: "Pneumothorax", Confidence: 0.95}}
	cases := []*rag.HospitalCase{{
		Conditions:   []string{"Pneumothorax"},
		UrgencyScore: 10,
		Outcome:      "ICU admission",
		Similarity:   0.91,
	}}

	first := BuildPrompt(findings, testFacility(), cases, nil)
	second := BuildPrompt(findings, testFacility(), cases, nil)
	if first != second {
		t.Error("expected identical prompts for identical inputs")
	}
}

func TestBuildPromptFindingsSection(t *testing.T) {
	prompt := BuildPrompt(
		[]clinical.Finding{{Name: "Effusion", Confidence: 0.73}},
		testFacility(), nil, nil,
	)

	if !strings.Contains(prompt, "- Effusion: 0.73 confidence") {
		t.Error("expected rendered finding line")
	}
	if !strings.Contains(prompt, "Current queue: 4 scans waiting") {
		t.Error("expected queue length")
	}
	if !strings.Contains(prompt, "14:30 on Monday") {
		t.Error("expected formatted time")
	}
}

func TestBuildPromptEmptyFindings(t *testing.T) {
	prompt := BuildPrompt(nil, testFacility(), nil, nil)
	if !strings.Contains(prompt, "No significant findings detected (appears normal)") {
		t.Error("expected normal-study placeholder")
	}
}

func TestBuildPromptHospitalCases(t *testing.T) {
	cases := []*rag.HospitalCase{
		{
			Conditions:             []string{"Pneumothorax"},
			UrgencyScore:           10,
			Outcome:                "Emergency chest tube",
			TimeToTreatmentMinutes: 8,
			Complications:          []string{"Tension_pneumothorax"},
			ClinicalNotes:          "Rapid deterioration",
			Similarity:             0.88,
		},
	}
	prompt := BuildPrompt(
		[]clinical.Finding{{Name: "Pneumothorax", Confidence: 0.9}},
		testFacility(), cases, nil,
	)

	for _, want := range []string{
		"HOSPITAL PATTERNS - Historical Cases:",
		"Case 1 (similarity: 0.88):",
		"Urgency: 10/10",
		"Outcome: Emergency chest tube",
		"Time to treatment: 8 minutes",
		"Complications: Tension_pneumothorax",
		"Notes: Rapid deterioration",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
}

func TestBuildPromptNoHistorySection(t *testing.T) {
	prompt := BuildPrompt(nil, testFacility(), nil, nil)
	if !strings.Contains(prompt, "New patient, no previous history available.") {
		t.Error("expected no-history section")
	}
}

func TestBuildPromptPatientHistorySection(t *testing.T) {
	age := 72
	gender := "M"
	history := &rag.PatientHistory{
		PatientID:         "P12345",
		Age:               &age,
		Gender:            &gender,
		ChronicConditions: []string{"COPD", "Diabetes"},
		RiskFactors:       []string{"Smoker_40_years"},
		ScanHistory: []rag.ScanEntry{
			{Date: "2025-06-15", Findings: []string{"Pneumothorax"}, Outcome: "ICU admission", Complications: []string{"Respiratory_failure"}},
			{Date: "2025-01-10", Findings: []string{"Emphysema"}, Outcome: "Stable"},
			{Date: "2024-07-01", Findings: []string{"Nodule"}, Outcome: "Follow-up"},
			{Date: "2024-01-01", Findings: []string{"Atelectasis"}, Outcome: "Resolved"},
		},
	}

	prompt := BuildPrompt(
		[]clinical.Finding{{Name: "Pneumothorax", Confidence: 0.9}},
		testFacility(), nil, history,
	)

	for _, want := range []string{
		"PATIENT-SPECIFIC CONTEXT - Individual Risk Profile:",
		"Age: 72",
		"Chronic Conditions: COPD, Diabetes",
		"Risk Factors: Smoker_40_years",
		"Previous Scans (4 total):",
		"ELDERLY PATIENT (age 72)",
		"COMORBIDITIES PRESENT: 2 chronic conditions",
		"PREVIOUS COMPLICATIONS:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}

	// Only the three most recent scans are rendered.
	if strings.Contains(prompt, "2024-01-01") {
		t.Error("expected fourth scan to be omitted")
	}
}

func TestBuildPromptAdjustmentRulesAndSchema(t *testing.T) {
	prompt := BuildPrompt(nil, testFacility(), nil, nil)
	for _, want := range []string{
		"comorbidities (COPD, CHF, diabetes), ADD 1-2 points",
		"elderly (>65), ADD 0.5-1 point",
		"history of complications with this condition, ADD 1-2 points",
		"young (<40) and healthy with no history, SUBTRACT 0.5-1 point",
		`"urgency_score":`,
		`"recommended_action":`,
		`"confidence":`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
}
