package triage

import (
	"fmt"

	"github.com/vitaltriage/api/pkg/clinical"
)

// fallbackUrgency maps condition names to rule-based urgency scores, used
// whenever the reasoning backend cannot produce an assessment. Unlisted
// findings score 3.
var fallbackUrgency = map[string]float64{
	"Pneumothorax":     10,
	"Edema":            8,
	"Effusion":         7,
	"Pleural_Effusion": 7,
	"Infiltration":     6,
	"Pneumonia":        6,
	"Consolidation":    6,
	"Lung Opacity":     6,
	"Mass":             5,
	"Cardiomegaly":     4,
	"Nodule":           4,
	"Atelectasis":      3,
}

const fallbackDefaultUrgency = 3

// FallbackScore produces a deterministic rule-based assessment. Pure and
// total: it never fails and performs no I/O. Urgency is the maximum table
// score over the findings; empty findings score exactly 0 with a routine
// action. Confidence stays "medium" to mark rule-based certainty.
func FallbackScore(findings []clinical.Finding) *clinical.Assessment {
	if len(findings) == 0 {
		return &clinical.Assessment{
			UrgencyScore:      0,
			Reasoning:         "No significant findings detected.",
			RecommendedAction: clinical.ActionRoutine,
			RiskFactors:       []string{},
			Confidence:        clinical.ConfidenceMedium,
		}
	}

	top := findings[0]
	urgency := urgencyFor(top.Name)
	for _, f := range findings[1:] {
		if u := urgencyFor(f.Name); u > urgency {
			urgency = u
			top = f
		}
	}

	riskFactors := make([]string, 0, len(findings))
	for _, f := range findings {
		if f.Name != "" {
			riskFactors = append(riskFactors, f.Name)
		}
	}

	return &clinical.Assessment{
		UrgencyScore: urgency,
		Reasoning: fmt.Sprintf(
			"Detected %s with %.2f confidence. Using fallback urgency (reasoning backend unavailable).",
			top.Name, top.Confidence),
		RecommendedAction: clinical.ActionForUrgency(urgency),
		RiskFactors:       riskFactors,
		Confidence:        clinical.ConfidenceMedium,
	}
}

func urgencyFor(name string) float64 {
	if u, ok := fallbackUrgency[name]; ok {
		return u
	}
	return fallbackDefaultUrgency
}
