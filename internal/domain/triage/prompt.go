package triage

import (
	"fmt"
	"strings"

	"github.com/vitaltriage/api/internal/domain/rag"
	"github.com/vitaltriage/api/pkg/clinical"
)

const sectionRule = "============================================================"

// BuildPrompt renders the structured reasoning request: findings, facility
// context, retrieved hospital cases, merged patient history, the adjustment
// rules, and the fixed output schema. Pure and deterministic: identical
// inputs always yield the identical prompt string.
func BuildPrompt(findings []clinical.Finding, fc FacilityContext, cases []*rag.HospitalCase, history *rag.PatientHistory) string {
	var b strings.Builder

	b.WriteString("You are an expert radiologist assistant evaluating chest X-ray findings for emergency triage in a rural hospital setting.\n\n")

	b.WriteString("DETECTED FINDINGS FROM AI ANALYSIS:\n")
	if len(findings) == 0 {
		b.WriteString("- No significant findings detected (appears normal)\n")
	} else {
		for _, f := range findings {
			fmt.Fprintf(&b, "- %s: %.2f confidence\n", f.Name, f.Confidence)
		}
	}

	b.WriteString("\nCLINICAL CONTEXT:\n")
	fmt.Fprintf(&b, "Facility: %s (rural hospital with limited ICU/specialist resources)\n", fc.Name)
	fmt.Fprintf(&b, "Current queue: %d scans waiting\n", fc.QueueLength)
	fmt.Fprintf(&b, "Time: %s\n", fc.CurrentTime.Format("15:04 on Monday"))

	writeHospitalSection(&b, cases)
	writePatientSection(&b, history)

	b.WriteString(`
ASSESSMENT INSTRUCTIONS:
1. Start with hospital pattern baseline urgency
2. If patient has comorbidities (COPD, CHF, diabetes), ADD 1-2 points
3. If patient is elderly (>65), ADD 0.5-1 point
4. If patient has history of complications with this condition, ADD 1-2 points
5. If patient is young (<40) and healthy with no history, SUBTRACT 0.5-1 point
6. Consider: same finding carries different urgency depending on patient risk

Final urgency should reflect BOTH what usually happens (hospital patterns)
AND this specific patient's risk profile.

URGENCY SCALE:
- 9-10: Immediate life threat (pneumothorax, massive hemorrhage, etc.) - see within 5-10 minutes
- 7-8: Urgent findings requiring rapid intervention (large effusion, significant pneumonia, etc.) - see within 30-60 minutes
- 5-6: Moderate findings needing attention but not immediately critical - see within 2-4 hours
- 3-4: Minor findings, routine follow-up sufficient - see within 8-12 hours
- 1-2: No significant findings or incidental findings only - routine review

Respond ONLY with valid JSON in this exact format (no markdown, no code blocks, just raw JSON):
{
  "urgency_score": <number between 1-10>,
  "reasoning": "<2-3 sentence clinical explanation of urgency assessment>",
  "recommended_action": "<one of: immediate | urgent | routine>",
  "risk_factors": ["<factor1>", "<factor2>", ...],
  "confidence": "<one of: high | medium | low>"
}

JSON response:`)

	return b.String()
}

func writeHospitalSection(b *strings.Builder, cases []*rag.HospitalCase) {
	if len(cases) == 0 {
		return
	}
	b.WriteString("\nHOSPITAL PATTERNS - Historical Cases:\n")
	b.WriteString(sectionRule + "\n")
	for i, c := range cases {
		fmt.Fprintf(b, "\nCase %d (similarity: %.2f):\n", i+1, c.Similarity)
		fmt.Fprintf(b, "  Conditions: %s\n", strings.Join(c.Conditions, ", "))
		fmt.Fprintf(b, "  Urgency: %g/10\n", c.UrgencyScore)
		fmt.Fprintf(b, "  Outcome: %s\n", c.Outcome)
		fmt.Fprintf(b, "  Time to treatment: %g minutes\n", c.TimeToTreatmentMinutes)
		if len(c.Complications) > 0 {
			fmt.Fprintf(b, "  Complications: %s\n", strings.Join(c.Complications, ", "))
		}
		if c.ClinicalNotes != "" {
			fmt.Fprintf(b, "  Notes: %s\n", c.ClinicalNotes)
		}
	}
	b.WriteString("\n" + sectionRule + "\n")
}

func writePatientSection(b *strings.Builder, history *rag.PatientHistory) {
	if history == nil {
		b.WriteString("\nPATIENT CONTEXT: New patient, no previous history available.\n")
		b.WriteString("Assessment based on current findings and hospital patterns only.\n")
		return
	}

	b.WriteString("\nPATIENT-SPECIFIC CONTEXT - Individual Risk Profile:\n")
	b.WriteString(sectionRule + "\n")
	b.WriteString("\nDemographics:\n")
	if history.Age != nil {
		fmt.Fprintf(b, "  Age: %d\n", *history.Age)
	} else {
		b.WriteString("  Age: Unknown\n")
	}
	if history.Gender != nil {
		fmt.Fprintf(b, "  Gender: %s\n", *history.Gender)
	} else {
		b.WriteString("  Gender: Unknown\n")
	}

	if len(history.ChronicConditions) > 0 {
		fmt.Fprintf(b, "\nChronic Conditions: %s\n", strings.Join(history.ChronicConditions, ", "))
		b.WriteString("  WARNING: These increase baseline risk significantly.\n")
	}
	if len(history.RiskFactors) > 0 {
		fmt.Fprintf(b, "\nRisk Factors: %s\n", strings.Join(history.RiskFactors, ", "))
	}

	if len(history.ScanHistory) > 0 {
		fmt.Fprintf(b, "\nPrevious Scans (%d total):\n", len(history.ScanHistory))
		recent := history.ScanHistory
		if len(recent) > 3 {
			recent = recent[:3]
		}
		for _, scan := range recent {
			fmt.Fprintf(b, "  - %s: %s\n", scan.Date, strings.Join(scan.Findings, ", "))
			fmt.Fprintf(b, "    Outcome: %s\n", scan.Outcome)
			if len(scan.Complications) > 0 {
				fmt.Fprintf(b, "    Complications: %s\n", strings.Join(scan.Complications, ", "))
			}
		}
	}

	b.WriteString("\n" + sectionRule + "\n")
	b.WriteString("\nCRITICAL: This patient has documented history.\n")
	if history.Age != nil && *history.Age > 65 {
		fmt.Fprintf(b, "ELDERLY PATIENT (age %d): Significantly higher risk.\n", *history.Age)
	}
	if len(history.ChronicConditions) > 0 {
		fmt.Fprintf(b, "COMORBIDITIES PRESENT: %d chronic conditions increase urgency.\n", len(history.ChronicConditions))
	}
	if history.HasComplications() {
		b.WriteString("PREVIOUS COMPLICATIONS: History of adverse outcomes. Err on the side of caution.\n")
	}
}
