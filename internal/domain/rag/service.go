package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCaseLimit is how many similar cases a retrieval returns when the
// caller does not override it.
const DefaultCaseLimit = 3

type Service struct {
	cases     CaseRepository
	records   RecordRepository
	caseLimit int
	logger    zerolog.Logger
}

func NewService(cases CaseRepository, records RecordRepository, caseLimit int, logger zerolog.Logger) *Service {
	if caseLimit <= 0 {
		caseLimit = DefaultCaseLimit
	}
	return &Service{
		cases:     cases,
		records:   records,
		caseLimit: caseLimit,
		logger:    logger,
	}
}

// FindSimilarCases retrieves the historical cases most relevant to the given
// condition names. An empty condition list returns nothing without touching
// the store. Store failures degrade to an empty result with a warning, so
// retrieval can never abort an assessment.
func (s *Service) FindSimilarCases(ctx context.Context, conditionNames []string) []*HospitalCase {
	var names []string
	for _, n := range conditionNames {
		if n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil
	}

	cases, err := s.cases.FindSimilar(ctx, strings.Join(names, " "), s.caseLimit)
	if err != nil {
		s.logger.Warn().Err(err).Strs("conditions", names).Msg("hospital case retrieval failed")
		return nil
	}
	return cases
}

// GetPatientHistory fetches every record for the identifier and merges them.
// Returns nil both for an unknown patient and on store failure; the caller
// treats either as "no history available".
func (s *Service) GetPatientHistory(ctx context.Context, patientID string) *PatientHistory {
	if patientID == "" {
		return nil
	}
	records, err := s.records.ListByPatient(ctx, patientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", patientID).Msg("patient history lookup failed")
		return nil
	}
	return MergeHistory(records)
}

// RecordScanInput carries everything needed to fold a finalized scan back
// into institutional and patient memory.
type RecordScanInput struct {
	ScanID             string
	Conditions         []string
	UrgencyScore       float64
	Reasoning          string
	RecommendedAction  string
	RiskFactors        []string
	FacilityType       string
	PatientIdentifier  string
	PatientAge         *int
	PatientGender      *string
	TotalPreviousScans int
}

// RecordScan appends one HospitalCase and, when a patient identifier is
// present, one PatientRecord carrying this scan's entry. Pure appends: the
// merge of multiple records happens at read time.
func (s *Service) RecordScan(ctx context.Context, in RecordScanInput) error {
	outcome := strings.TrimSpace(in.RecommendedAction)
	if outcome == "" {
		outcome = "pending review"
	}
	diagnosis := "No significant findings"
	if len(in.Conditions) > 0 {
		diagnosis = strings.Join(in.Conditions, ", ")
	}
	facilityType := in.FacilityType
	if facilityType == "" {
		facilityType = "rural"
	}
	ageRange := ""
	if in.PatientAge != nil {
		ageRange = fmt.Sprintf("%d", *in.PatientAge)
	}

	hc := &HospitalCase{
		CaseID:          "scan-" + in.ScanID,
		Conditions:      in.Conditions,
		UrgencyScore:    in.UrgencyScore,
		Outcome:         outcome,
		FacilityType:    facilityType,
		PatientAgeRange: ageRange,
		FinalDiagnosis:  diagnosis,
		ClinicalNotes:   strings.TrimSpace(in.Reasoning),
	}
	if err := s.cases.Add(ctx, hc); err != nil {
		return fmt.Errorf("add hospital case: %w", err)
	}

	if in.PatientIdentifier == "" {
		s.logger.Info().Str("scan_id", in.ScanID).Msg("recorded scan (hospital case only)")
		return nil
	}

	rec := &PatientRecord{
		PatientID:   in.PatientIdentifier,
		Age:         in.PatientAge,
		Gender:      in.PatientGender,
		RiskFactors: in.RiskFactors,
		ScanHistory: []ScanEntry{{
			Date:     time.Now().UTC().Format("2006-01-02"),
			ScanID:   in.ScanID,
			Findings: in.Conditions,
			Urgency:  in.UrgencyScore,
			Outcome:  outcome,
		}},
		TotalPreviousScans: in.TotalPreviousScans,
	}
	if err := s.records.Append(ctx, rec); err != nil {
		return fmt.Errorf("append patient record: %w", err)
	}

	s.logger.Info().
		Str("scan_id", in.ScanID).
		Str("patient_id", in.PatientIdentifier).
		Msg("recorded scan (hospital case + patient record)")
	return nil
}
