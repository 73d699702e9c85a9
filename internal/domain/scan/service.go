package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vitaltriage/api/internal/domain/facility"
	"github.com/vitaltriage/api/internal/domain/patient"
	"github.com/vitaltriage/api/internal/domain/rag"
	"github.com/vitaltriage/api/internal/domain/triage"
	"github.com/vitaltriage/api/pkg/clinical"
)

// ErrNotFound is returned when no scan matches the lookup.
var ErrNotFound = errors.New("scan not found")

// Evaluator produces an assessment for a set of findings. Implemented by
// triage.Service.
type Evaluator interface {
	Evaluate(ctx context.Context, findings []clinical.Finding, fc triage.FacilityContext, patientID string) *clinical.Assessment
}

// PatientRegistry is the slice of the patient service an ingest needs.
type PatientRegistry interface {
	GetOrCreate(ctx context.Context, identifier string, profile patient.Profile) (*patient.Patient, error)
	RecordScanVisit(ctx context.Context, id uuid.UUID, scannedAt time.Time) error
}

// CaseRecorder folds a finalized scan back into retrieval memory. Implemented
// by rag.Service.
type CaseRecorder interface {
	RecordScan(ctx context.Context, in rag.RecordScanInput) error
}

// FacilityDirectory resolves the uploading facility.
type FacilityDirectory interface {
	GetFacility(ctx context.Context, id uuid.UUID) (*facility.Facility, error)
}

type Service struct {
	repo       Repository
	facilities FacilityDirectory
	patients   PatientRegistry
	evaluator  Evaluator
	recorder   CaseRecorder
	logger     zerolog.Logger
}

func NewService(repo Repository, facilities FacilityDirectory, patients PatientRegistry, evaluator Evaluator, recorder CaseRecorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		facilities: facilities,
		patients:   patients,
		evaluator:  evaluator,
		recorder:   recorder,
		logger:     logger,
	}
}

// IngestInput is one classifier result arriving from a facility.
type IngestInput struct {
	FacilityID        uuid.UUID
	Findings          []clinical.Finding
	PatientIdentifier string
	PatientProfile    patient.Profile
}

// Ingest runs the full upload pipeline: resolve the facility, register the
// patient, evaluate, persist the scan, then fold the result back into
// retrieval memory. Persistence failures surface to the caller; the two
// post-persist writes only log, so a stored scan is never reported as a
// failed upload.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (*Scan, error) {
	if err := clinical.ValidateFindings(in.Findings); err != nil {
		return nil, err
	}

	fac, err := s.facilities.GetFacility(ctx, in.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("resolve facility %s: %w", in.FacilityID, err)
	}

	var pat *patient.Patient
	if in.PatientIdentifier != "" {
		pat, err = s.patients.GetOrCreate(ctx, in.PatientIdentifier, in.PatientProfile)
		if err != nil {
			return nil, fmt.Errorf("register patient %s: %w", in.PatientIdentifier, err)
		}
	}

	queueLen, err := s.repo.CountPending(ctx, &in.FacilityID)
	if err != nil {
		s.logger.Warn().Err(err).Msg("pending count unavailable, evaluating with queue length 0")
		queueLen = 0
	}

	fc := triage.FacilityContext{
		Name:        fac.Name,
		QueueLength: queueLen,
		CurrentTime: time.Now(),
	}
	assessment := s.evaluator.Evaluate(ctx, in.Findings, fc, in.PatientIdentifier)

	sc := &Scan{
		FacilityID:          in.FacilityID,
		Findings:            in.Findings,
		UrgencyScore:        assessment.UrgencyScore,
		Reasoning:           assessment.Reasoning,
		RecommendedAction:   assessment.RecommendedAction,
		RiskFactors:         assessment.RiskFactors,
		AIConfidence:        assessment.Confidence,
		RAGEnabled:          assessment.RAGEnabled,
		HospitalCasesUsed:   assessment.HospitalCasesUsed,
		PatientHistoryFound: assessment.PatientHistoryFound,
		Status:              StatusPending,
	}
	if pat != nil {
		sc.PatientID = &pat.ID
	}
	if err := s.repo.Create(ctx, sc); err != nil {
		return nil, fmt.Errorf("store scan: %w", err)
	}

	s.recordOutcome(ctx, sc, fac, pat)
	return sc, nil
}

// recordOutcome performs the post-persist writes. Failures here must not undo
// an accepted upload, so everything is logged and swallowed.
func (s *Service) recordOutcome(ctx context.Context, sc *Scan, fac *facility.Facility, pat *patient.Patient) {
	in := rag.RecordScanInput{
		ScanID:            sc.ID.String(),
		Conditions:        conditionNames(sc.Findings),
		UrgencyScore:      sc.UrgencyScore,
		Reasoning:         sc.Reasoning,
		RecommendedAction: string(sc.RecommendedAction),
		RiskFactors:       sc.RiskFactors,
		FacilityType:      string(fac.Type),
	}
	if pat != nil {
		in.PatientIdentifier = pat.Identifier
		in.PatientAge = pat.Age
		in.PatientGender = pat.Gender
		in.TotalPreviousScans = pat.TotalScans
	}
	if err := s.recorder.RecordScan(ctx, in); err != nil {
		s.logger.Warn().Err(err).Str("scan_id", in.ScanID).Msg("scan not folded into retrieval memory")
	}

	if pat != nil {
		if err := s.patients.RecordScanVisit(ctx, pat.ID, sc.UploadedAt); err != nil {
			s.logger.Warn().Err(err).Str("patient_id", pat.Identifier).Msg("scan counters not updated")
		}
	}
}

func (s *Service) GetScan(ctx context.Context, id uuid.UUID) (*Scan, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus moves a scan through the review cycle.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !validStatuses[status] {
		return fmt.Errorf("invalid status: %s", status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

func conditionNames(findings []clinical.Finding) []string {
	var names []string
	for _, f := range findings {
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}
	return names
}
