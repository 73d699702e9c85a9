package triage

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vitaltriage/api/internal/domain/rag"
	"github.com/vitaltriage/api/pkg/clinical"
)

// Retriever supplies the two RAG reads an evaluation depends on. Implemented
// by rag.Service; both methods degrade to empty results instead of failing.
type Retriever interface {
	FindSimilarCases(ctx context.Context, conditionNames []string) []*rag.HospitalCase
	GetPatientHistory(ctx context.Context, patientID string) *rag.PatientHistory
}

type Service struct {
	retriever Retriever
	reasoner  Reasoner
	logger    zerolog.Logger
}

func NewService(retriever Retriever, reasoner Reasoner, logger zerolog.Logger) *Service {
	return &Service{
		retriever: retriever,
		reasoner:  reasoner,
		logger:    logger,
	}
}

// Evaluate produces exactly one assessment for the given findings. The two
// context retrievals are independent and run concurrently; the reasoning call
// waits for both because the prompt depends on their results. Any reasoner
// error substitutes the fallback scorer, so the caller always gets an
// assessment. No writes happen here.
func (s *Service) Evaluate(ctx context.Context, findings []clinical.Finding, fc FacilityContext, patientID string) *clinical.Assessment {
	names := conditionNames(findings)

	var (
		cases   []*rag.HospitalCase
		history *rag.PatientHistory
		wg      sync.WaitGroup
	)

	if len(names) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cases = s.retriever.FindSimilarCases(ctx, names)
		}()
	}
	if patientID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			history = s.retriever.GetPatientHistory(ctx, patientID)
		}()
	}
	wg.Wait()

	prompt := BuildPrompt(findings, fc, cases, history)

	assessment, err := s.reasoner.Assess(ctx, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Str("facility", fc.Name).Msg("reasoning backend failed, using fallback scorer")
		assessment = FallbackScore(findings)
	}

	assessment.RAGEnabled = true
	assessment.HospitalCasesUsed = len(cases)
	assessment.PatientHistoryFound = history != nil
	return assessment
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
