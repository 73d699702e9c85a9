package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no patient matches the lookup.
var ErrNotFound = errors.New("patient not found")

// Profile carries the optional demographic fields a facility may attach to an
// upload. Nil fields leave the stored value untouched.
type Profile struct {
	Name         *string `json:"name,omitempty"`
	Age          *int    `json:"age,omitempty"`
	Gender       *string `json:"gender,omitempty"`
	BloodType    *string `json:"blood_type,omitempty"`
	MedicalNotes *string `json:"medical_notes,omitempty"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetOrCreate looks up a patient by external identifier, creating the row on
// first sight. Supplied profile fields overwrite stored ones so the registry
// converges on the most recent demographics.
func (s *Service) GetOrCreate(ctx context.Context, identifier string, profile Profile) (*Patient, error) {
	if identifier == "" {
		return nil, fmt.Errorf("identifier is required")
	}

	p, err := s.repo.GetByIdentifier(ctx, identifier)
	if errors.Is(err, ErrNotFound) {
		p = &Patient{
			Identifier:   identifier,
			Name:         profile.Name,
			Age:          profile.Age,
			Gender:       profile.Gender,
			BloodType:    profile.BloodType,
			MedicalNotes: profile.MedicalNotes,
		}
		if err := s.repo.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create patient %s: %w", identifier, err)
		}
		return p, nil
	}
	if err != nil {
		return nil, err
	}

	if applyProfile(p, profile) {
		if err := s.repo.Update(ctx, p); err != nil {
			return nil, fmt.Errorf("update patient %s: %w", identifier, err)
		}
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByIdentifier(ctx context.Context, identifier string) (*Patient, error) {
	return s.repo.GetByIdentifier(ctx, identifier)
}

// RecordScanVisit bumps the scan counters after a successful upload.
func (s *Service) RecordScanVisit(ctx context.Context, id uuid.UUID, scannedAt time.Time) error {
	return s.repo.IncrementScanCount(ctx, id, scannedAt)
}

func applyProfile(p *Patient, profile Profile) bool {
	changed := false
	if profile.Name != nil {
		p.Name = profile.Name
		changed = true
	}
	if profile.Age != nil {
		p.Age = profile.Age
		changed = true
	}
	if profile.Gender != nil {
		p.Gender = profile.Gender
		changed = true
	}
	if profile.BloodType != nil {
		p.BloodType = profile.BloodType
		changed = true
	}
	if profile.MedicalNotes != nil {
		p.MedicalNotes = profile.MedicalNotes
		changed = true
	}
	return changed
}
