package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	byID         map[uuid.UUID]*Patient
	byIdentifier map[string]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byID:         make(map[uuid.UUID]*Patient),
		byIdentifier: make(map[string]*Patient),
	}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.byID[p.ID] = p
	m.byIdentifier[p.Identifier] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByIdentifier(_ context.Context, identifier string) (*Patient, error) {
	p, ok := m.byIdentifier[identifier]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.byID[p.ID] = p
	m.byIdentifier[p.Identifier] = p
	return nil
}

func (m *mockRepo) IncrementScanCount(_ context.Context, id uuid.UUID, scannedAt time.Time) error {
	p, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.TotalScans++
	if p.FirstScanAt == nil {
		p.FirstScanAt = &scannedAt
	}
	p.LastScanAt = &scannedAt
	return nil
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// -- Tests --

func TestGetOrCreateNewPatient(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.GetOrCreate(context.Background(), "MT-0042", Profile{
		Age:    intPtr(67),
		Gender: strPtr("F"),
	})
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if p.Identifier != "MT-0042" {
		t.Errorf("unexpected identifier: %s", p.Identifier)
	}
	if p.Age == nil || *p.Age != 67 {
		t.Errorf("expected age 67, got %v", p.Age)
	}
}

func TestGetOrCreateExistingUpdatesSuppliedFields(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	first, err := svc.GetOrCreate(context.Background(), "MT-0042", Profile{
		Age:    intPtr(66),
		Gender: strPtr("F"),
	})
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	// Age supplied, gender omitted: only age should change.
	second, err := svc.GetOrCreate(context.Background(), "MT-0042", Profile{Age: intPtr(67)})
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	if second.ID != first.ID {
		t.Error("expected same patient row")
	}
	if second.Age == nil || *second.Age != 67 {
		t.Errorf("expected updated age 67, got %v", second.Age)
	}
	if second.Gender == nil || *second.Gender != "F" {
		t.Errorf("expected gender preserved, got %v", second.Gender)
	}
}

func TestGetOrCreateRequiresIdentifier(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.GetOrCreate(context.Background(), "", Profile{}); err == nil {
		t.Error("expected error for missing identifier")
	}
}

func TestRecordScanVisit(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p, err := svc.GetOrCreate(context.Background(), "MT-0099", Profile{})
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)
	if err := svc.RecordScanVisit(context.Background(), p.ID, t1); err != nil {
		t.Fatalf("RecordScanVisit: %v", err)
	}
	if err := svc.RecordScanVisit(context.Background(), p.ID, t2); err != nil {
		t.Fatalf("RecordScanVisit: %v", err)
	}

	got, err := svc.GetPatient(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetPatient: %v", err)
	}
	if got.TotalScans != 2 {
		t.Errorf("expected 2 scans, got %d", got.TotalScans)
	}
	if got.FirstScanAt == nil || !got.FirstScanAt.Equal(t1) {
		t.Errorf("unexpected first scan time: %v", got.FirstScanAt)
	}
	if got.LastScanAt == nil || !got.LastScanAt.Equal(t2) {
		t.Errorf("unexpected last scan time: %v", got.LastScanAt)
	}
}
