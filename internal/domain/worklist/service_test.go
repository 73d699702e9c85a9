package worklist

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	entries        []*QueueEntry
	lastFacilityID *uuid.UUID
}

func (m *mockRepo) ListPending(_ context.Context, facilityID *uuid.UUID) ([]*QueueEntry, error) {
	m.lastFacilityID = facilityID
	return m.entries, nil
}

func entry(urgency float64, uploadedAt time.Time) *QueueEntry {
	return &QueueEntry{ScanID: uuid.New(), UrgencyScore: urgency, UploadedAt: uploadedAt}
}

func TestOrderUrgencyFirst(t *testing.T) {
	now := time.Date(2025, 8, 4, 10, 30, 0, 0, time.UTC)
	low := entry(3, now.Add(-2*time.Hour))
	high := entry(9, now.Add(-5*time.Minute))
	mid := entry(6, now.Add(-1*time.Hour))
	entries := []*QueueEntry{low, high, mid}

	Order(entries, now)

	if entries[0] != high || entries[1] != mid || entries[2] != low {
		t.Errorf("wrong order: %v, %v, %v",
			entries[0].UrgencyScore, entries[1].UrgencyScore, entries[2].UrgencyScore)
	}
}

func TestOrderArrivalBreaksTies(t *testing.T) {
	now := time.Date(2025, 8, 4, 10, 30, 0, 0, time.UTC)
	later := entry(8, now.Add(-30*time.Minute))   // arrived 10:00
	earlier := entry(8, now.Add(-40*time.Minute)) // arrived 09:50
	entries := []*QueueEntry{later, earlier}

	Order(entries, now)

	if entries[0] != earlier || entries[1] != later {
		t.Error("expected the earlier arrival first at equal urgency")
	}
}

func TestOrderWaitMinutes(t *testing.T) {
	now := time.Date(2025, 8, 4, 10, 30, 0, 0, time.UTC)
	waited := entry(5, now.Add(-90*time.Minute))
	rounded := entry(5, now.Add(-150*time.Second))
	future := entry(5, now.Add(2*time.Minute)) // store clock ahead of ours

	entries := []*QueueEntry{waited, rounded, future}
	Order(entries, now)

	if waited.WaitMinutes != 90 {
		t.Errorf("expected 90 minutes, got %d", waited.WaitMinutes)
	}
	if rounded.WaitMinutes != 3 {
		t.Errorf("expected 2.5 minutes to round to 3, got %d", rounded.WaitMinutes)
	}
	if future.WaitMinutes != 0 {
		t.Errorf("expected future upload floored to 0, got %d", future.WaitMinutes)
	}
}

func TestQueuePassesFacilityFilter(t *testing.T) {
	repo := &mockRepo{entries: []*QueueEntry{entry(4, time.Now().Add(-time.Minute))}}
	svc := NewService(repo)

	facID := uuid.New()
	entries, err := svc.Queue(context.Background(), &facID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if repo.lastFacilityID == nil || *repo.lastFacilityID != facID {
		t.Error("expected facility filter passed through to the repository")
	}
}
