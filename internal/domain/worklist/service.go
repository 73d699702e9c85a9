package worklist

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Order prioritizes a queue in place: urgency descending, with earlier arrival
// breaking ties. Wait times are recomputed against now, floored at zero so
// clock skew between the store and this process never produces a negative
// wait.
func Order(entries []*QueueEntry, now time.Time) {
	for _, e := range entries {
		wait := int(math.Round(now.Sub(e.UploadedAt).Minutes()))
		if wait < 0 {
			wait = 0
		}
		e.WaitMinutes = wait
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].UrgencyScore != entries[j].UrgencyScore {
			return entries[i].UrgencyScore > entries[j].UrgencyScore
		}
		return entries[i].UploadedAt.Before(entries[j].UploadedAt)
	})
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Queue returns the prioritized pending scans, optionally scoped to one
// facility. The ordering is recomputed on every call.
func (s *Service) Queue(ctx context.Context, facilityID *uuid.UUID) ([]*QueueEntry, error) {
	entries, err := s.repo.ListPending(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	Order(entries, time.Now())
	return entries, nil
}
