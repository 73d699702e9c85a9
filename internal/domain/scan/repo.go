package scan

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *Scan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Scan, error)
	ListPending(ctx context.Context, facilityID *uuid.UUID) ([]*Scan, error)
	CountPending(ctx context.Context, facilityID *uuid.UUID) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Stats(ctx context.Context) (*Stats, error)
}
