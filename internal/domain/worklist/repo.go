package worklist

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	ListPending(ctx context.Context, facilityID *uuid.UUID) ([]*QueueEntry, error)
}
