package driven

import (
	"context"

	"github.com/prpatrol/prpatrol/internal/domain/model"
)

// CycleStore defines the driven port for persisting review-cycle audit
// records.
type CycleStore interface {
	// Insert stores a completed cycle record and returns its assigned ID.
	Insert(ctx context.Context, cycle model.ReviewCycle) (int64, error)

	// GetByID retrieves one cycle record. Returns nil, nil when absent.
	GetByID(ctx context.Context, id int64) (*model.ReviewCycle, error)

	// ListRecent returns up to limit cycle records, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.ReviewCycle, error)
}
