package mastery

import (
	"context"

	"github.com/google/uuid"
)

// Record is the updater's view of one (user, concept) mastery row.
// TotalExposures is the optimistic-lock version: conditional writes are keyed
// on the value read.
type Record struct {
	UserID            uuid.UUID
	ConceptID         uuid.UUID
	MasteryLevel      float64
	PeakMastery       float64
	TotalExposures    int
	SuccessfulRecalls int
}

// Store is the persistence contract the updater runs against. Implementations
// must give InsertIfAbsent insert-or-report-conflict semantics and make
// ConditionalUpdate report how many rows matched the expected version.
// Transport failures are returned as-is; the updater only retries version
// conflicts.
type Store interface {
	// Get returns the current record, or nil when the user has never been
	// exposed to the concept.
	Get(ctx context.Context, userID, conceptID uuid.UUID) (*Record, error)

	// InsertIfAbsent creates the record unless one already exists. It returns
	// false, without error, when another writer created it first.
	InsertIfAbsent(ctx context.Context, rec Record) (bool, error)

	// ConditionalUpdate writes rec only if the stored TotalExposures still
	// equals expectedExposures, returning the number of rows affected.
	ConditionalUpdate(ctx context.Context, rec Record, expectedExposures int) (int64, error)
}

// GapResolver closes open knowledge-gap records once mastery recovers. The
// updater calls it best-effort, outside the optimistic-lock cycle.
type GapResolver interface {
	ResolveOpenGaps(ctx context.Context, userID, conceptID uuid.UUID) error
}
