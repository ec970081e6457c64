package search

import (
	"context"

	"github.com/wayfarer-app/wayfarer/internal/domain"
)

// IndexRepository serves typo-tolerant candidate recall from the FT index.
type IndexRepository interface {
	Candidates(ctx context.Context, word string, window int) ([]domain.ExperienceDocument, error)
}

// Reconciler bulk-fetches experiences by id, preserving input order and
// attaching viewer flags.
type Reconciler interface {
	GetByIDs(ctx context.Context, viewerID string, ids []string) ([]domain.Experience, error)
}

// PersonReader checks that the viewer is a real logged person.
type PersonReader interface {
	Get(ctx context.Context, id string) (domain.Person, error)
}

// BlockReader lists the people the viewer has blocked.
type BlockReader interface {
	BlockedPeople(ctx context.Context, personID string) ([]string, error)
}
