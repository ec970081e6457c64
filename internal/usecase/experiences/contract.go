package experiences

import (
	"context"

	"github.com/wayfarer-app/wayfarer/internal/domain"
	"github.com/wayfarer-app/wayfarer/internal/repository/experience"
)

// Repository is the relational store contract for experiences.
type Repository interface {
	Get(ctx context.Context, id string) (domain.Experience, error)
	GetByShareID(ctx context.Context, shareID string) (domain.Experience, error)
	GetByIDs(ctx context.Context, viewerID string, ids []string) ([]domain.Experience, error)
	List(ctx context.Context, viewerID string, kind experience.ListKind, offset, limit int) ([]domain.Experience, error)
	Create(ctx context.Context, e domain.Experience) (domain.Experience, error)
	Update(ctx context.Context, e domain.Experience) error
	Save(ctx context.Context, personID, experienceID string) error
	Unsave(ctx context.Context, personID, experienceID string) error
	SetShareID(ctx context.Context, experienceID, shareID string) error
}

// BlockReader checks block relationships for content visibility.
type BlockReader interface {
	Exists(ctx context.Context, creatorID, targetID string) (bool, error)
}

// ReindexEnqueuer schedules a background reindex of one experience.
type ReindexEnqueuer interface {
	Enqueue(experienceID string)
}
