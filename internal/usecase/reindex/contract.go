package reindex

import (
	"context"

	"github.com/wayfarer-app/wayfarer/internal/domain"
)

// ExperienceReader fetches experiences and the sweep upper bound.
type ExperienceReader interface {
	Get(ctx context.Context, id string) (domain.Experience, error)
	MaxID(ctx context.Context) (int64, error)
}

// SceneReader fetches the scenes of an experience.
type SceneReader interface {
	GetByExperience(ctx context.Context, experienceID string) ([]domain.Scene, error)
}

// IndexWriter upserts and removes experience documents in the FT index.
type IndexWriter interface {
	Index(ctx context.Context, e domain.Experience, scenes []domain.Scene) error
	Delete(ctx context.Context, experienceID string) error
}
