package chi

import (
	"context"

	"github.com/wayfarer-app/wayfarer/internal/domain"
	healthuc "github.com/wayfarer-app/wayfarer/internal/usecase/health"
	searchuc "github.com/wayfarer-app/wayfarer/internal/usecase/search"
)

// ExperienceService is the experience usecase surface the API exposes.
type ExperienceService interface {
	GetAll(ctx context.Context, viewerID string, mine, saved bool, offset, limit int) (domain.PaginatedResult[domain.Experience], error)
	Get(ctx context.Context, viewerID, id string) (domain.Experience, error)
	GetByShareID(ctx context.Context, viewerID, shareID string) (domain.Experience, error)
	Create(ctx context.Context, viewerID, title, description string) (domain.Experience, error)
	Modify(ctx context.Context, viewerID, id string, title, description *string) (domain.Experience, error)
	Save(ctx context.Context, viewerID, id string) error
	Unsave(ctx context.Context, viewerID, id string) error
	GetShareID(ctx context.Context, viewerID, id string) (string, error)
}

// SceneService is the scene usecase surface the API exposes.
type SceneService interface {
	GetByExperience(ctx context.Context, viewerID, experienceID string) ([]domain.Scene, error)
	Create(ctx context.Context, viewerID string, scene domain.Scene) (domain.Scene, error)
	Modify(ctx context.Context, viewerID, id string, title, description *string, latitude, longitude *float64) (domain.Scene, error)
}

// SearchService executes ranked experience search.
type SearchService interface {
	Search(ctx context.Context, viewerID string, q searchuc.Query) (domain.PaginatedResult[domain.Experience], error)
}

// HealthService aggregates component health checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// PersonResolver resolves a bearer token to its person.
type PersonResolver interface {
	GetByAccessToken(ctx context.Context, token string) (domain.Person, error)
}
