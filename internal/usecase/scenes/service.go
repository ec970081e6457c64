// Package scenes implements scene reads and mutations. Every mutation
// enqueues a reindex of the parent experience so the search document
// tracks the current scene set.
package scenes

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/wayfarer-app/wayfarer/internal/domain"
	"github.com/wayfarer-app/wayfarer/internal/domain/geo"
)

const (
	maxTitleLength       = 80
	maxDescriptionLength = 1200
)

// Repository is the relational store contract for scenes.
type Repository interface {
	Get(ctx context.Context, id string) (domain.Scene, error)
	GetByExperience(ctx context.Context, experienceID string) ([]domain.Scene, error)
	Create(ctx context.Context, s domain.Scene) (domain.Scene, error)
	Update(ctx context.Context, s domain.Scene) error
}

// ExperienceReader resolves the parent experience for permission checks.
type ExperienceReader interface {
	Get(ctx context.Context, id string) (domain.Experience, error)
}

// ReindexEnqueuer schedules a background reindex of one experience.
type ReindexEnqueuer interface {
	Enqueue(experienceID string)
}

// Service handles scene operations for a logged viewer.
type Service struct {
	repo    Repository
	exps    ExperienceReader
	reindex ReindexEnqueuer
}

// New creates a scenes service.
func New(repo Repository, exps ExperienceReader, reindex ReindexEnqueuer) *Service {
	return &Service{repo: repo, exps: exps, reindex: reindex}
}

// GetByExperience returns the scenes of an experience ordered by id.
func (s *Service) GetByExperience(ctx context.Context, viewerID, experienceID string) ([]domain.Scene, error) {
	if viewerID == "" {
		return nil, domain.ErrNoLogged
	}
	if _, err := s.exps.Get(ctx, experienceID); err != nil {
		return nil, err
	}
	return s.repo.GetByExperience(ctx, experienceID)
}

// Create validates and stores a new scene on an experience the viewer
// authored, then enqueues a reindex of that experience.
func (s *Service) Create(ctx context.Context, viewerID string, scene domain.Scene) (domain.Scene, error) {
	if viewerID == "" {
		return domain.Scene{}, domain.ErrNoLogged
	}
	parent, err := s.exps.Get(ctx, scene.ExperienceID)
	if err != nil {
		return domain.Scene{}, err
	}
	if parent.AuthorID != viewerID {
		return domain.Scene{}, domain.ErrNoPermission
	}
	if err := validate(scene); err != nil {
		return domain.Scene{}, err
	}

	created, err := s.repo.Create(ctx, scene)
	if err != nil {
		return domain.Scene{}, fmt.Errorf("create scene: %w", err)
	}
	s.reindex.Enqueue(created.ExperienceID)
	return created, nil
}

// Modify partially updates a scene on an experience the viewer authored.
// Nil fields keep their current value.
func (s *Service) Modify(ctx context.Context, viewerID, id string, title, description *string, latitude, longitude *float64) (domain.Scene, error) {
	if viewerID == "" {
		return domain.Scene{}, domain.ErrNoLogged
	}
	scene, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Scene{}, err
	}
	parent, err := s.exps.Get(ctx, scene.ExperienceID)
	if err != nil {
		return domain.Scene{}, err
	}
	if parent.AuthorID != viewerID {
		return domain.Scene{}, domain.ErrNoPermission
	}

	if title != nil {
		scene.Title = *title
	}
	if description != nil {
		scene.Description = *description
	}
	if latitude != nil {
		scene.Latitude = *latitude
	}
	if longitude != nil {
		scene.Longitude = *longitude
	}
	if err := validate(scene); err != nil {
		return domain.Scene{}, err
	}

	if err := s.repo.Update(ctx, scene); err != nil {
		return domain.Scene{}, fmt.Errorf("modify scene: %w", err)
	}
	s.reindex.Enqueue(scene.ExperienceID)
	return scene, nil
}

func validate(s domain.Scene) error {
	titleLen := utf8.RuneCountInString(s.Title)
	if titleLen == 0 || titleLen > maxTitleLength {
		return fmt.Errorf("%w: title must be 1-%d characters", domain.ErrInvalidEntity, maxTitleLength)
	}
	if utf8.RuneCountInString(s.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidEntity, maxDescriptionLength)
	}
	if !geo.ValidateCoordinates(s.Latitude, s.Longitude) {
		return fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidEntity)
	}
	return nil
}
