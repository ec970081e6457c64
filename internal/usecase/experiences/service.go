// Package experiences implements the experience lifecycle: listing,
// creation, modification, saving, and share-id resolution.
package experiences

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/wayfarer-app/wayfarer/internal/domain"
	"github.com/wayfarer-app/wayfarer/internal/repository/experience"
)

const (
	maxTitleLength       = 80
	maxDescriptionLength = 1200

	shareIDLength   = 8
	shareIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// shareIDAttempts bounds collision retries; with 62^8 ids collisions
	// are already vanishingly rare.
	shareIDAttempts = 5
)

// Service handles experience operations for a logged viewer.
type Service struct {
	repo    Repository
	blocks  BlockReader
	reindex ReindexEnqueuer
}

// New creates an experiences service.
func New(repo Repository, blocks BlockReader, reindex ReindexEnqueuer) *Service {
	return &Service{repo: repo, blocks: blocks, reindex: reindex}
}

// GetAll pages one slice of experiences: the viewer's own, the viewer's
// saved, or other people's.
func (s *Service) GetAll(ctx context.Context, viewerID string, mine, saved bool, offset, limit int) (domain.PaginatedResult[domain.Experience], error) {
	var empty domain.PaginatedResult[domain.Experience]
	if viewerID == "" {
		return empty, domain.ErrNoLogged
	}

	kind := experience.ListOthers
	switch {
	case mine:
		kind = experience.ListMine
	case saved:
		kind = experience.ListSaved
	}

	limit = domain.ClampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	rows, err := s.repo.List(ctx, viewerID, kind, offset, limit)
	if err != nil {
		return empty, fmt.Errorf("list experiences: %w", err)
	}
	return domain.Paginate(rows, offset, limit), nil
}

// Get fetches one experience with viewer flags. Content from an author the
// viewer has blocked reports ErrBlockedContent.
func (s *Service) Get(ctx context.Context, viewerID, id string) (domain.Experience, error) {
	if viewerID == "" {
		return domain.Experience{}, domain.ErrNoLogged
	}
	results, err := s.repo.GetByIDs(ctx, viewerID, []string{id})
	if err != nil {
		return domain.Experience{}, fmt.Errorf("get experience: %w", err)
	}
	if len(results) == 0 {
		return domain.Experience{}, domain.ErrNotFound
	}
	e := results[0]

	blocked, err := s.blocks.Exists(ctx, viewerID, e.AuthorID)
	if err != nil {
		return domain.Experience{}, fmt.Errorf("check block: %w", err)
	}
	if blocked {
		return domain.Experience{}, domain.ErrBlockedContent
	}
	return e, nil
}

// GetByShareID resolves a share id and returns the experience with viewer
// flags and the block check applied.
func (s *Service) GetByShareID(ctx context.Context, viewerID, shareID string) (domain.Experience, error) {
	e, err := s.repo.GetByShareID(ctx, shareID)
	if err != nil {
		return domain.Experience{}, err
	}
	return s.Get(ctx, viewerID, e.ID)
}

// Create validates and stores a new experience authored by the viewer.
func (s *Service) Create(ctx context.Context, viewerID, title, description string) (domain.Experience, error) {
	if viewerID == "" {
		return domain.Experience{}, domain.ErrNoLogged
	}
	if err := validate(title, description); err != nil {
		return domain.Experience{}, err
	}
	created, err := s.repo.Create(ctx, domain.Experience{
		Title:       title,
		Description: description,
		AuthorID:    viewerID,
	})
	if err != nil {
		return domain.Experience{}, fmt.Errorf("create experience: %w", err)
	}
	s.reindex.Enqueue(created.ID)
	return created, nil
}

// Modify partially updates the title and description of an experience the
// viewer authored. Nil fields keep their current value.
func (s *Service) Modify(ctx context.Context, viewerID, id string, title, description *string) (domain.Experience, error) {
	if viewerID == "" {
		return domain.Experience{}, domain.ErrNoLogged
	}
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Experience{}, err
	}
	if e.AuthorID != viewerID {
		return domain.Experience{}, domain.ErrNoPermission
	}

	if title != nil {
		e.Title = *title
	}
	if description != nil {
		e.Description = *description
	}
	if err := validate(e.Title, e.Description); err != nil {
		return domain.Experience{}, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return domain.Experience{}, fmt.Errorf("modify experience: %w", err)
	}
	s.reindex.Enqueue(e.ID)
	e.IsMine = true
	return e, nil
}

// Save marks an experience as saved by the viewer. Saving your own
// experience reports ErrSelfSave; saving twice is a no-op.
func (s *Service) Save(ctx context.Context, viewerID, id string) error {
	return s.setSaved(ctx, viewerID, id, true)
}

// Unsave removes the viewer's save. Unsaving something never saved is a
// no-op.
func (s *Service) Unsave(ctx context.Context, viewerID, id string) error {
	return s.setSaved(ctx, viewerID, id, false)
}

func (s *Service) setSaved(ctx context.Context, viewerID, id string, saved bool) error {
	if viewerID == "" {
		return domain.ErrNoLogged
	}
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.AuthorID == viewerID {
		return domain.ErrSelfSave
	}

	if saved {
		err = s.repo.Save(ctx, viewerID, id)
	} else {
		err = s.repo.Unsave(ctx, viewerID, id)
	}
	if err != nil {
		return fmt.Errorf("set saved: %w", err)
	}
	s.reindex.Enqueue(id)
	return nil
}

// GetShareID returns the experience's share id, minting one on first use.
func (s *Service) GetShareID(ctx context.Context, viewerID, id string) (string, error) {
	if viewerID == "" {
		return "", domain.ErrNoLogged
	}
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if e.ShareID != "" {
		return e.ShareID, nil
	}

	for attempt := 0; attempt < shareIDAttempts; attempt++ {
		candidate := newShareID()
		err := s.repo.SetShareID(ctx, id, candidate)
		if errors.Is(err, domain.ErrInvalidEntity) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("assign share id: %w", err)
		}
		// Re-read: a concurrent minter may have won the race.
		e, err = s.repo.Get(ctx, id)
		if err != nil {
			return "", err
		}
		if e.ShareID != "" {
			return e.ShareID, nil
		}
	}
	return "", fmt.Errorf("assign share id: too many collisions")
}

func newShareID() string {
	raw := uuid.New()
	out := make([]byte, shareIDLength)
	for i := range out {
		out[i] = shareIDAlphabet[int(raw[i])%len(shareIDAlphabet)]
	}
	return string(out)
}

func validate(title, description string) error {
	titleLen := utf8.RuneCountInString(title)
	if titleLen == 0 || titleLen > maxTitleLength {
		return fmt.Errorf("%w: title must be 1-%d characters", domain.ErrInvalidEntity, maxTitleLength)
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidEntity, maxDescriptionLength)
	}
	return nil
}
