// Package reindex reconciles the FT index with the relational store. The
// sweep is self-healing: every pass converges the index to the database
// regardless of what writes were lost in between.
package reindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/wayfarer-app/wayfarer/internal/domain"
	"github.com/wayfarer-app/wayfarer/internal/logger"
)

// Service rebuilds index documents from the relational store.
type Service struct {
	exps   ExperienceReader
	scenes SceneReader
	index  IndexWriter
}

// New creates a reindex service.
func New(exps ExperienceReader, scenes SceneReader, index IndexWriter) *Service {
	return &Service{exps: exps, scenes: scenes, index: index}
}

// ReindexOne converges the index document for a single experience: a
// missing experience or one with no scenes has its document removed,
// anything else is upserted from current relational state.
func (s *Service) ReindexOne(ctx context.Context, experienceID string) error {
	e, err := s.exps.Get(ctx, experienceID)
	if errors.Is(err, domain.ErrNotFound) {
		return s.index.Delete(ctx, experienceID)
	}
	if err != nil {
		return fmt.Errorf("get experience %s: %w", experienceID, err)
	}

	scenes, err := s.scenes.GetByExperience(ctx, experienceID)
	if err != nil {
		return fmt.Errorf("get scenes for %s: %w", experienceID, err)
	}
	if len(scenes) == 0 {
		return s.index.Delete(ctx, experienceID)
	}
	return s.index.Index(ctx, e, scenes)
}

// Sweep walks ids fromID..toID in ascending order, converging each one.
// Per-id failures are logged and skipped so one bad row cannot stall the
// rest of the sweep; the first error is reported after the pass completes.
func (s *Service) Sweep(ctx context.Context, fromID, toID int64) error {
	log := logger.FromContext(ctx)

	var firstErr error
	for id := fromID; id <= toID; id++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		sid := strconv.FormatInt(id, 10)
		if err := s.ReindexOne(ctx, sid); err != nil {
			log.Warn("reindex failed for experience",
				zap.String("experience_id", sid), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// SweepAll runs a full-range sweep from id 1 to the current maximum.
func (s *Service) SweepAll(ctx context.Context) error {
	max, err := s.exps.MaxID(ctx)
	if err != nil {
		return fmt.Errorf("resolve sweep bound: %w", err)
	}
	if max == 0 {
		return nil
	}
	return s.Sweep(ctx, 1, max)
}
