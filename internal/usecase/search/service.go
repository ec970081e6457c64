// Package search ranks experiences for a viewer. Recall is delegated to
// the FT index; scoring, ordering, and pagination happen app-side so the
// ranking function stays in one testable place.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/wayfarer-app/wayfarer/internal/domain"
	"github.com/wayfarer-app/wayfarer/internal/domain/fuzzy"
	"github.com/wayfarer-app/wayfarer/internal/domain/geo"
)

// minCandidateWindow is the floor on how many candidates are pulled from
// the index before scoring. Deep pages widen the window instead.
const minCandidateWindow = 200

// Query is a ranked search request.
type Query struct {
	Word   string
	Origin *geo.Point
	Offset int
	Limit  int
}

// Service executes ranked experience search.
type Service struct {
	index  IndexRepository
	exps   Reconciler
	people PersonReader
	blocks BlockReader
}

// New creates a search service.
func New(index IndexRepository, exps Reconciler, people PersonReader, blocks BlockReader) *Service {
	return &Service{index: index, exps: exps, people: people, blocks: blocks}
}

// Search recalls candidates for q, scores and orders them, pages the
// ordered ids, and reconciles the page against the relational store.
// Experiences authored by people the viewer blocked are dropped from the
// page after reconciliation.
func (s *Service) Search(ctx context.Context, viewerID string, q Query) (domain.PaginatedResult[domain.Experience], error) {
	var empty domain.PaginatedResult[domain.Experience]

	if viewerID == "" {
		return empty, domain.ErrNoLogged
	}
	if _, err := s.people.Get(ctx, viewerID); err != nil {
		return empty, domain.ErrNoLogged
	}

	limit := domain.ClampLimit(q.Limit)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	window := minCandidateWindow
	if need := offset + limit + 1; need > window {
		window = need
	}

	docs, err := s.index.Candidates(ctx, q.Word, window)
	if err != nil {
		return empty, fmt.Errorf("recall candidates: %w", err)
	}

	queryTokens := fuzzy.Tokenize(q.Word)
	type ranked struct {
		doc   domain.ExperienceDocument
		score float64
	}
	scored := make([]ranked, len(docs))
	for i, d := range docs {
		scored[i] = ranked{doc: d, score: score(d, queryTokens, q.Origin)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].doc.SavesCount > scored[j].doc.SavesCount
	})

	if offset >= len(scored) {
		return domain.PaginatedResult[domain.Experience]{Results: []domain.Experience{}}, nil
	}
	end := offset + limit + 1
	if end > len(scored) {
		end = len(scored)
	}
	page := scored[offset:end]

	pageDocs := make([]string, len(page))
	for i, r := range page {
		pageDocs[i] = r.doc.ID
	}
	paged := domain.Paginate(pageDocs, offset, limit)

	experiences, err := s.exps.GetByIDs(ctx, viewerID, paged.Results)
	if err != nil {
		return empty, fmt.Errorf("reconcile results: %w", err)
	}

	experiences, err = s.dropBlocked(ctx, viewerID, experiences)
	if err != nil {
		return empty, err
	}

	return domain.PaginatedResult[domain.Experience]{
		Results:    experiences,
		NextOffset: paged.NextOffset,
	}, nil
}

func (s *Service) dropBlocked(ctx context.Context, viewerID string, experiences []domain.Experience) ([]domain.Experience, error) {
	blocked, err := s.blocks.BlockedPeople(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("get blocked people: %w", err)
	}
	if len(blocked) == 0 {
		return experiences, nil
	}
	blockedSet := make(map[string]bool, len(blocked))
	for _, id := range blocked {
		blockedSet[id] = true
	}
	kept := experiences[:0]
	for _, e := range experiences {
		if !blockedSet[e.AuthorID] {
			kept = append(kept, e)
		}
	}
	return kept, nil
}
