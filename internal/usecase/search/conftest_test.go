package search

import (
	"context"

	"github.com/wayfarer-app/wayfarer/internal/domain"
)

type mockIndex struct {
	candidatesFn func(ctx context.Context, word string, window int) ([]domain.ExperienceDocument, error)

	words   []string
	windows []int
}

func (m *mockIndex) Candidates(ctx context.Context, word string, window int) ([]domain.ExperienceDocument, error) {
	m.words = append(m.words, word)
	m.windows = append(m.windows, window)
	if m.candidatesFn != nil {
		return m.candidatesFn(ctx, word, window)
	}
	return []domain.ExperienceDocument{}, nil
}

type mockReconciler struct {
	getByIDsFn func(ctx context.Context, viewerID string, ids []string) ([]domain.Experience, error)

	requestedIDs [][]string
}

func (m *mockReconciler) GetByIDs(ctx context.Context, viewerID string, ids []string) ([]domain.Experience, error) {
	m.requestedIDs = append(m.requestedIDs, ids)
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, viewerID, ids)
	}
	// Echo the ids back as bare experiences, preserving order.
	out := make([]domain.Experience, len(ids))
	for i, id := range ids {
		out[i] = domain.Experience{ID: id, AuthorID: "author"}
	}
	return out, nil
}

type mockPeople struct {
	getFn func(ctx context.Context, id string) (domain.Person, error)
}

func (m *mockPeople) Get(ctx context.Context, id string) (domain.Person, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Person{ID: id, Username: "viewer", IsConfirmed: true}, nil
}

type mockBlocks struct {
	blockedFn func(ctx context.Context, personID string) ([]string, error)
}

func (m *mockBlocks) BlockedPeople(ctx context.Context, personID string) ([]string, error) {
	if m.blockedFn != nil {
		return m.blockedFn(ctx, personID)
	}
	return []string{}, nil
}

type testService struct {
	svc    *Service
	index  *mockIndex
	exps   *mockReconciler
	people *mockPeople
	blocks *mockBlocks
}

func newTestService() *testService {
	ts := &testService{
		index:  &mockIndex{},
		exps:   &mockReconciler{},
		people: &mockPeople{},
		blocks: &mockBlocks{},
	}
	ts.svc = New(ts.index, ts.exps, ts.people, ts.blocks)
	return ts
}
