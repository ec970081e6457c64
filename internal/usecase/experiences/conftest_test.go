package experiences

import (
	"context"

	"github.com/wayfarer-app/wayfarer/internal/domain"
	"github.com/wayfarer-app/wayfarer/internal/repository/experience"
)

type mockRepo struct {
	getFn          func(ctx context.Context, id string) (domain.Experience, error)
	getByShareIDFn func(ctx context.Context, shareID string) (domain.Experience, error)
	getByIDsFn     func(ctx context.Context, viewerID string, ids []string) ([]domain.Experience, error)
	listFn         func(ctx context.Context, viewerID string, kind experience.ListKind, offset, limit int) ([]domain.Experience, error)
	createFn       func(ctx context.Context, e domain.Experience) (domain.Experience, error)
	updateFn       func(ctx context.Context, e domain.Experience) error
	saveFn         func(ctx context.Context, personID, experienceID string) error
	unsaveFn       func(ctx context.Context, personID, experienceID string) error
	setShareIDFn   func(ctx context.Context, experienceID, shareID string) error
}

func (m *mockRepo) Get(ctx context.Context, id string) (domain.Experience, error) {
	return m.getFn(ctx, id)
}

func (m *mockRepo) GetByShareID(ctx context.Context, shareID string) (domain.Experience, error) {
	return m.getByShareIDFn(ctx, shareID)
}

func (m *mockRepo) GetByIDs(ctx context.Context, viewerID string, ids []string) ([]domain.Experience, error) {
	return m.getByIDsFn(ctx, viewerID, ids)
}

func (m *mockRepo) List(ctx context.Context, viewerID string, kind experience.ListKind, offset, limit int) ([]domain.Experience, error) {
	return m.listFn(ctx, viewerID, kind, offset, limit)
}

func (m *mockRepo) Create(ctx context.Context, e domain.Experience) (domain.Experience, error) {
	return m.createFn(ctx, e)
}

func (m *mockRepo) Update(ctx context.Context, e domain.Experience) error {
	return m.updateFn(ctx, e)
}

func (m *mockRepo) Save(ctx context.Context, personID, experienceID string) error {
	return m.saveFn(ctx, personID, experienceID)
}

func (m *mockRepo) Unsave(ctx context.Context, personID, experienceID string) error {
	return m.unsaveFn(ctx, personID, experienceID)
}

func (m *mockRepo) SetShareID(ctx context.Context, experienceID, shareID string) error {
	return m.setShareIDFn(ctx, experienceID, shareID)
}

type mockBlocks struct {
	existsFn func(ctx context.Context, creatorID, targetID string) (bool, error)
}

func (m *mockBlocks) Exists(ctx context.Context, creatorID, targetID string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, creatorID, targetID)
	}
	return false, nil
}

type mockEnqueuer struct {
	enqueued []string
}

func (m *mockEnqueuer) Enqueue(experienceID string) {
	m.enqueued = append(m.enqueued, experienceID)
}

type testService struct {
	svc     *Service
	repo    *mockRepo
	blocks  *mockBlocks
	reindex *mockEnqueuer
}

func newTestService() *testService {
	ts := &testService{
		repo:    &mockRepo{},
		blocks:  &mockBlocks{},
		reindex: &mockEnqueuer{},
	}
	ts.svc = New(ts.repo, ts.blocks, ts.reindex)
	return ts
}
