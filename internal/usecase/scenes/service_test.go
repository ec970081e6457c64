package scenes

import (
	"context"
	"errors"
	"testing"

	"github.com/wayfarer-app/wayfarer/internal/domain"
)

type mockRepo struct {
	getFn             func(ctx context.Context, id string) (domain.Scene, error)
	getByExperienceFn func(ctx context.Context, experienceID string) ([]domain.Scene, error)
	createFn          func(ctx context.Context, s domain.Scene) (domain.Scene, error)
	updateFn          func(ctx context.Context, s domain.Scene) error
}

func (m *mockRepo) Get(ctx context.Context, id string) (domain.Scene, error) {
	return m.getFn(ctx, id)
}

func (m *mockRepo) GetByExperience(ctx context.Context, experienceID string) ([]domain.Scene, error) {
	return m.getByExperienceFn(ctx, experienceID)
}

func (m *mockRepo) Create(ctx context.Context, s domain.Scene) (domain.Scene, error) {
	return m.createFn(ctx, s)
}

func (m *mockRepo) Update(ctx context.Context, s domain.Scene) error {
	return m.updateFn(ctx, s)
}

type mockExperiences struct {
	getFn func(ctx context.Context, id string) (domain.Experience, error)
}

func (m *mockExperiences) Get(ctx context.Context, id string) (domain.Experience, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Experience{ID: id, AuthorID: "1"}, nil
}

type mockEnqueuer struct {
	enqueued []string
}

func (m *mockEnqueuer) Enqueue(experienceID string) {
	m.enqueued = append(m.enqueued, experienceID)
}

func newTestService() (*Service, *mockRepo, *mockExperiences, *mockEnqueuer) {
	repo := &mockRepo{}
	exps := &mockExperiences{}
	enq := &mockEnqueuer{}
	return New(repo, exps, enq), repo, exps, enq
}

func validScene() domain.Scene {
	return domain.Scene{
		Title:        "viewpoint",
		Description:  "great views",
		Latitude:     41.38,
		Longitude:    2.16,
		ExperienceID: "5",
	}
}

func TestCreateEnqueuesParentReindex(t *testing.T) {
	svc, repo, _, enq := newTestService()
	repo.createFn = func(ctx context.Context, s domain.Scene) (domain.Scene, error) {
		s.ID = "9"
		return s, nil
	}

	created, err := svc.Create(context.Background(), "1", validScene())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "9" {
		t.Fatalf("unexpected scene: %+v", created)
	}
	if len(enq.enqueued) != 1 || enq.enqueued[0] != "5" {
		t.Fatalf("expected reindex of experience 5, got %v", enq.enqueued)
	}
}

func TestCreateOnForeignExperienceIsNoPermission(t *testing.T) {
	svc, _, exps, _ := newTestService()
	exps.getFn = func(ctx context.Context, id string) (domain.Experience, error) {
		return domain.Experience{ID: id, AuthorID: "2"}, nil
	}

	_, err := svc.Create(context.Background(), "1", validScene())
	if !errors.Is(err, domain.ErrNoPermission) {
		t.Fatalf("expected ErrNoPermission, got %v", err)
	}
}

func TestCreateRejectsOutOfRangeCoordinates(t *testing.T) {
	svc, _, _, _ := newTestService()

	scene := validScene()
	scene.Latitude = 91
	_, err := svc.Create(context.Background(), "1", scene)
	if !errors.Is(err, domain.ErrInvalidEntity) {
		t.Fatalf("expected ErrInvalidEntity, got %v", err)
	}
}

func TestModifyKeepsOmittedFields(t *testing.T) {
	svc, repo, _, enq := newTestService()
	repo.getFn = func(ctx context.Context, id string) (domain.Scene, error) {
		return domain.Scene{
			ID: id, Title: "old", Description: "old desc",
			Latitude: 1, Longitude: 2, ExperienceID: "5",
		}, nil
	}
	var updated domain.Scene
	repo.updateFn = func(ctx context.Context, s domain.Scene) error {
		updated = s
		return nil
	}

	lat := 3.5
	_, err := svc.Modify(context.Background(), "1", "9", nil, nil, &lat, nil)
	if err != nil {
		t.Fatalf("Modify: %v", err)
	}
	if updated.Title != "old" || updated.Latitude != 3.5 || updated.Longitude != 2 {
		t.Fatalf("partial update wrong: %+v", updated)
	}
	if len(enq.enqueued) != 1 || enq.enqueued[0] != "5" {
		t.Fatalf("expected reindex of experience 5, got %v", enq.enqueued)
	}
}

func TestGetByExperienceMissingParent(t *testing.T) {
	svc, _, exps, _ := newTestService()
	exps.getFn = func(ctx context.Context, id string) (domain.Experience, error) {
		return domain.Experience{}, domain.ErrNotFound
	}

	_, err := svc.GetByExperience(context.Background(), "1", "404")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
