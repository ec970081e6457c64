package chi

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wayfarer-app/wayfarer/internal/domain"
	healthuc "github.com/wayfarer-app/wayfarer/internal/usecase/health"
	searchuc "github.com/wayfarer-app/wayfarer/internal/usecase/search"
)

type mockExperienceService struct {
	getAllFn       func(ctx context.Context, viewerID string, mine, saved bool, offset, limit int) (domain.PaginatedResult[domain.Experience], error)
	getFn          func(ctx context.Context, viewerID, id string) (domain.Experience, error)
	getByShareIDFn func(ctx context.Context, viewerID, shareID string) (domain.Experience, error)
	createFn       func(ctx context.Context, viewerID, title, description string) (domain.Experience, error)
	modifyFn       func(ctx context.Context, viewerID, id string, title, description *string) (domain.Experience, error)
	saveFn         func(ctx context.Context, viewerID, id string) error
	unsaveFn       func(ctx context.Context, viewerID, id string) error
	getShareIDFn   func(ctx context.Context, viewerID, id string) (string, error)
}

func (m *mockExperienceService) GetAll(ctx context.Context, viewerID string, mine, saved bool, offset, limit int) (domain.PaginatedResult[domain.Experience], error) {
	return m.getAllFn(ctx, viewerID, mine, saved, offset, limit)
}

func (m *mockExperienceService) Get(ctx context.Context, viewerID, id string) (domain.Experience, error) {
	return m.getFn(ctx, viewerID, id)
}

func (m *mockExperienceService) GetByShareID(ctx context.Context, viewerID, shareID string) (domain.Experience, error) {
	return m.getByShareIDFn(ctx, viewerID, shareID)
}

func (m *mockExperienceService) Create(ctx context.Context, viewerID, title, description string) (domain.Experience, error) {
	return m.createFn(ctx, viewerID, title, description)
}

func (m *mockExperienceService) Modify(ctx context.Context, viewerID, id string, title, description *string) (domain.Experience, error) {
	return m.modifyFn(ctx, viewerID, id, title, description)
}

func (m *mockExperienceService) Save(ctx context.Context, viewerID, id string) error {
	return m.saveFn(ctx, viewerID, id)
}

func (m *mockExperienceService) Unsave(ctx context.Context, viewerID, id string) error {
	return m.unsaveFn(ctx, viewerID, id)
}

func (m *mockExperienceService) GetShareID(ctx context.Context, viewerID, id string) (string, error) {
	return m.getShareIDFn(ctx, viewerID, id)
}

type mockSceneService struct {
	getByExperienceFn func(ctx context.Context, viewerID, experienceID string) ([]domain.Scene, error)
	createFn          func(ctx context.Context, viewerID string, scene domain.Scene) (domain.Scene, error)
	modifyFn          func(ctx context.Context, viewerID, id string, title, description *string, latitude, longitude *float64) (domain.Scene, error)
}

func (m *mockSceneService) GetByExperience(ctx context.Context, viewerID, experienceID string) ([]domain.Scene, error) {
	return m.getByExperienceFn(ctx, viewerID, experienceID)
}

func (m *mockSceneService) Create(ctx context.Context, viewerID string, scene domain.Scene) (domain.Scene, error) {
	return m.createFn(ctx, viewerID, scene)
}

func (m *mockSceneService) Modify(ctx context.Context, viewerID, id string, title, description *string, latitude, longitude *float64) (domain.Scene, error) {
	return m.modifyFn(ctx, viewerID, id, title, description, latitude, longitude)
}

type mockSearchService struct {
	searchFn func(ctx context.Context, viewerID string, q searchuc.Query) (domain.PaginatedResult[domain.Experience], error)
}

func (m *mockSearchService) Search(ctx context.Context, viewerID string, q searchuc.Query) (domain.PaginatedResult[domain.Experience], error) {
	return m.searchFn(ctx, viewerID, q)
}

type mockHealthService struct {
	report healthuc.Report
}

func (m *mockHealthService) Check(ctx context.Context) healthuc.Report {
	return m.report
}

type mockPersonResolver struct {
	byToken map[string]domain.Person
}

func (m *mockPersonResolver) GetByAccessToken(ctx context.Context, token string) (domain.Person, error) {
	p, ok := m.byToken[token]
	if !ok {
		return domain.Person{}, domain.ErrNoLogged
	}
	return p, nil
}

type testServer struct {
	server      *Server
	experiences *mockExperienceService
	scenes      *mockSceneService
	search      *mockSearchService
	health      *mockHealthService
	router      *chi.Mux
}

func newTestServer() *testServer {
	ts := &testServer{
		experiences: &mockExperienceService{},
		scenes:      &mockSceneService{},
		search:      &mockSearchService{},
		health:      &mockHealthService{report: healthuc.Report{Status: healthuc.Healthy}},
	}
	ts.server = NewServer(ts.experiences, ts.scenes, ts.search, ts.health, zap.NewNop())
	ts.router = chi.NewRouter()
	ts.server.Routes(ts.router)
	return ts
}

// do runs a request through the router as the given viewer.
func (ts *testServer) do(req *http.Request, viewerID string) *httptest.ResponseRecorder {
	if viewerID != "" {
		ctx := context.WithValue(req.Context(), personCtxKey{}, domain.Person{ID: viewerID, IsConfirmed: true})
		req = req.WithContext(ctx)
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}
