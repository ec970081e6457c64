package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wayfarer-app/wayfarer/internal/domain"
	healthuc "github.com/wayfarer-app/wayfarer/internal/usecase/health"
	searchuc "github.com/wayfarer-app/wayfarer/internal/usecase/search"
)

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestGetExperiencesPassesQueryParams(t *testing.T) {
	ts := newTestServer()
	var gotMine, gotSaved bool
	var gotOffset, gotLimit int
	ts.experiences.getAllFn = func(ctx context.Context, viewerID string, mine, saved bool, offset, limit int) (domain.PaginatedResult[domain.Experience], error) {
		gotMine, gotSaved, gotOffset, gotLimit = mine, saved, offset, limit
		return domain.PaginatedResult[domain.Experience]{Results: []domain.Experience{{ID: "1", Title: "t"}}}, nil
	}

	req := httptest.NewRequest("GET", "/experiences?mine=true&offset=5&limit=10", http.NoBody)
	rr := ts.do(req, "4")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !gotMine || gotSaved || gotOffset != 5 || gotLimit != 10 {
		t.Fatalf("params not passed: mine=%v saved=%v offset=%d limit=%d", gotMine, gotSaved, gotOffset, gotLimit)
	}

	body := decodeJSON[paginatedJSON[experienceJSON]](t, rr)
	if len(body.Results) != 1 || body.Results[0].ID != "1" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.NextOffset != nil {
		t.Fatalf("expected null next_offset, got %v", *body.NextOffset)
	}
}

func TestSearchExperiencesParsesLocation(t *testing.T) {
	ts := newTestServer()
	var gotQuery searchuc.Query
	ts.search.searchFn = func(ctx context.Context, viewerID string, q searchuc.Query) (domain.PaginatedResult[domain.Experience], error) {
		gotQuery = q
		return domain.PaginatedResult[domain.Experience]{Results: []domain.Experience{}}, nil
	}

	req := httptest.NewRequest("GET", "/experiences/search?word=mountain&latitude=41.38&longitude=2.16", http.NoBody)
	rr := ts.do(req, "4")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotQuery.Word != "mountain" {
		t.Fatalf("expected word mountain, got %q", gotQuery.Word)
	}
	if gotQuery.Origin == nil || gotQuery.Origin.Latitude != 41.38 || gotQuery.Origin.Longitude != 2.16 {
		t.Fatalf("location not parsed: %+v", gotQuery.Origin)
	}
}

func TestSearchExperiencesLoneCoordinateMeansNoLocation(t *testing.T) {
	ts := newTestServer()
	var gotQuery searchuc.Query
	ts.search.searchFn = func(ctx context.Context, viewerID string, q searchuc.Query) (domain.PaginatedResult[domain.Experience], error) {
		gotQuery = q
		return domain.PaginatedResult[domain.Experience]{Results: []domain.Experience{}}, nil
	}

	req := httptest.NewRequest("GET", "/experiences/search?word=bike&latitude=41.38", http.NoBody)
	rr := ts.do(req, "4")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotQuery.Origin != nil {
		t.Fatalf("lone latitude must mean no location, got %+v", gotQuery.Origin)
	}
}

func TestSearchExperiencesInvalidCoordinatesIs400(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest("GET", "/experiences/search?latitude=91&longitude=0", http.NoBody)
	rr := ts.do(req, "4")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetExperienceNumericIDUsesGet(t *testing.T) {
	ts := newTestServer()
	ts.experiences.getFn = func(ctx context.Context, viewerID, id string) (domain.Experience, error) {
		return domain.Experience{ID: id, Title: "by id"}, nil
	}

	req := httptest.NewRequest("GET", "/experiences/42", http.NoBody)
	rr := ts.do(req, "4")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeJSON[experienceJSON](t, rr)
	if body.ID != "42" || body.Title != "by id" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestGetExperienceNonNumericIDUsesShareID(t *testing.T) {
	ts := newTestServer()
	ts.experiences.getByShareIDFn = func(ctx context.Context, viewerID, shareID string) (domain.Experience, error) {
		if shareID != "AsdE43E2" {
			t.Fatalf("expected share id AsdE43E2, got %q", shareID)
		}
		return domain.Experience{ID: "4", ShareID: shareID}, nil
	}

	req := httptest.NewRequest("GET", "/experiences/AsdE43E2", http.NoBody)
	rr := ts.do(req, "4")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestCreateExperienceReturns201(t *testing.T) {
	ts := newTestServer()
	ts.experiences.createFn = func(ctx context.Context, viewerID, title, description string) (domain.Experience, error) {
		return domain.Experience{ID: "9", Title: title, Description: description, AuthorID: viewerID, IsMine: true}, nil
	}

	req := httptest.NewRequest("POST", "/experiences", strings.NewReader(`{"title":"trip","description":"d"}`))
	rr := ts.do(req, "4")

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeJSON[experienceJSON](t, rr)
	if body.ID != "9" || !body.IsMine {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestCreateExperienceInvalidBodyIs400(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest("POST", "/experiences", strings.NewReader(`{not json`))
	rr := ts.do(req, "4")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestModifyExperiencePartialBody(t *testing.T) {
	ts := newTestServer()
	ts.experiences.modifyFn = func(ctx context.Context, viewerID, id string, title, description *string) (domain.Experience, error) {
		if title == nil || *title != "new" {
			t.Fatalf("expected title pointer, got %v", title)
		}
		if description != nil {
			t.Fatalf("expected nil description, got %v", *description)
		}
		return domain.Experience{ID: id, Title: *title}, nil
	}

	req := httptest.NewRequest("PATCH", "/experiences/5", strings.NewReader(`{"title":"new"}`))
	rr := ts.do(req, "4")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestSaveStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusNoContent},
		{"self save", domain.ErrSelfSave, http.StatusConflict},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer()
			ts.experiences.saveFn = func(ctx context.Context, viewerID, id string) error {
				return tc.err
			}

			req := httptest.NewRequest("POST", "/experiences/5/save", http.NoBody)
			rr := ts.do(req, "4")

			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rr.Code)
			}
		})
	}
}

func TestUnsaveReturns204(t *testing.T) {
	ts := newTestServer()
	ts.experiences.unsaveFn = func(ctx context.Context, viewerID, id string) error {
		return nil
	}

	req := httptest.NewRequest("DELETE", "/experiences/5/save", http.NoBody)
	rr := ts.do(req, "4")

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}

func TestGetShareID(t *testing.T) {
	ts := newTestServer()
	ts.experiences.getShareIDFn = func(ctx context.Context, viewerID, id string) (string, error) {
		return "AsdE43E2", nil
	}

	req := httptest.NewRequest("GET", "/experiences/5/share-id", http.NoBody)
	rr := ts.do(req, "4")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeJSON[map[string]string](t, rr)
	if body["share_id"] != "AsdE43E2" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestBlockedContentIs403(t *testing.T) {
	ts := newTestServer()
	ts.experiences.getFn = func(ctx context.Context, viewerID, id string) (domain.Experience, error) {
		return domain.Experience{}, domain.ErrBlockedContent
	}

	req := httptest.NewRequest("GET", "/experiences/5", http.NoBody)
	rr := ts.do(req, "4")

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	body := decodeJSON[errorJSON](t, rr)
	if body.Code != codeBlockedContent {
		t.Fatalf("unexpected error code %q", body.Code)
	}
}

func TestGetScenes(t *testing.T) {
	ts := newTestServer()
	ts.scenes.getByExperienceFn = func(ctx context.Context, viewerID, experienceID string) ([]domain.Scene, error) {
		return []domain.Scene{
			{ID: "1", Title: "first", ExperienceID: experienceID},
			{ID: "2", Title: "second", ExperienceID: experienceID},
		}, nil
	}

	req := httptest.NewRequest("GET", "/experiences/5/scenes", http.NoBody)
	rr := ts.do(req, "4")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeJSON[[]sceneJSON](t, rr)
	if len(body) != 2 || body[0].ID != "1" || body[1].ExperienceID != "5" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestCreateSceneReturns201(t *testing.T) {
	ts := newTestServer()
	ts.scenes.createFn = func(ctx context.Context, viewerID string, scene domain.Scene) (domain.Scene, error) {
		scene.ID = "7"
		return scene, nil
	}

	req := httptest.NewRequest("POST", "/scenes",
		strings.NewReader(`{"title":"stop","latitude":41.38,"longitude":2.16,"experience_id":"5"}`))
	rr := ts.do(req, "4")

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeJSON[sceneJSON](t, rr)
	if body.ID != "7" || body.ExperienceID != "5" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestModifySceneForeignExperienceIs403(t *testing.T) {
	ts := newTestServer()
	ts.scenes.modifyFn = func(ctx context.Context, viewerID, id string, title, description *string, latitude, longitude *float64) (domain.Scene, error) {
		return domain.Scene{}, domain.ErrNoPermission
	}

	req := httptest.NewRequest("PATCH", "/scenes/9", strings.NewReader(`{"title":"x"}`))
	rr := ts.do(req, "4")

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestHealthDegradedIs503(t *testing.T) {
	ts := newTestServer()
	ts.health.report = healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckError},
	}

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := ts.do(req, "")

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestNoLoggedIs401(t *testing.T) {
	ts := newTestServer()
	ts.search.searchFn = func(ctx context.Context, viewerID string, q searchuc.Query) (domain.PaginatedResult[domain.Experience], error) {
		return domain.PaginatedResult[domain.Experience]{}, domain.ErrNoLogged
	}

	req := httptest.NewRequest("GET", "/experiences/search?word=x", http.NoBody)
	rr := ts.do(req, "")

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
