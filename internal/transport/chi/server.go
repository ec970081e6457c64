// Package chi exposes the HTTP API over a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wayfarer-app/wayfarer/internal/domain"
	"github.com/wayfarer-app/wayfarer/internal/domain/geo"
	healthuc "github.com/wayfarer-app/wayfarer/internal/usecase/health"
	searchuc "github.com/wayfarer-app/wayfarer/internal/usecase/search"
)

type errorCode string

const (
	codeBadRequest     errorCode = "bad_request"
	codeNoLogged       errorCode = "no_logged"
	codeNoPermission   errorCode = "no_permission"
	codeNotFound       errorCode = "not_found"
	codeBlockedContent errorCode = "blocked_content"
	codeSelfSave       errorCode = "self_save"
	codeInvalidEntity  errorCode = "invalid_entity"
	codeInternalError  errorCode = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the usecase services.
type Server struct {
	experiences   ExperienceService
	scenes        SceneService
	search        SearchService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	experiences ExperienceService,
	scenes SceneService,
	search SearchService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		experiences: experiences,
		scenes:      scenes,
		search:      search,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrNoLogged, http.StatusUnauthorized, codeNoLogged),
		sentinelHandler(domain.ErrNoPermission, http.StatusForbidden, codeNoPermission),
		sentinelHandler(domain.ErrBlockedContent, http.StatusForbidden, codeBlockedContent),
		sentinelHandler(domain.ErrSelfSave, http.StatusConflict, codeSelfSave),
		sentinelHandler(domain.ErrInvalidEntity, http.StatusBadRequest, codeInvalidEntity),
	}
	return s
}

// Routes registers all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/experiences", func(r chi.Router) {
		r.Get("/", s.GetExperiences)
		r.Post("/", s.CreateExperience)
		r.Get("/search", s.SearchExperiences)
		r.Route("/{experienceID}", func(r chi.Router) {
			r.Get("/", s.GetExperience)
			r.Patch("/", s.ModifyExperience)
			r.Post("/save", s.SaveExperience)
			r.Delete("/save", s.UnsaveExperience)
			r.Get("/share-id", s.GetExperienceShareID)
			r.Get("/scenes", s.GetScenes)
		})
	})

	r.Post("/scenes", s.CreateScene)
	r.Patch("/scenes/{sceneID}", s.ModifyScene)
}

// GetExperiences handles GET /experiences.
func (s *Server) GetExperiences(w http.ResponseWriter, r *http.Request) {
	viewer := personFromContext(r.Context())
	q := r.URL.Query()

	mine := q.Get("mine") == "true"
	saved := q.Get("saved") == "true"
	offset := parseIntDefault(q.Get("offset"), 0)
	limit := parseIntDefault(q.Get("limit"), domain.MaxPageSize)

	res, err := s.experiences.GetAll(r.Context(), viewer.ID, mine, saved, offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paginatedToJSON(res, experienceToJSON))
}

// SearchExperiences handles GET /experiences/search.
func (s *Server) SearchExperiences(w http.ResponseWriter, r *http.Request) {
	viewer := personFromContext(r.Context())
	q := r.URL.Query()

	query := searchuc.Query{
		Word:   q.Get("word"),
		Offset: parseIntDefault(q.Get("offset"), 0),
		Limit:  parseIntDefault(q.Get("limit"), domain.MaxPageSize),
	}

	// A lone coordinate is treated as no location at all.
	latStr, lonStr := q.Get("latitude"), q.Get("longitude")
	if latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil || !geo.ValidateCoordinates(lat, lon) {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid coordinates")
			return
		}
		query.Origin = &geo.Point{Latitude: lat, Longitude: lon}
	}

	res, err := s.search.Search(r.Context(), viewer.ID, query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paginatedToJSON(res, experienceToJSON))
}

// GetExperience handles GET /experiences/{experienceID}. A non-numeric id
// is resolved as a share id.
func (s *Server) GetExperience(w http.ResponseWriter, r *http.Request) {
	viewer := personFromContext(r.Context())
	id := chi.URLParam(r, "experienceID")

	var (
		e   domain.Experience
		err error
	)
	if isNumeric(id) {
		e, err = s.experiences.Get(r.Context(), viewer.ID, id)
	} else {
		e, err = s.experiences.GetByShareID(r.Context(), viewer.ID, id)
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, experienceToJSON(e))
}

// CreateExperience handles POST /experiences.
func (s *Server) CreateExperience(w http.ResponseWriter, r *http.Request) {
	viewer := personFromContext(r.Context())

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	created, err := s.experiences.Create(r.Context(), viewer.ID, req.Title, req.Description)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, experienceToJSON(created))
}

// ModifyExperience handles PATCH /experiences/{experienceID}.
func (s *Server) ModifyExperience(w http.ResponseWriter, r *http.Request) {
	viewer := personFromContext(r.Context())
	id := chi.URLParam(r, "experienceID")

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	modified, err := s.experiences.Modify(r.Context(), viewer.ID, id, req.Title, req.Description)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, experienceToJSON(modified))
}

// SaveExperience handles POST /experiences/{experienceID}/save.
func (s *Server) SaveExperience(w http.ResponseWriter, r *http.Request) {
	viewer := personFromContext(r.Context())
	if err := s.experiences.Save(r.Context(), viewer.ID, chi.URLParam(r, "experienceID")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnsaveExperience handles DELETE /experiences/{experienceID}/save.
func (s *Server) UnsaveExperience(w http.ResponseWriter, r *http.Request) {
	viewer := personFromContext(r.Context())
	if err := s.experiences.Unsave(r.Context(), viewer.ID, chi.URLParam(r, "experienceID")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetExperienceShareID handles GET /experiences/{experienceID}/share-id.
func (s *Server) GetExperienceShareID(w http.ResponseWriter, r *http.Request) {
	viewer := personFromContext(r.Context())
	shareID, err := s.experiences.GetShareID(r.Context(), viewer.ID, chi.URLParam(r, "experienceID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"share_id": shareID})
}

// GetScenes handles GET /experiences/{experienceID}/scenes.
func (s *Server) GetScenes(w http.ResponseWriter, r *http.Request) {
	viewer := personFromContext(r.Context())
	scenes, err := s.scenes.GetByExperience(r.Context(), viewer.ID, chi.URLParam(r, "experienceID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]sceneJSON, len(scenes))
	for i, sc := range scenes {
		items[i] = sceneToJSON(sc)
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateScene handles POST /scenes.
func (s *Server) CreateScene(w http.ResponseWriter, r *http.Request) {
	viewer := personFromContext(r.Context())

	var req struct {
		Title        string  `json:"title"`
		Description  string  `json:"description"`
		Latitude     float64 `json:"latitude"`
		Longitude    float64 `json:"longitude"`
		ExperienceID string  `json:"experience_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	created, err := s.scenes.Create(r.Context(), viewer.ID, domain.Scene{
		Title:        req.Title,
		Description:  req.Description,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ExperienceID: req.ExperienceID,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sceneToJSON(created))
}

// ModifyScene handles PATCH /scenes/{sceneID}.
func (s *Server) ModifyScene(w http.ResponseWriter, r *http.Request) {
	viewer := personFromContext(r.Context())

	var req struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	modified, err := s.scenes.Modify(r.Context(), viewer.ID, chi.URLParam(r, "sceneID"),
		req.Title, req.Description, req.Latitude, req.Longitude)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sceneToJSON(modified))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type experienceJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AuthorID    string `json:"author_id"`
	ShareID     string `json:"share_id,omitempty"`
	SavesCount  int    `json:"saves_count"`
	IsMine      bool   `json:"is_mine"`
	IsSaved     bool   `json:"is_saved"`
}

type sceneJSON struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	ExperienceID string  `json:"experience_id"`
}

type paginatedJSON[T any] struct {
	Results    []T  `json:"results"`
	NextOffset *int `json:"next_offset"`
}

func experienceToJSON(e domain.Experience) experienceJSON {
	return experienceJSON{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		AuthorID:    e.AuthorID,
		ShareID:     e.ShareID,
		SavesCount:  e.SavesCount,
		IsMine:      e.IsMine,
		IsSaved:     e.IsSaved,
	}
}

func sceneToJSON(s domain.Scene) sceneJSON {
	return sceneJSON{
		ID:           s.ID,
		Title:        s.Title,
		Description:  s.Description,
		Latitude:     s.Latitude,
		Longitude:    s.Longitude,
		ExperienceID: s.ExperienceID,
	}
}

func paginatedToJSON[T, U any](res domain.PaginatedResult[T], convert func(T) U) paginatedJSON[U] {
	items := make([]U, len(res.Results))
	for i, v := range res.Results {
		items[i] = convert(v)
	}
	return paginatedJSON[U]{Results: items, NextOffset: res.NextOffset}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorJSON struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorJSON{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrNoLogged,
		domain.ErrNoPermission,
		domain.ErrBlockedContent,
		domain.ErrSelfSave,
		domain.ErrInvalidEntity,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
