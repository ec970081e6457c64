// Package scene persists the located scenes that make up an experience.
package scene

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/wayfarer-app/wayfarer/internal/domain"
)

// Repo reads and writes scenes in Postgres.
type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Get fetches a single scene by id.
func (r *Repo) Get(ctx context.Context, id string) (domain.Scene, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return domain.Scene{}, domain.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, title, description, latitude, longitude, experience_id FROM scenes WHERE id = $1",
		numericID)
	s, err := scanScene(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Scene{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Scene{}, fmt.Errorf("get scene: %w", err)
	}
	return s, nil
}

// GetByExperience returns all scenes of an experience ordered by id.
func (r *Repo) GetByExperience(ctx context.Context, experienceID string) ([]domain.Scene, error) {
	numericID, err := strconv.ParseInt(experienceID, 10, 64)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, description, latitude, longitude, experience_id FROM scenes WHERE experience_id = $1 ORDER BY id",
		numericID)
	if err != nil {
		return nil, fmt.Errorf("get scenes: %w", err)
	}
	defer rows.Close()

	scenes := []domain.Scene{}
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		scenes = append(scenes, s)
	}
	return scenes, rows.Err()
}

// Create inserts a scene and returns it with its new id.
func (r *Repo) Create(ctx context.Context, s domain.Scene) (domain.Scene, error) {
	expID, err := strconv.ParseInt(s.ExperienceID, 10, 64)
	if err != nil {
		return domain.Scene{}, domain.ErrInvalidEntity
	}
	var id int64
	err = r.db.QueryRowContext(ctx,
		"INSERT INTO scenes (title, description, latitude, longitude, experience_id) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		s.Title, s.Description, s.Latitude, s.Longitude, expID).Scan(&id)
	if err != nil {
		return domain.Scene{}, fmt.Errorf("create scene: %w", err)
	}
	s.ID = strconv.FormatInt(id, 10)
	return s, nil
}

// Update rewrites a scene's text and position.
func (r *Repo) Update(ctx context.Context, s domain.Scene) error {
	id, err := strconv.ParseInt(s.ID, 10, 64)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE scenes SET title = $1, description = $2, latitude = $3, longitude = $4 WHERE id = $5",
		s.Title, s.Description, s.Latitude, s.Longitude, id)
	if err != nil {
		return fmt.Errorf("update scene: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanScene(row interface{ Scan(...any) error }) (domain.Scene, error) {
	var (
		s         domain.Scene
		id, expID int64
	)
	if err := row.Scan(&id, &s.Title, &s.Description, &s.Latitude, &s.Longitude, &expID); err != nil {
		return domain.Scene{}, err
	}
	s.ID = strconv.FormatInt(id, 10)
	s.ExperienceID = strconv.FormatInt(expID, 10)
	return s, nil
}
