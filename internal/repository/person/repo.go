// Package person resolves people and their access tokens.
package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/wayfarer-app/wayfarer/internal/domain"
)

// Repo reads people and auth tokens from Postgres.
type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Get fetches a person by id.
func (r *Repo) Get(ctx context.Context, id string) (domain.Person, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return domain.Person{}, domain.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, username, is_confirmed FROM people WHERE id = $1", numericID)
	return scanPerson(row)
}

// GetByAccessToken resolves a bearer token to its person. An unknown token
// reports domain.ErrNoLogged.
func (r *Repo) GetByAccessToken(ctx context.Context, token string) (domain.Person, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT p.id, p.username, p.is_confirmed FROM people p JOIN auth_tokens t ON t.person_id = p.id WHERE t.access_token = $1",
		token)
	p, err := scanPerson(row)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Person{}, domain.ErrNoLogged
	}
	return p, err
}

func scanPerson(row *sql.Row) (domain.Person, error) {
	var (
		p  domain.Person
		id int64
	)
	err := row.Scan(&id, &p.Username, &p.IsConfirmed)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Person{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Person{}, fmt.Errorf("scan person: %w", err)
	}
	p.ID = strconv.FormatInt(id, 10)
	return p, nil
}
