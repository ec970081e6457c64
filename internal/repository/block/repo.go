// Package block persists the block relationships between people.
package block

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/wayfarer-app/wayfarer/internal/domain"
)

// Repo reads and writes block relationships in Postgres.
type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// BlockedPeople returns the ids of everyone the person has blocked.
func (r *Repo) BlockedPeople(ctx context.Context, personID string) ([]string, error) {
	creator, err := strconv.ParseInt(personID, 10, 64)
	if err != nil {
		return []string{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT target_id FROM blocks WHERE creator_id = $1", creator)
	if err != nil {
		return nil, fmt.Errorf("get blocked people: %w", err)
	}
	defer rows.Close()

	blocked := []string{}
	for rows.Next() {
		var target int64
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("scan blocked person: %w", err)
		}
		blocked = append(blocked, strconv.FormatInt(target, 10))
	}
	return blocked, rows.Err()
}

// Exists reports whether creator has blocked target.
func (r *Repo) Exists(ctx context.Context, creatorID, targetID string) (bool, error) {
	creator, cerr := strconv.ParseInt(creatorID, 10, 64)
	target, terr := strconv.ParseInt(targetID, 10, 64)
	if cerr != nil || terr != nil {
		return false, nil
	}
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM blocks WHERE creator_id = $1 AND target_id = $2)",
		creator, target).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("block exists: %w", err)
	}
	return exists, nil
}

// Create records that creator blocked target. Blocking twice is a no-op.
func (r *Repo) Create(ctx context.Context, creatorID, targetID string) error {
	creator, cerr := strconv.ParseInt(creatorID, 10, 64)
	target, terr := strconv.ParseInt(targetID, 10, 64)
	if cerr != nil || terr != nil {
		return domain.ErrNotFound
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO blocks (creator_id, target_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		creator, target)
	if err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	return nil
}
