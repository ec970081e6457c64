// Package experience persists experiences and their save/share state.
package experience

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"github.com/wayfarer-app/wayfarer/internal/domain"
)

// Repo reads and writes experiences in Postgres.
type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const experienceColumns = "id, title, description, author_id, COALESCE(share_id, ''), saves_count"

func scanExperience(row interface{ Scan(...any) error }) (domain.Experience, error) {
	var (
		e  domain.Experience
		id int64
	)
	if err := row.Scan(&id, &e.Title, &e.Description, &e.AuthorID, &e.ShareID, &e.SavesCount); err != nil {
		return domain.Experience{}, err
	}
	e.ID = strconv.FormatInt(id, 10)
	return e, nil
}

// Get fetches a single experience by id without viewer flags.
func (r *Repo) Get(ctx context.Context, id string) (domain.Experience, error) {
	numericID, err := parseID(id)
	if err != nil {
		return domain.Experience{}, domain.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		"SELECT "+experienceColumns+" FROM experiences WHERE id = $1", numericID)
	e, err := scanExperience(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Experience{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Experience{}, fmt.Errorf("get experience: %w", err)
	}
	return e, nil
}

// GetByShareID resolves a share id to its experience.
func (r *Repo) GetByShareID(ctx context.Context, shareID string) (domain.Experience, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+experienceColumns+" FROM experiences WHERE share_id = $1", shareID)
	e, err := scanExperience(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Experience{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Experience{}, fmt.Errorf("get experience by share id: %w", err)
	}
	return e, nil
}

// GetByIDs bulk-fetches experiences and returns them in the order of ids.
// IDs without a matching row are dropped. Viewer flags are attached from
// viewerID and the viewer's save rows.
func (r *Repo) GetByIDs(ctx context.Context, viewerID string, ids []string) ([]domain.Experience, error) {
	if len(ids) == 0 {
		return []domain.Experience{}, nil
	}
	numericIDs := make([]int64, 0, len(ids))
	for _, id := range ids {
		n, err := parseID(id)
		if err != nil {
			continue
		}
		numericIDs = append(numericIDs, n)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+experienceColumns+" FROM experiences WHERE id = ANY($1)",
		pq.Array(numericIDs))
	if err != nil {
		return nil, fmt.Errorf("get experiences by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Experience, len(ids))
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("scan experience: %w", err)
		}
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate experiences: %w", err)
	}

	saved, err := r.savedSet(ctx, viewerID, numericIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Experience, 0, len(byID))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			continue
		}
		e.IsMine = e.AuthorID == viewerID
		e.IsSaved = saved[e.ID]
		out = append(out, e)
	}
	return out, nil
}

func (r *Repo) savedSet(ctx context.Context, viewerID string, ids []int64) (map[string]bool, error) {
	saved := make(map[string]bool, len(ids))
	viewer, err := parseID(viewerID)
	if err != nil || len(ids) == 0 {
		return saved, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT experience_id FROM saves WHERE person_id = $1 AND experience_id = ANY($2)",
		viewer, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get saved set: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan saved set: %w", err)
		}
		saved[strconv.FormatInt(id, 10)] = true
	}
	return saved, rows.Err()
}

// ListKind selects which slice of experiences List returns.
type ListKind int

const (
	// ListMine returns experiences authored by the viewer.
	ListMine ListKind = iota
	// ListSaved returns experiences the viewer has saved, newest save first.
	ListSaved
	// ListOthers returns confirmed authors' experiences the viewer does not
	// own and has not saved, most saved first.
	ListOthers
)

// List pages one slice of experiences for a viewer. It fetches limit+1 rows
// so the caller can tell whether a next page exists.
func (r *Repo) List(ctx context.Context, viewerID string, kind ListKind, offset, limit int) ([]domain.Experience, error) {
	viewer, err := parseID(viewerID)
	if err != nil {
		return nil, domain.ErrNoLogged
	}

	var query string
	switch kind {
	case ListMine:
		query = "SELECT " + experienceColumns + " FROM experiences WHERE author_id = $1 ORDER BY id DESC OFFSET $2 LIMIT $3"
	case ListSaved:
		query = "SELECT e.id, e.title, e.description, e.author_id, COALESCE(e.share_id, ''), e.saves_count " +
			"FROM experiences e JOIN saves s ON s.experience_id = e.id " +
			"WHERE s.person_id = $1 ORDER BY s.created_at DESC OFFSET $2 LIMIT $3"
	case ListOthers:
		query = "SELECT e.id, e.title, e.description, e.author_id, COALESCE(e.share_id, ''), e.saves_count " +
			"FROM experiences e JOIN people p ON p.id = e.author_id " +
			"WHERE e.author_id <> $1 AND p.is_confirmed " +
			"AND NOT EXISTS (SELECT 1 FROM saves s WHERE s.person_id = $1 AND s.experience_id = e.id) " +
			"ORDER BY e.saves_count DESC, e.id DESC OFFSET $2 LIMIT $3"
	default:
		return nil, fmt.Errorf("unknown list kind %d", kind)
	}

	rows, err := r.db.QueryContext(ctx, query, viewer, offset, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list experiences: %w", err)
	}
	defer rows.Close()

	var out []domain.Experience
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("scan experience: %w", err)
		}
		e.IsMine = kind == ListMine
		e.IsSaved = kind == ListSaved
		out = append(out, e)
	}
	return out, rows.Err()
}

// Create inserts an experience and returns it with its new id.
func (r *Repo) Create(ctx context.Context, e domain.Experience) (domain.Experience, error) {
	author, err := parseID(e.AuthorID)
	if err != nil {
		return domain.Experience{}, domain.ErrInvalidEntity
	}
	var id int64
	err = r.db.QueryRowContext(ctx,
		"INSERT INTO experiences (title, description, author_id) VALUES ($1, $2, $3) RETURNING id",
		e.Title, e.Description, author).Scan(&id)
	if err != nil {
		return domain.Experience{}, fmt.Errorf("create experience: %w", err)
	}
	e.ID = strconv.FormatInt(id, 10)
	e.IsMine = true
	return e, nil
}

// Update rewrites the title and description of an experience.
func (r *Repo) Update(ctx context.Context, e domain.Experience) error {
	id, err := parseID(e.ID)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE experiences SET title = $1, description = $2 WHERE id = $3",
		e.Title, e.Description, id)
	if err != nil {
		return fmt.Errorf("update experience: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Save records that a person saved an experience and bumps its counter.
// Saving twice is a no-op.
func (r *Repo) Save(ctx context.Context, personID, experienceID string) error {
	person, perr := parseID(personID)
	exp, eerr := parseID(experienceID)
	if perr != nil || eerr != nil {
		return domain.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO saves (person_id, experience_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		person, exp)
	if err != nil {
		return fmt.Errorf("save experience: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE experiences SET saves_count = saves_count + 1 WHERE id = $1", exp)
	if err != nil {
		return fmt.Errorf("bump saves count: %w", err)
	}
	return nil
}

// Unsave removes a save and decrements the counter. Unsaving an experience
// that was never saved is a no-op.
func (r *Repo) Unsave(ctx context.Context, personID, experienceID string) error {
	person, perr := parseID(personID)
	exp, eerr := parseID(experienceID)
	if perr != nil || eerr != nil {
		return domain.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM saves WHERE person_id = $1 AND experience_id = $2", person, exp)
	if err != nil {
		return fmt.Errorf("unsave experience: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE experiences SET saves_count = GREATEST(saves_count - 1, 0) WHERE id = $1", exp)
	if err != nil {
		return fmt.Errorf("drop saves count: %w", err)
	}
	return nil
}

// SetShareID assigns a share id to an experience that has none. It reports
// domain.ErrInvalidEntity when the candidate collides with an existing
// share id so the caller can retry with a fresh one.
func (r *Repo) SetShareID(ctx context.Context, experienceID, shareID string) error {
	id, err := parseID(experienceID)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE experiences SET share_id = $1 WHERE id = $2 AND share_id IS NULL",
		shareID, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.ErrInvalidEntity
		}
		return fmt.Errorf("set share id: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the experience is missing or it already carries a share id.
		// The caller re-reads to distinguish.
		return nil
	}
	return nil
}

// MaxID returns the highest experience id, or 0 when the table is empty.
// The reindex sweep uses it as its upper bound.
func (r *Repo) MaxID(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(id), 0) FROM experiences").Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max experience id: %w", err)
	}
	return max, nil
}

func parseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}
