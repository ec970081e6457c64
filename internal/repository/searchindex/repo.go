// Package searchindex maintains the denormalized experience documents in
// the FT index and serves candidate recall for ranked search.
package searchindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/wayfarer-app/wayfarer/internal/db"
	"github.com/wayfarer-app/wayfarer/internal/domain"
	"github.com/wayfarer-app/wayfarer/internal/domain/fuzzy"
)

const (
	// IndexName is the FT index holding experience documents.
	IndexName = "idx:experiences"

	keyPrefix = "experience:"
)

// textFields are the OR-matched recall fields: a document is a candidate
// when the query word matches any one of them.
var textFields = []string{
	fieldTitle,
	fieldDescription,
	fieldScenesTitles,
	fieldScenesDescriptions,
}

var returnFields = []string{
	fieldID,
	fieldTitle,
	fieldDescription,
	fieldScenesTitles,
	fieldScenesDescriptions,
	fieldAuthorID,
	fieldSavesCount,
	fieldCenterLatitude,
	fieldCenterLongitude,
}

// store is the consumer interface for index operations.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	Search(ctx context.Context, q *db.DocQuery) (*db.SearchResult, error)
}

// Repo reads and writes experience documents.
type Repo struct {
	store store
	index string
}

// New creates a search index repository using the default index name.
func New(s store) *Repo {
	return &Repo{store: s, index: IndexName}
}

// NewWithIndex creates a repository bound to a custom index name, letting
// tests work against a uniquely-namespaced index instead of a shared one.
func NewWithIndex(s store, index string) *Repo {
	return &Repo{store: s, index: index}
}

// Definition returns the FT schema for the experience index.
func Definition(name string) *db.IndexDefinition {
	return db.NewIndex(name).
		Prefix(keyPrefix).
		Text(fieldTitle).
		Text(fieldDescription).
		Text(fieldScenesTitles).
		Text(fieldScenesDescriptions).
		Tag(fieldAuthorID).
		Numeric(fieldSavesCount).
		Numeric(fieldCenterLatitude).
		Numeric(fieldCenterLongitude).
		MustBuild()
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	err := r.store.CreateIndex(ctx, Definition(r.index))
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// DropIndex removes the FT index; an absent index is not an error.
func (r *Repo) DropIndex(ctx context.Context) error {
	err := r.store.DropIndex(ctx, r.index)
	if err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}

// Index projects the experience and the complete current list of its
// scenes into a document and upserts it. Upserting the same input twice
// yields the same document.
func (r *Repo) Index(ctx context.Context, e domain.Experience, scenes []domain.Scene) error {
	doc := domain.NewExperienceDocument(e, scenes)
	if err := r.store.HSet(ctx, keyPrefix+doc.ID, docToFields(doc)); err != nil {
		return fmt.Errorf("index experience %s: %w", doc.ID, err)
	}
	return nil
}

// Delete removes the document for an experience. Missing documents are a
// no-op so deletes can be retried and raced freely.
func (r *Repo) Delete(ctx context.Context, experienceID string) error {
	if err := r.store.Del(ctx, keyPrefix+experienceID); err != nil {
		return fmt.Errorf("delete experience %s: %w", experienceID, err)
	}
	return nil
}

// Candidates runs typo-tolerant recall over the four text fields and
// returns up to window matching documents. An empty word is an open query
// matching every document; ranking happens app-side in the search usecase.
func (r *Repo) Candidates(ctx context.Context, word string, window int) ([]domain.ExperienceDocument, error) {
	q := &db.DocQuery{
		IndexName:    r.index,
		Limit:        window,
		ReturnFields: returnFields,
	}

	if tokens := fuzzy.Tokenize(word); len(tokens) > 0 {
		terms := make([]db.FuzzyTerm, len(tokens))
		for i, tok := range tokens {
			terms[i] = db.FuzzyTerm{Term: tok, MaxEdits: fuzzy.EditBudget(tok)}
		}
		q.Match = &db.MatchClause{Fields: textFields, Terms: terms}
	}

	res, err := r.store.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}

	docs := make([]domain.ExperienceDocument, 0, len(res.Entries))
	for _, entry := range res.Entries {
		docs = append(docs, docFromFields(entry.Key, entry.Fields))
	}
	return docs, nil
}
