package articles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/db"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
)

// store is the consumer interface for article records (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// SearchFilter narrows a KNN search before scoring.
type SearchFilter struct {
	Category string
}

// Repo stores article records as Redis hashes behind an FT index.
type Repo struct {
	store      store
	keyPrefix  string
	indexName  string
	dimensions int
}

// New creates an article repository. keyPrefix namespaces every key,
// dimensions fixes the vector field width.
func New(s store, keyPrefix string, dimensions int) *Repo {
	return &Repo{
		store:      s,
		keyPrefix:  keyPrefix,
		indexName:  keyPrefix + "articles:idx",
		dimensions: dimensions,
	}
}

// EnsureIndex creates the article FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.indexName, err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(r.indexName).
		Prefix(r.articlePrefix()).
		Tag(fieldCategory).
		TagWithOpts(fieldTags, ",", false).
		Tag(fieldSourceName).
		Numeric(fieldPublishedTS).
		VectorHNSW(fieldVector, r.dimensions, db.DistanceCosine, 16, 200).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", r.indexName, err)
	}
	return nil
}

// Upsert stores records in a single pipelined write. Any failure aborts
// the whole batch.
func (r *Repo) Upsert(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(recs))
	for i, rec := range recs {
		items[i] = db.HashSetItem{
			Key:    r.articleKey(rec.Article.ID),
			Fields: recordToFields(rec),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d articles: %w", len(recs), err)
	}
	return nil
}

// Get returns a stored record with its vector.
func (r *Repo) Get(ctx context.Context, id string) (Record, error) {
	fields, err := r.store.HGetAll(ctx, r.articleKey(id))
	if err != nil {
		return Record{}, fmt.Errorf("get article %s: %w", id, err)
	}
	if len(fields) == 0 {
		return Record{}, domain.ErrArticleNotFound
	}
	return fieldsToRecord(id, fields), nil
}

// SearchByVector returns up to k nearest records ordered by similarity.
func (r *Repo) SearchByVector(ctx context.Context, vector []float32, k int, f SearchFilter) ([]Hit, error) {
	var conds []db.TagCondition
	if f.Category != "" {
		conds = append(conds, db.TagCondition{Field: fieldCategory, Value: f.Category})
	}

	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName,
		Filters:      conds,
		Vector:       vector,
		K:            k,
		ReturnFields: metaFields,
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	hits := make([]Hit, 0, len(result.Entries))
	for _, entry := range result.Entries {
		hits = append(hits, Hit{
			Record: fieldsToRecord(r.idFromKey(entry.Key), entry.Fields),
			Score:  entry.Score,
		})
	}
	return hits, nil
}

// ListMeta pages article metadata without vectors, for aggregation.
func (r *Repo) ListMeta(ctx context.Context, offset, limit int) ([]Record, int, error) {
	result, err := r.store.SearchList(ctx, r.indexName, "*", offset, limit, metaFields)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}

	recs := make([]Record, 0, len(result.Entries))
	for _, entry := range result.Entries {
		recs = append(recs, fieldsToRecord(r.idFromKey(entry.Key), entry.Fields))
	}
	return recs, result.Total, nil
}

// Count returns the number of indexed articles.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName, "*")
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// DeleteAll removes every article record and drops the index. Returns
// the number of deleted records.
func (r *Repo) DeleteAll(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, r.articlePrefix()+"*")
	if err != nil {
		return 0, fmt.Errorf("scan articles: %w", err)
	}

	if err := r.store.DelMulti(ctx, keys); err != nil {
		return 0, fmt.Errorf("delete %d articles: %w", len(keys), err)
	}

	if err := r.store.DropIndex(ctx, r.indexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return len(keys), fmt.Errorf("drop index %s: %w", r.indexName, err)
	}
	return len(keys), nil
}

// IndexName returns the FT index name derived from the key prefix.
func (r *Repo) IndexName() string {
	return r.indexName
}

func (r *Repo) articlePrefix() string {
	return r.keyPrefix + "article:"
}

func (r *Repo) articleKey(id string) string {
	return r.articlePrefix() + id
}

func (r *Repo) idFromKey(key string) string {
	return strings.TrimPrefix(key, r.articlePrefix())
}
