package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/guidedcare/pathway/internal/domain"
)

type FAQStore struct {
	db *pgxpool.Pool
}

func NewFAQStore(db *pgxpool.Pool) *FAQStore {
	return &FAQStore{db: db}
}

// Replace swaps the whole indexed corpus in one transaction. Documents
// from a single index build share one vocabulary, so their vectors are
// comparable; mixing builds is not.
func (s *FAQStore) Replace(ctx context.Context, docs []domain.FAQDocument) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM faq_documents`); err != nil {
		return fmt.Errorf("clear corpus: %w", err)
	}

	for _, doc := range docs {
		var embedding *pgvector.Vector
		if len(doc.Vector) > 0 {
			v := pgvector.NewVector(doc.Vector)
			embedding = &v
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO faq_documents (slug, title, content, html, embedding, indexed_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			doc.Slug, doc.Title, doc.Content, doc.HTML, embedding, doc.IndexedAt,
		)
		if err != nil {
			return fmt.Errorf("insert document %q: %w", doc.Slug, err)
		}
	}

	return tx.Commit(ctx)
}

// Search returns the topK documents nearest to the query vector by
// cosine distance. Documents without an embedding never match.
func (s *FAQStore) Search(ctx context.Context, vector []float32, topK int) ([]domain.FAQMatch, error) {
	if topK <= 0 {
		topK = 5
	}

	vec := pgvector.NewVector(vector)

	rows, err := s.db.Query(ctx,
		`SELECT slug, title, content, html, indexed_at,
		        1 - (embedding <=> $1) AS score
		 FROM faq_documents
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var matches []domain.FAQMatch
	for rows.Next() {
		var m domain.FAQMatch
		err := rows.Scan(&m.Slug, &m.Title, &m.Content, &m.HTML, &m.IndexedAt, &m.Score)
		if err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search rows: %w", err)
	}

	return matches, nil
}

// Count returns the number of indexed documents.
func (s *FAQStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM faq_documents`).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Verify interface compliance at compile time
var _ domain.FAQStore = (*FAQStore)(nil)
