package faq

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/guidedcare/pathway/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultTopK = 5
	MaxTopK     = 20

	snippetRadius = 90
)

var (
	ErrEmptyQuery = errors.New("empty search query")
	ErrNotIndexed = errors.New("faq corpus not indexed")
)

// Service answers FAQ searches. Document vectors live in the store;
// the vocabulary that produced them lives here behind an atomic
// pointer. Reindex rebuilds both from the corpus directory so they
// can never drift apart across a deploy.
type Service struct {
	store  domain.FAQStore
	dir    string
	logger *zap.Logger
	index  atomic.Pointer[Index]
}

func NewService(store domain.FAQStore, dir string, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		dir:    dir,
		logger: logger,
	}
}

// Reindex loads the corpus, rebuilds the term index, revectorizes
// every document, and replaces the stored corpus wholesale. The
// in-memory index swaps only after the store accepts the new vectors.
// Returns the number of indexed documents.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	docs, err := LoadCorpus(s.dir)
	if err != nil {
		return 0, err
	}

	ix := BuildIndex(docs)
	now := time.Now().UTC()
	for i := range docs {
		docs[i].Vector = ix.Vectorize(docs[i].Title + " " + docs[i].Content)
		docs[i].IndexedAt = now
	}

	if err := s.store.Replace(ctx, docs); err != nil {
		return 0, err
	}
	s.index.Store(ix)

	s.logger.Info("faq corpus indexed",
		zap.Int("documents", len(docs)),
		zap.Int("terms", ix.Dimensions()))
	return len(docs), nil
}

// Search returns the topK most similar documents with highlighted
// snippets. A query sharing no vocabulary with the corpus returns no
// matches rather than an error.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]domain.FAQMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	ix := s.index.Load()
	if ix == nil {
		return nil, ErrNotIndexed
	}

	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	vec := ix.Vectorize(query)
	if vec == nil {
		return []domain.FAQMatch{}, nil
	}

	matches, err := s.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, err
	}

	terms := Tokenize(query)
	for i := range matches {
		matches[i].Snippet = snippet(matches[i].Content, terms)
		if matches[i].Score < 0 {
			matches[i].Score = 0
		}
		if matches[i].Score > 1 {
			matches[i].Score = 1
		}
	}
	return matches, nil
}

// snippet cuts a readable window around the first query term found in
// the content, falling back to the opening of the document.
func snippet(content string, terms []string) string {
	if content == "" {
		return ""
	}

	lower := strings.ToLower(content)
	at := -1
	for _, term := range terms {
		if i := strings.Index(lower, term); i >= 0 && (at < 0 || i < at) {
			at = i
		}
	}
	if at < 0 {
		at = 0
	}

	start := at - snippetRadius
	if start < 0 {
		start = 0
	}
	end := at + snippetRadius
	if end > len(content) {
		end = len(content)
	}

	// Snap to word boundaries so the cut never splits a word.
	if start > 0 {
		if i := strings.IndexByte(content[start:end], ' '); i >= 0 {
			start += i + 1
		}
	}
	if end < len(content) {
		if i := strings.LastIndexByte(content[start:end], ' '); i >= 0 {
			end = start + i
		}
	}

	out := strings.TrimSpace(content[start:end])
	if start > 0 {
		out = "…" + out
	}
	if end < len(content) {
		out += "…"
	}
	return out
}
