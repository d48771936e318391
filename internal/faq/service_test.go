package faq

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/guidedcare/pathway/internal/domain"
	"go.uber.org/zap"
)

// fakeFAQStore ranks by dot product over the stored vectors, which for
// normalized vectors is exactly the cosine ordering the real store
// computes in SQL.
type fakeFAQStore struct {
	docs       []domain.FAQDocument
	replaceErr error
}

func (f *fakeFAQStore) Replace(ctx context.Context, docs []domain.FAQDocument) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.docs = docs
	return nil
}

func (f *fakeFAQStore) Search(ctx context.Context, vector []float32, topK int) ([]domain.FAQMatch, error) {
	var matches []domain.FAQMatch
	for _, doc := range f.docs {
		if len(doc.Vector) != len(vector) {
			continue
		}
		var dot float32
		for i := range vector {
			dot += vector[i] * doc.Vector[i]
		}
		matches = append(matches, domain.FAQMatch{FAQDocument: doc, Score: dot})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (f *fakeFAQStore) Count(ctx context.Context) (int, error) {
	return len(f.docs), nil
}

func newTestService(t *testing.T) (*Service, *fakeFAQStore) {
	t.Helper()
	store := &fakeFAQStore{}
	return NewService(store, writeCorpusDir(t), zap.NewNop()), store
}

func TestServiceReindexAndSearch(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	n, err := svc.Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if n != 3 || len(store.docs) != 3 {
		t.Fatalf("indexed %d documents (store has %d), want 3", n, len(store.docs))
	}
	for _, doc := range store.docs {
		if doc.Vector == nil || doc.IndexedAt.IsZero() {
			t.Errorf("document %s stored without vector or timestamp", doc.Slug)
		}
	}

	matches, err := svc.Search(ctx, "does medicaid pay for assisted living", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("no matches for an on-corpus query")
	}
	if matches[0].Slug != "medicaid-coverage" {
		t.Errorf("top match = %s, want medicaid-coverage", matches[0].Slug)
	}
	if matches[0].Score <= 0 || matches[0].Score > 1 {
		t.Errorf("score = %v, want within (0,1]", matches[0].Score)
	}
	if !strings.Contains(strings.ToLower(matches[0].Snippet), "medicaid") {
		t.Errorf("snippet %q does not surface the query term", matches[0].Snippet)
	}
}

func TestServiceSearchInputHandling(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Search(ctx, "medicaid", 5); !errors.Is(err, ErrNotIndexed) {
		t.Errorf("Search before Reindex = %v, want ErrNotIndexed", err)
	}

	if _, err := svc.Reindex(ctx); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	if _, err := svc.Search(ctx, "   ", 5); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("blank query = %v, want ErrEmptyQuery", err)
	}

	matches, err := svc.Search(ctx, "zyzzyva snorkel", 5)
	if err != nil {
		t.Fatalf("off-corpus query: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("off-corpus query returned %d matches, want 0", len(matches))
	}

	// topK is clamped, never trusted.
	matches, err = svc.Search(ctx, "assisted living", 0)
	if err != nil {
		t.Fatalf("Search with zero topK: %v", err)
	}
	if len(matches) > DefaultTopK {
		t.Errorf("zero topK returned %d matches, want at most %d", len(matches), DefaultTopK)
	}
}

func TestServiceReindexFailureLeavesServiceUnindexed(t *testing.T) {
	svc, store := newTestService(t)
	store.replaceErr = errors.New("connection reset")

	if _, err := svc.Reindex(context.Background()); err == nil {
		t.Fatal("Reindex should surface the store failure")
	}
	if _, err := svc.Search(context.Background(), "medicaid", 5); !errors.Is(err, ErrNotIndexed) {
		t.Errorf("Search after failed reindex = %v, want ErrNotIndexed", err)
	}
}

func TestSnippetWindowing(t *testing.T) {
	long := strings.Repeat("filler words before the target appears ", 10) +
		"Medicaid waivers can offset assisted living costs " +
		strings.Repeat("and plenty of trailing prose follows here ", 10)

	s := snippet(long, []string{"medicaid"})
	if !strings.Contains(s, "Medicaid") {
		t.Errorf("snippet %q lost the matched term", s)
	}
	if !strings.HasPrefix(s, "…") || !strings.HasSuffix(s, "…") {
		t.Errorf("mid-document snippet should be elided on both ends: %q", s)
	}
	if len(s) > 4*snippetRadius {
		t.Errorf("snippet too long: %d bytes", len(s))
	}

	if got := snippet("Short body.", []string{"absent"}); got != "Short body." {
		t.Errorf("fallback snippet = %q, want the whole short body", got)
	}
	if got := snippet("", []string{"x"}); got != "" {
		t.Errorf("empty content snippet = %q", got)
	}
}
