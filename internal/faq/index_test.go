package faq

import (
	"math"
	"reflect"
	"testing"

	"github.com/guidedcare/pathway/internal/domain"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Does Medicaid cover assisted living?", []string{"medicaid", "cover", "assisted", "living"}},
		{"What is the cost?", []string{"cost"}},
		{"A an the of", []string{}},
		{"24/7 on-site nursing", []string{"24", "site", "nursing"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Tokenize(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func indexFixture() ([]domain.FAQDocument, *Index) {
	docs := []domain.FAQDocument{
		{Slug: "medicaid", Title: "Medicaid coverage", Content: "Medicaid waivers can offset assisted living costs in many states."},
		{Slug: "memory-care", Title: "Memory care costs", Content: "Memory care communities charge more than standard assisted living."},
		{Slug: "va", Title: "VA benefits", Content: "Veterans with a qualifying disability rating may receive monthly benefits."},
	}
	return docs, BuildIndex(docs)
}

func TestBuildIndexDeterministic(t *testing.T) {
	docs, ix1 := indexFixture()
	_, ix2 := indexFixture()

	v1 := ix1.Vectorize(docs[0].Content)
	v2 := ix2.Vectorize(docs[0].Content)
	if !reflect.DeepEqual(v1, v2) {
		t.Error("identical corpora must vectorize identically")
	}
}

func TestVectorizeNormalized(t *testing.T) {
	docs, ix := indexFixture()

	for _, doc := range docs {
		vec := ix.Vectorize(doc.Title + " " + doc.Content)
		if vec == nil {
			t.Fatalf("%s vectorized to nil", doc.Slug)
		}
		if len(vec) != ix.Dimensions() {
			t.Errorf("%s vector has %d dims, index has %d", doc.Slug, len(vec), ix.Dimensions())
		}

		var norm float64
		for _, w := range vec {
			norm += float64(w) * float64(w)
		}
		if math.Abs(math.Sqrt(norm)-1) > 1e-5 {
			t.Errorf("%s vector norm = %v, want 1", doc.Slug, math.Sqrt(norm))
		}
	}
}

func TestVectorizeUnknownTerms(t *testing.T) {
	_, ix := indexFixture()

	if vec := ix.Vectorize("zyzzyva snorkel"); vec != nil {
		t.Errorf("query with no corpus terms = %v, want nil", vec)
	}

	empty := BuildIndex(nil)
	if vec := empty.Vectorize("anything"); vec != nil {
		t.Errorf("empty index vectorized to %v, want nil", vec)
	}
}

func TestRareTermsWeighMore(t *testing.T) {
	_, ix := indexFixture()

	// "assisted" appears in two documents, "veterans" in one. The rarer
	// term must carry the higher IDF weight.
	assisted := ix.idf[ix.vocab["assisted"]]
	veterans := ix.idf[ix.vocab["veterans"]]
	if veterans <= assisted {
		t.Errorf("idf(veterans)=%v <= idf(assisted)=%v, want rarer term heavier", veterans, assisted)
	}
}
