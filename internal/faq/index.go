package faq

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/guidedcare/pathway/internal/domain"
)

// stopwords are dropped from both documents and queries. The list is
// deliberately small; domain words like "care" stay searchable.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "but": true, "by": true, "can": true,
	"do": true, "does": true, "for": true, "from": true, "has": true,
	"have": true, "how": true, "if": true, "in": true, "is": true,
	"it": true, "its": true, "my": true, "of": true, "on": true,
	"or": true, "our": true, "that": true, "the": true, "their": true,
	"there": true, "they": true, "this": true, "to": true, "was": true,
	"what": true, "when": true, "where": true, "which": true,
	"who": true, "will": true, "with": true, "you": true, "your": true,
}

// Tokenize lowercases s and splits it into index terms, dropping
// stopwords and single-character fragments.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// Index is the term-weighting model of one corpus build: a vocabulary
// mapping terms to vector dimensions and the inverse document
// frequency per term. Documents and queries must be vectorized by the
// same Index or their vectors are not comparable; the service swaps
// the whole Index together with the stored document vectors.
type Index struct {
	vocab map[string]int
	idf   []float32
	docs  int
}

// BuildIndex derives the vocabulary and IDF weights from a corpus.
// Terms are assigned dimensions in sorted order, so identical corpora
// always produce identical vectors.
func BuildIndex(docs []domain.FAQDocument) *Index {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range Tokenize(doc.Title + " " + doc.Content) {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	ix := &Index{
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float32, len(terms)),
		docs:  len(docs),
	}
	for i, term := range terms {
		ix.vocab[term] = i
		ix.idf[i] = float32(math.Log(float64(1+len(docs))/float64(1+df[term])) + 1)
	}
	return ix
}

// Vectorize maps text to its L2-normalized TF-IDF vector in this
// index's vocabulary. Text sharing no terms with the corpus yields
// nil.
func (ix *Index) Vectorize(text string) []float32 {
	if len(ix.vocab) == 0 {
		return nil
	}

	tf := make(map[int]float32)
	for _, term := range Tokenize(text) {
		if dim, ok := ix.vocab[term]; ok {
			tf[dim]++
		}
	}
	if len(tf) == 0 {
		return nil
	}

	vec := make([]float32, len(ix.idf))
	var norm float64
	for dim, count := range tf {
		w := count * ix.idf[dim]
		vec[dim] = w
		norm += float64(w) * float64(w)
	}

	scale := float32(1 / math.Sqrt(norm))
	for dim := range tf {
		vec[dim] *= scale
	}
	return vec
}

// Dimensions returns the vocabulary size, which is also the length of
// every vector this index produces.
func (ix *Index) Dimensions() int {
	return len(ix.vocab)
}
