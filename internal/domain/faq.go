package domain

import "time"

// FAQDocument is one indexed corpus document. Content holds the plain
// text used for retrieval; HTML is the rendered body served to the UI.
// Vector is the document's term-weight vector in the vocabulary of the
// index build that produced it.
type FAQDocument struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Content   string    `json:"-"`
	HTML      string    `json:"html,omitempty"`
	Vector    []float32 `json:"-"`
	IndexedAt time.Time `json:"indexed_at"`
}

// FAQMatch is one search hit with its similarity score in [0,1].
type FAQMatch struct {
	FAQDocument
	Score   float32 `json:"score"`
	Snippet string  `json:"snippet,omitempty"`
}
