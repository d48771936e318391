package domain

import "strings"

type QuestionType string

const (
	QuestionSingle  QuestionType = "single"
	QuestionMulti   QuestionType = "multi"
	QuestionNumeric QuestionType = "numeric"
	QuestionText    QuestionType = "text"
)

func ValidQuestionType(t string) bool {
	switch QuestionType(t) {
	case QuestionSingle, QuestionMulti, QuestionNumeric, QuestionText:
		return true
	}
	return false
}

// Option is one selectable answer for a choice question.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Bucket maps a numeric response range onto a scoring-table answer
// value. Buckets are ordered; Max is the inclusive upper bound of the
// bucket, and the final bucket of a question leaves Max nil to catch
// everything above the previous bound. Values outside all buckets clamp
// to the nearest bucket rather than being discarded.
type Bucket struct {
	Max   *float64 `json:"max,omitempty"`
	Value string   `json:"value"`
}

// FlagTrigger raises a flag when the question is answered with any of
// the listed values.
type FlagTrigger struct {
	Flag  string   `json:"flag"`
	AnyOf []string `json:"any_of"`
}

// Question is a single questionnaire entry. The schema is immutable
// once loaded.
type Question struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Domain   CareDomain    `json:"domain"`
	Type     QuestionType  `json:"type"`
	Required bool          `json:"required"`
	Options  []Option      `json:"options,omitempty"`
	Buckets  []Bucket      `json:"buckets,omitempty"`
	Triggers []FlagTrigger `json:"triggers,omitempty"`
}

// HasOption reports whether value is a declared option (or bucket
// value, for numeric questions).
func (q *Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	for _, b := range q.Buckets {
		if b.Value == value {
			return true
		}
	}
	return false
}

// BucketFor maps a numeric response to its bucket value. Responses
// beyond the final bound clamp to the last bucket; a question with no
// buckets yields "".
func (q *Question) BucketFor(n float64) string {
	if len(q.Buckets) == 0 {
		return ""
	}
	for _, b := range q.Buckets {
		if b.Max == nil || n <= *b.Max {
			return b.Value
		}
	}
	return q.Buckets[len(q.Buckets)-1].Value
}

// QuestionSchema is the ordered questionnaire definition. Owned by the
// loader; treated as read-only everywhere else.
type QuestionSchema struct {
	Questions []Question
	byID      map[string]int
}

func NewQuestionSchema(questions []Question) *QuestionSchema {
	s := &QuestionSchema{
		Questions: questions,
		byID:      make(map[string]int, len(questions)),
	}
	for i, q := range questions {
		s.byID[q.ID] = i
	}
	return s
}

// Lookup returns the question with the given ID, or nil when the ID is
// not part of the schema.
func (s *QuestionSchema) Lookup(id string) *Question {
	if i, ok := s.byID[id]; ok {
		return &s.Questions[i]
	}
	return nil
}

func (s *QuestionSchema) Len() int {
	return len(s.Questions)
}

// RequiredCount returns how many questions must be answered for the
// assessment to count as complete.
func (s *QuestionSchema) RequiredCount() int {
	n := 0
	for _, q := range s.Questions {
		if q.Required {
			n++
		}
	}
	return n
}

// Answer is one user response. Choice questions populate Values
// (single-choice uses exactly one element), numeric questions populate
// Number, and free-text questions populate Text. The zero value is an
// unanswered question.
type Answer struct {
	Values []string `json:"values,omitempty"`
	Number *float64 `json:"number,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Empty reports whether the answer carries no response at all.
func (a Answer) Empty() bool {
	return len(a.Values) == 0 && a.Number == nil && strings.TrimSpace(a.Text) == ""
}

// AnswerSet maps question IDs to responses. Produced by the caller
// (the UI layer); the engine reads it without mutation, ignores unknown
// keys, and treats missing keys as unanswered.
type AnswerSet map[string]Answer

// Merge returns a copy of the set with the incoming answers applied on
// top. Incoming empty answers clear a previous response.
func (as AnswerSet) Merge(incoming AnswerSet) AnswerSet {
	out := make(AnswerSet, len(as)+len(incoming))
	for id, a := range as {
		out[id] = a
	}
	for id, a := range incoming {
		if a.Empty() {
			delete(out, id)
			continue
		}
		out[id] = a
	}
	return out
}
