package scoring

import (
	"github.com/guidedcare/pathway/internal/domain"
)

// Aggregation is the full breakdown of one answer set against one
// scoring table: per-domain totals, raw per-setting totals, the
// per-setting-per-domain contribution matrix the resolver weights, the
// flags raised while scoring, and the audit trace.
type Aggregation struct {
	Domains  domain.DomainScores
	Settings map[domain.CareSetting]float64
	Matrix   map[domain.CareSetting]domain.DomainScores
	Flags    domain.FlagSet
	Trace    []domain.TraceEntry
	Answered int
}

// Aggregate scores an answer set against the schema and scoring table.
// It is a pure function: identical inputs always produce identical
// output, including float totals, because accumulation follows the
// schema's question order and the fixed setting order rather than map
// iteration.
//
// Unanswered questions and unknown answer keys contribute zero. A
// multi-select answer contributes the union of its selected values'
// point entries, once per distinct value. Numeric answers map through
// the question's buckets, clamping values outside the configured range
// to the nearest bucket. Text answers are recorded in the trace but
// never score and never trigger flags.
func Aggregate(schema *domain.QuestionSchema, table *domain.ScoringTable, answers domain.AnswerSet) Aggregation {
	agg := Aggregation{
		Domains:  domain.DomainScores{},
		Settings: make(map[domain.CareSetting]float64, 4),
		Matrix:   make(map[domain.CareSetting]domain.DomainScores, 4),
		Flags:    domain.FlagSet{},
	}
	for _, s := range domain.AllSettings() {
		agg.Settings[s] = 0
		agg.Matrix[s] = domain.DomainScores{}
	}

	for _, q := range schema.Questions {
		answer, ok := answers[q.ID]
		if !ok || answer.Empty() {
			continue
		}
		agg.Answered++

		if q.Type == domain.QuestionText {
			agg.Trace = append(agg.Trace, domain.TraceEntry{
				QuestionID: q.ID,
				Domain:     q.Domain,
				Points:     domain.SettingPoints{},
			})
			continue
		}

		values := contributingValues(q, answer)
		if len(values) == 0 {
			continue
		}

		points := domain.SettingPoints{}
		for _, value := range values {
			entry := table.Lookup(q.ID, value)
			for _, s := range domain.AllSettings() {
				pts, ok := entry[s]
				if !ok {
					continue
				}
				points[s] += pts
				agg.Settings[s] += pts
				agg.Matrix[s][q.Domain] += pts
				agg.Domains[q.Domain] += pts
			}
		}

		for _, tr := range q.Triggers {
			if matchesAny(values, tr.AnyOf) {
				agg.Flags.Raise(tr.Flag)
			}
		}

		agg.Trace = append(agg.Trace, domain.TraceEntry{
			QuestionID: q.ID,
			Domain:     q.Domain,
			Values:     values,
			Points:     points,
		})
	}

	return agg
}

// contributingValues reduces an answer to the values looked up in the
// scoring table: the selected option for single questions, the distinct
// selected options for multi questions, and the bucket value for
// numeric questions.
func contributingValues(q domain.Question, answer domain.Answer) []string {
	switch q.Type {
	case domain.QuestionSingle:
		if len(answer.Values) == 0 {
			return nil
		}
		return answer.Values[:1]

	case domain.QuestionMulti:
		seen := make(map[string]bool, len(answer.Values))
		values := make([]string, 0, len(answer.Values))
		for _, v := range answer.Values {
			if seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}
		return values

	case domain.QuestionNumeric:
		if answer.Number == nil {
			return nil
		}
		bucket := q.BucketFor(*answer.Number)
		if bucket == "" {
			return nil
		}
		return []string{bucket}
	}

	return nil
}

func matchesAny(values, anyOf []string) bool {
	for _, v := range values {
		for _, want := range anyOf {
			if v == want {
				return true
			}
		}
	}
	return false
}
