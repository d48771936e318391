package domain

// SettingPoints is the per-setting point contribution of one
// (question, answer) pair.
type SettingPoints map[CareSetting]float64

// ScoreKey identifies one scoring-table entry.
type ScoreKey struct {
	QuestionID  string
	AnswerValue string
}

// ScoringTable maps (question, answer) pairs to their point
// contributions per care setting. The table is sparse: a pair with no
// entry contributes zero everywhere, which is legal data rather than an
// error. Built once by the loader and never mutated afterwards.
type ScoringTable struct {
	entries map[ScoreKey]SettingPoints
}

func NewScoringTable() *ScoringTable {
	return &ScoringTable{entries: make(map[ScoreKey]SettingPoints)}
}

// Add accumulates points for the (question, answer, setting) cell.
// Repeated rows for the same cell sum rather than overwrite.
func (t *ScoringTable) Add(questionID, answerValue string, setting CareSetting, points float64) {
	key := ScoreKey{QuestionID: questionID, AnswerValue: answerValue}
	sp, ok := t.entries[key]
	if !ok {
		sp = make(SettingPoints, 2)
		t.entries[key] = sp
	}
	sp[setting] += points
}

// Lookup returns the point contributions for a (question, answer)
// pair. A missing entry returns an empty mapping so that a valid but
// unscored answer looks exactly like "no points awarded".
func (t *ScoringTable) Lookup(questionID, answerValue string) SettingPoints {
	if sp, ok := t.entries[ScoreKey{QuestionID: questionID, AnswerValue: answerValue}]; ok {
		return sp
	}
	return SettingPoints{}
}

// Len returns the number of distinct (question, answer) entries.
func (t *ScoringTable) Len() int {
	return len(t.entries)
}
