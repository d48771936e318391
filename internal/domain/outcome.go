package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContractSchemaVersion tags the serialized shape of OutcomeContract.
// Renaming or removing any field read by the gating check is a breaking
// change that must bump this version and ship a migration.
const ContractSchemaVersion = 2

// Routing channels and next steps surfaced to the journey UI.
const (
	ChannelSelfServe = "self_serve"
	ChannelAdvisor   = "advisor"

	NextStepCostPlanner = "cost_planner"
	NextStepAdvisorCall = "advisor_call"
)

// Summary condenses the resolved result for display surfaces that do
// not need the full contract.
type Summary struct {
	TotalScore float64                 `json:"total_score"`
	Tier       CareSetting             `json:"tier"`
	Points     map[CareSetting]float64 `json:"points"`
}

// Routing tells the journey layer where to send the user next.
type Routing struct {
	Channel  string   `json:"channel"`
	NextStep string   `json:"next_step"`
	Reasons  []string `json:"reasons"`
}

// TraceEntry records how one answered question contributed to the
// result, for audit and advisor review.
type TraceEntry struct {
	QuestionID string                  `json:"question_id"`
	Domain     CareDomain              `json:"domain"`
	Values     []string                `json:"values,omitempty"`
	Points     map[CareSetting]float64 `json:"points"`
}

// Audit captures the provenance of a contract: which engine and
// configuration produced it, when, and from how much input.
type Audit struct {
	EngineVersion  string       `json:"engine_version"`
	ConfigDigest   string       `json:"config_digest"`
	ScoredAt       time.Time    `json:"scored_at"`
	Answered       int          `json:"answered"`
	TotalQuestions int          `json:"total_questions"`
	Trace          []TraceEntry `json:"trace,omitempty"`
}

// OutcomeContract is the terminal snapshot of a completed assessment.
// It is created exactly once per completed run and never mutated in
// place: a re-run replaces the stored contract wholesale. Downstream
// products (cost planner, advisor surfaces) read it and nothing else.
type OutcomeContract struct {
	SchemaVersion  int          `json:"schema_version"`
	Recommendation CareSetting  `json:"recommendation"`
	Confidence     float64      `json:"confidence"`
	DomainScores   DomainScores `json:"domain_scores"`
	Flags          []string     `json:"flags"`
	Tags           []string     `json:"tags"`
	Summary        Summary      `json:"summary"`
	Routing        Routing      `json:"routing"`
	Audit          Audit        `json:"audit"`
}

// HasFlag reports whether the contract carries the given flag.
func (c *OutcomeContract) HasFlag(id string) bool {
	for _, f := range c.Flags {
		if f == id {
			return true
		}
	}
	return false
}

// HandoffRecord is the reduced projection of a contract written to the
// shared handoff area for the next product in the journey. Consumers
// treat it as read-only.
type HandoffRecord struct {
	AssessmentID   uuid.UUID    `json:"assessment_id"`
	Recommendation CareSetting  `json:"recommendation"`
	Flags          []string     `json:"flags"`
	Tags           []string     `json:"tags"`
	DomainScores   DomainScores `json:"domain_scores"`
	GeneratedAt    time.Time    `json:"generated_at"`
}
