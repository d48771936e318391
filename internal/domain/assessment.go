package domain

import (
	"time"

	"github.com/google/uuid"
)

type AssessmentStatus string

const (
	AssessmentInProgress AssessmentStatus = "in_progress"
	AssessmentCompleted  AssessmentStatus = "completed"
)

// AssessmentSession is one guided-care-plan run for one person. The
// session accumulates partial answers until the caller completes it,
// at which point the contract is attached and the session becomes
// immutable. Progress is the completion percentage the gating policy
// consumes; it reaches 100 only through completion.
type AssessmentSession struct {
	ID          uuid.UUID        `json:"id"`
	ClientID    uuid.UUID        `json:"client_id"`
	PersonLabel string           `json:"person_label"`
	Status      AssessmentStatus `json:"status"`
	Progress    int              `json:"progress"`
	Answers     AnswerSet        `json:"answers"`
	Contract    *OutcomeContract `json:"contract,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// Journey builds the typed rule-evaluation snapshot for this session.
func (s *AssessmentSession) Journey(role Role) JourneyContext {
	ctx := JourneyContext{
		Role:     role,
		Progress: s.Progress,
		Status:   s.Status,
	}
	if s.Contract != nil {
		ctx.HasContract = true
		ctx.Recommendation = s.Contract.Recommendation
		ctx.Channel = s.Contract.Routing.Channel
		ctx.Flags = s.Contract.Flags
		ctx.Tags = s.Contract.Tags
	}
	return ctx
}
