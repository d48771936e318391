package domain

import (
	"context"

	"github.com/google/uuid"
)

type ClientStore interface {
	Create(ctx context.Context, c *Client) error
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*Client, error)
}

type AssessmentStore interface {
	Create(ctx context.Context, s *AssessmentSession) error
	GetByID(ctx context.Context, id uuid.UUID, clientID uuid.UUID) (*AssessmentSession, error)
	UpdateAnswers(ctx context.Context, id uuid.UUID, clientID uuid.UUID, answers AnswerSet, progress int) error
	// Complete attaches the contract, pins progress to 100 and stamps
	// CompletedAt. It must refuse to touch an already-completed session.
	Complete(ctx context.Context, id uuid.UUID, clientID uuid.UUID, contract *OutcomeContract) error
	CountByStatus(ctx context.Context) (map[AssessmentStatus]int, error)
	RecentCompleted(ctx context.Context, limit int) ([]AssessmentSession, error)
}

type FAQStore interface {
	// Replace swaps the whole indexed corpus in one transaction.
	Replace(ctx context.Context, docs []FAQDocument) error
	Search(ctx context.Context, vector []float32, topK int) ([]FAQMatch, error)
	Count(ctx context.Context) (int, error)
}

// HandoffStore is the shared handoff area between journey products.
// Entries are projections, not records of truth: a consumer that
// misses here re-projects from the stored contract.
type HandoffStore interface {
	Put(ctx context.Context, rec *HandoffRecord) error
	Get(ctx context.Context, assessmentID uuid.UUID) (*HandoffRecord, error)
	Delete(ctx context.Context, assessmentID uuid.UUID) error
}
