package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guidedcare/pathway/internal/domain"
	"github.com/guidedcare/pathway/internal/scoring"
	"github.com/guidedcare/pathway/internal/store"
)

var (
	ErrAssessmentNotFound  = errors.New("assessment not found")
	ErrAssessmentCompleted = errors.New("assessment already completed")
)

// AssessmentService owns the session lifecycle: start, partial answer
// saves with progress tracking, and completion, which runs the scoring
// pipeline and attaches the resulting contract.
type AssessmentService struct {
	assessments domain.AssessmentStore
	handoffs    domain.HandoffStore
	engine      *scoring.Engine
	logger      *zap.Logger
}

func NewAssessmentService(
	assessments domain.AssessmentStore,
	handoffs domain.HandoffStore,
	engine *scoring.Engine,
	logger *zap.Logger,
) *AssessmentService {
	return &AssessmentService{
		assessments: assessments,
		handoffs:    handoffs,
		engine:      engine,
		logger:      logger,
	}
}

// Start creates a new in-progress session for the client.
func (s *AssessmentService) Start(ctx context.Context, clientID uuid.UUID, personLabel string) (*domain.AssessmentSession, error) {
	sess := &domain.AssessmentSession{
		ClientID:    clientID,
		PersonLabel: personLabel,
		Status:      domain.AssessmentInProgress,
		Answers:     domain.AnswerSet{},
	}
	if err := s.assessments.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}

	s.logger.Info("assessment started",
		zap.String("assessment_id", sess.ID.String()),
		zap.String("client_id", clientID.String()),
	)
	return sess, nil
}

// Get retrieves a session scoped to the owning client.
func (s *AssessmentService) Get(ctx context.Context, id uuid.UUID, clientID uuid.UUID) (*domain.AssessmentSession, error) {
	sess, err := s.assessments.GetByID(ctx, id, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, err
	}
	return sess, nil
}

// SaveAnswers merges a partial answer set into the session and
// recomputes progress. Keys outside the questionnaire schema are
// dropped; incoming empty answers clear earlier responses.
func (s *AssessmentService) SaveAnswers(ctx context.Context, id uuid.UUID, clientID uuid.UUID, incoming domain.AnswerSet) (*domain.AssessmentSession, error) {
	bundle := s.engine.Bundle()
	if bundle == nil {
		return nil, fmt.Errorf("save answers: %w", scoring.ErrConfigMissing)
	}

	sess, err := s.Get(ctx, id, clientID)
	if err != nil {
		return nil, err
	}
	if sess.Status == domain.AssessmentCompleted {
		return nil, ErrAssessmentCompleted
	}

	filtered := make(domain.AnswerSet, len(incoming))
	for qid, a := range incoming {
		if bundle.Schema.Lookup(qid) == nil {
			s.logger.Debug("dropping unknown answer key",
				zap.String("assessment_id", id.String()),
				zap.String("question_id", qid),
			)
			continue
		}
		filtered[qid] = a
	}

	merged := sess.Answers.Merge(filtered)
	progress := progressOf(bundle.Schema, merged)

	if err := s.assessments.UpdateAnswers(ctx, id, clientID, merged, progress); err != nil {
		switch {
		case errors.Is(err, store.ErrCompleted):
			return nil, ErrAssessmentCompleted
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("update answers: %w", err)
	}

	sess.Answers = merged
	sess.Progress = progress
	return sess, nil
}

// Complete runs the scoring pipeline over the stored answers, persists
// the contract and writes the downstream handoff projection. A session
// completes exactly once; re-runs mean a new session.
func (s *AssessmentService) Complete(ctx context.Context, id uuid.UUID, clientID uuid.UUID) (*domain.OutcomeContract, error) {
	sess, err := s.Get(ctx, id, clientID)
	if err != nil {
		return nil, err
	}
	if sess.Status == domain.AssessmentCompleted {
		return nil, ErrAssessmentCompleted
	}

	contract, err := s.engine.Score(sess.Answers)
	if err != nil {
		s.logger.Error("scoring pipeline failed",
			zap.String("assessment_id", id.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("score assessment: %w", err)
	}

	if err := s.assessments.Complete(ctx, id, clientID, contract); err != nil {
		switch {
		case errors.Is(err, store.ErrCompleted):
			return nil, ErrAssessmentCompleted
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("persist contract: %w", err)
	}

	// The handoff area is a projection; a failed or skipped write is
	// recovered by the re-projecting read path in GatingService.
	if s.handoffs != nil {
		if err := s.handoffs.Put(ctx, ProjectHandoff(id, contract)); err != nil {
			s.logger.Warn("handoff write failed",
				zap.String("assessment_id", id.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("assessment completed",
		zap.String("assessment_id", id.String()),
		zap.String("recommendation", string(contract.Recommendation)),
		zap.Float64("confidence", contract.Confidence),
		zap.String("channel", contract.Routing.Channel),
	)
	return contract, nil
}

// progressOf computes the percentage of required questions answered,
// capped at 99. Only explicit completion pins progress to 100.
func progressOf(schema *domain.QuestionSchema, answers domain.AnswerSet) int {
	required := schema.RequiredCount()
	if required == 0 {
		return 0
	}

	answered := 0
	for _, q := range schema.Questions {
		if !q.Required {
			continue
		}
		if a, ok := answers[q.ID]; ok && !a.Empty() {
			answered++
		}
	}

	p := answered * 100 / required
	if p > 99 {
		p = 99
	}
	return p
}
