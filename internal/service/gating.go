package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guidedcare/pathway/internal/domain"
	"github.com/guidedcare/pathway/internal/store"
)

var ErrLocked = errors.New("care plan not completed")

// Unlocked reports whether downstream products may consume the
// assessment. Both conditions are required: progress alone (an aborted
// run) or a contract alone (no completion marker) must not unlock.
func Unlocked(progress int, contract *domain.OutcomeContract) bool {
	if progress < 100 {
		return false
	}
	if contract == nil {
		return false
	}
	return contract.Recommendation != ""
}

// ProjectHandoff reduces a contract to the handoff projection written
// to the shared area for the next product in the journey.
func ProjectHandoff(assessmentID uuid.UUID, contract *domain.OutcomeContract) *domain.HandoffRecord {
	return &domain.HandoffRecord{
		AssessmentID:   assessmentID,
		Recommendation: contract.Recommendation,
		Flags:          append([]string{}, contract.Flags...),
		Tags:           append([]string{}, contract.Tags...),
		DomainScores:   contract.DomainScores.Clone(),
		GeneratedAt:    time.Now().UTC(),
	}
}

// GatingService applies the unlock policy and serves handoff records,
// re-projecting from the stored contract when the handoff area misses.
type GatingService struct {
	assessments domain.AssessmentStore
	handoffs    domain.HandoffStore
	tiles       []domain.Tile
	logger      *zap.Logger
}

func NewGatingService(
	assessments domain.AssessmentStore,
	handoffs domain.HandoffStore,
	logger *zap.Logger,
) *GatingService {
	return &GatingService{
		assessments: assessments,
		handoffs:    handoffs,
		tiles:       DefaultTiles(),
		logger:      logger,
	}
}

// Handoff returns the handoff record for an unlocked assessment. A
// handoff-area miss is healed by re-projecting from the contract; an
// unreachable handoff area degrades to serving the projection directly.
func (s *GatingService) Handoff(ctx context.Context, id uuid.UUID, clientID uuid.UUID) (*domain.HandoffRecord, error) {
	sess, err := s.assessments.GetByID(ctx, id, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, err
	}

	if !Unlocked(sess.Progress, sess.Contract) {
		return nil, ErrLocked
	}

	// No handoff area configured: serve the projection directly.
	if s.handoffs == nil {
		return ProjectHandoff(sess.ID, sess.Contract), nil
	}

	rec, err := s.handoffs.Get(ctx, id)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("handoff read failed, serving projection",
			zap.String("assessment_id", id.String()),
			zap.Error(err),
		)
	}

	rec = ProjectHandoff(sess.ID, sess.Contract)
	if err := s.handoffs.Put(ctx, rec); err != nil {
		s.logger.Warn("handoff heal write failed",
			zap.String("assessment_id", id.String()),
			zap.Error(err),
		)
	}
	return rec, nil
}

// TileView is one journey tile with its evaluated visibility.
type TileView struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Visible bool   `json:"visible"`
}

// Tiles evaluates tile visibility for a client role and session.
func (s *GatingService) Tiles(role domain.Role, sess *domain.AssessmentSession) []TileView {
	jctx := domain.JourneyContext{Role: role}
	if sess != nil {
		jctx = sess.Journey(role)
	}

	views := make([]TileView, 0, len(s.tiles))
	for _, t := range s.tiles {
		views = append(views, TileView{
			ID:      t.ID,
			Title:   t.Title,
			Visible: t.Visible(jctx),
		})
	}
	return views
}

// DefaultTiles is the journey surface catalogue. The cost planner tile
// mirrors the unlock rule; the advisor tiles key off routing and role.
func DefaultTiles() []domain.Tile {
	return []domain.Tile{
		{
			ID:    "guided_care_plan",
			Title: "Guided Care Plan",
		},
		{
			ID:    "cost_planner",
			Title: "Cost Planner",
			Requires: []domain.Rule{
				{Kind: domain.RuleMinProgress, Min: 100},
				{Kind: domain.RuleExists, Field: domain.FieldRecommendation},
			},
		},
		{
			ID:    "faq",
			Title: "Ask a Question",
		},
		{
			ID:    "advisor_followup",
			Title: "Talk to an Advisor",
			Requires: []domain.Rule{
				{Kind: domain.RuleEquals, Field: domain.FieldChannel, Value: domain.ChannelAdvisor},
			},
		},
		{
			ID:    "advisor_dashboard",
			Title: "Advisor Dashboard",
			Requires: []domain.Rule{
				{Kind: domain.RuleRoleIn, Roles: []domain.Role{domain.RoleAdvisor}},
			},
		},
	}
}
