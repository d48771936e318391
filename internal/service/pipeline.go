package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guidedcare/pathway/internal/domain"
)

// DefaultPipelineLimit caps how many recent completions the advisor
// pipeline view returns.
const DefaultPipelineLimit = 10

// PipelineEntry is one completed assessment reduced for the advisor
// dashboard list.
type PipelineEntry struct {
	AssessmentID   uuid.UUID          `json:"assessment_id"`
	PersonLabel    string             `json:"person_label"`
	Recommendation domain.CareSetting `json:"recommendation"`
	Confidence     float64            `json:"confidence"`
	Channel        string             `json:"channel"`
	Flags          []string           `json:"flags"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
}

// PipelineSummary is the advisor dashboard payload: stage counts plus
// the latest completions.
type PipelineSummary struct {
	Stages map[domain.AssessmentStatus]int `json:"stages"`
	Recent []PipelineEntry                 `json:"recent"`
}

// AdvisorService serves the internal advisor dashboard.
type AdvisorService struct {
	assessments domain.AssessmentStore
	logger      *zap.Logger
}

func NewAdvisorService(assessments domain.AssessmentStore, logger *zap.Logger) *AdvisorService {
	return &AdvisorService{assessments: assessments, logger: logger}
}

// Pipeline returns stage counts and the most recent completions.
func (s *AdvisorService) Pipeline(ctx context.Context, limit int) (*PipelineSummary, error) {
	if limit <= 0 {
		limit = DefaultPipelineLimit
	}

	stages, err := s.assessments.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	recent, err := s.assessments.RecentCompleted(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent completed: %w", err)
	}

	summary := &PipelineSummary{
		Stages: stages,
		Recent: make([]PipelineEntry, 0, len(recent)),
	}
	for _, sess := range recent {
		entry := PipelineEntry{
			AssessmentID: sess.ID,
			PersonLabel:  sess.PersonLabel,
			CompletedAt:  sess.CompletedAt,
			Flags:        []string{},
		}
		if sess.Contract != nil {
			entry.Recommendation = sess.Contract.Recommendation
			entry.Confidence = sess.Contract.Confidence
			entry.Channel = sess.Contract.Routing.Channel
			entry.Flags = append([]string{}, sess.Contract.Flags...)
		}
		summary.Recent = append(summary.Recent, entry)
	}

	return summary, nil
}
