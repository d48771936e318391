package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guidedcare/pathway/internal/domain"
)

func TestAdvisorPipeline(t *testing.T) {
	assessments := newFakeAssessmentStore()
	assessments.counts = map[domain.AssessmentStatus]int{
		domain.AssessmentInProgress: 7,
		domain.AssessmentCompleted:  3,
	}

	completedAt := time.Now().UTC()
	assessments.recent = []domain.AssessmentSession{
		{
			ID:          uuid.New(),
			PersonLabel: "Mom",
			Status:      domain.AssessmentCompleted,
			Progress:    100,
			Contract:    completedContract(),
			CompletedAt: &completedAt,
		},
		{
			// Contract missing (legacy row): the entry degrades instead
			// of panicking.
			ID:          uuid.New(),
			PersonLabel: "Uncle Joe",
			Status:      domain.AssessmentCompleted,
			Progress:    100,
			CompletedAt: &completedAt,
		},
	}

	svc := NewAdvisorService(assessments, zap.NewNop())

	summary, err := svc.Pipeline(context.Background(), 0)
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}

	if summary.Stages[domain.AssessmentInProgress] != 7 || summary.Stages[domain.AssessmentCompleted] != 3 {
		t.Errorf("Stages = %v", summary.Stages)
	}
	if len(summary.Recent) != 2 {
		t.Fatalf("Recent len = %d, want 2", len(summary.Recent))
	}

	first := summary.Recent[0]
	if first.PersonLabel != "Mom" || first.Recommendation != domain.SettingMemoryCare {
		t.Errorf("first entry = %+v", first)
	}
	if first.Channel != domain.ChannelAdvisor {
		t.Errorf("Channel = %q", first.Channel)
	}
	if len(first.Flags) != 1 || first.Flags[0] != "cognition_risk" {
		t.Errorf("Flags = %v", first.Flags)
	}

	second := summary.Recent[1]
	if second.Recommendation != "" || len(second.Flags) != 0 {
		t.Errorf("contract-less entry should be empty, got %+v", second)
	}
}

func TestAdvisorPipelineLimit(t *testing.T) {
	assessments := newFakeAssessmentStore()
	for i := 0; i < 15; i++ {
		assessments.recent = append(assessments.recent, domain.AssessmentSession{
			ID:     uuid.New(),
			Status: domain.AssessmentCompleted,
		})
	}

	svc := NewAdvisorService(assessments, zap.NewNop())

	summary, err := svc.Pipeline(context.Background(), 0)
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	if len(summary.Recent) != DefaultPipelineLimit {
		t.Errorf("Recent len = %d, want default limit %d", len(summary.Recent), DefaultPipelineLimit)
	}
}
