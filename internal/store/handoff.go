package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/guidedcare/pathway/internal/domain"
)

// DefaultHandoffTTL bounds how long a handoff projection stays live.
// Consumers that miss re-project from the stored contract, so expiry
// is a cache eviction, not data loss.
const DefaultHandoffTTL = 30 * 24 * time.Hour

type HandoffStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewHandoffStore(client *redis.Client, ttl time.Duration) *HandoffStore {
	if ttl <= 0 {
		ttl = DefaultHandoffTTL
	}
	return &HandoffStore{client: client, ttl: ttl}
}

func (s *HandoffStore) key(assessmentID uuid.UUID) string {
	return fmt.Sprintf("handoff:%s", assessmentID)
}

// Put writes the handoff projection for an assessment, replacing any
// previous projection.
func (s *HandoffStore) Put(ctx context.Context, rec *domain.HandoffRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal handoff: %w", err)
	}
	return s.client.Set(ctx, s.key(rec.AssessmentID), data, s.ttl).Err()
}

// Get retrieves the handoff projection for an assessment.
func (s *HandoffStore) Get(ctx context.Context, assessmentID uuid.UUID) (*domain.HandoffRecord, error) {
	data, err := s.client.Get(ctx, s.key(assessmentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rec := &domain.HandoffRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("unmarshal handoff: %w", err)
	}
	return rec, nil
}

// Delete removes the handoff projection for an assessment.
func (s *HandoffStore) Delete(ctx context.Context, assessmentID uuid.UUID) error {
	n, err := s.client.Del(ctx, s.key(assessmentID)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Verify interface compliance at compile time
var _ domain.HandoffStore = (*HandoffStore)(nil)
