package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guidedcare/pathway/internal/domain"
)

type AssessmentStore struct {
	db *pgxpool.Pool
}

func NewAssessmentStore(db *pgxpool.Pool) *AssessmentStore {
	return &AssessmentStore{db: db}
}

// Create starts a new assessment session for a client.
func (s *AssessmentStore) Create(ctx context.Context, sess *domain.AssessmentSession) error {
	if sess.Status == "" {
		sess.Status = domain.AssessmentInProgress
	}
	if sess.Answers == nil {
		sess.Answers = domain.AnswerSet{}
	}

	answersJSON, err := json.Marshal(sess.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO assessments (client_id, person_label, status, progress, answers)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		sess.ClientID, sess.PersonLabel, sess.Status, sess.Progress, answersJSON,
	).Scan(&sess.ID, &sess.CreatedAt, &sess.UpdatedAt)
}

// GetByID retrieves a session scoped to the owning client.
func (s *AssessmentStore) GetByID(ctx context.Context, id uuid.UUID, clientID uuid.UUID) (*domain.AssessmentSession, error) {
	sess := &domain.AssessmentSession{}
	var answersJSON, contractJSON []byte

	err := s.db.QueryRow(ctx,
		`SELECT id, client_id, person_label, status, progress, answers, contract,
			created_at, updated_at, completed_at
		 FROM assessments
		 WHERE id = $1 AND client_id = $2`,
		id, clientID,
	).Scan(
		&sess.ID, &sess.ClientID, &sess.PersonLabel, &sess.Status, &sess.Progress,
		&answersJSON, &contractJSON, &sess.CreatedAt, &sess.UpdatedAt, &sess.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &sess.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	if sess.Answers == nil {
		sess.Answers = domain.AnswerSet{}
	}
	if len(contractJSON) > 0 {
		if err := json.Unmarshal(contractJSON, &sess.Contract); err != nil {
			return nil, fmt.Errorf("unmarshal contract: %w", err)
		}
	}

	return sess, nil
}

// UpdateAnswers replaces the stored answer set and progress of an
// in-progress session. Completed sessions are refused.
func (s *AssessmentStore) UpdateAnswers(ctx context.Context, id uuid.UUID, clientID uuid.UUID, answers domain.AnswerSet, progress int) error {
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE assessments SET answers = $1, progress = $2, updated_at = NOW()
		 WHERE id = $3 AND client_id = $4 AND status = $5`,
		answersJSON, progress, id, clientID, domain.AssessmentInProgress,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.missReason(ctx, id, clientID)
	}
	return nil
}

// Complete attaches the outcome contract, pins progress to 100 and
// stamps completed_at. A session can be completed exactly once.
func (s *AssessmentStore) Complete(ctx context.Context, id uuid.UUID, clientID uuid.UUID, contract *domain.OutcomeContract) error {
	contractJSON, err := json.Marshal(contract)
	if err != nil {
		return fmt.Errorf("marshal contract: %w", err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE assessments SET
			status = $1, progress = 100, contract = $2,
			completed_at = NOW(), updated_at = NOW()
		 WHERE id = $3 AND client_id = $4 AND status = $5`,
		domain.AssessmentCompleted, contractJSON, id, clientID, domain.AssessmentInProgress,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.missReason(ctx, id, clientID)
	}
	return nil
}

// missReason disambiguates a zero-row guarded update: the session is
// either absent or already completed.
func (s *AssessmentStore) missReason(ctx context.Context, id uuid.UUID, clientID uuid.UUID) error {
	var status domain.AssessmentStatus
	err := s.db.QueryRow(ctx,
		`SELECT status FROM assessments WHERE id = $1 AND client_id = $2`,
		id, clientID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if status == domain.AssessmentCompleted {
		return ErrCompleted
	}
	return ErrNotFound
}

// CountByStatus returns session counts grouped by status.
func (s *AssessmentStore) CountByStatus(ctx context.Context) (map[domain.AssessmentStatus]int, error) {
	rows, err := s.db.Query(ctx,
		`SELECT status, COUNT(*) FROM assessments GROUP BY status`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.AssessmentStatus]int)
	for rows.Next() {
		var status domain.AssessmentStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

// RecentCompleted returns the most recently completed sessions, newest
// first.
func (s *AssessmentStore) RecentCompleted(ctx context.Context, limit int) ([]domain.AssessmentSession, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, client_id, person_label, status, progress, answers, contract,
			created_at, updated_at, completed_at
		 FROM assessments
		 WHERE status = $1
		 ORDER BY completed_at DESC
		 LIMIT $2`,
		domain.AssessmentCompleted, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.AssessmentSession
	for rows.Next() {
		var sess domain.AssessmentSession
		var answersJSON, contractJSON []byte
		err := rows.Scan(
			&sess.ID, &sess.ClientID, &sess.PersonLabel, &sess.Status, &sess.Progress,
			&answersJSON, &contractJSON, &sess.CreatedAt, &sess.UpdatedAt, &sess.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(answersJSON) > 0 {
			_ = json.Unmarshal(answersJSON, &sess.Answers)
		}
		if len(contractJSON) > 0 {
			_ = json.Unmarshal(contractJSON, &sess.Contract)
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

// Verify interface compliance at compile time
var _ domain.AssessmentStore = (*AssessmentStore)(nil)
