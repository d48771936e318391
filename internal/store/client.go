package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guidedcare/pathway/internal/domain"
)

type ClientStore struct {
	db *pgxpool.Pool
}

func NewClientStore(db *pgxpool.Pool) *ClientStore {
	return &ClientStore{db: db}
}

// Create registers a new API client.
func (s *ClientStore) Create(ctx context.Context, c *domain.Client) error {
	if c.Role == "" {
		c.Role = domain.RoleConsumer
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO clients (name, role, api_key_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		c.Name, c.Role, c.APIKeyHash,
	).Scan(&c.ID, &c.CreatedAt)
}

// GetByAPIKeyHash looks up a client by its hashed API key.
func (s *ClientStore) GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*domain.Client, error) {
	c := &domain.Client{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, role, api_key_hash, created_at
		 FROM clients WHERE api_key_hash = $1`,
		apiKeyHash,
	).Scan(&c.ID, &c.Name, &c.Role, &c.APIKeyHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Verify interface compliance at compile time
var _ domain.ClientStore = (*ClientStore)(nil)
