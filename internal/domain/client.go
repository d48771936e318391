package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role separates consumer-facing API clients from internal advisor
// tooling.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleAdvisor  Role = "advisor"
)

func ValidRole(r string) bool {
	switch Role(r) {
	case RoleConsumer, RoleAdvisor:
		return true
	}
	return false
}

// Client is an API consumer (the web UI, the cost planner front end,
// the advisor dashboard). Authentication is by hashed API key.
type Client struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	APIKeyHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
