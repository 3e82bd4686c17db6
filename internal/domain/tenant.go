package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an API consumer of the scoring service. Requests authenticate
// with a bearer API key stored only as a SHA-256 hash.
type Tenant struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	APIKeyHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
