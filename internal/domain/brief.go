package domain

import (
	"time"

	"github.com/google/uuid"
)

// Brief is a generated text artifact graded and repaired by the engine.
// Revision counts up every time refinement adopts a reconciled body.
type Brief struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Revision  int       `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SourceDocument is supporting material handed to fixers so suggested edits
// stay grounded in cited evidence.
type SourceDocument struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id,omitempty"`
	URL       string    `json:"url,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SourceWithScore pairs a retrieved source with its similarity to the query.
type SourceWithScore struct {
	SourceDocument
	Score float32 `json:"score"`
}
