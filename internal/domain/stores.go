package domain

import (
	"context"

	"github.com/google/uuid"
)

type TenantStore interface {
	Create(ctx context.Context, t *Tenant) error
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*Tenant, error)
}

type BriefStore interface {
	Create(ctx context.Context, b *Brief) error
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Brief, error)
	// UpdateContent replaces the brief body after a refinement adopts a
	// reconciled revision.
	UpdateContent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, content string) error
}

type SourceStore interface {
	Create(ctx context.Context, s *SourceDocument) error
	GetByIDs(ctx context.Context, ids []uuid.UUID, tenantID uuid.UUID) ([]SourceDocument, error)
	// FindSimilar retrieves the topK sources nearest to the embedding by
	// cosine distance.
	FindSimilar(ctx context.Context, tenantID uuid.UUID, embedding []float32, topK int) ([]SourceWithScore, error)
}

// AuditStore persists execution records and serves them back for review.
type AuditStore interface {
	AuditSink
	ListByBrief(ctx context.Context, briefID uuid.UUID, tenantID uuid.UUID, kind AuditKind, limit int) ([]AuditRecord, error)
}
