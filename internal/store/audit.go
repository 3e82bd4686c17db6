package store

import (
	"context"
	"fmt"

	"github.com/clarionhq/clarion/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditStore persists the scoring and refinement trail. Writes are
// append-only; records are never updated or deleted.
type AuditStore struct {
	db *pgxpool.Pool
}

func NewAuditStore(db *pgxpool.Pool) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Record(ctx context.Context, r *domain.AuditRecord) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO audit_records (tenant_id, brief_id, kind, payload)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		r.TenantID, r.BriefID, r.Kind, r.Payload,
	).Scan(&r.ID, &r.CreatedAt)
}

// ListByBrief returns audit records for a brief, newest first. An empty
// kind matches all kinds.
func (s *AuditStore) ListByBrief(ctx context.Context, briefID uuid.UUID, tenantID uuid.UUID, kind domain.AuditKind, limit int) ([]domain.AuditRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT id, tenant_id, brief_id, kind, payload, created_at
		 FROM audit_records
		 WHERE brief_id = $1 AND tenant_id = $2`
	args := []any{briefID, tenantID}
	if kind != "" {
		query += ` AND kind = $3`
		args = append(args, kind)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit records query: %w", err)
	}
	defer rows.Close()

	var results []domain.AuditRecord
	for rows.Next() {
		var r domain.AuditRecord
		if err := rows.Scan(&r.ID, &r.TenantID, &r.BriefID, &r.Kind, &r.Payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
