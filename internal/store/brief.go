package store

import (
	"context"
	"errors"

	"github.com/clarionhq/clarion/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BriefStore struct {
	db *pgxpool.Pool
}

func NewBriefStore(db *pgxpool.Pool) *BriefStore {
	return &BriefStore{db: db}
}

func (s *BriefStore) Create(ctx context.Context, b *domain.Brief) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO briefs (tenant_id, title, content, revision)
		 VALUES ($1, $2, $3, 1)
		 RETURNING id, revision, created_at, updated_at`,
		b.TenantID, b.Title, b.Content,
	).Scan(&b.ID, &b.Revision, &b.CreatedAt, &b.UpdatedAt)
}

func (s *BriefStore) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.Brief, error) {
	b := &domain.Brief{}
	err := s.db.QueryRow(ctx,
		`SELECT id, tenant_id, title, content, revision, created_at, updated_at
		 FROM briefs WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(&b.ID, &b.TenantID, &b.Title, &b.Content, &b.Revision, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// UpdateContent stores a revised body and bumps the revision counter.
func (s *BriefStore) UpdateContent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, content string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE briefs SET content = $1, revision = revision + 1, updated_at = NOW()
		 WHERE id = $2 AND tenant_id = $3`,
		content, id, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
