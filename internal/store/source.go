package store

import (
	"context"
	"fmt"

	"github.com/clarionhq/clarion/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

type SourceStore struct {
	db *pgxpool.Pool
}

func NewSourceStore(db *pgxpool.Pool) *SourceStore {
	return &SourceStore{db: db}
}

func (s *SourceStore) Create(ctx context.Context, src *domain.SourceDocument) error {
	var embedding *pgvector.Vector
	if len(src.Embedding) > 0 {
		v := pgvector.NewVector(src.Embedding)
		embedding = &v
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO source_documents (tenant_id, url, title, content, embedding)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		src.TenantID, src.URL, src.Title, src.Content, embedding,
	).Scan(&src.ID, &src.CreatedAt)
}

func (s *SourceStore) GetByIDs(ctx context.Context, ids []uuid.UUID, tenantID uuid.UUID) ([]domain.SourceDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_id, url, title, content, created_at
		 FROM source_documents WHERE id = ANY($1) AND tenant_id = $2`,
		ids, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("get sources query: %w", err)
	}
	defer rows.Close()

	var results []domain.SourceDocument
	for rows.Next() {
		var src domain.SourceDocument
		if err := rows.Scan(&src.ID, &src.TenantID, &src.URL, &src.Title, &src.Content, &src.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		results = append(results, src)
	}
	return results, rows.Err()
}

// FindSimilar returns the tenant's source documents closest to the query
// embedding by cosine similarity, best first.
func (s *SourceStore) FindSimilar(ctx context.Context, tenantID uuid.UUID, embedding []float32, topK int) ([]domain.SourceWithScore, error) {
	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_id, url, title, content, created_at,
			1 - (embedding <=> $1) AS score
		 FROM source_documents
		 WHERE tenant_id = $2 AND embedding IS NOT NULL
		 ORDER BY score DESC
		 LIMIT $3`,
		vec, tenantID, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("find similar sources query: %w", err)
	}
	defer rows.Close()

	var results []domain.SourceWithScore
	for rows.Next() {
		var src domain.SourceWithScore
		if err := rows.Scan(&src.ID, &src.TenantID, &src.URL, &src.Title, &src.Content, &src.CreatedAt, &src.Score); err != nil {
			return nil, fmt.Errorf("scan source with score: %w", err)
		}
		results = append(results, src)
	}
	return results, rows.Err()
}
