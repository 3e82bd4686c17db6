package service

import (
	"context"
	"errors"
	"testing"

	"github.com/clarionhq/clarion/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type mockSourceStore struct {
	created     []*domain.SourceDocument
	similar     []domain.SourceWithScore
	similarErr  error
	lastTopK    int
	lastEmbed   []float32
}

func (m *mockSourceStore) Create(ctx context.Context, src *domain.SourceDocument) error {
	src.ID = uuid.New()
	m.created = append(m.created, src)
	return nil
}

func (m *mockSourceStore) GetByIDs(ctx context.Context, ids []uuid.UUID, tenantID uuid.UUID) ([]domain.SourceDocument, error) {
	return nil, nil
}

func (m *mockSourceStore) FindSimilar(ctx context.Context, tenantID uuid.UUID, embedding []float32, topK int) ([]domain.SourceWithScore, error) {
	m.lastEmbed = embedding
	m.lastTopK = topK
	return m.similar, m.similarErr
}

type mockEmbedder struct {
	err   error
	calls int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func TestSourceService_Ingest(t *testing.T) {
	store := &mockSourceStore{}
	svc := NewSourceService(store, &mockEmbedder{}, zap.NewNop())

	src := &domain.SourceDocument{TenantID: uuid.New(), Content: "billing latency data"}
	if err := svc.Ingest(context.Background(), src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("created = %d, want 1", len(store.created))
	}
	if len(src.Embedding) == 0 {
		t.Error("expected the document to be embedded")
	}
}

func TestSourceService_Ingest_EmbeddingFailureIsNonFatal(t *testing.T) {
	store := &mockSourceStore{}
	svc := NewSourceService(store, &mockEmbedder{err: errors.New("quota")}, zap.NewNop())

	src := &domain.SourceDocument{TenantID: uuid.New(), Content: "billing latency data"}
	if err := svc.Ingest(context.Background(), src); err != nil {
		t.Fatalf("embedding failure must not block ingestion: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("created = %d, want 1", len(store.created))
	}
	if len(src.Embedding) != 0 {
		t.Error("document should be stored without an embedding")
	}
}

func TestSourceService_Ingest_EmptyContent(t *testing.T) {
	svc := NewSourceService(&mockSourceStore{}, &mockEmbedder{}, zap.NewNop())

	err := svc.Ingest(context.Background(), &domain.SourceDocument{Content: "  "})
	if !errors.Is(err, ErrSourceContentEmpty) {
		t.Fatalf("err = %v, want ErrSourceContentEmpty", err)
	}
}

func TestSourceService_RetrieveForCritique(t *testing.T) {
	store := &mockSourceStore{
		similar: []domain.SourceWithScore{
			{SourceDocument: domain.SourceDocument{Title: "Latency Report"}, Score: 0.92},
			{SourceDocument: domain.SourceDocument{Title: "Contract Inventory"}, Score: 0.71},
		},
	}
	svc := NewSourceService(store, &mockEmbedder{}, zap.NewNop())

	sources := svc.RetrieveForCritique(context.Background(), uuid.New(), "claims lack citations", 0)

	if len(sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(sources))
	}
	if sources[0].Title != "Latency Report" {
		t.Errorf("order not preserved: %q first", sources[0].Title)
	}
	if store.lastTopK != DefaultSourceTopK {
		t.Errorf("topK = %d, want default %d", store.lastTopK, DefaultSourceTopK)
	}
}

func TestSourceService_RetrieveForCritique_DegradesToNoSources(t *testing.T) {
	store := &mockSourceStore{similarErr: errors.New("db down")}
	svc := NewSourceService(store, &mockEmbedder{}, zap.NewNop())

	if sources := svc.RetrieveForCritique(context.Background(), uuid.New(), "claims lack citations", 3); sources != nil {
		t.Errorf("sources = %v, want nil on retrieval failure", sources)
	}

	embedder := &mockEmbedder{err: errors.New("quota")}
	svc = NewSourceService(&mockSourceStore{}, embedder, zap.NewNop())
	if sources := svc.RetrieveForCritique(context.Background(), uuid.New(), "claims lack citations", 3); sources != nil {
		t.Errorf("sources = %v, want nil on embedding failure", sources)
	}

	if sources := svc.RetrieveForCritique(context.Background(), uuid.New(), "", 3); sources != nil {
		t.Errorf("sources = %v, want nil for empty critique", sources)
	}
}
