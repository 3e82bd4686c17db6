package service

import (
	"context"
	"errors"
	"strings"

	"github.com/clarionhq/clarion/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSourceContentEmpty = errors.New("source content is required")

// DefaultSourceTopK is how many supporting documents a fixer round pulls.
const DefaultSourceTopK = 5

// SourceService ingests supporting documents and retrieves the ones most
// relevant to a critique so fixers can ground their edits.
type SourceService struct {
	sourceStore domain.SourceStore
	embedder    domain.EmbeddingClient
	logger      *zap.Logger
}

func NewSourceService(ss domain.SourceStore, ec domain.EmbeddingClient, logger *zap.Logger) *SourceService {
	return &SourceService{
		sourceStore: ss,
		embedder:    ec,
		logger:      logger,
	}
}

// Ingest embeds and stores a source document. An embedding failure is not
// fatal: the document is stored without one and simply will not surface in
// similarity retrieval.
func (s *SourceService) Ingest(ctx context.Context, src *domain.SourceDocument) error {
	if strings.TrimSpace(src.Content) == "" {
		return ErrSourceContentEmpty
	}

	embedding, err := s.embedder.Embed(ctx, src.Content)
	if err != nil {
		s.logger.Warn("source embedding failed, storing without embedding",
			zap.String("url", src.URL),
			zap.Error(err))
	} else {
		src.Embedding = embedding
	}

	return s.sourceStore.Create(ctx, src)
}

// Resolve loads explicitly requested source documents.
func (s *SourceService) Resolve(ctx context.Context, ids []uuid.UUID, tenantID uuid.UUID) ([]domain.SourceDocument, error) {
	return s.sourceStore.GetByIDs(ctx, ids, tenantID)
}

// RetrieveForCritique returns the tenant's documents most similar to the
// critique text. A retrieval failure degrades to no sources rather than
// blocking the fixer round.
func (s *SourceService) RetrieveForCritique(ctx context.Context, tenantID uuid.UUID, critique string, topK int) []domain.SourceDocument {
	if strings.TrimSpace(critique) == "" {
		return nil
	}
	if topK <= 0 {
		topK = DefaultSourceTopK
	}

	embedding, err := s.embedder.Embed(ctx, critique)
	if err != nil {
		s.logger.Warn("critique embedding failed, fixers run without sources", zap.Error(err))
		return nil
	}

	scored, err := s.sourceStore.FindSimilar(ctx, tenantID, embedding, topK)
	if err != nil {
		s.logger.Warn("source retrieval failed, fixers run without sources", zap.Error(err))
		return nil
	}

	sources := make([]domain.SourceDocument, 0, len(scored))
	for _, sw := range scored {
		sources = append(sources, sw.SourceDocument)
	}
	return sources
}
