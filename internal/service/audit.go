package service

import (
	"context"
	"encoding/json"

	"github.com/clarionhq/clarion/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// emitAudit records a trail entry without ever failing the caller. The
// scoring pipeline must not depend on the sink being available.
func emitAudit(ctx context.Context, sink domain.AuditSink, logger *zap.Logger, tenantID, briefID uuid.UUID, kind domain.AuditKind, payload any) {
	if sink == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("marshal audit payload failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
		return
	}

	record := &domain.AuditRecord{
		TenantID: tenantID,
		BriefID:  briefID,
		Kind:     kind,
		Payload:  raw,
	}
	if err := sink.Record(ctx, record); err != nil {
		logger.Warn("audit record failed",
			zap.String("kind", string(kind)),
			zap.String("brief_id", briefID.String()),
			zap.Error(err))
	}
}
