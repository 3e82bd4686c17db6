package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditKind classifies an execution record.
type AuditKind string

const (
	AuditVerdict      AuditKind = "verdict"
	AuditDisagreement AuditKind = "disagreement"
	AuditDiscussion   AuditKind = "discussion"
	AuditTiebreak     AuditKind = "tiebreak"
	AuditScore        AuditKind = "score"
	AuditAttempt      AuditKind = "attempt"
	AuditRefinement   AuditKind = "refinement"
)

func ValidAuditKind(k string) bool {
	switch AuditKind(k) {
	case AuditVerdict, AuditDisagreement, AuditDiscussion, AuditTiebreak,
		AuditScore, AuditAttempt, AuditRefinement:
		return true
	}
	return false
}

// AuditRecord is one structured execution record emitted by the engine.
// The engine only emits these; persistence belongs to the sink.
type AuditRecord struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id,omitempty"`
	BriefID   uuid.UUID       `json:"brief_id,omitempty"`
	Kind      AuditKind       `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuditSink receives execution records. Sink failures must never fail the
// operation that produced the record.
type AuditSink interface {
	Record(ctx context.Context, rec *AuditRecord) error
}
