package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/domain"
)

// ChainHead is a tenant's current audit-chain tip.
type ChainHead struct {
	Seq  int64
	Hash string
}

// AuditEventRepository persists the per-tenant hash chain. There is no update
// or delete operation by design; Insert must fail with ErrChainConflict when
// another writer already took the same (tenant, seq) slot, which is the
// optimistic-concurrency precondition for appends.
type AuditEventRepository interface {
	Head(ctx context.Context, tenantID string) (*ChainHead, error)
	Insert(ctx context.Context, event domain.AuditEvent) error
	// ListBySeq returns events with seq > afterSeq in ascending order, at most
	// limit rows. Verification streams the chain through this method so memory
	// stays bounded for large tenants.
	ListBySeq(ctx context.Context, tenantID string, afterSeq int64, limit int) ([]domain.AuditEvent, error)
}

// AccessLogFilter narrows access-log queries. Nil fields are not applied.
type AccessLogFilter struct {
	ResourceType *string
	CaseID       *string
	UserID       *string
	Outcome      *domain.AccessOutcome
	From         *time.Time
	To           *time.Time
}

// AccessLogRepository stores append-only access records.
type AccessLogRepository interface {
	Insert(ctx context.Context, entry domain.AccessLogEntry) (domain.AccessLogEntry, error)
	List(ctx context.Context, tenantID string, filter AccessLogFilter, limit, offset int) ([]domain.AccessLogEntry, int64, error)
}

// RetentionPolicyRepository owns retention configuration. Create and Update
// must reject a second enabled policy for the same (tenant, artifact type)
// with ErrConflict.
type RetentionPolicyRepository interface {
	Create(ctx context.Context, policy domain.RetentionPolicy) (domain.RetentionPolicy, error)
	Update(ctx context.Context, policy domain.RetentionPolicy) (domain.RetentionPolicy, error)
	Delete(ctx context.Context, tenantID string, policyID uuid.UUID) error
	GetByID(ctx context.Context, tenantID string, policyID uuid.UUID) (domain.RetentionPolicy, error)
	List(ctx context.Context, tenantID string) ([]domain.RetentionPolicy, error)
	ListEnabled(ctx context.Context, tenantID string) ([]domain.RetentionPolicy, error)
}

// ArtifactRepository is the registry of deletable artifacts the job scans.
type ArtifactRepository interface {
	// ListDeletable returns artifacts of the given type that have not been
	// deleted (hard or soft), so re-running a job never reprocesses them.
	ListDeletable(ctx context.Context, tenantID, artifactType string) ([]domain.Artifact, error)
	MarkDeleted(ctx context.Context, tenantID, artifactID string, method domain.DeleteMode, at time.Time) error
	// Remove drops the registry row entirely; used by HARD_DELETE, which
	// removes content and metadata.
	Remove(ctx context.Context, tenantID, artifactID string) error
	Register(ctx context.Context, artifact domain.Artifact) (domain.Artifact, error)
}

// DeletionJobRepository stores jobs and their per-artifact deletion events.
// Events are written once and never mutated.
type DeletionJobRepository interface {
	Create(ctx context.Context, job domain.DeletionJob) (domain.DeletionJob, error)
	Finish(ctx context.Context, jobID uuid.UUID, status domain.JobStatus, summary domain.JobSummary, finishedAt time.Time) error
	GetByID(ctx context.Context, tenantID string, jobID uuid.UUID) (domain.DeletionJob, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]domain.DeletionJob, error)
	InsertEvent(ctx context.Context, event domain.DeletionEvent) (domain.DeletionEvent, error)
	ListEvents(ctx context.Context, jobID uuid.UUID) ([]domain.DeletionEvent, error)
}

// SodPolicyRepository stores one SoD policy row per tenant.
type SodPolicyRepository interface {
	Get(ctx context.Context, tenantID string) (domain.SodPolicy, error)
	Upsert(ctx context.Context, policy domain.SodPolicy) (domain.SodPolicy, error)
}

// ApprovalRepository owns the two-step guarded-action workflow.
type ApprovalRepository interface {
	Create(ctx context.Context, request domain.ApprovalRequest) (domain.ApprovalRequest, error)
	GetByID(ctx context.Context, tenantID string, requestID uuid.UUID) (domain.ApprovalRequest, error)
	List(ctx context.Context, tenantID string, status *domain.ApprovalStatus, limit, offset int) ([]domain.ApprovalRequest, error)
	// Decide transitions REQUESTED to a terminal state. It must fail with
	// ErrApprovalDecided when the request is already terminal.
	Decide(ctx context.Context, tenantID string, requestID uuid.UUID, status domain.ApprovalStatus, decidedBy string, comment *string, at time.Time) (domain.ApprovalRequest, error)
}

// OutboxEvent is the write-side event payload prior to storage.
// It is adapter-neutral to keep application code independent of broker specifics.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry/error metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	FirstSeenAt    time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository controls publish-retry workflow for assurance events.
// This explicit contract enables transactional outbox patterns without leaking DB details.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}
