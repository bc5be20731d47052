package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/canonical"
)

// AuditEvent is one link of a tenant's append-only hash chain. Events are never
// updated or deleted after creation; Seq orders the chain and PrevHash/Hash
// bind each event to its predecessor.
type AuditEvent struct {
	EventID     uuid.UUID
	TenantID    string
	Seq         int64
	EntityType  string
	EntityID    *string
	Action      string
	ActorUserID *string
	ActorType   string
	OccurredAt  time.Time
	Diff        canonical.Value
	Metadata    canonical.Value
	PrevHash    *string
	Hash        string
}

// AccessOutcome is the recorded result of a resource access.
type AccessOutcome string

const (
	AccessAllowed AccessOutcome = "ALLOWED"
	AccessDenied  AccessOutcome = "DENIED"
)

// AccessLogEntry records one allowed or denied resource access. IP address and
// user agent are stored only as salted hashes.
type AccessLogEntry struct {
	EntryID       uuid.UUID
	TenantID      string
	UserID        *string
	AccessType    string
	ResourceType  string
	ResourceID    string
	CaseID        *string
	IPHash        *string
	UserAgentHash *string
	Outcome       AccessOutcome
	Reason        *string
	OccurredAt    time.Time
}

// DeleteMode selects how an eligible artifact is removed.
type DeleteMode string

const (
	HardDelete DeleteMode = "HARD_DELETE"
	SoftDelete DeleteMode = "SOFT_DELETE"
)

// RetentionPolicy defines how long one artifact type may be kept for a tenant.
// At most one enabled policy exists per (tenant, artifact type); duplicates are
// rejected at write time.
type RetentionPolicy struct {
	PolicyID          uuid.UUID
	TenantID          string
	ArtifactType      string
	RetentionDays     int
	DeleteMode        DeleteMode
	LegalHoldRespects bool
	Enabled           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LegalHold suppresses destructive retention actions on a case's artifacts.
type LegalHold struct {
	CaseID    string
	Reason    string
	EnabledAt time.Time
	EnabledBy string
}

// Artifact is a registry row for a deletable platform artifact. The deletion
// job scans these rows; physical content lives behind the storage port.
type Artifact struct {
	ArtifactID     string
	TenantID       string
	ArtifactType   string
	CaseID         *string
	StorageRef     string
	CreatedAt      time.Time
	DeletedAt      *time.Time
	DeletionMethod *DeleteMode
}

// JobStatus is the lifecycle state of a deletion job.
type JobStatus string

const (
	JobRunning JobStatus = "RUNNING"
	JobSuccess JobStatus = "SUCCESS"
	JobFailed  JobStatus = "FAILED"
)

// JobSummary aggregates a deletion job's per-artifact outcomes.
// TotalDeleted + TotalBlocked never exceeds TotalEvaluated.
type JobSummary struct {
	TotalEvaluated int      `json:"total_evaluated"`
	TotalDeleted   int      `json:"total_deleted"`
	TotalBlocked   int      `json:"total_blocked"`
	Errors         []string `json:"errors"`
}

// DeletionJob is one retention-deletion run for a tenant, retained indefinitely
// as evidence.
type DeletionJob struct {
	JobID             uuid.UUID
	TenantID          string
	StartedAt         time.Time
	FinishedAt        *time.Time
	Status            JobStatus
	TriggeredByType   string
	TriggeredByUserID *string
	Summary           JobSummary
}

// DeletionEvent is the immutable per-artifact record of a deletion decision,
// carrying the proof hash over its canonical payload.
type DeletionEvent struct {
	DeletionEventID  uuid.UUID
	JobID            uuid.UUID
	ArtifactType     string
	ArtifactID       string
	CaseID           *string
	DeletedAt        time.Time
	DeletionMethod   DeleteMode
	ProofHash        string
	LegalHoldBlocked bool
	Reason           string
}

// SodRule is one tenant-configurable separation-of-duties rule. Rules are data;
// new guarded actions are added by introducing a rule id, not a code branch.
type SodRule struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// SodPolicy is a tenant's separation-of-duties configuration.
type SodPolicy struct {
	TenantID  string
	Enabled   bool
	Rules     []SodRule
	UpdatedAt time.Time
}

// ApprovalStatus is the state of a guarded two-step action.
type ApprovalStatus string

const (
	ApprovalRequested ApprovalStatus = "REQUESTED"
	ApprovalApproved  ApprovalStatus = "APPROVED"
	ApprovalRejected  ApprovalStatus = "REJECTED"
)

// ApprovalRequest is a pending or decided SoD-guarded action. Terminal states
// are immutable.
type ApprovalRequest struct {
	RequestID   uuid.UUID
	TenantID    string
	RuleID      string
	ActionType  string
	SubjectType string
	SubjectID   *string
	CreatedBy   string
	CreatedAt   time.Time
	Status      ApprovalStatus
	DecidedBy   *string
	DecidedAt   *time.Time
	Comment     *string
}

// ChainVerification is the outcome of replaying a tenant's audit chain.
// FirstInvalidIndex is the zero-based position of the first broken link.
type ChainVerification struct {
	Valid             bool    `json:"valid"`
	TotalEntries      int64   `json:"total_entries"`
	Error             *string `json:"error,omitempty"`
	FirstInvalidIndex *int64  `json:"first_invalid_index,omitempty"`
}
