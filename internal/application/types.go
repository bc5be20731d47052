package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/canonical"
	"github.com/casetrail/assurance-service/internal/domain"
)

// AppendEventInput is the caller-supplied part of an audit event. The server
// assigns timestamp, sequence and hashes.
type AppendEventInput struct {
	TenantID    string
	EntityType  string
	EntityID    *string
	Action      string
	ActorUserID *string
	ActorType   string
	Diff        canonical.Value
	Metadata    canonical.Value
}

// LogAccessInput carries one access decision. IPAddress and UserAgent are raw
// transient values; they are hashed before anything is persisted.
type LogAccessInput struct {
	TenantID     string
	UserID       *string
	AccessType   string
	ResourceType string
	ResourceID   string
	CaseID       *string
	IPAddress    string
	UserAgent    string
	Outcome      domain.AccessOutcome
	Reason       *string
}

// AccessLogQuery is the filter/pagination envelope for access-log reads.
type AccessLogQuery struct {
	ResourceType *string
	CaseID       *string
	UserID       *string
	Outcome      *domain.AccessOutcome
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// AccessLogPage is one page of access-log results.
type AccessLogPage struct {
	Entries []domain.AccessLogEntry
	Total   int64
	Limit   int
	Offset  int
}

// RetentionPolicyInput creates or replaces a retention policy.
type RetentionPolicyInput struct {
	ArtifactType      string
	RetentionDays     int
	DeleteMode        domain.DeleteMode
	LegalHoldRespects bool
	Enabled           bool
}

// ApprovalInput opens a guarded two-step action.
type ApprovalInput struct {
	RuleID      string
	ActionType  string
	SubjectType string
	SubjectID   *string
}

// ApprovalDecision resolves a pending approval request.
type ApprovalDecision struct {
	RequestID uuid.UUID
	Approve   bool
	Comment   *string
}

// SodPolicyInput replaces a tenant's SoD configuration.
type SodPolicyInput struct {
	Enabled bool
	Rules   []domain.SodRule
}

// DeletionEventExportRow is one fixed-column export line for a deletion event.
type DeletionEventExportRow struct {
	ArtifactType     string  `json:"artifactType"`
	ArtifactID       string  `json:"artifactId"`
	CaseID           *string `json:"caseId"`
	DeletedAt        string  `json:"deletedAt"`
	DeletionMethod   string  `json:"deletionMethod"`
	ProofHash        string  `json:"proofHash"`
	LegalHoldBlocked bool    `json:"legalHoldBlocked"`
	Reason           string  `json:"reason"`
}
