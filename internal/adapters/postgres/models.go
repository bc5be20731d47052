package postgres

import (
	"time"

	"github.com/google/uuid"
)

type auditEventModel struct {
	EventID     uuid.UUID `gorm:"column:event_id;type:uuid;primaryKey"`
	TenantID    string    `gorm:"column:tenant_id"`
	Seq         int64     `gorm:"column:seq"`
	EntityType  string    `gorm:"column:entity_type"`
	EntityID    *string   `gorm:"column:entity_id"`
	Action      string    `gorm:"column:action"`
	ActorUserID *string   `gorm:"column:actor_user_id"`
	ActorType   string    `gorm:"column:actor_type"`
	OccurredAt  time.Time `gorm:"column:occurred_at"`
	Diff        string    `gorm:"column:diff;type:jsonb"`
	Metadata    string    `gorm:"column:metadata;type:jsonb"`
	PrevHash    *string   `gorm:"column:prev_hash"`
	Hash        string    `gorm:"column:hash"`
}

func (auditEventModel) TableName() string { return "audit_events" }

type accessLogModel struct {
	EntryID       uuid.UUID `gorm:"column:entry_id;type:uuid;primaryKey"`
	TenantID      string    `gorm:"column:tenant_id"`
	UserID        *string   `gorm:"column:user_id"`
	AccessType    string    `gorm:"column:access_type"`
	ResourceType  string    `gorm:"column:resource_type"`
	ResourceID    string    `gorm:"column:resource_id"`
	CaseID        *string   `gorm:"column:case_id"`
	IPHash        *string   `gorm:"column:ip_hash"`
	UserAgentHash *string   `gorm:"column:user_agent_hash"`
	Outcome       string    `gorm:"column:outcome"`
	Reason        *string   `gorm:"column:reason"`
	OccurredAt    time.Time `gorm:"column:occurred_at"`
}

func (accessLogModel) TableName() string { return "access_log_entries" }

type retentionPolicyModel struct {
	PolicyID          uuid.UUID `gorm:"column:policy_id;type:uuid;primaryKey"`
	TenantID          string    `gorm:"column:tenant_id"`
	ArtifactType      string    `gorm:"column:artifact_type"`
	RetentionDays     int       `gorm:"column:retention_days"`
	DeleteMode        string    `gorm:"column:delete_mode"`
	LegalHoldRespects bool      `gorm:"column:legal_hold_respects"`
	Enabled           bool      `gorm:"column:enabled"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (retentionPolicyModel) TableName() string { return "retention_policies" }

type artifactModel struct {
	TenantID       string     `gorm:"column:tenant_id;primaryKey"`
	ArtifactID     string     `gorm:"column:artifact_id;primaryKey"`
	ArtifactType   string     `gorm:"column:artifact_type"`
	CaseID         *string    `gorm:"column:case_id"`
	StorageRef     string     `gorm:"column:storage_ref"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at"`
	DeletionMethod *string    `gorm:"column:deletion_method"`
}

func (artifactModel) TableName() string { return "artifacts" }

type deletionJobModel struct {
	JobID             uuid.UUID  `gorm:"column:job_id;type:uuid;primaryKey"`
	TenantID          string     `gorm:"column:tenant_id"`
	StartedAt         time.Time  `gorm:"column:started_at"`
	FinishedAt        *time.Time `gorm:"column:finished_at"`
	Status            string     `gorm:"column:status"`
	TriggeredByType   string     `gorm:"column:triggered_by_type"`
	TriggeredByUserID *string    `gorm:"column:triggered_by_user_id"`
	Summary           string     `gorm:"column:summary;type:jsonb"`
}

func (deletionJobModel) TableName() string { return "deletion_jobs" }

type deletionEventModel struct {
	DeletionEventID  uuid.UUID `gorm:"column:deletion_event_id;type:uuid;primaryKey"`
	JobID            uuid.UUID `gorm:"column:job_id"`
	ArtifactType     string    `gorm:"column:artifact_type"`
	ArtifactID       string    `gorm:"column:artifact_id"`
	CaseID           *string   `gorm:"column:case_id"`
	DeletedAt        time.Time `gorm:"column:deleted_at"`
	DeletionMethod   string    `gorm:"column:deletion_method"`
	ProofHash        string    `gorm:"column:proof_hash"`
	LegalHoldBlocked bool      `gorm:"column:legal_hold_blocked"`
	Reason           string    `gorm:"column:reason"`
}

func (deletionEventModel) TableName() string { return "deletion_events" }

type sodPolicyModel struct {
	TenantID  string    `gorm:"column:tenant_id;primaryKey"`
	Enabled   bool      `gorm:"column:enabled"`
	Rules     string    `gorm:"column:rules;type:jsonb"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sodPolicyModel) TableName() string { return "sod_policies" }

type approvalRequestModel struct {
	RequestID   uuid.UUID  `gorm:"column:request_id;type:uuid;primaryKey"`
	TenantID    string     `gorm:"column:tenant_id"`
	RuleID      string     `gorm:"column:rule_id"`
	ActionType  string     `gorm:"column:action_type"`
	SubjectType string     `gorm:"column:subject_type"`
	SubjectID   *string    `gorm:"column:subject_id"`
	CreatedBy   string     `gorm:"column:created_by"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	Status      string     `gorm:"column:status"`
	DecidedBy   *string    `gorm:"column:decided_by"`
	DecidedAt   *time.Time `gorm:"column:decided_at"`
	Comment     *string    `gorm:"column:comment"`
}

func (approvalRequestModel) TableName() string { return "approval_requests" }

type assuranceOutboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	FirstSeenAt    time.Time  `gorm:"column:first_seen_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (assuranceOutboxModel) TableName() string { return "assurance_outbox" }
