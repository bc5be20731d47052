package postgres

import (
	"errors"

	"github.com/casetrail/assurance-service/internal/ports"
	"gorm.io/gorm"
)

// Repositories bundles the Postgres-backed port implementations for wiring.
type Repositories struct {
	AuditEvents ports.AuditEventRepository
	AccessLogs  ports.AccessLogRepository
	Policies    ports.RetentionPolicyRepository
	Artifacts   ports.ArtifactRepository
	Jobs        ports.DeletionJobRepository
	SodPolicies ports.SodPolicyRepository
	Approvals   ports.ApprovalRepository
	Outbox      ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		AuditEvents: &auditEventRepository{db: db},
		AccessLogs:  &accessLogRepository{db: db},
		Policies:    &retentionPolicyRepository{db: db},
		Artifacts:   &artifactRepository{db: db},
		Jobs:        &deletionJobRepository{db: db},
		SodPolicies: &sodPolicyRepository{db: db},
		Approvals:   &approvalRepository{db: db},
		Outbox:      &outboxRepository{db: db},
	}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
