package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/casetrail/assurance-service/internal/ports"
)

// Service orchestrates the assurance use-cases: audit chain, access logging,
// retention policies, deletion jobs and the SoD guard.
type Service struct {
	cfg         Config
	auditEvents ports.AuditEventRepository
	accessLogs  ports.AccessLogRepository
	policies    ports.RetentionPolicyRepository
	artifacts   ports.ArtifactRepository
	jobs        ports.DeletionJobRepository
	sodPolicies ports.SodPolicyRepository
	approvals   ports.ApprovalRepository
	outbox      ports.OutboxRepository
	jobLocks    ports.JobLockStore
	storage     ports.ArtifactStorage
	cases       ports.CaseService
	nowFn       func() time.Time
}

// Config carries the tunables the use-cases need at runtime.
type Config struct {
	// PseudonymSalt feeds the salted hash that replaces raw IP/user-agent.
	PseudonymSalt string
	// VerifyPageSize bounds memory during chain verification.
	VerifyPageSize int
	// ChainMaxRetries caps optimistic-concurrency retries on append.
	ChainMaxRetries int
	// JobLockTTL is the single-flight lock lifetime for deletion jobs.
	JobLockTTL time.Duration
	// ArtifactTypes is the closed set of artifact types retention policies may
	// reference. Unknown types are a validation error.
	ArtifactTypes   []string
	DefaultPageSize int
	MaxPageSize     int
}

// Dependencies bundles the ports Service needs; all are required except the
// ones a given use-case never touches in tests.
type Dependencies struct {
	Config      Config
	AuditEvents ports.AuditEventRepository
	AccessLogs  ports.AccessLogRepository
	Policies    ports.RetentionPolicyRepository
	Artifacts   ports.ArtifactRepository
	Jobs        ports.DeletionJobRepository
	SodPolicies ports.SodPolicyRepository
	Approvals   ports.ApprovalRepository
	Outbox      ports.OutboxRepository
	JobLocks    ports.JobLockStore
	Storage     ports.ArtifactStorage
	Cases       ports.CaseService
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.VerifyPageSize <= 0 {
		cfg.VerifyPageSize = 500
	}
	if cfg.ChainMaxRetries <= 0 {
		cfg.ChainMaxRetries = 5
	}
	if cfg.JobLockTTL <= 0 {
		cfg.JobLockTTL = 15 * time.Minute
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 50
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 500
	}
	if len(cfg.ArtifactTypes) == 0 {
		cfg.ArtifactTypes = DefaultArtifactTypes()
	}
	return &Service{
		cfg:         cfg,
		auditEvents: deps.AuditEvents,
		accessLogs:  deps.AccessLogs,
		policies:    deps.Policies,
		artifacts:   deps.Artifacts,
		jobs:        deps.Jobs,
		sodPolicies: deps.SodPolicies,
		approvals:   deps.Approvals,
		outbox:      deps.Outbox,
		jobLocks:    deps.JobLocks,
		storage:     deps.Storage,
		cases:       deps.Cases,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}

// DefaultArtifactTypes lists the platform artifact types subject to retention.
func DefaultArtifactTypes() []string {
	return []string{
		"IDV_ARTIFACT",
		"CASE_DOCUMENT",
		"RESPONSE_ATTACHMENT",
		"VENDOR_ASSESSMENT",
		"ACCESS_EXPORT",
	}
}

func (s *Service) knownArtifactType(artifactType string) bool {
	for _, t := range s.cfg.ArtifactTypes {
		if t == artifactType {
			return true
		}
	}
	return false
}

func (s *Service) clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func svcLogger() *slog.Logger {
	return slog.Default().With(
		"module", "application",
		"layer", "service",
	)
}

func logBestEffortFailure(ctx context.Context, operation string, err error, fields ...any) {
	all := append([]any{
		"operation", operation,
		"outcome", "failure",
		"error", err,
	}, fields...)
	svcLogger().ErrorContext(ctx, "best-effort side effect failed", all...)
}
