package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/canonical"
	"github.com/casetrail/assurance-service/internal/domain"
	"github.com/casetrail/assurance-service/internal/ports"
	"github.com/casetrail/assurance-service/internal/proof"
	"github.com/casetrail/assurance-service/internal/retention"
)

const eventJobCompleted = "assurance.retention.job_completed"

// RunRetentionJob executes one synchronous retention-deletion batch for a
// tenant. Jobs are single-flight per tenant via a distributed lock; a held
// lock returns ErrJobAlreadyRunning. Per-artifact failures accumulate in the
// summary without aborting; only a job-level fatal error (the policy list
// being unreadable) marks the job FAILED.
func (s *Service) RunRetentionJob(ctx context.Context, tenantID, triggeredByType string, triggeredByUserID *string) (domain.DeletionJob, error) {
	if strings.TrimSpace(tenantID) == "" {
		return domain.DeletionJob{}, fmt.Errorf("%w: tenant id required", domain.ErrInvalidInput)
	}

	token, ok, err := s.jobLocks.Acquire(ctx, tenantID, s.cfg.JobLockTTL)
	if err != nil {
		return domain.DeletionJob{}, fmt.Errorf("acquire job lock: %w", err)
	}
	if !ok {
		return domain.DeletionJob{}, domain.ErrJobAlreadyRunning
	}
	defer func() {
		if err := s.jobLocks.Release(context.WithoutCancel(ctx), tenantID, token); err != nil {
			logBestEffortFailure(ctx, "release_job_lock", err, "tenant_id", tenantID)
		}
	}()

	job := domain.DeletionJob{
		JobID:             uuid.New(),
		TenantID:          tenantID,
		StartedAt:         s.nowFn().Truncate(time.Microsecond),
		Status:            domain.JobRunning,
		TriggeredByType:   triggeredByType,
		TriggeredByUserID: triggeredByUserID,
		Summary:           domain.JobSummary{Errors: []string{}},
	}
	job, err = s.jobs.Create(ctx, job)
	if err != nil {
		return domain.DeletionJob{}, fmt.Errorf("create deletion job: %w", err)
	}

	summary := domain.JobSummary{Errors: []string{}}
	status := domain.JobSuccess

	policies, err := s.policies.ListEnabled(ctx, tenantID)
	if err != nil {
		// Fatal: without the policy list there is nothing sound to scan.
		status = domain.JobFailed
		summary.Errors = append(summary.Errors, fmt.Sprintf("list retention policies: %v", err))
	} else {
		for _, policy := range policies {
			s.scanPolicy(ctx, job, policy, &summary)
		}
	}

	finishedAt := s.nowFn().Truncate(time.Microsecond)
	if err := s.jobs.Finish(ctx, job.JobID, status, summary, finishedAt); err != nil {
		return domain.DeletionJob{}, fmt.Errorf("finish deletion job: %w", err)
	}
	job.Status = status
	job.Summary = summary
	job.FinishedAt = &finishedAt

	s.appendAudit(ctx, jobAuditInput(job))
	s.enqueueJobEvent(ctx, job)

	return job, nil
}

// scanPolicy processes every not-yet-deleted artifact of the policy's type.
// Already-deleted artifacts (hard or soft) are excluded by the repository, so
// re-running a job never double-deletes or duplicates deletion events.
func (s *Service) scanPolicy(ctx context.Context, job domain.DeletionJob, policy domain.RetentionPolicy, summary *domain.JobSummary) {
	artifacts, err := s.artifacts.ListDeletable(ctx, job.TenantID, policy.ArtifactType)
	if err != nil {
		summary.Errors = append(summary.Errors,
			fmt.Sprintf("list %s artifacts: %v", policy.ArtifactType, err))
		return
	}

	now := s.nowFn()
	for _, artifact := range artifacts {
		summary.TotalEvaluated++
		if err := s.processArtifact(ctx, job, policy, artifact, now, summary); err != nil {
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("artifact %s/%s: %v", artifact.ArtifactType, artifact.ArtifactID, err))
		}
	}
}

func (s *Service) processArtifact(ctx context.Context, job domain.DeletionJob, policy domain.RetentionPolicy, artifact domain.Artifact, now time.Time, summary *domain.JobSummary) error {
	hasHold := false
	if artifact.CaseID != nil && policy.LegalHoldRespects {
		var err error
		hasHold, err = s.cases.HasActiveLegalHold(ctx, *artifact.CaseID)
		if err != nil {
			return fmt.Errorf("legal hold lookup: %w", err)
		}
	}

	decision := retention.Evaluate(policy, artifact.CreatedAt, now, hasHold)
	if !decision.Eligible {
		return nil
	}

	deletedAt := s.nowFn().Truncate(time.Microsecond)
	if decision.Blocked {
		summary.TotalBlocked++
		_, err := s.recordDeletionEvent(ctx, job, policy, artifact, deletedAt, true, decision.Reason)
		return err
	}

	if err := s.deleteArtifact(ctx, job.TenantID, policy.DeleteMode, artifact, deletedAt); err != nil {
		return err
	}
	summary.TotalDeleted++

	event, err := s.recordDeletionEvent(ctx, job, policy, artifact, deletedAt, false, decision.Reason)
	if err != nil {
		return err
	}
	s.appendAudit(ctx, deletionAuditInput(job, event))
	return nil
}

func (s *Service) deleteArtifact(ctx context.Context, tenantID string, mode domain.DeleteMode, artifact domain.Artifact, at time.Time) error {
	switch mode {
	case domain.HardDelete:
		if err := s.storage.Delete(ctx, artifact.StorageRef); err != nil {
			return fmt.Errorf("delete stored content: %w", err)
		}
		if err := s.artifacts.Remove(ctx, tenantID, artifact.ArtifactID); err != nil {
			return fmt.Errorf("remove artifact metadata: %w", err)
		}
	case domain.SoftDelete:
		if err := s.artifacts.MarkDeleted(ctx, tenantID, artifact.ArtifactID, domain.SoftDelete, at); err != nil {
			return fmt.Errorf("mark artifact deleted: %w", err)
		}
	default:
		return fmt.Errorf("%w: unknown delete mode %q", domain.ErrInvalidInput, mode)
	}
	return nil
}

func (s *Service) recordDeletionEvent(ctx context.Context, job domain.DeletionJob, policy domain.RetentionPolicy, artifact domain.Artifact, deletedAt time.Time, blocked bool, reason string) (domain.DeletionEvent, error) {
	proofHash := proof.Create(proof.Payload{
		TenantID:         job.TenantID,
		ArtifactType:     artifact.ArtifactType,
		ArtifactID:       artifact.ArtifactID,
		CaseID:           artifact.CaseID,
		DeletedAt:        deletedAt,
		DeletionMethod:   string(policy.DeleteMode),
		LegalHoldBlocked: blocked,
		Reason:           reason,
	})
	event := domain.DeletionEvent{
		DeletionEventID:  uuid.New(),
		JobID:            job.JobID,
		ArtifactType:     artifact.ArtifactType,
		ArtifactID:       artifact.ArtifactID,
		CaseID:           artifact.CaseID,
		DeletedAt:        deletedAt,
		DeletionMethod:   policy.DeleteMode,
		ProofHash:        proofHash,
		LegalHoldBlocked: blocked,
		Reason:           reason,
	}
	stored, err := s.jobs.InsertEvent(ctx, event)
	if err != nil {
		return domain.DeletionEvent{}, fmt.Errorf("insert deletion event: %w", err)
	}
	return stored, nil
}

// ListDeletionJobs pages the tenant's job history, newest first.
func (s *Service) ListDeletionJobs(ctx context.Context, tenantID string, limit, offset int) ([]domain.DeletionJob, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("%w: tenant id required", domain.ErrInvalidInput)
	}
	limit, offset = s.clampPage(limit, offset)
	return s.jobs.List(ctx, tenantID, limit, offset)
}

// GetDeletionJob returns one job scoped to the tenant.
func (s *Service) GetDeletionJob(ctx context.Context, tenantID string, jobID uuid.UUID) (domain.DeletionJob, error) {
	return s.jobs.GetByID(ctx, tenantID, jobID)
}

// ListDeletionEvents returns a job's per-artifact events.
func (s *Service) ListDeletionEvents(ctx context.Context, tenantID string, jobID uuid.UUID) ([]domain.DeletionEvent, error) {
	if _, err := s.jobs.GetByID(ctx, tenantID, jobID); err != nil {
		return nil, err
	}
	return s.jobs.ListEvents(ctx, jobID)
}

// ExportDeletionEvents flattens a job's events into the fixed export columns.
func (s *Service) ExportDeletionEvents(ctx context.Context, tenantID string, jobID uuid.UUID) ([]DeletionEventExportRow, error) {
	events, err := s.ListDeletionEvents(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	rows := make([]DeletionEventExportRow, 0, len(events))
	for _, event := range events {
		rows = append(rows, DeletionEventExportRow{
			ArtifactType:     event.ArtifactType,
			ArtifactID:       event.ArtifactID,
			CaseID:           event.CaseID,
			DeletedAt:        event.DeletedAt.UTC().Format(time.RFC3339Nano),
			DeletionMethod:   string(event.DeletionMethod),
			ProofHash:        event.ProofHash,
			LegalHoldBlocked: event.LegalHoldBlocked,
			Reason:           event.Reason,
		})
	}
	return rows, nil
}

// VerifyDeletionProof recomputes a stored deletion event's proof.
func (s *Service) VerifyDeletionProof(ctx context.Context, tenantID string, jobID uuid.UUID, deletionEventID uuid.UUID) (bool, error) {
	events, err := s.ListDeletionEvents(ctx, tenantID, jobID)
	if err != nil {
		return false, err
	}
	for _, event := range events {
		if event.DeletionEventID != deletionEventID {
			continue
		}
		return proof.Verify(proof.Payload{
			TenantID:         tenantID,
			ArtifactType:     event.ArtifactType,
			ArtifactID:       event.ArtifactID,
			CaseID:           event.CaseID,
			DeletedAt:        event.DeletedAt,
			DeletionMethod:   string(event.DeletionMethod),
			LegalHoldBlocked: event.LegalHoldBlocked,
			Reason:           event.Reason,
		}, event.ProofHash), nil
	}
	return false, domain.ErrNotFound
}

func jobAuditInput(job domain.DeletionJob) AppendEventInput {
	jobID := job.JobID.String()
	actorType := job.TriggeredByType
	if actorType == "" {
		actorType = "SYSTEM"
	}
	return AppendEventInput{
		TenantID:    job.TenantID,
		EntityType:  "DELETION_JOB",
		EntityID:    &jobID,
		Action:      "RETENTION_JOB_COMPLETED",
		ActorUserID: job.TriggeredByUserID,
		ActorType:   actorType,
		Metadata: canonical.Object(map[string]canonical.Value{
			"status":         canonical.String(string(job.Status)),
			"totalEvaluated": canonical.Number(float64(job.Summary.TotalEvaluated)),
			"totalDeleted":   canonical.Number(float64(job.Summary.TotalDeleted)),
			"totalBlocked":   canonical.Number(float64(job.Summary.TotalBlocked)),
			"errorCount":     canonical.Number(float64(len(job.Summary.Errors))),
		}),
	}
}

func deletionAuditInput(job domain.DeletionJob, event domain.DeletionEvent) AppendEventInput {
	artifactID := event.ArtifactID
	actorType := job.TriggeredByType
	if actorType == "" {
		actorType = "SYSTEM"
	}
	return AppendEventInput{
		TenantID:    job.TenantID,
		EntityType:  event.ArtifactType,
		EntityID:    &artifactID,
		Action:      "ARTIFACT_DELETED",
		ActorUserID: job.TriggeredByUserID,
		ActorType:   actorType,
		Metadata: canonical.Object(map[string]canonical.Value{
			"jobId":          canonical.String(job.JobID.String()),
			"deletionMethod": canonical.String(string(event.DeletionMethod)),
			"proofHash":      canonical.String(event.ProofHash),
			"reason":         canonical.String(event.Reason),
			"caseId":         optString(event.CaseID),
		}),
	}
}

func (s *Service) enqueueJobEvent(ctx context.Context, job domain.DeletionJob) {
	payload, err := json.Marshal(map[string]any{
		"tenant_id":       job.TenantID,
		"job_id":          job.JobID,
		"status":          job.Status,
		"total_evaluated": job.Summary.TotalEvaluated,
		"total_deleted":   job.Summary.TotalDeleted,
		"total_blocked":   job.Summary.TotalBlocked,
		"error_count":     len(job.Summary.Errors),
		"finished_at":     job.FinishedAt,
	})
	if err != nil {
		logBestEffortFailure(ctx, "marshal_job_event", err, "tenant_id", job.TenantID)
		return
	}
	event := ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventJobCompleted,
		PartitionKey: job.TenantID,
		Payload:      payload,
		OccurredAt:   s.nowFn(),
	}
	if err := s.outbox.Enqueue(ctx, event); err != nil {
		logBestEffortFailure(ctx, "enqueue_job_event", err, "tenant_id", job.TenantID)
	}
}
