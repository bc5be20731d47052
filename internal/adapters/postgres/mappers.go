package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/casetrail/assurance-service/internal/canonical"
	"github.com/casetrail/assurance-service/internal/domain"
)

func toAuditEventModel(event domain.AuditEvent) auditEventModel {
	return auditEventModel{
		EventID:     event.EventID,
		TenantID:    event.TenantID,
		Seq:         event.Seq,
		EntityType:  event.EntityType,
		EntityID:    event.EntityID,
		Action:      event.Action,
		ActorUserID: event.ActorUserID,
		ActorType:   event.ActorType,
		OccurredAt:  event.OccurredAt,
		Diff:        canonical.Serialize(event.Diff),
		Metadata:    canonical.Serialize(event.Metadata),
		PrevHash:    event.PrevHash,
		Hash:        event.Hash,
	}
}

func toDomainAuditEvent(row auditEventModel) (domain.AuditEvent, error) {
	diff, err := canonical.FromJSON([]byte(row.Diff))
	if err != nil {
		return domain.AuditEvent{}, fmt.Errorf("decode diff for event %s: %w", row.EventID, err)
	}
	metadata, err := canonical.FromJSON([]byte(row.Metadata))
	if err != nil {
		return domain.AuditEvent{}, fmt.Errorf("decode metadata for event %s: %w", row.EventID, err)
	}
	return domain.AuditEvent{
		EventID:     row.EventID,
		TenantID:    row.TenantID,
		Seq:         row.Seq,
		EntityType:  row.EntityType,
		EntityID:    row.EntityID,
		Action:      row.Action,
		ActorUserID: row.ActorUserID,
		ActorType:   row.ActorType,
		OccurredAt:  row.OccurredAt.UTC(),
		Diff:        diff,
		Metadata:    metadata,
		PrevHash:    row.PrevHash,
		Hash:        row.Hash,
	}, nil
}

func toAccessLogModel(entry domain.AccessLogEntry) accessLogModel {
	return accessLogModel{
		EntryID:       entry.EntryID,
		TenantID:      entry.TenantID,
		UserID:        entry.UserID,
		AccessType:    entry.AccessType,
		ResourceType:  entry.ResourceType,
		ResourceID:    entry.ResourceID,
		CaseID:        entry.CaseID,
		IPHash:        entry.IPHash,
		UserAgentHash: entry.UserAgentHash,
		Outcome:       string(entry.Outcome),
		Reason:        entry.Reason,
		OccurredAt:    entry.OccurredAt,
	}
}

func toDomainAccessLogEntry(row accessLogModel) domain.AccessLogEntry {
	return domain.AccessLogEntry{
		EntryID:       row.EntryID,
		TenantID:      row.TenantID,
		UserID:        row.UserID,
		AccessType:    row.AccessType,
		ResourceType:  row.ResourceType,
		ResourceID:    row.ResourceID,
		CaseID:        row.CaseID,
		IPHash:        row.IPHash,
		UserAgentHash: row.UserAgentHash,
		Outcome:       domain.AccessOutcome(row.Outcome),
		Reason:        row.Reason,
		OccurredAt:    row.OccurredAt.UTC(),
	}
}

func toRetentionPolicyModel(policy domain.RetentionPolicy) retentionPolicyModel {
	return retentionPolicyModel{
		PolicyID:          policy.PolicyID,
		TenantID:          policy.TenantID,
		ArtifactType:      policy.ArtifactType,
		RetentionDays:     policy.RetentionDays,
		DeleteMode:        string(policy.DeleteMode),
		LegalHoldRespects: policy.LegalHoldRespects,
		Enabled:           policy.Enabled,
		CreatedAt:         policy.CreatedAt,
		UpdatedAt:         policy.UpdatedAt,
	}
}

func toDomainRetentionPolicy(row retentionPolicyModel) domain.RetentionPolicy {
	return domain.RetentionPolicy{
		PolicyID:          row.PolicyID,
		TenantID:          row.TenantID,
		ArtifactType:      row.ArtifactType,
		RetentionDays:     row.RetentionDays,
		DeleteMode:        domain.DeleteMode(row.DeleteMode),
		LegalHoldRespects: row.LegalHoldRespects,
		Enabled:           row.Enabled,
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
	}
}

func toArtifactModel(artifact domain.Artifact) artifactModel {
	var method *string
	if artifact.DeletionMethod != nil {
		m := string(*artifact.DeletionMethod)
		method = &m
	}
	return artifactModel{
		TenantID:       artifact.TenantID,
		ArtifactID:     artifact.ArtifactID,
		ArtifactType:   artifact.ArtifactType,
		CaseID:         artifact.CaseID,
		StorageRef:     artifact.StorageRef,
		CreatedAt:      artifact.CreatedAt,
		DeletedAt:      artifact.DeletedAt,
		DeletionMethod: method,
	}
}

func toDomainArtifact(row artifactModel) domain.Artifact {
	var method *domain.DeleteMode
	if row.DeletionMethod != nil {
		m := domain.DeleteMode(*row.DeletionMethod)
		method = &m
	}
	return domain.Artifact{
		TenantID:       row.TenantID,
		ArtifactID:     row.ArtifactID,
		ArtifactType:   row.ArtifactType,
		CaseID:         row.CaseID,
		StorageRef:     row.StorageRef,
		CreatedAt:      row.CreatedAt.UTC(),
		DeletedAt:      row.DeletedAt,
		DeletionMethod: method,
	}
}

func toDeletionJobModel(job domain.DeletionJob) (deletionJobModel, error) {
	summary, err := json.Marshal(job.Summary)
	if err != nil {
		return deletionJobModel{}, fmt.Errorf("encode job summary: %w", err)
	}
	return deletionJobModel{
		JobID:             job.JobID,
		TenantID:          job.TenantID,
		StartedAt:         job.StartedAt,
		FinishedAt:        job.FinishedAt,
		Status:            string(job.Status),
		TriggeredByType:   job.TriggeredByType,
		TriggeredByUserID: job.TriggeredByUserID,
		Summary:           string(summary),
	}, nil
}

func toDomainDeletionJob(row deletionJobModel) (domain.DeletionJob, error) {
	var summary domain.JobSummary
	if row.Summary != "" {
		if err := json.Unmarshal([]byte(row.Summary), &summary); err != nil {
			return domain.DeletionJob{}, fmt.Errorf("decode summary for job %s: %w", row.JobID, err)
		}
	}
	return domain.DeletionJob{
		JobID:             row.JobID,
		TenantID:          row.TenantID,
		StartedAt:         row.StartedAt.UTC(),
		FinishedAt:        row.FinishedAt,
		Status:            domain.JobStatus(row.Status),
		TriggeredByType:   row.TriggeredByType,
		TriggeredByUserID: row.TriggeredByUserID,
		Summary:           summary,
	}, nil
}

func toDeletionEventModel(event domain.DeletionEvent) deletionEventModel {
	return deletionEventModel{
		DeletionEventID:  event.DeletionEventID,
		JobID:            event.JobID,
		ArtifactType:     event.ArtifactType,
		ArtifactID:       event.ArtifactID,
		CaseID:           event.CaseID,
		DeletedAt:        event.DeletedAt,
		DeletionMethod:   string(event.DeletionMethod),
		ProofHash:        event.ProofHash,
		LegalHoldBlocked: event.LegalHoldBlocked,
		Reason:           event.Reason,
	}
}

func toDomainDeletionEvent(row deletionEventModel) domain.DeletionEvent {
	return domain.DeletionEvent{
		DeletionEventID:  row.DeletionEventID,
		JobID:            row.JobID,
		ArtifactType:     row.ArtifactType,
		ArtifactID:       row.ArtifactID,
		CaseID:           row.CaseID,
		DeletedAt:        row.DeletedAt.UTC(),
		DeletionMethod:   domain.DeleteMode(row.DeletionMethod),
		ProofHash:        row.ProofHash,
		LegalHoldBlocked: row.LegalHoldBlocked,
		Reason:           row.Reason,
	}
}

func toSodPolicyModel(policy domain.SodPolicy) (sodPolicyModel, error) {
	rules, err := json.Marshal(policy.Rules)
	if err != nil {
		return sodPolicyModel{}, fmt.Errorf("encode sod rules: %w", err)
	}
	return sodPolicyModel{
		TenantID:  policy.TenantID,
		Enabled:   policy.Enabled,
		Rules:     string(rules),
		UpdatedAt: policy.UpdatedAt,
	}, nil
}

func toDomainSodPolicy(row sodPolicyModel) (domain.SodPolicy, error) {
	var rules []domain.SodRule
	if row.Rules != "" {
		if err := json.Unmarshal([]byte(row.Rules), &rules); err != nil {
			return domain.SodPolicy{}, fmt.Errorf("decode sod rules for tenant %s: %w", row.TenantID, err)
		}
	}
	return domain.SodPolicy{
		TenantID:  row.TenantID,
		Enabled:   row.Enabled,
		Rules:     rules,
		UpdatedAt: row.UpdatedAt.UTC(),
	}, nil
}

func toApprovalRequestModel(request domain.ApprovalRequest) approvalRequestModel {
	return approvalRequestModel{
		RequestID:   request.RequestID,
		TenantID:    request.TenantID,
		RuleID:      request.RuleID,
		ActionType:  request.ActionType,
		SubjectType: request.SubjectType,
		SubjectID:   request.SubjectID,
		CreatedBy:   request.CreatedBy,
		CreatedAt:   request.CreatedAt,
		Status:      string(request.Status),
		DecidedBy:   request.DecidedBy,
		DecidedAt:   request.DecidedAt,
		Comment:     request.Comment,
	}
}

func toDomainApprovalRequest(row approvalRequestModel) domain.ApprovalRequest {
	return domain.ApprovalRequest{
		RequestID:   row.RequestID,
		TenantID:    row.TenantID,
		RuleID:      row.RuleID,
		ActionType:  row.ActionType,
		SubjectType: row.SubjectType,
		SubjectID:   row.SubjectID,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt.UTC(),
		Status:      domain.ApprovalStatus(row.Status),
		DecidedBy:   row.DecidedBy,
		DecidedAt:   row.DecidedAt,
		Comment:     row.Comment,
	}
}
