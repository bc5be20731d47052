package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/casetrail/assurance-service/internal/application"
	"github.com/casetrail/assurance-service/internal/canonical"
	"github.com/casetrail/assurance-service/internal/domain"
)

const tenant = "tenant-1"

func strPtr(s string) *string { return &s }

func appendInput(action string) application.AppendEventInput {
	return application.AppendEventInput{
		TenantID:   tenant,
		EntityType: "CASE",
		EntityID:   strPtr("case-1"),
		Action:     action,
		ActorType:  "USER",
		Diff: canonical.Object(map[string]canonical.Value{
			"status": canonical.String(action),
		}),
	}
}

func TestAppendEventBuildsHashChain(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	first, err := f.service.AppendEvent(ctx, appendInput("CASE_CREATED"))
	if err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if first.Seq != 1 || first.PrevHash != nil {
		t.Fatalf("genesis event should have seq 1 and no prev hash, got seq %d prev %v", first.Seq, first.PrevHash)
	}

	second, err := f.service.AppendEvent(ctx, appendInput("CASE_UPDATED"))
	if err != nil {
		t.Fatalf("second append failed: %v", err)
	}
	if second.Seq != 2 {
		t.Fatalf("expected seq 2, got %d", second.Seq)
	}
	if second.PrevHash == nil || *second.PrevHash != first.Hash {
		t.Fatalf("second event must link to the first event's hash")
	}

	third, err := f.service.AppendEvent(ctx, appendInput("CASE_CLOSED"))
	if err != nil {
		t.Fatalf("third append failed: %v", err)
	}
	if third.PrevHash == nil || *third.PrevHash != second.Hash {
		t.Fatalf("third event must link to the second event's hash")
	}

	verification, err := f.service.VerifyChain(ctx, tenant)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !verification.Valid || verification.TotalEntries != 3 {
		t.Fatalf("expected a valid 3-entry chain, got %+v", verification)
	}
}

func TestVerifyChainDetectsTampering(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	for _, action := range []string{"A", "B", "C"} {
		if _, err := f.service.AppendEvent(ctx, appendInput(action)); err != nil {
			t.Fatalf("append %s failed: %v", action, err)
		}
	}

	f.audit.tamper(1, func(e *domain.AuditEvent) {
		e.Action = "B_EDITED"
	})

	verification, err := f.service.VerifyChain(ctx, tenant)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if verification.Valid {
		t.Fatalf("tampered chain must not verify")
	}
	if verification.FirstInvalidIndex == nil || *verification.FirstInvalidIndex != 1 {
		t.Fatalf("expected first invalid index 1, got %+v", verification.FirstInvalidIndex)
	}
	if verification.Error == nil || *verification.Error == "" {
		t.Fatalf("expected a verification error message")
	}
}

func TestVerifyChainEmptyTenantIsValid(t *testing.T) {
	t.Parallel()

	f := newFixture()
	verification, err := f.service.VerifyChain(context.Background(), tenant)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !verification.Valid || verification.TotalEntries != 0 {
		t.Fatalf("empty chain should be valid with zero entries, got %+v", verification)
	}
}

func TestAppendEventRetriesOnChainConflict(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.audit.nextInsertErrs = []error{domain.ErrChainConflict, domain.ErrChainConflict}
	event, err := f.service.AppendEvent(ctx, appendInput("CASE_CREATED"))
	if err != nil {
		t.Fatalf("append should retry through transient conflicts: %v", err)
	}
	if event.Seq != 1 {
		t.Fatalf("expected seq 1 after retries, got %d", event.Seq)
	}
}

func TestAppendEventGivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.audit.nextInsertErrs = []error{
		domain.ErrChainConflict, domain.ErrChainConflict, domain.ErrChainConflict,
		domain.ErrChainConflict, domain.ErrChainConflict, domain.ErrChainConflict,
	}
	if _, err := f.service.AppendEvent(ctx, appendInput("CASE_CREATED")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict after exhausting retries, got %v", err)
	}
}

func TestAppendEventValidatesInput(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	input := appendInput("CASE_CREATED")
	input.TenantID = " "
	if _, err := f.service.AppendEvent(ctx, input); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank tenant, got %v", err)
	}

	input = appendInput("")
	if _, err := f.service.AppendEvent(ctx, input); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank action, got %v", err)
	}
}

func TestChainHeadStatus(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	seq, hash, err := f.service.ChainHeadStatus(ctx, tenant)
	if err != nil {
		t.Fatalf("head status failed: %v", err)
	}
	if seq != 0 || hash != nil {
		t.Fatalf("empty tenant should report zero head, got seq %d hash %v", seq, hash)
	}

	event, err := f.service.AppendEvent(ctx, appendInput("CASE_CREATED"))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	seq, hash, err = f.service.ChainHeadStatus(ctx, tenant)
	if err != nil {
		t.Fatalf("head status failed: %v", err)
	}
	if seq != 1 || hash == nil || *hash != event.Hash {
		t.Fatalf("head should match the appended event, got seq %d hash %v", seq, hash)
	}
}

func TestLogAccessPseudonymizesIPAndUserAgent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	entry, err := f.service.LogAccess(ctx, application.LogAccessInput{
		TenantID:     tenant,
		UserID:       strPtr("user-1"),
		AccessType:   "VIEW",
		ResourceType: "CASE_DOCUMENT",
		ResourceID:   "doc-1",
		IPAddress:    "203.0.113.7",
		UserAgent:    "Mozilla/5.0 test",
		Outcome:      domain.AccessAllowed,
	})
	if err != nil {
		t.Fatalf("log access failed: %v", err)
	}

	if entry.IPHash == nil || entry.UserAgentHash == nil {
		t.Fatalf("expected hashed IP and user agent")
	}
	if *entry.IPHash != canonical.HashWithSalt("test-salt", "203.0.113.7") {
		t.Fatalf("IP hash must be the salted digest of the raw address")
	}
	if strings.Contains(*entry.IPHash, "203.0.113.7") || strings.Contains(*entry.UserAgentHash, "Mozilla") {
		t.Fatalf("raw values must never appear in stored hashes")
	}

	if audits := f.audit.byAction(tenant, "ACCESS"); len(audits) != 1 {
		t.Fatalf("expected one mirrored ACCESS audit event, got %d", len(audits))
	}
	if events := f.outbox.byType("assurance.access.allowed"); len(events) != 1 {
		t.Fatalf("expected one access.allowed outbox event, got %d", len(events))
	}
}

func TestLogAccessDeniedPublishesDeniedEvent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.LogAccess(ctx, application.LogAccessInput{
		TenantID:     tenant,
		AccessType:   "EXPORT",
		ResourceType: "ACCESS_EXPORT",
		ResourceID:   "export-1",
		Outcome:      domain.AccessDenied,
		Reason:       strPtr("missing permission"),
	}); err != nil {
		t.Fatalf("log access failed: %v", err)
	}

	if events := f.outbox.byType("assurance.access.denied"); len(events) != 1 {
		t.Fatalf("expected one access.denied outbox event, got %d", len(events))
	}
}

func TestQueryAccessLogsFiltersByOutcome(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	for _, outcome := range []domain.AccessOutcome{domain.AccessAllowed, domain.AccessAllowed, domain.AccessDenied} {
		if _, err := f.service.LogAccess(ctx, application.LogAccessInput{
			TenantID:     tenant,
			AccessType:   "VIEW",
			ResourceType: "CASE_DOCUMENT",
			ResourceID:   "doc-1",
			Outcome:      outcome,
		}); err != nil {
			t.Fatalf("log access failed: %v", err)
		}
	}

	denied := domain.AccessDenied
	page, err := f.service.QueryAccessLogs(ctx, tenant, application.AccessLogQuery{Outcome: &denied})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if page.Total != 1 || len(page.Entries) != 1 {
		t.Fatalf("expected exactly one denied entry, got total %d len %d", page.Total, len(page.Entries))
	}
	if page.Entries[0].Outcome != domain.AccessDenied {
		t.Fatalf("expected denied outcome, got %s", page.Entries[0].Outcome)
	}
}

func TestCreateRetentionPolicyValidation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		name  string
		input application.RetentionPolicyInput
	}{
		{
			name: "unknown artifact type",
			input: application.RetentionPolicyInput{
				ArtifactType: "MYSTERY", RetentionDays: 30, DeleteMode: domain.HardDelete, Enabled: true,
			},
		},
		{
			name: "zero retention days",
			input: application.RetentionPolicyInput{
				ArtifactType: "IDV_ARTIFACT", RetentionDays: 0, DeleteMode: domain.HardDelete, Enabled: true,
			},
		},
		{
			name: "bad delete mode",
			input: application.RetentionPolicyInput{
				ArtifactType: "IDV_ARTIFACT", RetentionDays: 30, DeleteMode: "PURGE", Enabled: true,
			},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := f.service.CreateRetentionPolicy(ctx, tenant, "admin-1", tc.input); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestCreateRetentionPolicyRejectsDuplicateEnabled(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	input := application.RetentionPolicyInput{
		ArtifactType:  "IDV_ARTIFACT",
		RetentionDays: 90,
		DeleteMode:    domain.HardDelete,
		Enabled:       true,
	}
	if _, err := f.service.CreateRetentionPolicy(ctx, tenant, "admin-1", input); err != nil {
		t.Fatalf("first policy failed: %v", err)
	}
	if _, err := f.service.CreateRetentionPolicy(ctx, tenant, "admin-1", input); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for duplicate enabled policy, got %v", err)
	}
}

func seedPolicyAndArtifact(t *testing.T, f *fixture, mode domain.DeleteMode, caseID *string, ageDays int) domain.Artifact {
	t.Helper()
	ctx := context.Background()

	if _, err := f.service.CreateRetentionPolicy(ctx, tenant, "admin-1", application.RetentionPolicyInput{
		ArtifactType:      "IDV_ARTIFACT",
		RetentionDays:     30,
		DeleteMode:        mode,
		LegalHoldRespects: true,
		Enabled:           true,
	}); err != nil {
		t.Fatalf("create policy failed: %v", err)
	}

	artifact, err := f.service.RegisterArtifact(ctx, domain.Artifact{
		ArtifactID:   "artifact-1",
		TenantID:     tenant,
		ArtifactType: "IDV_ARTIFACT",
		CaseID:       caseID,
		StorageRef:   "s3://bucket/artifact-1",
		CreatedAt:    time.Now().UTC().Add(-time.Duration(ageDays) * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("register artifact failed: %v", err)
	}
	return artifact
}

func TestRunRetentionJobHardDeletesExpiredArtifacts(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	seedPolicyAndArtifact(t, f, domain.HardDelete, nil, 45)

	job, err := f.service.RunRetentionJob(ctx, tenant, "USER", strPtr("admin-1"))
	if err != nil {
		t.Fatalf("run job failed: %v", err)
	}
	if job.Status != domain.JobSuccess {
		t.Fatalf("expected SUCCESS, got %s with errors %v", job.Status, job.Summary.Errors)
	}
	if job.Summary.TotalEvaluated != 1 || job.Summary.TotalDeleted != 1 || job.Summary.TotalBlocked != 0 {
		t.Fatalf("unexpected summary %+v", job.Summary)
	}

	if _, exists := f.artifacts.get(tenant, "artifact-1"); exists {
		t.Fatalf("hard delete must remove the registry row")
	}
	if len(f.storage.deleted) != 1 || f.storage.deleted[0] != "s3://bucket/artifact-1" {
		t.Fatalf("expected stored content deletion, got %v", f.storage.deleted)
	}

	events, err := f.service.ListDeletionEvents(ctx, tenant, job.JobID)
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if len(events) != 1 || events[0].DeletionMethod != domain.HardDelete || events[0].LegalHoldBlocked {
		t.Fatalf("unexpected deletion events %+v", events)
	}

	valid, err := f.service.VerifyDeletionProof(ctx, tenant, job.JobID, events[0].DeletionEventID)
	if err != nil {
		t.Fatalf("verify proof failed: %v", err)
	}
	if !valid {
		t.Fatalf("stored deletion proof must verify")
	}

	if published := f.outbox.byType("assurance.retention.job_completed"); len(published) != 1 {
		t.Fatalf("expected one job_completed outbox event, got %d", len(published))
	}
}

func TestRunRetentionJobRespectsLegalHold(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	seedPolicyAndArtifact(t, f, domain.HardDelete, strPtr("case-held"), 45)
	f.cases.held["case-held"] = true

	job, err := f.service.RunRetentionJob(ctx, tenant, "SYSTEM", nil)
	if err != nil {
		t.Fatalf("run job failed: %v", err)
	}
	if job.Summary.TotalEvaluated != 1 || job.Summary.TotalDeleted != 0 || job.Summary.TotalBlocked != 1 {
		t.Fatalf("unexpected summary %+v", job.Summary)
	}

	if _, exists := f.artifacts.get(tenant, "artifact-1"); !exists {
		t.Fatalf("held artifact must survive the job")
	}
	events, err := f.service.ListDeletionEvents(ctx, tenant, job.JobID)
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if len(events) != 1 || !events[0].LegalHoldBlocked {
		t.Fatalf("expected one blocked deletion event, got %+v", events)
	}
}

func TestRunRetentionJobSecondRunFindsNothing(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	seedPolicyAndArtifact(t, f, domain.SoftDelete, nil, 45)

	first, err := f.service.RunRetentionJob(ctx, tenant, "SYSTEM", nil)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.Summary.TotalDeleted != 1 {
		t.Fatalf("first run should soft-delete the artifact, got %+v", first.Summary)
	}
	if artifact, _ := f.artifacts.get(tenant, "artifact-1"); artifact.DeletedAt == nil {
		t.Fatalf("soft delete must set the deletion timestamp")
	}

	second, err := f.service.RunRetentionJob(ctx, tenant, "SYSTEM", nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Summary.TotalEvaluated != 0 || second.Summary.TotalDeleted != 0 {
		t.Fatalf("second run must not reprocess deleted artifacts, got %+v", second.Summary)
	}
}

func TestRunRetentionJobSingleFlightPerTenant(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.locks.held[tenant] = "other-instance"
	if _, err := f.service.RunRetentionJob(ctx, tenant, "SYSTEM", nil); !errors.Is(err, domain.ErrJobAlreadyRunning) {
		t.Fatalf("expected ErrJobAlreadyRunning while the lock is held, got %v", err)
	}

	delete(f.locks.held, tenant)
	if _, err := f.service.RunRetentionJob(ctx, tenant, "SYSTEM", nil); err != nil {
		t.Fatalf("job should run after the lock clears: %v", err)
	}
	if _, stillHeld := f.locks.held[tenant]; stillHeld {
		t.Fatalf("lock must be released after the job finishes")
	}
}

func TestRunRetentionJobContinuesPastArtifactFailures(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.CreateRetentionPolicy(ctx, tenant, "admin-1", application.RetentionPolicyInput{
		ArtifactType:  "IDV_ARTIFACT",
		RetentionDays: 30,
		DeleteMode:    domain.HardDelete,
		Enabled:       true,
	}); err != nil {
		t.Fatalf("create policy failed: %v", err)
	}
	createdAt := time.Now().UTC().Add(-45 * 24 * time.Hour)
	for _, id := range []string{"artifact-bad", "artifact-good"} {
		if _, err := f.service.RegisterArtifact(ctx, domain.Artifact{
			ArtifactID:   id,
			TenantID:     tenant,
			ArtifactType: "IDV_ARTIFACT",
			StorageRef:   "s3://bucket/" + id,
			CreatedAt:    createdAt,
		}); err != nil {
			t.Fatalf("register %s failed: %v", id, err)
		}
	}
	f.storage.failRefs = map[string]bool{"s3://bucket/artifact-bad": true}

	job, err := f.service.RunRetentionJob(ctx, tenant, "SYSTEM", nil)
	if err != nil {
		t.Fatalf("run job failed: %v", err)
	}
	if job.Status != domain.JobSuccess {
		t.Fatalf("per-artifact failures must not fail the job, got %s", job.Status)
	}
	if job.Summary.TotalEvaluated != 2 || job.Summary.TotalDeleted != 1 {
		t.Fatalf("unexpected summary %+v", job.Summary)
	}
	if len(job.Summary.Errors) != 1 || !strings.Contains(job.Summary.Errors[0], "artifact-bad") {
		t.Fatalf("expected one error naming the failed artifact, got %v", job.Summary.Errors)
	}
	if _, exists := f.artifacts.get(tenant, "artifact-bad"); !exists {
		t.Fatalf("failed artifact must stay in the registry for the next run")
	}
}

func TestRunRetentionJobPolicyListFailureMarksJobFailed(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.policies.listErr = errors.New("relation does not exist")

	job, err := f.service.RunRetentionJob(ctx, tenant, "SYSTEM", nil)
	if err != nil {
		t.Fatalf("run job returned error instead of FAILED status: %v", err)
	}
	if job.Status != domain.JobFailed {
		t.Fatalf("expected FAILED, got %s", job.Status)
	}
	if len(job.Summary.Errors) != 1 {
		t.Fatalf("expected the fatal error in the summary, got %v", job.Summary.Errors)
	}
}

func TestExportDeletionEvents(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	seedPolicyAndArtifact(t, f, domain.HardDelete, strPtr("case-1"), 45)

	job, err := f.service.RunRetentionJob(ctx, tenant, "SYSTEM", nil)
	if err != nil {
		t.Fatalf("run job failed: %v", err)
	}

	rows, err := f.service.ExportDeletionEvents(ctx, tenant, job.JobID)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one export row, got %d", len(rows))
	}
	row := rows[0]
	if row.ArtifactType != "IDV_ARTIFACT" || row.ArtifactID != "artifact-1" {
		t.Fatalf("unexpected export row %+v", row)
	}
	if row.CaseID == nil || *row.CaseID != "case-1" {
		t.Fatalf("export row must carry the case id")
	}
	if row.DeletionMethod != string(domain.HardDelete) || row.ProofHash == "" {
		t.Fatalf("export row missing method or proof: %+v", row)
	}
	if _, err := time.Parse(time.RFC3339Nano, row.DeletedAt); err != nil {
		t.Fatalf("deletedAt must be RFC3339Nano, got %q: %v", row.DeletedAt, err)
	}
}

func TestGetSodPolicyDefaultsWhenUnset(t *testing.T) {
	t.Parallel()

	f := newFixture()
	policy, err := f.service.GetSodPolicy(context.Background(), tenant)
	if err != nil {
		t.Fatalf("get policy failed: %v", err)
	}
	if !policy.Enabled || len(policy.Rules) == 0 {
		t.Fatalf("unset tenant must get the enabled default rules, got %+v", policy)
	}
}

func TestDecideApprovalSelfDecisionBlocked(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	request, err := f.service.CreateApproval(ctx, tenant, "user-a", application.ApprovalInput{
		RuleID:      "generator_cannot_approve_response",
		ActionType:  "RESPONSE_APPROVAL",
		SubjectType: "CASE_RESPONSE",
		SubjectID:   strPtr("resp-1"),
	})
	if err != nil {
		t.Fatalf("create approval failed: %v", err)
	}

	_, err = f.service.DecideApproval(ctx, tenant, "user-a", application.ApprovalDecision{
		RequestID: request.RequestID,
		Approve:   true,
	})
	if !errors.Is(err, domain.ErrSodViolation) {
		t.Fatalf("self-decision must violate SoD, got %v", err)
	}
	if audits := f.audit.byAction(tenant, "SOD_VIOLATION_BLOCKED"); len(audits) != 1 {
		t.Fatalf("expected the refusal itself to be audited, got %d events", len(audits))
	}

	decided, err := f.service.DecideApproval(ctx, tenant, "user-b", application.ApprovalDecision{
		RequestID: request.RequestID,
		Approve:   true,
	})
	if err != nil {
		t.Fatalf("second-person approval failed: %v", err)
	}
	if decided.Status != domain.ApprovalApproved || decided.DecidedBy == nil || *decided.DecidedBy != "user-b" {
		t.Fatalf("unexpected decided request %+v", decided)
	}

	_, err = f.service.DecideApproval(ctx, tenant, "user-c", application.ApprovalDecision{
		RequestID: request.RequestID,
		Approve:   false,
	})
	if !errors.Is(err, domain.ErrApprovalDecided) {
		t.Fatalf("terminal request must be immutable, got %v", err)
	}
}

func TestDecideApprovalAllowedWhenRuleDisabled(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.ToggleSodRule(ctx, tenant, "admin-1", "generator_cannot_approve_response", false); err != nil {
		t.Fatalf("toggle rule failed: %v", err)
	}

	request, err := f.service.CreateApproval(ctx, tenant, "user-a", application.ApprovalInput{
		RuleID:      "generator_cannot_approve_response",
		ActionType:  "RESPONSE_APPROVAL",
		SubjectType: "CASE_RESPONSE",
	})
	if err != nil {
		t.Fatalf("create approval failed: %v", err)
	}

	decided, err := f.service.DecideApproval(ctx, tenant, "user-a", application.ApprovalDecision{
		RequestID: request.RequestID,
		Approve:   false,
	})
	if err != nil {
		t.Fatalf("self-decision should pass with the rule disabled: %v", err)
	}
	if decided.Status != domain.ApprovalRejected {
		t.Fatalf("expected REJECTED, got %s", decided.Status)
	}
}

func TestToggleSodRuleUnknownRule(t *testing.T) {
	t.Parallel()

	f := newFixture()
	if _, err := f.service.ToggleSodRule(context.Background(), tenant, "admin-1", "no_such_rule", false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown rule, got %v", err)
	}
}

func TestUpdateSodPolicyRejectsDuplicateRuleIDs(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.service.UpdateSodPolicy(context.Background(), tenant, "admin-1", application.SodPolicyInput{
		Enabled: true,
		Rules: []domain.SodRule{
			{ID: "rule-x", Enabled: true},
			{ID: "rule-x", Enabled: false},
		},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for duplicate rule ids, got %v", err)
	}
}
