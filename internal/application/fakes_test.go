package application_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/application"
	"github.com/casetrail/assurance-service/internal/domain"
	"github.com/casetrail/assurance-service/internal/ports"
)

type fixture struct {
	service   *application.Service
	audit     *fakeAuditRepo
	access    *fakeAccessRepo
	policies  *fakePolicyRepo
	artifacts *fakeArtifactRepo
	jobs      *fakeJobRepo
	sod       *fakeSodRepo
	approvals *fakeApprovalRepo
	outbox    *fakeOutbox
	locks     *fakeLockStore
	storage   *fakeStorage
	cases     *fakeCaseService
}

func newFixture() *fixture {
	f := &fixture{
		audit:     &fakeAuditRepo{},
		access:    &fakeAccessRepo{},
		policies:  &fakePolicyRepo{},
		artifacts: &fakeArtifactRepo{},
		jobs:      &fakeJobRepo{jobs: map[uuid.UUID]domain.DeletionJob{}},
		sod:       &fakeSodRepo{policies: map[string]domain.SodPolicy{}},
		approvals: &fakeApprovalRepo{requests: map[uuid.UUID]domain.ApprovalRequest{}},
		outbox:    &fakeOutbox{},
		locks:     &fakeLockStore{held: map[string]string{}},
		storage:   &fakeStorage{},
		cases:     &fakeCaseService{held: map[string]bool{}},
	}
	f.service = application.NewService(application.Dependencies{
		Config: application.Config{
			PseudonymSalt: "test-salt",
		},
		AuditEvents: f.audit,
		AccessLogs:  f.access,
		Policies:    f.policies,
		Artifacts:   f.artifacts,
		Jobs:        f.jobs,
		SodPolicies: f.sod,
		Approvals:   f.approvals,
		Outbox:      f.outbox,
		JobLocks:    f.locks,
		Storage:     f.storage,
		Cases:       f.cases,
	})
	return f
}

type fakeAuditRepo struct {
	mu             sync.Mutex
	events         []domain.AuditEvent
	nextInsertErrs []error
}

func (r *fakeAuditRepo) Head(_ context.Context, tenantID string) (*ports.ChainHead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var head *ports.ChainHead
	for _, e := range r.events {
		if e.TenantID != tenantID {
			continue
		}
		if head == nil || e.Seq > head.Seq {
			head = &ports.ChainHead{Seq: e.Seq, Hash: e.Hash}
		}
	}
	return head, nil
}

func (r *fakeAuditRepo) Insert(_ context.Context, event domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.nextInsertErrs) > 0 {
		err := r.nextInsertErrs[0]
		r.nextInsertErrs = r.nextInsertErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, e := range r.events {
		if e.TenantID == event.TenantID && e.Seq == event.Seq {
			return domain.ErrChainConflict
		}
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeAuditRepo) ListBySeq(_ context.Context, tenantID string, afterSeq int64, limit int) ([]domain.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEvent
	for _, e := range r.events {
		if e.TenantID == tenantID && e.Seq > afterSeq {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAuditRepo) byAction(tenantID, action string) []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEvent
	for _, e := range r.events {
		if e.TenantID == tenantID && e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func (r *fakeAuditRepo) tamper(index int, mutate func(*domain.AuditEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mutate(&r.events[index])
}

type fakeAccessRepo struct {
	mu      sync.Mutex
	entries []domain.AccessLogEntry
}

func (r *fakeAccessRepo) Insert(_ context.Context, entry domain.AccessLogEntry) (domain.AccessLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *fakeAccessRepo) List(_ context.Context, tenantID string, filter ports.AccessLogFilter, limit, offset int) ([]domain.AccessLogEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.AccessLogEntry
	for _, e := range r.entries {
		if e.TenantID != tenantID {
			continue
		}
		if filter.ResourceType != nil && e.ResourceType != *filter.ResourceType {
			continue
		}
		if filter.Outcome != nil && e.Outcome != *filter.Outcome {
			continue
		}
		if filter.UserID != nil && (e.UserID == nil || *e.UserID != *filter.UserID) {
			continue
		}
		if filter.CaseID != nil && (e.CaseID == nil || *e.CaseID != *filter.CaseID) {
			continue
		}
		matched = append(matched, e)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

type fakePolicyRepo struct {
	mu       sync.Mutex
	policies []domain.RetentionPolicy
	listErr  error
}

func (r *fakePolicyRepo) Create(_ context.Context, policy domain.RetentionPolicy) (domain.RetentionPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if policy.Enabled {
		for _, p := range r.policies {
			if p.TenantID == policy.TenantID && p.ArtifactType == policy.ArtifactType && p.Enabled {
				return domain.RetentionPolicy{}, domain.ErrConflict
			}
		}
	}
	r.policies = append(r.policies, policy)
	return policy, nil
}

func (r *fakePolicyRepo) Update(_ context.Context, policy domain.RetentionPolicy) (domain.RetentionPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.policies {
		if p.PolicyID == policy.PolicyID {
			r.policies[i] = policy
			return policy, nil
		}
	}
	return domain.RetentionPolicy{}, domain.ErrNotFound
}

func (r *fakePolicyRepo) Delete(_ context.Context, tenantID string, policyID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.policies {
		if p.TenantID == tenantID && p.PolicyID == policyID {
			r.policies = append(r.policies[:i], r.policies[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakePolicyRepo) GetByID(_ context.Context, tenantID string, policyID uuid.UUID) (domain.RetentionPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.policies {
		if p.TenantID == tenantID && p.PolicyID == policyID {
			return p, nil
		}
	}
	return domain.RetentionPolicy{}, domain.ErrNotFound
}

func (r *fakePolicyRepo) List(_ context.Context, tenantID string) ([]domain.RetentionPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RetentionPolicy
	for _, p := range r.policies {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePolicyRepo) ListEnabled(_ context.Context, tenantID string) ([]domain.RetentionPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.RetentionPolicy
	for _, p := range r.policies {
		if p.TenantID == tenantID && p.Enabled {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeArtifactRepo struct {
	mu        sync.Mutex
	artifacts []domain.Artifact
}

func (r *fakeArtifactRepo) ListDeletable(_ context.Context, tenantID, artifactType string) ([]domain.Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Artifact
	for _, a := range r.artifacts {
		if a.TenantID == tenantID && a.ArtifactType == artifactType && a.DeletedAt == nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeArtifactRepo) MarkDeleted(_ context.Context, tenantID, artifactID string, method domain.DeleteMode, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.artifacts {
		if a.TenantID == tenantID && a.ArtifactID == artifactID && a.DeletedAt == nil {
			deletedAt := at
			r.artifacts[i].DeletedAt = &deletedAt
			r.artifacts[i].DeletionMethod = &method
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeArtifactRepo) Remove(_ context.Context, tenantID, artifactID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.artifacts {
		if a.TenantID == tenantID && a.ArtifactID == artifactID {
			r.artifacts = append(r.artifacts[:i], r.artifacts[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeArtifactRepo) Register(_ context.Context, artifact domain.Artifact) (domain.Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts = append(r.artifacts, artifact)
	return artifact, nil
}

func (r *fakeArtifactRepo) get(tenantID, artifactID string) (domain.Artifact, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.artifacts {
		if a.TenantID == tenantID && a.ArtifactID == artifactID {
			return a, true
		}
	}
	return domain.Artifact{}, false
}

type fakeJobRepo struct {
	mu     sync.Mutex
	jobs   map[uuid.UUID]domain.DeletionJob
	events []domain.DeletionEvent
}

func (r *fakeJobRepo) Create(_ context.Context, job domain.DeletionJob) (domain.DeletionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.JobID] = job
	return job, nil
}

func (r *fakeJobRepo) Finish(_ context.Context, jobID uuid.UUID, status domain.JobStatus, summary domain.JobSummary, finishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.Status != domain.JobRunning {
		return domain.ErrNotFound
	}
	job.Status = status
	job.Summary = summary
	job.FinishedAt = &finishedAt
	r.jobs[jobID] = job
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, tenantID string, jobID uuid.UUID) (domain.DeletionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.TenantID != tenantID {
		return domain.DeletionJob{}, domain.ErrNotFound
	}
	return job, nil
}

func (r *fakeJobRepo) List(_ context.Context, tenantID string, limit, offset int) ([]domain.DeletionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DeletionJob
	for _, job := range r.jobs {
		if job.TenantID == tenantID {
			out = append(out, job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeJobRepo) InsertEvent(_ context.Context, event domain.DeletionEvent) (domain.DeletionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return event, nil
}

func (r *fakeJobRepo) ListEvents(_ context.Context, jobID uuid.UUID) ([]domain.DeletionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DeletionEvent
	for _, e := range r.events {
		if e.JobID == jobID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeSodRepo struct {
	mu       sync.Mutex
	policies map[string]domain.SodPolicy
}

func (r *fakeSodRepo) Get(_ context.Context, tenantID string) (domain.SodPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	policy, ok := r.policies[tenantID]
	if !ok {
		return domain.SodPolicy{}, domain.ErrNotFound
	}
	return policy, nil
}

func (r *fakeSodRepo) Upsert(_ context.Context, policy domain.SodPolicy) (domain.SodPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[policy.TenantID] = policy
	return policy, nil
}

type fakeApprovalRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]domain.ApprovalRequest
}

func (r *fakeApprovalRepo) Create(_ context.Context, request domain.ApprovalRequest) (domain.ApprovalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[request.RequestID] = request
	return request, nil
}

func (r *fakeApprovalRepo) GetByID(_ context.Context, tenantID string, requestID uuid.UUID) (domain.ApprovalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[requestID]
	if !ok || request.TenantID != tenantID {
		return domain.ApprovalRequest{}, domain.ErrNotFound
	}
	return request, nil
}

func (r *fakeApprovalRepo) List(_ context.Context, tenantID string, status *domain.ApprovalStatus, limit, offset int) ([]domain.ApprovalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ApprovalRequest
	for _, request := range r.requests {
		if request.TenantID != tenantID {
			continue
		}
		if status != nil && request.Status != *status {
			continue
		}
		out = append(out, request)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeApprovalRepo) Decide(_ context.Context, tenantID string, requestID uuid.UUID, status domain.ApprovalStatus, decidedBy string, comment *string, at time.Time) (domain.ApprovalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[requestID]
	if !ok || request.TenantID != tenantID {
		return domain.ApprovalRequest{}, domain.ErrNotFound
	}
	if request.Status != domain.ApprovalRequested {
		return domain.ApprovalRequest{}, domain.ErrApprovalDecided
	}
	request.Status = status
	request.DecidedBy = &decidedBy
	request.DecidedAt = &at
	request.Comment = comment
	r.requests[requestID] = request
	return request, nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []ports.OutboxEvent
}

func (o *fakeOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return nil
}

func (o *fakeOutbox) ClaimUnpublished(context.Context, int, string, time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}

func (o *fakeOutbox) MarkPublished(context.Context, uuid.UUID, string, time.Time) error {
	return nil
}

func (o *fakeOutbox) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (o *fakeOutbox) MarkDeadLettered(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (o *fakeOutbox) byType(eventType string) []ports.OutboxEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []ports.OutboxEvent
	for _, e := range o.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeLockStore struct {
	mu   sync.Mutex
	held map[string]string
}

func (l *fakeLockStore) Acquire(_ context.Context, tenantID string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[tenantID]; taken {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[tenantID] = token
	return token, true, nil
}

func (l *fakeLockStore) Release(_ context.Context, tenantID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[tenantID] != token {
		return fmt.Errorf("lock for %s not held with token %s", tenantID, token)
	}
	delete(l.held, tenantID)
	return nil
}

type fakeStorage struct {
	mu       sync.Mutex
	deleted  []string
	failRefs map[string]bool
}

func (s *fakeStorage) Delete(_ context.Context, storageRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRefs[storageRef] {
		return fmt.Errorf("storage unavailable for %s", storageRef)
	}
	s.deleted = append(s.deleted, storageRef)
	return nil
}

type fakeCaseService struct {
	mu   sync.Mutex
	held map[string]bool
}

func (c *fakeCaseService) HasActiveLegalHold(_ context.Context, caseID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.held[caseID], nil
}
