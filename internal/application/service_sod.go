package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/canonical"
	"github.com/casetrail/assurance-service/internal/domain"
	"github.com/casetrail/assurance-service/internal/sod"
)

// GetSodPolicy returns the tenant's SoD configuration. Tenants without a
// stored policy get the enabled default rule set, so the guard is on from day
// one without provisioning.
func (s *Service) GetSodPolicy(ctx context.Context, tenantID string) (domain.SodPolicy, error) {
	if strings.TrimSpace(tenantID) == "" {
		return domain.SodPolicy{}, fmt.Errorf("%w: tenant id required", domain.ErrInvalidInput)
	}
	policy, err := s.sodPolicies.Get(ctx, tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SodPolicy{
				TenantID: tenantID,
				Enabled:  true,
				Rules:    sod.DefaultRules(),
			}, nil
		}
		return domain.SodPolicy{}, fmt.Errorf("get sod policy: %w", err)
	}
	return policy, nil
}

// UpdateSodPolicy replaces the tenant's SoD configuration wholesale.
func (s *Service) UpdateSodPolicy(ctx context.Context, tenantID, actorUserID string, input SodPolicyInput) (domain.SodPolicy, error) {
	if strings.TrimSpace(tenantID) == "" {
		return domain.SodPolicy{}, fmt.Errorf("%w: tenant id required", domain.ErrInvalidInput)
	}
	if err := validateSodRules(input.Rules); err != nil {
		return domain.SodPolicy{}, err
	}

	stored, err := s.sodPolicies.Upsert(ctx, domain.SodPolicy{
		TenantID:  tenantID,
		Enabled:   input.Enabled,
		Rules:     input.Rules,
		UpdatedAt: s.nowFn(),
	})
	if err != nil {
		return domain.SodPolicy{}, fmt.Errorf("upsert sod policy: %w", err)
	}

	s.appendAudit(ctx, sodPolicyAuditInput(stored, actorUserID))
	return stored, nil
}

// ToggleSodRule flips one rule on or off, leaving the rest of the policy
// untouched.
func (s *Service) ToggleSodRule(ctx context.Context, tenantID, actorUserID, ruleID string, enabled bool) (domain.SodPolicy, error) {
	policy, err := s.GetSodPolicy(ctx, tenantID)
	if err != nil {
		return domain.SodPolicy{}, err
	}

	found := false
	for i := range policy.Rules {
		if policy.Rules[i].ID == ruleID {
			policy.Rules[i].Enabled = enabled
			found = true
			break
		}
	}
	if !found {
		return domain.SodPolicy{}, fmt.Errorf("%w: unknown sod rule %q", domain.ErrNotFound, ruleID)
	}
	policy.UpdatedAt = s.nowFn()

	stored, err := s.sodPolicies.Upsert(ctx, policy)
	if err != nil {
		return domain.SodPolicy{}, fmt.Errorf("upsert sod policy: %w", err)
	}

	s.appendAudit(ctx, sodPolicyAuditInput(stored, actorUserID))
	return stored, nil
}

// CheckSod answers whether actorUserID may decide an action created by
// creatorUserID under the given rule. Pure read; callers in sibling services
// use it before committing their own state.
func (s *Service) CheckSod(ctx context.Context, tenantID, ruleID, actorUserID, creatorUserID string) (sod.Result, error) {
	policy, err := s.GetSodPolicy(ctx, tenantID)
	if err != nil {
		return sod.Result{}, err
	}
	return sod.Check(policy.Rules, policy.Enabled, ruleID, actorUserID, creatorUserID), nil
}

// CreateApproval opens a guarded two-step action in REQUESTED state.
func (s *Service) CreateApproval(ctx context.Context, tenantID, creatorUserID string, input ApprovalInput) (domain.ApprovalRequest, error) {
	switch {
	case strings.TrimSpace(tenantID) == "":
		return domain.ApprovalRequest{}, fmt.Errorf("%w: tenant id required", domain.ErrInvalidInput)
	case strings.TrimSpace(creatorUserID) == "":
		return domain.ApprovalRequest{}, fmt.Errorf("%w: creator user id required", domain.ErrInvalidInput)
	case strings.TrimSpace(input.RuleID) == "":
		return domain.ApprovalRequest{}, fmt.Errorf("%w: rule id required", domain.ErrInvalidInput)
	case strings.TrimSpace(input.ActionType) == "":
		return domain.ApprovalRequest{}, fmt.Errorf("%w: action type required", domain.ErrInvalidInput)
	case strings.TrimSpace(input.SubjectType) == "":
		return domain.ApprovalRequest{}, fmt.Errorf("%w: subject type required", domain.ErrInvalidInput)
	}

	request := domain.ApprovalRequest{
		RequestID:   uuid.New(),
		TenantID:    tenantID,
		RuleID:      input.RuleID,
		ActionType:  input.ActionType,
		SubjectType: input.SubjectType,
		SubjectID:   input.SubjectID,
		CreatedBy:   creatorUserID,
		CreatedAt:   s.nowFn().Truncate(time.Microsecond),
		Status:      domain.ApprovalRequested,
	}
	stored, err := s.approvals.Create(ctx, request)
	if err != nil {
		return domain.ApprovalRequest{}, fmt.Errorf("create approval request: %w", err)
	}

	s.appendAudit(ctx, approvalAuditInput(stored, creatorUserID, "APPROVAL_REQUESTED"))
	return stored, nil
}

// ListApprovals pages the tenant's approval requests, optionally by status.
func (s *Service) ListApprovals(ctx context.Context, tenantID string, status *domain.ApprovalStatus, limit, offset int) ([]domain.ApprovalRequest, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("%w: tenant id required", domain.ErrInvalidInput)
	}
	limit, offset = s.clampPage(limit, offset)
	return s.approvals.List(ctx, tenantID, status, limit, offset)
}

// DecideApproval resolves a pending request. The SoD guard runs first: when
// the request's rule is enabled and the decider is its creator, the decision
// is refused and the refusal itself is audited. Terminal requests are
// immutable and surface ErrApprovalDecided.
func (s *Service) DecideApproval(ctx context.Context, tenantID, actorUserID string, decision ApprovalDecision) (domain.ApprovalRequest, error) {
	if strings.TrimSpace(actorUserID) == "" {
		return domain.ApprovalRequest{}, fmt.Errorf("%w: actor user id required", domain.ErrInvalidInput)
	}

	request, err := s.approvals.GetByID(ctx, tenantID, decision.RequestID)
	if err != nil {
		return domain.ApprovalRequest{}, err
	}
	if request.Status != domain.ApprovalRequested {
		return domain.ApprovalRequest{}, domain.ErrApprovalDecided
	}

	check, err := s.CheckSod(ctx, tenantID, request.RuleID, actorUserID, request.CreatedBy)
	if err != nil {
		return domain.ApprovalRequest{}, err
	}
	if !check.Allowed {
		s.appendAudit(ctx, sodViolationAuditInput(request, actorUserID, *check.ViolatedRule))
		return domain.ApprovalRequest{}, fmt.Errorf("%w: rule %s", domain.ErrSodViolation, check.ViolatedRule.ID)
	}

	status := domain.ApprovalRejected
	action := "APPROVAL_REJECTED"
	if decision.Approve {
		status = domain.ApprovalApproved
		action = "APPROVAL_APPROVED"
	}
	decided, err := s.approvals.Decide(ctx, tenantID, decision.RequestID, status, actorUserID, decision.Comment, s.nowFn().Truncate(time.Microsecond))
	if err != nil {
		return domain.ApprovalRequest{}, err
	}

	s.appendAudit(ctx, approvalAuditInput(decided, actorUserID, action))
	return decided, nil
}

func validateSodRules(rules []domain.SodRule) error {
	seen := make(map[string]struct{}, len(rules))
	for _, rule := range rules {
		if strings.TrimSpace(rule.ID) == "" {
			return fmt.Errorf("%w: sod rule id required", domain.ErrInvalidInput)
		}
		if _, dup := seen[rule.ID]; dup {
			return fmt.Errorf("%w: duplicate sod rule %q", domain.ErrInvalidInput, rule.ID)
		}
		seen[rule.ID] = struct{}{}
	}
	return nil
}

func sodPolicyAuditInput(policy domain.SodPolicy, actorUserID string) AppendEventInput {
	rules := make([]canonical.Value, 0, len(policy.Rules))
	for _, rule := range policy.Rules {
		rules = append(rules, canonical.Object(map[string]canonical.Value{
			"id":      canonical.String(rule.ID),
			"enabled": canonical.Bool(rule.Enabled),
		}))
	}
	tenantID := policy.TenantID
	return AppendEventInput{
		TenantID:    policy.TenantID,
		EntityType:  "SOD_POLICY",
		EntityID:    &tenantID,
		Action:      "SOD_POLICY_UPDATED",
		ActorUserID: &actorUserID,
		ActorType:   "USER",
		Diff: canonical.Object(map[string]canonical.Value{
			"enabled": canonical.Bool(policy.Enabled),
			"rules":   canonical.Array(rules...),
		}),
	}
}

func approvalAuditInput(request domain.ApprovalRequest, actorUserID, action string) AppendEventInput {
	requestID := request.RequestID.String()
	return AppendEventInput{
		TenantID:    request.TenantID,
		EntityType:  "APPROVAL_REQUEST",
		EntityID:    &requestID,
		Action:      action,
		ActorUserID: &actorUserID,
		ActorType:   "USER",
		Metadata: canonical.Object(map[string]canonical.Value{
			"ruleId":      canonical.String(request.RuleID),
			"actionType":  canonical.String(request.ActionType),
			"subjectType": canonical.String(request.SubjectType),
			"subjectId":   optString(request.SubjectID),
			"status":      canonical.String(string(request.Status)),
		}),
	}
}

func sodViolationAuditInput(request domain.ApprovalRequest, actorUserID string, rule domain.SodRule) AppendEventInput {
	requestID := request.RequestID.String()
	return AppendEventInput{
		TenantID:    request.TenantID,
		EntityType:  "APPROVAL_REQUEST",
		EntityID:    &requestID,
		Action:      "SOD_VIOLATION_BLOCKED",
		ActorUserID: &actorUserID,
		ActorType:   "USER",
		Metadata: canonical.Object(map[string]canonical.Value{
			"ruleId":     canonical.String(rule.ID),
			"ruleName":   canonical.String(rule.Name),
			"createdBy":  canonical.String(request.CreatedBy),
			"actionType": canonical.String(request.ActionType),
		}),
	}
}
