package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/canonical"
	"github.com/casetrail/assurance-service/internal/domain"
)

// CreateRetentionPolicy stores a new policy for (tenant, artifact type). The
// repository enforces at most one policy per pair; duplicates surface as a
// conflict at write time rather than ambiguity at evaluation time.
func (s *Service) CreateRetentionPolicy(ctx context.Context, tenantID, actorUserID string, input RetentionPolicyInput) (domain.RetentionPolicy, error) {
	if err := s.validatePolicyInput(input); err != nil {
		return domain.RetentionPolicy{}, err
	}

	now := s.nowFn()
	policy := domain.RetentionPolicy{
		PolicyID:          uuid.New(),
		TenantID:          tenantID,
		ArtifactType:      input.ArtifactType,
		RetentionDays:     input.RetentionDays,
		DeleteMode:        input.DeleteMode,
		LegalHoldRespects: input.LegalHoldRespects,
		Enabled:           input.Enabled,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	stored, err := s.policies.Create(ctx, policy)
	if err != nil {
		return domain.RetentionPolicy{}, fmt.Errorf("create retention policy: %w", err)
	}

	s.appendAudit(ctx, policyAuditInput(stored, actorUserID, "RETENTION_POLICY_CREATED"))
	return stored, nil
}

// UpdateRetentionPolicy replaces a policy's tunables.
func (s *Service) UpdateRetentionPolicy(ctx context.Context, tenantID, actorUserID string, policyID uuid.UUID, input RetentionPolicyInput) (domain.RetentionPolicy, error) {
	if err := s.validatePolicyInput(input); err != nil {
		return domain.RetentionPolicy{}, err
	}

	existing, err := s.policies.GetByID(ctx, tenantID, policyID)
	if err != nil {
		return domain.RetentionPolicy{}, err
	}
	existing.ArtifactType = input.ArtifactType
	existing.RetentionDays = input.RetentionDays
	existing.DeleteMode = input.DeleteMode
	existing.LegalHoldRespects = input.LegalHoldRespects
	existing.Enabled = input.Enabled
	existing.UpdatedAt = s.nowFn()

	stored, err := s.policies.Update(ctx, existing)
	if err != nil {
		return domain.RetentionPolicy{}, fmt.Errorf("update retention policy: %w", err)
	}

	s.appendAudit(ctx, policyAuditInput(stored, actorUserID, "RETENTION_POLICY_UPDATED"))
	return stored, nil
}

// DeleteRetentionPolicy removes a policy row. Jobs already recorded against it
// are unaffected; they are evidence, not configuration.
func (s *Service) DeleteRetentionPolicy(ctx context.Context, tenantID, actorUserID string, policyID uuid.UUID) error {
	existing, err := s.policies.GetByID(ctx, tenantID, policyID)
	if err != nil {
		return err
	}
	if err := s.policies.Delete(ctx, tenantID, policyID); err != nil {
		return fmt.Errorf("delete retention policy: %w", err)
	}

	s.appendAudit(ctx, policyAuditInput(existing, actorUserID, "RETENTION_POLICY_DELETED"))
	return nil
}

// ListRetentionPolicies returns the tenant's policies, enabled or not.
func (s *Service) ListRetentionPolicies(ctx context.Context, tenantID string) ([]domain.RetentionPolicy, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("%w: tenant id required", domain.ErrInvalidInput)
	}
	return s.policies.List(ctx, tenantID)
}

// RegisterArtifact adds a row to the deletable-artifact registry. Sibling
// platform services call this when they store new artifact content.
func (s *Service) RegisterArtifact(ctx context.Context, artifact domain.Artifact) (domain.Artifact, error) {
	switch {
	case strings.TrimSpace(artifact.TenantID) == "":
		return domain.Artifact{}, fmt.Errorf("%w: tenant id required", domain.ErrInvalidInput)
	case strings.TrimSpace(artifact.ArtifactID) == "":
		return domain.Artifact{}, fmt.Errorf("%w: artifact id required", domain.ErrInvalidInput)
	case !s.knownArtifactType(artifact.ArtifactType):
		return domain.Artifact{}, fmt.Errorf("%w: unknown artifact type %q", domain.ErrInvalidInput, artifact.ArtifactType)
	}
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = s.nowFn()
	}
	return s.artifacts.Register(ctx, artifact)
}

func (s *Service) validatePolicyInput(input RetentionPolicyInput) error {
	if !s.knownArtifactType(input.ArtifactType) {
		return fmt.Errorf("%w: unknown artifact type %q", domain.ErrInvalidInput, input.ArtifactType)
	}
	if input.RetentionDays < 1 {
		return fmt.Errorf("%w: retention days must be at least 1", domain.ErrInvalidInput)
	}
	if input.DeleteMode != domain.HardDelete && input.DeleteMode != domain.SoftDelete {
		return fmt.Errorf("%w: delete mode must be HARD_DELETE or SOFT_DELETE", domain.ErrInvalidInput)
	}
	return nil
}

func policyAuditInput(policy domain.RetentionPolicy, actorUserID, action string) AppendEventInput {
	policyID := policy.PolicyID.String()
	return AppendEventInput{
		TenantID:    policy.TenantID,
		EntityType:  "RETENTION_POLICY",
		EntityID:    &policyID,
		Action:      action,
		ActorUserID: &actorUserID,
		ActorType:   "USER",
		Diff: canonical.Object(map[string]canonical.Value{
			"artifactType":      canonical.String(policy.ArtifactType),
			"retentionDays":     canonical.Number(float64(policy.RetentionDays)),
			"deleteMode":        canonical.String(string(policy.DeleteMode)),
			"legalHoldRespects": canonical.Bool(policy.LegalHoldRespects),
			"enabled":           canonical.Bool(policy.Enabled),
		}),
	}
}
