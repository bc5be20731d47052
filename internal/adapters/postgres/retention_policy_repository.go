package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/domain"
	"gorm.io/gorm"
)

type retentionPolicyRepository struct {
	db *gorm.DB
}

func (r *retentionPolicyRepository) Create(ctx context.Context, policy domain.RetentionPolicy) (domain.RetentionPolicy, error) {
	rec := toRetentionPolicyModel(policy)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		// Partial unique index on (tenant_id, artifact_type) WHERE enabled.
		if isUniqueViolation(err) {
			return domain.RetentionPolicy{}, domain.ErrConflict
		}
		return domain.RetentionPolicy{}, err
	}
	return toDomainRetentionPolicy(rec), nil
}

func (r *retentionPolicyRepository) Update(ctx context.Context, policy domain.RetentionPolicy) (domain.RetentionPolicy, error) {
	rec := toRetentionPolicyModel(policy)
	res := r.db.WithContext(ctx).
		Model(&retentionPolicyModel{}).
		Where("policy_id = ?", rec.PolicyID).
		Where("tenant_id = ?", rec.TenantID).
		Updates(map[string]any{
			"artifact_type":       rec.ArtifactType,
			"retention_days":      rec.RetentionDays,
			"delete_mode":         rec.DeleteMode,
			"legal_hold_respects": rec.LegalHoldRespects,
			"enabled":             rec.Enabled,
			"updated_at":          rec.UpdatedAt,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return domain.RetentionPolicy{}, domain.ErrConflict
		}
		return domain.RetentionPolicy{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.RetentionPolicy{}, domain.ErrNotFound
	}
	return toDomainRetentionPolicy(rec), nil
}

func (r *retentionPolicyRepository) Delete(ctx context.Context, tenantID string, policyID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Where("tenant_id = ?", tenantID).
		Delete(&retentionPolicyModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *retentionPolicyRepository) GetByID(ctx context.Context, tenantID string, policyID uuid.UUID) (domain.RetentionPolicy, error) {
	var rec retentionPolicyModel
	err := r.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Where("tenant_id = ?", tenantID).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RetentionPolicy{}, domain.ErrNotFound
		}
		return domain.RetentionPolicy{}, err
	}
	return toDomainRetentionPolicy(rec), nil
}

func (r *retentionPolicyRepository) List(ctx context.Context, tenantID string) ([]domain.RetentionPolicy, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("tenant_id = ?", tenantID))
}

func (r *retentionPolicyRepository) ListEnabled(ctx context.Context, tenantID string) ([]domain.RetentionPolicy, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("enabled = TRUE"))
}

func (r *retentionPolicyRepository) list(_ context.Context, query *gorm.DB) ([]domain.RetentionPolicy, error) {
	var rows []retentionPolicyModel
	if err := query.Order("artifact_type ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.RetentionPolicy, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainRetentionPolicy(row))
	}
	return result, nil
}
