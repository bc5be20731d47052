package postgres

import (
	"context"
	"errors"

	"github.com/casetrail/assurance-service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sodPolicyRepository struct {
	db *gorm.DB
}

func (r *sodPolicyRepository) Get(ctx context.Context, tenantID string) (domain.SodPolicy, error) {
	var rec sodPolicyModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SodPolicy{}, domain.ErrNotFound
		}
		return domain.SodPolicy{}, err
	}
	return toDomainSodPolicy(rec)
}

func (r *sodPolicyRepository) Upsert(ctx context.Context, policy domain.SodPolicy) (domain.SodPolicy, error) {
	rec, err := toSodPolicyModel(policy)
	if err != nil {
		return domain.SodPolicy{}, err
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"enabled":    rec.Enabled,
			"rules":      rec.Rules,
			"updated_at": rec.UpdatedAt,
		}),
	}).Create(&rec).Error
	if err != nil {
		return domain.SodPolicy{}, err
	}
	return toDomainSodPolicy(rec)
}
