package postgres

import (
	"context"
	"time"

	"github.com/casetrail/assurance-service/internal/domain"
	"gorm.io/gorm"
)

type artifactRepository struct {
	db *gorm.DB
}

func (r *artifactRepository) ListDeletable(ctx context.Context, tenantID, artifactType string) ([]domain.Artifact, error) {
	var rows []artifactModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("artifact_type = ?", artifactType).
		Where("deleted_at IS NULL").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.Artifact, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainArtifact(row))
	}
	return result, nil
}

func (r *artifactRepository) MarkDeleted(ctx context.Context, tenantID, artifactID string, method domain.DeleteMode, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&artifactModel{}).
		Where("tenant_id = ?", tenantID).
		Where("artifact_id = ?", artifactID).
		Where("deleted_at IS NULL").
		Updates(map[string]any{
			"deleted_at":      at,
			"deletion_method": string(method),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).
			Model(&artifactModel{}).
			Where("tenant_id = ?", tenantID).
			Where("artifact_id = ?", artifactID).
			Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
	}
	return nil
}

func (r *artifactRepository) Remove(ctx context.Context, tenantID, artifactID string) error {
	res := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("artifact_id = ?", artifactID).
		Delete(&artifactModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *artifactRepository) Register(ctx context.Context, artifact domain.Artifact) (domain.Artifact, error) {
	rec := toArtifactModel(artifact)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Artifact{}, domain.ErrConflict
		}
		return domain.Artifact{}, err
	}
	return toDomainArtifact(rec), nil
}
