package postgres

import (
	"context"

	"github.com/casetrail/assurance-service/internal/domain"
	"github.com/casetrail/assurance-service/internal/ports"
	"gorm.io/gorm"
)

type accessLogRepository struct {
	db *gorm.DB
}

func (r *accessLogRepository) Insert(ctx context.Context, entry domain.AccessLogEntry) (domain.AccessLogEntry, error) {
	rec := toAccessLogModel(entry)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.AccessLogEntry{}, err
	}
	return toDomainAccessLogEntry(rec), nil
}

func (r *accessLogRepository) List(ctx context.Context, tenantID string, filter ports.AccessLogFilter, limit, offset int) ([]domain.AccessLogEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&accessLogModel{}).
		Where("tenant_id = ?", tenantID)
	if filter.ResourceType != nil {
		query = query.Where("resource_type = ?", *filter.ResourceType)
	}
	if filter.CaseID != nil {
		query = query.Where("case_id = ?", *filter.CaseID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Outcome != nil {
		query = query.Where("outcome = ?", string(*filter.Outcome))
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []accessLogModel
	if err := query.
		Order("occurred_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	result := make([]domain.AccessLogEntry, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainAccessLogEntry(row))
	}
	return result, total, nil
}
