package postgres

import (
	"context"
	"errors"

	"github.com/casetrail/assurance-service/internal/domain"
	"github.com/casetrail/assurance-service/internal/ports"
	"gorm.io/gorm"
)

type auditEventRepository struct {
	db *gorm.DB
}

func (r *auditEventRepository) Head(ctx context.Context, tenantID string) (*ports.ChainHead, error) {
	var rec auditEventModel
	err := r.db.WithContext(ctx).
		Select("seq", "hash").
		Where("tenant_id = ?", tenantID).
		Order("seq DESC").
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ports.ChainHead{Seq: rec.Seq, Hash: rec.Hash}, nil
}

func (r *auditEventRepository) Insert(ctx context.Context, event domain.AuditEvent) error {
	rec := toAuditEventModel(event)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		// The unique (tenant_id, seq) index is the append-time concurrency
		// control; a duplicate slot means another writer won the head.
		if isUniqueViolation(err) {
			return domain.ErrChainConflict
		}
		return err
	}
	return nil
}

func (r *auditEventRepository) ListBySeq(ctx context.Context, tenantID string, afterSeq int64, limit int) ([]domain.AuditEvent, error) {
	var rows []auditEventModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("seq > ?", afterSeq).
		Order("seq ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.AuditEvent, 0, len(rows))
	for _, row := range rows {
		event, err := toDomainAuditEvent(row)
		if err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, nil
}
