package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/domain"
	"gorm.io/gorm"
)

type approvalRepository struct {
	db *gorm.DB
}

func (r *approvalRepository) Create(ctx context.Context, request domain.ApprovalRequest) (domain.ApprovalRequest, error) {
	rec := toApprovalRequestModel(request)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.ApprovalRequest{}, err
	}
	return toDomainApprovalRequest(rec), nil
}

func (r *approvalRepository) GetByID(ctx context.Context, tenantID string, requestID uuid.UUID) (domain.ApprovalRequest, error) {
	var rec approvalRequestModel
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Where("tenant_id = ?", tenantID).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ApprovalRequest{}, domain.ErrNotFound
		}
		return domain.ApprovalRequest{}, err
	}
	return toDomainApprovalRequest(rec), nil
}

func (r *approvalRepository) List(ctx context.Context, tenantID string, status *domain.ApprovalStatus, limit, offset int) ([]domain.ApprovalRequest, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	var rows []approvalRequestModel
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.ApprovalRequest, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainApprovalRequest(row))
	}
	return result, nil
}

func (r *approvalRepository) Decide(ctx context.Context, tenantID string, requestID uuid.UUID, status domain.ApprovalStatus, decidedBy string, comment *string, at time.Time) (domain.ApprovalRequest, error) {
	// The status guard makes the transition race-safe: whichever decision
	// lands first wins, the loser sees zero rows and the terminal-state error.
	res := r.db.WithContext(ctx).
		Model(&approvalRequestModel{}).
		Where("request_id = ?", requestID).
		Where("tenant_id = ?", tenantID).
		Where("status = ?", string(domain.ApprovalRequested)).
		Updates(map[string]any{
			"status":     string(status),
			"decided_by": decidedBy,
			"decided_at": at,
			"comment":    comment,
		})
	if res.Error != nil {
		return domain.ApprovalRequest{}, res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).
			Model(&approvalRequestModel{}).
			Where("request_id = ?", requestID).
			Where("tenant_id = ?", tenantID).
			Count(&exists).Error; err != nil {
			return domain.ApprovalRequest{}, err
		}
		if exists == 0 {
			return domain.ApprovalRequest{}, domain.ErrNotFound
		}
		return domain.ApprovalRequest{}, domain.ErrApprovalDecided
	}
	return r.GetByID(ctx, tenantID, requestID)
}
