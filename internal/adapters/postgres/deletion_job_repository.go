package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/domain"
	"gorm.io/gorm"
)

type deletionJobRepository struct {
	db *gorm.DB
}

func (r *deletionJobRepository) Create(ctx context.Context, job domain.DeletionJob) (domain.DeletionJob, error) {
	rec, err := toDeletionJobModel(job)
	if err != nil {
		return domain.DeletionJob{}, err
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.DeletionJob{}, err
	}
	return toDomainDeletionJob(rec)
}

func (r *deletionJobRepository) Finish(ctx context.Context, jobID uuid.UUID, status domain.JobStatus, summary domain.JobSummary, finishedAt time.Time) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode job summary: %w", err)
	}
	res := r.db.WithContext(ctx).
		Model(&deletionJobModel{}).
		Where("job_id = ?", jobID).
		Where("status = ?", string(domain.JobRunning)).
		Updates(map[string]any{
			"status":      string(status),
			"summary":     string(raw),
			"finished_at": finishedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *deletionJobRepository) GetByID(ctx context.Context, tenantID string, jobID uuid.UUID) (domain.DeletionJob, error) {
	var rec deletionJobModel
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Where("tenant_id = ?", tenantID).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DeletionJob{}, domain.ErrNotFound
		}
		return domain.DeletionJob{}, err
	}
	return toDomainDeletionJob(rec)
}

func (r *deletionJobRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]domain.DeletionJob, error) {
	var rows []deletionJobModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.DeletionJob, 0, len(rows))
	for _, row := range rows {
		job, err := toDomainDeletionJob(row)
		if err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, nil
}

func (r *deletionJobRepository) InsertEvent(ctx context.Context, event domain.DeletionEvent) (domain.DeletionEvent, error) {
	rec := toDeletionEventModel(event)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.DeletionEvent{}, err
	}
	return toDomainDeletionEvent(rec), nil
}

func (r *deletionJobRepository) ListEvents(ctx context.Context, jobID uuid.UUID) ([]domain.DeletionEvent, error) {
	var rows []deletionEventModel
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("deleted_at ASC, artifact_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.DeletionEvent, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainDeletionEvent(row))
	}
	return result, nil
}
