package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/casetrail/assurance-service/internal/domain"
)

// JobRunner is the slice of the application service the scheduler drives.
type JobRunner interface {
	RunRetentionJob(ctx context.Context, tenantID, triggeredByType string, triggeredByUserID *string) (domain.DeletionJob, error)
}

// RetentionScheduler runs periodic retention jobs for the configured tenants.
// A tenant whose job is already in flight (here or on another instance) is
// skipped; the lock inside the service decides, not the scheduler.
type RetentionScheduler struct {
	logger   *slog.Logger
	runner   JobRunner
	tenants  []string
	interval time.Duration
}

func NewRetentionScheduler(logger *slog.Logger, runner JobRunner, tenants []string, interval time.Duration) *RetentionScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RetentionScheduler{
		logger:   logger,
		runner:   runner,
		tenants:  tenants,
		interval: interval,
	}
}

// Run executes the periodic scan loop until context cancellation.
func (s *RetentionScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		s.runOnce(ctx)
	}
}

func (s *RetentionScheduler) runOnce(ctx context.Context) {
	for _, tenantID := range s.tenants {
		job, err := s.runner.RunRetentionJob(ctx, tenantID, "SYSTEM", nil)
		if err != nil {
			if errors.Is(err, domain.ErrJobAlreadyRunning) {
				s.logger.InfoContext(ctx, "retention job already in flight; skipped",
					"module", "events.retention_scheduler",
					"layer", "adapter",
					"operation", "run_retention_job",
					"outcome", "skipped",
					"tenant_id", tenantID,
				)
				continue
			}
			s.logger.ErrorContext(ctx, "scheduled retention job failed",
				"module", "events.retention_scheduler",
				"layer", "adapter",
				"operation", "run_retention_job",
				"outcome", "failure",
				"tenant_id", tenantID,
				"error", err,
			)
			continue
		}
		s.logger.InfoContext(ctx, "scheduled retention job finished",
			"module", "events.retention_scheduler",
			"layer", "adapter",
			"operation", "run_retention_job",
			"outcome", "success",
			"tenant_id", tenantID,
			"job_id", job.JobID,
			"status", job.Status,
			"total_evaluated", job.Summary.TotalEvaluated,
			"total_deleted", job.Summary.TotalDeleted,
			"total_blocked", job.Summary.TotalBlocked,
		)
	}
}
