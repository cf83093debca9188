package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExecutionPurger deletes finished report executions
type ExecutionPurger interface {
	DeleteFinishedBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) (int64, error)
}

// ExecutionRetention removes report execution history older than MaxAge
type ExecutionRetention struct {
	purger ExecutionPurger
	maxAge time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewExecutionRetention creates the retention task. maxAge must be positive.
func NewExecutionRetention(purger ExecutionPurger, maxAge time.Duration, logger *zap.Logger) (*ExecutionRetention, error) {
	if purger == nil || maxAge <= 0 {
		return nil, ErrInvalidConfig
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecutionRetention{purger: purger, maxAge: maxAge, logger: logger, now: time.Now}, nil
}

// Name implements TenantTask
func (r *ExecutionRetention) Name() string {
	return "report_execution_retention"
}

// Run implements TenantTask
func (r *ExecutionRetention) Run(ctx context.Context, tenantID uuid.UUID) error {
	cutoff := r.now().Add(-r.maxAge)
	deleted, err := r.purger.DeleteFinishedBefore(ctx, tenantID, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge report executions: %w", err)
	}
	if deleted > 0 {
		r.logger.Info("Purged report executions",
			zap.String("tenant_id", tenantID.String()),
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}
