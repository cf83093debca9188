// Package scheduler runs per-tenant maintenance tasks once a day.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantProvider lists the tenants a task runs for
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// TenantTask is one unit of daily work, run separately for every tenant
type TenantTask interface {
	Name() string
	Run(ctx context.Context, tenantID uuid.UUID) error
}

// DailyTriggerConfig holds configuration for a DailyTrigger
type DailyTriggerConfig struct {
	Schedule DailySchedule

	// CheckInterval is how often the clock is compared to the schedule
	CheckInterval time.Duration

	// TaskTimeout bounds one tenant's run
	TaskTimeout time.Duration
}

// DefaultDailyTriggerConfig returns the default trigger configuration
func DefaultDailyTriggerConfig() DailyTriggerConfig {
	return DailyTriggerConfig{
		Schedule:      DefaultDailySchedule,
		CheckInterval: time.Minute,
		TaskTimeout:   5 * time.Minute,
	}
}

// DailyTrigger runs a task for every active tenant at the scheduled time
type DailyTrigger struct {
	config  DailyTriggerConfig
	task    TenantTask
	tenants TenantProvider
	logger  *zap.Logger
	now     func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewDailyTrigger creates a trigger; call Start to begin checking the clock
func NewDailyTrigger(config DailyTriggerConfig, task TenantTask, tenants TenantProvider, logger *zap.Logger) (*DailyTrigger, error) {
	if task == nil || tenants == nil {
		return nil, ErrInvalidConfig
	}
	defaults := DefaultDailyTriggerConfig()
	if config.CheckInterval <= 0 {
		config.CheckInterval = defaults.CheckInterval
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = defaults.TaskTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyTrigger{
		config:  config,
		task:    task,
		tenants: tenants,
		logger:  logger.With(zap.String("task", task.Name())),
		now:     time.Now,
	}, nil
}

// Start begins checking the clock in the background
func (d *DailyTrigger) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isRunning {
		return
	}
	d.isRunning = true

	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(1)
	go d.runLoop(ctx)

	d.logger.Info("Daily trigger started",
		zap.Int("hour", d.config.Schedule.Hour),
		zap.Int("minute", d.config.Schedule.Minute),
		zap.Time("next_run", d.config.Schedule.Next(d.now())),
	)
}

// Stop cancels the loop and waits for an in-flight run to return
func (d *DailyTrigger) Stop() {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return
	}
	d.isRunning = false
	cancel := d.cancel
	d.mu.Unlock()

	cancel()
	d.wg.Wait()
	d.logger.Info("Daily trigger stopped")
}

func (d *DailyTrigger) runLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

// tick runs the task when the schedule is due and it has not run today
func (d *DailyTrigger) tick(ctx context.Context) bool {
	now := d.now()
	if !d.config.Schedule.Due(now) {
		return false
	}

	today := now.Format(time.DateOnly)
	d.mu.Lock()
	if d.lastRunDate == today {
		d.mu.Unlock()
		return false
	}
	d.lastRunDate = today
	d.mu.Unlock()

	d.RunNow(ctx)
	return true
}

// RunNow runs the task for every active tenant. A failing tenant is logged
// and does not stop the others.
func (d *DailyTrigger) RunNow(ctx context.Context) {
	tenantIDs, err := d.tenants.GetActiveTenantIDs(ctx)
	if err != nil {
		d.logger.Error("Failed to list tenants", zap.Error(err))
		return
	}

	failed := 0
	for _, tenantID := range tenantIDs {
		if ctx.Err() != nil {
			return
		}
		taskCtx, cancel := context.WithTimeout(ctx, d.config.TaskTimeout)
		err := d.task.Run(taskCtx, tenantID)
		cancel()
		if err != nil {
			failed++
			d.logger.Error("Task failed for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		}
	}

	d.logger.Info("Daily task finished",
		zap.Int("tenant_count", len(tenantIDs)),
		zap.Int("failed", failed),
	)
}
