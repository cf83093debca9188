package report

import (
	"time"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ExecutionStatus is the state of a report run
type ExecutionStatus string

const (
	ExecutionRunning ExecutionStatus = "RUNNING"
	ExecutionSuccess ExecutionStatus = "SUCCESS"
	ExecutionFailed  ExecutionStatus = "FAILED"
)

// MaxErrorMessageLength truncates stored failure messages
const MaxErrorMessageLength = 2000

// Execution is the audit record of one report run
type Execution struct {
	shared.TenantEntity
	ReportDefinitionID uuid.UUID         `gorm:"type:uuid;not null;index" json:"reportDefinitionId"`
	Status             ExecutionStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	Parameters         map[string]string `gorm:"type:text;serializer:json" json:"parameters"`
	Result             *Result           `gorm:"type:text;serializer:json" json:"result,omitempty"`
	ErrorMessage       string            `gorm:"type:text" json:"errorMessage,omitempty"`
	StartedAt          time.Time         `gorm:"not null" json:"startedAt"`
	CompletedAt        *time.Time        `json:"completedAt,omitempty"`
	DurationMs         int64             `gorm:"not null;default:0" json:"durationMs"`
	ExecutedBy         uuid.UUID         `gorm:"type:uuid;not null" json:"executedBy"`
}

// TableName returns the table name for GORM
func (Execution) TableName() string {
	return "report_executions"
}

// StartExecution creates a RUNNING execution record
func StartExecution(tenantID, definitionID, executedBy uuid.UUID, params map[string]string) *Execution {
	e := &Execution{
		TenantEntity:       shared.NewTenantEntity(tenantID),
		ReportDefinitionID: definitionID,
		Status:             ExecutionRunning,
		Parameters:         params,
		ExecutedBy:         executedBy,
	}
	e.StartedAt = e.CreatedAt
	return e
}

// Succeed records the result of a finished run
func (e *Execution) Succeed(result *Result, at time.Time) {
	e.Status = ExecutionSuccess
	e.Result = result
	e.ErrorMessage = ""
	e.finish(at)
}

// Fail records a failed run
func (e *Execution) Fail(message string, at time.Time) {
	if len(message) > MaxErrorMessageLength {
		message = message[:MaxErrorMessageLength]
	}
	e.Status = ExecutionFailed
	e.Result = nil
	e.ErrorMessage = message
	e.finish(at)
}

func (e *Execution) finish(at time.Time) {
	e.CompletedAt = &at
	e.DurationMs = at.Sub(e.StartedAt).Milliseconds()
	if e.DurationMs < 0 {
		e.DurationMs = 0
	}
	e.UpdatedAt = at
}
