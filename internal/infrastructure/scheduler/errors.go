package scheduler

import "errors"

var (
	// ErrInvalidSchedule is returned for schedules that are not a daily
	// "minute hour * * *" expression
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
