package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DailySchedule is a time of day at which a task runs once per day
type DailySchedule struct {
	Hour   int
	Minute int
}

// DefaultDailySchedule runs at 03:00
var DefaultDailySchedule = DailySchedule{Hour: 3}

// ParseDailySchedule reads the minute and hour fields of a cron expression.
// The remaining fields must be "*" or absent; an empty expression yields
// DefaultDailySchedule.
func ParseDailySchedule(expr string) (DailySchedule, error) {
	parts := strings.Fields(expr)
	if len(parts) == 0 {
		return DefaultDailySchedule, nil
	}
	if len(parts) < 2 || len(parts) > 5 {
		return DailySchedule{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, expr)
	}
	for _, p := range parts[2:] {
		if p != "*" {
			return DailySchedule{}, fmt.Errorf("%w: only daily schedules are supported, got %q", ErrInvalidSchedule, expr)
		}
	}

	minute, err := strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return DailySchedule{}, fmt.Errorf("%w: minute must be 0-59, got %q", ErrInvalidSchedule, parts[0])
	}
	hour, err := strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return DailySchedule{}, fmt.Errorf("%w: hour must be 0-23, got %q", ErrInvalidSchedule, parts[1])
	}
	return DailySchedule{Hour: hour, Minute: minute}, nil
}

// Due reports whether now falls in the scheduled minute
func (s DailySchedule) Due(now time.Time) bool {
	return now.Hour() == s.Hour && now.Minute() == s.Minute
}

// Next returns the first scheduled time strictly after now
func (s DailySchedule) Next(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
