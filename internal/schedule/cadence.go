// Package schedule maps alert rule evaluation cadences to cron
// expressions and computes upcoming evaluation times for display.
package schedule

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/smartnotify/console/internal/model"
)

// ErrUnknownCadence is returned for schedule values outside the known set
var ErrUnknownCadence = errors.New("unknown evaluation cadence")

// cadenceExpressions maps cadences to standard 5-field cron expressions.
// Recurring evaluations run at 08:00 so notifications land at the start
// of the working day. Immediate rules have no cron line.
var cadenceExpressions = map[model.Schedule]string{
	model.ScheduleHourly:  "0 * * * *",
	model.ScheduleDaily:   "0 8 * * *",
	model.ScheduleWeekly:  "0 8 * * 1",
	model.ScheduleMonthly: "0 8 1 * *",
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Expression returns the cron expression for a cadence. The second return
// is false for immediate and unknown cadences.
func Expression(cadence model.Schedule) (string, bool) {
	expr, ok := cadenceExpressions[cadence]
	return expr, ok
}

// NextRun computes the next evaluation time after the given moment.
// Immediate rules evaluate continuously, so their next run is the moment
// itself.
func NextRun(cadence model.Schedule, after time.Time) (time.Time, error) {
	if cadence == model.ScheduleImmediate {
		return after, nil
	}

	expr, ok := cadenceExpressions[cadence]
	if !ok {
		return time.Time{}, ErrUnknownCadence
	}

	sched, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}, err
	}

	return sched.Next(after), nil
}
