package ir

import "plx/internal/types"

// ScheduleKind tags a task's scheduling discipline (§3.5).
type ScheduleKind int

const (
	SchedulePeriodic ScheduleKind = iota
	ScheduleEvent
	ScheduleContinuous
)

// Schedule is a task's schedule: periodic(period), event(source), or
// continuous (§3.5).
type Schedule struct {
	Kind   ScheduleKind
	Period types.Duration // meaningful only when Kind == SchedulePeriodic
	Source string         // meaningful only when Kind == ScheduleEvent
}

// Task binds an ordered list of POUs to a schedule (§3.5).
type Task struct {
	Name     string
	Schedule Schedule
	Priority *int // optional
	PouRefs  []string
}
