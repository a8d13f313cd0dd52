// Package schedule turns a weekly program template into calendar-dated
// exercise instances.
package schedule

import (
	"time"

	"alcyxob/fitness-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultDurationWeeks is used when neither the request nor the template
// specifies a program length.
const DefaultDurationWeeks = 4

// DaysPerWeek is the length of one template cycle.
const DaysPerWeek = 7

// Params are the inputs of one expansion. Zero DurationWeeks or
// SessionsPerWeek mean "unset" and are resolved to their defaults.
type Params struct {
	Template        *domain.ProgramTemplate
	AssignmentID    primitive.ObjectID
	ClientID        primitive.ObjectID
	TrainerID       primitive.ObjectID
	StartDate       time.Time
	DurationWeeks   int
	SessionsPerWeek int
}

// ResolveDurationWeeks picks the first positive value of requested,
// templateValue and DefaultDurationWeeks.
func ResolveDurationWeeks(requested, templateValue int) int {
	if requested > 0 {
		return requested
	}
	if templateValue > 0 {
		return templateValue
	}
	return DefaultDurationWeeks
}

// ResolveSessionsPerWeek picks the first positive value of requested and the
// template's own setting, falling back to the number of distinct template days.
func ResolveSessionsPerWeek(requested int, t *domain.ProgramTemplate) int {
	if requested > 0 {
		return requested
	}
	if t == nil {
		return 0
	}
	if t.SessionsPerWeek > 0 {
		return t.SessionsPerWeek
	}
	return t.DistinctDayCount()
}

// DaySpacing is the number of calendar days between consecutive template
// days within a week. More than seven sessions per week yields 0, which puts
// every session of that week on the same date. That collapse is intentional
// and kept as is.
func DaySpacing(sessionsPerWeek int) int {
	if sessionsPerWeek <= 0 {
		return 0
	}
	return DaysPerWeek / sessionsPerWeek
}

// DayOffset is the number of days after the start date on which the given
// template day of the given week falls.
func DayOffset(week, dayNumber, sessionsPerWeek int) int {
	return (week-1)*DaysPerWeek + (dayNumber-1)*DaySpacing(sessionsPerWeek)
}

// Expand materializes the template into dated exercise instances in
// generation order: week, then template day, then exercise. It is pure and
// deterministic: no IDs or timestamps are assigned, the store does that.
// A template without days yields an empty, non-nil slice.
func Expand(p Params) []domain.ExerciseInstance {
	instances := []domain.ExerciseInstance{}
	if p.Template == nil || len(p.Template.Days) == 0 {
		return instances
	}

	weeks := p.DurationWeeks
	if weeks <= 0 {
		weeks = DefaultDurationWeeks
	}
	sessions := p.SessionsPerWeek
	if sessions <= 0 {
		sessions = p.Template.DistinctDayCount()
	}
	start := domain.CalendarDate(p.StartDate)

	for week := 1; week <= weeks; week++ {
		for _, day := range p.Template.Days {
			due := start.AddDate(0, 0, DayOffset(week, day.DayNumber, sessions))
			for i, spec := range day.Exercises {
				instances = append(instances, newInstance(p, week, day, i, spec, due))
			}
		}
	}
	return instances
}

func newInstance(p Params, week int, day domain.WorkoutDaySpec, idx int, spec domain.ExerciseSpec, due time.Time) domain.ExerciseInstance {
	inst := domain.ExerciseInstance{
		AssignmentID: p.AssignmentID,
		ClientID:     p.ClientID,
		TrainerID:    p.TrainerID,
		ExerciseName: spec.Name,
		WeekNumber:   week,
		DayNumber:    day.DayNumber,
		DayName:      day.Name,
		Order:        spec.Order,
		DueDate:      due,
		Sets:         spec.Sets,
		Reps:         spec.Reps,
		Weight:       spec.Weight,
		RestSeconds:  domain.DefaultRestSeconds,
		Notes:        spec.Notes,
		Status:       domain.InstancePending,
	}
	if spec.ExerciseID != nil {
		id := *spec.ExerciseID
		inst.ExerciseID = &id
	}
	if inst.Order == 0 {
		inst.Order = idx + 1
	}
	if inst.Sets == 0 {
		inst.Sets = domain.DefaultSets
	}
	if inst.Reps == "" {
		inst.Reps = domain.DefaultReps
	}
	if inst.Weight == "" {
		inst.Weight = domain.DefaultWeight
	}
	if spec.RestSeconds != nil {
		inst.RestSeconds = *spec.RestSeconds
	}
	return inst
}
