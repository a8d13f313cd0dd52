// internal/domain/program.go
package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Defaults filled in for exercise specs that leave a prescription blank.
const (
	DefaultSets        = 3
	DefaultReps        = "10"
	DefaultWeight      = "bodyweight"
	DefaultRestSeconds = 60
)

var (
	ErrTemplateNameRequired = NewKindError(ErrValidation, "program name is required")
	ErrInvalidTemplate      = NewKindError(ErrValidation, "invalid program template")
)

// ProgramTemplate is a reusable, trainer-authored workout blueprint.
// Assignments reference it by ID; instances copy its prescriptions at expansion time.
type ProgramTemplate struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID       primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Who created the program
	Name            string             `bson:"name" json:"name"`           // e.g., "Phase 1: Hypertrophy"
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	ProgramType     string             `bson:"programType,omitempty" json:"programType,omitempty"` // e.g., "strength", "cardio"
	Difficulty      string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	DurationWeeks   int                `bson:"durationWeeks,omitempty" json:"durationWeeks,omitempty"`     // 0 means "use the default"
	SessionsPerWeek int                `bson:"sessionsPerWeek,omitempty" json:"sessionsPerWeek,omitempty"` // 0 means "one per day spec"
	Days            []WorkoutDaySpec   `bson:"days" json:"days"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutDaySpec is one day of the template's weekly cycle.
type WorkoutDaySpec struct {
	DayNumber int            `bson:"dayNumber" json:"dayNumber"` // 1-based, unique within a template
	Name      string         `bson:"name,omitempty" json:"name,omitempty"`
	Exercises []ExerciseSpec `bson:"exercises" json:"exercises"`
}

// ExerciseSpec is a single prescribed exercise within a day.
type ExerciseSpec struct {
	ExerciseID  *primitive.ObjectID `bson:"exerciseId,omitempty" json:"exerciseId,omitempty"` // nil for ad hoc exercises
	Name        string              `bson:"name,omitempty" json:"name,omitempty"`             // Display label, mostly for ad hoc entries
	Sets        int                 `bson:"sets" json:"sets"`
	Reps        string              `bson:"reps,omitempty" json:"reps,omitempty"`     // "10", "8-12", "AMRAP"
	Weight      string              `bson:"weight,omitempty" json:"weight,omitempty"` // "60kg", "bodyweight", "70% 1RM"
	RestSeconds *int                `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	Notes       string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Order       int                 `bson:"order" json:"order"` // 1-based; 0 falls back to list position
}

// DistinctDayCount returns the number of distinct day numbers in the template.
func (t *ProgramTemplate) DistinctDayCount() int {
	seen := make(map[int]struct{}, len(t.Days))
	for _, d := range t.Days {
		seen[d.DayNumber] = struct{}{}
	}
	return len(seen)
}

// Validate checks the structural invariants of a template.
func (t *ProgramTemplate) Validate() error {
	if t.Name == "" {
		return ErrTemplateNameRequired
	}
	if t.DurationWeeks < 0 || t.SessionsPerWeek < 0 {
		return fmt.Errorf("%w: durationWeeks and sessionsPerWeek cannot be negative", ErrInvalidTemplate)
	}

	seen := make(map[int]bool, len(t.Days))
	for _, day := range t.Days {
		if day.DayNumber < 1 {
			return fmt.Errorf("%w: dayNumber must be >= 1, got %d", ErrInvalidTemplate, day.DayNumber)
		}
		if seen[day.DayNumber] {
			return fmt.Errorf("%w: duplicate dayNumber %d", ErrInvalidTemplate, day.DayNumber)
		}
		seen[day.DayNumber] = true

		for i, ex := range day.Exercises {
			if ex.Sets < 0 {
				return fmt.Errorf("%w: day %d exercise %d: sets cannot be negative", ErrInvalidTemplate, day.DayNumber, i+1)
			}
			if ex.RestSeconds != nil && *ex.RestSeconds < 0 {
				return fmt.Errorf("%w: day %d exercise %d: restSeconds cannot be negative", ErrInvalidTemplate, day.DayNumber, i+1)
			}
			if ex.Order < 0 {
				return fmt.Errorf("%w: day %d exercise %d: order cannot be negative", ErrInvalidTemplate, day.DayNumber, i+1)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the template with a cleared ID,
// used when a trainer duplicates a program.
func (t *ProgramTemplate) Clone() *ProgramTemplate {
	cp := *t
	cp.ID = primitive.NilObjectID
	cp.Days = make([]WorkoutDaySpec, len(t.Days))
	for i, d := range t.Days {
		cp.Days[i] = d
		cp.Days[i].Exercises = make([]ExerciseSpec, len(d.Exercises))
		for j, ex := range d.Exercises {
			if ex.ExerciseID != nil {
				id := *ex.ExerciseID
				ex.ExerciseID = &id
			}
			if ex.RestSeconds != nil {
				rest := *ex.RestSeconds
				ex.RestSeconds = &rest
			}
			cp.Days[i].Exercises[j] = ex
		}
	}
	return &cp
}
