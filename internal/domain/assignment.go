package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus type for assignment lifecycle
type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentPaused    AssignmentStatus = "paused"
	AssignmentCompleted AssignmentStatus = "completed" // Set automatically at 100% or manually by the trainer
	AssignmentCancelled AssignmentStatus = "cancelled"
)

var ErrInvalidAssignmentStatus = NewKindError(ErrValidation, "invalid assignment status")

// IsValid reports whether s is a known status.
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentActive, AssignmentPaused, AssignmentCompleted, AssignmentCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further status change is allowed.
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentCompleted || s == AssignmentCancelled
}

// CanTransitionTo reports whether an assignment in status s may move to next.
// active <-> paused, and either of them to completed or cancelled.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	if !next.IsValid() || s.IsTerminal() || s == next {
		return false
	}
	switch next {
	case AssignmentActive:
		return s == AssignmentPaused
	case AssignmentPaused:
		return s == AssignmentActive
	}
	return true
}

// Assignment binds one ProgramTemplate to one Client under one Trainer.
// At most one assignment per client may be active at any time.
type Assignment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID   primitive.ObjectID `bson:"programId" json:"programId"`
	ProgramName string             `bson:"programName" json:"programName"` // Denormalized for dashboards
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`

	StartDate       time.Time        `bson:"startDate" json:"startDate"` // Calendar date
	EndDate         *time.Time       `bson:"endDate,omitempty" json:"endDate,omitempty"`
	DurationWeeks   int              `bson:"durationWeeks" json:"durationWeeks"`     // Resolved value used for expansion
	SessionsPerWeek int              `bson:"sessionsPerWeek" json:"sessionsPerWeek"` // Resolved value used for expansion
	Status          AssignmentStatus `bson:"status" json:"status"`

	TotalInstances       int        `bson:"totalInstances" json:"totalInstances"`
	CompletedInstances   int        `bson:"completedInstances" json:"completedInstances"`
	CompletionPercentage float64    `bson:"completionPercentage" json:"completionPercentage"`
	LastInstanceDate     *time.Time `bson:"lastInstanceDate,omitempty" json:"lastInstanceDate,omitempty"`

	CompletedWorkouts int        `bson:"completedWorkouts" json:"completedWorkouts"` // From workout logs
	LastWorkoutDate   *time.Time `bson:"lastWorkoutDate,omitempty" json:"lastWorkoutDate,omitempty"`

	CustomNotes  string `bson:"customNotes,omitempty" json:"customNotes,omitempty"`   // Visible to the client
	TrainerNotes string `bson:"trainerNotes,omitempty" json:"trainerNotes,omitempty"` // Private to the trainer

	AssignedAt time.Time `bson:"assignedAt" json:"assignedAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
