package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InstanceStatus is the execution state of one exercise instance.
type InstanceStatus string

const (
	InstancePending    InstanceStatus = "pending"
	InstanceInProgress InstanceStatus = "in_progress"
	InstanceCompleted  InstanceStatus = "completed"
	InstanceSkipped    InstanceStatus = "skipped"
)

var (
	ErrInvalidInstanceStatus = NewKindError(ErrValidation, "invalid exercise instance status")
	ErrInvalidPercentage     = NewKindError(ErrValidation, "completion percentage must be between 0 and 100")
	ErrInvalidSetsCompleted  = NewKindError(ErrValidation, "actual sets completed cannot be negative")
	ErrInvalidTransition     = NewKindError(ErrValidation, "status transition not allowed")
)

func (s InstanceStatus) IsValid() bool {
	switch s {
	case InstancePending, InstanceInProgress, InstanceCompleted, InstanceSkipped:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s InstanceStatus) IsTerminal() bool {
	return s == InstanceCompleted || s == InstanceSkipped
}

// CanTransitionTo encodes pending -> in_progress -> completed and
// pending|in_progress -> skipped. Completed and skipped are terminal.
// Staying in a non-terminal state is allowed so feedback and partial
// progress can be recorded without changing state.
func (s InstanceStatus) CanTransitionTo(next InstanceStatus) bool {
	if !next.IsValid() || s.IsTerminal() {
		return false
	}
	switch s {
	case InstancePending:
		return true
	case InstanceInProgress:
		return next != InstancePending
	}
	return false
}

// ExerciseInstance is one dated, concrete occurrence of one exercise,
// produced by expanding a program template for an assignment.
// Prescription fields are copies; later template edits do not reach them.
type ExerciseInstance struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	AssignmentID primitive.ObjectID  `bson:"assignmentId" json:"assignmentId"`
	ClientID     primitive.ObjectID  `bson:"clientId" json:"clientId"`
	TrainerID    primitive.ObjectID  `bson:"trainerId" json:"trainerId"`
	ExerciseID   *primitive.ObjectID `bson:"exerciseId,omitempty" json:"exerciseId,omitempty"` // nil for ad hoc exercises
	ExerciseName string              `bson:"exerciseName,omitempty" json:"exerciseName,omitempty"`

	WeekNumber int       `bson:"weekNumber" json:"weekNumber"` // 1-based
	DayNumber  int       `bson:"dayNumber" json:"dayNumber"`
	DayName    string    `bson:"dayName,omitempty" json:"dayName,omitempty"`
	Order      int       `bson:"order" json:"order"`
	DueDate    time.Time `bson:"dueDate" json:"dueDate"` // Calendar date

	Sets        int    `bson:"sets" json:"sets"`
	Reps        string `bson:"reps" json:"reps"`
	Weight      string `bson:"weight" json:"weight"`
	RestSeconds int    `bson:"restSeconds" json:"restSeconds"`
	Notes       string `bson:"notes,omitempty" json:"notes,omitempty"`

	Status               InstanceStatus `bson:"status" json:"status"`
	CompletedAt          *time.Time     `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	ActualSetsCompleted  int            `bson:"actualSetsCompleted" json:"actualSetsCompleted"`
	CompletionPercentage int            `bson:"completionPercentage" json:"completionPercentage"` // 0-100
	ClientFeedback       string         `bson:"clientFeedback,omitempty" json:"clientFeedback,omitempty"`
	TrainerFeedback      string         `bson:"trainerFeedback,omitempty" json:"trainerFeedback,omitempty"`

	UploadID *primitive.ObjectID `bson:"uploadId,omitempty" json:"uploadId,omitempty"` // Client's form-check video

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// StatusUpdate carries a requested change of an instance's execution state.
// Nil pointers leave the corresponding field untouched.
type StatusUpdate struct {
	Status               InstanceStatus
	ClientFeedback       *string
	CompletionPercentage *int
	ActualSetsCompleted  *int
}

// Validate checks the update without looking at any instance.
func (u StatusUpdate) Validate() error {
	if !u.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidInstanceStatus, u.Status)
	}
	if p := u.CompletionPercentage; p != nil && (*p < 0 || *p > 100) {
		return fmt.Errorf("%w: got %d", ErrInvalidPercentage, *p)
	}
	if n := u.ActualSetsCompleted; n != nil && *n < 0 {
		return ErrInvalidSetsCompleted
	}
	return nil
}

// ApplyStatusUpdate validates u against inst and, only if everything is
// valid, mutates inst. Moving to completed forces the percentage to 100 and
// stamps CompletedAt with now, whatever percentage the caller supplied.
func ApplyStatusUpdate(inst *ExerciseInstance, u StatusUpdate, now time.Time) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if !inst.Status.CanTransitionTo(u.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inst.Status, u.Status)
	}

	inst.Status = u.Status
	if u.ClientFeedback != nil {
		inst.ClientFeedback = *u.ClientFeedback
	}
	if u.ActualSetsCompleted != nil {
		inst.ActualSetsCompleted = *u.ActualSetsCompleted
	}

	if u.Status == InstanceCompleted {
		inst.CompletionPercentage = 100
		completedAt := now.UTC()
		inst.CompletedAt = &completedAt
	} else if u.CompletionPercentage != nil {
		inst.CompletionPercentage = *u.CompletionPercentage
	}
	inst.UpdatedAt = now.UTC()
	return nil
}
