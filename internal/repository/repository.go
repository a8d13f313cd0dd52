package repository

import (
	"context"
	"time"

	"alcyxob/fitness-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound   = RepositoryError("not found")
	ErrConflict   = RepositoryError("conflict")    // Unique constraint violated
	ErrStaleWrite = RepositoryError("stale write") // Stored status no longer matches the expected one
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error // Only the owning trainer may delete
}

// ProgramRepository stores program templates.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.ProgramTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramTemplate, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.ProgramTemplate, error)
	Update(ctx context.Context, program *domain.ProgramTemplate) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}

// AssignmentFilter narrows assignment listings. Zero values match everything.
type AssignmentFilter struct {
	TrainerID *primitive.ObjectID
	ClientID  *primitive.ObjectID
	ProgramID *primitive.ObjectID
	Status    domain.AssignmentStatus
	Skip      int64
	Limit     int64
}

// AssignmentProgress is the recounted instance tally of an assignment.
type AssignmentProgress struct {
	TotalInstances       int
	CompletedInstances   int
	CompletionPercentage float64
	LastInstanceDate     *time.Time
}

// AssignmentRepository stores program assignments and owns the
// one-active-assignment-per-client invariant.
type AssignmentRepository interface {
	// CreateWithInstances persists the assignment and all of its exercise
	// instances atomically. If the assignment is active and the client already
	// has an active assignment it returns ErrConflict and persists nothing.
	CreateWithInstances(ctx context.Context, assignment *domain.Assignment, instances []domain.ExerciseInstance) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error)
	// GetActiveByClient returns the client's active assignment or ErrNotFound.
	GetActiveByClient(ctx context.Context, clientID primitive.ObjectID) (*domain.Assignment, error)
	List(ctx context.Context, filter AssignmentFilter) ([]domain.Assignment, error)
	// UpdateStatus moves the assignment from one status to another and fails
	// with ErrStaleWrite when the stored status is no longer from. A non-nil
	// endDate is written only if the assignment has none. Activating while the
	// client has another active assignment returns ErrConflict.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.AssignmentStatus, endDate *time.Time) error
	// UpdateNotes writes the non-nil notes only.
	UpdateNotes(ctx context.Context, id primitive.ObjectID, customNotes, trainerNotes *string) error
	// UpdateProgress writes the instance counters and nothing else.
	UpdateProgress(ctx context.Context, id primitive.ObjectID, p AssignmentProgress) error
	// RecordWorkout bumps completedWorkouts and sets lastWorkoutDate.
	RecordWorkout(ctx context.Context, id primitive.ObjectID, workoutDate time.Time) error
	// Delete removes the assignment together with its instances.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// InstanceFilter narrows exercise instance listings. Zero values match everything.
type InstanceFilter struct {
	AssignmentID *primitive.ObjectID
	ClientID     *primitive.ObjectID
	TrainerID    *primitive.ObjectID
	Status       domain.InstanceStatus
	DueFrom      *time.Time // inclusive
	DueTo        *time.Time // exclusive
}

// InstanceCounts is a per-assignment tally of instances.
type InstanceCounts struct {
	Total            int
	Completed        int
	LastCompletedDue *time.Time // Due date of the latest completed instance
}

// InstanceRepository stores expanded exercise instances.
type InstanceRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseInstance, error)
	// List returns instances ordered by dueDate, dayNumber, order.
	List(ctx context.Context, filter InstanceFilter) ([]domain.ExerciseInstance, error)
	// UpdateExecution writes the client-reported state (status, completedAt,
	// sets, percentage and client feedback) if the stored status still equals
	// from, and returns ErrStaleWrite otherwise.
	UpdateExecution(ctx context.Context, instance *domain.ExerciseInstance, from domain.InstanceStatus) error
	SetTrainerFeedback(ctx context.Context, id primitive.ObjectID, feedback string) error
	AttachUpload(ctx context.Context, id, uploadID primitive.ObjectID) error
	CountByAssignment(ctx context.Context, assignmentID primitive.ObjectID) (InstanceCounts, error)
}

// WorkoutLogFilter narrows workout log listings. Zero values match everything.
type WorkoutLogFilter struct {
	AssignmentID  *primitive.ObjectID
	ClientID      *primitive.ObjectID
	CompletedOnly bool
	Limit         int64
}

// WorkoutLogRepository stores workout session logs.
type WorkoutLogRepository interface {
	Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error)
	// List returns logs newest workoutDate first.
	List(ctx context.Context, filter WorkoutLogFilter) ([]domain.WorkoutLog, error)
}

// UploadRepository defines the interface for interacting with upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error)
	GetByInstanceID(ctx context.Context, instanceID primitive.ObjectID) (*domain.Upload, error)
}

// AppointmentFilter narrows appointment listings. Zero values match everything.
type AppointmentFilter struct {
	TrainerID     *primitive.ObjectID
	ClientID      *primitive.ObjectID
	Status        domain.AppointmentStatus
	SkipCancelled bool
	StartFrom     *time.Time // inclusive
	StartTo       *time.Time // exclusive
	Skip          int64
	Limit         int64
}

// AppointmentRepository stores trainer calendars. A trainer never has two
// time-blocking appointments that overlap; Create and Reschedule check this
// atomically and return ErrConflict on a clash.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Appointment, error)
	// List returns appointments in start time order.
	List(ctx context.Context, filter AppointmentFilter) ([]domain.Appointment, error)
	// Reschedule writes the editable fields of an open appointment. It returns
	// ErrStaleWrite if the appointment was closed meanwhile.
	Reschedule(ctx context.Context, appointment *domain.Appointment) error
	// UpdateStatus behaves like AssignmentRepository.UpdateStatus.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.AppointmentStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
