package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/metrics"
	"alcyxob/fitness-coach/internal/progress"
	"alcyxob/fitness-coach/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidDayNumber     = domain.NewKindError(ErrValidation, "day number must be at least 1")
	ErrInvalidDuration      = domain.NewKindError(ErrValidation, "duration cannot be negative")
	ErrCompletedAndSkipped  = domain.NewKindError(ErrValidation, "a workout cannot be both completed and skipped")
	ErrSkipReasonNotAllowed = domain.NewKindError(ErrValidation, "skip reason requires a skipped workout")
)

// LogWorkoutRequest describes one workout session. A nil WorkoutDate means now.
type LogWorkoutRequest struct {
	AssignmentID      primitive.ObjectID
	WorkoutDate       *time.Time
	DayNumber         int
	WorkoutName       string
	DurationMinutes   *int
	PerceivedExertion *int
	Notes             string
	Completed         bool
	Skipped           bool
	SkipReason        string
}

func (r LogWorkoutRequest) validate() error {
	if r.AssignmentID.IsZero() {
		return ErrInvalidID
	}
	if r.DayNumber < 1 {
		return ErrInvalidDayNumber
	}
	if r.DurationMinutes != nil && *r.DurationMinutes < 0 {
		return ErrInvalidDuration
	}
	if e := r.PerceivedExertion; e != nil && (*e < 1 || *e > 10) {
		return domain.ErrInvalidExertion
	}
	if r.Completed && r.Skipped {
		return ErrCompletedAndSkipped
	}
	if !r.Skipped && strings.TrimSpace(r.SkipReason) != "" {
		return ErrSkipReasonNotAllowed
	}
	return nil
}

// WorkoutService records workout sessions against an assignment.
type WorkoutService interface {
	LogWorkout(ctx context.Context, clientID primitive.ObjectID, req LogWorkoutRequest) (*domain.WorkoutLog, error)
	ListWorkoutLogs(ctx context.Context, actor Actor, assignmentID primitive.ObjectID, limit int64) ([]domain.WorkoutLog, error)
	WorkoutSummary(ctx context.Context, actor Actor, assignmentID primitive.ObjectID) (*progress.WorkoutSummary, error)
}

type workoutService struct {
	assignmentRepo repository.AssignmentRepository
	workoutLogRepo repository.WorkoutLogRepository
	now            func() time.Time
}

func NewWorkoutService(assignmentRepo repository.AssignmentRepository, workoutLogRepo repository.WorkoutLogRepository) WorkoutService {
	return &workoutService{
		assignmentRepo: assignmentRepo,
		workoutLogRepo: workoutLogRepo,
		now:            time.Now,
	}
}

// LogWorkout stores a session for the client's own assignment. Completed
// sessions also bump the assignment's workout counter.
func (s *workoutService) LogWorkout(ctx context.Context, clientID primitive.ObjectID, req LogWorkoutRequest) (*domain.WorkoutLog, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	a, err := s.assignmentFor(ctx, ClientActor(clientID), req.AssignmentID)
	if err != nil {
		return nil, err
	}

	workoutDate := s.now().UTC()
	if req.WorkoutDate != nil {
		workoutDate = req.WorkoutDate.UTC()
	}

	entry := &domain.WorkoutLog{
		AssignmentID:      a.ID,
		ClientID:          a.ClientID,
		TrainerID:         a.TrainerID,
		WorkoutDate:       workoutDate,
		DayNumber:         req.DayNumber,
		WorkoutName:       req.WorkoutName,
		DurationMinutes:   req.DurationMinutes,
		PerceivedExertion: req.PerceivedExertion,
		Notes:             req.Notes,
		Completed:         req.Completed,
		Skipped:           req.Skipped,
		SkipReason:        req.SkipReason,
	}
	id, err := s.workoutLogRepo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id
	metrics.RecordWorkoutLogged(workoutOutcome(entry))

	if entry.Completed {
		if err := s.assignmentRepo.RecordWorkout(ctx, a.ID, workoutDate); err != nil {
			log.WithFields(log.Fields{
				"assignment_id": a.ID.Hex(),
				"log_id":        id.Hex(),
			}).Warnf("failed to record workout on assignment: %v", err)
		}
	}
	return entry, nil
}

// ListWorkoutLogs returns an assignment's logs, newest first.
func (s *workoutService) ListWorkoutLogs(ctx context.Context, actor Actor, assignmentID primitive.ObjectID, limit int64) ([]domain.WorkoutLog, error) {
	if _, err := s.assignmentFor(ctx, actor, assignmentID); err != nil {
		return nil, err
	}
	return s.workoutLogRepo.List(ctx, repository.WorkoutLogFilter{
		AssignmentID: &assignmentID,
		Limit:        limit,
	})
}

func (s *workoutService) WorkoutSummary(ctx context.Context, actor Actor, assignmentID primitive.ObjectID) (*progress.WorkoutSummary, error) {
	logs, err := s.ListWorkoutLogs(ctx, actor, assignmentID, 0)
	if err != nil {
		return nil, err
	}
	summary := progress.Summarize(logs)
	return &summary, nil
}

func (s *workoutService) assignmentFor(ctx context.Context, actor Actor, assignmentID primitive.ObjectID) (*domain.Assignment, error) {
	a, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if !actor.owns(a.ClientID, a.TrainerID) {
		return nil, ErrAssignmentAccessDenied
	}
	return a, nil
}

func workoutOutcome(l *domain.WorkoutLog) string {
	switch {
	case l.Completed:
		return "completed"
	case l.Skipped:
		return "skipped"
	}
	return "partial"
}
