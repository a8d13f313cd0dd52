package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/metrics"
	"alcyxob/fitness-coach/internal/progress"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/schedule"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InstanceQuery narrows ListInstances. DueFrom is inclusive, DueTo exclusive.
type InstanceQuery struct {
	AssignmentID *primitive.ObjectID
	ClientID     *primitive.ObjectID // Trainers only, clients always see their own
	Status       domain.InstanceStatus
	DueFrom      *time.Time
	DueTo        *time.Time
}

// ScheduleDay groups the instances due on one template day of the week.
type ScheduleDay struct {
	DayNumber int                       `json:"dayNumber"`
	DayName   string                    `json:"dayName,omitempty"`
	DueDate   time.Time                 `json:"dueDate"`
	Exercises []domain.ExerciseInstance `json:"exercises"`
}

// WeeklySchedule is a client's Monday-to-Sunday plan.
type WeeklySchedule struct {
	WeekStart            time.Time     `json:"weekStart"`
	WeekEnd              time.Time     `json:"weekEnd"` // Exclusive
	Days                 []ScheduleDay `json:"days"`
	TotalExercises       int           `json:"totalExercises"`
	CompletedExercises   int           `json:"completedExercises"`
	CompletionPercentage int           `json:"completionPercentage"`
}

// progressSyncer recomputes an assignment's progress after an instance changes.
type progressSyncer interface {
	SyncProgress(ctx context.Context, assignmentID primitive.ObjectID) (*domain.Assignment, error)
}

// TrackingService moves exercise instances through their status machine.
type TrackingService interface {
	UpdateInstanceStatus(ctx context.Context, actor Actor, instanceID primitive.ObjectID, u domain.StatusUpdate) (*domain.ExerciseInstance, error)
	SetTrainerFeedback(ctx context.Context, trainerID, instanceID primitive.ObjectID, feedback string) (*domain.ExerciseInstance, error)
	GetInstance(ctx context.Context, actor Actor, instanceID primitive.ObjectID) (*domain.ExerciseInstance, error)
	ListInstances(ctx context.Context, actor Actor, q InstanceQuery) ([]domain.ExerciseInstance, error)
	// WeeklySchedule returns the client's week containing weekOf, or the current week when nil.
	WeeklySchedule(ctx context.Context, clientID primitive.ObjectID, weekOf *time.Time) (*WeeklySchedule, error)
}

type trackingService struct {
	instanceRepo repository.InstanceRepository
	syncer       progressSyncer
	now          func() time.Time
}

func NewTrackingService(instanceRepo repository.InstanceRepository, syncer progressSyncer) TrackingService {
	return &trackingService{
		instanceRepo: instanceRepo,
		syncer:       syncer,
		now:          time.Now,
	}
}

// UpdateInstanceStatus applies one status update. A rejected update leaves the
// stored instance untouched. The write is conditional on the status it was
// validated against, so two racing updates cannot both leave a terminal
// state; the loser is revalidated against the winner's result. On success the
// owning assignment's progress is recomputed; a failure there is logged since
// the instance is already saved.
func (s *trackingService) UpdateInstanceStatus(ctx context.Context, actor Actor, instanceID primitive.ObjectID, u domain.StatusUpdate) (*domain.ExerciseInstance, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	var inst *domain.ExerciseInstance
	for attempt := 1; ; attempt++ {
		var err error
		inst, err = s.GetInstance(ctx, actor, instanceID)
		if err != nil {
			return nil, err
		}

		from := inst.Status
		if err := domain.ApplyStatusUpdate(inst, u, s.now()); err != nil {
			return nil, err
		}
		err = s.instanceRepo.UpdateExecution(ctx, inst, from)
		if err == nil {
			break
		}
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrInstanceNotFound
		case errors.Is(err, repository.ErrStaleWrite):
			if attempt == maxWriteAttempts {
				return nil, fmt.Errorf("%w: instance changed concurrently", domain.ErrInvalidTransition)
			}
		default:
			return nil, err
		}
	}
	metrics.RecordInstanceStatus(string(inst.Status))

	if _, err := s.syncer.SyncProgress(ctx, inst.AssignmentID); err != nil {
		log.WithFields(log.Fields{
			"assignment_id": inst.AssignmentID.Hex(),
			"instance_id":   inst.ID.Hex(),
		}).Warnf("failed to sync assignment progress: %v", err)
	}
	return inst, nil
}

// SetTrainerFeedback stores the trainer's comment on an instance in any status.
func (s *trackingService) SetTrainerFeedback(ctx context.Context, trainerID, instanceID primitive.ObjectID, feedback string) (*domain.ExerciseInstance, error) {
	if _, err := s.GetInstance(ctx, TrainerActor(trainerID), instanceID); err != nil {
		return nil, err
	}
	if err := s.instanceRepo.SetTrainerFeedback(ctx, instanceID, feedback); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}
	return s.GetInstance(ctx, TrainerActor(trainerID), instanceID)
}

// GetInstance returns an instance the actor owns as client or trainer.
func (s *trackingService) GetInstance(ctx context.Context, actor Actor, instanceID primitive.ObjectID) (*domain.ExerciseInstance, error) {
	inst, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}
	if !actor.owns(inst.ClientID, inst.TrainerID) {
		return nil, ErrInstanceAccessDenied
	}
	return inst, nil
}

func (s *trackingService) ListInstances(ctx context.Context, actor Actor, q InstanceQuery) ([]domain.ExerciseInstance, error) {
	if q.Status != "" && !q.Status.IsValid() {
		return nil, domain.ErrInvalidInstanceStatus
	}

	filter := repository.InstanceFilter{
		AssignmentID: q.AssignmentID,
		Status:       q.Status,
		DueFrom:      calendarPtr(q.DueFrom),
		DueTo:        calendarPtr(q.DueTo),
	}
	switch {
	case actor.IsTrainer():
		filter.TrainerID = &actor.ID
		filter.ClientID = q.ClientID
	case actor.IsClient():
		filter.ClientID = &actor.ID
	default:
		return nil, ErrAccessDenied
	}
	return s.instanceRepo.List(ctx, filter)
}

func (s *trackingService) WeeklySchedule(ctx context.Context, clientID primitive.ObjectID, weekOf *time.Time) (*WeeklySchedule, error) {
	ref := s.now()
	if weekOf != nil {
		ref = *weekOf
	}
	start, end := schedule.WeekRange(ref)

	instances, err := s.instanceRepo.List(ctx, repository.InstanceFilter{
		ClientID: &clientID,
		DueFrom:  &start,
		DueTo:    &end,
	})
	if err != nil {
		return nil, err
	}

	ws := &WeeklySchedule{
		WeekStart:      start,
		WeekEnd:        end,
		Days:           []ScheduleDay{},
		TotalExercises: len(instances),
	}
	// Instances arrive ordered by due date, day number and order
	for _, inst := range instances {
		if inst.Status == domain.InstanceCompleted {
			ws.CompletedExercises++
		}
		n := len(ws.Days)
		if n == 0 || ws.Days[n-1].DayNumber != inst.DayNumber || !ws.Days[n-1].DueDate.Equal(inst.DueDate) {
			ws.Days = append(ws.Days, ScheduleDay{
				DayNumber: inst.DayNumber,
				DayName:   inst.DayName,
				DueDate:   inst.DueDate,
				Exercises: []domain.ExerciseInstance{},
			})
			n++
		}
		ws.Days[n-1].Exercises = append(ws.Days[n-1].Exercises, inst)
	}
	ws.CompletionPercentage = int(progress.CompletionPercentage(ws.CompletedExercises, ws.TotalExercises))
	return ws, nil
}

func calendarPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.CalendarDate(*t)
	return &d
}
