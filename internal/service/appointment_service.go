package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/metrics"
	"alcyxob/fitness-coach/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrAppointmentNotFound     = domain.NewKindError(ErrNotFound, "appointment not found")
	ErrAppointmentAccessDenied = domain.NewKindError(ErrAccessDenied, "access denied to this appointment")
	ErrAppointmentTimeConflict = domain.NewKindError(ErrConflict, "trainer already has an appointment at that time")
	ErrAppointmentClosed       = domain.NewKindError(ErrValidation, "appointment is completed, cancelled or missed and cannot change")
)

// AppointmentInput is a new or edited appointment. Status is only read on
// create and defaults to scheduled.
type AppointmentInput struct {
	ClientID    primitive.ObjectID
	Title       string
	Description string
	Type        string
	Status      domain.AppointmentStatus
	StartTime   time.Time
	EndTime     time.Time
	Location    string
	Notes       string
}

// AppointmentPatch changes an open appointment. Nil fields stay as they are.
type AppointmentPatch struct {
	Title       *string
	Description *string
	Type        *string
	StartTime   *time.Time
	EndTime     *time.Time
	Location    *string
	Notes       *string
}

// AppointmentQuery narrows ListAppointments. From and To are calendar days,
// both inclusive.
type AppointmentQuery struct {
	ClientID *primitive.ObjectID // Trainers only
	Status   domain.AppointmentStatus
	From     *time.Time
	To       *time.Time
	Skip     int64
	Limit    int64
}

// AppointmentService books sessions on a trainer's calendar.
type AppointmentService interface {
	Schedule(ctx context.Context, trainerID primitive.ObjectID, in AppointmentInput) (*domain.Appointment, error)
	GetAppointment(ctx context.Context, actor Actor, id primitive.ObjectID) (*domain.Appointment, error)
	ListAppointments(ctx context.Context, actor Actor, q AppointmentQuery) ([]domain.Appointment, error)
	// Today lists the trainer's appointments starting today, cancelled ones left out.
	Today(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Appointment, error)
	Reschedule(ctx context.Context, trainerID, id primitive.ObjectID, p AppointmentPatch) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, trainerID, id primitive.ObjectID, status domain.AppointmentStatus) (*domain.Appointment, error)
	DeleteAppointment(ctx context.Context, trainerID, id primitive.ObjectID) error
}

type appointmentService struct {
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	now             func() time.Time
}

func NewAppointmentService(userRepo repository.UserRepository, appointmentRepo repository.AppointmentRepository) AppointmentService {
	return &appointmentService{
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		now:             time.Now,
	}
}

func (s *appointmentService) Schedule(ctx context.Context, trainerID primitive.ObjectID, in AppointmentInput) (*domain.Appointment, error) {
	if in.Status == "" {
		in.Status = domain.AppointmentScheduled
	}
	a := &domain.Appointment{
		TrainerID:   trainerID,
		ClientID:    in.ClientID,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Status:      in.Status,
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
		Location:    in.Location,
		Notes:       in.Notes,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if in.ClientID.IsZero() {
		return nil, ErrInvalidID
	}
	if _, err := managedClient(ctx, s.userRepo, trainerID, in.ClientID); err != nil {
		return nil, err
	}

	if _, err := s.appointmentRepo.Create(ctx, a); err != nil {
		return nil, s.mapWriteErr(err)
	}
	log.WithFields(log.Fields{
		"appointment_id": a.ID.Hex(),
		"trainer_id":     trainerID.Hex(),
		"client_id":      in.ClientID.Hex(),
		"start":          a.StartTime,
	}).Info("appointment scheduled")
	return a, nil
}

func (s *appointmentService) GetAppointment(ctx context.Context, actor Actor, id primitive.ObjectID) (*domain.Appointment, error) {
	a, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	if !actor.owns(a.ClientID, a.TrainerID) {
		return nil, ErrAppointmentAccessDenied
	}
	return a, nil
}

func (s *appointmentService) ListAppointments(ctx context.Context, actor Actor, q AppointmentQuery) ([]domain.Appointment, error) {
	if q.Status != "" && !q.Status.IsValid() {
		return nil, domain.ErrInvalidAppointmentStatus
	}
	filter := repository.AppointmentFilter{
		Status:    q.Status,
		StartFrom: calendarPtr(q.From),
		Skip:      q.Skip,
		Limit:     q.Limit,
	}
	if q.To != nil {
		end := domain.CalendarDate(*q.To).AddDate(0, 0, 1)
		filter.StartTo = &end
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
	return s.appointmentRepo.List(ctx, filter)
}

func (s *appointmentService) Today(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Appointment, error) {
	start := domain.CalendarDate(s.now())
	end := start.AddDate(0, 0, 1)
	return s.appointmentRepo.List(ctx, repository.AppointmentFilter{
		TrainerID:     &trainerID,
		SkipCancelled: true,
		StartFrom:     &start,
		StartTo:       &end,
	})
}

// Reschedule edits an open appointment. A new time is checked against the
// rest of the trainer's calendar.
func (s *appointmentService) Reschedule(ctx context.Context, trainerID, id primitive.ObjectID, p AppointmentPatch) (*domain.Appointment, error) {
	a, err := s.GetAppointment(ctx, TrainerActor(trainerID), id)
	if err != nil {
		return nil, err
	}
	if !a.Status.IsOpen() {
		return nil, ErrAppointmentClosed
	}

	setString(&a.Title, p.Title)
	setString(&a.Description, p.Description)
	setString(&a.Type, p.Type)
	setString(&a.Location, p.Location)
	setString(&a.Notes, p.Notes)
	if p.StartTime != nil {
		a.StartTime = p.StartTime.UTC()
	}
	if p.EndTime != nil {
		a.EndTime = p.EndTime.UTC()
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	if err := s.appointmentRepo.Reschedule(ctx, a); err != nil {
		return nil, s.mapWriteErr(err)
	}
	return s.GetAppointment(ctx, TrainerActor(trainerID), id)
}

func (s *appointmentService) UpdateStatus(ctx context.Context, trainerID, id primitive.ObjectID, status domain.AppointmentStatus) (*domain.Appointment, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidAppointmentStatus
	}
	a, err := s.GetAppointment(ctx, TrainerActor(trainerID), id)
	if err != nil {
		return nil, err
	}
	if !a.Status.CanTransitionTo(status) {
		return nil, ErrAppointmentClosed
	}
	previous := a.Status
	if err := s.appointmentRepo.UpdateStatus(ctx, id, previous, status); err != nil {
		return nil, s.mapWriteErr(err)
	}
	a.Status = status
	log.WithFields(log.Fields{
		"appointment_id": id.Hex(),
		"from":           previous,
		"to":             status,
	}).Info("appointment status changed")
	return a, nil
}

func (s *appointmentService) DeleteAppointment(ctx context.Context, trainerID, id primitive.ObjectID) error {
	if _, err := s.GetAppointment(ctx, TrainerActor(trainerID), id); err != nil {
		return err
	}
	if err := s.appointmentRepo.Delete(ctx, id); err != nil {
		return s.mapWriteErr(err)
	}
	return nil
}

func (s *appointmentService) mapWriteErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		metrics.RecordAppointmentConflict()
		return ErrAppointmentTimeConflict
	case errors.Is(err, repository.ErrStaleWrite):
		return ErrAppointmentClosed
	case errors.Is(err, repository.ErrNotFound):
		return ErrAppointmentNotFound
	}
	return err
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
