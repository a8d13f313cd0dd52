package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/events"
	"alcyxob/fitness-coach/internal/metrics"
	"alcyxob/fitness-coach/internal/progress"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/schedule"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignRequest describes one program assignment.
// Zero DurationWeeks or SessionsPerWeek fall back to the template, then to
// the schedule defaults.
type AssignRequest struct {
	ProgramID       primitive.ObjectID
	ClientID        primitive.ObjectID
	StartDate       time.Time
	EndDate         *time.Time
	DurationWeeks   int
	SessionsPerWeek int
	CustomNotes     string
	TrainerNotes    string
}

// BulkAssignRequest assigns one program to many clients with shared settings.
type BulkAssignRequest struct {
	ProgramID       primitive.ObjectID
	ClientIDs       []primitive.ObjectID
	StartDate       time.Time
	DurationWeeks   int
	SessionsPerWeek int
	CustomNotes     string
}

// AssignmentQuery narrows ListAssignments.
type AssignmentQuery struct {
	ClientID  *primitive.ObjectID
	ProgramID *primitive.ObjectID
	Status    domain.AssignmentStatus
	Skip      int64
	Limit     int64
}

// AssignmentService creates program assignments and keeps their progress current.
type AssignmentService interface {
	Assign(ctx context.Context, trainerID primitive.ObjectID, req AssignRequest) (*domain.Assignment, error)
	// BulkAssign processes every client independently. When some clients fail
	// it returns the created assignments together with a *PartialBatchError.
	BulkAssign(ctx context.Context, trainerID primitive.ObjectID, req BulkAssignRequest) ([]domain.Assignment, error)
	GetAssignment(ctx context.Context, actor Actor, assignmentID primitive.ObjectID) (*domain.Assignment, error)
	ListAssignments(ctx context.Context, actor Actor, q AssignmentQuery) ([]domain.Assignment, error)
	UpdateStatus(ctx context.Context, trainerID, assignmentID primitive.ObjectID, status domain.AssignmentStatus) (*domain.Assignment, error)
	UpdateNotes(ctx context.Context, trainerID, assignmentID primitive.ObjectID, customNotes, trainerNotes *string) (*domain.Assignment, error)
	DeleteAssignment(ctx context.Context, trainerID, assignmentID primitive.ObjectID) error
	// SyncProgress recounts completed instances and completes an active
	// assignment once every instance is done.
	SyncProgress(ctx context.Context, assignmentID primitive.ObjectID) (*domain.Assignment, error)
}

type assignmentService struct {
	userRepo       repository.UserRepository
	programRepo    repository.ProgramRepository
	assignmentRepo repository.AssignmentRepository
	instanceRepo   repository.InstanceRepository
	publisher      events.Publisher
	now            func() time.Time
}

func NewAssignmentService(
	userRepo repository.UserRepository,
	programRepo repository.ProgramRepository,
	assignmentRepo repository.AssignmentRepository,
	instanceRepo repository.InstanceRepository,
	publisher events.Publisher,
) AssignmentService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &assignmentService{
		userRepo:       userRepo,
		programRepo:    programRepo,
		assignmentRepo: assignmentRepo,
		instanceRepo:   instanceRepo,
		publisher:      publisher,
		now:            time.Now,
	}
}

// Assign expands a program for one client and stores the assignment with all
// of its instances in one unit.
func (s *assignmentService) Assign(ctx context.Context, trainerID primitive.ObjectID, req AssignRequest) (*domain.Assignment, error) {
	if err := validateSchedule(req.StartDate, req.EndDate, req.DurationWeeks, req.SessionsPerWeek); err != nil {
		return nil, err
	}
	if req.ProgramID.IsZero() || req.ClientID.IsZero() {
		return nil, ErrInvalidID
	}

	program, err := s.ownedProgram(ctx, trainerID, req.ProgramID)
	if err != nil {
		metrics.RecordAssignmentFailure(errorKind(err))
		return nil, err
	}

	a, err := s.assign(ctx, trainerID, program, req)
	if err != nil {
		metrics.RecordAssignmentFailure(errorKind(err))
		return nil, err
	}
	return a, nil
}

// BulkAssign assigns one program to several clients. An invalid request or a
// program the trainer cannot use fails the whole batch; everything after that
// is decided per client.
func (s *assignmentService) BulkAssign(ctx context.Context, trainerID primitive.ObjectID, req BulkAssignRequest) ([]domain.Assignment, error) {
	if len(req.ClientIDs) == 0 {
		return nil, ErrNoClients
	}
	if err := validateSchedule(req.StartDate, nil, req.DurationWeeks, req.SessionsPerWeek); err != nil {
		return nil, err
	}
	if req.ProgramID.IsZero() {
		return nil, ErrInvalidID
	}

	program, err := s.ownedProgram(ctx, trainerID, req.ProgramID)
	if err != nil {
		return nil, err
	}

	created := make([]domain.Assignment, 0, len(req.ClientIDs))
	batchErr := &PartialBatchError{}
	for _, clientID := range req.ClientIDs {
		a, err := s.assign(ctx, trainerID, program, AssignRequest{
			ProgramID:       req.ProgramID,
			ClientID:        clientID,
			StartDate:       req.StartDate,
			DurationWeeks:   req.DurationWeeks,
			SessionsPerWeek: req.SessionsPerWeek,
			CustomNotes:     req.CustomNotes,
		})
		if err != nil {
			metrics.RecordAssignmentFailure(errorKind(err))
			batchErr.add(clientID, err)
			continue
		}
		created = append(created, *a)
	}

	log.WithFields(log.Fields{
		"trainer_id": trainerID.Hex(),
		"program_id": req.ProgramID.Hex(),
		"created":    len(created),
		"failed":     len(batchErr.Failures),
	}).Info("bulk assignment finished")

	if len(batchErr.Failures) > 0 {
		batchErr.Created = created
		return created, batchErr
	}
	return created, nil
}

// assign runs the per-client part of an assignment against an already
// authorized program.
func (s *assignmentService) assign(ctx context.Context, trainerID primitive.ObjectID, program *domain.ProgramTemplate, req AssignRequest) (*domain.Assignment, error) {
	// 1. The trainer must manage the client
	if req.ClientID.IsZero() {
		return nil, ErrInvalidID
	}
	if _, err := managedClient(ctx, s.userRepo, trainerID, req.ClientID); err != nil {
		return nil, err
	}

	// 2. Fast path for the common conflict. The store enforces it again atomically.
	if _, err := s.assignmentRepo.GetActiveByClient(ctx, req.ClientID); err == nil {
		return nil, ErrActiveAssignmentExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// 3. Expand the template
	startDate := domain.CalendarDate(req.StartDate)
	weeks := schedule.ResolveDurationWeeks(req.DurationWeeks, program.DurationWeeks)
	sessions := schedule.ResolveSessionsPerWeek(req.SessionsPerWeek, program)

	assignment := &domain.Assignment{
		ProgramID:       program.ID,
		ProgramName:     program.Name,
		ClientID:        req.ClientID,
		TrainerID:       trainerID,
		StartDate:       startDate,
		DurationWeeks:   weeks,
		SessionsPerWeek: sessions,
		Status:          domain.AssignmentActive,
		CustomNotes:     req.CustomNotes,
		TrainerNotes:    req.TrainerNotes,
	}
	if req.EndDate != nil {
		end := domain.CalendarDate(*req.EndDate)
		assignment.EndDate = &end
	}

	instances := schedule.Expand(schedule.Params{
		Template:        program,
		ClientID:        req.ClientID,
		TrainerID:       trainerID,
		StartDate:       startDate,
		DurationWeeks:   weeks,
		SessionsPerWeek: sessions,
	})

	// 4. Persist assignment and instances together
	id, err := s.assignmentRepo.CreateWithInstances(ctx, assignment, instances)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrActiveAssignmentExists
		}
		return nil, err
	}
	assignment.ID = id
	assignment.TotalInstances = len(instances)

	metrics.RecordAssignmentCreated(len(instances))
	log.WithFields(log.Fields{
		"assignment_id": id.Hex(),
		"program_id":    program.ID.Hex(),
		"client_id":     req.ClientID.Hex(),
		"instances":     len(instances),
	}).Info("program assigned")

	s.publish(ctx, events.TypeAssignmentCreated, assignment, "")
	return assignment, nil
}

// GetAssignment returns an assignment visible to the actor.
func (s *assignmentService) GetAssignment(ctx context.Context, actor Actor, assignmentID primitive.ObjectID) (*domain.Assignment, error) {
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

// ListAssignments lists a trainer's assignments, or a client's own ones.
func (s *assignmentService) ListAssignments(ctx context.Context, actor Actor, q AssignmentQuery) ([]domain.Assignment, error) {
	if q.Status != "" && !q.Status.IsValid() {
		return nil, domain.ErrInvalidAssignmentStatus
	}

	filter := repository.AssignmentFilter{
		ProgramID: q.ProgramID,
		Status:    q.Status,
		Skip:      q.Skip,
		Limit:     q.Limit,
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
	return s.assignmentRepo.List(ctx, filter)
}

// UpdateStatus pauses, resumes, cancels or completes an assignment.
// Completed and cancelled are final. The write only lands if the status read
// is still the stored one; otherwise the transition is rechecked against the
// fresh state.
func (s *assignmentService) UpdateStatus(ctx context.Context, trainerID, assignmentID primitive.ObjectID, status domain.AssignmentStatus) (*domain.Assignment, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidAssignmentStatus
	}

	for attempt := 1; ; attempt++ {
		a, err := s.GetAssignment(ctx, TrainerActor(trainerID), assignmentID)
		if err != nil {
			return nil, err
		}
		if !a.Status.CanTransitionTo(status) {
			return nil, ErrInvalidStatusTransition
		}

		var end *time.Time
		if status == domain.AssignmentCompleted {
			d := domain.CalendarDate(s.now())
			end = &d
		}
		previous := a.Status
		err = s.assignmentRepo.UpdateStatus(ctx, assignmentID, previous, status, end)
		if errors.Is(err, repository.ErrStaleWrite) {
			if attempt == maxWriteAttempts {
				return nil, ErrInvalidStatusTransition
			}
			continue
		}
		if err != nil {
			return nil, mapAssignmentWriteErr(err)
		}

		a.Status = status
		if end != nil && a.EndDate == nil {
			a.EndDate = end
		}
		log.WithFields(log.Fields{
			"assignment_id": a.ID.Hex(),
			"from":          previous,
			"to":            status,
		}).Info("assignment status changed")
		s.publish(ctx, events.TypeAssignmentStatusChanged, a, previous)
		return a, nil
	}
}

// UpdateNotes changes the client-visible and private notes. Nil leaves a note as is.
func (s *assignmentService) UpdateNotes(ctx context.Context, trainerID, assignmentID primitive.ObjectID, customNotes, trainerNotes *string) (*domain.Assignment, error) {
	if _, err := s.GetAssignment(ctx, TrainerActor(trainerID), assignmentID); err != nil {
		return nil, err
	}
	if err := s.assignmentRepo.UpdateNotes(ctx, assignmentID, customNotes, trainerNotes); err != nil {
		return nil, mapAssignmentWriteErr(err)
	}
	return s.GetAssignment(ctx, TrainerActor(trainerID), assignmentID)
}

// DeleteAssignment removes an assignment and its instances.
func (s *assignmentService) DeleteAssignment(ctx context.Context, trainerID, assignmentID primitive.ObjectID) error {
	if _, err := s.GetAssignment(ctx, TrainerActor(trainerID), assignmentID); err != nil {
		return err
	}
	if err := s.assignmentRepo.Delete(ctx, assignmentID); err != nil {
		return mapAssignmentWriteErr(err)
	}
	log.WithField("assignment_id", assignmentID.Hex()).Info("assignment deleted")
	return nil
}

// SyncProgress writes only the counters, so a status change or a logged
// workout landing meanwhile is kept. Auto-completion is a conditional
// active -> completed transition and is skipped if the assignment left active.
func (s *assignmentService) SyncProgress(ctx context.Context, assignmentID primitive.ObjectID) (*domain.Assignment, error) {
	if _, err := s.assignmentRepo.GetByID(ctx, assignmentID); err != nil {
		return nil, mapAssignmentWriteErr(err)
	}
	counts, err := s.instanceRepo.CountByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	p := repository.AssignmentProgress{
		TotalInstances:       counts.Total,
		CompletedInstances:   counts.Completed,
		CompletionPercentage: progress.CompletionPercentage(counts.Completed, counts.Total),
		LastInstanceDate:     counts.LastCompletedDue,
	}
	if err := s.assignmentRepo.UpdateProgress(ctx, assignmentID, p); err != nil {
		return nil, mapAssignmentWriteErr(err)
	}

	autoComplete := false
	if counts.Total > 0 && counts.Completed >= counts.Total {
		end := domain.CalendarDate(s.now())
		err := s.assignmentRepo.UpdateStatus(ctx, assignmentID, domain.AssignmentActive, domain.AssignmentCompleted, &end)
		switch {
		case err == nil:
			autoComplete = true
		case errors.Is(err, repository.ErrStaleWrite):
			// No longer active, so it stays as the trainer left it
		default:
			return nil, mapAssignmentWriteErr(err)
		}
	}

	a, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, mapAssignmentWriteErr(err)
	}

	if autoComplete {
		metrics.RecordAssignmentAutoCompleted()
		log.WithField("assignment_id", a.ID.Hex()).Info("assignment completed")
		s.publish(ctx, events.TypeAssignmentCompleted, a, domain.AssignmentActive)
	}
	return a, nil
}

func (s *assignmentService) ownedProgram(ctx context.Context, trainerID, programID primitive.ObjectID) (*domain.ProgramTemplate, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.TrainerID != trainerID {
		return nil, ErrProgramAccessDenied
	}
	return program, nil
}

// publish sends a lifecycle event. Failures are logged and never reach the caller.
func (s *assignmentService) publish(ctx context.Context, eventType string, a *domain.Assignment, previous domain.AssignmentStatus) {
	e := events.NewAssignmentEvent(eventType, a, previous, s.now())
	if err := s.publisher.Publish(ctx, e); err != nil {
		metrics.RecordEventPublishFailure(eventType)
		log.WithFields(log.Fields{
			"event":         eventType,
			"assignment_id": a.ID.Hex(),
		}).Warnf("failed to publish event: %v", err)
	}
}

func validateSchedule(start time.Time, end *time.Time, weeks, sessions int) error {
	if start.IsZero() {
		return ErrStartDateRequired
	}
	if end != nil && domain.CalendarDate(*end).Before(domain.CalendarDate(start)) {
		return ErrInvalidDateRange
	}
	if weeks < 0 || sessions < 0 {
		return domain.NewKindError(ErrValidation, "durationWeeks and sessionsPerWeek cannot be negative")
	}
	return nil
}

// maxWriteAttempts bounds the reread-and-retry loop of status writes that
// lose a race with another writer.
const maxWriteAttempts = 3

func mapAssignmentWriteErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrAssignmentNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrActiveAssignmentExists
	}
	return err
}

// errorKind labels an error for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrAccessDenied):
		return "forbidden"
	}
	return "internal"
}
