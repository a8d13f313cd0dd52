package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/progress"
	"alcyxob/fitness-coach/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecentWorkoutsLimit is the number of logs shown on a dashboard.
const RecentWorkoutsLimit = 10

// AssignmentProgress is one active program on a dashboard.
type AssignmentProgress struct {
	AssignmentID         primitive.ObjectID `json:"assignmentId"`
	ProgramID            primitive.ObjectID `json:"programId"`
	ProgramName          string             `json:"programName"`
	StartDate            time.Time          `json:"startDate"`
	EndDate              *time.Time         `json:"endDate,omitempty"`
	TotalInstances       int                `json:"totalInstances"`
	CompletedInstances   int                `json:"completedInstances"`
	CompletionPercentage float64            `json:"completionPercentage"`
	NextWorkoutDay       int                `json:"nextWorkoutDay"`
	LastWorkoutDate      *time.Time         `json:"lastWorkoutDate,omitempty"`
	CustomNotes          string             `json:"customNotes,omitempty"`
}

// DashboardStats are the client's all-time figures.
type DashboardStats struct {
	TotalPrograms          int      `json:"totalPrograms"`
	ActivePrograms         int      `json:"activePrograms"`
	CompletedPrograms      int      `json:"completedPrograms"`
	TotalCompletedWorkouts int      `json:"totalCompletedWorkouts"`
	CurrentStreak          int      `json:"currentStreak"`
	LongestStreak          int      `json:"longestStreak"`
	AverageDuration        *float64 `json:"averageDuration,omitempty"`
	AverageExertion        *float64 `json:"averageExertion,omitempty"`
}

// ClientDashboard is everything a client home screen shows.
type ClientDashboard struct {
	ClientID          primitive.ObjectID   `json:"clientId"`
	ActiveAssignments []AssignmentProgress `json:"activeAssignments"`
	RecentWorkouts    []domain.WorkoutLog  `json:"recentWorkouts"`
	Stats             DashboardStats       `json:"stats"`
}

// ProgressService builds read-only dashboards.
type ProgressService interface {
	ClientDashboard(ctx context.Context, clientID primitive.ObjectID) (*ClientDashboard, error)
	// TrainerClientDashboard is the same dashboard for a client the trainer manages.
	TrainerClientDashboard(ctx context.Context, trainerID, clientID primitive.ObjectID) (*ClientDashboard, error)
}

type progressService struct {
	userRepo       repository.UserRepository
	programRepo    repository.ProgramRepository
	assignmentRepo repository.AssignmentRepository
	workoutLogRepo repository.WorkoutLogRepository
	now            func() time.Time
}

func NewProgressService(
	userRepo repository.UserRepository,
	programRepo repository.ProgramRepository,
	assignmentRepo repository.AssignmentRepository,
	workoutLogRepo repository.WorkoutLogRepository,
) ProgressService {
	return &progressService{
		userRepo:       userRepo,
		programRepo:    programRepo,
		assignmentRepo: assignmentRepo,
		workoutLogRepo: workoutLogRepo,
		now:            time.Now,
	}
}

func (s *progressService) ClientDashboard(ctx context.Context, clientID primitive.ObjectID) (*ClientDashboard, error) {
	if clientID.IsZero() {
		return nil, ErrInvalidID
	}

	assignments, err := s.assignmentRepo.List(ctx, repository.AssignmentFilter{ClientID: &clientID})
	if err != nil {
		return nil, err
	}
	logs, err := s.workoutLogRepo.List(ctx, repository.WorkoutLogFilter{ClientID: &clientID})
	if err != nil {
		return nil, err
	}

	d := &ClientDashboard{
		ClientID:          clientID,
		ActiveAssignments: []AssignmentProgress{},
		RecentWorkouts:    logs,
	}
	if len(d.RecentWorkouts) > RecentWorkoutsLimit {
		d.RecentWorkouts = d.RecentWorkouts[:RecentWorkoutsLimit]
	}

	d.Stats.TotalPrograms = len(assignments)
	for i := range assignments {
		a := &assignments[i]
		switch a.Status {
		case domain.AssignmentCompleted:
			d.Stats.CompletedPrograms++
		case domain.AssignmentActive:
			d.Stats.ActivePrograms++
			d.ActiveAssignments = append(d.ActiveAssignments, s.assignmentProgress(ctx, a, logs))
		}
	}

	summary := progress.Summarize(logs)
	dates := progress.CompletedDates(logs)
	d.Stats.TotalCompletedWorkouts = summary.CompletedWorkouts
	d.Stats.CurrentStreak = progress.CurrentStreak(dates, s.now())
	d.Stats.LongestStreak = progress.LongestStreak(dates)
	d.Stats.AverageDuration = summary.AverageDuration
	d.Stats.AverageExertion = summary.AverageExertion
	return d, nil
}

func (s *progressService) TrainerClientDashboard(ctx context.Context, trainerID, clientID primitive.ObjectID) (*ClientDashboard, error) {
	if _, err := managedClient(ctx, s.userRepo, trainerID, clientID); err != nil {
		return nil, err
	}
	return s.ClientDashboard(ctx, clientID)
}

// assignmentProgress never fails: a missing template only costs the next-day hint.
func (s *progressService) assignmentProgress(ctx context.Context, a *domain.Assignment, clientLogs []domain.WorkoutLog) AssignmentProgress {
	var own []domain.WorkoutLog
	for _, l := range clientLogs {
		if l.AssignmentID == a.ID {
			own = append(own, l)
		}
	}

	totalDays := 0
	if program, err := s.programRepo.GetByID(ctx, a.ProgramID); err == nil {
		totalDays = program.DistinctDayCount()
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.WithField("program_id", a.ProgramID.Hex()).Warnf("failed to load program for dashboard: %v", err)
	}

	return AssignmentProgress{
		AssignmentID:         a.ID,
		ProgramID:            a.ProgramID,
		ProgramName:          a.ProgramName,
		StartDate:            a.StartDate,
		EndDate:              a.EndDate,
		TotalInstances:       a.TotalInstances,
		CompletedInstances:   a.CompletedInstances,
		CompletionPercentage: progress.CompletionPercentage(a.CompletedInstances, a.TotalInstances),
		NextWorkoutDay:       progress.NextWorkoutDay(progress.LatestLog(own), totalDays),
		LastWorkoutDate:      a.LastWorkoutDate,
		CustomNotes:          a.CustomNotes,
	}
}
