package service

import (
	"context"
	"errors"
	"strings"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = domain.NewKindError(ErrNotFound, "exercise not found")
	ErrExerciseAccessDenied = domain.NewKindError(ErrAccessDenied, "access denied to modify or delete this exercise")
	ErrExerciseNameRequired = domain.NewKindError(ErrValidation, "exercise name is required")
)

// ExerciseInput carries the editable fields of a library exercise.
type ExerciseInput struct {
	Name             string
	Description      string
	MuscleGroup      string
	ExecutionTechnic string
	Applicability    string
	Difficulty       string
	VideoURL         string
}

func (in ExerciseInput) applyTo(e *domain.Exercise) {
	e.Name = strings.TrimSpace(in.Name)
	e.Description = in.Description
	e.MuscleGroup = in.MuscleGroup
	e.ExecutionTechnic = in.ExecutionTechnic
	e.Applicability = in.Applicability
	e.Difficulty = in.Difficulty
	e.VideoURL = in.VideoURL
}

type ExerciseService interface {
	CreateExercise(ctx context.Context, trainerID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetExercisesByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{exerciseRepo: exerciseRepo}
}

// CreateExercise adds an exercise to the trainer's library.
func (s *exerciseService) CreateExercise(ctx context.Context, trainerID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if trainerID.IsZero() {
		return nil, ErrInvalidID
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrExerciseNameRequired
	}

	exercise := &domain.Exercise{TrainerID: trainerID}
	in.applyTo(exercise)

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	// Fetch again to get the stored timestamps
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetExerciseByID retrieves a single exercise. Any authenticated user may read it.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetExercisesByTrainer retrieves all exercises of a trainer's library.
func (s *exerciseService) GetExercisesByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error) {
	if trainerID.IsZero() {
		return nil, ErrInvalidID
	}
	return s.exerciseRepo.GetByTrainerID(ctx, trainerID)
}

// UpdateExercise replaces the editable fields of an exercise the trainer owns.
func (s *exerciseService) UpdateExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if trainerID.IsZero() || exerciseID.IsZero() {
		return nil, ErrInvalidID
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrExerciseNameRequired
	}

	existing, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if existing.TrainerID != trainerID {
		return nil, ErrExerciseAccessDenied
	}

	in.applyTo(existing)
	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return existing, nil
}

// DeleteExercise removes an exercise the trainer owns. Program templates and
// instances keep their copied names, so nothing else needs cleaning up.
func (s *exerciseService) DeleteExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error {
	if trainerID.IsZero() || exerciseID.IsZero() {
		return ErrInvalidID
	}

	existing, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return err
	}
	if existing.TrainerID != trainerID {
		return ErrExerciseAccessDenied
	}

	if err := s.exerciseRepo.Delete(ctx, exerciseID, trainerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}
