package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CopySuffix is appended to the name of a duplicated program.
const CopySuffix = " (copy)"

// ProgramInput carries the editable fields of a program template.
type ProgramInput struct {
	Name            string
	Description     string
	ProgramType     string
	Difficulty      string
	DurationWeeks   int
	SessionsPerWeek int
	Days            []domain.WorkoutDaySpec
}

// ProgramService manages trainer-authored program templates.
type ProgramService interface {
	CreateProgram(ctx context.Context, trainerID primitive.ObjectID, in ProgramInput) (*domain.ProgramTemplate, error)
	GetProgram(ctx context.Context, trainerID, programID primitive.ObjectID) (*domain.ProgramTemplate, error)
	GetProgramsByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.ProgramTemplate, error)
	UpdateProgram(ctx context.Context, trainerID, programID primitive.ObjectID, in ProgramInput) (*domain.ProgramTemplate, error)
	DuplicateProgram(ctx context.Context, trainerID, programID primitive.ObjectID) (*domain.ProgramTemplate, error)
	DeleteProgram(ctx context.Context, trainerID, programID primitive.ObjectID) error
}

type programService struct {
	programRepo  repository.ProgramRepository
	exerciseRepo repository.ExerciseRepository
}

func NewProgramService(programRepo repository.ProgramRepository, exerciseRepo repository.ExerciseRepository) ProgramService {
	return &programService{
		programRepo:  programRepo,
		exerciseRepo: exerciseRepo,
	}
}

// CreateProgram validates and stores a new template for the trainer.
func (s *programService) CreateProgram(ctx context.Context, trainerID primitive.ObjectID, in ProgramInput) (*domain.ProgramTemplate, error) {
	if trainerID.IsZero() {
		return nil, ErrInvalidID
	}

	program := &domain.ProgramTemplate{TrainerID: trainerID}
	in.applyTo(program)
	if err := s.prepare(ctx, program); err != nil {
		return nil, err
	}

	id, err := s.programRepo.Create(ctx, program)
	if err != nil {
		return nil, err
	}
	program.ID = id

	log.WithFields(log.Fields{
		"trainer_id": trainerID.Hex(),
		"program_id": id.Hex(),
		"days":       len(program.Days),
	}).Info("program created")
	return program, nil
}

// GetProgram returns a template owned by the trainer.
func (s *programService) GetProgram(ctx context.Context, trainerID, programID primitive.ObjectID) (*domain.ProgramTemplate, error) {
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

func (s *programService) GetProgramsByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.ProgramTemplate, error) {
	if trainerID.IsZero() {
		return nil, ErrInvalidID
	}
	return s.programRepo.GetByTrainerID(ctx, trainerID)
}

// UpdateProgram replaces a template's content. Instances already expanded
// from it keep their own copies and are not touched.
func (s *programService) UpdateProgram(ctx context.Context, trainerID, programID primitive.ObjectID, in ProgramInput) (*domain.ProgramTemplate, error) {
	program, err := s.GetProgram(ctx, trainerID, programID)
	if err != nil {
		return nil, err
	}

	in.applyTo(program)
	if err := s.prepare(ctx, program); err != nil {
		return nil, err
	}

	if err := s.programRepo.Update(ctx, program); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return program, nil
}

// DuplicateProgram stores a deep copy of a template under a new ID.
func (s *programService) DuplicateProgram(ctx context.Context, trainerID, programID primitive.ObjectID) (*domain.ProgramTemplate, error) {
	original, err := s.GetProgram(ctx, trainerID, programID)
	if err != nil {
		return nil, err
	}

	dup := original.Clone()
	dup.Name = original.Name + CopySuffix

	id, err := s.programRepo.Create(ctx, dup)
	if err != nil {
		return nil, err
	}
	dup.ID = id
	return dup, nil
}

// DeleteProgram removes a template. Existing assignments keep their
// denormalized program name and their instances.
func (s *programService) DeleteProgram(ctx context.Context, trainerID, programID primitive.ObjectID) error {
	if _, err := s.GetProgram(ctx, trainerID, programID); err != nil {
		return err
	}
	if err := s.programRepo.Delete(ctx, programID, trainerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProgramNotFound
		}
		return err
	}
	return nil
}

func (in ProgramInput) applyTo(p *domain.ProgramTemplate) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.ProgramType = in.ProgramType
	p.Difficulty = in.Difficulty
	p.DurationWeeks = in.DurationWeeks
	p.SessionsPerWeek = in.SessionsPerWeek
	p.Days = in.Days
	if p.Days == nil {
		p.Days = []domain.WorkoutDaySpec{}
	}
}

// prepare validates the template and resolves library references: every
// referenced exercise must exist and belong to the same trainer, and its name
// becomes the display label of specs that have none.
func (s *programService) prepare(ctx context.Context, p *domain.ProgramTemplate) error {
	if err := p.Validate(); err != nil {
		return err
	}

	names := make(map[primitive.ObjectID]string)
	for d := range p.Days {
		for i := range p.Days[d].Exercises {
			spec := &p.Days[d].Exercises[i]
			if spec.ExerciseID == nil {
				continue
			}
			name, ok := names[*spec.ExerciseID]
			if !ok {
				ex, err := s.exerciseRepo.GetByID(ctx, *spec.ExerciseID)
				if err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return fmt.Errorf("%w: exercise %s does not exist", domain.ErrInvalidTemplate, spec.ExerciseID.Hex())
					}
					return err
				}
				if ex.TrainerID != p.TrainerID {
					return ErrExerciseAccessDenied
				}
				name = ex.Name
				names[*spec.ExerciseID] = name
			}
			if spec.Name == "" {
				spec.Name = name
			}
		}
	}
	return nil
}
