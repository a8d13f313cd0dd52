package service

import (
	"context"
	"testing"

	"alcyxob/fitness-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateProgram_ResolvesLibraryNames(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	exercises := NewExerciseService(f.store.Exercises())

	squat, err := exercises.CreateExercise(ctx, f.trainer, ExerciseInput{Name: "Back Squat", MuscleGroup: "Legs"})
	require.NoError(t, err)

	in := ProgramInput{
		Name: "Legs",
		Days: []domain.WorkoutDaySpec{{
			DayNumber: 1,
			Exercises: []domain.ExerciseSpec{{ExerciseID: &squat.ID, Sets: 5, Reps: "5"}},
		}},
	}
	p, err := f.programs.CreateProgram(ctx, f.trainer, in)
	require.NoError(t, err)
	assert.Equal(t, "Back Squat", p.Days[0].Exercises[0].Name)

	missing := primitive.NewObjectID()
	in.Days[0].Exercises[0].ExerciseID = &missing
	_, err = f.programs.CreateProgram(ctx, f.trainer, in)
	require.ErrorIs(t, err, domain.ErrInvalidTemplate)

	otherTrainer := createUser(t, f.store, "other@example.com", domain.RoleTrainer)
	_, err = f.programs.CreateProgram(ctx, otherTrainer, ProgramInput{
		Name: "Borrowed",
		Days: []domain.WorkoutDaySpec{{DayNumber: 1, Exercises: []domain.ExerciseSpec{{ExerciseID: &squat.ID}}}},
	})
	require.ErrorIs(t, err, ErrExerciseAccessDenied)
}

func TestCreateProgram_Validation(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, err := f.programs.CreateProgram(ctx, f.trainer, ProgramInput{Name: "  "})
	require.ErrorIs(t, err, domain.ErrTemplateNameRequired)

	in := threeDayProgram()
	in.Days[1].DayNumber = 1
	_, err = f.programs.CreateProgram(ctx, f.trainer, in)
	require.ErrorIs(t, err, domain.ErrInvalidTemplate)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDuplicateProgram(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	dup, err := f.programs.DuplicateProgram(ctx, f.trainer, f.program.ID)
	require.NoError(t, err)
	assert.NotEqual(t, f.program.ID, dup.ID)
	assert.Equal(t, "Full Body (copy)", dup.Name)
	assert.Equal(t, f.program.Days, dup.Days)

	list, err := f.programs.GetProgramsByTrainer(ctx, f.trainer)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestProgramOwnership(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	stranger := primitive.NewObjectID()

	_, err := f.programs.GetProgram(ctx, stranger, f.program.ID)
	require.ErrorIs(t, err, ErrProgramAccessDenied)
	_, err = f.programs.UpdateProgram(ctx, stranger, f.program.ID, threeDayProgram())
	require.ErrorIs(t, err, ErrProgramAccessDenied)
	require.ErrorIs(t, f.programs.DeleteProgram(ctx, stranger, f.program.ID), ErrProgramAccessDenied)

	require.NoError(t, f.programs.DeleteProgram(ctx, f.trainer, f.program.ID))
	_, err = f.programs.GetProgram(ctx, f.trainer, f.program.ID)
	require.ErrorIs(t, err, ErrProgramNotFound)
}
