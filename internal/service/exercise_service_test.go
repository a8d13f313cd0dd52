package service

import (
	"context"
	"testing"

	"alcyxob/fitness-coach/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExerciseLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewExerciseService(memory.NewStore().Exercises())
	trainer := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	_, err := svc.CreateExercise(ctx, trainer, ExerciseInput{})
	require.ErrorIs(t, err, ErrExerciseNameRequired)

	ex, err := svc.CreateExercise(ctx, trainer, ExerciseInput{Name: "Deadlift", MuscleGroup: "Back"})
	require.NoError(t, err)
	assert.False(t, ex.CreatedAt.IsZero())

	_, err = svc.UpdateExercise(ctx, stranger, ex.ID, ExerciseInput{Name: "Mine now"})
	require.ErrorIs(t, err, ErrExerciseAccessDenied)

	updated, err := svc.UpdateExercise(ctx, trainer, ex.ID, ExerciseInput{Name: "Romanian Deadlift", Difficulty: "Medium"})
	require.NoError(t, err)
	assert.Equal(t, "Romanian Deadlift", updated.Name)

	list, err := svc.GetExercisesByTrainer(ctx, trainer)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.ErrorIs(t, svc.DeleteExercise(ctx, stranger, ex.ID), ErrExerciseAccessDenied)
	require.NoError(t, svc.DeleteExercise(ctx, trainer, ex.ID))
	_, err = svc.GetExerciseByID(ctx, ex.ID)
	require.ErrorIs(t, err, ErrExerciseNotFound)
}
