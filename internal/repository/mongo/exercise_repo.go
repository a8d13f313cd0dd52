package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseCollectionName = "exercises"

// mongoExerciseRepository stores the trainer exercise library. Programs copy
// what they need from it, so edits and deletes here never reach assignments.
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{collection: db.Collection(exerciseCollectionName)}
}

func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.TrainerID.IsZero() {
		return primitive.NilObjectID, errors.New("exercise needs a name and an owning trainer")
	}
	exercise.ID = primitive.NewObjectID()
	exercise.CreatedAt = time.Now().UTC()
	exercise.UpdatedAt = exercise.CreatedAt
	return insertDoc(ctx, r.collection, exercise)
}

func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	return findDoc[domain.Exercise](ctx, r.collection, bson.M{"_id": id})
}

// GetByTrainerID lists a trainer's library, newest first.
func (r *mongoExerciseRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error) {
	newest := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findDocs[domain.Exercise](ctx, r.collection, bson.M{"trainerId": trainerID}, newest)
}

// Update rewrites the descriptive fields; trainerId stays with the creator.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.Name == "" {
		return errors.New("exercise name cannot be empty")
	}
	return setFields(ctx, r.collection, exercise.ID, bson.M{
		"name":             exercise.Name,
		"description":      exercise.Description,
		"muscleGroup":      exercise.MuscleGroup,
		"executionTechnic": exercise.ExecutionTechnic,
		"applicability":    exercise.Applicability,
		"difficulty":       exercise.Difficulty,
		"videoUrl":         exercise.VideoURL,
	})
}

// Delete only matches the owner's exercise, so a foreign id reads as ErrNotFound.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id, trainerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("exercise_text_search"),
		},
	})
	return err
}
