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

const programCollectionName = "programs"

// mongoProgramRepository implements repository.ProgramRepository.
// Days and exercise specs are embedded in the program document.
type mongoProgramRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramRepository creates a program template repository backed by MongoDB.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		collection: db.Collection(programCollectionName),
	}
}

// Create inserts a new program template.
func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.ProgramTemplate) (primitive.ObjectID, error) {
	if program.TrainerID == primitive.NilObjectID || program.Name == "" {
		return primitive.NilObjectID, errors.New("program requires trainerId and name")
	}
	if program.Days == nil {
		program.Days = []domain.WorkoutDaySpec{}
	}

	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now

	return insertDoc(ctx, r.collection, program)
}

// GetByID retrieves a program template by its ID.
func (r *mongoProgramRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramTemplate, error) {
	return findDoc[domain.ProgramTemplate](ctx, r.collection, bson.M{"_id": id})
}

// GetByTrainerID lists a trainer's templates, newest first.
func (r *mongoProgramRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.ProgramTemplate, error) {
	newest := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findDocs[domain.ProgramTemplate](ctx, r.collection, bson.M{"trainerId": trainerID}, newest)
}

// Update replaces the editable fields of a template. Already expanded
// instances hold their own copies and are not touched.
func (r *mongoProgramRepository) Update(ctx context.Context, program *domain.ProgramTemplate) error {
	if program.ID == primitive.NilObjectID {
		return errors.New("program ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"name":            program.Name,
			"description":     program.Description,
			"programType":     program.ProgramType,
			"difficulty":      program.Difficulty,
			"durationWeeks":   program.DurationWeeks,
			"sessionsPerWeek": program.SessionsPerWeek,
			"days":            program.Days,
			"updatedAt":       time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": program.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a template owned by trainerID.
func (r *mongoProgramRepository) Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgramIndexes creates necessary indexes for the programs collection.
func EnsureProgramIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
