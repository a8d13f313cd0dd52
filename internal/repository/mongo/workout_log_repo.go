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

const workoutLogCollectionName = "workout_logs"

// mongoWorkoutLogRepository implements repository.WorkoutLogRepository
type mongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutLogRepository creates a workout log repository backed by MongoDB.
func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{
		collection: db.Collection(workoutLogCollectionName),
	}
}

// Create inserts a new workout log.
func (r *mongoWorkoutLogRepository) Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error) {
	if log.AssignmentID == primitive.NilObjectID || log.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout log requires assignmentId and clientId")
	}

	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now().UTC()

	return insertDoc(ctx, r.collection, log)
}

// List retrieves logs matching the filter, newest workoutDate first.
func (r *mongoWorkoutLogRepository) List(ctx context.Context, f repository.WorkoutLogFilter) ([]domain.WorkoutLog, error) {
	filter := bson.M{}
	if f.AssignmentID != nil {
		filter["assignmentId"] = *f.AssignmentID
	}
	if f.ClientID != nil {
		filter["clientId"] = *f.ClientID
	}
	if f.CompletedOnly {
		filter["completed"] = true
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "workoutDate", Value: -1}})
	if f.Limit > 0 {
		findOptions.SetLimit(f.Limit)
	}

	return findDocs[domain.WorkoutLog](ctx, r.collection, filter, findOptions)
}

// EnsureWorkoutLogIndexes creates necessary indexes for the workout_logs collection.
func EnsureWorkoutLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Streaks and recent workouts per client
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "completed", Value: 1}, {Key: "workoutDate", Value: -1}},
			Options: options.Index(),
		},
		{
			// Next workout day per assignment
			Keys:    bson.D{{Key: "assignmentId", Value: 1}, {Key: "workoutDate", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
