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

const instanceCollectionName = "exercise_instances"

// mongoInstanceRepository implements repository.InstanceRepository.
// Instances are inserted by the assignment repository inside its transaction.
type mongoInstanceRepository struct {
	collection *mongo.Collection
}

// NewMongoInstanceRepository creates an exercise instance repository backed by MongoDB.
func NewMongoInstanceRepository(db *mongo.Database) repository.InstanceRepository {
	return &mongoInstanceRepository{
		collection: db.Collection(instanceCollectionName),
	}
}

// GetByID retrieves an exercise instance by its ID.
func (r *mongoInstanceRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseInstance, error) {
	return findDoc[domain.ExerciseInstance](ctx, r.collection, bson.M{"_id": id})
}

func instanceFilterToBSON(f repository.InstanceFilter) bson.M {
	filter := bson.M{}
	if f.AssignmentID != nil {
		filter["assignmentId"] = *f.AssignmentID
	}
	if f.ClientID != nil {
		filter["clientId"] = *f.ClientID
	}
	if f.TrainerID != nil {
		filter["trainerId"] = *f.TrainerID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	due := bson.M{}
	if f.DueFrom != nil {
		due["$gte"] = *f.DueFrom
	}
	if f.DueTo != nil {
		due["$lt"] = *f.DueTo
	}
	if len(due) > 0 {
		filter["dueDate"] = due
	}
	return filter
}

// List retrieves instances matching the filter in schedule order.
func (r *mongoInstanceRepository) List(ctx context.Context, f repository.InstanceFilter) ([]domain.ExerciseInstance, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "dueDate", Value: 1},
		{Key: "dayNumber", Value: 1},
		{Key: "order", Value: 1},
	})

	return findDocs[domain.ExerciseInstance](ctx, r.collection, instanceFilterToBSON(f), findOptions)
}

// UpdateExecution writes the client-reported state of an instance while its
// stored status still equals from. Prescription fields are copies taken at
// expansion time and are never rewritten.
func (r *mongoInstanceRepository) UpdateExecution(ctx context.Context, inst *domain.ExerciseInstance, from domain.InstanceStatus) error {
	if inst.ID == primitive.NilObjectID {
		return errors.New("instance ID is required for update")
	}

	set := bson.M{
		"status":               inst.Status,
		"completedAt":          inst.CompletedAt,
		"actualSetsCompleted":  inst.ActualSetsCompleted,
		"completionPercentage": inst.CompletionPercentage,
		"clientFeedback":       inst.ClientFeedback,
		"updatedAt":            time.Now().UTC(),
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": inst.ID, "status": from}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return conditionalMiss(ctx, r.collection, inst.ID)
	}
	return nil
}

func (r *mongoInstanceRepository) SetTrainerFeedback(ctx context.Context, id primitive.ObjectID, feedback string) error {
	return setFields(ctx, r.collection, id, bson.M{"trainerFeedback": feedback})
}

func (r *mongoInstanceRepository) AttachUpload(ctx context.Context, id, uploadID primitive.ObjectID) error {
	return setFields(ctx, r.collection, id, bson.M{"uploadId": uploadID})
}

// CountByAssignment tallies total and completed instances of an assignment.
func (r *mongoInstanceRepository) CountByAssignment(ctx context.Context, assignmentID primitive.ObjectID) (repository.InstanceCounts, error) {
	var counts repository.InstanceCounts

	total, err := r.collection.CountDocuments(ctx, bson.M{"assignmentId": assignmentID})
	if err != nil {
		return counts, err
	}
	completedFilter := bson.M{"assignmentId": assignmentID, "status": domain.InstanceCompleted}
	completed, err := r.collection.CountDocuments(ctx, completedFilter)
	if err != nil {
		return counts, err
	}
	counts.Total, counts.Completed = int(total), int(completed)
	if completed == 0 {
		return counts, nil
	}

	var last domain.ExerciseInstance
	opts := options.FindOne().SetSort(bson.D{{Key: "dueDate", Value: -1}}).SetProjection(bson.M{"dueDate": 1})
	if err := r.collection.FindOne(ctx, completedFilter, opts).Decode(&last); err != nil {
		return counts, err
	}
	counts.LastCompletedDue = &last.DueDate
	return counts, nil
}

// EnsureInstanceIndexes creates necessary indexes for the exercise_instances collection.
func EnsureInstanceIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "assignmentId", Value: 1},
				{Key: "dueDate", Value: 1},
				{Key: "dayNumber", Value: 1},
				{Key: "order", Value: 1},
			},
			Options: options.Index(),
		},
		{
			// Weekly schedule lookups
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "dueDate", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "assignmentId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
