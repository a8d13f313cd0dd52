package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	assignmentCollectionName = "assignments"

	// oneActiveIndexName is the partial unique index that keeps at most one
	// active assignment per client, even under concurrent writers.
	oneActiveIndexName = "one_active_assignment_per_client"
)

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	client      *mongo.Client
	collection  *mongo.Collection
	instanceCol *mongo.Collection
}

// NewMongoAssignmentRepository creates a new Assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		client:      db.Client(),
		collection:  db.Collection(assignmentCollectionName),
		instanceCol: db.Collection(instanceCollectionName),
	}
}

// CreateWithInstances inserts the assignment and its instances in one transaction.
func (r *mongoAssignmentRepository) CreateWithInstances(ctx context.Context, assignment *domain.Assignment, instances []domain.ExerciseInstance) (primitive.ObjectID, error) {
	if assignment.ProgramID == primitive.NilObjectID || assignment.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires programId and clientId")
	}

	assignmentID := primitive.NewObjectID()
	now := time.Now().UTC()

	docs := make([]interface{}, len(instances))
	for i := range instances {
		instances[i].ID = primitive.NewObjectID()
		instances[i].AssignmentID = assignmentID
		instances[i].CreatedAt = now
		instances[i].UpdatedAt = now
		docs[i] = instances[i]
	}

	toInsert := *assignment
	toInsert.ID = assignmentID
	toInsert.AssignedAt = now
	toInsert.UpdatedAt = now
	toInsert.TotalInstances = len(instances)

	err := withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if _, err := r.collection.InsertOne(sc, toInsert); err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}
		if _, err := r.instanceCol.InsertMany(sc, docs); err != nil {
			return fmt.Errorf("insert instances: %w", err)
		}
		return nil
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}

	*assignment = toInsert
	return assignmentID, nil
}

// GetByID retrieves an assignment by its ID.
func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	return findDoc[domain.Assignment](ctx, r.collection, bson.M{"_id": id})
}

// GetActiveByClient retrieves the client's single active assignment.
func (r *mongoAssignmentRepository) GetActiveByClient(ctx context.Context, clientID primitive.ObjectID) (*domain.Assignment, error) {
	return findDoc[domain.Assignment](ctx, r.collection, bson.M{"clientId": clientID, "status": domain.AssignmentActive})
}

// List retrieves assignments matching the filter, most recently assigned first.
func (r *mongoAssignmentRepository) List(ctx context.Context, f repository.AssignmentFilter) ([]domain.Assignment, error) {
	filter := bson.M{}
	if f.TrainerID != nil {
		filter["trainerId"] = *f.TrainerID
	}
	if f.ClientID != nil {
		filter["clientId"] = *f.ClientID
	}
	if f.ProgramID != nil {
		filter["programId"] = *f.ProgramID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "assignedAt", Value: -1}})
	if f.Skip > 0 {
		findOptions.SetSkip(f.Skip)
	}
	if f.Limit > 0 {
		findOptions.SetLimit(f.Limit)
	}

	return findDocs[domain.Assignment](ctx, r.collection, filter, findOptions)
}

// statusTransition builds the update pipeline of UpdateStatus. The pipeline
// form lets endDate keep a stored value.
func statusTransition(to domain.AssignmentStatus, endDate *time.Time, now time.Time) mongo.Pipeline {
	set := bson.D{
		{Key: "status", Value: to},
		{Key: "updatedAt", Value: now},
	}
	if endDate != nil {
		set = append(set, bson.E{Key: "endDate", Value: bson.M{"$ifNull": bson.A{"$endDate", *endDate}}})
	}
	return mongo.Pipeline{{{Key: "$set", Value: set}}}
}

// UpdateStatus changes the status only while it still equals from.
func (r *mongoAssignmentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.AssignmentStatus, endDate *time.Time) error {
	filter := bson.M{"_id": id, "status": from}
	result, err := r.collection.UpdateOne(ctx, filter, statusTransition(to, endDate, time.Now().UTC()))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	if result.MatchedCount == 0 {
		return conditionalMiss(ctx, r.collection, id)
	}
	return nil
}

func (r *mongoAssignmentRepository) UpdateNotes(ctx context.Context, id primitive.ObjectID, customNotes, trainerNotes *string) error {
	set := bson.M{}
	if customNotes != nil {
		set["customNotes"] = *customNotes
	}
	if trainerNotes != nil {
		set["trainerNotes"] = *trainerNotes
	}
	return setFields(ctx, r.collection, id, set)
}

// UpdateProgress writes the instance counters without touching status.
func (r *mongoAssignmentRepository) UpdateProgress(ctx context.Context, id primitive.ObjectID, p repository.AssignmentProgress) error {
	return setFields(ctx, r.collection, id, bson.M{
		"totalInstances":       p.TotalInstances,
		"completedInstances":   p.CompletedInstances,
		"completionPercentage": p.CompletionPercentage,
		"lastInstanceDate":     p.LastInstanceDate,
	})
}

// RecordWorkout increments the completed workout counter.
func (r *mongoAssignmentRepository) RecordWorkout(ctx context.Context, id primitive.ObjectID, workoutDate time.Time) error {
	update := bson.M{
		"$inc": bson.M{"completedWorkouts": 1},
		"$set": bson.M{
			"lastWorkoutDate": workoutDate.UTC(),
			"updatedAt":       time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the assignment and all its instances in one transaction.
func (r *mongoAssignmentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		result, err := r.collection.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		_, err = r.instanceCol.DeleteMany(sc, bson.M{"assignmentId": id})
		return err
	})
}

// EnsureAssignmentIndexes creates necessary indexes for the assignments collection.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index().
				SetName(oneActiveIndexName).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": domain.AssignmentActive}),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "assignedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "assignedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "programId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
