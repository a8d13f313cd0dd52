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

const (
	appointmentCollectionName = "appointments"

	// calendarLockCollectionName holds one document per trainer. Every
	// calendar write bumps it inside its transaction, so two bookings for the
	// same trainer conflict on it instead of both passing the overlap check.
	calendarLockCollectionName = "calendar_locks"
)

type mongoAppointmentRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	locks      *mongo.Collection
}

func NewMongoAppointmentRepository(db *mongo.Database) repository.AppointmentRepository {
	return &mongoAppointmentRepository{
		client:     db.Client(),
		collection: db.Collection(appointmentCollectionName),
		locks:      db.Collection(calendarLockCollectionName),
	}
}

// overlapFilter matches the trainer's time-blocking appointments within [start, end).
func overlapFilter(trainerID, exclude primitive.ObjectID, start, end time.Time) bson.M {
	filter := bson.M{
		"trainerId": trainerID,
		"status":    bson.M{"$ne": domain.AppointmentCancelled},
		"startTime": bson.M{"$lt": end},
		"endTime":   bson.M{"$gt": start},
	}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	return filter
}

// lockedCalendar runs fn in a transaction that holds the trainer's calendar lock
// and fails with ErrConflict if another appointment blocks [start, end).
func (r *mongoAppointmentRepository) lockedCalendar(ctx context.Context, trainerID, exclude primitive.ObjectID, start, end time.Time, fn func(sc mongo.SessionContext) error) error {
	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		_, err := r.locks.UpdateOne(sc,
			bson.M{"_id": trainerID},
			bson.M{"$inc": bson.M{"version": 1}},
			options.Update().SetUpsert(true))
		if err != nil {
			return err
		}
		n, err := r.collection.CountDocuments(sc, overlapFilter(trainerID, exclude, start, end), options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n > 0 {
			return repository.ErrConflict
		}
		return fn(sc)
	})
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) (primitive.ObjectID, error) {
	if appointment.TrainerID.IsZero() || appointment.ClientID.IsZero() {
		return primitive.NilObjectID, errors.New("appointment needs a trainer and a client")
	}
	doc := *appointment
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt

	err := r.lockedCalendar(ctx, doc.TrainerID, primitive.NilObjectID, doc.StartTime, doc.EndTime, func(sc mongo.SessionContext) error {
		_, err := r.collection.InsertOne(sc, doc)
		return err
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	*appointment = doc
	return doc.ID, nil
}

func (r *mongoAppointmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Appointment, error) {
	return findDoc[domain.Appointment](ctx, r.collection, bson.M{"_id": id})
}

func appointmentFilterToBSON(f repository.AppointmentFilter) bson.M {
	filter := bson.M{}
	if f.TrainerID != nil {
		filter["trainerId"] = *f.TrainerID
	}
	if f.ClientID != nil {
		filter["clientId"] = *f.ClientID
	}
	switch {
	case f.Status != "":
		filter["status"] = f.Status
	case f.SkipCancelled:
		filter["status"] = bson.M{"$ne": domain.AppointmentCancelled}
	}
	start := bson.M{}
	if f.StartFrom != nil {
		start["$gte"] = *f.StartFrom
	}
	if f.StartTo != nil {
		start["$lt"] = *f.StartTo
	}
	if len(start) > 0 {
		filter["startTime"] = start
	}
	return filter
}

func (r *mongoAppointmentRepository) List(ctx context.Context, f repository.AppointmentFilter) ([]domain.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	return findDocs[domain.Appointment](ctx, r.collection, appointmentFilterToBSON(f), opts)
}

func (r *mongoAppointmentRepository) Reschedule(ctx context.Context, appointment *domain.Appointment) error {
	stored, err := r.GetByID(ctx, appointment.ID)
	if err != nil {
		return err
	}
	open := bson.A{domain.AppointmentScheduled, domain.AppointmentPending, domain.AppointmentConfirmed}
	return r.lockedCalendar(ctx, stored.TrainerID, stored.ID, appointment.StartTime, appointment.EndTime, func(sc mongo.SessionContext) error {
		result, err := r.collection.UpdateOne(sc,
			bson.M{"_id": stored.ID, "status": bson.M{"$in": open}},
			bson.M{"$set": bson.M{
				"title":       appointment.Title,
				"description": appointment.Description,
				"type":        appointment.Type,
				"startTime":   appointment.StartTime,
				"endTime":     appointment.EndTime,
				"location":    appointment.Location,
				"notes":       appointment.Notes,
				"updatedAt":   time.Now().UTC(),
			}})
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return conditionalMiss(sc, r.collection, stored.ID)
		}
		return nil
	})
}

func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.AppointmentStatus) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return conditionalMiss(ctx, r.collection, id)
	}
	return nil
}

func (r *mongoAppointmentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureAppointmentIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Overlap checks and calendar views
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "startTime", Value: 1}}},
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "startTime", Value: 1}}},
	})
	return err
}
