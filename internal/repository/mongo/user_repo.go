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

const userCollectionName = "users"

// mongoUserRepository stores trainers and clients in one collection. A
// trainer's roster is the clientIds array; a client points back via trainerId.
type mongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{collection: db.Collection(userCollectionName)}
}

// Create returns ErrConflict when the email is taken.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || !user.Role.IsValid() {
		return primitive.NilObjectID, errors.New("user needs an email, a password hash and a known role")
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	return insertDoc(ctx, r.collection, user)
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findDoc[domain.User](ctx, r.collection, bson.M{"email": email})
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return findDoc[domain.User](ctx, r.collection, bson.M{"_id": id})
}

// AddClientIDToTrainer is idempotent: a client already on the roster still matches.
func (r *mongoUserRepository) AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	return r.updateRole(ctx, trainerID, domain.RoleTrainer, bson.M{
		"$addToSet": bson.M{"clientIds": clientID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *mongoUserRepository) SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error {
	return r.updateRole(ctx, clientID, domain.RoleClient, bson.M{
		"$set": bson.M{"trainerId": trainerID, "updatedAt": time.Now().UTC()},
	})
}

// updateRole applies update to the user only if it has the given role.
func (r *mongoUserRepository) updateRole(ctx context.Context, id primitive.ObjectID, role domain.Role, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "role": role}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetClientsByTrainerID lists the trainer's roster by name.
func (r *mongoUserRepository) GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	trainer, err := r.GetByID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if !trainer.IsTrainer() {
		return nil, repository.ErrNotFound
	}
	if len(trainer.ClientIDs) == 0 {
		return []domain.User{}, nil
	}
	byName := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findDocs[domain.User](ctx, r.collection, bson.M{"_id": bson.M{"$in": trainer.ClientIDs}}, byName)
}

func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
		// Trainers have no trainerId
		{Keys: bson.D{{Key: "trainerId", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	return err
}
