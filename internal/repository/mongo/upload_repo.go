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

const uploadCollectionName = "uploads"

// mongoUploadRepository keeps metadata of form-check videos. The bytes live
// in object storage under S3ObjectKey.
type mongoUploadRepository struct {
	collection *mongo.Collection
}

func NewMongoUploadRepository(db *mongo.Database) repository.UploadRepository {
	return &mongoUploadRepository{collection: db.Collection(uploadCollectionName)}
}

func (r *mongoUploadRepository) Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	if upload.InstanceID.IsZero() || upload.ClientID.IsZero() || upload.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("upload needs an instance, a client and an object key")
	}
	upload.ID = primitive.NewObjectID()
	upload.UploadedAt = time.Now().UTC()
	return insertDoc(ctx, r.collection, upload)
}

func (r *mongoUploadRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error) {
	return findDoc[domain.Upload](ctx, r.collection, bson.M{"_id": id})
}

// GetByInstanceID returns the latest video of an instance. Re-recordings keep
// the older uploads around.
func (r *mongoUploadRepository) GetByInstanceID(ctx context.Context, instanceID primitive.ObjectID) (*domain.Upload, error) {
	latest := options.FindOne().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})
	return findDoc[domain.Upload](ctx, r.collection, bson.M{"instanceId": instanceID}, latest)
}

func EnsureUploadIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "instanceId", Value: 1}, {Key: "uploadedAt", Value: -1}}},
		{Keys: bson.D{{Key: "clientId", Value: 1}}},
		{Keys: bson.D{{Key: "trainerId", Value: 1}}},
	})
	return err
}
