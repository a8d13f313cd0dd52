package memory

import (
	"context"
	"errors"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type uploadRepository struct{ s *Store }

// Uploads returns the upload metadata collection.
func (s *Store) Uploads() repository.UploadRepository { return &uploadRepository{s} }

func (r *uploadRepository) Create(_ context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	if upload.InstanceID == primitive.NilObjectID || upload.ClientID == primitive.NilObjectID || upload.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("upload requires instanceId, clientId and s3ObjectKey")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	upload.ID = primitive.NewObjectID()
	upload.UploadedAt = time.Now().UTC()
	r.s.uploads[upload.ID] = *upload
	return upload.ID, nil
}

func (r *uploadRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Upload, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.uploads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *uploadRepository) GetByInstanceID(_ context.Context, instanceID primitive.ObjectID) (*domain.Upload, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var latest *domain.Upload
	for _, u := range r.s.uploads {
		if u.InstanceID == instanceID && (latest == nil || u.UploadedAt.After(latest.UploadedAt)) {
			cp := u
			latest = &cp
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}
