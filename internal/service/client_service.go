package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidContentType       = domain.NewKindError(ErrValidation, "invalid or missing video content type")
	ErrInvalidObjectKey         = domain.NewKindError(ErrValidation, "object key does not belong to this exercise instance")
	ErrUploadNotAllowed         = domain.NewKindError(ErrValidation, "upload is not allowed for a skipped exercise")
	ErrUploadMetadataMissing    = domain.NewKindError(ErrNotFound, "no video uploaded for this exercise")
	ErrUploadConfirmationFailed = errors.New("failed to confirm upload")
	ErrUploadURLError           = errors.New("failed to generate upload URL")
	ErrDownloadURLError         = errors.New("failed to generate download URL")
)

// UploadURLResponse carries the presigned URL and the key to report back on confirm.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// ClientService handles form-check video uploads for exercise instances.
type ClientService interface {
	RequestUploadURL(ctx context.Context, clientID, instanceID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmUpload(ctx context.Context, clientID, instanceID primitive.ObjectID, objectKey, fileName string, fileSize int64, contentType string) (*domain.ExerciseInstance, error)
	// GetVideoDownloadURL works for the client and for the client's trainer.
	GetVideoDownloadURL(ctx context.Context, actor Actor, instanceID primitive.ObjectID) (string, error)
}

// clientService implements the ClientService interface.
type clientService struct {
	instanceRepo repository.InstanceRepository
	uploadRepo   repository.UploadRepository
	fileStorage  storage.FileStorage
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	instanceRepo repository.InstanceRepository,
	uploadRepo repository.UploadRepository,
	fileStorage storage.FileStorage,
) ClientService {
	return &clientService{
		instanceRepo: instanceRepo,
		uploadRepo:   uploadRepo,
		fileStorage:  fileStorage,
	}
}

// RequestUploadURL generates a presigned PUT URL for a video of one instance.
func (s *clientService) RequestUploadURL(ctx context.Context, clientID, instanceID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	// 1. Validate inputs
	if clientID.IsZero() || instanceID.IsZero() {
		return nil, ErrInvalidID
	}
	if !isVideo(contentType) {
		return nil, ErrInvalidContentType
	}

	// 2. The instance must be the client's and still open for uploads
	inst, err := s.clientInstance(ctx, clientID, instanceID)
	if err != nil {
		return nil, err
	}
	if inst.Status == domain.InstanceSkipped {
		return nil, ErrUploadNotAllowed
	}

	// 3. Unique object key under the instance prefix
	ext := ""
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 {
		ext = "." + parts[1]
	}
	objectKey := path.Join(uploadPrefix(clientID, instanceID), uuid.NewString()+ext)

	// 4. Presign
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmUpload records the upload metadata after the client has PUT the file
// and links it to the instance.
func (s *clientService) ConfirmUpload(ctx context.Context, clientID, instanceID primitive.ObjectID, objectKey, fileName string, fileSize int64, contentType string) (*domain.ExerciseInstance, error) {
	// 1. Validate inputs
	if clientID.IsZero() || instanceID.IsZero() {
		return nil, ErrInvalidID
	}
	if !strings.HasPrefix(objectKey, uploadPrefix(clientID, instanceID)+"/") {
		return nil, ErrInvalidObjectKey
	}
	if !isVideo(contentType) {
		return nil, ErrInvalidContentType
	}

	// 2. Ownership
	inst, err := s.clientInstance(ctx, clientID, instanceID)
	if err != nil {
		return nil, err
	}

	// 3. Save metadata
	upload := &domain.Upload{
		InstanceID:  instanceID,
		ClientID:    clientID,
		TrainerID:   inst.TrainerID,
		S3ObjectKey: objectKey,
		FileName:    fileName,
		ContentType: contentType,
		Size:        fileSize,
	}
	uploadID, err := s.uploadRepo.Create(ctx, upload)
	if err != nil {
		log.WithField("instance_id", instanceID.Hex()).Errorf("failed to save upload metadata: %v", err)
		return nil, ErrUploadConfirmationFailed
	}

	// 4. Link the upload to the instance
	if err := s.instanceRepo.AttachUpload(ctx, instanceID, uploadID); err != nil {
		log.WithFields(log.Fields{
			"instance_id": instanceID.Hex(),
			"upload_id":   uploadID.Hex(),
		}).Errorf("upload saved but instance link failed: %v", err)
		return nil, ErrUploadConfirmationFailed
	}
	inst.UploadID = &uploadID
	return inst, nil
}

func (s *clientService) GetVideoDownloadURL(ctx context.Context, actor Actor, instanceID primitive.ObjectID) (string, error) {
	inst, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInstanceNotFound
		}
		return "", err
	}
	if !actor.owns(inst.ClientID, inst.TrainerID) {
		return "", ErrInstanceAccessDenied
	}

	var upload *domain.Upload
	if inst.UploadID != nil {
		upload, err = s.uploadRepo.GetByID(ctx, *inst.UploadID)
	} else {
		upload, err = s.uploadRepo.GetByInstanceID(ctx, instanceID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUploadMetadataMissing
		}
		return "", err
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, upload.S3ObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDownloadURLError
	}
	return url, nil
}

func (s *clientService) clientInstance(ctx context.Context, clientID, instanceID primitive.ObjectID) (*domain.ExerciseInstance, error) {
	inst, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}
	if inst.ClientID != clientID {
		return nil, ErrInstanceAccessDenied
	}
	return inst, nil
}

func uploadPrefix(clientID, instanceID primitive.ObjectID) string {
	return fmt.Sprintf("uploads/%s/%s", clientID.Hex(), instanceID.Hex())
}

func isVideo(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "video/")
}
