package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	failPresign bool
	lastKey     string
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	if s.failPresign {
		return "", errors.New("presign failed")
	}
	s.lastKey = key
	return "https://s3.test/put/" + key, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://s3.test/get/" + key, nil
}

func (s *fakeStorage) DeleteObject(context.Context, string) error { return nil }

func TestUploadFlow(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	inst := firstInstance(t, f, f.assign(t, f.clients[0], 1))
	svc := NewClientService(f.store.Instances(), f.store.Uploads(), &fakeStorage{})

	_, err := svc.GetVideoDownloadURL(ctx, ClientActor(f.clients[0]), inst.ID)
	require.ErrorIs(t, err, ErrUploadMetadataMissing)

	resp, err := svc.RequestUploadURL(ctx, f.clients[0], inst.ID, "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.ObjectKey, "uploads/"+f.clients[0].Hex()+"/"+inst.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(resp.ObjectKey, ".mp4"))

	updated, err := svc.ConfirmUpload(ctx, f.clients[0], inst.ID, resp.ObjectKey, "squat.mp4", 1024, "video/mp4")
	require.NoError(t, err)
	require.NotNil(t, updated.UploadID)

	// The trainer reviews the same video
	url, err := svc.GetVideoDownloadURL(ctx, TrainerActor(f.trainer), inst.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.test/get/"+resp.ObjectKey, url)

	_, err = svc.GetVideoDownloadURL(ctx, ClientActor(f.clients[1]), inst.ID)
	require.ErrorIs(t, err, ErrInstanceAccessDenied)
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	inst := firstInstance(t, f, f.assign(t, f.clients[0], 1))
	svc := NewClientService(f.store.Instances(), f.store.Uploads(), &fakeStorage{})

	_, err := svc.RequestUploadURL(ctx, f.clients[0], inst.ID, "image/png")
	require.ErrorIs(t, err, ErrInvalidContentType)
	_, err = svc.RequestUploadURL(ctx, f.clients[1], inst.ID, "video/mp4")
	require.ErrorIs(t, err, ErrInstanceAccessDenied)
	_, err = svc.ConfirmUpload(ctx, f.clients[0], inst.ID, "uploads/elsewhere/x.mp4", "x.mp4", 1, "video/mp4")
	require.ErrorIs(t, err, ErrInvalidObjectKey)

	_, err = f.tracking.UpdateInstanceStatus(ctx, ClientActor(f.clients[0]), inst.ID, domain.StatusUpdate{Status: domain.InstanceSkipped})
	require.NoError(t, err)
	_, err = svc.RequestUploadURL(ctx, f.clients[0], inst.ID, "video/mp4")
	require.ErrorIs(t, err, ErrUploadNotAllowed)

	broken := NewClientService(f.store.Instances(), f.store.Uploads(), &fakeStorage{failPresign: true})
	other := firstInstance(t, f, f.assign(t, f.clients[1], 1))
	_, err = broken.RequestUploadURL(ctx, f.clients[1], other.ID, "video/webm")
	require.ErrorIs(t, err, ErrUploadURLError)
}
