package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilledge/skilledge-server/internal/model"
)

func TestCertificateStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}
	client, err := NewClientWithAPI(ctx, api, "certs")
	require.NoError(t, err)
	store := NewCertificateStore(client)

	cert := model.Certificate{
		ID:               uuid.New(),
		Recipient:        "alice",
		AchievementTitle: "Web Fundamentals",
		Points:           30,
		DateIssued:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Hash:             "abc123",
	}
	require.NoError(t, store.Save(ctx, cert))
	assert.Equal(t, "certificates/abc123.json", api.putKey)
	assert.Equal(t, "application/json", api.putOpts.ContentType)

	api.getRC = io.NopCloser(bytes.NewReader(api.putData))
	got, err := store.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, cert.ID, got.ID)
	assert.Equal(t, "alice", got.Recipient)
	assert.True(t, cert.DateIssued.Equal(got.DateIssued))
}

func TestCertificateStore_GetNotFound(t *testing.T) {
	api := &fakeMinio{statErr: minioLib.ErrorResponse{Code: "NoSuchKey"}}
	store := NewCertificateStore(&Client{api: api, bucket: "b"})

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCertificateStore_SaveFailureIsStorageError(t *testing.T) {
	api := &fakeMinio{putErr: errors.New("offline")}
	store := NewCertificateStore(&Client{api: api, bucket: "b"})

	err := store.Save(context.Background(), model.Certificate{Hash: "h"})
	require.Error(t, err)
	assert.True(t, model.IsStorage(err))
}

func TestCertificateStore_GetMalformed(t *testing.T) {
	api := &fakeMinio{getRC: io.NopCloser(bytes.NewReader([]byte("{")))}
	store := NewCertificateStore(&Client{api: api, bucket: "b"})

	_, err := store.Get(context.Background(), "h")
	require.Error(t, err)
	assert.True(t, model.IsStorage(err))
}
