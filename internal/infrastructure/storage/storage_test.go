package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/stockroom/backend/internal/infrastructure/config"
)

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, &config.StorageConfig{Region: "eu-west-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("static credentials and custom endpoint", func(t *testing.T) {
		s, err := NewS3ObjectStorage(ctx, &config.StorageConfig{
			Bucket:          "labels",
			Endpoint:        "localhost:9000",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
			UsePathStyle:    true,
		}, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, "labels", s.GetBucket())
	})

	t.Run("empty key is rejected before any request", func(t *testing.T) {
		s, err := NewS3ObjectStorage(ctx, &config.StorageConfig{Bucket: "labels", Endpoint: "http://localhost:9000"})
		require.NoError(t, err)

		assert.ErrorIs(t, s.Upload(ctx, "", []byte("x"), "application/pdf"), ErrKeyRequired)
		_, err = s.ObjectExists(ctx, "")
		assert.ErrorIs(t, err, ErrKeyRequired)
	})
}

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryObjectStorage()

	exists, err := s.ObjectExists(ctx, "labels/ORD-1.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	data := []byte("%PDF-1.4")
	require.NoError(t, s.Upload(ctx, "labels/ORD-1.pdf", data, "application/pdf"))
	data[0] = 'X'

	exists, err = s.ObjectExists(ctx, "labels/ORD-1.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	obj, ok := s.Get("labels/ORD-1.pdf")
	require.True(t, ok)
	assert.Equal(t, "%PDF-1.4", string(obj.Data))
	assert.Equal(t, "application/pdf", obj.ContentType)

	assert.ErrorIs(t, s.Upload(ctx, "", nil, ""), ErrKeyRequired)
}
