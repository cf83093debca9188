package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bizledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:       "product-images",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	}
}

func TestNewS3ImageStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			_, err := NewS3ImageStorage(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ImageStorage(nil)
		assert.Error(t, err)
	})
}

func TestNewS3ImageStorage_Defaults(t *testing.T) {
	s, err := NewS3ImageStorage(testConfig(), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, "product-images", s.Bucket())
	assert.Equal(t, 15*time.Minute, s.presignTTL)

	s, err = NewS3ImageStorage(testConfig(), WithPresignTTL(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.presignTTL)
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		ssl      bool
		want     string
	}{
		{"", false, "http://localhost:9000"},
		{"minio:9000", false, "http://minio:9000"},
		{"minio:9000", true, "https://minio:9000"},
		{"https://s3.amazonaws.com", false, "https://s3.amazonaws.com"},
	}
	for _, tt := range tests {
		got, err := normalizeEndpoint(tt.endpoint, tt.ssl)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestS3ImageStorage_Presign(t *testing.T) {
	s, err := NewS3ImageStorage(testConfig())
	require.NoError(t, err)
	ctx := context.Background()
	key := "tenants/t1/products/p1/image.png"

	upload, expiresAt, err := s.PresignUpload(ctx, key, "image/png", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload, "http://localhost:9000/product-images/"))
	assert.Contains(t, upload, "X-Amz-Signature")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	download, expiresAt, err := s.PresignDownload(ctx, key, 0)
	require.NoError(t, err)
	assert.Contains(t, download, "product-images")
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)
}

func TestS3ImageStorage_EmptyKey(t *testing.T) {
	s, err := NewS3ImageStorage(testConfig())
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = s.PresignUpload(ctx, "", "image/png", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyKey)
	_, _, err = s.PresignDownload(ctx, "", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, s.Remove(ctx, ""), ErrEmptyKey)
}
