package minio_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	adapter "object-gateway/internal/adapters/storage/minio"
	"object-gateway/internal/config"
	"object-gateway/internal/core/domain"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testAccessKey = "minioadmin"
	testSecretKey = "minioadmin"
	testBucket    = "test-bucket"
)

func setupContainer(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     testAccessKey,
			"MINIO_ROOT_PASSWORD": testSecretKey,
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000"),
	}
	minioContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := minioContainer.Host(ctx)
	require.NoError(t, err)

	port, err := minioContainer.MappedPort(ctx, "9000")
	require.NoError(t, err)

	endpoint := fmt.Sprintf("%s:%s", host, port.Port())

	cleanup := func() {
		if err := minioContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return endpoint, cleanup
}

func createAdapter(t *testing.T, endpoint string) (*adapter.Adapter, *bytes.Buffer) {
	t.Helper()
	cfg := config.MinioConfig{
		Endpoint:  endpoint,
		AccessKey: testAccessKey,
		SecretKey: testSecretKey,
		UseSSL:    false,
	}

	logs := &bytes.Buffer{}
	a, err := adapter.NewAdapter(cfg, slog.New(slog.NewTextHandler(logs, nil)))
	require.NoError(t, err)

	client, err := minio.New(endpoint, &minio.Options{Creds: credentials.NewStaticV4(testAccessKey, testSecretKey, "")})
	require.NoError(t, err)
	require.NoError(t, client.MakeBucket(context.Background(), testBucket, minio.MakeBucketOptions{}))

	return a, logs
}

func TestMinioAdapter(t *testing.T) {
	endpoint, cleanup := setupContainer(t)
	defer cleanup()
	ctx := context.Background()
	a, logs := createAdapter(t, endpoint)

	t.Run("BucketExists - Existing and missing bucket", func(t *testing.T) {
		// Act
		exists, err := a.BucketExists(ctx, testBucket)
		missing, missingErr := a.BucketExists(ctx, "does-not-exist")

		// Assert
		require.NoError(t, err)
		require.NoError(t, missingErr)
		assert.True(t, exists)
		assert.False(t, missing)
	})

	t.Run("PutObject - Then get and stat", func(t *testing.T) {
		// Arrange
		loc := domain.ObjectLocation{Bucket: testBucket, Key: "docs/hello.txt"}
		content := []byte("Hello, MinIO!")

		// Act
		err := a.PutObject(ctx, loc, bytes.NewReader(content), int64(len(content)), "text/plain")

		// Assert
		require.NoError(t, err)
		obj, err := a.GetObject(ctx, loc)
		require.NoError(t, err)
		defer obj.Body.Close()
		data, err := io.ReadAll(obj.Body)
		require.NoError(t, err)
		assert.Equal(t, content, data)
		assert.Equal(t, "text/plain", obj.ContentType)
		assert.Equal(t, int64(len(content)), obj.Size)

		info, err := a.StatObject(ctx, loc)
		require.NoError(t, err)
		assert.Equal(t, "docs/hello.txt", info.Key)
	})

	t.Run("GetObject - Missing key", func(t *testing.T) {
		// Act
		_, err := a.GetObject(ctx, domain.ObjectLocation{Bucket: testBucket, Key: "nope"})

		// Assert
		assert.ErrorIs(t, err, domain.ErrObjectNotFound)
	})

	t.Run("ListObjects - Missing bucket", func(t *testing.T) {
		// Act
		_, err := a.ListObjects(ctx, "does-not-exist", "")

		// Assert
		assert.ErrorIs(t, err, domain.ErrBucketNotFound)
	})

	t.Run("ListObjects - Filters by prefix", func(t *testing.T) {
		// Arrange
		for _, key := range []string{"list/a.txt", "list/b.txt", "other/c.txt"} {
			require.NoError(t, a.PutObject(ctx, domain.ObjectLocation{Bucket: testBucket, Key: key}, bytes.NewReader([]byte("x")), 1, ""))
		}

		// Act
		objects, err := a.ListObjects(ctx, testBucket, "list/")

		// Assert
		require.NoError(t, err)
		require.Len(t, objects, 2)
		assert.Equal(t, "list/a.txt", objects[0].Key)
		assert.Equal(t, "list/b.txt", objects[1].Key)
	})

	t.Run("GetObjectRange - Reads a slice", func(t *testing.T) {
		// Arrange
		loc := domain.ObjectLocation{Bucket: testBucket, Key: "range.bin"}
		content := []byte("0123456789")
		require.NoError(t, a.PutObject(ctx, loc, bytes.NewReader(content), int64(len(content)), ""))

		// Act
		body, err := a.GetObjectRange(ctx, loc, 3, 4)

		// Assert
		require.NoError(t, err)
		defer body.Close()
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "3456", string(data))
	})

	t.Run("Multipart - Upload list and complete", func(t *testing.T) {
		// Arrange
		loc := domain.ObjectLocation{Bucket: testBucket, Key: "multipart/big.bin"}
		first := bytes.Repeat([]byte("a"), config.MinPartSize)
		second := []byte("tail")

		// Act
		uploadID, err := a.InitiateMultipart(ctx, loc, "application/octet-stream")
		require.NoError(t, err)
		etag1, err := a.UploadPart(ctx, loc, uploadID, 1, bytes.NewReader(first), int64(len(first)))
		require.NoError(t, err)
		etag2, err := a.UploadPart(ctx, loc, uploadID, 2, bytes.NewReader(second), int64(len(second)))
		require.NoError(t, err)
		listed, err := a.ListParts(ctx, loc, uploadID)
		require.NoError(t, err)
		err = a.CompleteMultipart(ctx, loc, uploadID, []domain.CompletedPart{
			{PartNumber: 2, ETag: etag2},
			{PartNumber: 1, ETag: etag1},
		})

		// Assert
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, etag1, listed[0].ETag)
		info, err := a.StatObject(ctx, loc)
		require.NoError(t, err)
		assert.Equal(t, int64(len(first)+len(second)), info.Size)
		expected, ok := domain.MultipartETag([]domain.CompletedPart{{PartNumber: 1, ETag: etag1}, {PartNumber: 2, ETag: etag2}})
		require.True(t, ok)
		assert.Equal(t, expected, info.ETag)
	})

	t.Run("AbortMultipart - Session is gone", func(t *testing.T) {
		// Arrange
		loc := domain.ObjectLocation{Bucket: testBucket, Key: "multipart/aborted.bin"}
		uploadID, err := a.InitiateMultipart(ctx, loc, "")
		require.NoError(t, err)

		// Act
		err = a.AbortMultipart(ctx, loc, uploadID)

		// Assert
		require.NoError(t, err)
		_, err = a.ListParts(ctx, loc, uploadID)
		assert.ErrorIs(t, err, domain.ErrUploadNotFound)
	})

	t.Run("PresignGetObject - Url is usable", func(t *testing.T) {
		// Arrange
		loc := domain.ObjectLocation{Bucket: testBucket, Key: "docs/hello.txt"}

		// Act
		url, err := a.PresignGetObject(ctx, loc, 5*time.Minute)

		// Assert
		require.NoError(t, err)
		resp, err := http.Get(url)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("DeleteObject - Idempotent", func(t *testing.T) {
		// Arrange
		loc := domain.ObjectLocation{Bucket: testBucket, Key: "docs/hello.txt"}

		// Act
		err := a.DeleteObject(ctx, loc)
		again := a.DeleteObject(ctx, loc)

		// Assert
		require.NoError(t, err)
		require.NoError(t, again)
		_, err = a.StatObject(ctx, loc)
		assert.ErrorIs(t, err, domain.ErrObjectNotFound)
		assert.NotContains(t, logs.String(), "object deleted")
	})
}
