package download_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	http2 "net/http"
	"net/http/httptest"
	"object-gateway/internal/adapters/handlers/http/chi"
	"object-gateway/internal/adapters/handlers/http/chi/v1/download"
	"object-gateway/internal/config"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/port"
	"object-gateway/internal/core/service/gateway"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDownloadObjectV1(t *testing.T) {
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	newRouter := func(service *gateway.MockGatewayService, dir string) http2.Handler {
		handler := download.NewDownloadHandlerV1(service, dir, discardLogger)
		return chi.NewRouter(discardLogger, nil, config.ServerConfig{}, "", chi.Handlers{Download: handler})
	}
	post := func(t *testing.T, body download.V1DownloadRequest) *http2.Request {
		t.Helper()
		data, err := json.Marshal(body)
		require.NoError(t, err)
		return httptest.NewRequest(http2.MethodPost, "/downloads", bytes.NewReader(data))
	}

	t.Run("success - file written at its key path", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		mockService := gateway.NewMockGatewayService()
		mockService.On("DownloadObject", mock.Anything, domain.DownloadRequest{Bucket: "bucket", Key: "exports/2.csv"}, mock.Anything).
			Run(func(args mock.Arguments) {
				sink := args.Get(2).(port.DownloadSink)
				_, err := sink.WriteAt([]byte("id,name"), 0)
				require.NoError(t, err)
			}).
			Return(&domain.ObjectSummary{Key: "exports/2.csv", Size: 7}, nil)

		w := httptest.NewRecorder()

		// Act
		newRouter(mockService, dir).ServeHTTP(w, post(t, download.V1DownloadRequest{BucketName: "bucket", Key: "exports/2.csv"}))

		// Assert
		assert.Equal(t, http2.StatusOK, w.Code)
		var response download.V1DownloadResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, filepath.Join(dir, "exports", "2.csv"), response.Path)
		data, err := os.ReadFile(response.Path)
		require.NoError(t, err)
		assert.Equal(t, "id,name", string(data))
		mockService.AssertExpectations(t)
	})

	t.Run("success - latest under prefix", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		mockService := gateway.NewMockGatewayService()
		mockService.On("DownloadObject", mock.Anything, domain.DownloadRequest{Bucket: "bucket", Prefix: "exports/", Policy: domain.SelectionPolicyLatest}, mock.Anything).
			Return(&domain.ObjectSummary{Key: "exports/9.csv", Size: 0}, nil)

		w := httptest.NewRecorder()

		// Act
		newRouter(mockService, dir).ServeHTTP(w, post(t, download.V1DownloadRequest{BucketName: "bucket", Prefix: "exports/", Policy: "latest"}))

		// Assert
		assert.Equal(t, http2.StatusOK, w.Code)
		assert.FileExists(t, filepath.Join(dir, "exports", "9.csv"))
	})

	t.Run("success - same base name under different prefixes", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		mockService := gateway.NewMockGatewayService()
		for _, key := range []string{"a/x.csv", "b/x.csv"} {
			mockService.On("DownloadObject", mock.Anything, domain.DownloadRequest{Bucket: "bucket", Key: key}, mock.Anything).
				Run(func(args mock.Arguments) {
					sink := args.Get(2).(port.DownloadSink)
					_, err := sink.WriteAt([]byte(key), 0)
					require.NoError(t, err)
				}).
				Return(&domain.ObjectSummary{Key: key, Size: int64(len(key))}, nil)
		}
		router := newRouter(mockService, dir)

		// Act
		first := httptest.NewRecorder()
		router.ServeHTTP(first, post(t, download.V1DownloadRequest{BucketName: "bucket", Key: "a/x.csv"}))
		second := httptest.NewRecorder()
		router.ServeHTTP(second, post(t, download.V1DownloadRequest{BucketName: "bucket", Key: "b/x.csv"}))

		// Assert
		require.Equal(t, http2.StatusOK, first.Code)
		require.Equal(t, http2.StatusOK, second.Code)
		a, err := os.ReadFile(filepath.Join(dir, "a", "x.csv"))
		require.NoError(t, err)
		assert.Equal(t, "a/x.csv", string(a))
		b, err := os.ReadFile(filepath.Join(dir, "b", "x.csv"))
		require.NoError(t, err)
		assert.Equal(t, "b/x.csv", string(b))
	})

	t.Run("error - key escaping the download directory", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		mockService := gateway.NewMockGatewayService()
		mockService.On("DownloadObject", mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.ObjectSummary{Key: "../escape.csv", Size: 0}, nil)

		w := httptest.NewRecorder()

		// Act
		newRouter(mockService, dir).ServeHTTP(w, post(t, download.V1DownloadRequest{BucketName: "bucket", Key: "../escape.csv"}))

		// Assert
		assert.Equal(t, http2.StatusBadRequest, w.Code)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.NoFileExists(t, filepath.Join(filepath.Dir(dir), "escape.csv"))
	})

	t.Run("error - partial file removed", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		mockService := gateway.NewMockGatewayService()
		mockService.On("DownloadObject", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, domain.ErrProviderUnavailable)

		w := httptest.NewRecorder()

		// Act
		newRouter(mockService, dir).ServeHTTP(w, post(t, download.V1DownloadRequest{BucketName: "bucket", Key: "a.bin"}))

		// Assert
		assert.Equal(t, http2.StatusServiceUnavailable, w.Code)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("error - invalid policy", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		mockService := gateway.NewMockGatewayService()
		mockService.On("DownloadObject", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, domain.ErrInvalidPolicy)

		w := httptest.NewRecorder()

		// Act
		newRouter(mockService, dir).ServeHTTP(w, post(t, download.V1DownloadRequest{BucketName: "bucket", Prefix: "a/", Policy: "oldest"}))

		// Assert
		assert.Equal(t, http2.StatusBadRequest, w.Code)
	})

	t.Run("error - key or prefix required", func(t *testing.T) {
		// Arrange
		mockService := gateway.NewMockGatewayService()
		w := httptest.NewRecorder()

		// Act
		newRouter(mockService, t.TempDir()).ServeHTTP(w, post(t, download.V1DownloadRequest{BucketName: "bucket"}))

		// Assert
		assert.Equal(t, http2.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "DownloadObject", mock.Anything, mock.Anything, mock.Anything)
	})
}
