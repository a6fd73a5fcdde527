package access_test

import (
	"encoding/json"
	"io"
	"log/slog"
	http2 "net/http"
	"net/http/httptest"
	"object-gateway/internal/adapters/handlers/http/chi"
	"object-gateway/internal/adapters/handlers/http/chi/v1/access"
	"object-gateway/internal/config"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/service/gateway"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIssueAccessV1(t *testing.T) {
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	newRouter := func(service *gateway.MockGatewayService) http2.Handler {
		handler := access.NewAccessHandlerV1(service, discardLogger)
		return chi.NewRouter(discardLogger, nil, config.ServerConfig{}, "", chi.Handlers{Access: handler})
	}

	t.Run("success - duration ttl", func(t *testing.T) {
		// Arrange
		expiresAt := time.Now().Add(15 * time.Minute)
		loc := domain.ObjectLocation{Bucket: "bucket", Key: "reports/a.csv"}
		mockService := gateway.NewMockGatewayService()
		mockService.On("IssueAccess", mock.Anything, loc, 15*time.Minute).
			Return(&domain.PresignedAccess{URL: "https://signed", ExpiresAt: expiresAt}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http2.MethodGet, "/access/a.csv?bucketName=bucket&prefix=reports&ttl=15m", nil)

		// Act
		newRouter(mockService).ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusOK, w.Code)
		var response access.V1IssueAccessResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "https://signed", response.URL)
		assert.WithinDuration(t, expiresAt, response.ExpiresAt, time.Second)
		mockService.AssertExpectations(t)
	})

	t.Run("success - seconds ttl", func(t *testing.T) {
		// Arrange
		mockService := gateway.NewMockGatewayService()
		mockService.On("IssueAccess", mock.Anything, mock.Anything, 90*time.Second).
			Return(&domain.PresignedAccess{URL: "https://signed"}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http2.MethodGet, "/access/a.csv?bucketName=bucket&ttl=90", nil)

		// Act
		newRouter(mockService).ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("success - default ttl", func(t *testing.T) {
		// Arrange
		mockService := gateway.NewMockGatewayService()
		mockService.On("IssueAccess", mock.Anything, mock.Anything, time.Duration(0)).
			Return(&domain.PresignedAccess{URL: "https://signed"}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http2.MethodGet, "/access/a.csv?bucketName=bucket", nil)

		// Act
		newRouter(mockService).ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusOK, w.Code)
	})

	t.Run("error - ttl above max", func(t *testing.T) {
		// Arrange
		mockService := gateway.NewMockGatewayService()
		mockService.On("IssueAccess", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidTTL)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http2.MethodGet, "/access/a.csv?bucketName=bucket&ttl=1000h", nil)

		// Act
		newRouter(mockService).ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusBadRequest, w.Code)
	})

	t.Run("error - unparsable ttl", func(t *testing.T) {
		// Arrange
		mockService := gateway.NewMockGatewayService()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http2.MethodGet, "/access/a.csv?bucketName=bucket&ttl=soon", nil)

		// Act
		newRouter(mockService).ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "IssueAccess", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - object not found", func(t *testing.T) {
		// Arrange
		mockService := gateway.NewMockGatewayService()
		mockService.On("IssueAccess", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrObjectNotFound)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http2.MethodGet, "/access/missing.csv?bucketName=bucket", nil)

		// Act
		newRouter(mockService).ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusNotFound, w.Code)
	})
}
