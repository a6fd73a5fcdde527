package file_test

import (
	http2 "net/http"
	"net/http/httptest"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/service/gateway"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDeleteFileV1(t *testing.T) {
	t.Run("success - no content", func(t *testing.T) {
		// Arrange
		loc := domain.ObjectLocation{Bucket: "bucket", Key: "reports/a.csv"}
		mockService := gateway.NewMockGatewayService()
		mockService.On("DeleteObject", mock.Anything, loc).Return(nil)

		h := newRouter(mockService)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http2.MethodDelete, "/files/reports/a.csv?bucketName=bucket", nil)

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusNoContent, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("error - bucket not found", func(t *testing.T) {
		// Arrange
		mockService := gateway.NewMockGatewayService()
		mockService.On("DeleteObject", mock.Anything, mock.Anything).Return(domain.ErrBucketNotFound)

		h := newRouter(mockService)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http2.MethodDelete, "/files/a.csv?bucketName=missing", nil)

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusNotFound, w.Code)
	})
}
