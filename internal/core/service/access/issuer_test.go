package access_test

import (
	"context"
	"errors"
	"log/slog"
	"object-gateway/internal/adapters/storage"
	"object-gateway/internal/config"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/service/access"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var presignConfig = config.PresignConfig{DefaultTTL: time.Minute, MaxTTL: 7 * 24 * time.Hour}

func TestIssuer_Issue_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := access.NewIssuerWithClock(mockStorage, presignConfig, slog.Default(), func() time.Time { return now })
	loc := domain.ObjectLocation{Bucket: "bucket", Key: "reports/a.csv"}

	mockStorage.On("PresignGetObject", ctx, loc, time.Hour).Return("https://example.test/signed", nil)

	// Act
	result, err := issuer.Issue(ctx, loc, time.Hour)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/signed", result.URL)
	assert.Equal(t, now.Add(time.Hour), result.ExpiresAt)
	mockStorage.AssertExpectations(t)
}

func TestIssuer_Issue_InvalidTTL(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
	}{
		{name: "zero", ttl: 0},
		{name: "negative", ttl: -time.Second},
		{name: "above max", ttl: 7*24*time.Hour + time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mockStorage := storage.NewMockStorage()
			issuer := access.NewIssuer(mockStorage, presignConfig, slog.Default())

			// Act
			result, err := issuer.Issue(context.Background(), domain.ObjectLocation{Bucket: "b", Key: "k"}, tt.ttl)

			// Assert
			assert.ErrorIs(t, err, domain.ErrInvalidTTL)
			assert.Nil(t, result)
			mockStorage.AssertNotCalled(t, "PresignGetObject")
		})
	}
}

func TestIssuer_Issue_MaxTTLAccepted(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	issuer := access.NewIssuer(mockStorage, presignConfig, slog.Default())
	loc := domain.ObjectLocation{Bucket: "bucket", Key: "k"}

	mockStorage.On("PresignGetObject", ctx, loc, presignConfig.MaxTTL).Return("url", nil)

	// Act
	_, err := issuer.Issue(ctx, loc, presignConfig.MaxTTL)

	// Assert
	assert.NoError(t, err)
}

func TestIssuer_Issue_StorageError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	issuer := access.NewIssuer(mockStorage, presignConfig, slog.Default())
	loc := domain.ObjectLocation{Bucket: "bucket", Key: "k"}

	mockStorage.On("PresignGetObject", ctx, loc, time.Minute).Return("", errors.New("signing failed"))

	// Act
	result, err := issuer.Issue(ctx, loc, time.Minute)

	// Assert
	assert.ErrorContains(t, err, "signing failed")
	assert.Nil(t, result)
}

func TestIssuer_DefaultTTL(t *testing.T) {
	issuer := access.NewIssuer(storage.NewMockStorage(), presignConfig, slog.Default())

	assert.Equal(t, time.Minute, issuer.DefaultTTL())
}
