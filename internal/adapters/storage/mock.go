package storage

import (
	"context"
	"io"
	"object-gateway/internal/core/domain"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListObjects(ctx context.Context, bucket string, prefix string) ([]domain.ObjectSummary, error) {
	args := m.Called(ctx, bucket, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ObjectSummary), args.Error(1)
}

func (m *MockStorage) StatObject(ctx context.Context, loc domain.ObjectLocation) (*domain.ObjectSummary, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ObjectSummary), args.Error(1)
}

func (m *MockStorage) GetObject(ctx context.Context, loc domain.ObjectLocation) (*domain.Object, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Object), args.Error(1)
}

func (m *MockStorage) GetObjectRange(ctx context.Context, loc domain.ObjectLocation, offset int64, length int64) (io.ReadCloser, error) {
	args := m.Called(ctx, loc, offset, length)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) PutObject(ctx context.Context, loc domain.ObjectLocation, body io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, loc, body, size, contentType)
	return args.Error(0)
}

func (m *MockStorage) DeleteObject(ctx context.Context, loc domain.ObjectLocation) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *MockStorage) PresignGetObject(ctx context.Context, loc domain.ObjectLocation, ttl time.Duration) (string, error) {
	args := m.Called(ctx, loc, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) InitiateMultipart(ctx context.Context, loc domain.ObjectLocation, contentType string) (string, error) {
	args := m.Called(ctx, loc, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) UploadPart(ctx context.Context, loc domain.ObjectLocation, uploadID string, partNumber int, body io.Reader, size int64) (string, error) {
	args := m.Called(ctx, loc, uploadID, partNumber, body, size)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) ListParts(ctx context.Context, loc domain.ObjectLocation, uploadID string) ([]domain.CompletedPart, error) {
	args := m.Called(ctx, loc, uploadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompletedPart), args.Error(1)
}

func (m *MockStorage) CompleteMultipart(ctx context.Context, loc domain.ObjectLocation, uploadID string, parts []domain.CompletedPart) error {
	args := m.Called(ctx, loc, uploadID, parts)
	return args.Error(0)
}

func (m *MockStorage) AbortMultipart(ctx context.Context, loc domain.ObjectLocation, uploadID string) error {
	args := m.Called(ctx, loc, uploadID)
	return args.Error(0)
}
