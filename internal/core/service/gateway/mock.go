package gateway

import (
	"context"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGatewayService is a mock implementation of GatewayService
type MockGatewayService struct {
	mock.Mock
}

// NewMockGatewayService creates a new MockGatewayService
func NewMockGatewayService() *MockGatewayService {
	return &MockGatewayService{}
}

func (m *MockGatewayService) UploadObject(ctx context.Context, req domain.TransferRequest) (*domain.ObjectLocation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ObjectLocation), args.Error(1)
}

func (m *MockGatewayService) ListObjects(ctx context.Context, bucket string, prefix string, withAccess bool) (*domain.ListingPage, error) {
	args := m.Called(ctx, bucket, prefix, withAccess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ListingPage), args.Error(1)
}

func (m *MockGatewayService) GetObject(ctx context.Context, loc domain.ObjectLocation) (*domain.Object, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Object), args.Error(1)
}

func (m *MockGatewayService) DeleteObject(ctx context.Context, loc domain.ObjectLocation) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *MockGatewayService) IssueAccess(ctx context.Context, loc domain.ObjectLocation, ttl time.Duration) (*domain.PresignedAccess, error) {
	args := m.Called(ctx, loc, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PresignedAccess), args.Error(1)
}

func (m *MockGatewayService) DownloadObject(ctx context.Context, req domain.DownloadRequest, sink port.DownloadSink) (*domain.ObjectSummary, error) {
	args := m.Called(ctx, req, sink)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ObjectSummary), args.Error(1)
}

func (m *MockGatewayService) GetTransfer(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransferRecord), args.Error(1)
}
