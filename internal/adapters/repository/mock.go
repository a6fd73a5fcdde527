package repository

import (
	"context"
	"object-gateway/internal/core/domain"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTransferRepository struct {
	mock.Mock
}

func NewMockTransferRepository() *MockTransferRepository {
	return &MockTransferRepository{}
}

func (m *MockTransferRepository) Create(ctx context.Context, record domain.TransferRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransferRecord), args.Error(1)
}

func (m *MockTransferRepository) UpdateState(ctx context.Context, id uuid.UUID, state domain.TransferState, transferredBytes int64, errMsg string) error {
	args := m.Called(ctx, id, state, transferredBytes, errMsg)
	return args.Error(0)
}

func (m *MockTransferRepository) UpdateProviderUploadID(ctx context.Context, id uuid.UUID, uploadID string) error {
	args := m.Called(ctx, id, uploadID)
	return args.Error(0)
}

func (m *MockTransferRepository) UpdateProgress(ctx context.Context, id uuid.UUID, transferredBytes int64) error {
	args := m.Called(ctx, id, transferredBytes)
	return args.Error(0)
}

func (m *MockTransferRepository) FindStale(ctx context.Context, updatedBefore time.Time) ([]domain.TransferRecord, error) {
	args := m.Called(ctx, updatedBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransferRecord), args.Error(1)
}
