package port

import (
	"context"
	"object-gateway/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// TransferRepository is an interface to define the transfer journal interactions
type TransferRepository interface {
	Create(ctx context.Context, record domain.TransferRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error)
	UpdateState(ctx context.Context, id uuid.UUID, state domain.TransferState, transferredBytes int64, errMsg string) error
	UpdateProviderUploadID(ctx context.Context, id uuid.UUID, uploadID string) error
	UpdateProgress(ctx context.Context, id uuid.UUID, transferredBytes int64) error
	FindStale(ctx context.Context, updatedBefore time.Time) ([]domain.TransferRecord, error)
}

// EventPublisher is an interface to define a transfer event publisher (nats, kafka, ...)
type EventPublisher interface {
	Publish(ctx context.Context, event domain.TransferEvent) error
	Close() error
}

// TransferMetrics collects transfer measurements
type TransferMetrics interface {
	PartCompleted(direction domain.TransferDirection, bytes int64)
	PartRetried(direction domain.TransferDirection)
	TransferFinished(direction domain.TransferDirection, state domain.TransferState, elapsed time.Duration)
}
