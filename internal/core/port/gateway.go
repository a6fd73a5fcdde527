package port

import (
	"context"
	"object-gateway/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// GatewayService is an interface to define the object transfer gateway
type GatewayService interface {
	UploadObject(ctx context.Context, req domain.TransferRequest) (*domain.ObjectLocation, error)
	ListObjects(ctx context.Context, bucket string, prefix string, withAccess bool) (*domain.ListingPage, error)
	GetObject(ctx context.Context, loc domain.ObjectLocation) (*domain.Object, error)
	DeleteObject(ctx context.Context, loc domain.ObjectLocation) error
	IssueAccess(ctx context.Context, loc domain.ObjectLocation, ttl time.Duration) (*domain.PresignedAccess, error)
	DownloadObject(ctx context.Context, req domain.DownloadRequest, sink DownloadSink) (*domain.ObjectSummary, error)
	GetTransfer(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error)
}

// AccessIssuer issues presigned urls
type AccessIssuer interface {
	Issue(ctx context.Context, loc domain.ObjectLocation, ttl time.Duration) (*domain.PresignedAccess, error)
	DefaultTTL() time.Duration
}
