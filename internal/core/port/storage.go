package port

import (
	"context"
	"io"
	"object-gateway/internal/core/domain"
	"time"
)

// ObjectStore is an interface to define object storage interactions.
// Implementations translate provider failures into domain errors:
// ErrBucketNotFound, ErrObjectNotFound, ErrUploadNotFound and, for transient failures, ErrProviderUnavailable.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	ListObjects(ctx context.Context, bucket string, prefix string) ([]domain.ObjectSummary, error)
	StatObject(ctx context.Context, loc domain.ObjectLocation) (*domain.ObjectSummary, error)
	GetObject(ctx context.Context, loc domain.ObjectLocation) (*domain.Object, error)
	GetObjectRange(ctx context.Context, loc domain.ObjectLocation, offset int64, length int64) (io.ReadCloser, error)
	PutObject(ctx context.Context, loc domain.ObjectLocation, body io.Reader, size int64, contentType string) error
	DeleteObject(ctx context.Context, loc domain.ObjectLocation) error
	PresignGetObject(ctx context.Context, loc domain.ObjectLocation, ttl time.Duration) (string, error)

	InitiateMultipart(ctx context.Context, loc domain.ObjectLocation, contentType string) (string, error)
	UploadPart(ctx context.Context, loc domain.ObjectLocation, uploadID string, partNumber int, body io.Reader, size int64) (string, error)
	ListParts(ctx context.Context, loc domain.ObjectLocation, uploadID string) ([]domain.CompletedPart, error)
	CompleteMultipart(ctx context.Context, loc domain.ObjectLocation, uploadID string, parts []domain.CompletedPart) error
	AbortMultipart(ctx context.Context, loc domain.ObjectLocation, uploadID string) error
}

// DownloadSink is the caller supplied destination of a download.
// Parts are written at their offset and the sink is truncated when the transfer fails.
type DownloadSink interface {
	io.WriterAt
	Truncate(size int64) error
}
