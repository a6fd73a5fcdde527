package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"object-gateway/internal/config"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/port"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// maxPartsPerPage is the listing limit of the provider
const maxPartsPerPage = 1000

// Adapter is an adapter for minio
type Adapter struct {
	client *minio.Client
	core   *minio.Core
	logger *slog.Logger
}

var _ port.ObjectStore = (*Adapter)(nil)

// NewAdapter returns Adapter
func NewAdapter(cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Adapter{client: client, core: &minio.Core{Client: client}, logger: logger}, nil
}

// BucketExists checks if a bucket exists
func (a *Adapter) BucketExists(ctx context.Context, bucket string) (bool, error) {
	exists, err := a.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, translate("failed to check if bucket exists", err)
	}
	return exists, nil
}

// ListObjects lists every object under prefix
func (a *Adapter) ListObjects(ctx context.Context, bucket string, prefix string) ([]domain.ObjectSummary, error) {
	objects := make([]domain.ObjectSummary, 0)
	for info := range a.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, translate("failed to list objects", info.Err)
		}
		objects = append(objects, toSummary(info))
	}
	return objects, nil
}

// StatObject retrieves obj info
func (a *Adapter) StatObject(ctx context.Context, loc domain.ObjectLocation) (*domain.ObjectSummary, error) {
	info, err := a.client.StatObject(ctx, loc.Bucket, loc.Key, minio.StatObjectOptions{})
	if err != nil {
		return nil, translate("failed to get object info", err)
	}
	summary := toSummary(info)
	return &summary, nil
}

// GetObject retrieves an obj.
// The object is stat'ed first since minio only reports a missing key on the first read.
func (a *Adapter) GetObject(ctx context.Context, loc domain.ObjectLocation) (*domain.Object, error) {
	info, err := a.client.StatObject(ctx, loc.Bucket, loc.Key, minio.StatObjectOptions{})
	if err != nil {
		return nil, translate("failed to get object info", err)
	}

	object, err := a.client.GetObject(ctx, loc.Bucket, loc.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate("failed to get object", err)
	}

	return &domain.Object{
		Body:        object,
		Key:         info.Key,
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

// GetObjectRange reads length bytes starting at offset
func (a *Adapter) GetObjectRange(ctx context.Context, loc domain.ObjectLocation, offset int64, length int64) (io.ReadCloser, error) {
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(offset, offset+length-1); err != nil {
		return nil, fmt.Errorf("failed to set range: %w", err)
	}

	object, err := a.client.GetObject(ctx, loc.Bucket, loc.Key, opts)
	if err != nil {
		return nil, translate("failed to get partial object", err)
	}
	if _, err := object.Stat(); err != nil {
		_ = object.Close()
		return nil, translate("failed to get partial object", err)
	}
	return object, nil
}

// PutObject uploads body in a single request
func (a *Adapter) PutObject(ctx context.Context, loc domain.ObjectLocation, body io.Reader, size int64, contentType string) error {
	_, err := a.client.PutObject(ctx, loc.Bucket, loc.Key, body, size, minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: true,
	})
	if err != nil {
		return translate("failed to put object", err)
	}
	return nil
}

// DeleteObject deletes an object from storage
func (a *Adapter) DeleteObject(ctx context.Context, loc domain.ObjectLocation) error {
	err := a.client.RemoveObject(ctx, loc.Bucket, loc.Key, minio.RemoveObjectOptions{})
	if err != nil {
		return translate("failed to delete object", err)
	}
	return nil
}

// PresignGetObject generates a presigned URL for downloading an object
func (a *Adapter) PresignGetObject(ctx context.Context, loc domain.ObjectLocation, ttl time.Duration) (string, error) {
	presignedURL, err := a.client.PresignedGetObject(ctx, loc.Bucket, loc.Key, ttl, nil)
	if err != nil {
		return "", translate("failed to generate presigned download URL", err)
	}
	return presignedURL.String(), nil
}

// InitiateMultipart inits a multi part upload
func (a *Adapter) InitiateMultipart(ctx context.Context, loc domain.ObjectLocation, contentType string) (string, error) {
	uploadID, err := a.core.NewMultipartUpload(ctx, loc.Bucket, loc.Key, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", translate("failed to init multipart upload", err)
	}
	return uploadID, nil
}

// UploadPart uploads one part of a multipart session and returns its etag
func (a *Adapter) UploadPart(ctx context.Context, loc domain.ObjectLocation, uploadID string, partNumber int, body io.Reader, size int64) (string, error) {
	part, err := a.core.PutObjectPart(ctx, loc.Bucket, loc.Key, uploadID, partNumber, body, size, minio.PutObjectPartOptions{})
	if err != nil {
		return "", translate(fmt.Sprintf("failed to upload part %d", partNumber), err)
	}
	return strings.Trim(part.ETag, "\""), nil
}

// ListParts lists every uploaded part of a session
func (a *Adapter) ListParts(ctx context.Context, loc domain.ObjectLocation, uploadID string) ([]domain.CompletedPart, error) {
	parts := make([]domain.CompletedPart, 0)
	marker := 0
	for {
		result, err := a.core.ListObjectParts(ctx, loc.Bucket, loc.Key, uploadID, marker, maxPartsPerPage)
		if err != nil {
			return nil, translate("failed to list parts", err)
		}
		for _, part := range result.ObjectParts {
			parts = append(parts, domain.CompletedPart{
				PartNumber: part.PartNumber,
				ETag:       strings.Trim(part.ETag, "\""),
				Size:       part.Size,
			})
		}
		if !result.IsTruncated {
			return parts, nil
		}
		marker = result.NextPartNumberMarker
	}
}

// CompleteMultipart marks the minio multipart as complete
func (a *Adapter) CompleteMultipart(ctx context.Context, loc domain.ObjectLocation, uploadID string, parts []domain.CompletedPart) error {
	sorted := make([]domain.CompletedPart, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PartNumber < sorted[j].PartNumber
	})

	completeParts := make([]minio.CompletePart, 0, len(sorted))
	for _, part := range sorted {
		completeParts = append(completeParts, minio.CompletePart{
			PartNumber: part.PartNumber,
			ETag:       strings.Trim(part.ETag, "\""),
		})
	}

	_, err := a.core.CompleteMultipartUpload(ctx, loc.Bucket, loc.Key, uploadID, completeParts, minio.PutObjectOptions{})
	if err != nil {
		return translate("failed to complete multipart upload", err)
	}
	return nil
}

// AbortMultipart drops a multipart session and its parts
func (a *Adapter) AbortMultipart(ctx context.Context, loc domain.ObjectLocation, uploadID string) error {
	err := a.core.AbortMultipartUpload(ctx, loc.Bucket, loc.Key, uploadID)
	if err != nil {
		return translate("failed to abort multipart upload", err)
	}

	a.logger.Info("multipart upload aborted",
		slog.String("key", loc.Key),
		slog.String("uploadID", uploadID))

	return nil
}

func toSummary(info minio.ObjectInfo) domain.ObjectSummary {
	return domain.ObjectSummary{
		Key:          info.Key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ContentType:  info.ContentType,
		ETag:         strings.Trim(info.ETag, "\""),
	}
}

// translate maps a minio failure onto the domain errors
func translate(msg string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, err)
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchBucket":
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrBucketNotFound, err)
	case "NoSuchKey":
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrObjectNotFound, err)
	case "NoSuchUpload":
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrUploadNotFound, err)
	case "SlowDown", "RequestTimeout", "InternalError", "ServiceUnavailable":
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrProviderUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound && resp.Code == "" {
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrObjectNotFound, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrProviderUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrProviderUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
