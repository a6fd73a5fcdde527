package s3

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

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// Adapter is an adapter for AWS S3 and S3 compatible endpoints
type Adapter struct {
	client    *s3.Client
	presigner *s3.PresignClient
	logger    *slog.Logger
}

var _ port.ObjectStore = (*Adapter)(nil)

// NewAdapter returns Adapter.
// Static credentials are used when both keys are set, otherwise the default AWS chain applies.
func NewAdapter(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (*Adapter, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return NewAdapterFromConfig(awsCfg, cfg, logger), nil
}

// NewAdapterFromConfig returns Adapter built on an already loaded aws config
func NewAdapterFromConfig(awsCfg aws.Config, cfg config.S3Config, logger *slog.Logger) *Adapter {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Adapter{client: client, presigner: s3.NewPresignClient(client), logger: logger}
}

// BucketExists checks if a bucket exists
func (a *Adapter) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		translated := translate("failed to check if bucket exists", err)
		if errors.Is(translated, domain.ErrBucketNotFound) || errors.Is(translated, domain.ErrObjectNotFound) {
			return false, nil
		}
		return false, translated
	}
	return true, nil
}

// ListObjects lists every object under prefix
func (a *Adapter) ListObjects(ctx context.Context, bucket string, prefix string) ([]domain.ObjectSummary, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	objects := make([]domain.ObjectSummary, 0)
	paginator := s3.NewListObjectsV2Paginator(a.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translate("failed to list objects", err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, domain.ObjectSummary{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         strings.Trim(aws.ToString(obj.ETag), "\""),
			})
		}
	}
	return objects, nil
}

// StatObject retrieves obj info
func (a *Adapter) StatObject(ctx context.Context, loc domain.ObjectLocation) (*domain.ObjectSummary, error) {
	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, translate("failed to get object info", err)
	}
	return &domain.ObjectSummary{
		Key:          loc.Key,
		Size:         aws.ToInt64(out.ContentLength),
		LastModified: aws.ToTime(out.LastModified),
		ContentType:  aws.ToString(out.ContentType),
		ETag:         strings.Trim(aws.ToString(out.ETag), "\""),
	}, nil
}

// GetObject retrieves an obj
func (a *Adapter) GetObject(ctx context.Context, loc domain.ObjectLocation) (*domain.Object, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, translate("failed to get object", err)
	}
	return &domain.Object{
		Body:        out.Body,
		Key:         loc.Key,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
	}, nil
}

// GetObjectRange reads length bytes starting at offset
func (a *Adapter) GetObjectRange(ctx context.Context, loc domain.ObjectLocation, offset int64, length int64) (io.ReadCloser, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)),
	})
	if err != nil {
		return nil, translate("failed to get partial object", err)
	}
	return out.Body, nil
}

// PutObject uploads body in a single request
func (a *Adapter) PutObject(ctx context.Context, loc domain.ObjectLocation, body io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(loc.Bucket),
		Key:           aws.String(loc.Key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := a.client.PutObject(ctx, input); err != nil {
		return translate("failed to put object", err)
	}
	return nil
}

// DeleteObject deletes an object from storage
func (a *Adapter) DeleteObject(ctx context.Context, loc domain.ObjectLocation) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return translate("failed to delete object", err)
	}
	return nil
}

// PresignGetObject generates a presigned URL for downloading an object
func (a *Adapter) PresignGetObject(ctx context.Context, loc domain.ObjectLocation, ttl time.Duration) (string, error) {
	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", translate("failed to generate presigned download URL", err)
	}
	return req.URL, nil
}

// InitiateMultipart inits a multi part upload
func (a *Adapter) InitiateMultipart(ctx context.Context, loc domain.ObjectLocation, contentType string) (string, error) {
	input := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	out, err := a.client.CreateMultipartUpload(ctx, input)
	if err != nil {
		return "", translate("failed to init multipart upload", err)
	}
	return aws.ToString(out.UploadId), nil
}

// UploadPart uploads one part of a multipart session and returns its etag
func (a *Adapter) UploadPart(ctx context.Context, loc domain.ObjectLocation, uploadID string, partNumber int, body io.Reader, size int64) (string, error) {
	out, err := a.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:        aws.String(loc.Bucket),
		Key:           aws.String(loc.Key),
		UploadId:      aws.String(uploadID),
		PartNumber:    aws.Int32(int32(partNumber)),
		Body:          body,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", translate(fmt.Sprintf("failed to upload part %d", partNumber), err)
	}
	return strings.Trim(aws.ToString(out.ETag), "\""), nil
}

// ListParts lists every uploaded part of a session
func (a *Adapter) ListParts(ctx context.Context, loc domain.ObjectLocation, uploadID string) ([]domain.CompletedPart, error) {
	parts := make([]domain.CompletedPart, 0)
	paginator := s3.NewListPartsPaginator(a.client, &s3.ListPartsInput{
		Bucket:   aws.String(loc.Bucket),
		Key:      aws.String(loc.Key),
		UploadId: aws.String(uploadID),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translate("failed to list parts", err)
		}
		for _, part := range page.Parts {
			parts = append(parts, domain.CompletedPart{
				PartNumber: int(aws.ToInt32(part.PartNumber)),
				ETag:       strings.Trim(aws.ToString(part.ETag), "\""),
				Size:       aws.ToInt64(part.Size),
			})
		}
	}
	return parts, nil
}

// CompleteMultipart assembles the uploaded parts into the final object
func (a *Adapter) CompleteMultipart(ctx context.Context, loc domain.ObjectLocation, uploadID string, parts []domain.CompletedPart) error {
	sorted := make([]domain.CompletedPart, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PartNumber < sorted[j].PartNumber
	})

	completed := make([]types.CompletedPart, 0, len(sorted))
	for _, part := range sorted {
		completed = append(completed, types.CompletedPart{
			ETag:       aws.String(part.ETag),
			PartNumber: aws.Int32(int32(part.PartNumber)),
		})
	}

	_, err := a.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(loc.Bucket),
		Key:             aws.String(loc.Key),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return translate("failed to complete multipart upload", err)
	}
	return nil
}

// AbortMultipart drops a multipart session and its parts
func (a *Adapter) AbortMultipart(ctx context.Context, loc domain.ObjectLocation, uploadID string) error {
	_, err := a.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(loc.Bucket),
		Key:      aws.String(loc.Key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return translate("failed to abort multipart upload", err)
	}

	a.logger.Info("multipart upload aborted",
		slog.String("key", loc.Key),
		slog.String("uploadID", uploadID))

	return nil
}

// translate maps an aws sdk failure onto the domain errors
func translate(msg string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return fmt.Errorf("%s: %w: %w", msg, domain.ErrBucketNotFound, err)
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%s: %w: %w", msg, domain.ErrObjectNotFound, err)
		case "NoSuchUpload":
			return fmt.Errorf("%s: %w: %w", msg, domain.ErrUploadNotFound, err)
		case "SlowDown", "RequestTimeout", "InternalError", "ServiceUnavailable", "Throttling":
			return fmt.Errorf("%s: %w: %w", msg, domain.ErrProviderUnavailable, err)
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() >= http.StatusInternalServerError {
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrProviderUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrProviderUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
