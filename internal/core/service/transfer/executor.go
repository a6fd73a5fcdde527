package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"object-gateway/internal/config"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/port"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Executor moves bytes between a caller and the object store following a TransferPlan
type Executor struct {
	store   port.ObjectStore
	cfg     config.TransferConfig
	metrics port.TransferMetrics
	logger  *slog.Logger
	buffers *bufferPool
}

// NewExecutor returns an Executor
func NewExecutor(store port.ObjectStore, cfg config.TransferConfig, metrics port.TransferMetrics, logger *slog.Logger) *Executor {
	return &Executor{
		store:   store,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		buffers: newBufferPool(max(cfg.PartSize, config.MinPartSize)),
	}
}

// UploadJob is a single upload driven by the Executor
type UploadJob struct {
	Location    domain.ObjectLocation
	Plan        domain.TransferPlan
	Payload     io.Reader
	ContentType string
	// Progress is optional. It is closed when the upload ends.
	Progress *Progress
	// OnSession is called once the provider multipart session exists
	OnSession func(uploadID string)
}

// DownloadJob is a single download driven by the Executor
type DownloadJob struct {
	Location domain.ObjectLocation
	Plan     domain.TransferPlan
	Sink     port.DownloadSink
	Progress *Progress
}

// Result is the terminal outcome of a transfer. It is returned with the error on failure.
type Result struct {
	State            domain.TransferState
	TransferredBytes int64
	UploadID         string
}

// Upload sends job.Payload to the store, in parts when the plan requires it.
// On failure the multipart session is aborted so nothing appears at the target key.
func (e *Executor) Upload(ctx context.Context, job UploadJob) (*Result, error) {
	start := time.Now()
	progress := job.Progress
	if progress == nil {
		progress = NewProgress(job.Plan.TotalSize)
	}
	defer progress.Close()

	var (
		result *Result
		err    error
	)
	if job.Plan.IsMultipart() {
		result, err = e.uploadMultipart(ctx, job, progress)
	} else {
		result, err = e.uploadSingle(ctx, job, progress)
	}

	result.TransferredBytes = progress.Snapshot().TransferredBytes
	e.metrics.TransferFinished(domain.TransferDirectionUpload, result.State, time.Since(start))
	return result, err
}

func (e *Executor) uploadSingle(ctx context.Context, job UploadJob, progress *Progress) (*Result, error) {
	buf := e.buffers.get(job.Plan.TotalSize)
	defer e.buffers.put(buf)

	if err := readPart(job.Payload, buf); err != nil {
		return e.failed(ctx, err)
	}
	if err := ensureDrained(job.Payload); err != nil {
		return e.failed(ctx, err)
	}

	err := e.retry(ctx, func(ctx context.Context, _ int) error {
		return e.store.PutObject(ctx, job.Location, bytes.NewReader(buf), job.Plan.TotalSize, job.ContentType)
	}, e.onRetry(domain.TransferDirectionUpload))
	if err != nil {
		return e.failed(ctx, err)
	}

	progress.Add(job.Plan.TotalSize)
	e.metrics.PartCompleted(domain.TransferDirectionUpload, job.Plan.TotalSize)
	return &Result{State: domain.TransferStateCompleted}, nil
}

func (e *Executor) uploadMultipart(ctx context.Context, job UploadJob, progress *Progress) (*Result, error) {
	started := time.Now()
	var uploadID string
	err := e.retry(ctx, func(ctx context.Context, _ int) error {
		id, err := e.store.InitiateMultipart(ctx, job.Location, job.ContentType)
		uploadID = id
		return err
	}, e.onRetry(domain.TransferDirectionUpload))
	if err != nil {
		return e.failed(ctx, fmt.Errorf("failed to initiate multipart upload: %w", err))
	}

	e.logger.Info("multipart upload started",
		slog.String("location", job.Location.String()),
		slog.String("uploadID", uploadID),
		slog.Int("parts", job.Plan.PartCount),
		slog.Int("concurrency", job.Plan.Concurrency))

	if job.OnSession != nil {
		job.OnSession(uploadID)
	}

	completed := make([]domain.CompletedPart, job.Plan.PartCount)
	var failed atomic.Bool
	var g errgroup.Group
	g.SetLimit(job.Plan.Concurrency)

	var readErr error
	for _, part := range job.Plan.Parts() {
		if failed.Load() || ctx.Err() != nil {
			break
		}

		buf := e.buffers.get(part.Size)
		if err := readPart(job.Payload, buf); err != nil {
			e.buffers.put(buf)
			readErr = fmt.Errorf("part %d: %w", part.Number, err)
			break
		}

		g.Go(func() error {
			defer e.buffers.put(buf)
			if failed.Load() || ctx.Err() != nil {
				return nil
			}

			etag, err := e.uploadPart(ctx, job.Location, uploadID, part, buf)
			if err != nil {
				failed.Store(true)
				e.logger.Warn("part upload failed",
					slog.String("uploadID", uploadID),
					slog.Int("part", part.Number),
					slog.Any("err", err))
				return fmt.Errorf("part %d: %w", part.Number, err)
			}

			completed[part.Number-1] = domain.CompletedPart{PartNumber: part.Number, ETag: etag, Size: part.Size}
			progress.Add(part.Size)
			e.metrics.PartCompleted(domain.TransferDirectionUpload, part.Size)
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		err = readErr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		err = ensureDrained(job.Payload)
	}
	if err == nil {
		err = e.finalize(ctx, job, uploadID, started, completed)
	}
	if err != nil {
		e.abortSession(ctx, job.Location, uploadID)
		result, err := e.failed(ctx, err)
		result.UploadID = uploadID
		return result, err
	}

	e.logger.Info("multipart upload completed",
		slog.String("location", job.Location.String()),
		slog.String("uploadID", uploadID))

	return &Result{State: domain.TransferStateCompleted, UploadID: uploadID}, nil
}

func (e *Executor) uploadPart(ctx context.Context, loc domain.ObjectLocation, uploadID string, part domain.PartRange, buf []byte) (string, error) {
	var etag string
	err := e.retry(ctx, func(ctx context.Context, _ int) error {
		tag, err := e.store.UploadPart(ctx, loc, uploadID, part.Number, bytes.NewReader(buf), part.Size)
		etag = tag
		return err
	}, e.onRetry(domain.TransferDirectionUpload))
	return etag, err
}

// finalize commits the parts. A retried attempt first checks whether the
// interrupted call went through, so the object is never assembled twice.
func (e *Executor) finalize(ctx context.Context, job UploadJob, uploadID string, started time.Time, parts []domain.CompletedPart) error {
	return e.retry(ctx, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			done, err := e.finalizedMeanwhile(ctx, job, uploadID, started, parts)
			if err != nil || done {
				return err
			}
		}

		err := e.store.CompleteMultipart(ctx, job.Location, uploadID, parts)
		if err == nil || retryable(err) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrFinalizeConflict, err)
	}, e.onRetry(domain.TransferDirectionUpload))
}

// finalizedMeanwhile reports whether the session was committed by an earlier attempt.
// A vanished session only counts as committed when the object at the key was assembled
// from our parts: same multipart ETag, or when the store hides part md5s, same size and
// written after the session started.
func (e *Executor) finalizedMeanwhile(ctx context.Context, job UploadJob, uploadID string, started time.Time, parts []domain.CompletedPart) (bool, error) {
	_, err := e.store.ListParts(ctx, job.Location, uploadID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUploadNotFound) {
		return false, err
	}

	info, err := e.store.StatObject(ctx, job.Location)
	if err != nil {
		if retryable(err) {
			return false, err
		}
		return false, fmt.Errorf("%w: session %s vanished: %w", domain.ErrFinalizeConflict, uploadID, err)
	}

	if expected, ok := domain.MultipartETag(parts); ok && info.ETag != "" {
		if info.ETag != expected {
			return false, fmt.Errorf("%w: session %s vanished and object has etag %s, want %s", domain.ErrFinalizeConflict, uploadID, info.ETag, expected)
		}
		return true, nil
	}

	if info.Size != job.Plan.TotalSize {
		return false, fmt.Errorf("%w: session %s vanished and object holds %d bytes", domain.ErrFinalizeConflict, uploadID, info.Size)
	}
	if info.LastModified.Before(started.Truncate(time.Second)) {
		return false, fmt.Errorf("%w: session %s vanished and object predates it", domain.ErrFinalizeConflict, uploadID)
	}
	return true, nil
}

// abortSession releases the provider session. It runs even when ctx is cancelled.
func (e *Executor) abortSession(ctx context.Context, loc domain.ObjectLocation, uploadID string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cleanupTimeout())
	defer cancel()

	err := e.store.AbortMultipart(cleanupCtx, loc, uploadID)
	if err != nil && !errors.Is(err, domain.ErrUploadNotFound) {
		e.logger.Error("failed to abort multipart upload",
			slog.String("location", loc.String()),
			slog.String("uploadID", uploadID),
			slog.Any("err", err))
		return
	}
	e.logger.Info("multipart upload aborted",
		slog.String("location", loc.String()),
		slog.String("uploadID", uploadID))
}

// Download writes the object at job.Location into job.Sink, one ranged read per part.
// On failure the sink is truncated so no partial content is left behind.
func (e *Executor) Download(ctx context.Context, job DownloadJob) (*Result, error) {
	start := time.Now()
	progress := job.Progress
	if progress == nil {
		progress = NewProgress(job.Plan.TotalSize)
	}
	defer progress.Close()

	var failed atomic.Bool
	var g errgroup.Group
	g.SetLimit(max(job.Plan.Concurrency, 1))

	for _, part := range job.Plan.Parts() {
		if failed.Load() || ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if failed.Load() || ctx.Err() != nil {
				return nil
			}
			if err := e.downloadPart(ctx, job, part); err != nil {
				failed.Store(true)
				e.logger.Warn("part download failed",
					slog.String("location", job.Location.String()),
					slog.Int("part", part.Number),
					slog.Any("err", err))
				return fmt.Errorf("part %d: %w", part.Number, err)
			}

			progress.Add(part.Size)
			e.metrics.PartCompleted(domain.TransferDirectionDownload, part.Size)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	var result *Result
	if err != nil {
		if truncErr := job.Sink.Truncate(0); truncErr != nil {
			e.logger.Error("failed to truncate partial download",
				slog.String("location", job.Location.String()),
				slog.Any("err", truncErr))
		}
		result, err = e.failed(ctx, err)
	} else {
		result = &Result{State: domain.TransferStateCompleted}
	}

	result.TransferredBytes = progress.Snapshot().TransferredBytes
	e.metrics.TransferFinished(domain.TransferDirectionDownload, result.State, time.Since(start))
	return result, err
}

func (e *Executor) downloadPart(ctx context.Context, job DownloadJob, part domain.PartRange) error {
	buf := e.buffers.get(part.Size)
	defer e.buffers.put(buf)

	err := e.retry(ctx, func(ctx context.Context, _ int) error {
		body, err := e.store.GetObjectRange(ctx, job.Location, part.Offset, part.Size)
		if err != nil {
			return err
		}
		defer body.Close()

		if _, err := io.ReadFull(body, buf); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: short read of part %d: %w", domain.ErrProviderUnavailable, part.Number, err)
		}
		return nil
	}, e.onRetry(domain.TransferDirectionDownload))
	if err != nil {
		return err
	}

	if _, err := job.Sink.WriteAt(buf, part.Offset); err != nil {
		return fmt.Errorf("failed to write part %d: %w", part.Number, err)
	}
	return nil
}

// failed builds the terminal result of a failed transfer.
// A cancelled context turns the failure into an abort.
func (e *Executor) failed(ctx context.Context, err error) (*Result, error) {
	if ctx.Err() != nil {
		if !errors.Is(err, domain.ErrTransferAborted) {
			err = fmt.Errorf("%w: %w", domain.ErrTransferAborted, err)
		}
		return &Result{State: domain.TransferStateAborted}, err
	}
	return &Result{State: domain.TransferStateFailed}, err
}

func (e *Executor) onRetry(direction domain.TransferDirection) func(int) {
	return func(attempt int) {
		e.metrics.PartRetried(direction)
		e.logger.Debug("retrying storage call", slog.String("direction", string(direction)), slog.Int("attempt", attempt))
	}
}

func (e *Executor) cleanupTimeout() time.Duration {
	if e.cfg.CleanupTimeout > 0 {
		return e.cfg.CleanupTimeout
	}
	return 30 * time.Second
}

// readPart fills buf from r. A payload shorter than announced is a size mismatch.
func readPart(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: payload shorter than announced", domain.ErrSizeMismatch)
		}
		return fmt.Errorf("failed to read payload: %w", err)
	}
	return nil
}

// ensureDrained fails when r still holds bytes past the announced size
func ensureDrained(r io.Reader) error {
	var extra [1]byte
	n, err := io.ReadFull(r, extra[:])
	if n > 0 {
		return fmt.Errorf("%w: payload longer than announced", domain.ErrSizeMismatch)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read payload: %w", err)
	}
	return nil
}
