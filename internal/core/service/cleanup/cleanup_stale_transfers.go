package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"object-gateway/internal/core/domain"
	"time"
)

const staleReason = "transfer abandoned, cleaned up"

// CleanupStaleTransfers aborts the provider sessions of transfers left running by a crashed process
func (c *cleanupService) CleanupStaleTransfers(ctx context.Context, now time.Time) error {

	records, err := c.repo.FindStale(ctx, now.Add(-c.staleAfter))
	if err != nil {
		return err
	}

	cleaned := 0
	for _, record := range records {
		if err := c.cleanupTransfer(ctx, record); err != nil {
			c.logger.Error("Failed to clean up stale transfer",
				slog.String("transferID", record.ID.String()),
				slog.Any("err", err))
			continue
		}
		cleaned++
	}

	c.logger.Info("stale transfers cleanup completed", slog.Int("found", len(records)), slog.Int("cleaned", cleaned))
	return nil
}

func (c *cleanupService) cleanupTransfer(ctx context.Context, record domain.TransferRecord) error {
	next := domain.TransferStateAborted
	if !record.State.CanTransitionTo(next) {
		next = domain.TransferStateFailed
	}
	if !record.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidStateTransition, record.State)
	}

	if record.Direction == domain.TransferDirectionUpload && record.ProviderUploadID != "" {
		err := c.store.AbortMultipart(ctx, record.Location, record.ProviderUploadID)
		if err != nil && !errors.Is(err, domain.ErrUploadNotFound) {
			return fmt.Errorf("failed to abort multipart upload: %w", err)
		}
	}

	return c.repo.UpdateState(ctx, record.ID, next, record.TransferredBytes, staleReason)
}
