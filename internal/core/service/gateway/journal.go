package gateway

import (
	"context"
	"errors"
	"log/slog"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/service/transfer"
	"time"

	"github.com/google/uuid"
)

// journal follows one transfer through its states.
// Repository and publisher failures are logged and never fail the transfer.
type journal struct {
	g        *gatewayService
	record   domain.TransferRecord
	observed chan struct{}
}

func (g *gatewayService) openJournal(ctx context.Context, direction domain.TransferDirection, loc domain.ObjectLocation, plan domain.TransferPlan) *journal {
	now := time.Now().UTC()
	j := &journal{
		g: g,
		record: domain.TransferRecord{
			ID:         uuid.New(),
			Direction:  direction,
			Location:   loc,
			State:      domain.TransferStatePlanned,
			TotalBytes: plan.TotalSize,
			PartCount:  plan.PartCount,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}

	if err := g.repo.Create(ctx, j.record); err != nil {
		g.logger.Error("failed to record transfer", slog.String("transferID", j.record.ID.String()), slog.Any("err", err))
	}
	return j
}

func (j *journal) id() uuid.UUID {
	return j.record.ID
}

// sessionStarted stores the provider upload id so a crashed transfer can be cleaned up later
func (j *journal) sessionStarted(ctx context.Context, uploadID string) {
	j.record.ProviderUploadID = uploadID
	if err := j.g.repo.UpdateProviderUploadID(ctx, j.record.ID, uploadID); err != nil {
		j.g.logger.Error("failed to record upload session",
			slog.String("transferID", j.record.ID.String()),
			slog.String("uploadID", uploadID),
			slog.Any("err", err))
	}
}

func (j *journal) advance(ctx context.Context, next domain.TransferState, transferred int64, errMsg string) {
	if !j.record.State.CanTransitionTo(next) {
		j.g.logger.Error("invalid transfer state transition",
			slog.String("transferID", j.record.ID.String()),
			slog.String("from", string(j.record.State)),
			slog.String("to", string(next)))
		return
	}

	j.record.State = next
	j.record.TransferredBytes = transferred
	j.record.Error = errMsg
	j.record.UpdatedAt = time.Now().UTC()

	// terminal writes must land even when the caller went away
	ctx = context.WithoutCancel(ctx)
	if err := j.g.repo.UpdateState(ctx, j.record.ID, next, transferred, errMsg); err != nil {
		j.g.logger.Error("failed to update transfer state",
			slog.String("transferID", j.record.ID.String()),
			slog.String("state", string(next)),
			slog.Any("err", err))
	}

	if next.IsTerminal() {
		event := domain.NewTransferEvent(j.record, j.record.UpdatedAt)
		if err := j.g.publisher.Publish(ctx, event); err != nil {
			j.g.logger.Error("failed to publish transfer event",
				slog.String("transferID", j.record.ID.String()),
				slog.Any("err", err))
		}
	}
}

// finish records the executor outcome once the last progress write is done
func (j *journal) finish(ctx context.Context, result *transfer.Result, err error) {
	if j.observed != nil {
		<-j.observed
	}

	state := domain.TransferStateCompleted
	var transferred int64
	if result != nil {
		state = result.State
		transferred = result.TransferredBytes
	} else if err != nil {
		state = domain.TransferStateFailed
	}

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	if err != nil && errors.Is(err, domain.ErrTransferAborted) {
		j.g.logger.Warn("transfer aborted", slog.String("transferID", j.record.ID.String()), slog.String("location", j.record.Location.String()))
	} else if err != nil {
		j.g.logger.Error("transfer failed", slog.String("transferID", j.record.ID.String()), slog.String("location", j.record.Location.String()), slog.Any("err", err))
	}

	j.advance(ctx, state, transferred, errMsg)
}

// observe writes progress snapshots to the repository, at most once per ProgressInterval,
// until the transfer closes the channel. Each write also refreshes the record for the stale sweep.
func (j *journal) observe(ctx context.Context, progress *transfer.Progress) {
	j.observed = make(chan struct{})
	interval := j.g.cfg.ProgressInterval

	go func() {
		defer close(j.observed)

		var last time.Time
		for update := range progress.Updates() {
			j.g.logger.Debug("transfer progress",
				slog.String("transferID", j.record.ID.String()),
				slog.Int64("transferred", update.TransferredBytes),
				slog.Int64("total", update.TotalBytes))

			if time.Since(last) < interval {
				continue
			}
			last = time.Now()
			if err := j.g.repo.UpdateProgress(ctx, j.record.ID, update.TransferredBytes); err != nil {
				j.g.logger.Error("failed to update transfer progress",
					slog.String("transferID", j.record.ID.String()),
					slog.Any("err", err))
			}
		}
	}()
}
