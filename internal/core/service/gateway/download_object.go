package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/port"
	"object-gateway/internal/core/service/transfer"
)

// DownloadObject writes the selected object into sink.
// The object is addressed by exact key, or by prefix with the latest policy.
func (g *gatewayService) DownloadObject(ctx context.Context, req domain.DownloadRequest, sink port.DownloadSink) (*domain.ObjectSummary, error) {
	if err := g.ensureBucket(ctx, req.Bucket); err != nil {
		return nil, err
	}

	info, err := g.selectObject(ctx, req)
	if err != nil {
		return nil, err
	}
	loc := domain.ObjectLocation{Bucket: req.Bucket, Key: info.Key}

	if info.Size == 0 {
		if err := sink.Truncate(0); err != nil {
			return nil, fmt.Errorf("failed to prepare sink: %w", err)
		}
		return info, nil
	}

	plan, err := transfer.Plan(info.Size, g.cfg)
	if err != nil {
		return nil, err
	}

	j := g.openJournal(ctx, domain.TransferDirectionDownload, loc, plan)
	j.advance(ctx, domain.TransferStateInProgress, 0, "")

	progress := transfer.NewProgress(plan.TotalSize)
	j.observe(ctx, progress)

	g.logger.Info("download started",
		slog.String("transferID", j.id().String()),
		slog.String("location", loc.String()),
		slog.Int64("size", plan.TotalSize),
		slog.Int("parts", plan.PartCount))

	result, err := g.executor.Download(ctx, transfer.DownloadJob{
		Location: loc,
		Plan:     plan,
		Sink:     sink,
		Progress: progress,
	})
	j.finish(ctx, result, err)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (g *gatewayService) selectObject(ctx context.Context, req domain.DownloadRequest) (*domain.ObjectSummary, error) {
	policy := req.Policy
	if policy == "" {
		policy = domain.SelectionPolicyExact
		if req.Key == "" && req.Prefix != "" {
			policy = domain.SelectionPolicyLatest
		}
	}

	switch policy {
	case domain.SelectionPolicyExact:
		if req.Key == "" {
			return nil, domain.ErrEmptyKey
		}
		return g.store.StatObject(ctx, domain.ObjectLocation{Bucket: req.Bucket, Key: domain.ResolveKey(req.Prefix, req.Key)})

	case domain.SelectionPolicyLatest:
		objects, err := g.store.ListObjects(ctx, req.Bucket, req.Prefix)
		if err != nil {
			return nil, err
		}
		if len(objects) == 0 {
			return nil, fmt.Errorf("%w: no object under prefix %q", domain.ErrObjectNotFound, req.Prefix)
		}

		latest := objects[0]
		for _, obj := range objects[1:] {
			if obj.LastModified.After(latest.LastModified) {
				latest = obj
			}
		}
		return &latest, nil

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPolicy, policy)
	}
}
