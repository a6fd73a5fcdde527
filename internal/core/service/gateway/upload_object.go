package gateway

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/service/transfer"

	"github.com/gabriel-vasile/mimetype"
)

const (
	defaultContentType = "application/octet-stream"
	sniffLength        = 3072
)

func (g *gatewayService) UploadObject(ctx context.Context, req domain.TransferRequest) (*domain.ObjectLocation, error) {
	if err := g.ensureLocation(ctx, req.Location); err != nil {
		return nil, err
	}

	plan, err := transfer.Plan(req.SizeHint, g.cfg)
	if err != nil {
		return nil, err
	}

	payload, contentType := detectContentType(req.Payload, req.ContentType)

	j := g.openJournal(ctx, domain.TransferDirectionUpload, req.Location, plan)
	j.advance(ctx, domain.TransferStateInProgress, 0, "")

	progress := transfer.NewProgress(plan.TotalSize)
	j.observe(ctx, progress)

	g.logger.Info("upload started",
		slog.String("transferID", j.id().String()),
		slog.String("location", req.Location.String()),
		slog.Int64("size", plan.TotalSize),
		slog.Int("parts", plan.PartCount),
		slog.String("contentType", contentType))

	result, err := g.executor.Upload(ctx, transfer.UploadJob{
		Location:    req.Location,
		Plan:        plan,
		Payload:     payload,
		ContentType: contentType,
		Progress:    progress,
		OnSession: func(uploadID string) {
			j.sessionStarted(ctx, uploadID)
		},
	})
	j.finish(ctx, result, err)
	if err != nil {
		return nil, err
	}

	loc := req.Location
	return &loc, nil
}

// detectContentType sniffs the first bytes of payload when the client sent no usable type
func detectContentType(payload io.Reader, contentType string) (io.Reader, string) {
	if contentType != "" && contentType != defaultContentType {
		return payload, contentType
	}

	buffered := bufio.NewReaderSize(payload, sniffLength)
	head, _ := buffered.Peek(sniffLength)
	if len(head) == 0 {
		return buffered, defaultContentType
	}
	return buffered, mimetype.Detect(head).String()
}
