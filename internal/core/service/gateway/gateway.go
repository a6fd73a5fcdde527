package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"object-gateway/internal/config"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/port"
	"object-gateway/internal/core/service/transfer"
)

type gatewayService struct {
	store     port.ObjectStore
	executor  *transfer.Executor
	issuer    port.AccessIssuer
	repo      port.TransferRepository
	publisher port.EventPublisher
	cfg       config.TransferConfig
	logger    *slog.Logger
}

// NewGatewayService creates a new gateway service
func NewGatewayService(
	store port.ObjectStore,
	executor *transfer.Executor,
	issuer port.AccessIssuer,
	repo port.TransferRepository,
	publisher port.EventPublisher,
	cfg config.TransferConfig,
	logger *slog.Logger,
) port.GatewayService {
	return &gatewayService{
		store:     store,
		executor:  executor,
		issuer:    issuer,
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// ensureBucket checks the bucket exists at the time of the call. The answer is never cached.
func (g *gatewayService) ensureBucket(ctx context.Context, bucket string) error {
	if bucket == "" {
		return fmt.Errorf("%w: empty bucket name", domain.ErrBucketNotFound)
	}
	exists, err := g.store.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrBucketNotFound, bucket)
	}
	return nil
}

func (g *gatewayService) ensureLocation(ctx context.Context, loc domain.ObjectLocation) error {
	if err := g.ensureBucket(ctx, loc.Bucket); err != nil {
		return err
	}
	if loc.Key == "" {
		return domain.ErrEmptyKey
	}
	return nil
}
