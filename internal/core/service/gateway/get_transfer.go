package gateway

import (
	"context"
	"object-gateway/internal/core/domain"

	"github.com/google/uuid"
)

func (g *gatewayService) GetTransfer(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error) {
	return g.repo.FindByID(ctx, id)
}
