package gateway

import (
	"context"
	"errors"
	"log/slog"
	"object-gateway/internal/core/domain"
)

// DeleteObject removes the object. A missing object is not an error.
func (g *gatewayService) DeleteObject(ctx context.Context, loc domain.ObjectLocation) error {
	if err := g.ensureLocation(ctx, loc); err != nil {
		return err
	}

	err := g.store.DeleteObject(ctx, loc)
	if err != nil && !errors.Is(err, domain.ErrObjectNotFound) {
		return err
	}

	g.logger.Info("object deleted", slog.String("location", loc.String()))
	return nil
}
