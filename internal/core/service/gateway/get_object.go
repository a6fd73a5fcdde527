package gateway

import (
	"context"
	"object-gateway/internal/core/domain"
)

func (g *gatewayService) GetObject(ctx context.Context, loc domain.ObjectLocation) (*domain.Object, error) {
	if err := g.ensureLocation(ctx, loc); err != nil {
		return nil, err
	}

	object, err := g.store.GetObject(ctx, loc)
	if err != nil {
		return nil, err
	}
	if object.ContentType == "" {
		object.ContentType = defaultContentType
	}
	return object, nil
}
