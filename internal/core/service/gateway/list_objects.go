package gateway

import (
	"context"
	"object-gateway/internal/core/domain"
)

func (g *gatewayService) ListObjects(ctx context.Context, bucket string, prefix string, withAccess bool) (*domain.ListingPage, error) {
	if err := g.ensureBucket(ctx, bucket); err != nil {
		return nil, err
	}

	objects, err := g.store.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}

	if withAccess {
		ttl := g.issuer.DefaultTTL()
		for i := range objects {
			access, err := g.issuer.Issue(ctx, domain.ObjectLocation{Bucket: bucket, Key: objects[i].Key}, ttl)
			if err != nil {
				return nil, err
			}
			objects[i].Access = access
		}
	}

	return &domain.ListingPage{Prefix: prefix, Objects: objects}, nil
}
