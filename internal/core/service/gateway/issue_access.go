package gateway

import (
	"context"
	"object-gateway/internal/core/domain"
	"time"
)

// IssueAccess presigns a download url for an existing object. A zero ttl selects the default.
func (g *gatewayService) IssueAccess(ctx context.Context, loc domain.ObjectLocation, ttl time.Duration) (*domain.PresignedAccess, error) {
	if err := g.ensureLocation(ctx, loc); err != nil {
		return nil, err
	}
	if ttl == 0 {
		ttl = g.issuer.DefaultTTL()
	}

	if _, err := g.store.StatObject(ctx, loc); err != nil {
		return nil, err
	}

	return g.issuer.Issue(ctx, loc, ttl)
}
