package access

import (
	"context"
	"fmt"
	"log/slog"
	"object-gateway/internal/config"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/port"
	"time"
)

// shortTTLWarning is the default ttl below which clients usually fail to use listing urls in time
const shortTTLWarning = 5 * time.Minute

type issuer struct {
	store  port.ObjectStore
	cfg    config.PresignConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewIssuer creates a new access url issuer
func NewIssuer(store port.ObjectStore, cfg config.PresignConfig, logger *slog.Logger) port.AccessIssuer {
	return NewIssuerWithClock(store, cfg, logger, time.Now)
}

// NewIssuerWithClock creates an issuer computing expirations from now
func NewIssuerWithClock(store port.ObjectStore, cfg config.PresignConfig, logger *slog.Logger, now func() time.Time) port.AccessIssuer {
	if cfg.DefaultTTL < shortTTLWarning {
		logger.Warn("default presign ttl is short, listed urls may expire before clients use them",
			slog.Duration("defaultTTL", cfg.DefaultTTL))
	}
	return &issuer{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    now,
	}
}

func (i *issuer) Issue(ctx context.Context, loc domain.ObjectLocation, ttl time.Duration) (*domain.PresignedAccess, error) {
	if ttl <= 0 || ttl > i.cfg.MaxTTL {
		return nil, fmt.Errorf("%w: %s not in (0, %s]", domain.ErrInvalidTTL, ttl, i.cfg.MaxTTL)
	}
	if loc.Key == "" {
		return nil, domain.ErrEmptyKey
	}

	issuedAt := i.now()
	url, err := i.store.PresignGetObject(ctx, loc, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to presign %s: %w", loc, err)
	}

	return &domain.PresignedAccess{
		URL:       url,
		ExpiresAt: issuedAt.Add(ttl),
	}, nil
}

func (i *issuer) DefaultTTL() time.Duration {
	return i.cfg.DefaultTTL
}
