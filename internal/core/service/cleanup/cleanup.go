package cleanup

import (
	"log/slog"
	"object-gateway/internal/core/port"
	"time"
)

type cleanupService struct {
	repo       port.TransferRepository
	store      port.ObjectStore
	staleAfter time.Duration
	logger     *slog.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(repo port.TransferRepository, store port.ObjectStore, staleAfter time.Duration, logger *slog.Logger) port.CleanupService {
	return &cleanupService{
		repo:       repo,
		store:      store,
		staleAfter: staleAfter,
		logger:     logger,
	}
}
