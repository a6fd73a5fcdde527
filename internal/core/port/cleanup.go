package port

import (
	"context"
	"time"
)

// CleanupService is service that aborts multipart sessions left behind by interrupted transfers
type CleanupService interface {
	CleanupStaleTransfers(ctx context.Context, now time.Time) error
}
