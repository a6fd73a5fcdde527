package transfer

import (
	"object-gateway/internal/core/domain"
	"sync"
)

// Progress tracks the transferred bytes of a single transfer.
// Updates are delivered on a channel holding only the latest snapshot, so a slow
// observer never blocks the transfer and always reads a non-decreasing value.
type Progress struct {
	mu      sync.Mutex
	current domain.TransferProgress
	updates chan domain.TransferProgress
	closed  bool
}

// NewProgress returns a Progress for a payload of total bytes
func NewProgress(total int64) *Progress {
	return &Progress{
		current: domain.TransferProgress{TotalBytes: total},
		updates: make(chan domain.TransferProgress, 1),
	}
}

// Add records n more transferred bytes and publishes the new snapshot
func (p *Progress) Add(n int64) {
	if n <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.current.TransferredBytes = min(p.current.TransferredBytes+n, p.current.TotalBytes)

	select {
	case <-p.updates:
	default:
	}
	p.updates <- p.current
}

// Updates returns the channel of progress snapshots. It is closed by Close.
func (p *Progress) Updates() <-chan domain.TransferProgress {
	return p.updates
}

// Snapshot returns the current progress
func (p *Progress) Snapshot() domain.TransferProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Close stops publishing. The last snapshot stays readable on the channel.
func (p *Progress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.updates)
}
