package domain

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// TransferState represents the state of a transfer
type TransferState string

const (
	TransferStatePlanned    TransferState = "planned"
	TransferStateInProgress TransferState = "in_progress"
	TransferStateCompleted  TransferState = "completed"
	TransferStateFailed     TransferState = "failed"
	TransferStateAborted    TransferState = "aborted"
)

// IsTerminal reports whether no further transition is possible
func (s TransferState) IsTerminal() bool {
	return s == TransferStateCompleted || s == TransferStateFailed || s == TransferStateAborted
}

// CanTransitionTo reports whether next is reachable from s.
// Planned can only start; InProgress ends in Completed, Failed or Aborted.
func (s TransferState) CanTransitionTo(next TransferState) bool {
	switch s {
	case TransferStatePlanned:
		return next == TransferStateInProgress || next == TransferStateFailed
	case TransferStateInProgress:
		return next.IsTerminal()
	default:
		return false
	}
}

// TransferDirection tells whether bytes flow to or from the store
type TransferDirection string

const (
	TransferDirectionUpload   TransferDirection = "upload"
	TransferDirectionDownload TransferDirection = "download"
)

// TransferRequest is the input of an upload. It is owned by a single gateway call.
type TransferRequest struct {
	Location    ObjectLocation
	Payload     io.Reader
	ContentType string
	SizeHint    int64
}

// TransferPlan describes how a payload is split
type TransferPlan struct {
	TotalSize   int64
	PartSize    int64
	PartCount   int
	Concurrency int
}

// PartRange is a contiguous byte range of a payload
type PartRange struct {
	Number int
	Offset int64
	Size   int64
}

// IsMultipart reports whether the plan needs a multipart session
func (p TransferPlan) IsMultipart() bool {
	return p.PartCount > 1
}

// Parts returns the byte ranges of the plan. The last part holds the remainder.
func (p TransferPlan) Parts() []PartRange {
	parts := make([]PartRange, 0, p.PartCount)
	var offset int64
	for i := 1; i <= p.PartCount; i++ {
		size := p.PartSize
		if i == p.PartCount {
			size = p.TotalSize - offset
		}
		parts = append(parts, PartRange{Number: i, Offset: offset, Size: size})
		offset += size
	}
	return parts
}

// TransferProgress is a snapshot of a transfer progress
type TransferProgress struct {
	TransferredBytes int64
	TotalBytes       int64
}

// Done reports whether every byte has been transferred
func (p TransferProgress) Done() bool {
	return p.TransferredBytes == p.TotalBytes
}

// TransferRecord is the journal entry of a transfer
type TransferRecord struct {
	ID               uuid.UUID
	Direction        TransferDirection
	Location         ObjectLocation
	State            TransferState
	TotalBytes       int64
	TransferredBytes int64
	PartCount        int
	ProviderUploadID string
	Error            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
