package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransferEvent is published when a transfer reaches a terminal state
type TransferEvent struct {
	TransferID       uuid.UUID         `json:"transfer_id"`
	Direction        TransferDirection `json:"direction"`
	Bucket           string            `json:"bucket"`
	Key              string            `json:"key"`
	State            TransferState     `json:"state"`
	TotalBytes       int64             `json:"total_bytes"`
	TransferredBytes int64             `json:"transferred_bytes"`
	PartCount        int               `json:"part_count"`
	Error            string            `json:"error,omitempty"`
	OccurredAt       time.Time         `json:"occurred_at"`
}

// NewTransferEvent builds the event describing record
func NewTransferEvent(record TransferRecord, at time.Time) TransferEvent {
	return TransferEvent{
		TransferID:       record.ID,
		Direction:        record.Direction,
		Bucket:           record.Location.Bucket,
		Key:              record.Location.Key,
		State:            record.State,
		TotalBytes:       record.TotalBytes,
		TransferredBytes: record.TransferredBytes,
		PartCount:        record.PartCount,
		Error:            record.Error,
		OccurredAt:       at,
	}
}
