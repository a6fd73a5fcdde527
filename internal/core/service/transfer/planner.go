package transfer

import (
	"fmt"
	"object-gateway/internal/config"
	"object-gateway/internal/core/domain"
)

// Provider limits shared by S3 compatible stores
const (
	MaxPartCount = 10000
	MaxPartSize  = 5 << 30 // 5GB
)

// Plan computes how a payload of sizeHint bytes is split.
// It is a pure function of its inputs.
func Plan(sizeHint int64, cfg config.TransferConfig) (domain.TransferPlan, error) {
	if sizeHint <= 0 {
		return domain.TransferPlan{}, fmt.Errorf("%w: %d", domain.ErrInvalidSize, sizeHint)
	}

	if sizeHint < cfg.MinSizeBeforePartUpload {
		return singlePart(sizeHint), nil
	}

	partSize := max(cfg.PartSize, config.MinPartSize)
	partCount := ceilDiv(sizeHint, partSize)

	if partCount > MaxPartCount {
		partSize = ceilDiv(sizeHint, MaxPartCount)
		partCount = ceilDiv(sizeHint, partSize)
	}
	if partSize > MaxPartSize {
		return domain.TransferPlan{}, fmt.Errorf("%w: %d bytes exceeds %d parts of %d bytes", domain.ErrInvalidSize, sizeHint, MaxPartCount, int64(MaxPartSize))
	}

	if partCount < 2 {
		partSize = ceilDiv(sizeHint, 2)
		if partSize < config.MinPartSize {
			return singlePart(sizeHint), nil
		}
		partCount = 2
	}

	return domain.TransferPlan{
		TotalSize:   sizeHint,
		PartSize:    partSize,
		PartCount:   int(partCount),
		Concurrency: min(max(cfg.MaxConcurrentRequests, 1), int(partCount)),
	}, nil
}

func singlePart(size int64) domain.TransferPlan {
	return domain.TransferPlan{
		TotalSize:   size,
		PartSize:    size,
		PartCount:   1,
		Concurrency: 1,
	}
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
