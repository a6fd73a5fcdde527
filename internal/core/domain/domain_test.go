package domain_test

import (
	"object-gateway/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		filename string
		want     string
	}{
		{name: "no prefix", prefix: "", filename: "a.csv", want: "a.csv"},
		{name: "prefix", prefix: "reports", filename: "a.csv", want: "reports/a.csv"},
		{name: "trailing slash", prefix: "reports/", filename: "a.csv", want: "reports/a.csv"},
		{name: "many trailing slashes", prefix: "reports//", filename: "a.csv", want: "reports/a.csv"},
		{name: "nested prefix", prefix: "2024/q1/", filename: "a.csv", want: "2024/q1/a.csv"},
		{name: "empty filename", prefix: "", filename: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ResolveKey(tt.prefix, tt.filename))
		})
	}
}

func TestNewObjectLocation(t *testing.T) {
	// Act
	loc := domain.NewObjectLocation("bucket", "reports/", "a.csv")

	// Assert
	assert.Equal(t, "bucket", loc.Bucket)
	assert.Equal(t, "reports/a.csv", loc.Key)
	assert.Equal(t, "bucket/reports/a.csv", loc.String())
}

func TestTransferPlan_Parts(t *testing.T) {
	// Arrange
	const mib = int64(1 << 20)
	plan := domain.TransferPlan{TotalSize: 20 * mib, PartSize: 8 * mib, PartCount: 3, Concurrency: 3}

	// Act
	parts := plan.Parts()

	// Assert
	assert.True(t, plan.IsMultipart())
	assert.Equal(t, []domain.PartRange{
		{Number: 1, Offset: 0, Size: 8 * mib},
		{Number: 2, Offset: 8 * mib, Size: 8 * mib},
		{Number: 3, Offset: 16 * mib, Size: 4 * mib},
	}, parts)
}

func TestTransferPlan_SinglePart(t *testing.T) {
	// Arrange
	plan := domain.TransferPlan{TotalSize: 42, PartSize: 42, PartCount: 1, Concurrency: 1}

	// Act
	parts := plan.Parts()

	// Assert
	assert.False(t, plan.IsMultipart())
	assert.Equal(t, []domain.PartRange{{Number: 1, Offset: 0, Size: 42}}, parts)
}

func TestTransferState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from domain.TransferState
		to   domain.TransferState
		want bool
	}{
		{domain.TransferStatePlanned, domain.TransferStateInProgress, true},
		{domain.TransferStatePlanned, domain.TransferStateFailed, true},
		{domain.TransferStatePlanned, domain.TransferStateAborted, false},
		{domain.TransferStatePlanned, domain.TransferStateCompleted, false},
		{domain.TransferStateInProgress, domain.TransferStateCompleted, true},
		{domain.TransferStateInProgress, domain.TransferStateFailed, true},
		{domain.TransferStateInProgress, domain.TransferStateAborted, true},
		{domain.TransferStateInProgress, domain.TransferStatePlanned, false},
		{domain.TransferStateCompleted, domain.TransferStateFailed, false},
		{domain.TransferStateFailed, domain.TransferStateInProgress, false},
		{domain.TransferStateAborted, domain.TransferStateCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTransferState_IsTerminal(t *testing.T) {
	assert.False(t, domain.TransferStatePlanned.IsTerminal())
	assert.False(t, domain.TransferStateInProgress.IsTerminal())
	assert.True(t, domain.TransferStateCompleted.IsTerminal())
	assert.True(t, domain.TransferStateFailed.IsTerminal())
	assert.True(t, domain.TransferStateAborted.IsTerminal())
}

func TestMultipartETag(t *testing.T) {
	tests := []struct {
		name   string
		parts  []domain.CompletedPart
		want   string
		wantOK bool
	}{
		{
			name: "two parts",
			parts: []domain.CompletedPart{
				{PartNumber: 1, ETag: "0cc175b9c0f1b6a831c399e269772661"},
				{PartNumber: 2, ETag: `"92eb5ffee6ae2fec3ad71c777531578f"`},
			},
			want:   "96e024ba2074fe77e8e965ba43a704be-2",
			wantOK: true,
		},
		{name: "no parts", parts: nil, wantOK: false},
		{
			name:   "not an md5",
			parts:  []domain.CompletedPart{{PartNumber: 1, ETag: "opaque-kms-etag"}},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := domain.MultipartETag(tt.parts)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
