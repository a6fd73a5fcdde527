package s3

import (
	"context"
	"errors"
	"net"
	"net/http"
	"object-gateway/internal/core/domain"
	"testing"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"missing key", &smithy.GenericAPIError{Code: "NoSuchKey"}, domain.ErrObjectNotFound},
		{"head not found", &smithy.GenericAPIError{Code: "NotFound"}, domain.ErrObjectNotFound},
		{"missing bucket", &smithy.GenericAPIError{Code: "NoSuchBucket"}, domain.ErrBucketNotFound},
		{"missing upload", &smithy.GenericAPIError{Code: "NoSuchUpload"}, domain.ErrUploadNotFound},
		{"throttled", &smithy.GenericAPIError{Code: "SlowDown"}, domain.ErrProviderUnavailable},
		{
			"server error",
			&smithyhttp.ResponseError{Response: &smithyhttp.Response{Response: &http.Response{StatusCode: 503}}, Err: errors.New("boom")},
			domain.ErrProviderUnavailable,
		},
		{"network error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, domain.ErrProviderUnavailable},
		{"cancelled", context.Canceled, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := translate("op", tt.err)

			// Assert
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTranslate_AccessDeniedIsNotTransient(t *testing.T) {
	// Act
	err := translate("op", &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"})

	// Assert
	assert.NotErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.NotErrorIs(t, err, domain.ErrObjectNotFound)
}
