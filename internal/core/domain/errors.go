package domain

import "errors"

// ErrBucketNotFound is an error thrown when the target bucket does not exist
var ErrBucketNotFound = errors.New("bucket not found")

// ErrObjectNotFound is an error thrown when no object exists at the requested key
var ErrObjectNotFound = errors.New("object not found")

// ErrInvalidSize is an error thrown when a payload size is zero, negative or above the provider limits
var ErrInvalidSize = errors.New("invalid size")

// ErrEmptyKey is an error thrown when the resolved object key is empty
var ErrEmptyKey = errors.New("empty object key")

// ErrTransferAborted is an error thrown when a transfer is cancelled while in progress
var ErrTransferAborted = errors.New("transfer aborted")

// ErrProviderUnavailable is a transient storage provider failure, safe to retry
var ErrProviderUnavailable = errors.New("storage provider unavailable")

// ErrFinalizeConflict is thrown when the provider refuses to assemble the uploaded parts
var ErrFinalizeConflict = errors.New("multipart finalize conflict")

// ErrUploadNotFound is thrown when a multipart session no longer exists on the provider
var ErrUploadNotFound = errors.New("multipart upload not found")

// ErrSizeMismatch is an error thrown when the payload length differs from the announced size
var ErrSizeMismatch = errors.New("size mismatch")

// ErrInvalidTTL is an error thrown when a presign duration is outside the allowed range
var ErrInvalidTTL = errors.New("invalid presign ttl")

// ErrInvalidPolicy is an error thrown when an unknown object selection policy is requested
var ErrInvalidPolicy = errors.New("invalid selection policy")

// ErrTransferNotFound is an error thrown when no journal record matches a transfer id
var ErrTransferNotFound = errors.New("transfer not found")

// ErrInvalidStateTransition is an error thrown when a transfer moves to a state its current state cannot reach
var ErrInvalidStateTransition = errors.New("invalid transfer state transition")
