package domain

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"strconv"
	"strings"
	"time"
)

// ObjectLocation addresses an object inside a bucket
type ObjectLocation struct {
	Bucket string
	Key    string
}

// ResolveKey builds an object key from an optional prefix and a file name.
// Trailing slashes of the prefix are dropped so "a/" and "a" resolve to the same key.
func ResolveKey(prefix, filename string) string {
	if prefix == "" {
		return filename
	}
	return strings.TrimRight(prefix, "/") + "/" + filename
}

// NewObjectLocation returns the location of filename under prefix in bucket
func NewObjectLocation(bucket, prefix, filename string) ObjectLocation {
	return ObjectLocation{Bucket: bucket, Key: ResolveKey(prefix, filename)}
}

// String returns bucket/key
func (l ObjectLocation) String() string {
	return l.Bucket + "/" + l.Key
}

// ObjectSummary represents one entry of a listing
type ObjectSummary struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
	Access       *PresignedAccess
}

// ListingPage is the result of a listing, in provider order
type ListingPage struct {
	Prefix  string
	Objects []ObjectSummary
}

// Object is a readable object body with its metadata.
// Body must be closed by the caller.
type Object struct {
	Body        io.ReadCloser
	Key         string
	ContentType string
	Size        int64
}

// PresignedAccess is a time limited url giving direct access to an object
type PresignedAccess struct {
	URL       string
	ExpiresAt time.Time
}

// CompletedPart represents an uploaded part of a multipart session
type CompletedPart struct {
	PartNumber int
	ETag       string
	Size       int64
}

// MultipartETag returns the ETag S3 compatible stores give an object assembled from parts:
// the hex md5 of the concatenated binary part md5s, suffixed with "-<part count>".
// It reports false when a part ETag is not a plain md5, as with SSE-KMS or SSE-C.
func MultipartETag(parts []CompletedPart) (string, bool) {
	if len(parts) == 0 {
		return "", false
	}
	digests := make([]byte, 0, len(parts)*md5.Size)
	for _, part := range parts {
		raw, err := hex.DecodeString(strings.Trim(part.ETag, "\""))
		if err != nil || len(raw) != md5.Size {
			return "", false
		}
		digests = append(digests, raw...)
	}
	sum := md5.Sum(digests)
	return hex.EncodeToString(sum[:]) + "-" + strconv.Itoa(len(parts)), true
}

// SelectionPolicy decides which object is picked when a download is addressed by prefix
type SelectionPolicy string

const (
	SelectionPolicyExact  SelectionPolicy = "exact"
	SelectionPolicyLatest SelectionPolicy = "latest"
)

// DownloadRequest describes which object to download
type DownloadRequest struct {
	Bucket string
	Key    string
	Prefix string
	Policy SelectionPolicy
}
