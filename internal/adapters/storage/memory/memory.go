package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"object-gateway/internal/core/domain"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type object struct {
	data        []byte
	contentType string
	etag        string
	modified    time.Time
}

type upload struct {
	loc         domain.ObjectLocation
	contentType string
	parts       map[int][]byte
}

// Store is an in process object store. Objects live as long as the process.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]map[string]*object
	uploads map[string]*upload
	now     func() time.Time
}

// NewStore returns a Store holding the given empty buckets
func NewStore(buckets ...string) *Store {
	s := &Store{
		buckets: make(map[string]map[string]*object),
		uploads: make(map[string]*upload),
		now:     time.Now,
	}
	for _, b := range buckets {
		s.CreateBucket(b)
	}
	return s
}

// WithClock replaces the clock used for modification times
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// CreateBucket creates bucket if missing
func (s *Store) CreateBucket(bucket string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = make(map[string]*object)
	}
}

// PendingUploads returns the number of open multipart sessions
func (s *Store) PendingUploads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.uploads)
}

func (s *Store) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.buckets[bucket]
	return ok, nil
}

func (s *Store) ListObjects(ctx context.Context, bucket string, prefix string) ([]domain.ObjectSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, ok := s.buckets[bucket]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBucketNotFound, bucket)
	}

	keys := make([]string, 0, len(objects))
	for key := range objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	summaries := make([]domain.ObjectSummary, 0, len(keys))
	for _, key := range keys {
		summaries = append(summaries, summary(key, objects[key]))
	}
	return summaries, nil
}

func (s *Store) StatObject(ctx context.Context, loc domain.ObjectLocation) (*domain.ObjectSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.lookup(loc)
	if err != nil {
		return nil, err
	}
	info := summary(loc.Key, obj)
	return &info, nil
}

func (s *Store) GetObject(ctx context.Context, loc domain.ObjectLocation) (*domain.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.lookup(loc)
	if err != nil {
		return nil, err
	}
	return &domain.Object{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		Key:         loc.Key,
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}, nil
}

func (s *Store) GetObjectRange(ctx context.Context, loc domain.ObjectLocation, offset int64, length int64) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.lookup(loc)
	if err != nil {
		return nil, err
	}
	size := int64(len(obj.data))
	if offset < 0 || length < 0 || offset > size {
		return nil, fmt.Errorf("invalid range %d+%d for %d bytes", offset, length, size)
	}
	end := min(offset+length, size)
	return io.NopCloser(bytes.NewReader(obj.data[offset:end])), nil
}

func (s *Store) PutObject(ctx context.Context, loc domain.ObjectLocation, body io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(io.LimitReader(body, size))
	if err != nil {
		return fmt.Errorf("failed to read object body: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.buckets[loc.Bucket]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrBucketNotFound, loc.Bucket)
	}
	objects[loc.Key] = &object{data: data, contentType: contentType, etag: etag(data), modified: s.now()}
	return nil
}

func (s *Store) DeleteObject(ctx context.Context, loc domain.ObjectLocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.buckets[loc.Bucket]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrBucketNotFound, loc.Bucket)
	}
	delete(objects, loc.Key)
	return nil
}

// PresignGetObject returns a memory:// url. It cannot be fetched over the network.
func (s *Store) PresignGetObject(ctx context.Context, loc domain.ObjectLocation, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	u := url.URL{
		Scheme:   "memory",
		Host:     loc.Bucket,
		Path:     "/" + loc.Key,
		RawQuery: url.Values{"expires": {s.now().Add(ttl).UTC().Format(time.RFC3339)}}.Encode(),
	}
	return u.String(), nil
}

func (s *Store) InitiateMultipart(ctx context.Context, loc domain.ObjectLocation, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buckets[loc.Bucket]; !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrBucketNotFound, loc.Bucket)
	}
	id := uuid.NewString()
	s.uploads[id] = &upload{loc: loc, contentType: contentType, parts: make(map[int][]byte)}
	return id, nil
}

func (s *Store) UploadPart(ctx context.Context, loc domain.ObjectLocation, uploadID string, partNumber int, body io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, size))
	if err != nil {
		return "", fmt.Errorf("failed to read part body: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	up, err := s.session(loc, uploadID)
	if err != nil {
		return "", err
	}
	up.parts[partNumber] = data
	return etag(data), nil
}

func (s *Store) ListParts(ctx context.Context, loc domain.ObjectLocation, uploadID string) ([]domain.CompletedPart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	up, err := s.session(loc, uploadID)
	if err != nil {
		return nil, err
	}
	parts := make([]domain.CompletedPart, 0, len(up.parts))
	for number, data := range up.parts {
		parts = append(parts, domain.CompletedPart{PartNumber: number, ETag: etag(data), Size: int64(len(data))})
	}
	slices.SortFunc(parts, func(a, b domain.CompletedPart) int { return a.PartNumber - b.PartNumber })
	return parts, nil
}

func (s *Store) CompleteMultipart(ctx context.Context, loc domain.ObjectLocation, uploadID string, parts []domain.CompletedPart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	up, err := s.session(loc, uploadID)
	if err != nil {
		return err
	}

	var assembled bytes.Buffer
	for i, part := range parts {
		if part.PartNumber != i+1 {
			return fmt.Errorf("invalid part order: part %d at position %d", part.PartNumber, i+1)
		}
		data, ok := up.parts[part.PartNumber]
		if !ok || etag(data) != part.ETag {
			return fmt.Errorf("invalid part %d", part.PartNumber)
		}
		assembled.Write(data)
	}

	objects, ok := s.buckets[loc.Bucket]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrBucketNotFound, loc.Bucket)
	}
	multipartTag, _ := domain.MultipartETag(parts)
	objects[loc.Key] = &object{data: assembled.Bytes(), contentType: up.contentType, etag: multipartTag, modified: s.now()}
	delete(s.uploads, uploadID)
	return nil
}

func (s *Store) AbortMultipart(ctx context.Context, loc domain.ObjectLocation, uploadID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.session(loc, uploadID); err != nil {
		return err
	}
	delete(s.uploads, uploadID)
	return nil
}

func (s *Store) lookup(loc domain.ObjectLocation) (*object, error) {
	objects, ok := s.buckets[loc.Bucket]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBucketNotFound, loc.Bucket)
	}
	obj, ok := objects[loc.Key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrObjectNotFound, loc)
	}
	return obj, nil
}

func (s *Store) session(loc domain.ObjectLocation, uploadID string) (*upload, error) {
	up, ok := s.uploads[uploadID]
	if !ok || up.loc != loc {
		return nil, fmt.Errorf("%w: %s", domain.ErrUploadNotFound, uploadID)
	}
	return up, nil
}

func summary(key string, obj *object) domain.ObjectSummary {
	return domain.ObjectSummary{
		Key:          key,
		Size:         int64(len(obj.data)),
		LastModified: obj.modified,
		ContentType:  obj.contentType,
		ETag:         obj.etag,
	}
}

func etag(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
