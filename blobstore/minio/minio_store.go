package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/hupe1980/prefstore/blobstore"
	"github.com/minio/minio-go/v7"
)

// Store implements blobstore.Store for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

var _ blobstore.Store = (*Store)(nil)

// Options configures a MinIO store.
type Options struct {
	// Logger receives best-effort failure events. Defaults to a logger
	// that discards everything.
	Logger *slog.Logger
}

// NewStore creates a new MinIO blob store.
// bucket is the MinIO bucket name.
// rootPrefix is prepended to all keys (e.g. "prefs/").
func NewStore(client *minio.Client, bucket, rootPrefix string, optFns ...func(o *Options)) *Store {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
		logger: opts.Logger,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Names returns the names stored under the configured prefix. Listing is
// best-effort: a listing error ends the enumeration and whatever was
// collected so far is returned.
func (s *Store) Names(ctx context.Context) []string {
	var names []string

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			s.logger.Warn("blob listing failed", "bucket", s.bucket, "prefix", s.prefix, "error", obj.Err)
			return names
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		name = strings.TrimPrefix(name, "/")
		if name != "" {
			names = append(names, name)
		}
	}

	return names
}

// Fetch downloads the object stored under name.
func (s *Store) Fetch(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blob %q: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil, blobstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read blob %q: %w", name, err)
	}
	return data, nil
}

// Save uploads data under name. The PUT replaces any previous object
// atomically.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name),
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to save blob %q: %w", name, err)
	}
	return nil
}

// Remove deletes the object stored under name. An already-absent object is
// not an error.
func (s *Store) Remove(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil // already gone
		}
		return fmt.Errorf("failed to remove blob %q: %w", name, err)
	}
	return nil
}
