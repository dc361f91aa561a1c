package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/prefstore/blobstore"
)

// Client is the interface for the S3 operations the store performs. It is
// satisfied by *s3.Client and embeds what the transfer manager needs for
// multipart uploads.
type Client interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Options configures an S3 store.
type Options struct {
	// Prefix is prepended to all keys (e.g. "prefs/").
	Prefix string

	// Region overrides the AWS region when the client is built by New.
	Region string

	// UploadPartSize is the minimum part size for multipart uploads.
	UploadPartSize int64

	// UploadConcurrency is the number of concurrent part uploads.
	UploadConcurrency int

	// Logger receives best-effort failure events. Defaults to a logger
	// that discards everything.
	Logger *slog.Logger
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) func(o *Options) {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithRegion sets the AWS region used by New.
func WithRegion(region string) func(o *Options) {
	return func(o *Options) {
		o.Region = region
	}
}

// Store implements blobstore.Store for Amazon S3.
type Store struct {
	client   Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	logger   *slog.Logger
}

var _ blobstore.Store = (*Store)(nil)

// New creates a Store using the default AWS configuration.
func New(ctx context.Context, bucket string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewStore(s3.NewFromConfig(cfg), bucket, optFns...), nil
}

// NewStore creates a Store around an existing client.
func NewStore(client Client, bucket string, optFns ...func(o *Options)) *Store {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		if opts.UploadPartSize > 0 {
			u.PartSize = opts.UploadPartSize
		}
		if opts.UploadConcurrency > 0 {
			u.Concurrency = opts.UploadConcurrency
		}
	})

	return &Store{
		client:   client,
		uploader: uploader,
		bucket:   bucket,
		prefix:   opts.Prefix,
		logger:   opts.Logger,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Names returns the names stored under the configured prefix. Listing is
// best-effort: a failing page ends the listing and whatever was collected
// so far is returned.
func (s *Store) Names(ctx context.Context) []string {
	var names []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			s.logger.Warn("blob listing failed", "bucket", s.bucket, "prefix", s.prefix, "error", err)
			return names
		}
		for _, obj := range page.Contents {
			names = append(names, s.trimPrefix(*obj.Key))
		}
	}

	return names
}

func (s *Store) trimPrefix(key string) string {
	if s.prefix == "" {
		return key
	}
	key = strings.TrimPrefix(key, s.prefix)
	return strings.TrimPrefix(key, "/")
}

// Fetch downloads the object stored under name.
func (s *Store) Fetch(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, blobstore.ErrNotFound
		}
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, blobstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch blob %q: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %q: %w", name, err)
	}
	return data, nil
}

// Save uploads data under name. The PUT replaces any previous object
// atomically.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to save blob %q: %w", name, err)
	}
	return nil
}

// Remove deletes the object stored under name. S3 treats deleting an
// absent key as success, matching the store contract.
func (s *Store) Remove(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("failed to remove blob %q: %w", name, err)
	}
	return nil
}
