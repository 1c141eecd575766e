// Package miniostore implements s3browser.Store on top of minio-go.
package miniostore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sagarc03/s3browser"
)

// Config holds the connection settings of a Store.
type Config struct {
	// Endpoint is host[:port], without scheme.
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	// Region skips bucket location lookups when set.
	Region string
	// Transport replaces the default HTTP transport, see the transport package.
	Transport http.RoundTripper
	// DisableRetries sends every request once, leaving retries to Transport.
	DisableRetries bool
}

// Store wraps a single minio client.
type Store struct {
	client *minio.Client
}

var _ s3browser.Store = (*Store)(nil)

// New creates a Store. No request is sent until the first operation.
func New(cfg Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("endpoint is required")
	}

	opts := &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.Secure,
		Region:    cfg.Region,
		Transport: cfg.Transport,
	}
	if cfg.DisableRetries {
		opts.MaxRetries = 1
	}

	client, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to init minio client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return s.client.BucketExists(ctx, bucket)
}

func (s *Store) ListBuckets(ctx context.Context) ([]s3browser.BucketInfo, error) {
	buckets, err := s.client.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]s3browser.BucketInfo, len(buckets))
	for i, b := range buckets {
		result[i] = s3browser.BucketInfo{
			Name:         b.Name,
			CreationDate: b.CreationDate,
		}
	}
	return result, nil
}

func (s *Store) ListObjects(ctx context.Context, bucket string, opts s3browser.ListOptions) ([]s3browser.ObjectInfo, error) {
	// Cancel on early return so the listing goroutine exits.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    opts.Prefix,
		Recursive: opts.Recursive,
	})

	result := []s3browser.ObjectInfo{}
	for obj := range objects {
		if obj.Err != nil {
			return nil, obj.Err
		}
		result = append(result, toObjectInfo(obj))
	}
	return result, nil
}

func (s *Store) GetObject(ctx context.Context, bucket, key string) (*s3browser.Object, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	// GetObject is lazy; Stat performs the request and surfaces missing keys.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, err
	}

	return &s3browser.Object{
		ReadCloser: obj,
		Info:       toObjectInfo(info),
	}, nil
}

func (s *Store) FPutObject(ctx context.Context, bucket, key, path string) (s3browser.UploadInfo, error) {
	info, err := s.client.FPutObject(ctx, bucket, key, path, minio.PutObjectOptions{})
	if err != nil {
		return s3browser.UploadInfo{}, err
	}

	return s3browser.UploadInfo{
		Bucket:    info.Bucket,
		Key:       info.Key,
		ETag:      info.ETag,
		Size:      info.Size,
		VersionID: info.VersionID,
	}, nil
}

func (s *Store) FGetObject(ctx context.Context, bucket, key, path string) error {
	return s.client.FGetObject(ctx, bucket, key, path, minio.GetObjectOptions{})
}

func (s *Store) StatObject(ctx context.Context, bucket, key string) (s3browser.ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return s3browser.ObjectInfo{}, err
	}
	return toObjectInfo(info), nil
}

func (s *Store) RemoveObject(ctx context.Context, bucket, key string) error {
	return s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

func (s *Store) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	return s.client.GetBucketPolicy(ctx, bucket)
}

func (s *Store) MakeBucket(ctx context.Context, bucket, region string) error {
	return s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region})
}

func toObjectInfo(info minio.ObjectInfo) s3browser.ObjectInfo {
	return s3browser.ObjectInfo{
		Key:          info.Key,
		LastModified: info.LastModified,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
	}
}
