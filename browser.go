package s3browser

import (
	"context"
	"log/slog"
)

// Store is the client-library side of a Browser. Implementations wrap one
// connection to an S3-compatible endpoint and are not required to be safe for
// concurrent use.
//
// All methods accept a context for cancellation. Errors are returned as
// produced by the underlying library; Browser wraps them.
type Store interface {
	// BucketExists reports whether the bucket exists and is accessible.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// ListBuckets returns every bucket visible to the credentials.
	ListBuckets(ctx context.Context) ([]BucketInfo, error)

	// ListObjects returns the objects of a bucket. Pagination is handled by
	// the library; the full listing is returned.
	ListObjects(ctx context.Context, bucket string, opts ListOptions) ([]ObjectInfo, error)

	// GetObject opens an object for streaming. The caller closes the body.
	GetObject(ctx context.Context, bucket, key string) (*Object, error)

	// FPutObject uploads the local file at path, creating or overwriting key.
	FPutObject(ctx context.Context, bucket, key, path string) (UploadInfo, error)

	// FGetObject downloads key into the local file at path.
	FGetObject(ctx context.Context, bucket, key, path string) error

	// StatObject returns the metadata of key.
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)

	// RemoveObject deletes key.
	RemoveObject(ctx context.Context, bucket, key string) error

	// GetBucketPolicy returns the bucket policy document, possibly empty.
	GetBucketPolicy(ctx context.Context, bucket string) (string, error)

	// MakeBucket creates the bucket. An empty region leaves the choice to the
	// service.
	MakeBucket(ctx context.Context, bucket, region string) error
}

// Browser exposes one synchronous method per storage operation for a single,
// pre-configured bucket.
type Browser struct {
	store  Store
	bucket string
	logger *slog.Logger
}

// Option configures a Browser.
type Option func(*Browser)

// WithLogger sets the logger operations report to. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Browser) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New returns a Browser bound to bucket.
func New(store Store, bucket string, opts ...Option) *Browser {
	b := &Browser{
		store:  store,
		bucket: bucket,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bucket returns the bucket the Browser is bound to.
func (b *Browser) Bucket() string {
	return b.bucket
}

func (b *Browser) fail(op, object string, err error) error {
	opErr := &OperationError{Op: op, Bucket: b.bucket, Object: object, Err: err}
	attrs := []any{"op", op, "bucket", b.bucket}
	if object != "" {
		attrs = append(attrs, "object", object)
	}
	b.logger.Error("operation failed", append(attrs, "err", err)...)
	return opErr
}

// BucketExists checks whether the configured bucket exists.
func (b *Browser) BucketExists(ctx context.Context) (bool, error) {
	b.logger.Info("checking if bucket exists", "bucket", b.bucket)

	exists, err := b.store.BucketExists(ctx, b.bucket)
	if err != nil {
		return false, b.fail("bucket_exists", "", err)
	}

	b.logger.Info("bucket exists check done", "bucket", b.bucket, "exists", exists)
	return exists, nil
}

// ListBuckets lists every accessible bucket, logging one line per bucket.
func (b *Browser) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	b.logger.Info("listing all buckets")

	buckets, err := b.store.ListBuckets(ctx)
	if err != nil {
		return nil, b.fail("list_buckets", "", err)
	}

	b.logger.Info("found buckets", "count", len(buckets))
	for _, bucket := range buckets {
		b.logger.Info("bucket", "name", bucket.Name, "creation_date", bucket.CreationDate)
	}
	return buckets, nil
}

// ListObjects lists the objects of the configured bucket, logging one line per object.
func (b *Browser) ListObjects(ctx context.Context, opts ListOptions) ([]ObjectInfo, error) {
	b.logger.Info("getting objects from bucket", "bucket", b.bucket, "prefix", opts.Prefix, "recursive", opts.Recursive)

	objects, err := b.store.ListObjects(ctx, b.bucket, opts)
	if err != nil {
		return nil, b.fail("list_objects", "", err)
	}

	for _, obj := range objects {
		b.logger.Info("object", "name", obj.Key, "last_modified", obj.LastModified, "size", obj.Size)
	}
	b.logger.Info("listed objects", "bucket", b.bucket, "count", len(objects))
	return objects, nil
}

// GetObject opens name for streaming. The returned Object must be closed.
func (b *Browser) GetObject(ctx context.Context, name string) (*Object, error) {
	b.logger.Info("getting object from bucket", "object", name, "bucket", b.bucket)

	obj, err := b.store.GetObject(ctx, b.bucket, name)
	if err != nil {
		return nil, b.fail("get_object", name, err)
	}

	b.logger.Info("got object",
		"object", obj.Info.Key,
		"last_modified", obj.Info.LastModified,
		"size", obj.Info.Size,
	)
	return obj, nil
}

// FPutObject uploads the local file at path as name.
func (b *Browser) FPutObject(ctx context.Context, name, path string) (UploadInfo, error) {
	b.logger.Info("uploading file to bucket", "object", name, "bucket", b.bucket, "file", path)

	info, err := b.store.FPutObject(ctx, b.bucket, name, path)
	if err != nil {
		return UploadInfo{}, b.fail("fput_object", name, err)
	}

	b.logger.Info("uploaded file to bucket", "object", name, "bucket", b.bucket, "size", info.Size, "etag", info.ETag)
	return info, nil
}

// RemoveObject deletes name from the bucket.
func (b *Browser) RemoveObject(ctx context.Context, name string) error {
	b.logger.Info("deleting object from bucket", "object", name, "bucket", b.bucket)

	if err := b.store.RemoveObject(ctx, b.bucket, name); err != nil {
		return b.fail("remove_object", name, err)
	}

	b.logger.Info("deleted object from bucket", "object", name, "bucket", b.bucket)
	return nil
}

// FGetObject downloads name into the local file at path.
func (b *Browser) FGetObject(ctx context.Context, name, path string) error {
	b.logger.Info("downloading object from bucket", "object", name, "bucket", b.bucket)

	if err := b.store.FGetObject(ctx, b.bucket, name, path); err != nil {
		return b.fail("fget_object", name, err)
	}

	b.logger.Info("downloaded object from bucket", "object", name, "bucket", b.bucket, "file", path)
	return nil
}

// StatObject returns the metadata of name.
func (b *Browser) StatObject(ctx context.Context, name string) (ObjectInfo, error) {
	b.logger.Info("stating object in bucket", "object", name, "bucket", b.bucket)

	info, err := b.store.StatObject(ctx, b.bucket, name)
	if err != nil {
		return ObjectInfo{}, b.fail("stat_object", name, err)
	}

	b.logger.Info("stated object",
		"object", info.Key,
		"last_modified", info.LastModified,
		"size", info.Size,
	)
	return info, nil
}

// GetBucketPolicy returns the policy document of the bucket as an opaque string.
func (b *Browser) GetBucketPolicy(ctx context.Context) (string, error) {
	b.logger.Info("getting bucket policy", "bucket", b.bucket)

	policy, err := b.store.GetBucketPolicy(ctx, b.bucket)
	if err != nil {
		return "", b.fail("get_bucket_policy", "", err)
	}

	b.logger.Info("bucket policy", "bucket", b.bucket, "policy", policy)
	return policy, nil
}

// MakeBucket creates the configured bucket.
func (b *Browser) MakeBucket(ctx context.Context, region string) error {
	b.logger.Info("creating bucket", "bucket", b.bucket, "region", region)

	if err := b.store.MakeBucket(ctx, b.bucket, region); err != nil {
		return b.fail("make_bucket", "", err)
	}

	b.logger.Info("created bucket", "bucket", b.bucket)
	return nil
}
