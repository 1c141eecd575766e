package clientcli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sagarc03/s3browser"
	"github.com/sagarc03/s3browser/awsstore"
	"github.com/sagarc03/s3browser/config"
	"github.com/sagarc03/s3browser/miniostore"
	"github.com/sagarc03/s3browser/transport"
)

// DownloadPrefix is prepended to the object's base name when no local path is given.
const DownloadPrefix = "downloaded_"

// Client performs command-level operations against the configured bucket.
type Client struct {
	browser *s3browser.Browser
	store   s3browser.Store
	logger  *slog.Logger
	policy  transport.RetryPolicy
	stdout  io.Writer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger for the client and its browser.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStore uses store instead of building a driver from the config.
func WithStore(store s3browser.Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithRetryPolicy sets the retry policy of proxied connections.
func WithRetryPolicy(policy transport.RetryPolicy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithOutput sets the writer objects are streamed to by Download with "-".
func WithOutput(w io.Writer) Option {
	return func(c *Client) {
		c.stdout = w
	}
}

// New creates a Client for cfg. Unless WithStore is given, the storage driver
// named by cfg.S3.Driver is built on the transport selected by cfg.Proxy.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	c := &Client{
		logger: slog.Default(),
		policy: transport.DefaultRetryPolicy(),
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		store, err := c.newStore(ctx, cfg.S3, cfg.Proxy)
		if err != nil {
			return nil, err
		}
		c.store = store
	}

	c.browser = s3browser.New(c.store, cfg.S3.Bucket, s3browser.WithLogger(c.logger))
	return c, nil
}

func (c *Client) newStore(ctx context.Context, s3cfg config.S3Config, proxyCfg config.ProxyConfig) (s3browser.Store, error) {
	driver := s3browser.DriverMinio
	if s3cfg.Driver != "" {
		d, err := s3browser.ParseDriver(s3cfg.Driver)
		if err != nil {
			return nil, err
		}
		driver = d
	}

	c.logger.Info("connecting to server",
		"server", s3cfg.Address,
		"access_key", s3cfg.AccessKey,
		"driver", driver,
	)

	proxy := proxyCfg.Descriptor()
	if proxy != nil {
		c.logger.Info("proxy enabled", "proxy", proxy.String())
	}

	rt, err := transport.New(proxy, s3cfg.UseSSL,
		transport.WithLogger(c.logger),
		transport.WithRetryPolicy(c.policy),
	)
	if err != nil {
		return nil, fmt.Errorf("build transport: %w", err)
	}

	switch driver {
	case s3browser.DriverAWS:
		return awsstore.New(ctx, awsstore.Config{
			Endpoint:  s3cfg.Address,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			Secure:    s3cfg.UseSSL,
			Region:    s3cfg.Region,
			Transport: rt,
			// The proxy transport is the only retry layer.
			DisableRetries: proxy != nil,
		})
	default:
		return miniostore.New(miniostore.Config{
			Endpoint:  s3cfg.Address,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			Secure:    s3cfg.UseSSL,
			Region:    s3cfg.Region,
			Transport: rt,
			// The proxy transport is the only retry layer.
			DisableRetries: proxy != nil,
		})
	}
}

// Browser returns the underlying browser.
func (c *Client) Browser() *s3browser.Browser {
	return c.browser
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.browser.Bucket()
}

// RunScenario runs exists, list, upload, stat, download and delete for the
// object described by data. It returns false without error when the bucket
// does not exist.
func (c *Client) RunScenario(ctx context.Context, data config.DataConfig) (bool, error) {
	if err := data.Validate(); err != nil {
		return false, err
	}
	return c.browser.RunScenario(ctx, data.Scenario())
}

// Exists reports whether the configured bucket exists.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	return c.browser.BucketExists(ctx)
}

// Buckets lists all buckets visible to the credentials.
func (c *Client) Buckets(ctx context.Context) ([]s3browser.BucketInfo, error) {
	return c.browser.ListBuckets(ctx)
}

// List lists the objects of the configured bucket.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	items, err := c.browser.ListObjects(ctx, s3browser.ListOptions{
		Prefix:    opts.Prefix,
		Recursive: opts.Recursive,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []s3browser.ObjectInfo{}
	}

	return &ListResult{
		Bucket: c.browser.Bucket(),
		Prefix: opts.Prefix,
		Items:  items,
	}, nil
}

// Upload uploads file(s) to the bucket.
// For recursive uploads, walks directory and preserves relative paths.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if opts.Recursive {
		return c.uploadRecursive(ctx, opts)
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(opts.LocalPath)
	}
	result, err := c.uploadSingle(ctx, opts.LocalPath, name)
	if err != nil {
		return nil, err
	}
	return []UploadResult{result}, nil
}

// uploadRecursive walks a directory and uploads all files. A failed file is
// reported in its result and the walk continues.
func (c *Client) uploadRecursive(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		name := opts.Name
		if name == "" {
			name = filepath.Base(opts.LocalPath)
		}
		result, uploadErr := c.uploadSingle(ctx, opts.LocalPath, name)
		if uploadErr != nil {
			return nil, uploadErr
		}
		return []UploadResult{result}, nil
	}

	var results []UploadResult
	baseDir := opts.LocalPath
	prefix := strings.Trim(opts.Name, "/")

	walkErr := filepath.WalkDir(baseDir, func(p string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			return nil
		}

		relPath, relErr := filepath.Rel(baseDir, p)
		if relErr != nil {
			results = append(results, UploadResult{
				LocalPath: p,
				Err:       fmt.Errorf("calculate relative path: %w", relErr),
			})
			return nil
		}

		name := path.Join(prefix, filepath.ToSlash(relPath))
		result, uploadErr := c.uploadSingle(ctx, p, name)
		if uploadErr != nil {
			result = UploadResult{LocalPath: p, Name: name, Err: uploadErr}
		}
		results = append(results, result)
		return nil
	})
	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

func (c *Client) uploadSingle(ctx context.Context, localPath, name string) (UploadResult, error) {
	info, err := c.browser.FPutObject(ctx, name, localPath)
	if err != nil {
		return UploadResult{}, err
	}

	return UploadResult{
		LocalPath: localPath,
		Name:      name,
		ETag:      info.ETag,
		Size:      info.Size,
		VersionID: info.VersionID,
	}, nil
}

// HasUploadErrors reports whether any upload failed.
func HasUploadErrors(results []UploadResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

// Download downloads an object to a local file or, for "-", to the client output.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("download: %w", ErrEmptyName)
	}

	if opts.LocalPath == "-" {
		return c.stream(ctx, opts.Name)
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = DownloadPrefix + path.Base(opts.Name)
	}

	if err := c.browser.FGetObject(ctx, opts.Name, localPath); err != nil {
		return nil, err
	}

	result := &DownloadResult{
		Name:      opts.Name,
		LocalPath: localPath,
	}
	if fi, err := os.Stat(localPath); err == nil {
		result.Size = fi.Size()
	}
	return result, nil
}

func (c *Client) stream(ctx context.Context, name string) (*DownloadResult, error) {
	obj, err := c.browser.GetObject(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = obj.Close() }()

	n, err := io.Copy(c.stdout, obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", name, err)
	}

	return &DownloadResult{
		Name:        name,
		LocalPath:   "-",
		ETag:        obj.Info.ETag,
		ContentType: obj.Info.ContentType,
		Size:        n,
	}, nil
}

// Stat returns the metadata of an object.
func (c *Client) Stat(ctx context.Context, name string) (s3browser.ObjectInfo, error) {
	if name == "" {
		return s3browser.ObjectInfo{}, fmt.Errorf("stat: %w", ErrEmptyName)
	}
	return c.browser.StatObject(ctx, name)
}

// Delete removes one or more objects. Every name is attempted.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.Names) == 0 {
		return nil, fmt.Errorf("delete: %w", ErrNoNames)
	}

	results := make([]DeleteResult, 0, len(opts.Names))
	for _, name := range opts.Names {
		results = append(results, c.deleteSingle(ctx, name))
	}
	return results, nil
}

func (c *Client) deleteSingle(ctx context.Context, name string) DeleteResult {
	if name == "" {
		return DeleteResult{Name: name, Err: ErrEmptyName}
	}
	if err := c.browser.RemoveObject(ctx, name); err != nil {
		return DeleteResult{Name: name, Err: err}
	}
	return DeleteResult{Name: name, Deleted: true}
}

// HasDeleteErrors returns true if any delete result has an error.
func HasDeleteErrors(results []DeleteResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

// Policy returns the bucket policy document.
func (c *Client) Policy(ctx context.Context) (string, error) {
	return c.browser.GetBucketPolicy(ctx)
}

// MakeBucket creates the configured bucket in region.
func (c *Client) MakeBucket(ctx context.Context, region string) error {
	return c.browser.MakeBucket(ctx, region)
}
