// Package awsstore implements s3browser.Store on top of aws-sdk-go-v2.
//
// It targets any S3-compatible endpoint: requests use path-style addressing
// against the configured address, and checksums are only sent when an
// operation requires them.
package awsstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sagarc03/s3browser"
)

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

// Config holds the connection settings of a Store.
type Config struct {
	// Endpoint is host[:port], without scheme.
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	Region    string
	// Transport replaces the default HTTP transport, see the transport package.
	Transport http.RoundTripper
	// DisableRetries sends every request once, leaving retries to Transport.
	DisableRetries bool
}

// Store wraps an S3 client with its transfer managers.
type Store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
}

var _ s3browser.Store = (*Store)(nil)

// New creates a Store. No request is sent until the first operation.
func New(ctx context.Context, cfg Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if strings.Contains(endpoint, "://") {
		return nil, fmt.Errorf("endpoint %q must not include a scheme", endpoint)
	}

	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	}
	if cfg.Transport != nil {
		opts = append(opts, config.WithHTTPClient(&http.Client{Transport: cfg.Transport}))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	scheme := "http"
	if cfg.Secure {
		scheme = "https"
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(scheme + "://" + endpoint)
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		if cfg.DisableRetries {
			o.Retryer = aws.NopRetryer{}
		}
	})

	return &Store{
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
	}, nil
}

func (s *Store) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) ListBuckets(ctx context.Context) ([]s3browser.BucketInfo, error) {
	out, err := s.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, err
	}

	result := make([]s3browser.BucketInfo, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		result = append(result, s3browser.BucketInfo{
			Name:         aws.ToString(b.Name),
			CreationDate: aws.ToTime(b.CreationDate),
		})
	}
	return result, nil
}

func (s *Store) ListObjects(ctx context.Context, bucket string, opts s3browser.ListOptions) ([]s3browser.ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if opts.Prefix != "" {
		input.Prefix = aws.String(opts.Prefix)
	}
	if !opts.Recursive {
		input.Delimiter = aws.String("/")
	}

	result := []s3browser.ObjectInfo{}
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, obj := range page.Contents {
			result = append(result, s3browser.ObjectInfo{
				Key:          aws.ToString(obj.Key),
				LastModified: aws.ToTime(obj.LastModified),
				Size:         aws.ToInt64(obj.Size),
				ETag:         trimETag(obj.ETag),
			})
		}
		// Common prefixes are reported as zero-size entries, like directories.
		for _, p := range page.CommonPrefixes {
			result = append(result, s3browser.ObjectInfo{Key: aws.ToString(p.Prefix)})
		}
	}
	return result, nil
}

func (s *Store) GetObject(ctx context.Context, bucket, key string) (*s3browser.Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}

	return &s3browser.Object{
		ReadCloser: out.Body,
		Info: s3browser.ObjectInfo{
			Key:          key,
			LastModified: aws.ToTime(out.LastModified),
			Size:         aws.ToInt64(out.ContentLength),
			ETag:         trimETag(out.ETag),
			ContentType:  aws.ToString(out.ContentType),
		},
	}, nil
}

func (s *Store) FPutObject(ctx context.Context, bucket, key, path string) (s3browser.UploadInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return s3browser.UploadInfo{}, err
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return s3browser.UploadInfo{}, err
	}
	if stat.IsDir() {
		return s3browser.UploadInfo{}, fmt.Errorf("%s is a directory", path)
	}

	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return s3browser.UploadInfo{}, err
	}

	return s3browser.UploadInfo{
		Bucket:    bucket,
		Key:       key,
		ETag:      trimETag(out.ETag),
		Size:      stat.Size(),
		VersionID: aws.ToString(out.VersionID),
	}, nil
}

// FGetObject downloads into a temporary file next to path and renames it on
// success, so a failed download never leaves a partial file behind.
func (s *Store) FGetObject(ctx context.Context, bucket, key, path string) error {
	tmp := path + ".part"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	_, err = s.downloader.Download(ctx, file, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}

func (s *Store) StatObject(ctx context.Context, bucket, key string) (s3browser.ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s3browser.ObjectInfo{}, err
	}

	return s3browser.ObjectInfo{
		Key:          key,
		LastModified: aws.ToTime(out.LastModified),
		Size:         aws.ToInt64(out.ContentLength),
		ETag:         trimETag(out.ETag),
		ContentType:  aws.ToString(out.ContentType),
	}, nil
}

func (s *Store) RemoveObject(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *Store) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	out, err := s.client.GetBucketPolicy(ctx, &s3.GetBucketPolicyInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.Policy), nil
}

func (s *Store) MakeBucket(ctx context.Context, bucket, region string) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}
	// us-east-1 is the implicit location and must not be sent.
	if region != "" && region != DefaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}

	_, err := s.client.CreateBucket(ctx, input)
	return err
}

func isNotFound(err error) bool {
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}

	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	// S3-compatible services do not always return the typed errors.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchBucket" || code == "404"
	}

	return false
}

func trimETag(etag *string) string {
	return strings.Trim(aws.ToString(etag), `"`)
}
