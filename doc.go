// Package s3browser provides a small synchronous facade over an S3-compatible
// object storage client, bound to a single bucket.
//
// Every Browser operation logs its intent, performs exactly one call on the
// underlying Store and logs the outcome. Failures are returned as
// *OperationError values matching ErrOperationFailed; the facade never exits
// the process, the caller decides what a failure means.
//
// # Key Components
//
//   - Browser: the facade, one bucket per instance
//   - Store: the driver interface (see the miniostore and awsstore packages)
//   - Scenario: the fixed exists, list, upload, stat, download, delete walkthrough
//
// # Example Usage
//
//	store, err := miniostore.New(miniostore.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b := s3browser.New(store, "test-bucket", s3browser.WithLogger(slog.Default()))
//	exists, err := b.BucketExists(ctx)
//
// Proxy routing and retry policy are configured on the HTTP transport, see the
// transport package.
package s3browser
