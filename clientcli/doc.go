// Package clientcli provides the command-level client used by the s3browser CLI.
//
// A Client wraps an s3browser.Browser built from a config.Config: it selects
// the storage driver (minio or aws), builds the transport (direct or through
// the configured proxy) and exposes operations returning typed results that a
// Formatter renders for humans or as JSON.
//
// # Basic Usage
//
//	cfg, err := config.Load([]string{config.DefaultPath}, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(ctx, cfg, clientcli.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath: "./sample.txt",
//		Name:      "sample.txt",
//	})
//
// # Output
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	_ = formatter.FormatUpload(os.Stdout, results)
package clientcli
