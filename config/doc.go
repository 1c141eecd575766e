// Package config provides configuration loading and validation for s3browser.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (S3BROWSER_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{config.DefaultPath}, cmd.Flags())
//	if errors.Is(err, config.ErrConfigNotFound) {
//	    // config/config.yml file not found!
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// All config keys map to environment variables with S3BROWSER_ prefix:
//   - s3.address → S3BROWSER_S3_ADDRESS
//   - s3.accessKey → S3BROWSER_S3_ACCESSKEY
//   - proxy.enabled → S3BROWSER_PROXY_ENABLED
//   - logging.level → S3BROWSER_LOGGING_LEVEL
//
// # Configuration Structure
//
//	logging:
//	  output: file          # "file" or anything else for stdout
//	  level: INFO
//	  utc_datetime: true
//	proxy:
//	  enabled: false
//	  address: proxy.local
//	  port: 3128
//	data:
//	  name: sample.txt      # remote object key
//	  file: sample.txt      # local file name
//	  upload_dir: ./upload
//	  download_dir: ./download
//	s3:
//	  address: play.min.io
//	  accessKey: ...
//	  secretKey: ...
//	  bucket: test-bucket
//	  use_ssl: true
//
// The data section is validated separately with DataConfig.Validate, since
// only the scenario needs it.
package config
