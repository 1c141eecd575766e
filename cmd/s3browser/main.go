package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/s3browser/clientcli"
	"github.com/sagarc03/s3browser/config"
	"github.com/sagarc03/s3browser/logging"
)

var (
	version = "dev"

	cfgFile    string
	jsonOutput bool
	quiet      bool

	closeLog = func() error { return nil }
)

// skipConfig marks commands that run without a loaded config.
const skipConfig = "skip-config"

var rootCmd = &cobra.Command{
	Use:     "s3browser",
	Version: version,
	Short:   "Basic operations against an S3-compatible bucket",
	Long: `s3browser talks to an S3-compatible endpoint, directly or through an HTTP proxy.

Without a subcommand it runs the demo scenario on the configured bucket:
check the bucket exists, list it, upload the data file, stat it, download it
and delete it again. If the bucket does not exist nothing else is attempted.

Configuration is read from config/config.yml (see --config) and can be
overridden with S3BROWSER_* environment variables.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	Args:               cobra.NoArgs,
	PersistentPreRunE:  setup,
	PersistentPostRunE: func(*cobra.Command, []string) error { return closeLog() },
	RunE:               runScenario,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath, "config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().String("endpoint", "", "server address host:port (env: S3BROWSER_S3_ADDRESS)")
	rootCmd.PersistentFlags().String("bucket", "", "bucket name (env: S3BROWSER_S3_BUCKET)")
	rootCmd.PersistentFlags().String("driver", "", "storage driver: minio, aws (env: S3BROWSER_S3_DRIVER)")
	rootCmd.PersistentFlags().String("log-level", "", "DEBUG, INFO, WARNING, ERROR or CRITICAL (env: S3BROWSER_LOGGING_LEVEL)")

	rootCmd.AddCommand(existsCmd)
	rootCmd.AddCommand(bucketsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(makeBucketCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// A missing config file has already been reported.
		if !errors.Is(err, config.ErrConfigNotFound) {
			_ = getFormatter().FormatError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// setup loads the config and installs the logger before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipConfig] == "true" {
		return nil
	}

	cfg, err := config.Load([]string{cfgFile}, cmd.Flags())
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			fmt.Fprintf(os.Stderr, "%s file not found!\n", cfgFile)
		}
		return err
	}

	logger, closeFn, err := logging.New(cfg.Logging, os.Stdout)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	closeLog = closeFn

	slog.SetDefault(logger)
	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(logger.Handler(), slog.LevelInfo).Writer())

	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates a client for the config loaded by setup.
func getClient(cmd *cobra.Command) (*clientcli.Client, error) {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	return clientcli.New(cmd.Context(), cfg, clientcli.WithLogger(slog.Default()))
}

func runScenario(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	logger.Info("Starting S3 Browser ...")

	client, err := getClient(cmd)
	if err != nil {
		logger.Log(ctx, logging.LevelCritical, "failed to create client", "err", err)
		return err
	}

	ran, err := client.RunScenario(ctx, cfg.Data)
	if err != nil {
		logger.Log(ctx, logging.LevelCritical, "scenario failed", "err", err)
		return err
	}
	if !ran {
		logger.Warn("bucket does not exist, skipping scenario", "bucket", client.Bucket())
	}

	logger.Info("S3 Browser Done!")
	return nil
}
