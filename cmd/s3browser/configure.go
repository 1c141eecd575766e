package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/s3browser/clientcli"
	"github.com/sagarc03/s3browser/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Write the config file interactively",
	Long: `Write the config file interactively.

You will be prompted for:
  - Server address (host:port)
  - Access key and secret key
  - Bucket
  - Whether to use TLS and which driver to use
  - Optional HTTP proxy

Values from an existing config file are offered as defaults. The
connection is tested before saving.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: "true"},
	RunE:        runConfigure,
}

var configureShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging the config file, environment
variables and flags.

Secrets are hidden by default; use --show-secrets to reveal them.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: "true"},
	RunE:        runConfigureShow,
}

var showSecrets bool

func init() {
	configureCmd.AddCommand(configureShowCmd)
	configureShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load([]string{cfgFile}, nil)
	if err != nil {
		cfg, err = config.Default()
		if err != nil {
			return err
		}
	}

	s3cfg := &cfg.S3
	if s3cfg.Address, err = promptString("Server address (host:port)", s3cfg.Address, validateAddress); err != nil {
		return handlePromptError(err)
	}
	if s3cfg.AccessKey, err = promptString("Access Key", s3cfg.AccessKey, nil); err != nil {
		return handlePromptError(err)
	}
	if s3cfg.SecretKey, err = promptSecret("Secret Key", s3cfg.SecretKey); err != nil {
		return handlePromptError(err)
	}
	if s3cfg.Bucket, err = promptString("Bucket", s3cfg.Bucket, required("bucket")); err != nil {
		return handlePromptError(err)
	}
	s3cfg.UseSSL = confirm("Use TLS")

	driverPrompt := promptui.Select{
		Label: "Driver",
		Items: []string{"minio", "aws"},
	}
	if s3cfg.Driver == "aws" {
		driverPrompt.CursorPos = 1
	}
	if _, s3cfg.Driver, err = driverPrompt.Run(); err != nil {
		return handlePromptError(err)
	}

	cfg.Proxy.Enabled = confirm("Route requests through an HTTP proxy")
	if cfg.Proxy.Enabled {
		if cfg.Proxy.Address, err = promptString("Proxy address", cfg.Proxy.Address, required("proxy address")); err != nil {
			return handlePromptError(err)
		}
		port, promptErr := promptString("Proxy port", strconv.Itoa(cfg.Proxy.Port), validatePort)
		if promptErr != nil {
			return handlePromptError(promptErr)
		}
		cfg.Proxy.Port, _ = strconv.Atoi(port)
	}

	fmt.Print("Testing connection... ")
	if connErr := testConnection(cmd.Context(), cfg); connErr != nil {
		fmt.Println("FAILED")
		fmt.Printf("Warning: Could not reach bucket: %v\n", connErr)

		if !confirm("Save config anyway") {
			fmt.Println("Cancelled.")
			return nil
		}
	} else {
		fmt.Println("OK")
	}

	if err := cfg.Save(cfgFile); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Config written to %s.\n", cfgFile)
	return nil
}

func runConfigureShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load([]string{cfgFile}, cmd.Flags())
	if err != nil {
		return err
	}

	shown := *cfg
	if !showSecrets {
		shown.S3.SecretKey = maskSecret(shown.S3.SecretKey)
	}

	fmt.Printf("Config file: %s\n\n", cfgFile)
	fmt.Printf("Address:     %s\n", shown.S3.Address)
	fmt.Printf("Access key:  %s\n", shown.S3.AccessKey)
	fmt.Printf("Secret key:  %s\n", shown.S3.SecretKey)
	fmt.Printf("Bucket:      %s\n", shown.S3.Bucket)
	fmt.Printf("Use TLS:     %t\n", shown.S3.UseSSL)
	fmt.Printf("Driver:      %s\n", shown.S3.Driver)
	if shown.Proxy.Enabled {
		fmt.Printf("Proxy:       %s\n", shown.Proxy.Descriptor())
	} else {
		fmt.Println("Proxy:       disabled")
	}
	fmt.Printf("Log level:   %s\n", shown.Logging.Level)
	return nil
}

// testConnection checks that the configured bucket can be reached.
func testConnection(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := clientcli.New(ctx, cfg)
	if err != nil {
		return err
	}

	exists, err := client.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", cfg.S3.Bucket)
	}
	return nil
}

func promptString(label, def string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Validate:  validate,
	}
	value, err := prompt.Run()
	return strings.TrimSpace(value), err
}

// promptSecret keeps the current secret when the input is left empty.
func promptSecret(label, current string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}
	value, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if value == "" {
		return current, nil
	}
	return value, nil
}

func confirm(label string) bool {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	return err == nil
}

func required(name string) promptui.ValidateFunc {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func validateAddress(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return errors.New("server address is required")
	}
	if strings.Contains(input, "://") {
		return errors.New("address must be host:port without a scheme")
	}
	return nil
}

func validatePort(input string) error {
	port, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return errors.New("port must be a number")
	}
	if port < 1 || port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
