package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/s3browser"
	"github.com/sagarc03/s3browser/transport"
)

// DefaultPath is the config file read when no --config flag is given.
var DefaultPath = filepath.Join("config", "config.yml")

// ErrConfigNotFound is returned by Load when a config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for s3browser.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Proxy   ProxyConfig   `mapstructure:"proxy" yaml:"proxy"`
	Data    DataConfig    `mapstructure:"data" yaml:"data"`
	S3      S3Config      `mapstructure:"s3" yaml:"s3"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Output "file" writes to a daily file under Dir, anything else to stdout.
	Output      string `mapstructure:"output" yaml:"output"`
	Level       string `mapstructure:"level" yaml:"level" validate:"required"`
	UTCDatetime bool   `mapstructure:"utc_datetime" yaml:"utc_datetime"`
	Dir         string `mapstructure:"dir" yaml:"dir" validate:"required"`
	Format      string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// ToFile reports whether logs go to the daily log file.
func (c LoggingConfig) ToFile() bool {
	return c.Output == "file"
}

// ProxyConfig holds HTTP proxy configuration.
type ProxyConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Address string `mapstructure:"address" yaml:"address" validate:"required_if=Enabled true"`
	Port    int    `mapstructure:"port" yaml:"port" validate:"required_if=Enabled true,min=0,max=65535"`
}

// Descriptor returns the proxy to route through, or nil when disabled.
func (c ProxyConfig) Descriptor() *transport.Proxy {
	if !c.Enabled {
		return nil
	}
	return &transport.Proxy{Address: c.Address, Port: c.Port}
}

// DataConfig names the object and local files used by the scenario.
type DataConfig struct {
	Name        string `mapstructure:"name" yaml:"name" validate:"required"`
	File        string `mapstructure:"file" yaml:"file" validate:"required"`
	UploadDir   string `mapstructure:"upload_dir" yaml:"upload_dir" validate:"required"`
	DownloadDir string `mapstructure:"download_dir" yaml:"download_dir" validate:"required"`
}

// Validate checks the fields the scenario needs. Load skips this section
// because single-operation commands do not use it.
func (c DataConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate data config: %w", err)
	}
	return nil
}

// Scenario returns the upload and download paths derived from the section.
func (c DataConfig) Scenario() s3browser.Scenario {
	return s3browser.NewScenario(c.Name, c.File, c.UploadDir, c.DownloadDir)
}

// S3Config holds the storage endpoint configuration.
type S3Config struct {
	Address   string `mapstructure:"address" yaml:"address" validate:"required"`
	AccessKey string `mapstructure:"accessKey" yaml:"accessKey"`
	SecretKey string `mapstructure:"secretKey" yaml:"secretKey"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket" validate:"required"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
	Region    string `mapstructure:"region" yaml:"region,omitempty"`
	Driver    string `mapstructure:"driver" yaml:"driver" validate:"oneof=minio aws"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"endpoint":  "s3.address",
	"bucket":    "s3.bucket",
	"driver":    "s3.driver",
	"log-level": "logging.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey, ok := flagToViperKey[f.Name]
		if !ok {
			return
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Every key
// gets a default so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.utc_datetime", false)
	v.SetDefault("logging.dir", "logs")
	v.SetDefault("logging.format", "text")

	v.SetDefault("proxy.enabled", false)
	v.SetDefault("proxy.address", "")
	v.SetDefault("proxy.port", 0)

	v.SetDefault("data.name", "")
	v.SetDefault("data.file", "")
	v.SetDefault("data.upload_dir", ".")
	v.SetDefault("data.download_dir", ".")

	v.SetDefault("s3.address", "")
	v.SetDefault("s3.accessKey", "")
	v.SetDefault("s3.secretKey", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.driver", string(s3browser.DriverMinio))
}

// Default returns the configuration made of defaults only. It is not
// validated.
func Default() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal defaults: %w", err)
	}
	return &cfg, nil
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones);
//     a missing file yields ErrConfigNotFound
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	for i, cf := range configFiles {
		if _, err := os.Stat(cf); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, cf)
			}
			return nil, fmt.Errorf("stat config file: %w", err)
		}

		v.SetConfigFile(cf)
		read := v.MergeInConfig
		if i == 0 {
			read = v.ReadInConfig
		}
		if err := read(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", cf, err)
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("S3BROWSER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.StructExcept(&cfg, "Data"); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to the specified path as YAML.
// Creates the parent directory if it doesn't exist.
func (c *Config) Save(path string) error {
	cleanPath := filepath.Clean(path)

	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// The file holds the secret key.
	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
