package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	General  GeneralConfig  `mapstructure:"general"`
	Download DownloadConfig `mapstructure:"download"`
	UI       UIConfig       `mapstructure:"ui"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

// ServerConfig holds the validation backend location
type ServerConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Endpoints overrides the full URL of individual tools, keyed by tool id
	Endpoints map[string]string `mapstructure:"endpoints"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GeneralConfig holds general application configuration
type GeneralConfig struct {
	DefaultTimeout int    `mapstructure:"default_timeout"`
	ConfigPath     string `mapstructure:"config_path"`
}

// DownloadConfig controls where result reports are saved
type DownloadConfig struct {
	Dir       string `mapstructure:"dir"`
	Overwrite bool   `mapstructure:"overwrite"`
}

// UIConfig holds user interface configuration
type UIConfig struct {
	InteractiveMode bool `mapstructure:"interactive_mode"`
	PreviewMaxLines int  `mapstructure:"preview_max_lines"`
}

// ArchiveConfig holds the optional S3/R2 report archive configuration
type ArchiveConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	AccountID       string `mapstructure:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
	// LinkExpiry is how long presigned report links stay valid, 0 disables them
	LinkExpiry time.Duration `mapstructure:"link_expiry"`
}

// Load loads configuration from multiple sources with priority:
// 1. Command line flags (highest)
// 2. Environment variables
// 3. Configuration file
// 4. Defaults (lowest)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("TFBV")
	v.AutomaticEnv()

	v.BindEnv("server.base_url", "TFBV_SERVER_BASE_URL")
	v.BindEnv("log.level", "TFBV_LOG_LEVEL")
	v.BindEnv("log.format", "TFBV_LOG_FORMAT")
	v.BindEnv("general.default_timeout", "TFBV_DEFAULT_TIMEOUT")
	v.BindEnv("download.dir", "TFBV_DOWNLOAD_DIR")
	v.BindEnv("download.overwrite", "TFBV_DOWNLOAD_OVERWRITE")
	v.BindEnv("ui.interactive_mode", "TFBV_UI_INTERACTIVE_MODE")
	v.BindEnv("ui.preview_max_lines", "TFBV_UI_PREVIEW_MAX_LINES")
	v.BindEnv("archive.enabled", "TFBV_ARCHIVE_ENABLED")
	v.BindEnv("archive.account_id", "TFBV_ARCHIVE_ACCOUNT_ID")
	v.BindEnv("archive.access_key_id", "TFBV_ARCHIVE_ACCESS_KEY_ID")
	v.BindEnv("archive.access_key_secret", "TFBV_ARCHIVE_ACCESS_KEY_SECRET")
	v.BindEnv("archive.bucket_name", "TFBV_ARCHIVE_BUCKET_NAME")
	v.BindEnv("archive.endpoint", "TFBV_ARCHIVE_ENDPOINT")
	v.BindEnv("archive.region", "TFBV_ARCHIVE_REGION")
	v.BindEnv("archive.prefix", "TFBV_ARCHIVE_PREFIX")
	v.BindEnv("archive.link_expiry", "TFBV_ARCHIVE_LINK_EXPIRY")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")

		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.tfbv")
		v.AddConfigPath("/etc/tfbv/")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error - we can use defaults and env vars
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.General.ConfigPath = v.ConfigFileUsed()

	if config.Download.Dir == "" {
		config.Download.Dir = DefaultDownloadDir()
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("general.default_timeout", 300)

	v.SetDefault("download.dir", "")
	v.SetDefault("download.overwrite", false)

	v.SetDefault("ui.interactive_mode", true)
	v.SetDefault("ui.preview_max_lines", 2000)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.endpoint", "auto")
	v.SetDefault("archive.region", "auto")
	v.SetDefault("archive.prefix", "reports")
	v.SetDefault("archive.link_expiry", time.Hour)
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.toml"
	}
	return filepath.Join(homeDir, ".tfbv", "config.toml")
}

// DefaultDownloadDir returns the user's Downloads directory, falling back to
// the working directory when no home directory is known
func DefaultDownloadDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, "Downloads")
}
