package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate validates the configuration and returns an error if invalid
func Validate(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}

	if err := validateGeneralConfig(&config.General); err != nil {
		return fmt.Errorf("general config validation failed: %w", err)
	}

	if err := validateUIConfig(&config.UI); err != nil {
		return fmt.Errorf("ui config validation failed: %w", err)
	}

	if err := validateArchiveConfig(&config.Archive); err != nil {
		return fmt.Errorf("archive config validation failed: %w", err)
	}

	return nil
}

// validateServerConfig validates the backend URLs
func validateServerConfig(config *ServerConfig) error {
	if strings.TrimSpace(config.BaseURL) == "" {
		return fmt.Errorf("base_url is required")
	}

	if !isValidHTTPURL(config.BaseURL) {
		return fmt.Errorf("invalid base_url: %s", config.BaseURL)
	}

	for tool, endpoint := range config.Endpoints {
		if !isValidHTTPURL(endpoint) {
			return fmt.Errorf("invalid endpoint for %s: %s", tool, endpoint)
		}
	}

	return nil
}

// validateLogConfig validates log configuration
func validateLogConfig(config *LogConfig) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	level := strings.ToLower(config.Level)
	if !validLevels[level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error, fatal, panic)", config.Level)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}

	format := strings.ToLower(config.Format)
	if !validFormats[format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", config.Format)
	}

	return nil
}

// validateGeneralConfig validates general configuration
func validateGeneralConfig(config *GeneralConfig) error {
	if config.DefaultTimeout <= 0 {
		return fmt.Errorf("default_timeout must be positive, got: %d", config.DefaultTimeout)
	}

	return nil
}

func validateUIConfig(config *UIConfig) error {
	if config.PreviewMaxLines < 0 {
		return fmt.Errorf("preview_max_lines must be non-negative, got: %d", config.PreviewMaxLines)
	}
	return nil
}

// validateArchiveConfig validates the archive section, only when it is enabled
func validateArchiveConfig(config *ArchiveConfig) error {
	if !config.Enabled {
		return nil
	}

	if strings.TrimSpace(config.AccessKeyID) == "" {
		return fmt.Errorf("access_key_id is required")
	}

	if strings.TrimSpace(config.AccessKeySecret) == "" {
		return fmt.Errorf("access_key_secret is required")
	}

	if strings.TrimSpace(config.BucketName) == "" {
		return fmt.Errorf("bucket_name is required")
	}

	if !isValidBucketName(config.BucketName) {
		return fmt.Errorf("invalid bucket_name format: %s", config.BucketName)
	}

	// R2 derives its endpoint from the account id
	if (config.Endpoint == "" || config.Endpoint == "auto") && strings.TrimSpace(config.AccountID) == "" {
		return fmt.Errorf("account_id is required when endpoint is auto")
	}

	if config.Endpoint != "" && config.Endpoint != "auto" && !isValidHTTPURL(config.Endpoint) {
		return fmt.Errorf("invalid endpoint: %s", config.Endpoint)
	}

	// S3 presigned URLs are limited to seven days
	if config.LinkExpiry < 0 || config.LinkExpiry > 7*24*time.Hour {
		return fmt.Errorf("link_expiry must be between 0 and 168h, got: %s", config.LinkExpiry)
	}

	return nil
}

func isValidHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// isValidBucketName checks if the bucket name follows basic S3 naming rules
func isValidBucketName(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}

	// Must start and end with letter or number
	if !isAlphaNum(name[0]) || !isAlphaNum(name[len(name)-1]) {
		return false
	}

	for i, char := range name {
		if !isAlphaNum(byte(char)) && char != '-' && char != '.' {
			return false
		}

		// Cannot have consecutive periods or period-dash combinations
		if i > 0 {
			prev := name[i-1]
			if char == '.' && (prev == '.' || prev == '-') {
				return false
			}
			if char == '-' && prev == '.' {
				return false
			}
		}
	}

	return true
}

// isAlphaNum checks if a byte is alphanumeric
func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
