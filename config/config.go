// Package config loads the storage API's process configuration from
// environment variables and validates it before anything else starts.
package config

import (
	"fmt"
	"os"
)

// Environment variable names.
const (
	EnvPublicKeyPath  = "PATH_PUBLIC_KEY"
	EnvPrivateKeyPath = "PATH_PRIVATE_KEY"
	EnvTokenIssuer    = "TOKEN_ISSUER"
	EnvListenAddr     = "LISTEN_ADDR"
	EnvStorageRoot    = "STORAGE_ROOT"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
)

// Config holds the complete configuration for the storage API server.
type Config struct {
	// Issuer is the identity asserted in issued tokens and required of
	// verified ones.
	Issuer string

	// PublicKeyPath and PrivateKeyPath locate the DER-encoded RSA key files.
	PublicKeyPath  string
	PrivateKeyPath string

	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string

	// StorageRoot is the directory file payloads are stored beneath.
	StorageRoot string

	// LogLevel is a logrus level name ("debug", "info", ...).
	LogLevel string

	// LogFormat selects the log encoding: "text" or "json".
	LogFormat string
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{
		Issuer:         os.Getenv(EnvTokenIssuer),
		PublicKeyPath:  os.Getenv(EnvPublicKeyPath),
		PrivateKeyPath: os.Getenv(EnvPrivateKeyPath),
		ListenAddr:     envOr(EnvListenAddr, ":8080"),
		StorageRoot:    envOr(EnvStorageRoot, "data"),
		LogLevel:       envOr(EnvLogLevel, "info"),
		LogFormat:      envOr(EnvLogFormat, "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is valid and complete.
func (c *Config) Validate() error {
	if c.Issuer == "" {
		return fmt.Errorf("%s is required", EnvTokenIssuer)
	}
	if c.PublicKeyPath == "" {
		return fmt.Errorf("%s is required", EnvPublicKeyPath)
	}
	if c.PrivateKeyPath == "" {
		return fmt.Errorf("%s is required", EnvPrivateKeyPath)
	}
	if c.StorageRoot == "" {
		return fmt.Errorf("%s must not be empty", EnvStorageRoot)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvLogFormat, "text", "json", c.LogFormat)
	}

	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
