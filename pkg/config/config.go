// Package config loads configuration from a YAML file and environment
// variables. Environment variables take precedence over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the static configuration surface: where the archive
// lives, how long listings stay fresh, and how downloads behave.
type Config struct {
	// Remote archive
	Host     string `yaml:"host"`
	BasePath string `yaml:"base_path"`
	Port     int    `yaml:"port"`

	// Connection
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Listing cache
	TTLSeconds int    `yaml:"ttl_seconds"`
	CacheDir   string `yaml:"cache_dir"`

	// Downloads
	DownloadDir       string `yaml:"download_dir"`
	PreserveStructure bool   `yaml:"preserve_structure"`
	MaxConcurrent     int    `yaml:"max_concurrent"`
	BufferSize        int    `yaml:"buffer_size"`
	Overwrite         bool   `yaml:"overwrite"`

	// Parallel listing ceiling
	MaxListings int `yaml:"max_listings"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the configuration for the public DATASUS archive.
func Default() *Config {
	return &Config{
		Host:           "ftp.datasus.gov.br",
		BasePath:       "/dissemin/publicos",
		Port:           21,
		TimeoutSeconds: 30,
		TTLSeconds:     300,
		CacheDir:       ".susfs-cache",
		DownloadDir:    "downloads",
		MaxConcurrent:  4,
		BufferSize:     8192,
		MaxListings:    4,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// Load reads path (optional, "" skips the file), then applies
// environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Host = envOr("SUSFS_HOST", cfg.Host)
	cfg.BasePath = envOr("SUSFS_BASE_PATH", cfg.BasePath)
	cfg.Port = envInt("SUSFS_PORT", cfg.Port)
	cfg.TimeoutSeconds = envInt("SUSFS_TIMEOUT_SECONDS", cfg.TimeoutSeconds)
	cfg.TTLSeconds = envInt("SUSFS_TTL_SECONDS", cfg.TTLSeconds)
	cfg.CacheDir = envOr("SUSFS_CACHE_DIR", cfg.CacheDir)
	cfg.DownloadDir = envOr("SUSFS_DOWNLOAD_DIR", cfg.DownloadDir)
	cfg.MaxConcurrent = envInt("SUSFS_MAX_CONCURRENT", cfg.MaxConcurrent)
	cfg.BufferSize = envInt("SUSFS_BUFFER_SIZE", cfg.BufferSize)
	cfg.MaxListings = envInt("SUSFS_MAX_LISTINGS", cfg.MaxListings)
	cfg.LogLevel = envOr("SUSFS_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("SUSFS_LOG_FORMAT", cfg.LogFormat)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("config: host must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.TTLSeconds <= 0 {
		return fmt.Errorf("config: ttl_seconds must be positive")
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("config: max_concurrent must be positive")
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("config: buffer_size must be positive")
	}
	return nil
}

// Timeout returns the connection timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TTL returns the cache TTL as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
