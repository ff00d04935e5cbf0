package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Media server
	ServerURL   string // Base URL of the host media server
	ServerToken string // API token used for the Authorization header

	// HTTP client behaviour
	RequestTimeout   time.Duration // Per-request timeout against the media server
	RetryMaxAttempts int           // Attempts per segment write before giving up

	// Caching
	CacheTTL time.Duration // How long a fetched segment list stays fresh

	// Server
	ServerPort string

	// Paths
	JournalFile string // $CONFIG_DIR/segmentarr.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	viper.SetDefault("RETRY_MAX_ATTEMPTS", 4)
	viper.SetDefault("CACHE_TTL_MINUTES", 5)
	viper.SetDefault("SERVER_PORT", "8686")
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "segmentarr")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// Media server
		ServerURL:   strings.TrimRight(viper.GetString("SERVER_URL"), "/"),
		ServerToken: viper.GetString("SERVER_TOKEN"),

		// HTTP client behaviour
		RequestTimeout:   time.Duration(viper.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		RetryMaxAttempts: viper.GetInt("RETRY_MAX_ATTEMPTS"),

		// Caching
		CacheTTL: time.Duration(viper.GetInt("CACHE_TTL_MINUTES")) * time.Minute,

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Paths
		JournalFile: filepath.Join(configDir, "segmentarr.db"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate required fields
	if config.ServerURL == "" {
		return nil, fmt.Errorf("SERVER_URL is required")
	}
	if _, err := url.Parse(config.ServerURL); err != nil {
		return nil, fmt.Errorf("SERVER_URL is not a valid URL: %w", err)
	}
	if config.ServerToken == "" {
		return nil, fmt.Errorf("SERVER_TOKEN is required")
	}
	if config.RetryMaxAttempts < 1 {
		return nil, fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}

	return config, nil
}
