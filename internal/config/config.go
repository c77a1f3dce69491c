package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the persisted settings shared by all commands. Values left
// out of the file fall back to DefaultConfig.
type Config struct {
	// Rename defaults
	DefaultSort   string `json:"default_sort"`
	DefaultNaming string `json:"default_naming"`
	ZeroPad       int    `json:"zero_pad"`

	// Operation log settings
	EnableLogging    bool `json:"enable_logging"`
	LogRetentionDays int  `json:"log_retention_days"`

	// Video encoding settings
	FFmpegBinary     string  `json:"ffmpeg_binary"`
	EncodePreset     string  `json:"encode_preset"`
	EncodeCRF        int     `json:"encode_crf"`
	ThumbSeekSeconds float64 `json:"thumb_seek_seconds"`

	// Download settings
	DownloadTimeoutSeconds int    `json:"download_timeout_seconds"`
	DownloadUserAgent      string `json:"download_user_agent"`
	DownloadWorkers        int    `json:"download_workers"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultSort:            "name",
		DefaultNaming:          "sequential",
		ZeroPad:                0,
		EnableLogging:          true,
		LogRetentionDays:       30,
		FFmpegBinary:           "ffmpeg",
		EncodePreset:           "medium",
		EncodeCRF:              23,
		ThumbSeekSeconds:       1,
		DownloadTimeoutSeconds: 30,
		DownloadUserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		DownloadWorkers:        4,
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mediabatch", "config.json"), nil
}

// Load reads the configuration from disk
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Fill in any missing fields with defaults
	defaults := DefaultConfig()
	if cfg.DefaultSort == "" {
		cfg.DefaultSort = defaults.DefaultSort
	}
	if cfg.DefaultNaming == "" {
		cfg.DefaultNaming = defaults.DefaultNaming
	}
	if cfg.LogRetentionDays == 0 {
		cfg.LogRetentionDays = defaults.LogRetentionDays
	}
	if cfg.FFmpegBinary == "" {
		cfg.FFmpegBinary = defaults.FFmpegBinary
	}
	if cfg.EncodePreset == "" {
		cfg.EncodePreset = defaults.EncodePreset
	}
	if cfg.EncodeCRF == 0 {
		cfg.EncodeCRF = defaults.EncodeCRF
	}
	if cfg.ThumbSeekSeconds == 0 {
		cfg.ThumbSeekSeconds = defaults.ThumbSeekSeconds
	}
	if cfg.DownloadTimeoutSeconds == 0 {
		cfg.DownloadTimeoutSeconds = defaults.DownloadTimeoutSeconds
	}
	if cfg.DownloadUserAgent == "" {
		cfg.DownloadUserAgent = defaults.DownloadUserAgent
	}
	if cfg.DownloadWorkers == 0 {
		cfg.DownloadWorkers = defaults.DownloadWorkers
	}

	return &cfg, nil
}

// Save writes the configuration to disk
func (cfg *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
