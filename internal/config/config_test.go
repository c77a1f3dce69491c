package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	want := &Config{
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

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("DefaultConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigPath(t *testing.T) {
	path, err := ConfigPath()
	if err != nil {
		t.Errorf("ConfigPath() error = %v, want nil", err)
	}

	// Should be an absolute path
	if !filepath.IsAbs(path) {
		t.Errorf("ConfigPath() = %v, want absolute path", path)
	}

	// Check that it contains the .mediabatch directory
	dir := filepath.Dir(path)
	if filepath.Base(dir) != ".mediabatch" {
		t.Errorf("ConfigPath() = %v, want path containing .mediabatch directory", path)
	}

	// Check that it ends with config.json
	if filepath.Base(path) != "config.json" {
		t.Errorf("ConfigPath() = %v, want path ending with config.json", path)
	}
}

func TestLoad(t *testing.T) {
	t.Run("file_not_exists", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		cfg, err := Load()
		if err != nil {
			t.Errorf("Load() with no file error = %v, want nil", err)
		}

		// Should return default config
		want := DefaultConfig()
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("Load() with no file mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("valid_config", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Setenv("HOME", tempDir)

		configDir := filepath.Join(tempDir, ".mediabatch")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatalf("Failed to create config dir: %v", err)
		}

		configData := []byte(`{
			"default_sort": "number",
			"default_naming": "numbers-only",
			"zero_pad": 3,
			"enable_logging": false,
			"log_retention_days": 60,
			"ffmpeg_binary": "/usr/local/bin/ffmpeg",
			"encode_preset": "slow",
			"encode_crf": 28,
			"thumb_seek_seconds": 2.5,
			"download_timeout_seconds": 120,
			"download_user_agent": "custom-agent/1.0",
			"download_workers": 8
		}`)
		configPath := filepath.Join(configDir, "config.json")
		if err := os.WriteFile(configPath, configData, 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		want := &Config{
			DefaultSort:            "number",
			DefaultNaming:          "numbers-only",
			ZeroPad:                3,
			EnableLogging:          false,
			LogRetentionDays:       60,
			FFmpegBinary:           "/usr/local/bin/ffmpeg",
			EncodePreset:           "slow",
			EncodeCRF:              28,
			ThumbSeekSeconds:       2.5,
			DownloadTimeoutSeconds: 120,
			DownloadUserAgent:      "custom-agent/1.0",
			DownloadWorkers:        8,
		}

		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("Load() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("partial_config", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Setenv("HOME", tempDir)

		configDir := filepath.Join(tempDir, ".mediabatch")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatalf("Failed to create config dir: %v", err)
		}

		configData := []byte(`{
			"default_sort": "number",
			"log_retention_days": 60
		}`)
		configPath := filepath.Join(configDir, "config.json")
		if err := os.WriteFile(configPath, configData, 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Missing fields are filled in with defaults
		if cfg.DefaultSort != "number" {
			t.Errorf("Load() DefaultSort = %q, want %q", cfg.DefaultSort, "number")
		}
		if cfg.DefaultNaming != "sequential" {
			t.Errorf("Load() DefaultNaming = %q, want default %q", cfg.DefaultNaming, "sequential")
		}
		if cfg.LogRetentionDays != 60 {
			t.Errorf("Load() LogRetentionDays = %d, want %d", cfg.LogRetentionDays, 60)
		}
		if cfg.FFmpegBinary != "ffmpeg" {
			t.Errorf("Load() FFmpegBinary = %q, want default %q", cfg.FFmpegBinary, "ffmpeg")
		}
		if cfg.EncodeCRF != 23 {
			t.Errorf("Load() EncodeCRF = %d, want default %d", cfg.EncodeCRF, 23)
		}
		if cfg.DownloadWorkers != 4 {
			t.Errorf("Load() DownloadWorkers = %d, want default %d", cfg.DownloadWorkers, 4)
		}
		// Booleans absent from the file stay false
		if cfg.EnableLogging {
			t.Error("Load() EnableLogging = true, want false when not set in JSON")
		}
	})

	t.Run("invalid_json", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Setenv("HOME", tempDir)

		configDir := filepath.Join(tempDir, ".mediabatch")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatalf("Failed to create config dir: %v", err)
		}

		configPath := filepath.Join(configDir, "config.json")
		if err := os.WriteFile(configPath, []byte("invalid json"), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		_, err := Load()
		if err == nil {
			t.Error("Load() with invalid JSON error = nil, want error")
		}
	})
}

func TestSave(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	cfg := &Config{
		DefaultSort:            "number",
		DefaultNaming:          "text-only",
		ZeroPad:                2,
		EnableLogging:          false,
		LogRetentionDays:       90,
		FFmpegBinary:           "ffmpeg",
		EncodePreset:           "fast",
		EncodeCRF:              20,
		ThumbSeekSeconds:       0.5,
		DownloadTimeoutSeconds: 45,
		DownloadUserAgent:      "test-agent",
		DownloadWorkers:        2,
	}

	err := cfg.Save()
	if err != nil {
		t.Fatalf("Save() error = %v, want nil", err)
	}

	// Verify file was created
	configFile := filepath.Join(tempDir, ".mediabatch", "config.json")
	data, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatalf("Failed to read saved config: %v", err)
	}

	// Parse back to verify content
	var saved Config
	err = json.Unmarshal(data, &saved)
	if err != nil {
		t.Fatalf("Failed to parse saved config: %v", err)
	}

	if diff := cmp.Diff(cfg, &saved); diff != "" {
		t.Errorf("Saved config mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.DefaultSort = "number"
	cfg.ZeroPad = 4
	cfg.DownloadWorkers = 16

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v, want nil", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("Round trip mismatch (-want +got):\n%s", diff)
	}
}
