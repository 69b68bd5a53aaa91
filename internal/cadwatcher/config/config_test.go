package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Precedence(t *testing.T) {
	cwd, _ := os.Getwd()
	tmpDir := t.TempDir()

	// Flag overrides Env
	t.Setenv("CADWATCHER_ROOT", tmpDir)

	cfg, err := Load([]string{"-root", cwd})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	absCwd, _ := filepath.Abs(cwd)
	if cfg.ScanRoot != absCwd {
		t.Errorf("Expected root %s, got %s", absCwd, cfg.ScanRoot)
	}

	// Env overrides Default
	cfg, err = Load([]string{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	absTmp, _ := filepath.Abs(tmpDir)
	if cfg.ScanRoot != absTmp {
		t.Errorf("Expected Env root (%s), got %s", absTmp, cfg.ScanRoot)
	}
}

func TestLoad_Validation(t *testing.T) {
	if _, err := Load([]string{"-root", "/non/existent/path/99999"}); err == nil {
		t.Error("Expected error for invalid root, got nil")
	}

	if _, err := Load([]string{"-headless"}); err == nil {
		t.Error("Expected error for headless mode without files, got nil")
	}

	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	if _, err := Load([]string{}); err == nil {
		t.Error("Expected error for MinIO endpoint without bucket, got nil")
	}

	t.Setenv("MINIO_BUCKET", "models")
	t.Setenv("MINIO_SSL", "sometimes")
	if _, err := Load([]string{}); err == nil {
		t.Error("Expected error for invalid MINIO_SSL, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CADWATCHER_ROOT", "")
	t.Setenv("CADWATCHER_SETTINGS", "")
	t.Setenv("MINIO_ENDPOINT", "")

	cfg, err := Load([]string{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cwd, _ := os.Getwd()
	absCwd, _ := filepath.Abs(cwd)
	if cfg.ScanRoot != absCwd {
		t.Errorf("Expected default root %s, got %s", absCwd, cfg.ScanRoot)
	}
	if filepath.Base(cfg.SettingsPath) != "path_config.json" {
		t.Errorf("Expected default settings file, got %s", cfg.SettingsPath)
	}
	if cfg.ErrorLogPath != "errors.log" || cfg.LogPath != "app.log" {
		t.Errorf("Unexpected log defaults: %s, %s", cfg.LogPath, cfg.ErrorLogPath)
	}
	if cfg.Minio.Enabled() {
		t.Error("Expected MinIO publishing to be disabled by default")
	}
}

func TestLoad_HeadlessInputs(t *testing.T) {
	cfg, err := Load([]string{"-headless", "-yes", "parts/a.stp", "/abs/b.step"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Headless || !cfg.AssumeYes {
		t.Error("Expected headless and yes flags to be set")
	}
	if len(cfg.Inputs) != 2 {
		t.Fatalf("Expected 2 inputs, got %v", cfg.Inputs)
	}
	for _, in := range cfg.Inputs {
		if !filepath.IsAbs(in) {
			t.Errorf("Expected absolute input, got %s", in)
		}
	}
	if cfg.Inputs[1] != "/abs/b.step" {
		t.Errorf("Expected order to be kept, got %v", cfg.Inputs)
	}
}
