package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type AppConfig struct {
	SettingsPath  string
	ScanRoot      string
	RecursiveMode bool
	LogPath       string
	ErrorLogPath  string
	MetricsAddr   string
	Headless      bool
	AssumeYes     bool
	Debug         bool
	Inputs        []string
	Minio         MinioConfig
}

// MinioConfig enables publishing of exported GLBs when Endpoint and Bucket are set.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	SSL       bool
}

func (m MinioConfig) Enabled() bool {
	return m.Endpoint != "" && m.Bucket != ""
}

// MarshalJSON keeps credentials out of the logs.
func (m MinioConfig) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"endpoint":%q,"bucket":%q,"prefix":%q,"ssl":%t}`, m.Endpoint, m.Bucket, m.Prefix, m.SSL)), nil
}

func Load(args []string) (*AppConfig, error) {
	cfg := &AppConfig{}

	defaultRoot, _ := os.Getwd()

	fs := flag.NewFlagSet("cadwatcher", flag.ContinueOnError)

	var settingsFlag, rootFlag, metricsFlag string
	fs.StringVar(&settingsFlag, "settings", "", "Settings file (default: path_config.json)")
	fs.StringVar(&rootFlag, "root", "", "Directory to scan for STEP files (default: current directory)")
	fs.BoolVar(&cfg.RecursiveMode, "recursive", true, "Scan recursively")
	fs.StringVar(&cfg.LogPath, "log", "app.log", "Process log file")
	fs.StringVar(&cfg.ErrorLogPath, "error-log", "errors.log", "Persistent error log file")
	fs.StringVar(&metricsFlag, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.BoolVar(&cfg.Headless, "headless", false, "Convert the given files without the TUI")
	fs.BoolVar(&cfg.AssumeYes, "yes", false, "Skip the confirmation prompt in headless mode")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Inputs = fs.Args()

	cfg.SettingsPath = firstNonEmpty(settingsFlag, os.Getenv("CADWATCHER_SETTINGS"), "path_config.json")
	cfg.ScanRoot = firstNonEmpty(rootFlag, os.Getenv("CADWATCHER_ROOT"), defaultRoot)
	cfg.MetricsAddr = firstNonEmpty(metricsFlag, os.Getenv("CADWATCHER_METRICS_ADDR"))

	minio, err := loadMinio()
	if err != nil {
		return nil, err
	}
	cfg.Minio = minio

	if info, err := os.Stat(cfg.ScanRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("invalid scan root: %s", cfg.ScanRoot)
	}
	if cfg.Headless && len(cfg.Inputs) == 0 {
		return nil, fmt.Errorf("headless mode needs at least one STEP file")
	}

	for i, in := range cfg.Inputs {
		if abs, err := filepath.Abs(in); err == nil {
			cfg.Inputs[i] = abs
		}
	}
	if absRoot, err := filepath.Abs(cfg.ScanRoot); err == nil {
		cfg.ScanRoot = absRoot
	}
	if absSettings, err := filepath.Abs(cfg.SettingsPath); err == nil {
		cfg.SettingsPath = absSettings
	}

	return cfg, nil
}

func loadMinio() (MinioConfig, error) {
	m := MinioConfig{
		Endpoint:  os.Getenv("MINIO_ENDPOINT"),
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Bucket:    os.Getenv("MINIO_BUCKET"),
		Prefix:    os.Getenv("MINIO_PREFIX"),
	}
	if sslEnv := os.Getenv("MINIO_SSL"); sslEnv != "" {
		val, err := strconv.ParseBool(sslEnv)
		if err != nil {
			return m, fmt.Errorf("invalid MINIO_SSL value: %v", err)
		}
		m.SSL = val
	}
	if m.Endpoint != "" && m.Bucket == "" {
		return m, fmt.Errorf("minio configuration is incomplete: MINIO_BUCKET is required")
	}
	return m, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
