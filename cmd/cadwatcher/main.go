package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/config"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/conversion"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/domain"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/guminterop"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/logging"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/metrics"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/publish"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/settings"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	f, err := tea.LogToFile(cfg.LogPath, "cadwatcher")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging error: %v\n", err)
		return 1
	}
	defer f.Close()

	errLog, err := os.OpenFile(cfg.ErrorLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging error: %v\n", err)
		return 1
	}
	defer errLog.Close()

	logger := logging.NewWithErrorLog(f, errLog, cfg.Debug)
	defer logger.Sync()
	logger.Info("Application started", cfg)

	if cfg.MetricsAddr != "" {
		go func() {
			logger.Info("Starting metrics server", cfg.MetricsAddr)
			if err := metrics.StartMetricsServer(cfg.MetricsAddr); err != nil {
				logger.Error("Metrics server stopped", err.Error())
			}
		}()
	}

	store := settings.NewStore(cfg.SettingsPath)
	st, err := store.Load()
	if err != nil {
		logger.Persist("Could not load settings, using defaults", err.Error())
	}

	generator, err := conversion.NewScriptGenerator("")
	if err != nil {
		logger.Persist("Invalid script template", err.Error())
		return 1
	}
	coordinator := conversion.NewCoordinator(generator, conversion.NewSupervisor(logger), logger)

	var publisher ui.Publisher
	if cfg.Minio.Enabled() {
		p, err := publish.NewMinioPublisher(context.Background(), cfg.Minio, logger)
		if err != nil {
			logger.Persist("MinIO publishing disabled", err.Error())
		} else {
			publisher = p
		}
	}

	if cfg.Headless {
		return runHeadless(cfg, store.Snapshot(st), coordinator, publisher, logger)
	}

	model := ui.NewModel(cfg, store, st, coordinator, publisher, logger)
	p := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return 1
	}

	if m, ok := finalModel.(ui.Model); ok {
		if m.FailCount > 0 {
			return 1
		}
	} else {
		logger.Error("Could not cast final model", nil)
	}
	return 0
}

func runHeadless(cfg *config.AppConfig, tool domain.ToolConfiguration, coordinator *conversion.Coordinator, publisher ui.Publisher, logger *logging.Logger) int {
	if !cfg.AssumeYes && !guminterop.ConfirmPaths(cfg.Inputs, tool.ExportDir) {
		fmt.Fprintln(os.Stderr, "Conversion cancelled")
		return 1
	}

	res := coordinator.WithObserver(func(l domain.LogLine) {
		if l.Stream == domain.StreamStderr {
			fmt.Fprintln(os.Stderr, l.Text)
		} else {
			fmt.Println(l.Text)
		}
	}).Convert(context.Background(), tool, cfg.Inputs)

	if !res.Success() {
		fmt.Fprintf(os.Stderr, "Error processing files (%s): %s\n", res.Kind, res.Err)
		return 1
	}
	fmt.Printf("Converted %d file(s) into %s\n", len(res.ExportPaths), tool.ExportDir)

	if publisher != nil {
		keys, err := publisher.Publish(context.Background(), res.ExportPaths)
		if err != nil {
			logger.Persist("Upload failed", err.Error())
			fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
			return 1
		}
		fmt.Printf("Uploaded %d GLB file(s)\n", len(keys))
	}
	return 0
}
