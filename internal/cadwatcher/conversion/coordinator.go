package conversion

import (
	"context"
	"os"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/domain"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/logging"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/metrics"
)

// Coordinator runs one batch from file list to RunResult.
// Callers must not run two conversions at once: the script path is shared.
type Coordinator struct {
	generator  *ScriptGenerator
	supervisor *Supervisor
	logger     *logging.Logger
}

func NewCoordinator(generator *ScriptGenerator, supervisor *Supervisor, logger *logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Coordinator{generator: generator, supervisor: supervisor, logger: logger}
}

// WithObserver returns a coordinator whose supervisor streams lines to fn.
func (c *Coordinator) WithObserver(fn LineObserver) *Coordinator {
	cc := *c
	cc.supervisor = c.supervisor.WithObserver(fn)
	return &cc
}

// Convert converts paths using the cfg snapshot. Files exported before a
// failure are left in the export directory.
func (c *Coordinator) Convert(ctx context.Context, cfg domain.ToolConfiguration, paths []string) domain.RunResult {
	runID := uuid.NewString()
	started := time.Now()
	log := map[string]any{"run_id": runID, "files": len(paths), "config": cfg}
	c.logger.Info("Conversion requested", log)
	metrics.FilesRequested.Add(float64(len(paths)))

	result := c.convert(ctx, cfg, paths)
	result.RunID = runID
	if result.StartedAt.IsZero() {
		result.StartedAt = started
	}
	if result.FinishedAt.IsZero() {
		result.FinishedAt = time.Now()
	}
	metrics.RecordRun(string(result.Kind), result.Duration())

	if result.Success() {
		c.logger.Info("Conversion executed and exported", map[string]any{
			"run_id":     runID,
			"export_dir": cfg.ExportDir,
			"exports":    result.ExportPaths,
		})
	} else {
		c.logger.Error("Conversion failed", map[string]any{"run_id": runID, "kind": result.Kind})
	}
	return result
}

func (c *Coordinator) convert(ctx context.Context, cfg domain.ToolConfiguration, paths []string) domain.RunResult {
	if _, err := CheckExecutable(cfg.Executable); err != nil {
		return c.failed(err)
	}

	req, err := NewRequest(paths, cfg.ExportDir)
	if err != nil {
		return c.failed(err)
	}
	if err := os.MkdirAll(req.ExportDir, 0755); err != nil {
		return c.failed(newError(domain.KindInvalidRequest, "create export directory", err))
	}

	script, err := c.generator.Generate(req, cfg)
	if err != nil {
		return c.failed(err)
	}
	c.logger.Debug("Batch script written", map[string]any{"path": script.Path, "bytes": len(script.Content)})

	result := c.supervisor.Run(ctx, cfg.Executable, script.Path)
	result.ExportPaths = script.ExportPaths
	return result
}

// failed reports a failure that happened before the tool was started.
func (c *Coordinator) failed(err error) domain.RunResult {
	now := time.Now()
	msg := err.Error()
	c.logger.Persist(msg, map[string]any{"kind": KindOf(err)})
	return domain.RunResult{
		Kind:       KindOf(err),
		ExitCode:   -1,
		Err:        msg,
		StartedAt:  now,
		FinishedAt: now,
	}
}

// NewRequest validates paths and binds them to exportDir. Order is kept and
// duplicates are not removed. Paths must be UTF-8 so the script can name them.
func NewRequest(paths []string, exportDir string) (domain.ConversionRequest, error) {
	if exportDir == "" {
		return domain.ConversionRequest{}, newError(domain.KindInvalidRequest, "build request", errors.New("export directory is not configured"))
	}
	inputs := make([]string, 0, len(paths))
	for _, p := range paths {
		if !utf8.ValidString(p) {
			return domain.ConversionRequest{}, newError(domain.KindInvalidRequest, "build request", errors.Errorf("input %q is not valid UTF-8", p))
		}
		info, err := os.Stat(p)
		if err != nil {
			return domain.ConversionRequest{}, newError(domain.KindInvalidRequest, "build request", errors.Wrapf(err, "input %s", p))
		}
		if !info.Mode().IsRegular() {
			return domain.ConversionRequest{}, newError(domain.KindInvalidRequest, "build request", errors.Errorf("input %s is not a regular file", p))
		}
		if !domain.IsSTEPFile(p) {
			return domain.ConversionRequest{}, newError(domain.KindInvalidRequest, "build request", errors.Errorf("input %s is not a STEP file", p))
		}
		inputs = append(inputs, p)
	}
	return domain.ConversionRequest{Inputs: inputs, ExportDir: exportDir}, nil
}
