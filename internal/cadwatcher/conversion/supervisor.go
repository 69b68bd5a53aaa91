package conversion

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/domain"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/logging"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/metrics"
)

// LineObserver receives every line read from the tool, per stream in arrival order.
// It is called from the reader goroutines and must be safe for concurrent use.
type LineObserver func(domain.LogLine)

// Supervisor runs the external tool and turns its outcome into a RunResult.
type Supervisor struct {
	logger   *logging.Logger
	observer LineObserver
}

func NewSupervisor(logger *logging.Logger) *Supervisor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Supervisor{logger: logger}
}

// WithObserver returns a copy of s that also hands each line to fn.
func (s *Supervisor) WithObserver(fn LineObserver) *Supervisor {
	c := *s
	c.observer = fn
	return &c
}

// Run launches executable headlessly on scriptPath and blocks until both
// output streams are drained and the process has exited. It never returns an
// error or panics: every failure is folded into the result.
func (s *Supervisor) Run(ctx context.Context, executable, scriptPath string) (result domain.RunResult) {
	result = domain.RunResult{ExitCode: -1, StartedAt: time.Now()}
	defer func() {
		if r := recover(); r != nil {
			result = s.fail(result, domain.KindStreamingFault, fmt.Sprintf("tool supervision aborted: %v", r))
		}
		result.FinishedAt = time.Now()
	}()

	resolved, err := CheckExecutable(executable)
	if err != nil {
		return s.fail(result, domain.KindToolNotFound, err.Error())
	}

	args := BuildToolArgs(scriptPath)
	cmd := exec.CommandContext(ctx, resolved, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return s.fail(result, domain.KindStreamingFault, errors.Wrap(err, "open stdout pipe").Error())
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return s.fail(result, domain.KindStreamingFault, errors.Wrap(err, "open stderr pipe").Error())
	}

	s.logger.Info("Starting external tool", map[string]any{"executable": resolved, "args": args})
	if err := cmd.Start(); err != nil {
		return s.fail(result, domain.KindStreamingFault, errors.Wrapf(err, "could not start %s", resolved).Error())
	}
	metrics.RunsActive.Inc()
	defer metrics.RunsActive.Dec()

	var outLines, errLines []string
	var g errgroup.Group
	g.Go(func() error { return s.drain(stdout, domain.StreamStdout, &outLines) })
	g.Go(func() error { return s.drain(stderr, domain.StreamStderr, &errLines) })
	readErr := g.Wait()
	waitErr := cmd.Wait()

	result.Stdout = outLines
	result.Stderr = errLines
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if readErr != nil {
		return s.fail(result, domain.KindStreamingFault, errors.Wrap(readErr, "error reading tool output").Error())
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return s.fail(result, domain.KindStreamingFault, errors.Wrap(waitErr, "error waiting for tool").Error())
		}
		msg := fmt.Sprintf("%s process failed with return code %d\n%s",
			filepath.Base(resolved), result.ExitCode, strings.Join(errLines, "\n"))
		return s.fail(result, domain.KindProcessExecutionFailure, msg)
	}

	result.ExitCode = 0
	s.logger.Info("External tool finished", map[string]any{
		"stdout_lines": len(outLines),
		"stderr_lines": len(errLines),
	})
	return result
}

func (s *Supervisor) drain(r io.Reader, stream domain.Stream, dst *[]string) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			s.emit(stream, strings.TrimRight(line, "\r\n"), dst)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// keep the pipe empty so the child cannot block on a full buffer
			_, _ = io.Copy(io.Discard, br)
			return errors.Wrapf(err, "read %s", stream)
		}
	}
}

func (s *Supervisor) emit(stream domain.Stream, text string, dst *[]string) {
	*dst = append(*dst, text)
	metrics.LinesCaptured.WithLabelValues(string(stream)).Inc()

	data := map[string]string{"stream": string(stream)}
	if stream == domain.StreamStderr {
		s.logger.Persist(text, data)
	} else {
		s.logger.Info(text, data)
	}

	if s.observer != nil {
		s.observer(domain.LogLine{Stream: stream, Text: text})
	}
}

func (s *Supervisor) fail(res domain.RunResult, kind domain.ErrorKind, msg string) domain.RunResult {
	res.Kind = kind
	res.Err = msg
	s.logger.Persist(msg, map[string]any{"kind": kind, "exit_code": res.ExitCode})
	return res
}
