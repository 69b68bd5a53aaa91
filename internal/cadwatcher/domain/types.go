package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// ErrorKind classifies why a conversion run failed
type ErrorKind string

const (
	KindNone                    ErrorKind = ""
	KindToolNotFound            ErrorKind = "ToolNotFound"
	KindScriptWriteFailure      ErrorKind = "ScriptWriteFailure"
	KindProcessExecutionFailure ErrorKind = "ProcessExecutionFailure"
	KindStreamingFault          ErrorKind = "StreamingFault"
	KindInvalidRequest          ErrorKind = "InvalidRequest"
)

// FileStatus represents the state of a discovered STEP file in the dashboard
type FileStatus string

const (
	StatusPending FileStatus = "Pending"
	StatusQueued  FileStatus = "Queued"
	StatusSuccess FileStatus = "Converted"
	StatusFailed  FileStatus = "Failed"
)

// Extensions recognised as STEP input, lower case.
var STEPExtensions = []string{".stp", ".step"}

// IsSTEPFile reports whether path carries a recognised STEP extension.
func IsSTEPFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range STEPExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ToolConfiguration is the snapshot of settings a single run works from.
// It is passed by value and never mutated by the conversion pipeline.
type ToolConfiguration struct {
	Executable string `json:"executable"`
	ScriptPath string `json:"script_path"`
	ExportDir  string `json:"export_dir"`
}

// ConversionRequest is the ordered list of inputs for one run
type ConversionRequest struct {
	Inputs    []string
	ExportDir string
}

// GeneratedScript is the batch script written for a request
type GeneratedScript struct {
	Path        string
	Content     string
	ExportPaths []string
}

// StepFile is a STEP file found under the scan root
type StepFile struct {
	Name     string
	Path     string
	Selected bool
	Status   FileStatus
}

// RunResult is the outcome of one conversion run.
type RunResult struct {
	RunID       string    `json:"run_id"`
	Kind        ErrorKind `json:"kind,omitempty"`
	ExitCode    int       `json:"exit_code"`
	Stdout      []string  `json:"-"`
	Stderr      []string  `json:"-"`
	Err         string    `json:"error,omitempty"`
	ExportPaths []string  `json:"export_paths,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Success reports whether the run completed without error.
func (r RunResult) Success() bool {
	return r.Kind == KindNone && r.Err == "" && r.ExitCode == 0
}

// Duration is the wall time between start and finish.
func (r RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Stream identifies which child stream a line came from
type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// LogLine is a single line read from the child process.
type LogLine struct {
	Stream Stream
	Text   string
}
