package conversion

import (
	"os/exec"

	"github.com/pkg/errors"

	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/domain"
)

// BuildToolArgs constructs the headless Blender arguments that run scriptPath.
func BuildToolArgs(scriptPath string) []string {
	return []string{"--background", "--python", scriptPath}
}

// CheckExecutable resolves the tool executable. Bare names are looked up on
// PATH; anything else must be an existing executable file.
func CheckExecutable(path string) (string, error) {
	if path == "" {
		return "", newError(domain.KindToolNotFound, "check executable", errors.New("executable path is not configured"))
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", newError(domain.KindToolNotFound, "check executable", errors.Wrapf(err, "executable %q not found", path))
	}
	return resolved, nil
}
