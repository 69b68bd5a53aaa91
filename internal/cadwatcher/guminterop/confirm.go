package guminterop

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// IsGumAvailable checks if the 'gum' binary is in the PATH.
func IsGumAvailable() bool {
	_, err := exec.LookPath("gum")
	return err == nil
}

// Confirm uses gum to prompt for confirmation. Returns true if confirmed or gum missing.
func Confirm(msg string) bool {
	if !IsGumAvailable() {
		return true // Fallback to allowed if gum is not present
	}
	// gum confirm exits 0 for Yes, 1 for No
	cmd := exec.Command("gum", "confirm", msg)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run() == nil
}

// ConfirmPaths lists the batch and asks the operator to go ahead.
func ConfirmPaths(paths []string, exportDir string) bool {
	return Confirm(PathsPrompt(paths, exportDir))
}

// PathsPrompt formats the confirmation text for a batch.
func PathsPrompt(paths []string, exportDir string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Convert %d STEP file(s) to %s?\n", len(paths), exportDir)
	for _, p := range paths {
		b.WriteString("  " + p + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
