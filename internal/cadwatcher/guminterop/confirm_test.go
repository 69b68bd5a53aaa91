package guminterop

import (
	"strings"
	"testing"
)

func TestPathsPrompt(t *testing.T) {
	got := PathsPrompt([]string{"/cad/a.stp", "/cad/b.step"}, "/out")

	if !strings.HasPrefix(got, "Convert 2 STEP file(s) to /out?") {
		t.Errorf("Unexpected prompt header: %q", got)
	}
	if strings.Index(got, "/cad/a.stp") > strings.Index(got, "/cad/b.step") {
		t.Errorf("Expected paths in request order: %q", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Errorf("Expected no trailing newline: %q", got)
	}
}
