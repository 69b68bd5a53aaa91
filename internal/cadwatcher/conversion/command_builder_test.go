package conversion

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/domain"
)

func TestBuildToolArgs(t *testing.T) {
	got := BuildToolArgs("/tmp/batch.py")
	want := []string{"--background", "--python", "/tmp/batch.py"}

	if len(got) != len(want) {
		t.Fatalf("Args length mismatch: got %d, want %d", len(got), len(want))
	}
	for i, v := range got {
		if v != want[i] {
			t.Errorf("Arg[%d] mismatch: got %s, want %s", i, v, want[i])
		}
	}
}

func TestCheckExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec bits are not meaningful on windows")
	}
	dir := t.TempDir()

	exe := filepath.Join(dir, "tool")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "Executable File", path: exe},
		{name: "Missing File", path: filepath.Join(dir, "missing"), wantErr: true},
		{name: "Not Executable", path: plain, wantErr: true},
		{name: "Empty Path", path: "", wantErr: true},
		{name: "Directory", path: dir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckExecutable(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckExecutable() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && KindOf(err) != domain.KindToolNotFound {
				t.Errorf("Expected ToolNotFound, got %s", KindOf(err))
			}
		})
	}
}
