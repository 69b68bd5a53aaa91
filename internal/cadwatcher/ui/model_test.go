package ui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/config"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/conversion"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/domain"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/settings"
)

type stubPublisher struct {
	paths []string
}

func (p *stubPublisher) Publish(ctx context.Context, paths []string) ([]string, error) {
	p.paths = paths
	return paths, nil
}

func newTestModel(t *testing.T, pub Publisher) Model {
	t.Helper()
	dir := t.TempDir()
	g, err := conversion.NewScriptGenerator("")
	if err != nil {
		t.Fatal(err)
	}
	coord := conversion.NewCoordinator(g, conversion.NewSupervisor(nil), nil)
	store := settings.NewStore(filepath.Join(dir, "path_config.json"))
	m := NewModel(&config.AppConfig{ScanRoot: dir}, store, settings.Defaults(), coord, pub, nil)
	m.State = StateBrowsing
	m.Files = []domain.StepFile{
		{Name: "a.stp", Path: "/cad/a.stp", Status: domain.StatusPending},
		{Name: "b.stp", Path: "/cad/b.stp", Status: domain.StatusPending},
	}
	return m
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestUpdate_Conversion(t *testing.T) {
	m := newTestModel(t, nil)

	// 1. Select second file and trigger conversion
	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	newM, _ = newM.(Model).Update(tea.KeyMsg{Type: tea.KeySpace})
	newM, cmd := newM.(Model).Update(key('c'))
	newModel := newM.(Model)

	if !newModel.Running {
		t.Fatal("Expected model to be running")
	}
	if cmd == nil {
		t.Error("Expected cmd to be returned, got nil")
	}
	if newModel.Files[1].Status != domain.StatusQueued || newModel.Files[0].Status != domain.StatusPending {
		t.Errorf("Expected only b.stp queued, got %s / %s", newModel.Files[0].Status, newModel.Files[1].Status)
	}

	// 2. Trigger is disabled while a run is active
	again, cmd := newModel.Update(key('c'))
	if cmd != nil {
		t.Error("Expected no cmd while a run is in flight")
	}
	if again.(Model).Files[0].Status != domain.StatusPending {
		t.Error("Second trigger must not queue more files")
	}

	// 3. Streamed log line
	newM, _ = newModel.Update(domain.RunLogMsg{Line: domain.LogLine{Stream: domain.StreamStdout, Text: "GLB file exported"}})
	newModel = newM.(Model)
	if len(newModel.Logs) == 0 || newModel.Logs[len(newModel.Logs)-1] != "  GLB file exported" {
		t.Errorf("Expected streamed line in logs, got %v", newModel.Logs)
	}

	// 4. Handle success
	newM, _ = newModel.Update(domain.RunFinishedMsg{Result: domain.RunResult{RunID: "r1", ExportPaths: []string{"/out/b.glb"}}})
	newModel = newM.(Model)

	if newModel.Running {
		t.Error("Expected running flag to clear")
	}
	if newModel.Files[1].Status != domain.StatusSuccess {
		t.Errorf("Expected status Converted, got %s", newModel.Files[1].Status)
	}
	if newModel.SuccessCount != 1 {
		t.Errorf("Expected success count 1, got %d", newModel.SuccessCount)
	}
}

func TestUpdate_ConversionFailure(t *testing.T) {
	m := newTestModel(t, nil)

	newM, _ := m.Update(key('c'))
	newM, _ = newM.(Model).Update(domain.RunFinishedMsg{Result: domain.RunResult{
		Kind:     domain.KindProcessExecutionFailure,
		ExitCode: 2,
		Err:      "blender process failed with return code 2\nboom",
	}})
	newModel := newM.(Model)

	if newModel.Files[0].Status != domain.StatusFailed {
		t.Errorf("Expected status Failed, got %s", newModel.Files[0].Status)
	}
	if newModel.FailCount != 1 {
		t.Errorf("Expected fail count 1, got %d", newModel.FailCount)
	}
	if newModel.Err == nil {
		t.Error("Expected error to be surfaced")
	}
}

func TestUpdate_PublishesAfterSuccess(t *testing.T) {
	pub := &stubPublisher{}
	m := newTestModel(t, pub)

	newM, _ := m.Update(key('c'))
	_, cmd := newM.(Model).Update(domain.RunFinishedMsg{Result: domain.RunResult{ExportPaths: []string{"/out/a.glb"}}})
	if cmd == nil {
		t.Fatal("Expected publish cmd after successful run")
	}

	msg := cmd()
	published, ok := msg.(domain.PublishedMsg)
	if !ok {
		t.Fatalf("Expected PublishedMsg, got %T", msg)
	}
	if len(published.Keys) != 1 || pub.paths[0] != "/out/a.glb" {
		t.Errorf("Unexpected publish %v", pub.paths)
	}
}

func TestUpdate_SelectAll(t *testing.T) {
	m := newTestModel(t, nil)

	newM, _ := m.Update(key('a'))
	newModel := newM.(Model)
	if countSelected(newModel.Files) != 2 {
		t.Errorf("Expected all files selected, got %d", countSelected(newModel.Files))
	}
	if got := newModel.selectedPaths(); len(got) != 2 || got[0] != "/cad/a.stp" {
		t.Errorf("Expected list order, got %v", got)
	}

	newM, _ = newModel.Update(key('a'))
	if countSelected(newM.(Model).Files) != 0 {
		t.Error("Expected second toggle to clear selection")
	}
}

func TestUpdate_SettingsSave(t *testing.T) {
	m := newTestModel(t, nil)
	m.State = StateSettings
	m.FocusIndex = btnSave
	m.Inputs[inputExport].SetValue("glb-out")

	newM, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Expected save cmd")
	}
	if newM.(Model).Settings.ExportFolder != "glb-out" {
		t.Errorf("Expected export folder from input, got %s", newM.(Model).Settings.ExportFolder)
	}

	saved, ok := cmd().(domain.SettingsSavedMsg)
	if !ok || saved.Err != nil {
		t.Fatalf("Expected successful save, got %+v", saved)
	}

	newM, cmd = newM.(Model).Update(saved)
	if newM.(Model).State != StateBrowsing {
		t.Error("Expected browsing state after save")
	}
	if cmd == nil {
		t.Error("Expected discovery cmd after save")
	}
}
