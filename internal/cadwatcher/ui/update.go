package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/domain"
)

// Focus indices
const (
	inputBlender = iota
	inputScript
	inputExport
	btnSave
	fieldCount // 4
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = msg.Width - 4
		if h := msg.Height / 3; h > 3 {
			m.logView.Height = h
		}
	case domain.RunLogMsg:
		m.appendLog(formatLine(msg.Line))
		return m, waitForEvent(m.events)
	case domain.RunFinishedMsg:
		return m.finishRun(msg.Result)
	case domain.PublishedMsg:
		if msg.Err != nil {
			m.appendLog("Upload failed: " + msg.Err.Error())
		} else {
			m.appendLog(fmt.Sprintf("Uploaded %d GLB file(s)", len(msg.Keys)))
		}
		return m, nil
	case spinner.TickMsg:
		if !m.Running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.State == StateSettings {
		return m.updateSettings(msg)
	}

	return m.updateBrowsing(msg)
}

func (m Model) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd = make([]tea.Cmd, len(m.Inputs))

	switch msg := msg.(type) {
	case domain.SettingsSavedMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			m.logger.Error("Saving settings failed", msg.Err.Error())
			return m, nil
		}
		m.Err = nil
		m.logger.Info("Settings saved successfully.", m.Settings)
		m.State = StateBrowsing
		return m, discoverFilesCmd(m.Config.ScanRoot, m.Config.RecursiveMode)

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "enter", "up", "down":
			s := msg.String()

			if s == "enter" && m.FocusIndex == btnSave {
				m.Settings.BlenderPath = strings.TrimSpace(m.Inputs[inputBlender].Value())
				m.Settings.ScriptPath = strings.TrimSpace(m.Inputs[inputScript].Value())
				m.Settings.ExportFolder = strings.TrimSpace(m.Inputs[inputExport].Value())
				return m, saveSettingsCmd(m.Store, m.Settings)
			}

			// Navigation
			if s == "up" || s == "shift+tab" {
				m.FocusIndex--
			} else {
				m.FocusIndex++
			}

			// Cycle
			if m.FocusIndex > fieldCount-1 {
				m.FocusIndex = 0
			} else if m.FocusIndex < 0 {
				m.FocusIndex = fieldCount - 1
			}

			for i := range m.Inputs {
				if i == m.FocusIndex {
					cmds[i] = m.Inputs[i].Focus()
					m.Inputs[i].TextStyle = selectedItemStyle
				} else {
					m.Inputs[i].Blur()
					m.Inputs[i].TextStyle = lipgloss.NewStyle() // Reset
				}
			}
			return m, tea.Batch(cmds...)
		}
	}

	// Update inputs only if they are focused
	for i := range m.Inputs {
		m.Inputs[i], cmds[i] = m.Inputs[i].Update(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateBrowsing(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			if !m.Running {
				return m, tea.Quit
			}
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Files)-1 {
				m.Cursor++
			}
		case " ", "space":
			if len(m.Files) > 0 && !m.Running {
				m.Files[m.Cursor].Selected = !m.Files[m.Cursor].Selected
			}
		case "a":
			if !m.Running {
				all := !allSelected(m.Files)
				for i := range m.Files {
					m.Files[i].Selected = all
				}
			}
		case "c":
			// One run at a time: the batch script path is shared.
			if len(m.Files) > 0 && !m.Running {
				return m.startConversion(m.selectedPaths())
			}
		case "r":
			if !m.Running {
				m.Files = []domain.StepFile{}
				m.Cursor = 0
				cmd = discoverFilesCmd(m.Config.ScanRoot, m.Config.RecursiveMode)
			}
		case "pgup", "pgdown":
			m.logView, cmd = m.logView.Update(msg)
		case "esc":
			if !m.Running {
				m.State = StateSettings
				return m, nil
			}
		}

	case domain.FilesDiscoveredMsg:
		m.Files = msg.Files
		m.Cursor = 0
		m.Err = msg.Err
		if msg.Err != nil {
			m.logger.Error("STEP scan failed", msg.Err.Error())
		}
	}

	return m, cmd
}

// selectedPaths returns the selected files in list order, or the file under
// the cursor when nothing is selected.
func (m Model) selectedPaths() []string {
	var paths []string
	for _, f := range m.Files {
		if f.Selected {
			paths = append(paths, f.Path)
		}
	}
	if len(paths) == 0 && m.Cursor < len(m.Files) {
		paths = append(paths, m.Files[m.Cursor].Path)
	}
	return paths
}

func (m Model) startConversion(paths []string) (tea.Model, tea.Cmd) {
	cfg := m.Store.Snapshot(m.Settings)
	m.Running = true
	m.Err = nil
	m.queued = paths
	m.events = make(chan tea.Msg, 256)
	m.setStatus(paths, domain.StatusQueued)
	m.appendLog(fmt.Sprintf("Converting %d file(s) into %s", len(paths), cfg.ExportDir))

	return m, tea.Batch(
		convertCmd(m.coordinator, cfg, paths, m.events),
		waitForEvent(m.events),
		m.spinner.Tick,
	)
}

func (m Model) finishRun(res domain.RunResult) (tea.Model, tea.Cmd) {
	m.Running = false
	m.LastResult = &res
	m.events = nil

	status := domain.StatusSuccess
	if res.Success() {
		m.SuccessCount++
		m.appendLog(fmt.Sprintf("Conversion finished in %s, exported to %s", res.Duration().Round(time.Millisecond), m.Store.Snapshot(m.Settings).ExportDir))
	} else {
		status = domain.StatusFailed
		m.FailCount++
		m.Err = fmt.Errorf("%s: %s", res.Kind, res.Err)
		m.appendLog(fmt.Sprintf("Error processing files (%s): %s", res.Kind, res.Err))
	}
	m.setStatus(m.queued, status)
	m.queued = nil

	if res.Success() && m.publisher != nil && len(res.ExportPaths) > 0 {
		return m, publishCmd(m.publisher, res.ExportPaths)
	}
	return m, nil
}

func (m *Model) setStatus(paths []string, status domain.FileStatus) {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	for i := range m.Files {
		if set[m.Files[i].Path] {
			m.Files[i].Status = status
			if status != domain.StatusQueued {
				m.Files[i].Selected = false
			}
		}
	}
}

func (m *Model) appendLog(line string) {
	m.Logs = append(m.Logs, line)
	if len(m.Logs) > maxLogLines {
		m.Logs = m.Logs[len(m.Logs)-maxLogLines:]
	}
	m.logView.SetContent(strings.Join(m.Logs, "\n"))
	m.logView.GotoBottom()
}

func formatLine(l domain.LogLine) string {
	if l.Stream == domain.StreamStderr {
		return statusFailStyle.Render("! ") + l.Text
	}
	return "  " + l.Text
}

func allSelected(files []domain.StepFile) bool {
	for _, f := range files {
		if !f.Selected {
			return false
		}
	}
	return len(files) > 0
}
