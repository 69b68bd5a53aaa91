package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/domain"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	listStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("238")).
			PaddingRight(2)

	detailsStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	logStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238"))

	itemStyle = lipgloss.NewStyle().PaddingLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.Color("170"))

	statusPendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusRunningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	statusSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusFailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingTop(1)

	// Settings Styles
	configTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				MarginBottom(1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Background(lipgloss.Color("#888B7E")).
			Padding(0, 3).
			MarginTop(1)

	activeButtonStyle = buttonStyle.
				Foreground(lipgloss.Color("#FFF7DB")).
				Background(lipgloss.Color("#F25D94")).
				MarginRight(2)
)

func (m Model) View() string {
	if m.State == StateSettings {
		return m.viewSettings()
	}
	return m.viewBrowsing()
}

func (m Model) viewSettings() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("STEP to GLB Converter Settings") + "\n\n")
	b.WriteString(configTitleStyle.Render("Tool Paths") + "\n\n")

	for i := range m.Inputs {
		b.WriteString(m.Inputs[i].View() + "\n\n")
	}

	btn := buttonStyle.Render("Save")
	if m.FocusIndex == btnSave {
		btn = activeButtonStyle.Render("Save")
	}
	b.WriteString("\n" + btn + "\n")

	if m.Err != nil {
		b.WriteString("\n" + statusFailStyle.Render(m.Err.Error()) + "\n")
	}

	b.WriteString(footerStyle.Render(fmt.Sprintf("\nSettings file: %s\nTab/Shift+Tab to navigate • Enter on Save to continue • Ctrl+C to quit", m.Store.Path())))

	return lipgloss.NewStyle().Margin(1, 2).Render(b.String())
}

func (m Model) viewBrowsing() string {
	title := titleStyle.Render("STEP to GLB Dashboard") + "\n\n"

	if len(m.Files) == 0 {
		msg := "Scanning or no STEP files found in " + m.Config.ScanRoot
		if m.Err != nil {
			msg += "\n" + statusFailStyle.Render(m.Err.Error())
		}
		return title + msg + "\nPress 'r' to rescan or 'esc' to edit settings."
	}

	// Render List
	var listBuilder strings.Builder
	for i, f := range m.Files {
		cursor := " "
		style := itemStyle

		if m.Cursor == i {
			cursor = ">"
			style = selectedItemStyle
		}

		check := "[ ]"
		if f.Selected {
			check = "[x]"
		}

		row := fmt.Sprintf("%s %s %s [%s]", cursor, check, f.Name, renderStatus(f.Status))
		listBuilder.WriteString(style.Render(row) + "\n")
	}
	listView := listStyle.Render(listBuilder.String())

	// Render Details
	var detailsBuilder strings.Builder
	cfg := m.Store.Snapshot(m.Settings)
	detailsBuilder.WriteString(fmt.Sprintf("Blender: %s\n", cfg.Executable))
	detailsBuilder.WriteString(fmt.Sprintf("Script: %s\n", cfg.ScriptPath))
	detailsBuilder.WriteString(fmt.Sprintf("Export: %s\n", cfg.ExportDir))
	if m.Running {
		detailsBuilder.WriteString("\n" + m.spinner.View() + " Converting...\n")
	} else if m.LastResult != nil {
		res := m.LastResult
		detailsBuilder.WriteString(fmt.Sprintf("\nLast run: %s\n", res.RunID))
		if res.Success() {
			detailsBuilder.WriteString(statusSuccessStyle.Render(fmt.Sprintf("Exported %d file(s)", len(res.ExportPaths))) + "\n")
		} else {
			detailsBuilder.WriteString(statusFailStyle.Render(string(res.Kind)) + "\n")
			detailsBuilder.WriteString(firstLine(res.Err) + "\n")
		}
	}
	detailsView := detailsStyle.Render(detailsBuilder.String())

	// Render Footer
	summary := fmt.Sprintf("Files: %d | Selected: %d | Runs OK: %d | Runs Failed: %d",
		len(m.Files), countSelected(m.Files), m.SuccessCount, m.FailCount)

	help := "\nKeys: ↑/↓: Navigate • Space: Select • a: All • c: Convert • r: Rescan • PgUp/PgDn: Log • Esc: Settings • q: Quit"
	if m.Running {
		help = "\nConversion in progress; new runs are disabled until it finishes."
	}
	footerView := footerStyle.Render(summary + help)

	// Layout
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, listView, detailsView)
	logView := logStyle.Render(m.logView.View())

	return lipgloss.JoinVertical(lipgloss.Left, title, mainView, logView, footerView)
}

func renderStatus(s domain.FileStatus) string {
	status := string(s)
	switch s {
	case domain.StatusQueued:
		return statusRunningStyle.Render(status)
	case domain.StatusSuccess:
		return statusSuccessStyle.Render(status)
	case domain.StatusFailed:
		return statusFailStyle.Render(status)
	default:
		return statusPendingStyle.Render(status)
	}
}

func countSelected(files []domain.StepFile) int {
	n := 0
	for _, f := range files {
		if f.Selected {
			n++
		}
	}
	return n
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
