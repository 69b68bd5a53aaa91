package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/config"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/conversion"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/discovery"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/domain"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/logging"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/settings"
)

// maxLogLines bounds the in-memory log pane.
const maxLogLines = 1000

type SessionState int

const (
	StateSettings SessionState = iota
	StateBrowsing
)

// Publisher uploads exported files after a successful run.
type Publisher interface {
	Publish(ctx context.Context, paths []string) ([]string, error)
}

type Model struct {
	Config   *config.AppConfig
	Store    *settings.Store
	Settings settings.Settings
	State    SessionState

	// Settings View State
	// 0: Blender (Text), 1: Script (Text), 2: Export (Text), 3: Save (Btn)
	Inputs     []textinput.Model
	FocusIndex int

	// Browsing View State
	Files        []domain.StepFile
	Cursor       int
	Running      bool
	SuccessCount int
	FailCount    int
	LastResult   *domain.RunResult
	Logs         []string
	Err          error

	// Internal state
	width       int
	height      int
	queued      []string
	events      chan tea.Msg
	spinner     spinner.Model
	logView     viewport.Model
	coordinator *conversion.Coordinator
	publisher   Publisher
	logger      *logging.Logger
}

func NewModel(cfg *config.AppConfig, store *settings.Store, st settings.Settings, coordinator *conversion.Coordinator, publisher Publisher, logger *logging.Logger) Model {
	if logger == nil {
		logger = logging.Nop()
	}
	m := Model{
		Config:      cfg,
		Store:       store,
		Settings:    st,
		Files:       []domain.StepFile{},
		State:       StateSettings,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(statusRunningStyle)),
		logView:     viewport.New(80, 10),
		coordinator: coordinator,
		publisher:   publisher,
		logger:      logger,
	}

	m.Inputs = make([]textinput.Model, 3)

	m.Inputs[inputBlender] = newInput("Blender Path: ", "blender", st.BlenderPath)
	m.Inputs[inputBlender].Focus()
	m.Inputs[inputScript] = newInput("Temp Script:  ", "cadwatcher_batch.py", st.ScriptPath)
	m.Inputs[inputExport] = newInput("Export Folder: ", "exports", st.ExportFolder)

	return m
}

func newInput(prompt, placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.SetValue(value)
	in.Width = 50
	return in
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func discoverFilesCmd(root string, recursive bool) tea.Cmd {
	return func() tea.Msg {
		files, err := discovery.DiscoverSTEPFiles(root, recursive)
		return domain.FilesDiscoveredMsg{Files: files, Err: err}
	}
}

func saveSettingsCmd(store *settings.Store, st settings.Settings) tea.Cmd {
	return func() tea.Msg {
		return domain.SettingsSavedMsg{Err: store.Save(st)}
	}
}

// convertCmd runs the batch on the command goroutine. Lines and the final
// result travel through events in order; the channel is closed afterwards.
func convertCmd(coord *conversion.Coordinator, cfg domain.ToolConfiguration, paths []string, events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		observed := coord.WithObserver(func(l domain.LogLine) {
			events <- domain.RunLogMsg{Line: l}
		})
		res := observed.Convert(context.Background(), cfg, paths)
		events <- domain.RunFinishedMsg{Result: res}
		close(events)
		return nil
	}
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func publishCmd(p Publisher, paths []string) tea.Cmd {
	return func() tea.Msg {
		keys, err := p.Publish(context.Background(), paths)
		return domain.PublishedMsg{Keys: keys, Err: err}
	}
}
