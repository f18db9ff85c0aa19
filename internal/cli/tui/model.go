package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ImageState tracks one image build in the TUI.
type ImageState struct {
	Name        string
	Tag         string
	TotalSteps  int
	CurrentStep int
	LastLine    string
}

// Model is the bubbletea model for build progress.
type Model struct {
	// Configuration
	TotalImages int
	Runtime     string
	Styles      Styles

	// State
	ActiveImages    map[string]*ImageState
	order           []string
	CompletedImages int
	FailedImages    int
	StartTime       time.Time
	LogLines        []string
	LogLimit        int
	ShowLogs        bool
	Width           int
	Height          int

	// Control
	Quitting bool
	Done     bool
}

// NewModel creates a new TUI model.
func NewModel(totalImages int, runtime string) *Model {
	return &Model{
		TotalImages:  totalImages,
		Runtime:      runtime,
		Styles:       DefaultStyles(),
		ActiveImages: make(map[string]*ImageState),
		StartTime:    time.Now(),
		LogLimit:     500,
		ShowLogs:     true,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
	)
}

// TickMsg is sent every second to update the timer
type TickMsg time.Time

// tickCmd returns a command that sends TickMsg every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// DoneMsg signals the TUI should exit
type DoneMsg struct{}

// QuitMsg signals the user requested quit (q or Ctrl+C)
type QuitMsg struct{}

// BuildStartedMsg indicates an image build has started
type BuildStartedMsg struct {
	Image      string
	Tag        string
	TotalSteps int
}

// BuildStepMsg carries one line of runtime build output. Step is zero
// for lines that do not open a numbered step.
type BuildStepMsg struct {
	Image string
	Step  int
	Total int
	Line  string
}

// BuildCompletedMsg indicates an image build has completed
type BuildCompletedMsg struct {
	Image string
}

// BuildFailedMsg indicates an image build has failed
type BuildFailedMsg struct {
	Image string
	Error string
}
