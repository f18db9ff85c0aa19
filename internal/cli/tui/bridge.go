package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/8ryn/tomoscan/internal/events"
)

// Bridge connects the event bus to the bubbletea program
type Bridge struct {
	program *tea.Program
}

// NewBridge creates a new bridge for the given program
func NewBridge(program *tea.Program) *Bridge {
	return &Bridge{
		program: program,
	}
}

// Handler returns an event handler function for the event bus
func (b *Bridge) Handler() events.Handler {
	return func(evt events.Event) {
		msg := b.eventToMsg(evt)
		if msg != nil {
			b.program.Send(msg)
		}
	}
}

// eventToMsg converts an events.Event to a tea.Msg
func (b *Bridge) eventToMsg(evt events.Event) tea.Msg {
	switch evt.Type {
	case events.BuildStarted:
		tag := ""
		steps := 0
		if payload, ok := evt.Payload.(map[string]any); ok {
			if t, ok := payload["tag"].(string); ok {
				tag = t
			}
			if s, ok := payload["steps"].(int); ok {
				steps = s
			}
		}
		return BuildStartedMsg{
			Image:      evt.Image,
			Tag:        tag,
			TotalSteps: steps,
		}

	case events.BuildStep:
		step := 0
		if evt.Step != nil {
			step = *evt.Step
		}
		line := ""
		total := 0
		if payload, ok := evt.Payload.(map[string]any); ok {
			if l, ok := payload["line"].(string); ok {
				line = l
			}
			if t, ok := payload["total"].(int); ok {
				total = t
			}
		}
		return BuildStepMsg{
			Image: evt.Image,
			Step:  step,
			Total: total,
			Line:  line,
		}

	case events.BuildCompleted:
		return BuildCompletedMsg{
			Image: evt.Image,
		}

	case events.BuildFailed:
		return BuildFailedMsg{
			Image: evt.Image,
			Error: evt.Error,
		}

	default:
		return nil
	}
}

// SendDone sends a DoneMsg to the program
func (b *Bridge) SendDone() {
	b.program.Send(DoneMsg{})
}

// SendQuit sends a QuitMsg to the program
func (b *Bridge) SendQuit() {
	b.program.Send(QuitMsg{})
}
