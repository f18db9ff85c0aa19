package tui

import tea "github.com/charmbracelet/bubbletea"

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		case "l":
			m.ShowLogs = !m.ShowLogs
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case TickMsg:
		// Continue ticking for timer updates
		return m, tickCmd()

	case DoneMsg:
		m.Done = true
		return m, tea.Quit

	case QuitMsg:
		m.Quitting = true
		return m, tea.Quit

	case BuildStartedMsg:
		if _, seen := m.ActiveImages[msg.Image]; !seen {
			m.order = append(m.order, msg.Image)
		}
		m.ActiveImages[msg.Image] = &ImageState{
			Name:       msg.Image,
			Tag:        msg.Tag,
			TotalSteps: msg.TotalSteps,
		}

	case BuildStepMsg:
		if img, ok := m.ActiveImages[msg.Image]; ok {
			if msg.Step > 0 {
				img.CurrentStep = msg.Step
				if msg.Total > 0 {
					img.TotalSteps = msg.Total
				}
			}
			img.LastLine = msg.Line
		}

	case BuildCompletedMsg:
		m.removeImage(msg.Image)
		m.CompletedImages++

	case BuildFailedMsg:
		m.removeImage(msg.Image)
		m.FailedImages++

	case LogMsg:
		m.LogLines = append(m.LogLines, msg.Line)
		if m.LogLimit > 0 && len(m.LogLines) > m.LogLimit {
			m.LogLines = m.LogLines[len(m.LogLines)-m.LogLimit:]
		}
	}

	return m, nil
}

func (m *Model) removeImage(name string) {
	delete(m.ActiveImages, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
