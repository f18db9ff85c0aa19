package tui

import (
	"fmt"
	"strings"
	"time"
)

// View implements tea.Model
func (m *Model) View() string {
	if m.Done || m.Quitting {
		return ""
	}

	var b strings.Builder

	// Header
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	// Active builds
	b.WriteString(m.renderActiveImages())

	// Status line
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")

	// Recent log lines
	if m.ShowLogs && len(m.LogLines) > 0 {
		b.WriteString(m.renderLogs())
	}

	// Footer
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title line with timer and runtime
func (m *Model) renderHeader() string {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	timer := fmt.Sprintf("[%s]", formatDuration(elapsed))
	runtime := fmt.Sprintf("Runtime: %s", m.Runtime)

	return fmt.Sprintf("%s  %s  %s",
		m.Styles.Title.Render("tomoscan build"),
		m.Styles.Timer.Render(timer),
		m.Styles.Runtime.Render(runtime),
	)
}

// renderActiveImages renders the builds in progress, in start order
func (m *Model) renderActiveImages() string {
	if len(m.ActiveImages) == 0 {
		return "  No active builds\n\n"
	}

	var b strings.Builder
	for _, name := range m.order {
		img, ok := m.ActiveImages[name]
		if !ok {
			continue
		}
		b.WriteString(m.renderImage(img))
		b.WriteString("\n")
	}

	return b.String()
}

// renderImage renders a single in-progress build
func (m *Model) renderImage(img *ImageState) string {
	var b strings.Builder

	// Image header: ● interactive [████░░░░░░░░] step 3/7
	icon := m.Styles.ImageActive.Render(IconActive)
	name := m.Styles.ImageName.Render(img.Name)
	progress := m.renderProgressBar(img.CurrentStep, img.TotalSteps, 20)
	stepCount := fmt.Sprintf("step %d/%d", img.CurrentStep, img.TotalSteps)

	fmt.Fprintf(&b, "  %s %s %s %s\n", icon, name, progress, stepCount)

	// Last runtime output line
	if img.LastLine != "" {
		line := m.Styles.StepText.Render(trimLine(img.LastLine, 76))
		fmt.Fprintf(&b, "      %s\n", line)
	}

	return b.String()
}

// renderProgressBar creates a progress bar of the given width
func (m *Model) renderProgressBar(completed, total, width int) string {
	if total == 0 {
		total = 1 // Avoid division by zero
	}

	filled := min((completed*width)/total, width)

	filledStr := strings.Repeat("█", filled)
	emptyStr := strings.Repeat("░", width-filled)

	return "[" +
		m.Styles.ProgressFilled.Render(filledStr) +
		m.Styles.ProgressEmpty.Render(emptyStr) +
		"]"
}

// renderStatusLine renders the summary status line
func (m *Model) renderStatusLine() string {
	activeCount := len(m.ActiveImages)

	complete := m.Styles.StatusComplete.Render(fmt.Sprintf("%d built", m.CompletedImages))
	failed := m.Styles.StatusFailed.Render(fmt.Sprintf("%d failed", m.FailedImages))
	active := m.Styles.StatusActive.Render(fmt.Sprintf("%d building", activeCount))

	return fmt.Sprintf("  Images: %d/%d %s | %s | %s",
		m.CompletedImages+m.FailedImages,
		m.TotalImages,
		complete,
		failed,
		active,
	)
}

// renderLogs renders the tail of the log buffer
func (m *Model) renderLogs() string {
	const tail = 5

	lines := m.LogLines
	if len(lines) > tail {
		lines = lines[len(lines)-tail:]
	}

	var b strings.Builder
	b.WriteString(m.Styles.LogTitle.Render("  Logs"))
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString("  ")
		b.WriteString(m.Styles.LogLine.Render(trimLine(line, 78)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFooter renders the help text
func (m *Model) renderFooter() string {
	quit := m.Styles.FooterKey.Render("q")
	logs := m.Styles.FooterKey.Render("l")
	return m.Styles.Footer.Render(fmt.Sprintf("  Press %s to quit, %s to toggle logs", quit, logs))
}

// formatDuration formats a duration as HH:MM:SS
func formatDuration(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// trimLine cuts a line to at most width runes for single-line display
func trimLine(line string, width int) string {
	runes := []rune(line)
	if len(runes) <= width {
		return line
	}
	return string(runes[:width-1]) + "…"
}
