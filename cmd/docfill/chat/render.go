package chat

import (
	"fmt"
	"strings"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"docfill/cmd/docfill/ui"
	"docfill/internal/preview"
	"docfill/internal/progress"
	"docfill/internal/session"
	"docfill/internal/types"
)

func progressBar() progressbar.Model {
	return progressbar.New(progressbar.WithDefaultGradient(), progressbar.WithoutPercentage())
}

// renderProgress draws the progress summary, bar and field list in at most height rows.
func (m Model) renderProgress(snap session.Snapshot, height int) string {
	proj := snap.Project()
	rows, more := proj.Visible(m.progressRows)

	lines := []string{
		m.styles.Title.Render("Progress") + m.styles.Muted.Render(fmt.Sprintf("  %d/%d fields · %d%%",
			proj.CompletedCount, proj.TotalCount, proj.Rounded())),
		m.bar.ViewAs(proj.Percent / 100),
	}
	width := m.bar.Width
	for _, f := range rows {
		lines = append(lines, m.renderField(f, width))
	}
	if more > 0 {
		lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("+%d more fields", more)))
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderField(f progress.Field, width int) string {
	label := f.Placeholder.Label()
	if f.Filled {
		label = "✓ " + label
		if f.Value != "" {
			label += ": " + f.Value
		}
	}
	switch f.Status {
	case progress.Filled:
		return m.styles.FieldFilled.Render(truncate(label, width))
	case progress.Current:
		return m.styles.FieldCurrent.Render(truncate("▸ "+label, width))
	default:
		return m.styles.FieldPending.Render(truncate("○ "+label, width))
	}
}

// renderTranscript draws the conversation, the greeting before the first message,
// and the upload surface when no session exists.
func (m Model) renderTranscript(snap session.Snapshot) string {
	var sb strings.Builder

	if !snap.HasSession() && len(snap.ChatMessages) == 0 {
		switch {
		case snap.IsLoading && snap.PendingUpload != "":
			sb.WriteString(m.spinner.View() + " Uploading " + snap.PendingUpload + "...")
		default:
			sb.WriteString(m.styles.Title.Render("Fill a document by conversation") + "\n\n")
			sb.WriteString(m.styles.Body.Render("Upload a .docx file containing placeholders such as [Company Name] or {{date}}."))
			sb.WriteString("\n")
			sb.WriteString(m.styles.Muted.Render("Press ctrl+u to choose a file."))
		}
		return sb.String()
	}

	if len(snap.ChatMessages) == 0 && snap.Greeting != "" {
		sb.WriteString(m.styles.Greeting.Render(m.markdown(snap.Greeting, "greeting")))
	}

	for i, msg := range snap.ChatMessages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.renderMessage(msg))
	}

	if snap.IsLoading && snap.HasSession() {
		sb.WriteString("\n\n" + m.spinner.View() + m.styles.Muted.Render(" thinking..."))
	}
	if snap.SavedPath != "" {
		sb.WriteString("\n\n" + m.styles.Success.Render("Saved to "+snap.SavedPath))
	}
	return sb.String()
}

func (m Model) renderMessage(msg types.ChatMessage) string {
	who, style := "Assistant", m.styles.AssistantMessage
	if msg.Role == types.RoleUser {
		who, style = "You", m.styles.UserMessage
	}
	header := m.styles.Bold.Render(who) + " " + m.styles.Timestamp.Render(msg.Timestamp.Format("15:04"))
	return style.Render(header + "\n" + m.markdown(msg.Content, msg.ID))
}

// markdown renders content through glamour, cached per message and width.
func (m Model) markdown(content, id string) string {
	if m.renderer == nil {
		return content
	}
	key := ui.ComputeKey(id, content, m.rendererWidth, m.styles.Theme.IsDark)
	return m.cache.GetOrCompute(key, func() string {
		out, err := m.renderer.Render(content)
		if err != nil {
			return content
		}
		return strings.Trim(out, "\n")
	})
}

// renderPreview styles the laid-out preview. Styling never changes cell widths,
// so hit-testing against the layout stays exact.
func (m Model) renderPreview() string {
	selected := m.sync.SelectedIndex()
	markers := m.sync.Markers()

	var sb strings.Builder
	for i, line := range m.sync.Lines() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, seg := range line.Segments {
			sb.WriteString(m.segmentStyle(seg, markers, selected).Render(seg.Text))
		}
	}
	return sb.String()
}

func (m Model) segmentStyle(seg preview.Segment, markers []preview.Marker, selected int) lipgloss.Style {
	if seg.Marker < 0 || seg.Marker >= len(markers) {
		if seg.Heading {
			return m.styles.Heading
		}
		return m.styles.Body
	}

	var style lipgloss.Style
	switch markers[seg.Marker].State {
	case preview.Current:
		style = m.styles.MarkerCurrent
	case preview.Filled:
		style = m.styles.MarkerFilled
	default:
		style = m.styles.MarkerUnfilled
	}
	if seg.Marker == selected {
		style = style.Inherit(m.styles.MarkerSelected)
	}
	return style
}

// truncate shortens s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
