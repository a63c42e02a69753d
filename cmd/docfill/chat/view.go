package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"docfill/cmd/docfill/ui"
	"docfill/internal/session"
)

// geometry is the on-screen placement of every pane, in cells.
// Wide terminals put the conversation left and the preview right; compact
// terminals stack the preview above the conversation.
type geometry struct {
	leftWidth  int
	rightWidth int

	progressHeight   int // progress block above the transcript
	transcriptHeight int // outer height of the transcript pane

	previewLeft   int
	previewTop    int
	previewHeight int // outer height of the preview pane
}

func (m Model) geometry(snap session.Snapshot) geometry {
	bodyTop := ui.HeaderHeight + ui.BannerHeight
	body := m.layout.BodyHeight(true)
	left, right := m.layout.SplitPaneWidths()

	g := geometry{leftWidth: left, rightWidth: right, previewTop: bodyTop}
	leftHeight := body
	if m.layout.IsCompact {
		g.previewHeight = body / 2
		leftHeight = body - g.previewHeight
	} else {
		g.previewLeft = left + ui.SplitPaneDivider
		g.previewHeight = body
	}

	g.progressHeight = m.progressHeight(snap)
	g.transcriptHeight = leftHeight - g.progressHeight - ui.InputHeight
	if g.transcriptHeight < 3 {
		g.progressHeight = max(g.progressHeight-(3-g.transcriptHeight), 0)
		g.transcriptHeight = max(leftHeight-g.progressHeight-ui.InputHeight, 0)
	}
	return g
}

// progressHeight is the row count of the progress block for snap.
func (m Model) progressHeight(snap session.Snapshot) int {
	if snap.Document == nil {
		return 0
	}
	rows, more := snap.Project().Visible(m.progressRows)
	h := ui.ProgressBarRows + len(rows)
	if more > 0 {
		h++
	}
	return h
}

// previewOrigin is the screen cell of the preview viewport's first content cell.
func (m Model) previewOrigin() (x, y int, ok bool) {
	if !m.ready || m.picking {
		return 0, 0, false
	}
	g := m.geometry(m.store.Snapshot())
	x = g.previewLeft + ui.PanelBorderWidth + ui.PanelPaddingH
	y = g.previewTop + ui.PanelBorderWidth + 1 // title row
	return x, y, true
}

// applyGeometry sizes the viewports for the current snapshot.
func (m *Model) applyGeometry(snap session.Snapshot) {
	if !m.ready {
		return
	}
	g := m.geometry(snap)
	m.transcript.Width = ui.PanelContentWidth(g.leftWidth)
	m.transcript.Height = ui.PanelContentHeight(g.transcriptHeight)
	m.preview.Width = ui.PanelContentWidth(g.rightWidth)
	m.preview.Height = max(ui.PanelContentHeight(g.previewHeight)-1, 0)
	m.input.Width = max(ui.PanelContentWidth(g.leftWidth)-3, 10)
	m.bar.Width = max(g.leftWidth-2, 10)

	if w := m.transcript.Width - 2; w != m.rendererWidth || m.renderer == nil {
		m.renderer = newRenderer(m.styles.Theme.IsDark, w)
		m.rendererWidth = w
	}
}

// View renders the whole screen.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.picking {
		title := m.styles.Header.Render("Select a .docx document")
		hint := m.styles.Footer.Render("enter select · esc cancel")
		return lipgloss.JoinVertical(lipgloss.Left, title, m.picker.View(), hint)
	}

	snap := m.store.Snapshot()
	g := m.geometry(snap)

	left := m.renderLeft(snap, g)
	right := m.renderPreviewPane(snap, g)

	var body string
	if m.layout.IsCompact {
		body = lipgloss.JoinVertical(lipgloss.Left, right, left)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", ui.SplitPaneDivider), right)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(snap),
		m.renderBanner(snap),
		body,
		m.renderFooter(),
	)
}

func (m Model) renderLeft(snap session.Snapshot, g geometry) string {
	parts := make([]string, 0, 3)
	if g.progressHeight > 0 {
		parts = append(parts, m.renderProgress(snap, g.progressHeight))
	}
	parts = append(parts,
		m.styles.Pane.
			Width(max(g.leftWidth-2*ui.PanelBorderWidth, 0)).
			Height(ui.PanelContentHeight(g.transcriptHeight)).
			Render(m.transcript.View()),
		m.renderInput(g),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderInput(g geometry) string {
	style := m.styles.Focus.Width(max(g.leftWidth-2*ui.PanelBorderWidth, 0))
	if m.editing == nil {
		return style.Render(m.input.View())
	}

	line := m.styles.Prompt.Render("Edit "+m.editing.name+": ") + m.prompt.View()
	switch {
	case m.editing.pending:
		line += " " + m.spinner.View()
	case m.editing.err != "":
		line += " " + m.styles.Error.Render("⚠ "+m.editing.err)
	}
	return style.Render(line)
}

func (m Model) renderPreviewPane(snap session.Snapshot, g geometry) string {
	title := m.styles.Title.Render("Preview")
	if snap.PreviewHTML != "" {
		title += m.styles.Muted.Render("  click or tab to a field, ctrl+e to edit")
	}

	content := m.preview.View()
	if snap.PreviewHTML == "" {
		switch {
		case snap.HasSession():
			content = m.styles.Muted.Render(m.spinner.View() + " Loading preview...")
		default:
			content = m.styles.Muted.Render("The document preview appears here after upload.")
		}
	}

	return m.styles.Pane.
		Width(max(g.rightWidth-2*ui.PanelBorderWidth, 0)).
		Height(ui.PanelContentHeight(g.previewHeight)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m Model) renderHeader(snap session.Snapshot) string {
	head := m.styles.Header.Render("docfill")
	if snap.Document != nil && snap.Document.Filename != "" {
		head += m.styles.Muted.Render(" · " + snap.Document.Filename)
	}

	switch {
	case snap.IsLoading:
		head += "  " + m.spinner.View() + m.styles.Muted.Render(" working")
	case snap.DownloadURL != "":
		head += "  " + m.styles.Success.Render("✓ ready to download")
	case snap.CanComplete():
		head += "  " + m.styles.Badge.Render("all fields filled")
	}
	return head
}

func (m Model) renderBanner(snap session.Snapshot) string {
	if snap.Error == "" {
		return ""
	}
	return m.styles.Banner.Width(m.width).Render("✕ " + snap.Error + "   esc to dismiss")
}

func (m Model) renderFooter() string {
	if m.status != "" {
		return m.styles.Footer.Render(m.status)
	}
	return m.styles.Footer.Render(m.help.View(m.keys))
}
