package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docfill/cmd/docfill/ui"
	"docfill/internal/logging"
	"docfill/internal/preview"
	"docfill/internal/session"
)

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.picking {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		return m, nil

	case resultMsg:
		return m.handleResult(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if snap := m.store.Snapshot(); snap.IsLoading {
			m.refreshTranscript(snap)
		}
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Directory listings and other component messages.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.picking {
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.editing != nil {
		m.prompt, cmd = m.prompt.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancel()
		return m, tea.Quit
	}

	if m.picking {
		return m.handlePickerKey(msg)
	}
	if m.editing != nil {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Dismiss):
		m.store.DismissError()
		m.status = ""
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Send):
		op, err := m.store.Send(m.input.Value())
		if err != nil {
			return m.rejected("send", err), nil
		}
		m.input.Reset()
		m.refresh()
		return m, m.run(op)

	case key.Matches(msg, m.keys.Upload):
		m.picking = true
		m.status = ""
		return m, m.picker.Init()

	case key.Matches(msg, m.keys.NextMarker):
		if i, ok := m.sync.Next(); ok {
			m.revealMarker(i)
		}
		m.refreshPreview()
		return m, nil

	case key.Matches(msg, m.keys.PrevMarker):
		if i, ok := m.sync.Prev(); ok {
			m.revealMarker(i)
		}
		m.refreshPreview()
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		return m.editSelected()

	case key.Matches(msg, m.keys.Complete):
		op, err := m.store.Complete()
		if err != nil {
			return m.rejected("complete", err), nil
		}
		m.refresh()
		return m, m.run(op)

	case key.Matches(msg, m.keys.Download):
		op, err := m.store.Download(m.downloadDir)
		if err != nil {
			return m.rejected("download", err), nil
		}
		m.status = "Downloading..."
		return m, m.run(op)

	case key.Matches(msg, m.keys.Reset):
		op := m.store.Reset()
		m.sync.Detach()
		m.focus.Reset()
		m.cache.Clear()
		m.status = ""
		m.input.Reset()
		m.refresh()
		return m, m.run(op)

	case key.Matches(msg, m.keys.Refresh):
		op, err := m.store.LoadPreview()
		if err != nil {
			return m.rejected("preview", err), nil
		}
		return m, m.run(op)

	case key.Matches(msg, m.keys.ScrollUp):
		m.transcript.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.transcript.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
		m.picking = false
		dir := m.picker.CurrentDirectory
		m.picker = filepicker.New()
		m.picker.AllowedTypes = []string{".docx"}
		m.picker.CurrentDirectory = dir

		op, err := m.store.Upload(path)
		if err != nil {
			return m.rejected("upload", err), nil
		}
		m.sync.Detach()
		m.focus.Reset()
		m.refresh()
		return m, m.run(op)
	}

	if didSelect, path := m.picker.DidSelectDisabledFile(msg); didSelect {
		m.status = fmt.Sprintf("%s is not a .docx document", path)
		return m, cmd
	}
	return m, cmd
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if !m.editing.pending {
			m.closePrompt()
		}
		return m, nil

	case tea.KeyEnter:
		if m.editing.pending {
			return m, nil
		}
		value := m.prompt.Value()
		req := m.editing.req

		// Filled fields go through edit; unfilled ones are direct fills whose
		// failures stay inside the prompt.
		if req.Filled {
			op, err := m.store.Edit(req.Identity, value)
			if errors.Is(err, session.ErrUnchanged) {
				m.closePrompt()
				return m, nil
			}
			if err != nil {
				m.editing.err = err.Error()
				return m, nil
			}
			m.closePrompt()
			m.refresh()
			return m, m.run(op)
		}

		op, err := m.store.Fill(req.Identity, value)
		if err != nil {
			m.editing.err = err.Error()
			return m, nil
		}
		m.editing.pending = true
		m.editing.err = ""
		m.refresh()
		return m, m.run(op)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	follow, err := m.store.Resolve(msg.res)

	var fillErr *session.FillError
	switch {
	case errors.As(err, &fillErr):
		if m.editing != nil {
			m.editing.pending = false
			m.editing.err = fillErr.Message
		}
	case err != nil:
		logging.UIWarn("resolve: %v", err)
	}

	switch ev := msg.res.Event.(type) {
	case session.DirectFillSucceeded:
		if m.editing != nil && m.editing.req.Identity == ev.Identity {
			m.closePrompt()
		}
	case session.DownloadSucceeded:
		m.status = fmt.Sprintf("Saved %s (%d bytes)", ev.Path, ev.Bytes)
	case session.DownloadFailed:
		m.status = ""
	}

	m.refresh()
	return m, m.run(follow)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	x0, y0, ok := m.previewOrigin()
	inPreview := ok && msg.X >= x0 && msg.Y >= y0 && msg.Y < y0+m.preview.Height

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if !inPreview || m.picking || m.editing != nil {
			return m, nil
		}
		line := msg.Y - y0 + m.preview.YOffset
		col := msg.X - x0
		i, hit := m.sync.HitTest(line, col)
		if !hit {
			return m, nil
		}
		m.sync.Select(i)
		return m.openPrompt(i)
	}

	var cmd tea.Cmd
	if inPreview {
		m.preview, cmd = m.preview.Update(msg)
	} else {
		m.transcript, cmd = m.transcript.Update(msg)
	}
	return m, cmd
}

// editSelected opens the prompt on the keyboard-selected marker, falling back to
// the field under conversational focus.
func (m Model) editSelected() (tea.Model, tea.Cmd) {
	if i := m.sync.SelectedIndex(); i >= 0 {
		return m.openPrompt(i)
	}
	snap := m.store.Snapshot()
	if i, ok := m.sync.FindIndex(snap.CurrentIndex); ok {
		m.sync.Select(i)
		return m.openPrompt(i)
	}
	p, ok := snap.Current()
	if !ok {
		return m.rejected("edit", session.ErrNoSession), nil
	}
	v, filled := snap.Document.FilledValues.Lookup(p)
	m.startPrompt(preview.EditRequest{Identity: p.Identity(), CurrentText: v, Filled: filled, Index: snap.CurrentIndex})
	return m, nil
}

func (m Model) openPrompt(i int) (tea.Model, tea.Cmd) {
	req, ok := m.sync.Interact(i)
	if !ok {
		return m, nil
	}
	snap := m.store.Snapshot()
	if !snap.HasSession() || snap.IsLoading {
		return m.rejected("edit", session.ErrBusy), nil
	}
	// The snapshot's filled state is authoritative over the marker's class.
	if p, _, found := snap.Document.Find(req.Identity); found {
		v, filled := snap.Document.FilledValues.Lookup(p)
		req.Filled = filled
		if filled {
			req.CurrentText = v
		}
	}
	m.startPrompt(req)
	return m, textinput.Blink
}

func (m *Model) startPrompt(req preview.EditRequest) {
	name := req.Identity
	if p, _, ok := m.store.Snapshot().Document.Find(req.Identity); ok {
		name = p.Label()
	}
	m.editing = &editPrompt{req: req, name: name}
	m.prompt.Reset()
	if req.Filled {
		m.prompt.SetValue(req.CurrentText)
		m.prompt.CursorEnd()
	}
	m.prompt.Width = max(m.inputWidth()-lipgloss.Width(name)-4, 10)
	m.prompt.Focus()
	m.input.Blur()
	m.status = ""
}

func (m *Model) closePrompt() {
	m.editing = nil
	m.prompt.Blur()
	m.input.Focus()
}

// rejected records why an intent did nothing. Rejections never touch the snapshot.
func (m Model) rejected(intent string, err error) Model {
	logging.UIDebug("%s rejected: %v", intent, err)
	switch {
	case errors.Is(err, session.ErrEmptyMessage):
		m.status = ""
	case errors.Is(err, session.ErrBusy):
		m.status = "Please wait for the current request to finish"
	default:
		m.status = capitalize(err.Error())
	}
	return m
}

// resize records the terminal size and re-lays out every pane.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.layout = ui.NewLayoutConfig(width, height)
	m.ready = true
	m.help.Width = width
	m.picker.Height = max(height-4, 3)
	m.refresh()
}

func (m Model) inputWidth() int {
	g := m.geometry(m.store.Snapshot())
	return max(ui.PanelContentWidth(g.leftWidth)-3, 10)
}

// refresh re-derives every view from the current snapshot.
func (m *Model) refresh() {
	snap := m.store.Snapshot()
	m.keys.sync(snap)
	m.applyGeometry(snap)

	if buf, changed := m.focus.Sync(snap.Document, snap.CurrentIndex); changed {
		m.input.SetValue(buf)
		m.input.CursorEnd()
	}
	switch {
	case !snap.HasSession():
		m.input.Placeholder = "Upload a document to begin..."
	case snap.DownloadURL != "":
		m.input.Placeholder = "Document finalized"
	case snap.IsComplete:
		m.input.Placeholder = "All fields filled"
	default:
		m.input.Placeholder = "Type your answer..."
	}

	m.refreshPreview()
	m.refreshTranscript(snap)
}

// refreshPreview re-lays out the preview and keeps the current field in view.
func (m *Model) refreshPreview() {
	snap := m.store.Snapshot()
	if snap.PreviewHTML == "" {
		m.sync.Detach()
		m.scrolledHTML, m.scrolledIndex = "", -1
		m.preview.SetContent("")
		return
	}
	if _, err := m.sync.Attach(snap.PreviewHTML, m.preview.Width); err != nil {
		return
	}
	m.preview.SetContent(m.renderPreview())

	// Focus scroll: only when the index or the markup changed, so manual
	// scrolling is left alone otherwise.
	if snap.CurrentIndex != m.scrolledIndex || snap.PreviewHTML != m.scrolledHTML {
		if y, ok := m.sync.ScrollTarget(snap.CurrentIndex, m.preview.Height); ok {
			m.preview.SetYOffset(y)
		}
		m.scrolledIndex, m.scrolledHTML = snap.CurrentIndex, snap.PreviewHTML
	}
}

// revealMarker scrolls the preview so marker i is visible.
func (m *Model) revealMarker(i int) {
	line, ok := m.sync.LineOf(i)
	if !ok {
		return
	}
	if line < m.preview.YOffset || line >= m.preview.YOffset+m.preview.Height {
		m.preview.SetYOffset(max(line-m.preview.Height/2, 0))
	}
}

func (m *Model) refreshTranscript(snap session.Snapshot) {
	m.transcript.SetContent(m.renderTranscript(snap))
	if n := len(snap.ChatMessages); n != m.renderedCount {
		m.renderedCount = n
		m.transcript.GotoBottom()
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
