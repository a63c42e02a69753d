// Package chat implements the interactive docfill terminal UI as one bubbletea program.
//
// Every panel renders from the session store's snapshot. Key presses and mouse clicks
// become store intents; the Ops they return run as tea.Cmds and come back as resultMsgs,
// which are the only way the snapshot changes after an intent is issued.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"docfill/cmd/docfill/ui"
	"docfill/internal/conversation"
	"docfill/internal/logging"
	"docfill/internal/preview"
	"docfill/internal/progress"
	"docfill/internal/session"
)

// renderTTL bounds how long rendered transcript entries stay cached.
const renderTTL = 10 * time.Minute

// Options configures a Model.
type Options struct {
	Styles       ui.Styles
	ProgressRows int    // progress list rows before "+N more fields"
	DownloadDir  string // where ctrl+d saves; empty uses the store default
	StartDir     string // first directory the upload picker shows
	InitialFile  string // uploaded as soon as the program starts
}

// resultMsg carries a finished Op back into the update loop.
type resultMsg struct {
	res session.Result
}

// editPrompt is the open field editor.
type editPrompt struct {
	req     preview.EditRequest
	name    string
	pending bool   // a direct fill is in flight
	err     string // inline direct-fill failure
}

// Model is the bubbletea model for the document-filling session.
type Model struct {
	store  *session.Store
	sync   *preview.Synchronizer
	focus  *conversation.Focus
	styles ui.Styles
	keys   keyMap
	help   help.Model

	renderer      *glamour.TermRenderer
	rendererWidth int
	cache         *ui.RenderCache

	input      textinput.Model
	prompt     textinput.Model
	editing    *editPrompt
	transcript viewport.Model
	preview    viewport.Model
	spinner    spinner.Model
	picker     filepicker.Model
	picking    bool
	bar        progressbar.Model

	layout        ui.LayoutConfig
	width         int
	height        int
	ready         bool
	progressRows  int
	downloadDir   string
	initialFile   string
	status        string
	renderedCount int
	scrolledIndex int
	scrolledHTML  string

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the chat model around a store.
func New(store *session.Store, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Upload a document to begin..."
	ti.Prompt = "› "
	ti.CharLimit = 2000
	ti.Focus()

	pi := textinput.New()
	pi.Prompt = ""
	pi.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Spinner

	fp := filepicker.New()
	fp.AllowedTypes = []string{".docx"}
	if opts.StartDir != "" {
		fp.CurrentDirectory = opts.StartDir
	}

	rows := opts.ProgressRows
	if rows <= 0 {
		rows = progress.DefaultVisibleRows
	}

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		store:         store,
		sync:          preview.NewSynchronizer(),
		focus:         &conversation.Focus{},
		styles:        opts.Styles,
		keys:          defaultKeyMap(),
		help:          help.New(),
		cache:         ui.NewRenderCache(renderTTL),
		input:         ti,
		prompt:        pi,
		transcript:    viewport.New(0, 0),
		preview:       viewport.New(0, 0),
		spinner:       sp,
		picker:        fp,
		bar:           progressBar(),
		progressRows:  rows,
		downloadDir:   opts.DownloadDir,
		initialFile:   opts.InitialFile,
		scrolledIndex: -1,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Init starts the spinner and the initial upload, if one was requested.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.initialFile != "" {
		op, err := m.store.Upload(m.initialFile)
		if err != nil {
			logging.UIWarn("initial upload rejected: %v", err)
		} else {
			cmds = append(cmds, m.run(op))
		}
	}
	return tea.Batch(cmds...)
}

// Store exposes the underlying session store.
func (m Model) Store() *session.Store {
	return m.store
}

// run turns an Op into a command that reports its Result.
func (m Model) run(op session.Op) tea.Cmd {
	if op == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{res: op(ctx)}
	}
}

// newRenderer builds the markdown renderer for the transcript width.
func newRenderer(dark bool, width int) *glamour.TermRenderer {
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		logging.UIWarn("markdown renderer unavailable: %v", err)
		return nil
	}
	return r
}
