package chat

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"docfill/cmd/docfill/ui"
	"docfill/internal/remote"
	"docfill/internal/session"
	"docfill/internal/types"
)

// fakeRemote is an in-memory assistant service. It fills fields in order and
// renders a preview that reflects its own state.
type fakeRemote struct {
	placeholders []types.Placeholder
	filled       types.FilledValues
	current      int
	clauses      int // filler paragraphs before each field

	chatErr   error
	fillErr   error
	uploadErr error

	messages []string
	edits    []string
	fills    []string
	resets   int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		placeholders: []types.Placeholder{
			{ID: "ph-company", Key: "company", Name: "Company Name"},
			{Key: "date", Name: "Effective Date"},
			{Key: "amount", Name: "Amount"},
		},
		filled: types.FilledValues{},
	}
}

func (f *fakeRemote) html() string {
	var sb strings.Builder
	sb.WriteString("<h1>Agreement</h1>")
	for i, p := range f.placeholders {
		for c := 0; c < f.clauses; c++ {
			fmt.Fprintf(&sb, "<p>Clause %d.%d applies.</p>", i, c)
		}
		class, text := "placeholder-unfilled", "["+p.Name+"]"
		if v, ok := f.filled.Lookup(p); ok {
			class, text = "placeholder-filled", v
		} else if i == f.current {
			class = "placeholder-current"
		}
		fmt.Fprintf(&sb, `<p>%s: <span class="placeholder %s" data-ph="%s" data-key="%s" data-index="%d">%s</span></p>`,
			p.Name, class, p.ID, p.Key, i, text)
	}
	return sb.String()
}

func (f *fakeRemote) percent() float64 {
	return float64(len(f.filled)) * 100 / float64(len(f.placeholders))
}

func (f *fakeRemote) advance() {
	for f.current < len(f.placeholders) && f.filled.IsFilled(f.placeholders[f.current]) {
		f.current++
	}
}

func (f *fakeRemote) Upload(ctx context.Context, path string) (*remote.UploadResponse, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &remote.UploadResponse{
		SessionID:      "s-1",
		Filename:       "nda.docx",
		Placeholders:   f.placeholders,
		InitialMessage: "Hi! What is the company name?",
	}, nil
}

func (f *fakeRemote) SendMessage(ctx context.Context, sessionID, message string) (*remote.ChatResponse, error) {
	f.messages = append(f.messages, message)
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	f.filled[types.Identity(f.placeholders[f.current])] = message
	f.advance()
	return &remote.ChatResponse{
		Response:           "Got it. What is the next value?",
		PlaceholderFilled:  true,
		CurrentProgress:    f.current,
		TotalPlaceholders:  len(f.placeholders),
		ProgressPercentage: f.percent(),
		AllFilled:          len(f.filled) == len(f.placeholders),
		FilledValues:       f.filled.Clone(),
		Preview:            f.html(),
	}, nil
}

func (f *fakeRemote) GetPreview(ctx context.Context, sessionID string) (*remote.PreviewResponse, error) {
	current := f.current
	return &remote.PreviewResponse{
		Preview:            f.html(),
		ProgressPercentage: f.percent(),
		FilledValues:       f.filled.Clone(),
		CurrentIndex:       &current,
	}, nil
}

func (f *fakeRemote) EditField(ctx context.Context, sessionID, fieldKey, value string) (*remote.PreviewResponse, error) {
	f.edits = append(f.edits, fieldKey+"="+value)
	f.filled[fieldKey] = value
	return f.GetPreview(ctx, sessionID)
}

func (f *fakeRemote) FillField(ctx context.Context, sessionID, fieldKey, value string) (*remote.FillResponse, error) {
	f.fills = append(f.fills, fieldKey+"="+value)
	if f.fillErr != nil {
		return nil, f.fillErr
	}
	f.filled[fieldKey] = value
	f.advance()
	next, pct := f.current, f.percent()
	return &remote.FillResponse{
		Preview:            f.html(),
		NextIndex:          &next,
		FilledValues:       f.filled.Clone(),
		ProgressPercentage: &pct,
	}, nil
}

func (f *fakeRemote) Complete(ctx context.Context, sessionID string) (*remote.CompleteResponse, error) {
	return &remote.CompleteResponse{
		DownloadURL: "/api/download/nda_filled.docx",
		Filename:    "nda_filled.docx",
		Message:     "Your document is ready.",
	}, nil
}

func (f *fakeRemote) Download(ctx context.Context, filename string, w io.Writer) (int64, error) {
	n, err := io.WriteString(w, "docx-bytes")
	return int64(n), err
}

func (f *fakeRemote) Reset(ctx context.Context, sessionID string) error {
	f.resets++
	return nil
}

type testModelConfig struct {
	remote *fakeRemote
	width  int
	height int
	dir    string
}

// TestModelOption customizes NewTestModel.
type TestModelOption func(*testModelConfig)

// WithRemote installs a preconfigured fake service.
func WithRemote(r *fakeRemote) TestModelOption {
	return func(c *testModelConfig) { c.remote = r }
}

// WithSize sets the terminal size delivered before the test starts.
func WithSize(width, height int) TestModelOption {
	return func(c *testModelConfig) { c.width, c.height = width, height }
}

// NewTestModel builds a sized Model around a fake service with no preview delay.
func NewTestModel(t *testing.T, opts ...TestModelOption) (Model, *fakeRemote) {
	t.Helper()
	c := &testModelConfig{width: 140, height: 48, dir: t.TempDir()}
	for _, opt := range opts {
		opt(c)
	}
	if c.remote == nil {
		c.remote = newFakeRemote()
	}

	store := session.NewStore(c.remote, session.WithPreviewDelay(0), session.WithDownloadDir(c.dir))
	m := New(store, Options{
		Styles:      ui.NewStyles(ui.LightTheme()),
		DownloadDir: c.dir,
		StartDir:    c.dir,
	})
	t.Cleanup(m.cancel)

	next, _ := m.Update(tea.WindowSizeMsg{Width: c.width, Height: c.height})
	return next.(Model), c.remote
}

// drain runs cmd and every follow-up Op synchronously, feeding results back.
// Commands that do not report a Result end the chain.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		res, ok := cmd().(resultMsg)
		if !ok {
			return m
		}
		next, follow := m.Update(res)
		m = next.(Model)
		cmd = follow
	}
	return m
}

// press delivers a key and returns the command it produced without running it.
func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// uploaded returns a model whose session has started and whose preview is attached.
func uploaded(t *testing.T, opts ...TestModelOption) (Model, *fakeRemote) {
	t.Helper()
	m, r := NewTestModel(t, opts...)
	op, err := m.store.Upload("nda.docx")
	require.NoError(t, err)
	m = drain(t, m, m.run(op))
	require.True(t, m.store.Snapshot().HasSession())
	require.NotEmpty(t, m.sync.Markers())
	return m, r
}

// clickMarker sends a left click on the first cell of marker i.
func clickMarker(t *testing.T, m Model, i int) (Model, tea.Cmd) {
	t.Helper()
	x0, y0, ok := m.previewOrigin()
	require.True(t, ok)
	spans := m.sync.Spans(i)
	require.NotEmpty(t, spans)

	next, cmd := m.Update(tea.MouseMsg{
		X:      x0 + spans[0].Start,
		Y:      y0 + spans[0].Line - m.preview.YOffset,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})
	return next.(Model), cmd
}

var ansiSeq = regexp.MustCompile("\x1b\\[[0-9;]*m")

// plain strips colour sequences so views can be matched as text.
func plain(s string) string {
	return ansiSeq.ReplaceAllString(s, "")
}
