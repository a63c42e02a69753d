package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docfill/internal/conversation"
	"docfill/internal/logging"
	"docfill/internal/remote"
)

// DefaultPreviewDelay is the pause between upload success and the first preview fetch,
// giving the service time to render.
const DefaultPreviewDelay = 500 * time.Millisecond

// Intent rejections. A rejected intent changes nothing.
var (
	ErrNoSession    = errors.New("no active session")
	ErrBusy         = errors.New("a request is already in flight")
	ErrEmptyMessage = errors.New("message is empty")
	ErrEmptyPath    = errors.New("no document selected")
	ErrUnknownField = errors.New("unknown field")
	ErrUnchanged    = errors.New("value unchanged")
	ErrFinalized    = errors.New("document already finalized")
	ErrNotFinalized = errors.New("document not finalized")
	ErrComplete     = errors.New("every field is already filled")
	ErrIncomplete   = errors.New("document has unfilled fields")
)

// Remote is the slice of the assistant service the store drives.
type Remote interface {
	Upload(ctx context.Context, path string) (*remote.UploadResponse, error)
	SendMessage(ctx context.Context, sessionID, message string) (*remote.ChatResponse, error)
	GetPreview(ctx context.Context, sessionID string) (*remote.PreviewResponse, error)
	EditField(ctx context.Context, sessionID, fieldKey, value string) (*remote.PreviewResponse, error)
	FillField(ctx context.Context, sessionID, fieldKey, value string) (*remote.FillResponse, error)
	Complete(ctx context.Context, sessionID string) (*remote.CompleteResponse, error)
	Download(ctx context.Context, filename string, w io.Writer) (int64, error)
	Reset(ctx context.Context, sessionID string) error
}

// Result is the outcome of an Op, stamped with the session epoch and request
// sequence it was issued under.
type Result struct {
	Event Event
	epoch uint64
	seq   uint64 // 0 for calls outside the isLoading gate
	after uint64 // gated results applied when a preview fetch was issued
}

// Op performs one remote call. Ops only capture values at issue time, so they
// may run on any goroutine; their Results must be handed back to Resolve.
type Op func(ctx context.Context) Result

// FillError is returned by Resolve when a direct fill fails, for the caller to show inline.
type FillError struct {
	Message string
	Err     error
}

func (e *FillError) Error() string { return e.Message }
func (e *FillError) Unwrap() error { return e.Err }

// Store owns the live snapshot. It is the single mutation entry point and is not
// safe for concurrent use: call it from the goroutine that renders.
type Store struct {
	remote Remote
	snap   Snapshot

	epoch    uint64 // advanced on reset and on upload success
	seq      uint64
	inflight uint64 // seq of the outstanding gated call, 0 when idle
	applied  uint64 // gated results folded in this epoch

	previewDelay time.Duration
	downloadDir  string
}

// Option configures a Store.
type Option func(*Store)

// WithPreviewDelay sets the pause before the post-upload preview fetch.
func WithPreviewDelay(d time.Duration) Option {
	return func(s *Store) { s.previewDelay = d }
}

// WithDownloadDir sets where Download writes when no directory is given.
func WithDownloadDir(dir string) Option {
	return func(s *Store) { s.downloadDir = dir }
}

// NewStore creates a store holding the initial snapshot.
func NewStore(r Remote, opts ...Option) *Store {
	s := &Store{
		remote:       r,
		snap:         Initial(),
		previewDelay: DefaultPreviewDelay,
		downloadDir:  ".",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() Snapshot {
	return s.snap
}

// DismissError clears the banner.
func (s *Store) DismissError() {
	s.apply(ErrorDismissed{})
}

// Upload starts uploading the document at path.
func (s *Store) Upload(path string) (Op, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	if s.snap.IsLoading {
		return nil, ErrBusy
	}

	seq := s.begin(UploadStarted{Filename: filepath.Base(path)})
	logging.Session("upload: %s", path)
	return s.gated(seq, func(ctx context.Context) Event {
		resp, err := s.remote.Upload(ctx, path)
		if err != nil {
			return UploadFailed{Message: remote.DisplayMessage(err, remote.FallbackUpload)}
		}
		return UploadSucceeded{Response: resp}
	}), nil
}

// Send submits an answer. The user message is appended immediately and never rolled back.
func (s *Store) Send(text string) (Op, error) {
	text = strings.TrimSpace(text)
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.snap.IsComplete {
		return nil, ErrComplete
	}
	if text == "" {
		return nil, ErrEmptyMessage
	}

	sessionID := s.snap.SessionID
	seq := s.begin(MessageSent{Text: text, Stamp: conversation.NewStamp(conversation.KindUser)})
	return s.gated(seq, func(ctx context.Context) Event {
		resp, err := s.remote.SendMessage(ctx, sessionID, text)
		if err != nil {
			return ChatFailed{
				Message: remote.DisplayMessage(err, remote.FallbackChat),
				Stamp:   conversation.NewStamp(conversation.KindError),
			}
		}
		return ChatSucceeded{Response: resp, Stamp: conversation.NewStamp(conversation.KindAssistant)}
	}), nil
}

// Edit replaces the value of the field named by identity.
func (s *Store) Edit(identity, value string) (Op, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	p, _, ok := s.snap.Document.Find(identity)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, identity)
	}
	if cur, filled := s.snap.Document.FilledValues.Lookup(p); filled && cur == value {
		return nil, ErrUnchanged
	}

	sessionID := s.snap.SessionID
	seq := s.begin(RequestStarted{})
	logging.SessionDebug("edit: %s", identity)
	return s.gated(seq, func(ctx context.Context) Event {
		resp, err := s.remote.EditField(ctx, sessionID, identity, value)
		if err != nil {
			return EditFailed{Message: remote.DisplayMessage(err, remote.FallbackEdit)}
		}
		return EditSucceeded{
			Identity: identity,
			Value:    value,
			Response: resp,
			Stamp:    conversation.NewStamp(conversation.KindEdit),
		}
	}), nil
}

// Fill assigns a value directly, outside the conversation.
func (s *Store) Fill(identity, value string) (Op, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, _, ok := s.snap.Document.Find(identity); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, identity)
	}
	if strings.TrimSpace(value) == "" {
		return nil, ErrEmptyMessage
	}

	sessionID := s.snap.SessionID
	seq := s.begin(RequestStarted{})
	logging.SessionDebug("fill: %s", identity)
	return s.gated(seq, func(ctx context.Context) Event {
		resp, err := s.remote.FillField(ctx, sessionID, identity, value)
		if err != nil {
			return DirectFillFailed{Message: remote.DisplayMessage(err, remote.FallbackFill), Err: err}
		}
		return DirectFillSucceeded{Identity: identity, Value: value, Response: resp}
	}), nil
}

// Complete asks the service to finalize the document.
func (s *Store) Complete() (Op, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.snap.DownloadURL != "" {
		return nil, ErrFinalized
	}
	if !s.snap.CanComplete() {
		return nil, ErrIncomplete
	}

	sessionID := s.snap.SessionID
	seq := s.begin(RequestStarted{})
	logging.Session("complete: session=%s", sessionID)
	return s.gated(seq, func(ctx context.Context) Event {
		resp, err := s.remote.Complete(ctx, sessionID)
		if err != nil {
			return CompleteFailed{Message: remote.DisplayMessage(err, remote.FallbackComplete)}
		}
		return CompleteSucceeded{Response: resp, Stamp: conversation.NewStamp(conversation.KindSuccess)}
	}), nil
}

// Download writes the finalized document into dir, or the store's download directory
// when dir is empty. It does not take the isLoading gate.
func (s *Store) Download(dir string) (Op, error) {
	if !s.snap.CanDownload() {
		return nil, ErrNotFinalized
	}
	if dir == "" {
		dir = s.downloadDir
	}
	filename := DownloadFilename(s.snap.DownloadURL)
	dest := filepath.Join(dir, filename)

	return s.ungated(func(ctx context.Context) Event {
		n, err := downloadTo(ctx, s.remote, filename, dest)
		if err != nil {
			logging.SessionWarn("download %s failed: %v", filename, err)
			return DownloadFailed{Message: remote.DisplayMessage(err, remote.FallbackDownload)}
		}
		return DownloadSucceeded{Path: dest, Bytes: n}
	}), nil
}

// LoadPreview fetches the rendered document. It does not take the isLoading gate.
func (s *Store) LoadPreview() (Op, error) {
	if !s.snap.HasSession() {
		return nil, ErrNoSession
	}
	return s.previewOp(0), nil
}

// Reset clears the session locally at once. The returned Op notifies the service and
// is nil when there was no session to notify. Results of calls issued before the reset
// are discarded.
func (s *Store) Reset() Op {
	sessionID := s.snap.SessionID
	s.apply(ResetRequested{})
	s.epoch++
	s.inflight = 0
	s.applied = 0
	logging.Session("reset: session=%s", sessionID)

	if sessionID == "" {
		return nil
	}
	return s.ungated(func(ctx context.Context) Event {
		return ResetCompleted{Err: s.remote.Reset(ctx, sessionID)}
	})
}

// Resolve folds a Result into the snapshot. Results from an earlier session, or for a
// request that is no longer the one in flight, are dropped. A preview fetched before a
// gated result landed is dropped too and fetched again. The returned Op is a follow-up
// to run (the delayed preview after an upload, or that refetch); the error is set only
// for a failed direct fill.
func (s *Store) Resolve(res Result) (Op, error) {
	if res.epoch != s.epoch {
		logging.SessionDebug("dropping stale %T from epoch %d (now %d)", res.Event, res.epoch, s.epoch)
		return nil, nil
	}
	if res.seq != 0 {
		if res.seq != s.inflight {
			logging.SessionDebug("dropping stale %T seq=%d (in flight %d)", res.Event, res.seq, s.inflight)
			return nil, nil
		}
		s.inflight = 0
		s.applied++
	} else if _, ok := res.Event.(PreviewLoaded); ok && res.after != s.applied {
		logging.PreviewDebug("dropping preview issued before %d newer result(s)", s.applied-res.after)
		return s.previewOp(0), nil
	}

	s.apply(res.Event)

	switch ev := res.Event.(type) {
	case UploadSucceeded:
		s.epoch++
		s.applied = 0
		logging.Session("session %s started with %d placeholders", ev.Response.SessionID, len(ev.Response.Placeholders))
		return s.previewOp(s.previewDelay), nil
	case DirectFillFailed:
		return nil, &FillError{Message: ev.Message, Err: ev.Err}
	case DirectFillSucceeded:
		if len(ev.Response.AutoFilled) > 0 {
			logging.SessionDebug("fill %s also filled %v", ev.Identity, ev.Response.AutoFilled)
		}
	case PreviewFailed:
		logging.PreviewWarn("preview load failed: %v", ev.Err)
	case ResetCompleted:
		if ev.Err != nil {
			logging.SessionWarn("remote reset failed: %v", ev.Err)
		}
	case UploadFailed:
		logging.SessionWarn("upload failed: %s", ev.Message)
	case ChatFailed:
		logging.SessionWarn("chat failed: %s", ev.Message)
	}
	return nil, nil
}

func (s *Store) apply(ev Event) {
	s.snap = Apply(s.snap, ev)
}

// ready is the entry guard shared by session-mutating intents.
func (s *Store) ready() error {
	if !s.snap.HasSession() {
		return ErrNoSession
	}
	if s.snap.IsLoading {
		return ErrBusy
	}
	return nil
}

// begin applies the start event and claims the in-flight slot.
func (s *Store) begin(ev Event) uint64 {
	s.apply(ev)
	s.seq++
	s.inflight = s.seq
	return s.seq
}

func (s *Store) gated(seq uint64, call func(context.Context) Event) Op {
	epoch := s.epoch
	return func(ctx context.Context) Result {
		return Result{Event: call(ctx), epoch: epoch, seq: seq}
	}
}

func (s *Store) ungated(call func(context.Context) Event) Op {
	return s.gated(0, call)
}

func (s *Store) previewOp(delay time.Duration) Op {
	sessionID := s.snap.SessionID
	epoch, after := s.epoch, s.applied
	call := func(ctx context.Context) Event {
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return PreviewFailed{Err: ctx.Err()}
			}
		}
		resp, err := s.remote.GetPreview(ctx, sessionID)
		if err != nil {
			return PreviewFailed{Err: err}
		}
		return PreviewLoaded{Response: resp}
	}
	return func(ctx context.Context) Result {
		return Result{Event: call(ctx), epoch: epoch, after: after}
	}
}

// downloadTo streams filename into dest, removing a partial file on failure.
func downloadTo(ctx context.Context, r Remote, filename, dest string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, fmt.Errorf("failed to create download dir: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dest, err)
	}
	n, err := r.Download(ctx, filename, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return 0, err
	}
	return n, nil
}
