// Package session is the single authoritative client-side session.
//
// Snapshot is plain data and Apply is its pure transition function. Store owns the
// live snapshot, gates remote calls on isLoading and turns user intents into Ops:
// functions that perform exactly one remote call and report back an Event.
//
//	intent → Store.Send(...) → Op (async) → Result → Store.Resolve → Apply → views re-render
package session

import (
	"net/url"
	"strings"

	"docfill/internal/types"
)

// DefaultDownloadName is used when a download URL carries no filename.
const DefaultDownloadName = "document.docx"

// Snapshot is one immutable view of the session. Views render from it and never modify it.
type Snapshot struct {
	SessionID    string
	Document     *types.Document
	CurrentIndex int
	Progress     float64 // server-computed; never recomputed locally
	ChatMessages []types.ChatMessage
	PreviewHTML  string // "" means no preview yet
	IsComplete   bool
	DownloadURL  string
	IsLoading    bool
	Error        string

	// Greeting is the upload's initial assistant message, shown while the transcript is empty.
	Greeting string
	// PendingUpload is the name of the file being uploaded.
	PendingUpload string
	// SavedPath is where the last successful download was written.
	SavedPath string
}

// Initial returns the pristine empty snapshot.
func Initial() Snapshot {
	return Snapshot{}
}

// HasSession reports whether a session is live.
func (s Snapshot) HasSession() bool {
	return s.SessionID != ""
}

// Current returns the placeholder under conversational focus.
func (s Snapshot) Current() (types.Placeholder, bool) {
	return s.Document.At(s.CurrentIndex)
}

// FilledCount is the number of placeholders with a value.
func (s Snapshot) FilledCount() int {
	if s.Document == nil {
		return 0
	}
	n := 0
	for _, p := range s.Document.Placeholders {
		if s.Document.FilledValues.IsFilled(p) {
			n++
		}
	}
	return n
}

// CanSend reports whether an answer may be submitted. The conversation closes once
// every field is filled; fields stay editable from the preview.
func (s Snapshot) CanSend() bool {
	return s.HasSession() && !s.IsLoading && !s.IsComplete
}

// CanComplete reports whether the completion action is enabled: the server reports
// full progress and every placeholder has a value.
func (s Snapshot) CanComplete() bool {
	if !s.HasSession() || s.IsLoading || s.DownloadURL != "" || s.Document == nil {
		return false
	}
	return s.Progress >= 100 && len(s.Document.FilledValues) == len(s.Document.Placeholders)
}

// CanDownload reports whether the finalized document can be fetched.
func (s Snapshot) CanDownload() bool {
	return s.IsComplete && s.DownloadURL != ""
}

// CanReset reports whether there is anything to reset.
func (s Snapshot) CanReset() bool {
	return s.HasSession() || s.Document != nil
}

// DownloadFilename extracts the last path segment of a download URL.
func DownloadFilename(downloadURL string) string {
	u := downloadURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	name := u[strings.LastIndex(u, "/")+1:]
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if name == "" {
		return DefaultDownloadName
	}
	return name
}
