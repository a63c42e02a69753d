package session

import (
	"docfill/internal/conversation"
	"docfill/internal/remote"
)

// Event is one input to Apply. The set is closed.
type Event interface {
	isEvent()
}

// UploadStarted marks the start of an upload; the previous document stays visible.
type UploadStarted struct{ Filename string }

// UploadSucceeded replaces the whole session.
type UploadSucceeded struct{ Response *remote.UploadResponse }

// UploadFailed keeps the previous view and surfaces Message.
type UploadFailed struct{ Message string }

// MessageSent appends the user's answer before the network call resolves.
type MessageSent struct {
	Text  string
	Stamp conversation.Stamp
}

// ChatSucceeded folds a conversational reply into the session.
type ChatSucceeded struct {
	Response *remote.ChatResponse
	Stamp    conversation.Stamp
}

// ChatFailed records a failed turn in the transcript and the banner.
type ChatFailed struct {
	Message string
	Stamp   conversation.Stamp
}

// RequestStarted marks an edit, fill or completion call as outstanding.
type RequestStarted struct{}

// EditSucceeded applies a manual field edit.
type EditSucceeded struct {
	Identity string
	Value    string
	Response *remote.PreviewResponse
	Stamp    conversation.Stamp
}

// EditFailed surfaces a rejected edit.
type EditFailed struct{ Message string }

// DirectFillSucceeded applies a value assigned outside the conversation.
type DirectFillSucceeded struct {
	Identity string
	Value    string
	Response *remote.FillResponse
}

// DirectFillFailed is handed back to the caller instead of the banner.
type DirectFillFailed struct {
	Message string
	Err     error
}

// PreviewLoaded installs a freshly fetched preview.
type PreviewLoaded struct{ Response *remote.PreviewResponse }

// PreviewFailed is logged only; the session carries on without a preview.
type PreviewFailed struct{ Err error }

// CompleteSucceeded finalizes the document.
type CompleteSucceeded struct {
	Response *remote.CompleteResponse
	Stamp    conversation.Stamp
}

// CompleteFailed surfaces a completion failure.
type CompleteFailed struct{ Message string }

// DownloadSucceeded records where the finalized document was written.
type DownloadSucceeded struct {
	Path  string
	Bytes int64
}

// DownloadFailed surfaces a download failure.
type DownloadFailed struct{ Message string }

// ResetRequested clears the session locally.
type ResetRequested struct{}

// ResetCompleted reports the best-effort remote reset; Err is logged only.
type ResetCompleted struct{ Err error }

// ErrorDismissed clears the banner.
type ErrorDismissed struct{}

func (UploadStarted) isEvent()       {}
func (UploadSucceeded) isEvent()     {}
func (UploadFailed) isEvent()        {}
func (MessageSent) isEvent()         {}
func (ChatSucceeded) isEvent()       {}
func (ChatFailed) isEvent()          {}
func (RequestStarted) isEvent()      {}
func (EditSucceeded) isEvent()       {}
func (EditFailed) isEvent()          {}
func (DirectFillSucceeded) isEvent() {}
func (DirectFillFailed) isEvent()    {}
func (PreviewLoaded) isEvent()       {}
func (PreviewFailed) isEvent()       {}
func (CompleteSucceeded) isEvent()   {}
func (CompleteFailed) isEvent()      {}
func (DownloadSucceeded) isEvent()   {}
func (DownloadFailed) isEvent()      {}
func (ResetRequested) isEvent()      {}
func (ResetCompleted) isEvent()      {}
func (ErrorDismissed) isEvent()      {}
