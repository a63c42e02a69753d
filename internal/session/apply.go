package session

import (
	"slices"

	"docfill/internal/conversation"
	"docfill/internal/progress"
	"docfill/internal/types"
)

// Apply returns the snapshot that results from ev. It performs no I/O and never
// mutates s: maps are replaced and the transcript is appended copy-on-write.
func Apply(s Snapshot, ev Event) Snapshot {
	switch ev := ev.(type) {
	case UploadStarted:
		s.IsLoading = true
		s.Error = ""
		s.PendingUpload = ev.Filename

	case UploadSucceeded:
		r := ev.Response
		filename := r.Filename
		if filename == "" {
			filename = s.PendingUpload
		}
		return Snapshot{
			SessionID: r.SessionID,
			Document: &types.Document{
				Filename:     filename,
				Placeholders: slices.Clone(r.Placeholders),
				FilledValues: types.FilledValues{},
			},
			Greeting: r.InitialMessage,
		}

	case UploadFailed:
		s.IsLoading = false
		s.Error = ev.Message
		s.PendingUpload = ""

	case MessageSent:
		s.ChatMessages = conversation.Append(s.ChatMessages, conversation.UserMessage(ev.Stamp, ev.Text))
		s.IsLoading = true

	case ChatSucceeded:
		r := ev.Response
		filled := ""
		if r.PlaceholderFilled {
			if p, ok := s.Current(); ok {
				filled = p.Identity()
			}
		}
		s.ChatMessages = conversation.Append(s.ChatMessages,
			conversation.AssistantMessage(ev.Stamp, r.Response, filled))
		s.Document = withValues(s.Document, r.FilledValues)
		s.CurrentIndex = clampIndex(r.CurrentProgress, s.Document)
		s.Progress = r.ProgressPercentage
		s.IsComplete = r.AllFilled
		if r.Preview != "" {
			s.PreviewHTML = r.Preview
		}
		s.IsLoading = false
		s.Error = ""

	case ChatFailed:
		s.ChatMessages = conversation.Append(s.ChatMessages, conversation.ErrorMessage(ev.Stamp, ev.Message))
		s.IsLoading = false
		s.Error = ev.Message

	case RequestStarted:
		s.IsLoading = true

	case EditSucceeded:
		r := ev.Response
		name := "Field"
		if p, _, ok := s.Document.Find(ev.Identity); ok && p.Name != "" {
			name = p.Name
		}
		s.Document = withValues(s.Document, r.FilledValues)
		if r.Preview != "" {
			s.PreviewHTML = r.Preview
		}
		if r.CurrentIndex != nil {
			s.CurrentIndex = clampIndex(*r.CurrentIndex, s.Document)
		}
		s.Progress = r.ProgressPercentage
		s.ChatMessages = conversation.Append(s.ChatMessages,
			conversation.EditConfirmation(ev.Stamp, name, ev.Value))
		s.IsLoading = false
		s.Error = ""

	case EditFailed:
		s.IsLoading = false
		s.Error = ev.Message

	case DirectFillSucceeded:
		r := ev.Response
		if r.FilledValues != nil {
			s.Document = withValues(s.Document, r.FilledValues)
		}
		if r.Preview != "" {
			s.PreviewHTML = r.Preview
		}
		if r.NextIndex != nil {
			s.CurrentIndex = clampIndex(*r.NextIndex, s.Document)
		}
		if r.ProgressPercentage != nil {
			s.Progress = *r.ProgressPercentage
		}
		s.IsLoading = false
		s.Error = ""

	case DirectFillFailed:
		s.IsLoading = false

	case PreviewLoaded:
		if ev.Response.Preview != "" {
			s.PreviewHTML = ev.Response.Preview
		}

	case CompleteSucceeded:
		s.IsComplete = true
		s.DownloadURL = ev.Response.DownloadURL
		s.ChatMessages = conversation.Append(s.ChatMessages,
			conversation.CompletionMessage(ev.Stamp, ev.Response.Message))
		s.IsLoading = false
		s.Error = ""

	case CompleteFailed:
		s.IsLoading = false
		s.Error = ev.Message

	case DownloadSucceeded:
		s.SavedPath = ev.Path
		s.Error = ""

	case DownloadFailed:
		s.Error = ev.Message

	case ResetRequested:
		return Initial()

	case ErrorDismissed:
		s.Error = ""

	case PreviewFailed, ResetCompleted:
		// Logged by the store; no state change.
	}
	return s
}

// withValues returns a copy of doc carrying the server's filled values.
func withValues(doc *types.Document, values types.FilledValues) *types.Document {
	if doc == nil {
		return nil
	}
	next := *doc
	next.FilledValues = values.Clone()
	return &next
}

// clampIndex keeps a server index inside the placeholder sequence.
func clampIndex(i int, doc *types.Document) int {
	if doc == nil || len(doc.Placeholders) == 0 || i < 0 {
		return 0
	}
	return min(i, len(doc.Placeholders)-1)
}

// Project is the progress projection of a snapshot.
func (s Snapshot) Project() progress.Projection {
	return progress.Project(s.Document, s.CurrentIndex, s.Progress)
}
