package remote

import "docfill/internal/types"

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	SessionID         string              `json:"session_id"`
	Filename          string              `json:"filename"`
	Placeholders      []types.Placeholder `json:"placeholders"`
	PlaceholdersCount int                 `json:"placeholders_count"`
	Message           string              `json:"message"`
	InitialMessage    string              `json:"initial_message"`
}

// ChatResponse is returned by POST /api/chat.
// PlaceholderFilled is a flag on the wire; the filled identity is resolved by the session store.
type ChatResponse struct {
	Response           string             `json:"response"`
	PlaceholderFilled  bool               `json:"placeholder_filled"`
	CurrentProgress    int                `json:"current_progress"`
	TotalPlaceholders  int                `json:"total_placeholders"`
	ProgressPercentage float64            `json:"progress_percentage"`
	AllFilled          bool               `json:"all_filled"`
	FilledValues       types.FilledValues `json:"filled_values"`
	Preview            string             `json:"preview,omitempty"` // empty when the server skipped rendering
}

// PreviewResponse is returned by GET /api/preview and POST /api/edit.
type PreviewResponse struct {
	Message            string             `json:"message,omitempty"`
	Preview            string             `json:"preview"`
	FilledCount        int                `json:"filled_count"`
	TotalCount         int                `json:"total_count"`
	ProgressPercentage float64            `json:"progress_percentage"`
	FilledValues       types.FilledValues `json:"filled_values"`
	CurrentIndex       *int               `json:"current_index"`
}

// FillResponse is returned by POST /api/fill. Every field except Preview is optional.
type FillResponse struct {
	Preview            string             `json:"preview"`
	NextIndex          *int               `json:"next_index,omitempty"`
	FilledValues       types.FilledValues `json:"filled_values,omitempty"`
	ProgressPercentage *float64           `json:"progress_percentage,omitempty"`
	AutoFilled         []string           `json:"auto_filled,omitempty"`
}

// CompleteResponse is returned by POST /api/complete.
type CompleteResponse struct {
	DownloadURL string `json:"download_url"`
	Filename    string `json:"filename"`
	Message     string `json:"message"`
}

// ResetResponse acknowledges POST /api/reset.
type ResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
	Service   string `json:"service,omitempty"`
	Version   string `json:"version,omitempty"`
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type fieldRequest struct {
	SessionID string `json:"session_id"`
	FieldKey  string `json:"field_key"`
	Value     string `json:"value"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
