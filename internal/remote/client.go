// Package remote is the typed HTTP boundary to the document assistant service.
// It marshals requests and unmarshals responses or APIErrors; it holds no session state.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"docfill/internal/logging"
)

// DefaultBaseURL is where the assistant service listens in local deployments.
const DefaultBaseURL = "http://localhost:5001"

// slowRequest is the latency above which a call is logged as a warning.
const slowRequest = 10 * time.Second

// maxErrorBody bounds how much of a failed response is read for diagnostics.
const maxErrorBody = 64 << 10

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; overrides Timeout when set
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: 60 * time.Second,
	}
}

// Client talks to the assistant service.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// Concurrent preview fetches for the same session share one request.
	previews singleflight.Group
}

// New creates a client from config.
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the service root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Upload sends the file at path as the multipart field "document".
func (c *Client) Upload(ctx context.Context, path string) (*UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	return c.UploadReader(ctx, filepath.Base(path), f)
}

// UploadReader uploads document content read from r under the given filename.
func (c *Client) UploadReader(ctx context.Context, filename string, r io.Reader) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("document", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	n, err := io.Copy(part, r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	logging.APIDebug("upload: filename=%s bytes=%d", filename, n)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	logging.API("upload: session=%s placeholders=%d", out.SessionID, len(out.Placeholders))
	return &out, nil
}

// SendMessage submits one conversational answer.
func (c *Client) SendMessage(ctx context.Context, sessionID, message string) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.postJSON(ctx, "/api/chat", chatRequest{SessionID: sessionID, Message: message}, &out); err != nil {
		return nil, err
	}
	logging.APIDebug("chat: session=%s progress=%.1f all_filled=%v", sessionID, out.ProgressPercentage, out.AllFilled)
	return &out, nil
}

// GetPreview fetches the rendered document. Concurrent calls for one session are collapsed.
func (c *Client) GetPreview(ctx context.Context, sessionID string) (*PreviewResponse, error) {
	v, err, shared := c.previews.Do(sessionID, func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL+"/api/preview?session_id="+url.QueryEscape(sessionID), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		var out PreviewResponse
		if err := c.do(req, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.APIDebug("preview: shared in-flight fetch for session=%s", sessionID)
	}
	return v.(*PreviewResponse), nil
}

// EditField replaces the value of an already known field.
func (c *Client) EditField(ctx context.Context, sessionID, fieldKey, value string) (*PreviewResponse, error) {
	var out PreviewResponse
	body := fieldRequest{SessionID: sessionID, FieldKey: fieldKey, Value: value}
	if err := c.postJSON(ctx, "/api/edit", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FillField assigns a value outside the conversational flow.
func (c *Client) FillField(ctx context.Context, sessionID, fieldKey, value string) (*FillResponse, error) {
	var out FillResponse
	body := fieldRequest{SessionID: sessionID, FieldKey: fieldKey, Value: value}
	if err := c.postJSON(ctx, "/api/fill", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Complete finalizes the document and returns where to download it.
func (c *Client) Complete(ctx context.Context, sessionID string) (*CompleteResponse, error) {
	var out CompleteResponse
	if err := c.postJSON(ctx, "/api/complete", sessionRequest{SessionID: sessionID}, &out); err != nil {
		return nil, err
	}
	logging.API("complete: session=%s download=%s", sessionID, out.DownloadURL)
	return &out, nil
}

// Download streams the generated file into w and returns the byte count.
func (c *Client) Download(ctx context.Context, filename string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/download/"+url.PathEscape(filename), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, decodeError(resp)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read download: %w", err)
	}
	logging.API("download: %s (%d bytes)", filename, n)
	return n, nil
}

// Reset asks the service to drop the session.
func (c *Client) Reset(ctx context.Context, sessionID string) error {
	var out ResetResponse
	return c.postJSON(ctx, "/api/reset", sessionRequest{SessionID: sessionID}, &out)
}

// Health reports service status.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	var out HealthResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes req and decodes a 2xx JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	timer := logging.StartTimer(logging.CategoryAPI, req.Method+" "+req.URL.Path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.APIWarn("%s %s failed: %v", req.Method, req.URL.Path, err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	timer.StopWithThreshold(slowRequest)
	logging.APIDebug("%s %s -> %d", req.Method, req.URL.Path, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// decodeError turns a non-2xx response into an APIError.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload errorBody
	if !strings.Contains(resp.Header.Get("Content-Type"), "json") ||
		json.Unmarshal(body, &payload) != nil ||
		(payload.Error == "" && payload.Message == "") {
		logging.APIWarn("status %d with unreadable body: %.200s", resp.StatusCode, string(body))
		return statusError(resp.StatusCode)
	}

	logging.APIWarn("status %d: %s: %s", resp.StatusCode, payload.Error, payload.Message)
	return &APIError{Status: resp.StatusCode, Code: payload.Error, Message: payload.Message}
}
