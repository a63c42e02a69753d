package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docfill/internal/config"
)

// withService points the global config at a test server.
func withService(t *testing.T, h http.Handler) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	t.Cleanup(func() { cfg = nil })
}

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestHealthCmd(t *testing.T) {
	withService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy", "service": "doc-assistant", "version": "1.0"})
	}))

	cmd, out := newTestCommand()
	require.NoError(t, runHealth(cmd, nil))
	assert.Contains(t, out.String(), ": healthy")
	assert.Contains(t, out.String(), "doc-assistant 1.0")
}

func TestHealthCmd_Unreachable(t *testing.T) {
	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	cfg.API.BaseURL = "http://127.0.0.1:1"
	t.Cleanup(func() { cfg = nil })

	cmd, _ := newTestCommand()
	err := runHealth(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service unreachable")
}

func TestUploadCmd(t *testing.T) {
	withService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"session_id": "s-42",
			"filename": "nda.docx",
			"placeholders": [
				{"id": "ph-1", "key": "company", "name": "Company Name", "type": "text"},
				{"key": "date", "name": "Effective Date", "type": "date"}
			],
			"initial_message": "Let's start with the company name."
		}`))
	}))

	path := filepath.Join(t.TempDir(), "nda.docx")
	require.NoError(t, os.WriteFile(path, []byte("PK"), 0644))

	cmd, out := newTestCommand()
	require.NoError(t, runUpload(cmd, []string{path}))

	got := out.String()
	assert.Contains(t, got, "session:  s-42")
	assert.Contains(t, got, "Company Name")
	assert.Contains(t, got, "ph-1")
	assert.Contains(t, got, "date")
	assert.Contains(t, got, "Let's start with the company name.")
}

func TestUploadCmd_ServiceError(t *testing.T) {
	withService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_file","message":"Only .docx files are supported"}`))
	}))

	path := filepath.Join(t.TempDir(), "notes.docx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	cmd, _ := newTestCommand()
	err := runUpload(cmd, []string{path})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Only .docx files are supported"))
}

func TestDownloadCmd(t *testing.T) {
	withService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/download/filled.docx", r.URL.Path)
		w.Write([]byte("docx-bytes"))
	}))

	dest := filepath.Join(t.TempDir(), "out.docx")
	downloadOut = dest
	t.Cleanup(func() { downloadOut = "" })

	cmd, out := newTestCommand()
	require.NoError(t, runDownload(cmd, []string{"/api/download/filled.docx"}))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "docx-bytes", string(data))
	assert.Contains(t, out.String(), "(10 bytes)")
}

func TestDownloadCmd_FailureRemovesFile(t *testing.T) {
	withService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))

	dir := t.TempDir()
	workspace = dir
	t.Cleanup(func() { workspace = "" })

	cmd, _ := newTestCommand()
	require.Error(t, runDownload(cmd, []string{"missing.docx"}))

	_, err := os.Stat(filepath.Join(dir, "missing.docx"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadConfig(t *testing.T) {
	for _, k := range []string{"DOCFILL_API_URL", "DOCFILL_TIMEOUT", "DOCFILL_DEBUG", "DOCFILL_DARK_MODE"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://file:5001\n"), 0644))

	configPath = path
	t.Cleanup(func() { configPath = ""; verbose = false })

	c, err := loadConfig(&cobra.Command{})
	require.NoError(t, err)
	assert.Equal(t, "http://file:5001", c.API.BaseURL)
	assert.False(t, c.Logging.DebugMode)

	verbose = true
	c, err = loadConfig(&cobra.Command{})
	require.NoError(t, err)
	assert.True(t, c.Logging.DebugMode)
	assert.Equal(t, "debug", c.Logging.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  timeout: -5s\n"), 0644))
	t.Setenv("DOCFILL_TIMEOUT", "")

	configPath = path
	t.Cleanup(func() { configPath = "" })

	_, err := loadConfig(&cobra.Command{})
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	for _, k := range []string{"DOCFILL_API_URL", "DOCFILL_TIMEOUT", "DOCFILL_DEBUG", "DOCFILL_DARK_MODE"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	configPath = path
	apiURL = "http://assistant:5001"
	t.Cleanup(func() { configPath = ""; apiURL = ""; configForce = false })

	cmd, out := newTestCommand()
	require.NoError(t, runConfigInit(cmd, nil))
	assert.Contains(t, out.String(), "Wrote "+path)

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://assistant:5001", c.API.BaseURL)
	assert.Equal(t, config.DefaultConfig().UI, c.UI)
	assert.Equal(t, "60s", c.API.Timeout)

	err = runConfigInit(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	apiURL = ""
	configForce = true
	require.NoError(t, runConfigInit(cmd, nil))
	c, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().API.BaseURL, c.API.BaseURL)
}

func TestConfigInit_ReplacesBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [not a map"), 0644))
	configPath = path
	configForce = true
	t.Cleanup(func() { configPath = ""; configForce = false })

	rootCmd.SetArgs([]string{"config", "init", "--force", "--config", path})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "base_url:"))
}
