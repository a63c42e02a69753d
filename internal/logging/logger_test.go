package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetLogging restores package state so tests do not leak into each other.
func resetLogging(t *testing.T) {
	t.Helper()
	CloseAll()
	logsDir = ""
	workspace = ""
	configMu.Lock()
	config = Config{}
	configMu.Unlock()
	t.Cleanup(func() {
		CloseAll()
		logsDir = ""
		workspace = ""
		configMu.Lock()
		config = Config{}
		configMu.Unlock()
	})
}

func readLog(t *testing.T, dir string, cat Category) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, ".docfill", "logs", string(cat)+".log"))
	if err != nil {
		t.Fatalf("Failed to read log for %s: %v", cat, err)
	}
	return string(data)
}

// TestLoggingWithDebugMode verifies that every category writes its own file
func TestLoggingWithDebugMode(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()

	if err := Initialize(tempDir, Config{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	if !IsDebugMode() {
		t.Error("Expected debug mode to be enabled")
	}

	for _, cat := range AllCategories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be enabled", cat)
		}
		logger := Get(cat)
		logger.Info("Test info message for %s", cat)
		logger.Debug("Test debug message for %s", cat)
		logger.Warn("Test warn message for %s", cat)
		logger.Error("Test error message for %s", cat)
	}

	Session("Convenience session log")
	API("Convenience api log")
	Preview("Convenience preview log")
	UI("Convenience ui log")
	ConfigInfo("Convenience config log")

	CloseAll()

	for _, cat := range AllCategories {
		content := readLog(t, tempDir, cat)
		if !strings.Contains(content, "Test info message for "+string(cat)) {
			t.Errorf("Log file for %s missing info entry:\n%s", cat, content)
		}
		if !strings.Contains(content, "Test debug message") {
			t.Errorf("Log file for %s missing debug entry", cat)
		}
	}
	if !strings.Contains(readLog(t, tempDir, CategoryBoot), "docfill logging initialized") {
		t.Error("boot log should record initialization")
	}
}

// TestDebugModeDisabled tests that no logs are created when debug_mode is false
func TestDebugModeDisabled(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()

	if err := Initialize(tempDir, Config{DebugMode: false, Level: "debug"}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	if IsDebugMode() {
		t.Error("Expected debug mode to be DISABLED (production mode)")
	}

	for _, cat := range AllCategories {
		if IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be DISABLED when debug_mode=false", cat)
		}
	}

	Boot("This should NOT be logged")
	Get(CategorySession).Error("This should NOT be logged")
	CloseAll()

	if _, err := os.Stat(filepath.Join(tempDir, ".docfill", "logs")); err == nil {
		t.Error("Expected no logs directory in production mode")
	}
}

func TestCategoryFilter(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()

	cfg := Config{DebugMode: true, Categories: map[string]bool{"api": false, "session": true}}
	if err := Initialize(tempDir, cfg); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if IsCategoryEnabled(CategoryAPI) {
		t.Error("api should be disabled")
	}
	if !IsCategoryEnabled(CategoryPreview) {
		t.Error("unlisted categories default to enabled")
	}

	API("dropped")
	Session("kept")
	CloseAll()

	if _, err := os.Stat(filepath.Join(tempDir, ".docfill", "logs", "api.log")); err == nil {
		t.Error("api.log should not exist")
	}
	if !strings.Contains(readLog(t, tempDir, CategorySession), "kept") {
		t.Error("session entry missing")
	}
}

func TestLevelFiltering(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()

	if err := Initialize(tempDir, Config{DebugMode: true, Level: "warn"}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	SessionDebug("debug-entry")
	Session("info-entry")
	SessionWarn("warn-entry")
	CloseAll()

	content := readLog(t, tempDir, CategorySession)
	if strings.Contains(content, "debug-entry") || strings.Contains(content, "info-entry") {
		t.Errorf("entries below warn were written:\n%s", content)
	}
	if !strings.Contains(content, "warn-entry") {
		t.Error("warn entry missing")
	}
}

func TestJSONFormat(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()

	if err := Initialize(tempDir, Config{DebugMode: true, JSONFormat: true}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	Get(CategoryAPI).StructuredLog("warn", "slow request", map[string]any{"path": "/api/chat", "status": 200})
	CloseAll()

	line := strings.TrimSpace(readLog(t, tempDir, CategoryAPI))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("entry is not JSON: %v\n%s", err, line)
	}
	if entry["category"] != "api" || entry["msg"] != "slow request" || entry["path"] != "/api/chat" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
}

func TestReconfigure_EnablesAtRuntime(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()

	if err := Initialize(tempDir, Config{}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	UI("before")

	if err := Reconfigure(Config{DebugMode: true}); err != nil {
		t.Fatalf("Reconfigure failed: %v", err)
	}
	UI("after")
	CloseAll()

	content := readLog(t, tempDir, CategoryUI)
	if strings.Contains(content, "before") || !strings.Contains(content, "after") {
		t.Errorf("unexpected ui log:\n%s", content)
	}
}

func TestNoopLoggerBeforeInitialize(t *testing.T) {
	resetLogging(t)
	l := Get(CategorySession)
	l.Info("nothing happens")
	l.With("k", "v").Warn("still nothing")
	if l.sugar != nil {
		t.Error("expected a no-op logger before Initialize")
	}
}

func TestTimer(t *testing.T) {
	resetLogging(t)
	timer := StartTimer(CategoryAPI, "op")
	if d := timer.Stop(); d < 0 {
		t.Errorf("negative duration %v", d)
	}
}

func TestInitialize_RequiresWorkspace(t *testing.T) {
	resetLogging(t)
	if err := Initialize("", Config{DebugMode: true}); err == nil {
		t.Error("expected an error for empty workspace")
	}
}
