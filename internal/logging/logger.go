// Package logging provides config-driven categorized file logging for docfill.
// Logs are written to .docfill/logs/ with a separate rotating file per category.
// Logging is controlled by logging.debug_mode in the config file; when false, nothing is written.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, shutdown
	CategorySession Category = "session" // Session store transitions and intents
	CategoryAPI     Category = "api"     // Assistant service requests
	CategoryPreview Category = "preview" // Preview parsing and loading
	CategoryUI      Category = "ui"      // Terminal UI events
	CategoryConfig  Category = "config"  // Config loading and hot reload
)

// AllCategories lists every category in declaration order.
var AllCategories = []Category{
	CategoryBoot, CategorySession, CategoryAPI, CategoryPreview, CategoryUI, CategoryConfig,
}

// Config mirrors config.LoggingConfig to avoid an import cycle.
type Config struct {
	DebugMode  bool
	Level      string // debug|info|warn|error
	JSONFormat bool
	Categories map[string]bool
	MaxSizeMB  int
	MaxBackups int
}

// Logger is a category-bound zap logger. The zero value is a no-op.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	sink     *lumberjack.Logger
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex

	logsDir   string
	workspace string

	config   Config
	configMu sync.RWMutex

	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Initialize sets up the logging directory from cfg.
// Should be called once at startup with the workspace path.
func Initialize(ws string, cfg Config) error {
	if ws == "" {
		return fmt.Errorf("workspace path required")
	}

	workspace = ws
	logsDir = filepath.Join(workspace, ".docfill", "logs")

	if err := Reconfigure(cfg); err != nil {
		return err
	}
	if !IsDebugMode() {
		return nil // Silent no-op in production mode
	}

	bootLogger := Get(CategoryBoot)
	bootLogger.Info("=== docfill logging initialized ===")
	bootLogger.Info("Workspace: %s", workspace)
	bootLogger.Info("Logs directory: %s", logsDir)
	bootLogger.Info("Log level: %s", level.Level())
	if len(cfg.Categories) == 0 {
		bootLogger.Info("All categories enabled (no category filter)")
	}
	for cat, enabled := range cfg.Categories {
		bootLogger.Debug("Category '%s': %v", cat, enabled)
	}
	return nil
}

// Reconfigure swaps in a new config at runtime. Open category files are closed so
// that encoding and category changes apply on the next write.
func Reconfigure(cfg Config) error {
	if cfg.DebugMode && logsDir != "" {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
	}

	CloseAll()

	configMu.Lock()
	config = cfg
	configMu.Unlock()

	level.SetLevel(parseLevel(cfg.Level))
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.DebugMode
}

// IsJSONFormat returns whether JSON logging is enabled
func IsJSONFormat() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.JSONFormat
}

// LogsDir returns the directory logs are written to.
func LogsDir() string {
	return logsDir
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !config.DebugMode {
		return false
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true // Enable by default if not specified
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	configMu.RLock()
	cfg := config
	configMu.RUnlock()

	sink := &lumberjack.Logger{
		Filename:   filepath.Join(logsDir, string(category)+".log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	core := zapcore.NewCore(newEncoder(cfg.JSONFormat), zapcore.AddSync(sink), level)
	l := &Logger{
		category: category,
		sugar:    zap.New(core).With(zap.String("category", string(category))).Sugar(),
		sink:     sink,
	}
	loggers[category] = l
	return l
}

func newEncoder(jsonFormat bool) zapcore.Encoder {
	if jsonFormat {
		enc := zap.NewProductionEncoderConfig()
		enc.EncodeTime = zapcore.EpochMillisTimeEncoder
		return zapcore.NewJSONEncoder(enc)
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.CallerKey = ""
	return zapcore.NewConsoleEncoder(enc)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// StructuredLog writes one entry with custom fields.
func (l *Logger) StructuredLog(lvl string, msg string, fields map[string]any) {
	if l.sugar == nil {
		return
	}
	kv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	switch parseLevel(lvl) {
	case zapcore.DebugLevel:
		l.sugar.Debugw(msg, kv...)
	case zapcore.WarnLevel:
		l.sugar.Warnw(msg, kv...)
	case zapcore.ErrorLevel:
		l.sugar.Errorw(msg, kv...)
	default:
		l.sugar.Infow(msg, kv...)
	}
}

// With returns a logger that adds key-value context to every entry.
func (l *Logger) With(keysAndValues ...any) *Logger {
	if l.sugar == nil {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...), sink: l.sink}
}

func (l *Logger) close() {
	if l.sugar != nil {
		_ = l.sugar.Sync()
	}
	if l.sink != nil {
		l.sink.Close()
	}
}

// CloseAll flushes and closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		l.close()
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

func Boot(format string, args ...any)      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...any) { Get(CategoryBoot).Debug(format, args...) }
func BootWarn(format string, args ...any)  { Get(CategoryBoot).Warn(format, args...) }
func BootError(format string, args ...any) { Get(CategoryBoot).Error(format, args...) }

func Session(format string, args ...any)      { Get(CategorySession).Info(format, args...) }
func SessionDebug(format string, args ...any) { Get(CategorySession).Debug(format, args...) }
func SessionWarn(format string, args ...any)  { Get(CategorySession).Warn(format, args...) }
func SessionError(format string, args ...any) { Get(CategorySession).Error(format, args...) }

func API(format string, args ...any)      { Get(CategoryAPI).Info(format, args...) }
func APIDebug(format string, args ...any) { Get(CategoryAPI).Debug(format, args...) }
func APIWarn(format string, args ...any)  { Get(CategoryAPI).Warn(format, args...) }
func APIError(format string, args ...any) { Get(CategoryAPI).Error(format, args...) }

func Preview(format string, args ...any)      { Get(CategoryPreview).Info(format, args...) }
func PreviewDebug(format string, args ...any) { Get(CategoryPreview).Debug(format, args...) }
func PreviewWarn(format string, args ...any)  { Get(CategoryPreview).Warn(format, args...) }

func UI(format string, args ...any)      { Get(CategoryUI).Info(format, args...) }
func UIDebug(format string, args ...any) { Get(CategoryUI).Debug(format, args...) }
func UIWarn(format string, args ...any)  { Get(CategoryUI).Warn(format, args...) }

func ConfigInfo(format string, args ...any) { Get(CategoryConfig).Info(format, args...) }
func ConfigWarn(format string, args ...any) { Get(CategoryConfig).Warn(format, args...) }

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
