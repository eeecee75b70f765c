// Package logging provides config-driven categorized file-based logging for pandaskit.
// Logs are written to .pandaskit/logs/ with separate files per category.
// Logging is controlled by logging.debug_mode in .pandaskit/config.yml - when false, no logs are written.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, workspace and config resolution
	CategoryScan      Category = "scan"      // Marker discovery
	CategoryInject    Category = "inject"    // Content insertion and line shifting
	CategoryGuide     Category = "guide"     // Interactive wizards
	CategoryTranslate Category = "translate" // Translation replace controllers
	CategoryVersions  Category = "versions"  // Version bumps
	CategoryCharset   Category = "charset"   // Encoding detection and conversion
	CategoryVCS       Category = "vcs"       // git working tree checks
)

// AllCategories lists every category in a stable order.
var AllCategories = []Category{
	CategoryBoot,
	CategoryScan,
	CategoryInject,
	CategoryGuide,
	CategoryTranslate,
	CategoryVersions,
	CategoryCharset,
	CategoryVCS,
}

// Settings mirrors config.LoggingConfig to avoid an import cycle.
type Settings struct {
	DebugMode  bool
	Level      string
	JSONFormat bool
	Categories map[string]bool
}

// Logger is a category-bound sugared zap logger backed by its own file.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.Mutex
	logsDir   string
	settings  Settings
	level     = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Initialize sets up the logging directory for the workspace root.
// With DebugMode off it is a silent no-op and every logger discards.
func Initialize(root string, s Settings) error {
	if root == "" {
		return fmt.Errorf("workspace root required")
	}

	CloseAll()

	loggersMu.Lock()
	settings = s
	logsDir = filepath.Join(root, ".pandaskit", "logs")
	loggersMu.Unlock()

	if err := level.UnmarshalText([]byte(s.Level)); err != nil || s.Level == "" {
		level.SetLevel(zapcore.InfoLevel)
	}

	if !s.DebugMode {
		return nil
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	Boot("logging initialized: root=%s level=%s", root, level.Level())
	return nil
}

// IsDebugMode returns whether file logging is enabled
func IsDebugMode() bool {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	return settings.DebugMode
}

// IsCategoryEnabled reports whether the category writes to disk.
// Categories absent from the filter are enabled.
func IsCategoryEnabled(category Category) bool {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	return categoryEnabledLocked(category)
}

func categoryEnabledLocked(category Category) bool {
	if !settings.DebugMode {
		return false
	}
	enabled, ok := settings.Categories[string(category)]
	return !ok || enabled
}

// Get returns (or creates) the logger for a category.
// Disabled categories get a no-op logger.
func Get(category Category) *Logger {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if !categoryEnabledLocked(category) || logsDir == "" {
		return &Logger{category: category, sugar: zap.NewNop().Sugar()}
	}
	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category, sugar: zap.NewNop().Sugar()}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if settings.JSONFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(file), level)

	l := &Logger{
		category: category,
		file:     file,
		sugar:    zap.New(core).Named(string(category)).Sugar(),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// With returns a logger carrying structured key/value fields.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// CloseAll flushes and closes every open log file.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for cat, l := range loggers {
		_ = l.sugar.Sync()
		if l.file != nil {
			_ = l.file.Close()
		}
		delete(loggers, cat)
	}
}

// Timer measures one operation and logs its duration on Stop.
type Timer struct {
	category  Category
	operation string
	start     time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, operation: operation, start: time.Now()}
}

// Stop logs the elapsed time at debug level and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s took %v", t.operation, elapsed)
	return elapsed
}

// =============================================================================
// CATEGORY HELPERS
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }
func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

func Scan(format string, args ...interface{})      { Get(CategoryScan).Info(format, args...) }
func ScanDebug(format string, args ...interface{}) { Get(CategoryScan).Debug(format, args...) }
func ScanWarn(format string, args ...interface{})  { Get(CategoryScan).Warn(format, args...) }

func Inject(format string, args ...interface{})      { Get(CategoryInject).Info(format, args...) }
func InjectDebug(format string, args ...interface{}) { Get(CategoryInject).Debug(format, args...) }
func InjectError(format string, args ...interface{}) { Get(CategoryInject).Error(format, args...) }

func Guide(format string, args ...interface{})      { Get(CategoryGuide).Info(format, args...) }
func GuideDebug(format string, args ...interface{}) { Get(CategoryGuide).Debug(format, args...) }

func Translate(format string, args ...interface{})      { Get(CategoryTranslate).Info(format, args...) }
func TranslateDebug(format string, args ...interface{}) { Get(CategoryTranslate).Debug(format, args...) }
func TranslateWarn(format string, args ...interface{})  { Get(CategoryTranslate).Warn(format, args...) }
func TranslateError(format string, args ...interface{}) { Get(CategoryTranslate).Error(format, args...) }

func Versions(format string, args ...interface{})      { Get(CategoryVersions).Info(format, args...) }
func VersionsDebug(format string, args ...interface{}) { Get(CategoryVersions).Debug(format, args...) }

func Charset(format string, args ...interface{})      { Get(CategoryCharset).Info(format, args...) }
func CharsetDebug(format string, args ...interface{}) { Get(CategoryCharset).Debug(format, args...) }

func VCS(format string, args ...interface{})      { Get(CategoryVCS).Info(format, args...) }
func VCSDebug(format string, args ...interface{}) { Get(CategoryVCS).Debug(format, args...) }
func VCSWarn(format string, args ...interface{})  { Get(CategoryVCS).Warn(format, args...) }
