/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Structured logging for typeforge. Wraps logrus with text, JSON and custom
formats, optional timestamped log files, and generator-specific helpers for inference,
rendering, warnings and file writes. Console output goes to stderr so generated code on
stdout stays clean. Every entry carries the run id of the invocation.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatCustom LogFormat = "custom"
)

// logFilePrefix names the files written to OutputDir
const logFilePrefix = "typeforge_"

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `json:"level"`
	Format    LogFormat `json:"format"`
	OutputDir string    `json:"output_dir"` // Empty disables file output
	MaxFiles  int       `json:"max_files"`
	Timestamp bool      `json:"timestamp"`
	Caller    bool      `json:"caller"`
	Colors    bool      `json:"colors"`
	Compress  bool      `json:"compress"` // Gzip log files kept from earlier runs

	Console io.Writer `json:"-"` // Defaults to stderr
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatCustom,
		MaxFiles:  10,
		Timestamp: true,
		Colors:    true,
	}
}

// Validate checks the LoggerConfig for invalid values
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" && c.MaxFiles <= 0 {
		return errors.New("max_files must be positive when output_dir is set")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom:
	default:
		return errors.Newf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
	default:
		return errors.Newf("unsupported log level: %s", c.Level)
	}
	return nil
}

// Logger provides structured logging for one run
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	entry      *logrus.Entry
	fileHandle *os.File
	filePath   string
	runID      string
	startTime  time.Time
}

// NewLogger creates a new logger instance
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid logger config")
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		runID:     uuid.New().String(),
		startTime: time.Now(),
	}
	if err := l.setup(); err != nil {
		return nil, errors.Wrap(err, "failed to setup logger")
	}
	l.entry = l.logger.WithField("run_id", l.runID)
	return l, nil
}

// setup configures the logger with the given configuration
func (l *Logger) setup() error {
	level, err := logrus.ParseLevel(string(l.config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.logger.SetLevel(level)
	l.logger.SetReportCaller(l.config.Caller)

	if err := l.setFormatter(); err != nil {
		return err
	}

	console := l.config.Console
	if console == nil {
		console = os.Stderr
	}
	l.logger.SetOutput(console)

	return l.setupFileOutput(console)
}

// setFormatter configures the log formatter
func (l *Logger) setFormatter() error {
	prettyCaller := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}
	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			DisableTimestamp: !l.config.Timestamp,
			CallerPrettyfier: prettyCaller,
		})
	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    l.config.Timestamp,
			DisableTimestamp: !l.config.Timestamp,
			TimestampFormat:  time.RFC3339,
			ForceColors:      l.config.Colors,
			DisableColors:    !l.config.Colors,
			CallerPrettyfier: prettyCaller,
		})
	case LogFormatCustom:
		l.logger.SetFormatter(&GeneratorFormatter{
			CustomFormatter: CustomFormatter{
				Timestamp: l.config.Timestamp,
				Caller:    l.config.Caller,
				Colors:    l.config.Colors,
			},
		})
	default:
		return errors.Newf("unsupported log format: %s", l.config.Format)
	}
	return nil
}

// setupFileOutput mirrors console output into a timestamped file under OutputDir
func (l *Logger) setupFileOutput(console io.Writer) error {
	if l.config.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return errors.Wrap(err, "failed to create log directory")
	}

	timestamp := l.startTime.Format("2006-01-02_15-04-05")
	name := fmt.Sprintf("%s%s_%s.log", logFilePrefix, timestamp, l.runID[:8])
	path := filepath.Join(l.config.OutputDir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrap(err, "failed to open log file")
	}
	l.fileHandle = file
	l.filePath = path
	l.logger.SetOutput(io.MultiWriter(console, file))
	return nil
}

// Generator-specific logging methods

// LogInference logs a finished inference pass
func (l *Logger) LogInference(samples, shapes int, duration time.Duration, fields map[string]interface{}) {
	l.with(fields).WithFields(logrus.Fields{
		"samples":  samples,
		"shapes":   shapes,
		"duration": duration,
	}).Info("Inference complete")
}

// LogRender logs one finished backend rendering
func (l *Logger) LogRender(target string, declarations, warnings int, duration time.Duration, fields map[string]interface{}) {
	l.with(fields).WithFields(logrus.Fields{
		"target":       target,
		"declarations": declarations,
		"warnings":     warnings,
		"duration":     duration,
	}).Info("Rendered target")
}

// LogWarning logs a construct a backend had to approximate
func (l *Logger) LogWarning(target, path, construct, fallback string) {
	l.entry.WithFields(logrus.Fields{
		"target":    target,
		"path":      path,
		"construct": construct,
		"fallback":  fallback,
	}).Warn("Approximated construct")
}

// LogWrite logs an output file write
func (l *Logger) LogWrite(target, path string, size int) {
	l.entry.WithFields(logrus.Fields{
		"target": target,
		"path":   path,
		"bytes":  size,
	}).Info("Wrote output")
}

// LogWatch logs a file system event seen by the watcher
func (l *Logger) LogWatch(event, path string) {
	l.entry.WithFields(logrus.Fields{
		"event": event,
		"path":  path,
	}).Debug("Watch event")
}

func (l *Logger) with(fields map[string]interface{}) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	return l.entry.WithFields(fields)
}

// Close closes the log file and prunes files from earlier runs
func (l *Logger) Close() error {
	if l.fileHandle != nil {
		if err := l.fileHandle.Close(); err != nil {
			return errors.Wrap(err, "failed to close log file")
		}
		l.fileHandle = nil
	}
	if l.config.OutputDir == "" {
		return nil
	}
	manager := NewLogManager(l.config.OutputDir, l.config.MaxFiles, l.config.Compress)
	if err := manager.CleanupOldLogs(l.filePath); err != nil {
		return errors.Wrap(err, "failed to cleanup log files")
	}
	return nil
}

// GetLogger returns the underlying logrus logger
func (l *Logger) GetLogger() *logrus.Logger {
	return l.logger
}

// RunID returns the id attached to every entry of this logger
func (l *Logger) RunID() string {
	return l.runID
}

// FilePath returns the log file of this run, or "" when file output is off
func (l *Logger) FilePath() string {
	return l.filePath
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.with(fields).Debug(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.with(fields).Info(msg)
}

// Warning logs a warning message
func (l *Logger) Warning(msg string, fields map[string]interface{}) {
	l.with(fields).Warn(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.with(fields).Error(msg)
}
