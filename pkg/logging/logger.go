/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Logging for ontoforge. Wraps logrus with timestamped log files, JSON, text and
custom formats, and pipeline-specific helpers for fetch, inference, coercion, rendering and
write events. Console output goes to stderr so stdout stays free for rendered documents.
*/

package logging

import (
	"fmt"
	"io"
	"log/syslog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

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
	LogFormatJSON     LogFormat = "json"
	LogFormatText     LogFormat = "text"
	LogFormatCustom   LogFormat = "custom"
	LogFormatPipeline LogFormat = "pipeline"
)

const logFilePattern = "ontoforge_*.log"

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `mapstructure:"level" json:"level" yaml:"level"`
	Format    LogFormat `mapstructure:"format" json:"format" yaml:"format"`
	OutputDir string    `mapstructure:"output_dir" json:"output_dir" yaml:"output_dir"` // empty disables log files
	MaxFiles  int       `mapstructure:"max_files" json:"max_files" yaml:"max_files"`
	Timestamp bool      `mapstructure:"timestamp" json:"timestamp" yaml:"timestamp"`
	Caller    bool      `mapstructure:"caller" json:"caller" yaml:"caller"`
	Colors    bool      `mapstructure:"colors" json:"colors" yaml:"colors"`

	SyslogEnabled bool   `mapstructure:"syslog_enabled" json:"syslog_enabled" yaml:"syslog_enabled"`
	SyslogNetwork string `mapstructure:"syslog_network" json:"syslog_network" yaml:"syslog_network"`
	SyslogAddress string `mapstructure:"syslog_address" json:"syslog_address" yaml:"syslog_address"`

	// Console replaces stderr as the console destination
	Console io.Writer `mapstructure:"-" json:"-" yaml:"-"`
}

// DefaultLoggerConfig returns console-only logging at info level
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatPipeline,
		MaxFiles:  10,
		Timestamp: true,
		Colors:    true,
	}
}

// Validate checks the LoggerConfig for invalid values
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" && c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom, LogFormatPipeline:
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	return nil
}

// Logger wraps a logrus logger with pipeline helpers
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	fileHandle *os.File
	filePath   string
	startTime  time.Time
}

// NewLogger creates a new logger instance
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		startTime: time.Now(),
	}
	if err := l.setup(); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return l, nil
}

// setup configures level, formatter and outputs
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

	var console io.Writer = os.Stderr
	if l.config.Console != nil {
		console = l.config.Console
	}
	l.logger.SetOutput(console)

	if err := l.setupFileOutput(console); err != nil {
		return err
	}

	if l.config.SyslogEnabled {
		writer, err := syslog.Dial(l.config.SyslogNetwork, l.config.SyslogAddress, syslog.LOG_INFO|syslog.LOG_USER, "ontoforge")
		if err != nil {
			return fmt.Errorf("failed to connect to syslog: %w", err)
		}
		l.logger.SetOutput(io.MultiWriter(l.logger.Out, writer))
	}
	return nil
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
		l.logger.SetFormatter(&CustomFormatter{
			Timestamp: l.config.Timestamp,
			Caller:    l.config.Caller,
			Colors:    l.config.Colors,
		})
	case LogFormatPipeline:
		l.logger.SetFormatter(&PipelineFormatter{CustomFormatter: CustomFormatter{
			Timestamp: l.config.Timestamp,
			Caller:    l.config.Caller,
			Colors:    l.config.Colors,
		}})
	default:
		return fmt.Errorf("unsupported log format: %s", l.config.Format)
	}
	return nil
}

// setupFileOutput tees the console output into a timestamped log file
func (l *Logger) setupFileOutput(console io.Writer) error {
	if l.config.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	path := filepath.Join(l.config.OutputDir, fmt.Sprintf("ontoforge_%s.log", timestamp))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.fileHandle = file
	l.filePath = path
	l.logger.SetOutput(io.MultiWriter(console, file))

	l.logger.WithFields(logrus.Fields{
		"start_time": l.startTime.Format(time.RFC3339),
		"log_file":   path,
		"level":      l.config.Level,
		"format":     l.config.Format,
	}).Debug("Logging initialized")
	return nil
}

// cleanup removes the oldest log files beyond MaxFiles
func (l *Logger) cleanup() error {
	if l.config.OutputDir == "" {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(l.config.OutputDir, logFilePattern))
	if err != nil {
		return err
	}
	if len(files) <= l.config.MaxFiles {
		return nil
	}

	// timestamped names sort oldest first
	sort.Strings(files)
	for _, f := range files[:len(files)-l.config.MaxFiles] {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Pipeline logging methods

// LogSourceFetched logs a completed source fetch
func (l *Logger) LogSourceFetched(source string, count int, duration time.Duration, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["source"] = source
	fields["records"] = count
	fields["duration"] = duration

	l.logger.WithFields(fields).Info("Source fetched")
}

// LogRecoveries logs how many values of a field were replaced by the recovery value
func (l *Logger) LogRecoveries(field string, count int, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["field"] = field
	fields["recovered"] = count

	l.logger.WithFields(fields).Warning("Coercion recovered values")
}

// LogDocumentWritten logs a persisted document
func (l *Logger) LogDocumentWritten(path string, individuals int, bytes int, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["path"] = path
	fields["individuals"] = individuals
	fields["bytes"] = bytes

	l.logger.WithFields(fields).Info("Document written")
}

// LogRunSummary logs the outcome of a pipeline run
func (l *Logger) LogRunSummary(runID string, records, individuals, skipped, recovered int, duration time.Duration) {
	l.logger.WithFields(logrus.Fields{
		"run_id":      runID,
		"records":     records,
		"individuals": individuals,
		"skipped":     skipped,
		"recovered":   recovered,
		"duration":    duration,
		"uptime":      time.Since(l.startTime),
	}).Info("Run summary")
}

// Close closes the log file and prunes old ones
func (l *Logger) Close() error {
	if l.fileHandle != nil {
		l.fileHandle.Close()
		l.fileHandle = nil
	}
	if err := l.cleanup(); err != nil {
		return fmt.Errorf("failed to cleanup log files: %w", err)
	}
	return nil
}

// GetLogger returns the underlying logrus logger
func (l *Logger) GetLogger() *logrus.Logger {
	return l.logger
}

// FilePath returns the current log file, if any
func (l *Logger) FilePath() string {
	return l.filePath
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Debug(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Info(msg)
}

// Warning logs a warning message
func (l *Logger) Warning(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Warning(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Error(msg)
}
