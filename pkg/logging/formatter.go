/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Custom log formatters for ontoforge. CustomFormatter prints colored, key-sorted
structured output; PipelineFormatter adds a stage tag (FETCH, INFER, COERCE, RENDER, WRITE,
RUN) derived from the message.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CustomFormatter provides structured logging output
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format formats a log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.format(entry, ""), nil
}

func (f *CustomFormatter) format(entry *logrus.Entry, tag string) []byte {
	var output strings.Builder

	if f.Timestamp {
		timestamp := entry.Time.Format("2006-01-02 15:04:05.000")
		output.WriteString(f.paint(36, timestamp) + " ") // Cyan
	}

	level := strings.ToUpper(entry.Level.String())
	output.WriteString(f.paint(f.getLevelColor(entry.Level), level) + " ")

	if tag != "" {
		output.WriteString(f.paint(35, "["+tag+"]") + " ") // Magenta
	}

	if f.Caller && entry.HasCaller() {
		caller := fmt.Sprintf("[%s:%d]", entry.Caller.File, entry.Caller.Line)
		output.WriteString(f.paint(33, caller) + " ") // Yellow
	}

	output.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		output.WriteString(" ")
		output.WriteString(f.formatFields(entry.Data))
	}

	output.WriteString("\n")
	return []byte(output.String())
}

func (f *CustomFormatter) paint(color int, s string) string {
	if !f.Colors {
		return s
	}
	return fmt.Sprintf("\033[%dm%s\033[0m", color, s)
}

// getLevelColor returns the ANSI color code for a log level
func (f *CustomFormatter) getLevelColor(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return 37 // White
	case logrus.InfoLevel:
		return 32 // Green
	case logrus.WarnLevel:
		return 33 // Yellow
	case logrus.ErrorLevel:
		return 31 // Red
	default:
		return 35 // Magenta
	}
}

// formatFields formats structured fields sorted by key
func (f *CustomFormatter) formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", key, formatValue(key, fields[key])))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", key, formatValue(key, fields[key])))
		}
	}
	return strings.Join(parts, " ")
}

// formatValue formats a field value appropriately
func formatValue(key string, value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.Round(time.Millisecond).String()
	case time.Time:
		return v.Format("15:04:05.000")
	case float64:
		if key == "confidence" {
			return fmt.Sprintf("%.2f", v)
		}
		return fmt.Sprintf("%g", v)
	case string:
		if key == "run_id" && len(v) > 8 {
			return v[:8]
		}
		if len(v) > 80 {
			return v[:80] + "..."
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// PipelineFormatter tags each entry with the pipeline stage it belongs to
type PipelineFormatter struct {
	CustomFormatter
}

// Format formats pipeline log entries
func (f *PipelineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.format(entry, StageOf(entry.Message)), nil
}

// StageOf returns the pipeline stage tag for a log message
func StageOf(message string) string {
	switch {
	case strings.HasPrefix(message, "Watch"), strings.HasSuffix(message, "changed"):
		return "WATCH"
	case strings.Contains(message, "Source"), strings.Contains(message, "API"), strings.Contains(message, "cache"):
		return "FETCH"
	case strings.Contains(message, "inferred"), strings.Contains(message, "Schema"):
		return "INFER"
	case strings.Contains(message, "Coercion"):
		return "COERCE"
	case strings.Contains(message, "skipped"), strings.Contains(message, "rendered"):
		return "RENDER"
	case strings.Contains(message, "written"), strings.Contains(message, "Report"):
		return "WRITE"
	case strings.Contains(message, "Run"):
		return "RUN"
	default:
		return ""
	}
}
