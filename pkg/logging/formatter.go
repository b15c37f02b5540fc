/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Custom log formatters for typeforge. CustomFormatter prints one readable line
per entry with optional colors and sorted fields. GeneratorFormatter adds a stage prefix
such as [INFER] or [RENDER] derived from the message.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CustomFormatter provides structured, human readable output
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format formats a log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.format(entry, ""), nil
}

func (f *CustomFormatter) format(entry *logrus.Entry, prefix string) []byte {
	var output strings.Builder

	if f.Timestamp {
		f.paint(&output, 36, entry.Time.Format("2006-01-02 15:04:05.000"))
	}

	f.paint(&output, f.getLevelColor(entry.Level), strings.ToUpper(entry.Level.String()))

	if prefix != "" {
		f.paint(&output, 35, "["+prefix+"]")
	}

	if f.Caller && entry.HasCaller() {
		f.paint(&output, 33, fmt.Sprintf("[%s:%d]", entry.Caller.File, entry.Caller.Line))
	}

	output.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		output.WriteString(" ")
		output.WriteString(f.formatFields(entry.Data))
	}

	output.WriteString("\n")
	return []byte(output.String())
}

// paint writes s followed by a space, wrapped in the ANSI color when colors are on
func (f *CustomFormatter) paint(b *strings.Builder, color int, s string) {
	if f.Colors {
		fmt.Fprintf(b, "\033[%dm%s\033[0m ", color, s)
		return
	}
	b.WriteString(s)
	b.WriteString(" ")
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

// formatFields formats fields as key=value pairs in key order
func (f *CustomFormatter) formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := f.formatValue(fields[key])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", key, value)) // Blue key, Green value
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", key, value))
		}
	}
	return strings.Join(parts, " ")
}

// maxValueRunes caps the printed length of string field values
const maxValueRunes = 80

// formatValue formats a field value appropriately
func (f *CustomFormatter) formatValue(value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.Round(time.Microsecond).String()
	case time.Time:
		return v.Format("15:04:05.000")
	case string:
		if r := []rune(v); len(r) > maxValueRunes {
			return string(r[:maxValueRunes]) + "..."
		}
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GeneratorFormatter prefixes entries with the pipeline stage they belong to
type GeneratorFormatter struct {
	CustomFormatter
}

// Format implements logrus.Formatter
func (f *GeneratorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.format(entry, f.stagePrefix(entry)), nil
}

// stagePrefix returns a prefix based on the message and fields
func (f *GeneratorFormatter) stagePrefix(entry *logrus.Entry) string {
	switch {
	case strings.HasPrefix(entry.Message, "Inference"), strings.HasPrefix(entry.Message, "Decoded"):
		return "INFER"
	case strings.HasPrefix(entry.Message, "Rendered"), strings.HasPrefix(entry.Message, "Approximated"):
		return "RENDER"
	case strings.HasPrefix(entry.Message, "Wrote"):
		return "WRITE"
	case strings.HasPrefix(entry.Message, "Watch"):
		return "WATCH"
	default:
		return ""
	}
}
