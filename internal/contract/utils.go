package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Bucket state label constants.
const (
	OverValue = "OVER" // bucket exceeds its capacity limit
	FullValue = "FULL" // bucket exactly at its capacity limit
	OkValue   = "OK"   // bucket has room
)

// Color variables for console output.
var (
	OverColor = color.New(color.FgRed, color.Bold) // overColor flags buckets needing remediation.
	FullColor = color.New(color.FgYellow)          // fullColor flags buckets with zero headroom.
	OkColor   = color.New(color.FgCyan)            // okColor represents informational / healthy signal.
)

// GetPlainCapacityLabel returns a plain text label for a bucket's occupancy
// against its limit. This is the core logic used for CSV, JSON, and table
// printing.
func GetPlainCapacityLabel(count, maxAllowed int) string {
	switch {
	case count > maxAllowed:
		return OverValue
	case count == maxAllowed:
		return FullValue
	default:
		return OkValue
	}
}

// GetColorCapacityLabel returns a colored text label for console output
// (table). It uses GetPlainCapacityLabel to determine the string, and then
// applies the appropriate color.
func GetColorCapacityLabel(count, maxAllowed int) string {
	text := GetPlainCapacityLabel(count, maxAllowed)

	switch text {
	case OverValue:
		return OverColor.Sprint(text)
	case FullValue:
		return FullColor.Sprint(text)
	default: // "OK"
		return OkColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetAuditDBFilePath returns the path to the SQLite DB file for audit storage.
func GetAuditDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".graphgate_audit.db"
	}
	return filepath.Join(homeDir, ".graphgate_audit.db")
}

// TruncateText truncates a string to a maximum width with ellipsis suffix.
// Requires maxWidth > 3 to ensure there's space for both content and the
// "..." suffix; shorter widths return the text unchanged.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// SlugifyTopicID normalizes a topic name into a stable slug id: lowercase,
// alphanumerics kept, runs of everything else collapsed to single
// underscores.
func SlugifyTopicID(name string) string {
	var b strings.Builder
	lastUnderscore := true // suppress leading underscore
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
