package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/bundlesize/schema"
)

// Diff label constants for plain outputs.
const (
	CriticalValue  = "Critical"
	WarningValue   = "Warning"
	DecreaseValue  = "Decrease"
	NewValue       = "New"
	RemovedValue   = "Removed"
	UnchangedValue = "Unchanged"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold) // CriticalColor represents a blown budget.
	WarningColor  = color.New(color.FgYellow)          // WarningColor represents growth within budget.
	DecreaseColor = color.New(color.FgGreen)           // DecreaseColor represents shrinkage.
	InfoColor     = color.New(color.FgCyan)            // InfoColor represents new or removed routes.
)

// GetPlainLabel returns a plain text label for a diff classification.
// This is the core logic used for CSV and table printing.
func GetPlainLabel(d schema.DiffResult) string {
	switch d.Kind {
	case schema.NewKind:
		return NewValue
	case schema.RemovedKind:
		return RemovedValue
	case schema.DecreaseKind:
		return DecreaseValue
	case schema.IncreaseKind:
		if d.Severity == schema.CriticalSeverity {
			return CriticalValue
		}
		return WarningValue
	default:
		return UnchangedValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(d schema.DiffResult) string {
	text := GetPlainLabel(d)

	switch text {
	case CriticalValue:
		return CriticalColor.Sprint(text)
	case WarningValue:
		return WarningColor.Sprint(text)
	case DecreaseValue:
		return DecreaseColor.Sprint(text)
	case NewValue, RemovedValue:
		return InfoColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when the path is empty.
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

// GetDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".bundlesize_snapshots.db"
	}
	return filepath.Join(homeDir, ".bundlesize_snapshots.db")
}

// TruncatePath truncates a route to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
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

// ArtifactKey returns the artifact object key for a branch snapshot.
// Slashes in branch names are kept so "feature/x" nests under the prefix.
func ArtifactKey(prefix, branch string) string {
	branch = strings.Trim(branch, "/")
	if prefix == "" {
		return branch + ".json"
	}
	return prefix + "/" + branch + ".json"
}
