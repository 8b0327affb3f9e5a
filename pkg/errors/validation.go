package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateFormat checks that format is one of the supported output formats.
func ValidateFormat(format string, valid map[string]bool) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "output format cannot be empty")
	}
	if !valid[format] {
		return New(ErrCodeInvalidFormat, "unsupported output format: %s", format)
	}
	return nil
}

// ValidatePath validates a file path given on the command line.
//
// The rules are conservative:
//   - No empty paths
//   - No control characters or null bytes
//   - Maximum length of 4096 characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > 4096 {
		return New(ErrCodeInvalidPath, "path too long (max 4096 characters)")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}
	return nil
}

// FormatFromPath infers an output format from the file extension of path.
// It returns "" when the extension is missing or unknown.
func FormatFromPath(path string, valid map[string]bool) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if valid[ext] {
		return ext
	}
	return ""
}
