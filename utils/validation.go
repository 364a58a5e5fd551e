package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// GenerateRequestID creates a unique request identifier using UUID v4.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ValidRequestID reports whether a caller-supplied request ID is a UUID,
// so arbitrary header values never reach the logs.
func ValidRequestID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// Truncate shortens s to at most max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == max {
			break
		}
		b.WriteRune(r)
		n++
	}
	b.WriteString("…")
	return b.String()
}
