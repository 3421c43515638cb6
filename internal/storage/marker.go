package storage

import (
	"os"
	"strings"
	"time"
)

// MarkRun records the time of the most recent successful post as an
// RFC 3339 UTC timestamp in a plain-text file. Diagnostic only; failures
// are the caller's to log, never fatal.
func MarkRun(path string) error {
	stamp := time.Now().UTC().Format(time.RFC3339)
	return os.WriteFile(path, []byte(stamp), 0644)
}

// LastRun reads the run marker. Returns the empty string when the marker is
// missing or unreadable.
func LastRun(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
