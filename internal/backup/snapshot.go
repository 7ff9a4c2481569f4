// Package backup snapshots the most recent posts to JSON files and expires
// old snapshot files by modification time.
package backup

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/isdelr/cms-be/internal/store"
)

const (
	FilePrefix = "posts-backup-"
	FileSuffix = ".json"

	// ISO-8601 with millisecond precision, always UTC.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Snapshot is the persisted file format.
type Snapshot struct {
	BackupDate string       `json:"backupDate"`
	PostCount  int          `json:"postCount"`
	Posts      []store.Item `json:"posts"`
}

// FormatTimestamp renders t the way snapshot files record it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// SanitizeTimestamp replaces every character outside [A-Za-z0-9-] with '-'.
func SanitizeTimestamp(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, s)
}

// FileName returns the snapshot file name for a snapshot taken at t.
func FileName(t time.Time) string {
	return FilePrefix + SanitizeTimestamp(FormatTimestamp(t)) + FileSuffix
}

// IsSnapshotFile reports whether name follows the snapshot naming convention.
func IsSnapshotFile(name string) bool {
	return strings.HasPrefix(name, FilePrefix) && strings.HasSuffix(name, FileSuffix)
}

// encode builds the whole file body in memory.
func encode(s Snapshot) ([]byte, error) {
	if s.Posts == nil {
		s.Posts = []store.Item{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
