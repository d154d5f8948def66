package test

import (
	"path/filepath"
	"testing"
)

// TmpFile returns the path of a fresh SQLite database file. The directory
// is removed when the test finishes.
func TmpFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "analytics.db")
}
