package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateTestRunDirectory creates a finished run directory with a story,
// translations and one image per given name
func CreateTestRunDirectory(t *testing.T, runsDir, runID string, images ...string) string {
	t.Helper()

	runDir := filepath.Join(runsDir, runID)
	CreateTestFile(t, filepath.Join(runDir, "story.html"), []byte("<b>apple</b> story<br><br>[zh] story<br><br>"))
	CreateTestFile(t, filepath.Join(runDir, "translations.txt"), []byte("apple story = [zh] story\n"))
	for _, name := range images {
		CreateTestFile(t, filepath.Join(runDir, name), PNGData())
	}

	return runDir
}

// CreateWordListFile writes words, one per line, and returns the path
func CreateWordListFile(t *testing.T, dir string, words ...string) string {
	t.Helper()

	path := filepath.Join(dir, "words.txt")
	CreateTestFile(t, path, []byte(strings.Join(words, "\n")+"\n"))
	return path
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}
