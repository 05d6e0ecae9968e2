// Package archive moves finished run directories out of the way.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/snonux/wordtale/internal"
)

// ErrNoRuns is returned when the runs directory does not exist
var ErrNoRuns = errors.New("runs directory does not exist")

// ArchiveRuns moves runsDir to <parent>/archive/runs-<timestamp> and returns
// the new location
func ArchiveRuns(runsDir string) (string, error) {
	info, err := os.Stat(runsDir)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNoRuns, runsDir)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", runsDir)
	}

	archiveDir := filepath.Join(filepath.Dir(runsDir), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := filepath.Join(archiveDir, "runs-"+time.Now().Format("20060102-150405"))
	if _, err := os.Stat(archivePath); err == nil {
		// Two archives within the same second
		archivePath += "-" + internal.NewRunID()
	}

	if err := os.Rename(runsDir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive runs directory: %w", err)
	}
	return archivePath, nil
}
