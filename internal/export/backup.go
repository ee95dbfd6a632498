package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/store"
)

// BackupName returns "<base>.backup.<unix seconds>" for a data file.
func BackupName(dataFile string, at time.Time) string {
	return fmt.Sprintf("%s.backup.%d", filepath.Base(dataFile), at.Unix())
}

// Backup writes expenses in storage format to a timestamped file in dir
// (the data file's directory when dir is empty). The data file itself is not
// touched.
func Backup(dir, dataFile string, expenses []model.Expense, at time.Time) (string, error) {
	if dir == "" {
		dir = filepath.Dir(dataFile)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup dir: %w", err)
	}

	path := filepath.Join(dir, BackupName(dataFile, at))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating backup: %w", err)
	}
	defer f.Close()

	if err := store.WriteLines(f, expenses); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing backup: %w", err)
	}
	return path, nil
}
