package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yeoul2023/study-timer/internal/ledger"
)

// BackupReminderAge is how long after the last manual backup BackupDue reports true.
const BackupReminderAge = 7 * 24 * time.Hour

// BackupFileName returns the file name of a manual backup taken at t.
func BackupFileName(t time.Time) string {
	return fmt.Sprintf("study_backup_%s.json", ledger.DateKey(t))
}

// Backup writes the Store as indented JSON into dir and records today as the
// last backup date. An existing backup from the same day is overwritten.
func (g *Gateway) Backup(store ledger.Store, dir string) (string, error) {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	now := g.now()
	path := filepath.Join(dir, BackupFileName(now))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	if err := g.setJSON(KeyLastBackupDate, ledger.DateKey(now)); err != nil {
		g.logger.Warn("backup written but last backup date not recorded", "error", err)
	}
	g.logger.Info("backup written", "path", path, "days", len(store))
	return path, nil
}

// LastBackup returns the date of the last manual backup.
func (g *Gateway) LastBackup() (time.Time, bool) {
	var key string
	if !g.getJSON(KeyLastBackupDate, &key) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(ledger.DateLayout, key, g.now().Location())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// BackupDue reports whether a backup reminder should be shown: no backup has
// been taken, or the last one is at least BackupReminderAge old.
func (g *Gateway) BackupDue() bool {
	last, ok := g.LastBackup()
	if !ok {
		return true
	}
	return g.now().Sub(last) >= BackupReminderAge
}
