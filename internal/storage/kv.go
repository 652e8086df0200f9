// Package storage persists the study Store in a keyed backend and manages
// backup files and the rolling auto-backup ring.
package storage

import "errors"

// ErrUnavailable is returned by Probe when a backend cannot be used.
var ErrUnavailable = errors.New("storage unavailable")

// KV is a durable keyed store of raw values.
type KV interface {
	// Get returns the value under key; ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Delete(key string) error
	// Probe checks that the backend can be written to.
	Probe() error
}

// Keys used by the gateway.
const (
	KeyStudyData          = "studyData"
	KeyAutoBackups        = "autoBackups"
	KeyLastBackupDate     = "lastBackupDate"
	KeyLastAutoBackupTime = "lastAutoBackupTime"

	probeKey = "__probe__"
)
