package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yeoul2023/study-timer/internal/hashutil"
	"github.com/yeoul2023/study-timer/internal/ledger"
)

const (
	// MaxAutoBackups is the capacity of the auto-backup ring.
	MaxAutoBackups = 5

	// DefaultAutoBackupInterval is the cadence of automatic snapshots.
	DefaultAutoBackupInterval = 30 * time.Minute
)

// Snapshot is one entry of the auto-backup ring.
type Snapshot struct {
	Timestamp int64        `json:"timestamp"`
	Data      ledger.Store `json:"data"`
}

// ID returns a short identifier for the snapshot.
func (s Snapshot) ID() string {
	return hashutil.SnapshotID(s.Timestamp)
}

// Time returns the snapshot instant in loc.
func (s Snapshot) Time(loc *time.Location) time.Time {
	return time.UnixMilli(s.Timestamp).In(loc)
}

// AutoBackup appends a deep copy of store to the ring, evicting the oldest
// snapshot beyond MaxAutoBackups, and records the snapshot time.
func (g *Gateway) AutoBackup(store ledger.Store) (Snapshot, error) {
	data, err := copyStore(store)
	if err != nil {
		return Snapshot{}, fmt.Errorf("copy store: %w", err)
	}

	snap := Snapshot{Timestamp: g.now().UnixMilli(), Data: data}
	ring := append(g.AutoBackups(), snap)
	if len(ring) > MaxAutoBackups {
		ring = ring[len(ring)-MaxAutoBackups:]
	}

	if err := g.setJSON(KeyAutoBackups, ring); err != nil {
		return Snapshot{}, fmt.Errorf("save auto-backups: %w", err)
	}
	if err := g.setJSON(KeyLastAutoBackupTime, snap.Timestamp); err != nil {
		return Snapshot{}, fmt.Errorf("save auto-backup time: %w", err)
	}
	g.logger.Debug("auto-backup created", "id", snap.ID(), "snapshots", len(ring))
	return snap, nil
}

// AutoBackups returns the ring, oldest first. A missing or unreadable ring is empty.
func (g *Gateway) AutoBackups() []Snapshot {
	var ring []Snapshot
	if !g.getJSON(KeyAutoBackups, &ring) {
		return []Snapshot{}
	}
	return ring
}

// AutoBackupAt returns the snapshot at index in the ring.
func (g *Gateway) AutoBackupAt(index int) (Snapshot, bool) {
	ring := g.AutoBackups()
	if index < 0 || index >= len(ring) {
		return Snapshot{}, false
	}
	return ring[index], true
}

// NextAutoBackupIn returns how long until the next snapshot is due, continuing
// the cadence of the last recorded snapshot. Without a record the full
// interval applies.
func (g *Gateway) NextAutoBackupIn(interval time.Duration) time.Duration {
	var last int64
	if !g.getJSON(KeyLastAutoBackupTime, &last) {
		return interval
	}
	since := g.now().Sub(time.UnixMilli(last))
	return max(0, interval-since)
}

func copyStore(store ledger.Store) (ledger.Store, error) {
	data, err := json.Marshal(store)
	if err != nil {
		return nil, err
	}
	out := ledger.Store{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
