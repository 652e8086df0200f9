package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/yeoul2023/study-timer/internal/ledger"
)

// ErrInvalidBackup is wrapped by every backup validation failure.
var ErrInvalidBackup = errors.New("invalid backup")

// RestoreResult carries the outcome of an asynchronous restore. Exactly one of
// Store and Err is set. Skipped lists the malformed keys left out of Store.
type RestoreResult struct {
	Store   ledger.Store
	Skipped []string
	Err     error
}

// Restore reads and validates the backup at path in the background. The
// returned channel receives exactly one result and is then closed. Nothing is
// written to the backend; the caller decides whether to adopt the Store.
func (g *Gateway) Restore(ctx context.Context, path string) <-chan RestoreResult {
	out := make(chan RestoreResult, 1)
	go func() {
		defer close(out)

		data, err := os.ReadFile(path)
		if err != nil {
			out <- RestoreResult{Err: fmt.Errorf("read backup: %w", err)}
			return
		}
		if err := ctx.Err(); err != nil {
			out <- RestoreResult{Err: err}
			return
		}

		store, skipped, err := ParseBackup(data)
		if err != nil {
			g.logger.Warn("rejected backup", "path", path, "error", err)
			out <- RestoreResult{Err: err}
			return
		}
		if len(skipped) > 0 {
			g.logger.Warn("skipped malformed days in backup", "path", path, "days", skipped)
		}
		out <- RestoreResult{Store: store, Skipped: skipped}
	}()
	return out
}

// ParseBackup decodes a backup document. The top level must be an object with
// at least one date key whose value carries both a sessions array and a
// summary object. Other keys are dropped and returned as skipped.
func ParseBackup(data []byte) (ledger.Store, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: not a JSON object: %v", ErrInvalidBackup, err)
	}
	if raw == nil {
		return nil, nil, fmt.Errorf("%w: not a JSON object", ErrInvalidBackup)
	}
	if len(raw) == 0 {
		return nil, nil, fmt.Errorf("%w: no study days", ErrInvalidBackup)
	}

	store := make(ledger.Store, len(raw))
	var skipped []string
	var firstErr error
	for _, key := range sortedKeys(raw) {
		day, err := parseBackupDay(key, raw[key])
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			skipped = append(skipped, key)
			continue
		}
		store[key] = day
	}
	if len(store) == 0 {
		return nil, nil, fmt.Errorf("%w: no valid study days: %v", ErrInvalidBackup, firstErr)
	}
	return store, skipped, nil
}

func parseBackupDay(key string, value json.RawMessage) (*ledger.Day, error) {
	if _, err := time.Parse(ledger.DateLayout, key); err != nil {
		return nil, fmt.Errorf("key %q is not a date", key)
	}

	var shape map[string]json.RawMessage
	if err := json.Unmarshal(value, &shape); err != nil || shape == nil {
		return nil, fmt.Errorf("%s is not an object", key)
	}
	if !isJSONKind(shape["sessions"], '[') {
		return nil, fmt.Errorf("%s has no sessions", key)
	}
	if !isJSONKind(shape["summary"], '{') {
		return nil, fmt.Errorf("%s has no summary", key)
	}

	var day ledger.Day
	if err := json.Unmarshal(value, &day); err != nil {
		return nil, fmt.Errorf("%s: %v", key, err)
	}
	return &day, nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// isJSONKind reports whether raw starts with the given delimiter.
func isJSONKind(raw json.RawMessage, delim byte) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b == delim
	}
	return false
}
