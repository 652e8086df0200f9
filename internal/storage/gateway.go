package storage

import (
	"encoding/json"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/yeoul2023/study-timer/internal/ledger"
)

// Options configures a Gateway.
type Options struct {
	Now    func() time.Time
	Logger hclog.Logger
}

// Gateway saves and loads the Store and its backups through a KV backend.
// Load and Save never return errors; faults are logged and recovered.
type Gateway struct {
	kv        KV
	now       func() time.Time
	logger    hclog.Logger
	ephemeral bool
}

// NewGateway probes kv and substitutes an in-memory backend when it cannot be
// written to.
func NewGateway(kv KV, opts Options) *Gateway {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	g := &Gateway{kv: kv, now: opts.Now, logger: opts.Logger}
	if kv == nil {
		g.kv = NewMemoryKV()
		g.ephemeral = true
	} else if err := kv.Probe(); err != nil {
		g.logger.Warn("storage backend unavailable, data will not persist", "error", err)
		g.kv = NewMemoryKV()
		g.ephemeral = true
	}
	return g
}

// Ephemeral reports whether the gateway fell back to memory.
func (g *Gateway) Ephemeral() bool { return g.ephemeral }

// Load returns the persisted Store, or an empty Store when nothing is stored
// or the stored value cannot be parsed.
func (g *Gateway) Load() ledger.Store {
	data, ok, err := g.kv.Get(KeyStudyData)
	if err != nil {
		g.logger.Error("failed to read study data", "error", err)
		return ledger.Store{}
	}
	if !ok {
		return ledger.Store{}
	}

	var store ledger.Store
	if err := json.Unmarshal(data, &store); err != nil {
		g.logger.Error("stored study data is corrupt, starting empty", "error", err)
		return ledger.Store{}
	}
	if store == nil {
		return ledger.Store{}
	}
	for key, day := range store {
		if day == nil {
			delete(store, key)
			continue
		}
		if day.Sessions == nil {
			day.Sessions = []ledger.Session{}
		}
	}
	return store
}

// Save writes the full Store. It reports whether the write succeeded.
func (g *Gateway) Save(store ledger.Store) bool {
	data, err := json.Marshal(store)
	if err != nil {
		g.logger.Error("failed to encode study data", "error", err)
		return false
	}
	if err := g.kv.Set(KeyStudyData, data); err != nil {
		g.logger.Error("failed to save study data", "error", err)
		return false
	}
	return true
}

func (g *Gateway) getJSON(key string, v any) bool {
	data, ok, err := g.kv.Get(key)
	if err != nil {
		g.logger.Error("failed to read key", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		g.logger.Warn("ignoring unreadable value", "key", key, "error", err)
		return false
	}
	return true
}

func (g *Gateway) setJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return g.kv.Set(key, data)
}
