package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"stellarforge/internal/store"
)

const (
	storageTimeout = 2 * time.Second

	// maxPendingEchoes bounds the writes remembered per key when nothing
	// is watching the store.
	maxPendingEchoes = 64
)

// Persistence reads and writes the session keys. Failures are logged and
// degrade to the default value or a skipped write; nothing here is fatal.
type Persistence struct {
	store store.Store
	log   *slog.Logger

	mu          sync.Mutex
	lastWritten map[string][]byte
	pending     map[string][][]byte
}

func NewPersistence(s store.Store, log *slog.Logger) *Persistence {
	if log == nil {
		log = slog.Default()
	}
	return &Persistence{
		store:       s,
		log:         log,
		lastWritten: make(map[string][]byte),
		pending:     make(map[string][][]byte),
	}
}

func (p *Persistence) get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	data, err := p.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		p.log.Error("storage read failed", "key", key, "error", err)
		return nil, false
	}
	return data, true
}

func (p *Persistence) set(key string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if err := p.store.Set(ctx, key, data); err != nil {
		p.log.Error("storage write failed", "key", key, "error", err)
		return
	}
	p.mu.Lock()
	p.lastWritten[key] = data
	q := append(p.pending[key], data)
	if len(q) > maxPendingEchoes {
		q = q[len(q)-maxPendingEchoes:]
	}
	p.pending[key] = q
	p.mu.Unlock()
}

// IsEcho reports whether data is one of this process's own writes to key.
// Change feeds report writes in order and may arrive after later writes, so
// every write stays recognisable until its echo is seen. Matching a write
// also retires the ones before it, which a coalescing feed never reports.
// A value equal to the last write is always an echo: the store already
// holds what this process has in memory.
func (p *Persistence) IsEcho(key string, data []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	q := p.pending[key]
	for i, w := range q {
		if bytes.Equal(w, data) {
			p.pending[key] = q[i+1:]
			return true
		}
	}
	last, ok := p.lastWritten[key]
	return ok && bytes.Equal(last, data)
}

func (p *Persistence) LoadDarkMode(def bool) bool {
	data, ok := p.get(KeyDarkMode)
	if !ok {
		return def
	}
	v, err := decodeDarkMode(data)
	if err != nil {
		p.log.Warn("bad dark mode value", "error", err)
		return def
	}
	return v
}

func decodeDarkMode(data []byte) (bool, error) {
	var v bool
	err := json.Unmarshal(data, &v)
	return v, err
}

func (p *Persistence) SaveDarkMode(on bool) {
	data, _ := json.Marshal(on)
	p.set(KeyDarkMode, data)
}

// LoadCanvas returns the stored instances, or nil when absent or unreadable.
func (p *Persistence) LoadCanvas() []Instance {
	data, ok := p.get(KeyCanvas)
	if !ok {
		return nil
	}
	instances, err := decodeCanvas(data)
	if err != nil {
		p.log.Warn("bad canvas value", "error", err)
		return nil
	}
	return instances
}

func decodeCanvas(data []byte) ([]Instance, error) {
	entries, err := decodeEntries[Instance](data)
	if err != nil {
		return nil, err
	}
	out := make([]Instance, 0, len(entries))
	for _, e := range entries {
		inst := e.Value
		inst.ID = e.Key
		inst.IsProcessing = false
		out = append(out, inst)
	}
	return out, nil
}

func encodeCanvas(instances []Instance) ([]byte, error) {
	entries := make([]entry[Instance], len(instances))
	for i, inst := range instances {
		entries[i] = entry[Instance]{Key: inst.ID, Value: inst}
	}
	return encodeEntries(entries)
}

func (p *Persistence) SaveCanvas(s Snapshot) {
	data, err := encodeCanvas(s.Instances())
	if err != nil {
		p.log.Error("encode canvas", "error", err)
		return
	}
	p.set(KeyCanvas, data)
}

// LoadDiscovery returns the stored discovery set, or nil when absent.
func (p *Persistence) LoadDiscovery() map[string]Element {
	return p.loadElements(KeyDiscovered)
}

func (p *Persistence) SaveDiscovery(d *Discovery) {
	p.saveElements(KeyDiscovered, d.entries())
}

func (p *Persistence) LoadRecipes() map[string]Element {
	return p.loadElements(KeyRecipes)
}

func (p *Persistence) SaveRecipes(c *RecipeCache) {
	p.saveElements(KeyRecipes, c.Entries())
}

func (p *Persistence) loadElements(key string) map[string]Element {
	data, ok := p.get(key)
	if !ok {
		return nil
	}
	entries, err := decodeEntries[Element](data)
	if err != nil {
		p.log.Warn("bad stored map", "key", key, "error", err)
		return nil
	}
	return entriesToMap(entries)
}

func (p *Persistence) saveElements(key string, entries []entry[Element]) {
	data, err := encodeEntries(entries)
	if err != nil {
		p.log.Error("encode map", "key", key, "error", err)
		return
	}
	p.set(key, data)
}

// Clear removes every session key.
func (p *Persistence) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	for _, key := range sessionKeys {
		if err := p.store.Delete(ctx, key); err != nil {
			p.log.Error("storage delete failed", "key", key, "error", err)
		}
	}
}

var sessionKeys = []string{KeyDarkMode, KeyCanvas, KeyDiscovered, KeyRecipes}

// Watch forwards changes to the session keys, including this process's own
// writes; receivers drop those with IsEcho.
func (p *Persistence) Watch(ctx context.Context, fn func(store.Change)) error {
	return p.store.Watch(ctx, sessionKeys, fn)
}
