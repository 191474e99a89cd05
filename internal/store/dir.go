package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const valueExt = ".json"

// DefaultDebounce is how long Watch waits for a burst of file events on one
// key to settle before reading it.
const DefaultDebounce = 50 * time.Millisecond

// Dir is a Store keeping one file per key in a directory. Writes go through a
// temp file and a rename, so readers in other processes never see a partial
// value. Watch reports writes made by any process.
type Dir struct {
	root     string
	logger   *slog.Logger
	debounce time.Duration

	mu     sync.RWMutex
	closed bool
}

// OpenDir creates the directory if needed and returns a store rooted there.
func OpenDir(root string, logger *slog.Logger) (*Dir, error) {
	if root == "" {
		return nil, errors.New("path is required for directory store")
	}
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", root, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dir{root: root, logger: logger, debounce: DefaultDebounce}, nil
}

func (d *Dir) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(d.root, key+valueExt), nil
}

func (d *Dir) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	return nil
}

func (d *Dir) Get(ctx context.Context, key string) ([]byte, error) {
	if err := d.checkOpen(ctx); err != nil {
		return nil, err
	}
	p, err := d.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

func (d *Dir) Set(ctx context.Context, key string, value []byte) error {
	if err := d.checkOpen(ctx); err != nil {
		return err
	}
	p, err := d.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(d.root, ".tmp-"+key+"-*")
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (d *Dir) Delete(ctx context.Context, key string) error {
	if err := d.checkOpen(ctx); err != nil {
		return err
	}
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Watch follows the directory with fsnotify. Events for one key are
// debounced and the file is then read once; a value identical to the last
// one reported for that key is skipped.
func (d *Dir) Watch(ctx context.Context, keys []string, fn func(Change)) error {
	if err := d.checkOpen(ctx); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(d.root); err != nil {
		return fmt.Errorf("watch %s: %w", d.root, err)
	}

	last := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if data, err := d.Get(ctx, k); err == nil {
			last[k] = data
		}
	}

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		for key := range pending {
			data, err := d.Get(ctx, key)
			switch {
			case errors.Is(err, ErrNotFound):
				if _, seen := last[key]; !seen {
					continue
				}
				delete(last, key)
				fn(Change{Key: key, Deleted: true})
			case err != nil:
				d.logger.Warn("read changed key", slog.String("key", key), slog.String("error", err.Error()))
			default:
				if prev, seen := last[key]; seen && bytes.Equal(prev, data) {
					continue
				}
				last[key] = data
				fn(Change{Key: key, Value: data})
			}
		}
		clear(pending)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, valueExt) {
				continue
			}
			key := strings.TrimSuffix(name, valueExt)
			if !wanted(keys, key) {
				continue
			}
			pending[key] = true
			if timer == nil {
				timer = time.NewTimer(d.debounce)
				timerC = timer.C
			} else {
				timer.Reset(d.debounce)
			}
		case <-timerC:
			timer, timerC = nil, nil
			flush()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("store watcher error", slog.String("error", err.Error()))
		}
	}
}

func (d *Dir) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}
