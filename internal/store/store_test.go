package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) add(c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) find(key string, value string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.changes {
		if c.Key == key && string(c.Value) == value {
			return true
		}
	}
	return false
}

func (r *recorder) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.changes))
	for _, c := range r.changes {
		out = append(out, c.Key)
	}
	return out
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	b, err := OpenBadger(InMemoryBadgerConfig())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	d, err := OpenDir(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	return map[string]Store{"badger": b, "dir": d}
}

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "canvas", []byte(`{"a":1}`)))
			got, err := s.Get(ctx, "canvas")
			require.NoError(t, err)
			assert.Equal(t, `{"a":1}`, string(got))

			require.NoError(t, s.Set(ctx, "canvas", []byte(`{"a":2}`)))
			got, err = s.Get(ctx, "canvas")
			require.NoError(t, err)
			assert.Equal(t, `{"a":2}`, string(got))

			require.NoError(t, s.Delete(ctx, "canvas"))
			_, err = s.Get(ctx, "canvas")
			assert.ErrorIs(t, err, ErrNotFound)

			// deleting twice is fine
			assert.NoError(t, s.Delete(ctx, "canvas"))
		})
	}
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.Set(ctx, "k", []byte("v")))
			_, err := s.Get(ctx, "k")
			assert.Error(t, err)
		})
	}
}

func TestStore_WatchReportsWatchedKeysOnly(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			rec := &recorder{}
			done := make(chan error, 1)
			go func() { done <- s.Watch(ctx, []string{"discovered"}, rec.add) }()

			// the subscription is registered asynchronously, so keep writing
			// until the first change arrives
			require.Eventually(t, func() bool {
				_ = s.Set(context.Background(), "other", []byte("x"))
				_ = s.Set(context.Background(), "discovered", []byte(time.Now().String()))
				return len(rec.keys()) > 0
			}, 5*time.Second, 100*time.Millisecond)

			require.NoError(t, s.Set(context.Background(), "discovered", []byte("final")))
			require.Eventually(t, func() bool {
				return rec.find("discovered", "final")
			}, 5*time.Second, 20*time.Millisecond)

			for _, k := range rec.keys() {
				assert.Equal(t, "discovered", k)
			}

			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("watch did not return after cancel")
			}
		})
	}
}

func TestDir_RejectsPathKeys(t *testing.T) {
	d, err := OpenDir(t.TempDir(), nil)
	require.NoError(t, err)

	assert.Error(t, d.Set(context.Background(), "../escape", []byte("x")))
	assert.Error(t, d.Set(context.Background(), ".hidden", []byte("x")))
}

func TestDir_SharedBetweenHandles(t *testing.T) {
	root := t.TempDir()
	a, err := OpenDir(root, nil)
	require.NoError(t, err)
	b, err := OpenDir(root, nil)
	require.NoError(t, err)

	require.NoError(t, a.Set(context.Background(), "mode", []byte("true")))
	got, err := b.Get(context.Background(), "mode")
	require.NoError(t, err)
	assert.Equal(t, "true", string(got))
}

func TestStore_Closed(t *testing.T) {
	d, err := OpenDir(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, d.Close())
	assert.ErrorIs(t, d.Set(context.Background(), "k", []byte("v")), ErrClosed)

	b, err := OpenBadger(InMemoryBadgerConfig())
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}
