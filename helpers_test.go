package main

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stellarforge/internal/oracle"
	"stellarforge/internal/store"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type resolverFunc func(ctx context.Context, a, b string) (Outcome, error)

func (f resolverFunc) Resolve(ctx context.Context, a, b string) (Outcome, error) {
	return f(ctx, a, b)
}

type completerFunc func(ctx context.Context, a, b string) (oracle.Completion, error)

func (f completerFunc) Complete(ctx context.Context, a, b string) (oracle.Completion, error) {
	return f(ctx, a, b)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestSession(t *testing.T, r Resolver) *Session {
	t.Helper()
	s := NewSession(SessionOptions{Resolver: r, Logger: quietLogger()})
	clock := newFakeClock()
	s.discovery.now = clock.Now
	s.now = clock.Now
	return s
}

func newMemoryPersistence(t *testing.T) (*Persistence, store.Store) {
	t.Helper()
	st, err := store.OpenBadger(store.InMemoryBadgerConfig())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewPersistence(st, quietLogger()), st
}

var (
	hydrogen = Element{Name: "Hydrogen", Glyph: "⚛️", DiscoveredAt: 1}
	gravity  = Element{Name: "Gravity", Glyph: "⚫", DiscoveredAt: 2}
	timeEl   = Element{Name: "Time", Glyph: "⏳", DiscoveredAt: 3}
)
