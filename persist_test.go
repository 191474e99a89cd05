package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellarforge/internal/store"
)

func TestPersistence_MissingKeysGiveDefaults(t *testing.T) {
	p, _ := newMemoryPersistence(t)
	assert.Nil(t, p.LoadCanvas())
	assert.Nil(t, p.LoadDiscovery())
	assert.Nil(t, p.LoadRecipes())
	assert.True(t, p.LoadDarkMode(true))
	assert.False(t, p.LoadDarkMode(false))
}

func TestPersistence_CorruptValuesGiveDefaults(t *testing.T) {
	p, st := newMemoryPersistence(t)
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, KeyCanvas, []byte("{broken")))
	require.NoError(t, st.Set(ctx, KeyDiscovered, []byte(`{"dataType":"Set","value":[]}`)))
	require.NoError(t, st.Set(ctx, KeyDarkMode, []byte(`"yes"`)))

	assert.Nil(t, p.LoadCanvas())
	assert.Nil(t, p.LoadDiscovery())
	assert.True(t, p.LoadDarkMode(true))

	s := NewSession(SessionOptions{Persistence: p, Logger: quietLogger()})
	assert.Zero(t, s.Canvas().Len())
	assert.Equal(t, 3, s.Discovery().Len())
}

func TestPersistence_RoundTrip(t *testing.T) {
	p, _ := newMemoryPersistence(t)

	c := NewCanvas()
	c.Place(hydrogen, Position{X: 1.5, Y: -2})
	c.PlaceResult(Element{Name: "Helium", Glyph: "🎈", DiscoveredAt: 99}, Position{X: 3}, true)
	p.SaveCanvas(c.Snapshot())
	loaded := NewCanvas()
	loaded.Load(p.LoadCanvas())
	assert.True(t, loaded.Snapshot().Equal(c.Snapshot()))

	d := NewDiscovery(initialElements)
	d.RecordIfNew(Element{Name: "Helium", Glyph: "🎈"})
	p.SaveDiscovery(d)
	got := p.LoadDiscovery()
	assert.Len(t, got, 4)
	assert.Equal(t, "🎈", got["Helium"].Glyph)

	p.SaveDarkMode(true)
	assert.True(t, p.LoadDarkMode(false))
}

func TestPersistence_IsEcho(t *testing.T) {
	p, st := newMemoryPersistence(t)
	p.SaveDarkMode(true)
	data, err := st.Get(context.Background(), KeyDarkMode)
	require.NoError(t, err)

	assert.True(t, p.IsEcho(KeyDarkMode, data))
	assert.False(t, p.IsEcho(KeyDarkMode, []byte("false")))
	assert.False(t, p.IsEcho(KeyCanvas, data))
}

func TestPersistence_IsEchoAfterLaterWrites(t *testing.T) {
	p, st := newMemoryPersistence(t)
	ctx := context.Background()
	var written [][]byte
	for _, on := range []bool{true, false, true} {
		p.SaveDarkMode(on)
		data, err := st.Get(ctx, KeyDarkMode)
		require.NoError(t, err)
		written = append(written, data)
	}

	for i, data := range written {
		assert.True(t, p.IsEcho(KeyDarkMode, data), "write %d", i)
	}
	// the store holds the last write, so it is still recognised
	assert.True(t, p.IsEcho(KeyDarkMode, written[2]))
	assert.False(t, p.IsEcho(KeyDarkMode, written[1]), "already echoed")
}

func TestPersistence_IsEchoSkipsCoalescedWrites(t *testing.T) {
	p, st := newMemoryPersistence(t)
	ctx := context.Background()
	p.SaveDarkMode(true)
	first, err := st.Get(ctx, KeyDarkMode)
	require.NoError(t, err)
	p.SaveDarkMode(false)
	second, err := st.Get(ctx, KeyDarkMode)
	require.NoError(t, err)

	require.True(t, p.IsEcho(KeyDarkMode, second))
	assert.False(t, p.IsEcho(KeyDarkMode, first), "retired by the later echo")
}

func TestPersistence_Clear(t *testing.T) {
	p, st := newMemoryPersistence(t)
	s := NewSession(SessionOptions{Persistence: p, Logger: quietLogger()})
	s.Place(hydrogen, Position{})
	p.SaveDarkMode(true)

	p.Clear()
	for _, key := range sessionKeys {
		_, err := st.Get(context.Background(), key)
		assert.ErrorIs(t, err, store.ErrNotFound, key)
	}
}

func TestPersistence_ClosedStoreDegrades(t *testing.T) {
	p, st := newMemoryPersistence(t)
	require.NoError(t, st.Close())

	p.SaveDarkMode(true)
	assert.False(t, p.LoadDarkMode(false))
	assert.False(t, p.IsEcho(KeyDarkMode, []byte("true")))
}
