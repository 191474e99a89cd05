package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationCenter_Lifecycle(t *testing.T) {
	start := time.Unix(500, 0)
	c := NewNotificationCenter(7*time.Second, 300*time.Millisecond)
	c.now = func() time.Time { return start }

	first := c.Emit("New Discovery: Helium", "fusion", "🎈")
	second := c.Emit("New Discovery: Carbon", "triple alpha", "🪨")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, c.Len())

	assert.False(t, c.Expire(start.Add(6*time.Second)))
	assert.True(t, c.Expire(start.Add(7*time.Second)))
	for _, n := range c.Active() {
		assert.True(t, n.Leaving)
	}
	assert.True(t, c.Expire(start.Add(7300*time.Millisecond)))
	assert.Zero(t, c.Len())
}

func TestNotificationCenter_Dismiss(t *testing.T) {
	start := time.Unix(500, 0)
	c := NewNotificationCenter(0, 300*time.Millisecond)
	c.now = func() time.Time { return start }
	a := c.Emit("a", "", "")
	c.Emit("b", "", "")

	require.True(t, c.DismissLatest())
	active := c.Active()
	assert.False(t, active[0].Leaving)
	assert.True(t, active[1].Leaving)

	assert.True(t, c.Dismiss(a.ID))
	assert.False(t, c.Dismiss(a.ID), "already leaving")
	assert.False(t, c.DismissLatest())

	c.Expire(start.Add(300 * time.Millisecond))
	assert.Zero(t, c.Len())
}

func TestNotificationCenter_DefaultTTL(t *testing.T) {
	c := NewNotificationCenter(0, 0)
	assert.Equal(t, notificationTTL, c.ttl)
}

func TestTooltip(t *testing.T) {
	var tip Tooltip
	assert.False(t, tip.Visible())

	tip.Show(Element{Name: "Helium", Glyph: "🎈"}, 4, 9)
	assert.True(t, tip.Visible())
	assert.Equal(t, elementDescriptions["Helium"], tip.Body)
	assert.Equal(t, 4, tip.X)

	tip.Show(Element{Name: "Chronon"}, 0, 0)
	assert.Equal(t, defaultDescription, tip.Body)

	tip.Hide()
	assert.False(t, tip.Visible())
}
