package main

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellarforge/internal/store"
)

func newTestModel(t *testing.T) (model, *Persistence) {
	t.Helper()
	p, _ := newMemoryPersistence(t)
	cfg := defaultConfig()
	cfg.DataDir = t.TempDir()
	s := NewSession(SessionOptions{Persistence: p, Logger: quietLogger()})
	m := newModel(s, p, cfg, quietLogger())
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, p
}

func update(m model, msg tea.Msg) (model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and flattens batches into the messages they produce.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func mouse(x, y int, action tea.MouseAction, button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func TestModel_Layout(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, 70, m.canvasWidth())
	assert.Equal(t, 39, m.canvasHeight())
	assert.Equal(t, Layout{Width: 800, Height: 624, PaletteLeft: 560}, m.session.Layout())
}

func TestModel_MouseDragMerges(t *testing.T) {
	m, _ := newTestModel(t)
	m.session.Place(hydrogen, Position{X: 0, Y: 0})
	m.session.Place(hydrogen, Position{X: 400, Y: 0})

	m, _ = update(m, mouse(1, 1, tea.MouseActionPress, tea.MouseButtonLeft))
	m, _ = update(m, mouse(51, 1, tea.MouseActionMotion, tea.MouseButtonLeft))
	require.NotEmpty(t, m.gesture.Highlight())
	m, cmd := update(m, mouse(51, 1, tea.MouseActionRelease, tea.MouseButtonNone))

	var settled bool
	for _, msg := range collect(cmd) {
		if done, ok := msg.(mergeDoneMsg); ok {
			m, _ = update(m, done)
			settled = true
		}
	}
	require.True(t, settled)
	require.Equal(t, 1, m.session.Canvas().Len())
	helium := m.session.Instances()[0]
	assert.Equal(t, "Helium", helium.Name)
	assert.Equal(t, Position{X: 400, Y: 0}, helium.Position)
	assert.True(t, helium.IsFirstDiscovery)
}

func TestModel_PaletteDragPlaces(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = update(m, mouse(75, paletteHeaderRows+1, tea.MouseActionPress, tea.MouseButtonLeft))
	require.NotNil(t, m.paletteDrag)
	assert.Equal(t, "Gravity", m.paletteDrag.Name)

	m, _ = update(m, mouse(10, 10, tea.MouseActionMotion, tea.MouseButtonLeft))
	m, _ = update(m, mouse(10, 10, tea.MouseActionRelease, tea.MouseButtonNone))
	assert.Nil(t, m.paletteDrag)
	require.Equal(t, 1, m.session.Canvas().Len())
	inst := m.session.Instances()[0]
	assert.Equal(t, "Gravity", inst.Name)
	assert.Equal(t, Position{X: 84, Y: 168}, inst.Position)
}

func TestModel_PaletteDragReleasedOnPaletteIsIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(m, mouse(75, paletteHeaderRows, tea.MouseActionPress, tea.MouseButtonLeft))
	m, _ = update(m, mouse(80, 12, tea.MouseActionRelease, tea.MouseButtonNone))
	assert.Zero(t, m.session.Canvas().Len())
}

func TestModel_SearchAndPlace(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(m, runes("/"))
	require.Equal(t, ModeSearch, m.mode)

	m, _ = update(m, runes("t"))
	m, _ = update(m, runes("i"))
	assert.Equal(t, "ti", m.palette.Query())

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeNormal, m.mode)
	require.Equal(t, 1, m.session.Canvas().Len())
	assert.Equal(t, "Time", m.session.Instances()[0].Name)
}

func TestModel_UndoKey(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	assert.Equal(t, "Nothing to undo", m.errorMessage)

	m.session.Place(hydrogen, Position{})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	assert.Empty(t, m.errorMessage)
	assert.Zero(t, m.session.Canvas().Len())

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, 1, m.session.Canvas().Len())
}

func TestModel_DeleteSelected(t *testing.T) {
	m, _ := newTestModel(t)
	a := m.session.Place(hydrogen, Position{})
	m.session.Place(gravity, Position{X: 300})
	m.session.Select([]string{a.ID})

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, 1, m.session.Canvas().Len())
	assert.Equal(t, "Deleted 1 element(s)", m.successMsg)
}

func TestModel_ResetNeedsConfirmation(t *testing.T) {
	m, _ := newTestModel(t)
	m.session.Place(hydrogen, Position{})

	m, _ = update(m, runes("C"))
	require.Equal(t, ModeConfirm, m.mode)
	assert.Contains(t, m.View(), "Clear the canvas?")
	m, _ = update(m, runes("n"))
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, 1, m.session.Canvas().Len())

	m, _ = update(m, runes("C"))
	m, _ = update(m, runes("y"))
	assert.Zero(t, m.session.Canvas().Len())
}

func TestModel_QuitConfirmsWhenCanvasHasContent(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := update(m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m.session.Place(hydrogen, Position{})
	m, cmd = update(m, runes("q"))
	assert.Nil(t, cmd)
	assert.Equal(t, ModeConfirm, m.mode)
	_, cmd = update(m, runes("y"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_DarkModeIsStored(t *testing.T) {
	m, p := newTestModel(t)
	require.False(t, m.dark)

	m, _ = update(m, runes("d"))
	assert.True(t, m.dark)
	assert.True(t, p.LoadDarkMode(false))
}

func TestModel_DarkModeFromAnotherSession(t *testing.T) {
	m, p := newTestModel(t)
	other := NewPersistence(p.store, quietLogger())
	other.SaveDarkMode(true)
	data, err := p.store.Get(context.Background(), KeyDarkMode)
	require.NoError(t, err)

	m, _ = update(m, storageChangedMsg{change: store.Change{Key: KeyDarkMode, Value: data}})
	assert.True(t, m.dark)
}

func TestModel_ConfigReload(t *testing.T) {
	m, _ := newTestModel(t)
	cfg := defaultConfig()
	cfg.DragThreshold = 40
	cfg.SidebarWidth = 40
	cfg.Confirmations = false

	m, _ = update(m, configReloadedMsg{config: cfg})
	assert.Equal(t, 40.0, m.gesture.cfg.DragThreshold)
	assert.Equal(t, 60, m.canvasWidth())
	assert.Equal(t, 480.0, m.session.Layout().PaletteLeft)

	m.session.Place(hydrogen, Position{})
	m, _ = update(m, runes("C"))
	assert.Equal(t, ModeNormal, m.mode)
	assert.Zero(t, m.session.Canvas().Len())
}

func TestModel_TickExpires(t *testing.T) {
	m, _ := newTestModel(t)
	m.session.Notifications().Emit("t", "m", "g")
	m, cmd := update(m, tickMsg(time.Now().Add(time.Hour)))
	assert.NotNil(t, cmd)
	assert.Zero(t, m.session.Notifications().Len())
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t)
	m.session.Place(hydrogen, Position{})

	view := m.View()
	assert.Contains(t, view, "Elements (3)")
	assert.Contains(t, view, "Hydrogen")
	assert.Contains(t, view, "1 on canvas")
	assert.Len(t, strings.Split(view, "\n"), 40)

	m, _ = update(m, runes("?"))
	assert.Contains(t, m.View(), "Stellar Forge")
	m, _ = update(m, runes("x"))
	assert.False(t, m.help)
}
