package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"stellarforge/internal/store"
)

const mergeTimeout = 30 * time.Second

type mergeDoneMsg struct{ result MergeResult }

type tickMsg time.Time

type storageChangedMsg struct{ change store.Change }

type configReloadedMsg struct{ config *Config }

type exportDoneMsg struct {
	path string
	err  error
}

func newModel(session *Session, persist *Persistence, config *Config, log *slog.Logger) model {
	dark := config.DarkModeDefault
	if persist != nil {
		dark = persist.LoadDarkMode(dark)
	}
	return model{
		session:     session,
		persist:     persist,
		gesture:     NewGesture(config.Gesture()),
		palette:     NewPalette(),
		tooltip:     &Tooltip{},
		keys:        DefaultKeyMap(),
		styles:      newStyles(dark),
		dark:        dark,
		config:      config,
		log:         log,
		mode:        ModeNormal,
		shortcutsOn: true,
	}
}

func mergeCmd(job *MergeJob, r Resolver) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mergeTimeout)
		defer cancel()
		return mergeDoneMsg{result: job.Run(ctx, r)}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) canvasWidth() int {
	w := m.width - m.config.SidebarWidth
	if w < 1 {
		w = 1
	}
	return w
}

// canvasHeight leaves the last row for the status line.
func (m model) canvasHeight() int {
	h := m.height - 1
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) paletteRows() int {
	r := m.canvasHeight() - paletteHeaderRows
	if r < 1 {
		r = 1
	}
	return r
}

func (m *model) layout() {
	m.session.SetLayout(Layout{
		Width:       float64(m.width) * CellWidth,
		Height:      float64(m.canvasHeight()) * CellHeight,
		PaletteLeft: float64(m.canvasWidth()) * CellWidth,
	})
	m.palette.SetWidth(m.config.SidebarWidth)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tickMsg:
		m.session.Expire(time.Time(msg))
		if m.successMsg != "" && time.Since(m.messageAt) > notificationTTL {
			m.successMsg = ""
		}
		return m, tick()

	case mergeDoneMsg:
		out := m.session.SettleMerge(msg.result)
		m.log.Debug("merge settled", "a", msg.result.Job.A.Name, "b", msg.result.Job.B.Name, "outcome", out.Kind)
		return m, nil

	case storageChangedMsg:
		if msg.change.Key == KeyDarkMode {
			if m.persist != nil && m.persist.IsEcho(msg.change.Key, msg.change.Value) {
				return m, nil
			}
			if on, err := decodeDarkMode(msg.change.Value); err == nil && !msg.change.Deleted {
				m.setDark(on, false)
			}
			return m, nil
		}
		if m.session.ApplyExternal(msg.change) {
			m.log.Info("applied change from another session", "key", msg.change.Key)
		}
		return m, nil

	case configReloadedMsg:
		cfg := msg.config
		m.config.DragThreshold = cfg.DragThreshold
		m.config.MergeOverlap = cfg.MergeOverlap
		m.config.SidebarWidth = cfg.SidebarWidth
		m.config.Confirmations = cfg.Confirmations
		m.gesture.SetConfig(m.config.Gesture())
		m.layout()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("Export failed: %v", msg.err))
		} else {
			m.setSuccess("Exported to " + msg.path)
		}
		return m, nil

	case tea.MouseMsg:
		if m.mode == ModeConfirm || m.help {
			return m, nil
		}
		if m.mode == ModeSearch && msg.Action == tea.MouseActionPress {
			m.blurSearch()
		}
		cmd := m.handleMouse(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help {
		m.help = false
		return *m, nil
	}

	switch m.mode {
	case ModeConfirm:
		return m.handleConfirm(msg)
	case ModeSearch:
		switch msg.Type {
		case tea.KeyEsc:
			m.blurSearch()
			return *m, nil
		case tea.KeyEnter:
			m.blurSearch()
			m.placeHighlighted()
			return *m, nil
		case tea.KeyUp, tea.KeyDown:
			m.moveCursor(msg)
			return *m, nil
		}
		cmd := m.palette.UpdateSearch(msg)
		return *m, cmd
	}

	if !m.shortcutsOn {
		return *m, nil
	}
	m.errorMessage = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.config.Confirmations && m.session.Canvas().Len() > 0 && msg.String() != "ctrl+c" {
			m.confirm(ConfirmQuit)
			return *m, nil
		}
		m.shortcutsOn = false
		return *m, tea.Quit
	case key.Matches(msg, m.keys.Undo):
		if !m.session.Undo() {
			m.setError("Nothing to undo")
		}
	case key.Matches(msg, m.keys.Redo):
		if !m.session.Redo() {
			m.setError("Nothing to redo")
		}
	case key.Matches(msg, m.keys.Search):
		return *m, m.focusSearch()
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		m.moveCursor(msg)
	case key.Matches(msg, m.keys.Place):
		m.placeHighlighted()
	case key.Matches(msg, m.keys.SortTime):
		m.palette.CycleSort(SortByTime)
	case key.Matches(msg, m.keys.SortName):
		m.palette.CycleSort(SortByName)
	case key.Matches(msg, m.keys.SortGlyph):
		m.palette.CycleSort(SortByGlyph)
	case key.Matches(msg, m.keys.DarkMode):
		m.setDark(!m.dark, true)
	case key.Matches(msg, m.keys.Dismiss):
		m.session.Notifications().DismissLatest()
	case key.Matches(msg, m.keys.Delete):
		if n := m.session.RemoveMany(m.session.SelectedIDs()); n > 0 {
			m.setSuccess(fmt.Sprintf("Deleted %d element(s)", n))
		}
	case key.Matches(msg, m.keys.ResetCanvas):
		m.confirm(ConfirmResetCanvas)
	case key.Matches(msg, m.keys.ResetAll):
		m.confirm(ConfirmResetAll)
	case key.Matches(msg, m.keys.Copy):
		m.copySelection()
	case key.Matches(msg, m.keys.ExportPNG):
		return *m, m.exportPNGCmd()
	case key.Matches(msg, m.keys.Help):
		m.help = true
	}
	return *m, nil
}

func (m *model) confirm(action ConfirmAction) {
	if !m.config.Confirmations {
		m.runConfirmed(action)
		return
	}
	m.mode = ModeConfirm
	m.confirmAction = action
}

func (m *model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		if m.confirmAction == ConfirmQuit {
			m.shortcutsOn = false
			return *m, tea.Quit
		}
		m.runConfirmed(m.confirmAction)
	}
	return *m, nil
}

func (m *model) runConfirmed(action ConfirmAction) {
	switch action {
	case ConfirmResetCanvas:
		m.session.ResetCanvas()
		m.setSuccess("Canvas cleared")
	case ConfirmResetAll:
		m.session.ResetAll()
		m.palette.SetQuery("")
		m.setSuccess("Progress reset")
	case ConfirmQuit:
		m.shortcutsOn = false
	}
}

func (m *model) focusSearch() tea.Cmd {
	m.mode = ModeSearch
	m.tooltip.Hide()
	return m.palette.Focus()
}

func (m *model) blurSearch() {
	m.mode = ModeNormal
	m.palette.Blur()
}

func (m *model) moveCursor(msg tea.KeyMsg) {
	list := m.palette.Visible(m.session.Discovery().All())
	delta := 1
	if msg.Type == tea.KeyUp || msg.String() == "k" {
		delta = -1
	}
	m.palette.MoveCursor(delta, len(list), m.paletteRows())
}

func (m *model) placeHighlighted() {
	list := m.palette.Visible(m.session.Discovery().All())
	el, ok := m.palette.Selected(list)
	if !ok {
		return
	}
	m.session.PlaceDefault(el)
	m.session.Select(nil)
}

func (m *model) setDark(on, save bool) {
	m.dark = on
	m.styles = newStyles(on)
	if save && m.persist != nil {
		m.persist.SaveDarkMode(on)
	}
}

func (m *model) copySelection() {
	text := selectionText(m.session)
	if text == "" {
		m.setError("Nothing selected")
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		m.log.Warn("clipboard write failed", "error", err)
		m.setError("Clipboard unavailable")
		return
	}
	m.setSuccess("Copied to clipboard")
}

func (m *model) exportPNGCmd() tea.Cmd {
	snap := m.session.Canvas().Snapshot()
	path := m.config.GetSavePath(fmt.Sprintf("stellarforge-%s.png", time.Now().Format("20060102-150405")))
	return func() tea.Msg {
		return exportDoneMsg{path: path, err: ExportToPNG(snap, path)}
	}
}

func (m *model) setError(s string) {
	m.errorMessage = s
	m.successMsg = ""
	m.messageAt = time.Now()
}

func (m *model) setSuccess(s string) {
	m.successMsg = s
	m.errorMessage = ""
	m.messageAt = time.Now()
}
