package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Palette rows above the element list: title, search, sort bar, rule.
const paletteHeaderRows = 4

// cellToScreen maps a terminal cell to the pixel at its centre.
func cellToScreen(x, y int) (float64, float64) {
	return float64(x)*CellWidth + CellWidth/2, float64(y)*CellHeight + CellHeight/2
}

// screenToCell is the inverse of cellToScreen for any pixel in the cell.
func screenToCell(sx, sy float64) (int, int) {
	return floorDiv(sx, CellWidth), floorDiv(sy, CellHeight)
}

func floorDiv(v, d float64) int {
	q := v / d
	i := int(q)
	if q < 0 && float64(i) != q {
		i--
	}
	return i
}

func pointerButton(b tea.MouseButton) PointerButton {
	switch b {
	case tea.MouseButtonLeft:
		return ButtonPrimary
	case tea.MouseButtonMiddle:
		return ButtonAuxiliary
	case tea.MouseButtonRight:
		return ButtonSecondary
	}
	return ButtonNone
}

// pointerEvent converts a mouse message aimed at the canvas. ok is false for
// messages the gesture machine does not care about.
func pointerEvent(msg tea.MouseMsg, at time.Time) (PointerEvent, bool) {
	x, y := cellToScreen(msg.X, msg.Y)
	ev := PointerEvent{
		X:        x,
		Y:        y,
		Button:   pointerButton(msg.Button),
		Modifier: msg.Shift || msg.Ctrl || msg.Alt,
		At:       at,
	}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		ev.Kind, ev.DeltaY = PointerWheel, -defaultWheelStep
	case msg.Button == tea.MouseButtonWheelDown:
		ev.Kind, ev.DeltaY = PointerWheel, defaultWheelStep
	case msg.Action == tea.MouseActionPress:
		if ev.Button == ButtonNone {
			return ev, false
		}
		ev.Kind = PointerDown
	case msg.Action == tea.MouseActionMotion:
		ev.Kind = PointerMove
	case msg.Action == tea.MouseActionRelease:
		ev.Kind = PointerUp
	default:
		return ev, false
	}
	return ev, true
}

// handleMouse routes a mouse message either to the palette or through the
// gesture machine to the session.
func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	now := time.Now()
	onPalette := msg.X >= m.canvasWidth()

	// a drag out of the palette is tracked here, not by the gesture machine
	if m.paletteDrag != nil {
		m.dragX, m.dragY = msg.X, msg.Y
		if msg.Action != tea.MouseActionRelease {
			return nil
		}
		el := *m.paletteDrag
		m.paletteDrag = nil
		if onPalette {
			return nil
		}
		x, y := cellToScreen(msg.X, msg.Y)
		return m.dispatch(PointerEvent{Kind: PointerDrop, X: x, Y: y, Element: &el, At: now})
	}

	if onPalette && m.gesture.State() == GestureIdle {
		return m.handlePaletteMouse(msg)
	}

	ev, ok := pointerEvent(msg, now)
	if !ok {
		return nil
	}
	if ev.Kind == PointerMove && m.gesture.State() == GestureIdle {
		m.hover(msg.X, msg.Y)
		return nil
	}
	m.tooltip.Hide()
	return m.dispatch(ev)
}

func (m *model) dispatch(ev PointerEvent) tea.Cmd {
	var cmds []tea.Cmd
	for _, c := range m.gesture.Handle(m.session, ev) {
		if job := m.session.Apply(c); job != nil {
			cmds = append(cmds, mergeCmd(job, m.session.Resolver()))
		}
	}
	return tea.Batch(cmds...)
}

func (m *model) handlePaletteMouse(msg tea.MouseMsg) tea.Cmd {
	list := m.palette.Visible(m.session.Discovery().All())
	rows := m.paletteRows()
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.palette.Scroll(-1, len(list), rows)
		return nil
	case msg.Button == tea.MouseButtonWheelDown:
		m.palette.Scroll(1, len(list), rows)
		return nil
	}

	row := msg.Y - paletteHeaderRows
	el, ok := m.palette.At(list, row)
	switch msg.Action {
	case tea.MouseActionMotion:
		if ok {
			m.tooltip.Show(el, msg.X, msg.Y)
		} else {
			m.tooltip.Hide()
		}
	case tea.MouseActionPress:
		if msg.Y == 1 && msg.Button == tea.MouseButtonLeft {
			return m.focusSearch()
		}
		if msg.Y == 2 && msg.Button == tea.MouseButtonLeft {
			m.clickSortBar(msg.X - m.canvasWidth())
			return nil
		}
		if ok && msg.Button == tea.MouseButtonLeft {
			m.palette.MoveCursor(m.palette.Offset()+row-m.palette.Cursor(), len(list), rows)
			m.paletteDrag = &el
			m.dragX, m.dragY = msg.X, msg.Y
			m.tooltip.Hide()
		}
	}
	return nil
}

// clickSortBar maps a click on the sort bar ("[time] [name] [emoji]") to a sort.
func (m *model) clickSortBar(col int) {
	switch {
	case col < 1:
	case col <= 7:
		m.palette.CycleSort(SortByTime)
	case col <= 14:
		m.palette.CycleSort(SortByName)
	case col <= 22:
		m.palette.CycleSort(SortByGlyph)
	}
}

// hover shows the tooltip for the instance under the pointer.
func (m *model) hover(cx, cy int) {
	x, y := cellToScreen(cx, cy)
	if inst, ok := hitTest(m.session, x, y); ok {
		m.tooltip.Show(inst.Element, cx, cy)
		return
	}
	m.tooltip.Hide()
}
