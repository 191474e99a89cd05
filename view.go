package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type Styles struct {
	Canvas     lipgloss.Style
	Box        lipgloss.Style
	Selected   lipgloss.Style
	Highlight  lipgloss.Style
	Processing lipgloss.Style
	First      lipgloss.Style
	Trash      lipgloss.Style
	SelectBox  lipgloss.Style
	Explosion  lipgloss.Style
	Ghost      lipgloss.Style

	Sidebar    lipgloss.Style
	Title      lipgloss.Style
	Row        lipgloss.Style
	RowCursor  lipgloss.Style
	SortActive lipgloss.Style
	Muted      lipgloss.Style

	Notification lipgloss.Style
	Leaving      lipgloss.Style
	Tooltip      lipgloss.Style

	Status  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Help    lipgloss.Style
}

func newStyles(dark bool) Styles {
	fg, bg, muted, accent := lipgloss.Color("#1f2937"), lipgloss.Color("#f8fafc"), lipgloss.Color("#94a3b8"), lipgloss.Color("#7c3aed")
	if dark {
		fg, bg, muted, accent = lipgloss.Color("#e5e7eb"), lipgloss.Color("#0f172a"), lipgloss.Color("#64748b"), lipgloss.Color("#a78bfa")
	}
	base := lipgloss.NewStyle().Foreground(fg).Background(bg)
	return Styles{
		Canvas:     base,
		Box:        base,
		Selected:   base.Foreground(lipgloss.Color("#3b82f6")).Bold(true),
		Highlight:  base.Foreground(lipgloss.Color("#22c55e")).Bold(true),
		Processing: base.Foreground(muted).Faint(true),
		First:      base.Foreground(lipgloss.Color("#eab308")).Bold(true),
		Trash:      base.Foreground(lipgloss.Color("#ef4444")),
		SelectBox:  base.Foreground(accent),
		Explosion:  base.Foreground(lipgloss.Color("#f97316")).Bold(true),
		Ghost:      base.Foreground(muted).Italic(true),

		Sidebar:    base.BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(muted).BorderBackground(bg),
		Title:      base.Bold(true).Foreground(accent),
		Row:        base,
		RowCursor:  base.Reverse(true),
		SortActive: base.Foreground(accent).Bold(true),
		Muted:      base.Foreground(muted),

		Notification: base.Foreground(accent).Bold(true),
		Leaving:      base.Foreground(muted).Faint(true),
		Tooltip:      base.Foreground(fg).Reverse(true),

		Status:  lipgloss.NewStyle().Foreground(bg).Background(fg),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#b91c1c")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#15803d")),
		Help:    base.Padding(1, 2),
	}
}

type cellStyle int

const (
	styleCanvas cellStyle = iota
	styleBox
	styleSelected
	styleHighlight
	styleProcessing
	styleFirst
	styleTrash
	styleSelectBox
	styleExplosion
	styleGhost
	styleNotification
	styleLeaving
	styleTooltip
)

func (s Styles) of(c cellStyle) lipgloss.Style {
	switch c {
	case styleBox:
		return s.Box
	case styleSelected:
		return s.Selected
	case styleHighlight:
		return s.Highlight
	case styleProcessing:
		return s.Processing
	case styleFirst:
		return s.First
	case styleTrash:
		return s.Trash
	case styleSelectBox:
		return s.SelectBox
	case styleExplosion:
		return s.Explosion
	case styleGhost:
		return s.Ghost
	case styleNotification:
		return s.Notification
	case styleLeaving:
		return s.Leaving
	case styleTooltip:
		return s.Tooltip
	}
	return s.Canvas
}

type cell struct {
	text  string
	cont  bool // right half of a wide glyph
	style cellStyle
}

// grid is a character canvas. Wide glyphs take their first cell and mark the
// following ones as continuations.
type grid struct {
	w, h  int
	cells [][]cell
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, cells: make([][]cell, h)}
	for y := range g.cells {
		g.cells[y] = make([]cell, w)
		for x := range g.cells[y] {
			g.cells[y][x] = cell{text: " "}
		}
	}
	return g
}

func (g *grid) put(x, y int, s string, st cellStyle) int {
	if y < 0 || y >= g.h {
		return x + runewidth.StringWidth(s)
	}
	prev := -1
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			if prev >= 0 {
				g.cells[y][prev].text += string(r)
			}
			continue
		}
		if x >= 0 && x+w <= g.w {
			g.cells[y][x] = cell{text: string(r), style: st}
			for k := 1; k < w; k++ {
				g.cells[y][x+k] = cell{cont: true, style: st}
			}
			prev = x
		} else {
			prev = -1
		}
		x += w
	}
	return x
}

// putGlyph writes an emoji as one unit so its variation selector stays with it.
func (g *grid) putGlyph(x, y int, glyph string, st cellStyle) int {
	w := runewidth.StringWidth(glyph)
	if w == 0 {
		return x
	}
	if y >= 0 && y < g.h && x >= 0 && x+w <= g.w {
		g.cells[y][x] = cell{text: glyph, style: st}
		for k := 1; k < w; k++ {
			g.cells[y][x+k] = cell{cont: true, style: st}
		}
	}
	return x + w
}

func (g *grid) render(styles Styles) string {
	var out strings.Builder
	for y, row := range g.cells {
		if y > 0 {
			out.WriteByte('\n')
		}
		var seg strings.Builder
		cur := styleCanvas
		flush := func() {
			if seg.Len() > 0 {
				out.WriteString(styles.of(cur).Render(seg.String()))
				seg.Reset()
			}
		}
		for _, c := range row {
			if c.cont {
				continue
			}
			if c.style != cur {
				flush()
				cur = c.style
			}
			seg.WriteString(c.text)
		}
		flush()
	}
	return out.String()
}

func (m model) instanceStyle(inst Instance) cellStyle {
	switch {
	case inst.IsProcessing:
		return styleProcessing
	case m.gesture.TrashIntent() && m.gesture.Dragging(inst.ID):
		return styleTrash
	case m.gesture.Highlight() == inst.ID:
		return styleHighlight
	case m.session.IsSelected(inst.ID):
		return styleSelected
	case inst.IsFirstDiscovery:
		return styleFirst
	}
	return styleBox
}

func drawInstance(g *grid, inst Instance, v Viewport, st cellStyle) {
	b := ScreenBounds(inst, v)
	x, y := screenToCell(b.X, b.Y)
	w := labelCells(inst.Element)

	top, bottom, side := "╭"+strings.Repeat("─", w-2)+"╮", "╰"+strings.Repeat("─", w-2)+"╯", "│"
	if inst.IsProcessing {
		top, bottom, side = "┌"+strings.Repeat("┄", w-2)+"┐", "└"+strings.Repeat("┄", w-2)+"┘", "┆"
	}
	g.put(x, y, top, st)
	cx := g.put(x, y+1, side+" ", st)
	cx = g.putGlyph(cx, y+1, inst.Glyph, st)
	cx = g.put(cx, y+1, " "+inst.Name+" ", st)
	g.put(cx, y+1, side, st)
	g.put(x, y+2, bottom, st)
}

func drawSelectionBox(g *grid, r Rect) {
	x0, y0 := screenToCell(r.X, r.Y)
	x1, y1 := screenToCell(r.Right(), r.Bottom())
	for x := x0; x <= x1; x++ {
		g.put(x, y0, "┈", styleSelectBox)
		g.put(x, y1, "┈", styleSelectBox)
	}
	for y := y0; y <= y1; y++ {
		g.put(x0, y, "┊", styleSelectBox)
		g.put(x1, y, "┊", styleSelectBox)
	}
}

func (m model) renderCanvas() string {
	w, h := m.canvasWidth(), m.canvasHeight()
	g := newGrid(w, h)
	v := m.session.Viewport()

	for _, inst := range m.session.Instances() {
		drawInstance(g, inst, v, m.instanceStyle(inst))
	}
	if box, ok := m.gesture.SelectionBox(); ok {
		drawSelectionBox(g, box)
	}
	for _, e := range m.session.Explosions() {
		sx, sy := v.WorldToScreen(e.Position)
		x, y := screenToCell(sx, sy)
		g.put(x-1, y, "💥💥💥", styleExplosion)
	}
	if m.paletteDrag != nil && m.dragX < w {
		x := g.putGlyph(m.dragX, m.dragY, m.paletteDrag.Glyph, styleGhost)
		g.put(x, m.dragY, " "+m.paletteDrag.Name, styleGhost)
	}
	m.drawNotifications(g)
	m.drawTooltip(g)
	return g.render(m.styles)
}

const notificationWidth = 44

func (m model) drawNotifications(g *grid) {
	y := 0
	x := g.w - notificationWidth - 1
	if x < 0 {
		x = 0
	}
	for _, n := range m.session.Notifications().Active() {
		st := styleNotification
		if n.Leaving {
			st = styleLeaving
		}
		cx := g.put(x, y, "▌ ", st)
		cx = g.putGlyph(cx, y, n.Glyph, st)
		g.put(cx, y, " "+truncate(n.Title, notificationWidth-6), st)
		for _, line := range wrap(n.Message, notificationWidth-2) {
			y++
			g.put(x, y, "▌ "+line, st)
		}
		y += 2
	}
}

func (m model) drawTooltip(g *grid) {
	if !m.tooltip.Visible() || m.paletteDrag != nil {
		return
	}
	const width = 32
	lines := wrap(m.tooltip.Body, width)
	x, y := m.tooltip.X+2, m.tooltip.Y+1
	if x+width+2 > g.w {
		x = g.w - width - 2
	}
	if y+len(lines)+1 > g.h {
		y = g.h - len(lines) - 1
	}
	header := " " + m.tooltip.Element.Name
	cx := g.put(x, y, " ", styleTooltip)
	cx = g.putGlyph(cx, y, m.tooltip.Element.Glyph, styleTooltip)
	g.put(cx, y, padRight(header, width+1-(cx-x)), styleTooltip)
	for i, line := range lines {
		g.put(x, y+1+i, " "+padRight(line, width+1), styleTooltip)
	}
}

func (m model) renderSidebar() string {
	width := m.config.SidebarWidth - 1
	all := m.session.Discovery().All()
	list := m.palette.Visible(all)

	lines := []string{
		m.styles.Title.Render(fmt.Sprintf("Elements (%d)", len(all))),
		m.palette.SearchView(),
		m.sortBar(),
		m.styles.Muted.Render(strings.Repeat("─", width)),
	}
	rows := m.paletteRows()
	for i := 0; i < rows; i++ {
		idx := m.palette.Offset() + i
		if idx >= len(list) {
			break
		}
		el := list[idx]
		text := padRight(" "+el.Glyph+" "+el.Name, width)
		if idx == m.palette.Cursor() {
			lines = append(lines, m.styles.RowCursor.Render(text))
		} else {
			lines = append(lines, m.styles.Row.Render(text))
		}
	}
	if len(list) == 0 {
		lines = append(lines, m.styles.Muted.Render(" No elements match"))
	}
	return m.styles.Sidebar.Width(width).Height(m.canvasHeight()).MaxHeight(m.canvasHeight()).Render(strings.Join(lines, "\n"))
}

func (m model) sortBar() string {
	current, asc := m.palette.Sort()
	arrow := "↑"
	if !asc {
		arrow = "↓"
	}
	labels := []struct {
		t    SortType
		name string
	}{{SortByTime, "time"}, {SortByName, "name"}, {SortByGlyph, "emoji"}}
	parts := make([]string, len(labels))
	for i, l := range labels {
		if l.t == current {
			parts[i] = m.styles.SortActive.Render("[" + l.name + arrow + "]")
		} else {
			parts[i] = m.styles.Muted.Render("[" + l.name + "]")
		}
	}
	return strings.Join(parts, " ")
}

func (m model) statusLine() string {
	if m.mode == ModeConfirm {
		prompt := map[ConfirmAction]string{
			ConfirmResetCanvas: "Clear the canvas?",
			ConfirmResetAll:    "Reset all progress? Discoveries and generated recipes are lost.",
			ConfirmQuit:        "Quit?",
		}[m.confirmAction]
		return m.styles.Error.Width(m.width).Render(" " + prompt + " (y/n)")
	}
	if m.errorMessage != "" {
		return m.styles.Error.Width(m.width).Render(" " + m.errorMessage)
	}
	if m.successMsg != "" {
		return m.styles.Success.Width(m.width).Render(" " + m.successMsg)
	}

	mark := func(ok bool) string {
		if ok {
			return "✓"
		}
		return "✗"
	}
	v := m.session.Viewport()
	status := fmt.Sprintf(" zoom %d%% │ %d on canvas │ %d discovered │ undo %s redo %s │ %s │ ? help",
		int(v.Zoom*100+0.5),
		m.session.Canvas().Len(),
		m.session.Discovery().Len(),
		mark(m.session.CanUndo()),
		mark(m.session.CanRedo()),
		m.config.Variant,
	)
	if m.mode == ModeSearch {
		status = " searching… enter places the highlighted element, esc leaves the field"
	}
	return m.styles.Status.Width(m.width).Render(status)
}

func (m model) helpView() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Stellar Forge"))
	b.WriteString("\n\n")
	b.WriteString("Drag elements from the palette onto the canvas and drop one onto another to combine them.\n")
	b.WriteString("Left drag on empty space selects, middle or right drag pans, wheel zooms,\n")
	b.WriteString("double click duplicates, right click deletes, dragging onto the palette deletes.\n\n")
	for _, row := range m.keys.HelpRows() {
		parts := make([]string, 0, len(row))
		for _, k := range row {
			h := k.Help()
			parts = append(parts, fmt.Sprintf("%-8s %-22s", h.Key, h.Desc))
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteString("\n")
	}
	b.WriteString("\npress any key to close")
	return m.styles.Help.Width(m.width).Height(m.height).Render(b.String())
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.help {
		return m.helpView()
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderCanvas(), m.renderSidebar())
	return body + "\n" + m.statusLine()
}

func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

// wrap breaks s into lines of at most width cells, on spaces where possible.
func wrap(s string, width int) []string {
	var lines []string
	var cur strings.Builder
	curW := 0
	for _, word := range strings.Fields(s) {
		ww := runewidth.StringWidth(word)
		if curW > 0 && curW+1+ww > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curW = 0
		}
		if curW > 0 {
			cur.WriteByte(' ')
			curW++
		}
		cur.WriteString(word)
		curW += ww
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
