package main

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Palette is the sidebar listing discovered elements. It owns the search
// field, the sort order and the highlighted row.
type Palette struct {
	search    textinput.Model
	sortType  SortType
	ascending bool
	cursor    int
	offset    int
}

func NewPalette() *Palette {
	ti := textinput.New()
	ti.Placeholder = "Search…"
	ti.Prompt = "🔍 "
	ti.CharLimit = 64
	return &Palette{search: ti, sortType: SortByTime, ascending: true}
}

// CycleSort picks a sort; choosing the current one flips the direction,
// choosing another resets to ascending.
func (p *Palette) CycleSort(t SortType) {
	if t == p.sortType {
		p.ascending = !p.ascending
		return
	}
	p.sortType = t
	p.ascending = true
}

func (p *Palette) Sort() (SortType, bool) {
	return p.sortType, p.ascending
}

func (p *Palette) Query() string {
	return p.search.Value()
}

func (p *Palette) SetQuery(q string) {
	p.search.SetValue(q)
	p.cursor, p.offset = 0, 0
}

func (p *Palette) Focus() tea.Cmd {
	return p.search.Focus()
}

func (p *Palette) Blur() {
	p.search.Blur()
}

func (p *Palette) Focused() bool {
	return p.search.Focused()
}

func (p *Palette) SetWidth(w int) {
	p.search.Width = w - 4
}

// UpdateSearch feeds a key to the search field.
func (p *Palette) UpdateSearch(msg tea.Msg) tea.Cmd {
	before := p.search.Value()
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	if p.search.Value() != before {
		p.cursor, p.offset = 0, 0
	}
	return cmd
}

func (p *Palette) SearchView() string {
	return p.search.View()
}

// Visible filters elements by the search text (case-insensitive substring of
// the name) and orders them.
func (p *Palette) Visible(all []Element) []Element {
	q := strings.ToLower(p.search.Value())
	out := make([]Element, 0, len(all))
	for _, el := range all {
		if strings.Contains(strings.ToLower(el.Name), q) {
			out = append(out, el)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		switch p.sortType {
		case SortByName:
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		case SortByGlyph:
			return out[i].Glyph < out[j].Glyph
		default:
			return out[i].DiscoveredAt < out[j].DiscoveredAt
		}
	})
	if !p.ascending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// MoveCursor moves the highlighted row and keeps it within rows visible lines.
func (p *Palette) MoveCursor(delta, n, rows int) {
	if n == 0 {
		p.cursor, p.offset = 0, 0
		return
	}
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= n {
		p.cursor = n - 1
	}
	p.scrollTo(rows)
}

func (p *Palette) scrollTo(rows int) {
	if rows < 1 {
		rows = 1
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+rows {
		p.offset = p.cursor - rows + 1
	}
}

func (p *Palette) Cursor() int {
	return p.cursor
}

func (p *Palette) Offset() int {
	return p.offset
}

// Scroll moves the list window without moving past either end.
func (p *Palette) Scroll(delta, n, rows int) {
	p.offset += delta
	if max := n - rows; p.offset > max {
		p.offset = max
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

// Selected returns the highlighted element of list.
func (p *Palette) Selected(list []Element) (Element, bool) {
	if p.cursor < 0 || p.cursor >= len(list) {
		return Element{}, false
	}
	return list[p.cursor], true
}

// At returns the element shown on list row `row` (0 is the first list line).
func (p *Palette) At(list []Element, row int) (Element, bool) {
	i := p.offset + row
	if row < 0 || i >= len(list) {
		return Element{}, false
	}
	return list[i], true
}
