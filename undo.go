package main

// History is a linear undo/redo stack of canvas snapshots. snapshots[index]
// is always the state the live canvas should match.
type History struct {
	snapshots []Snapshot
	index     int
}

func NewHistory(initial Snapshot) *History {
	return &History{snapshots: []Snapshot{initial}, index: 0}
}

// Push drops any redo tail and appends s as the new current state.
func (h *History) Push(s Snapshot) {
	h.snapshots = append(h.snapshots[:h.index+1:h.index+1], s)
	h.index = len(h.snapshots) - 1
}

func (h *History) CanUndo() bool {
	return h.index > 0
}

func (h *History) CanRedo() bool {
	return h.index < len(h.snapshots)-1
}

func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	h.index--
	return h.snapshots[h.index], true
}

func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	h.index++
	return h.snapshots[h.index], true
}

func (h *History) Current() Snapshot {
	return h.snapshots[h.index]
}

func (h *History) Index() int {
	return h.index
}

func (h *History) Len() int {
	return len(h.snapshots)
}

// Reset discards all history and starts again from s.
func (h *History) Reset(s Snapshot) {
	h.snapshots = []Snapshot{s}
	h.index = 0
}
