package main

import (
	"math"
	"time"
)

// PointerEvent is a raw pointer input in screen pixels.
type PointerEvent struct {
	Kind     PointerKind
	X, Y     float64
	Button   PointerButton
	Modifier bool
	DeltaY   float64
	Element  *Element
	At       time.Time
}

// Command is a state change requested by the gesture machine. The Session
// is the only consumer.
type Command interface {
	command()
}

type RequestSelect struct{ IDs []string }

type RequestMove struct {
	Positions map[string]Position
	Final     bool
}

type RequestMerge struct{ Source, Target string }

type RequestDelete struct{ IDs []string }

type RequestPlace struct {
	Element  Element
	Position Position
}

type RequestDuplicate struct{ ID string }

type RequestPan struct{ DX, DY float64 }

type RequestZoom struct{ X, Y, Delta float64 }

func (RequestSelect) command()    {}
func (RequestMove) command()      {}
func (RequestMerge) command()     {}
func (RequestDelete) command()    {}
func (RequestPlace) command()     {}
func (RequestDuplicate) command() {}
func (RequestPan) command()       {}
func (RequestZoom) command()      {}

// Scene is the read-only view of session state the gesture machine queries.
type Scene interface {
	Instances() []Instance
	Viewport() Viewport
	IsSelected(id string) bool
	SelectedIDs() []string
	OverPalette(x, y float64) bool
}

type GestureConfig struct {
	DragThreshold float64
	MergeOverlap  float64
	DoubleClick   time.Duration
}

func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		DragThreshold: defaultDragThreshold,
		MergeOverlap:  defaultMergeOverlap,
		DoubleClick:   doubleClickWindow,
	}
}

// Gesture turns pointer events into commands. It keeps only gesture state;
// positions, selection and the viewport are read from the Scene.
type Gesture struct {
	cfg    GestureConfig
	state  GestureState
	button PointerButton

	startX, startY float64
	lastX, lastY   float64
	pressed        string
	moved          bool

	starts    map[string]Position
	dragOrder []string
	target    string
	trash     bool
	box       Rect

	lastClickID string
	lastClickAt time.Time
}

func NewGesture(cfg GestureConfig) *Gesture {
	return &Gesture{cfg: cfg}
}

func (g *Gesture) SetConfig(cfg GestureConfig) {
	g.cfg = cfg
}

func (g *Gesture) State() GestureState {
	return g.state
}

// Highlight is the current merge target, empty when there is none.
func (g *Gesture) Highlight() string {
	return g.target
}

func (g *Gesture) TrashIntent() bool {
	return g.trash
}

func (g *Gesture) SelectionBox() (Rect, bool) {
	return g.box, g.state == GestureBoxSelecting
}

func (g *Gesture) Dragging(id string) bool {
	if g.state != GestureDragging {
		return false
	}
	_, ok := g.starts[id]
	return ok
}

func (g *Gesture) reset() {
	g.state = GestureIdle
	g.button = ButtonNone
	g.pressed = ""
	g.moved = false
	g.starts = nil
	g.dragOrder = nil
	g.target = ""
	g.trash = false
	g.box = Rect{}
}

func (g *Gesture) Handle(scene Scene, ev PointerEvent) []Command {
	switch ev.Kind {
	case PointerWheel:
		return []Command{RequestZoom{X: ev.X, Y: ev.Y, Delta: WheelZoomDelta(ev.DeltaY)}}
	case PointerDrop:
		if ev.Element == nil || scene.OverPalette(ev.X, ev.Y) {
			return nil
		}
		pos := scene.Viewport().ScreenToWorld(ev.X, ev.Y)
		return []Command{RequestPlace{Element: *ev.Element, Position: pos}}
	case PointerDown:
		return g.down(scene, ev)
	case PointerMove:
		return g.move(scene, ev)
	case PointerUp:
		return g.up(scene, ev)
	}
	return nil
}

func (g *Gesture) down(scene Scene, ev PointerEvent) []Command {
	if g.state != GestureIdle {
		return nil
	}
	g.startX, g.startY = ev.X, ev.Y
	g.lastX, g.lastY = ev.X, ev.Y
	g.button = ev.Button
	hit, onInstance := hitTest(scene, ev.X, ev.Y)

	switch ev.Button {
	case ButtonAuxiliary, ButtonSecondary:
		g.state = GesturePanning
		if onInstance {
			g.pressed = hit.ID
		}
		return nil
	case ButtonPrimary:
		if !onInstance {
			g.state = GestureBoxSelecting
			g.box = Rect{X: ev.X, Y: ev.Y}
			return []Command{RequestSelect{}}
		}
		if hit.IsProcessing {
			return nil
		}
		g.state = GesturePressed
		g.pressed = hit.ID
	}
	return nil
}

func (g *Gesture) move(scene Scene, ev PointerEvent) []Command {
	switch g.state {
	case GesturePanning:
		dx, dy := ev.X-g.lastX, ev.Y-g.lastY
		g.lastX, g.lastY = ev.X, ev.Y
		if g.exceedsThreshold(ev) {
			g.moved = true
		}
		if dx == 0 && dy == 0 {
			return nil
		}
		return []Command{RequestPan{DX: dx, DY: dy}}
	case GestureBoxSelecting:
		g.box = RectFromCorners(g.startX, g.startY, ev.X, ev.Y)
		return nil
	case GesturePressed:
		if !g.exceedsThreshold(ev) {
			return nil
		}
		cmds := g.promote(scene)
		return append(cmds, g.drag(scene, ev, false)...)
	case GestureDragging:
		return g.drag(scene, ev, false)
	}
	return nil
}

func (g *Gesture) exceedsThreshold(ev PointerEvent) bool {
	return math.Abs(ev.X-g.startX) > g.cfg.DragThreshold || math.Abs(ev.Y-g.startY) > g.cfg.DragThreshold
}

// promote turns a press into a drag. Start positions are captured once here.
func (g *Gesture) promote(scene Scene) []Command {
	g.state = GestureDragging
	var cmds []Command
	var ids []string
	if scene.IsSelected(g.pressed) {
		ids = scene.SelectedIDs()
	} else {
		ids = []string{g.pressed}
		cmds = append(cmds, RequestSelect{IDs: ids})
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	g.starts = make(map[string]Position, len(ids))
	g.dragOrder = g.dragOrder[:0]
	for _, inst := range scene.Instances() {
		if !wanted[inst.ID] || inst.IsProcessing {
			continue
		}
		g.starts[inst.ID] = inst.Position
		g.dragOrder = append(g.dragOrder, inst.ID)
	}
	return cmds
}

func (g *Gesture) positionsAt(scene Scene, ev PointerEvent) map[string]Position {
	zoom := scene.Viewport().Zoom
	dx := (ev.X - g.startX) / zoom
	dy := (ev.Y - g.startY) / zoom
	out := make(map[string]Position, len(g.starts))
	for id, start := range g.starts {
		out[id] = Position{X: start.X + dx, Y: start.Y + dy}
	}
	return out
}

func (g *Gesture) drag(scene Scene, ev PointerEvent, final bool) []Command {
	positions := g.positionsAt(scene, ev)
	g.trash = scene.OverPalette(ev.X, ev.Y)
	if g.trash {
		g.target = ""
	} else {
		g.target = g.bestTarget(scene, positions)
	}
	return []Command{RequestMove{Positions: positions, Final: final}}
}

// bestTarget scans every other instance for the largest screen overlap with
// the pressed instance. Only overlaps above the threshold qualify and the
// first candidate wins a tie.
func (g *Gesture) bestTarget(scene Scene, positions map[string]Position) string {
	vp := scene.Viewport()
	instances := scene.Instances()
	var primary Rect
	found := false
	for _, inst := range instances {
		if inst.ID == g.pressed {
			if pos, ok := positions[inst.ID]; ok {
				inst.Position = pos
			}
			primary = ScreenBounds(inst, vp)
			found = true
			break
		}
	}
	if !found {
		return ""
	}

	best, bestArea := "", 0.0
	for _, inst := range instances {
		if inst.ID == g.pressed || inst.IsProcessing {
			continue
		}
		if pos, ok := positions[inst.ID]; ok {
			inst.Position = pos
		}
		area := primary.OverlapArea(ScreenBounds(inst, vp))
		if area > g.cfg.MergeOverlap && area > bestArea {
			best, bestArea = inst.ID, area
		}
	}
	return best
}

func (g *Gesture) up(scene Scene, ev PointerEvent) []Command {
	defer g.reset()
	switch g.state {
	case GesturePanning:
		if g.button == ButtonSecondary && !g.moved && g.pressed != "" {
			return []Command{RequestDelete{IDs: []string{g.pressed}}}
		}
	case GestureBoxSelecting:
		g.box = RectFromCorners(g.startX, g.startY, ev.X, ev.Y)
		return []Command{RequestSelect{IDs: boxSelect(scene, g.box)}}
	case GesturePressed:
		return g.click(scene, ev)
	case GestureDragging:
		cmds := g.drag(scene, ev, true)
		if g.trash {
			ids := make([]string, len(g.dragOrder))
			copy(ids, g.dragOrder)
			return []Command{RequestDelete{IDs: ids}}
		}
		if g.target != "" {
			cmds = append(cmds, RequestMerge{Source: g.pressed, Target: g.target})
		}
		return cmds
	}
	return nil
}

func (g *Gesture) click(scene Scene, ev PointerEvent) []Command {
	id := g.pressed
	if id == g.lastClickID && !ev.At.IsZero() && ev.At.Sub(g.lastClickAt) <= g.cfg.DoubleClick {
		g.lastClickID = ""
		return []Command{RequestDuplicate{ID: id}}
	}
	g.lastClickID, g.lastClickAt = id, ev.At

	var cmds []Command
	if ev.Modifier {
		ids := make([]string, 0)
		toggled := false
		for _, sid := range scene.SelectedIDs() {
			if sid == id {
				toggled = true
				continue
			}
			ids = append(ids, sid)
		}
		if !toggled {
			ids = append(ids, id)
		}
		cmds = append(cmds, RequestSelect{IDs: ids})
	} else {
		cmds = append(cmds, RequestSelect{IDs: []string{id}})
	}
	return cmds
}

// hitTest returns the topmost instance under a screen point. Later
// instances are drawn on top.
func hitTest(scene Scene, x, y float64) (Instance, bool) {
	vp := scene.Viewport()
	instances := scene.Instances()
	for i := len(instances) - 1; i >= 0; i-- {
		if ScreenBounds(instances[i], vp).Contains(x, y) {
			return instances[i], true
		}
	}
	return Instance{}, false
}

func boxSelect(scene Scene, box Rect) []string {
	vp := scene.Viewport()
	var ids []string
	for _, inst := range scene.Instances() {
		if ScreenBounds(inst, vp).Overlaps(box) {
			ids = append(ids, inst.ID)
		}
	}
	return ids
}
