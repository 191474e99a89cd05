package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stellarforge/internal/store"
)

// Session owns all crafting state. Every mutation goes through it and it is
// only touched from the UI event loop; the one exception is MergeJob.Run,
// which reads nothing but its own copy of the two instances.
type Session struct {
	canvas    *Canvas
	history   *History
	discovery *Discovery
	cache     *RecipeCache
	resolver  Resolver

	viewport  Viewport
	selection map[string]bool
	layout    Layout

	// ids of instances whose merge has not settled yet
	merging map[string]bool

	notes      *NotificationCenter
	persist    *Persistence
	explosions []ExplosionEvent
	nextBoom   int

	log *slog.Logger
	now func() time.Time
}

type SessionOptions struct {
	Resolver      Resolver
	Cache         *RecipeCache
	Persistence   *Persistence
	Notifications *NotificationCenter
	Logger        *slog.Logger
}

// NewSession builds a session and loads any stored state. Missing keys fall
// back to an empty canvas and the three starting elements.
func NewSession(opts SessionOptions) *Session {
	s := &Session{
		canvas:    NewCanvas(),
		discovery: NewDiscovery(initialElements),
		cache:     opts.Cache,
		resolver:  opts.Resolver,
		viewport:  NewViewport(),
		selection: make(map[string]bool),
		merging:   make(map[string]bool),
		notes:     opts.Notifications,
		persist:   opts.Persistence,
		log:       opts.Logger,
		now:       time.Now,
	}
	if s.cache == nil {
		s.cache = NewRecipeCache()
	}
	if s.resolver == nil {
		s.resolver = NewStaticResolver(defaultRecipes)
	}
	if s.notes == nil {
		s.notes = NewNotificationCenter(notificationTTL, notificationExitGrace)
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	if s.persist != nil {
		if instances := s.persist.LoadCanvas(); instances != nil {
			s.canvas.Load(instances)
		}
		s.discovery.Replace(s.persist.LoadDiscovery())
		if recipes := s.persist.LoadRecipes(); recipes != nil {
			s.cache.Replace(recipes)
		}
	}
	s.history = NewHistory(s.canvas.Snapshot())
	return s
}

// Scene

func (s *Session) Instances() []Instance { return s.canvas.Instances() }

func (s *Session) Viewport() Viewport { return s.viewport }

func (s *Session) IsSelected(id string) bool { return s.selection[id] }

// SelectedIDs returns the selection in canvas order.
func (s *Session) SelectedIDs() []string {
	ids := make([]string, 0, len(s.selection))
	for _, inst := range s.canvas.Instances() {
		if s.selection[inst.ID] {
			ids = append(ids, inst.ID)
		}
	}
	return ids
}

func (s *Session) OverPalette(x, y float64) bool {
	return s.layout.PaletteLeft > 0 && x >= s.layout.PaletteLeft
}

func (s *Session) SetLayout(l Layout) { s.layout = l }

func (s *Session) Layout() Layout { return s.layout }

func (s *Session) Canvas() *Canvas { return s.canvas }

func (s *Session) Discovery() *Discovery { return s.discovery }

func (s *Session) Cache() *RecipeCache { return s.cache }

func (s *Session) Notifications() *NotificationCenter { return s.notes }

func (s *Session) Explosions() []ExplosionEvent { return s.explosions }

func (s *Session) CanUndo() bool { return s.history.CanUndo() }

func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// Apply executes one gesture command. A merge request returns the job to run
// off the event loop; every other command completes synchronously.
func (s *Session) Apply(cmd Command) *MergeJob {
	switch c := cmd.(type) {
	case RequestSelect:
		s.Select(c.IDs)
	case RequestMove:
		s.MoveMany(c.Positions, c.Final)
	case RequestMerge:
		job, ok := s.BeginMerge(c.Source, c.Target)
		if ok {
			return job
		}
	case RequestDelete:
		s.RemoveMany(c.IDs)
	case RequestPlace:
		s.Place(c.Element, c.Position)
		s.Select(nil)
	case RequestDuplicate:
		s.Duplicate(c.ID)
	case RequestPan:
		s.viewport.PanBy(c.DX, c.DY)
	case RequestZoom:
		s.viewport.ZoomAt(c.X, c.Y, c.Delta)
	}
	return nil
}

// Select replaces the selection. Unknown ids are dropped.
func (s *Session) Select(ids []string) {
	s.selection = make(map[string]bool, len(ids))
	for _, id := range ids {
		if s.canvas.Has(id) {
			s.selection[id] = true
		}
	}
}

func (s *Session) pruneSelection() {
	for id := range s.selection {
		if !s.canvas.Has(id) {
			delete(s.selection, id)
		}
	}
}

// commit records the live canvas as a new history step and stores it.
func (s *Session) commit() {
	snap := s.canvas.Snapshot()
	s.history.Push(snap)
	if s.persist != nil {
		s.persist.SaveCanvas(snap)
	}
}

func (s *Session) Place(el Element, pos Position) Instance {
	if known, ok := s.discovery.Get(el.Name); ok {
		el = known
	}
	inst := s.canvas.Place(el, pos)
	s.commit()
	return inst
}

// PlaceDefault places el one third into the visible canvas, used when an
// element is picked from the palette with the keyboard.
func (s *Session) PlaceDefault(el Element) Instance {
	w := s.layout.PaletteLeft
	if w <= 0 {
		w = s.layout.Width
	}
	pos := s.viewport.ScreenToWorld(w/3, s.layout.Height/3)
	return s.Place(el, pos)
}

func (s *Session) Remove(id string) bool {
	return s.RemoveMany([]string{id}) > 0
}

// RemoveMany deletes instances in one history step. Processing instances are
// deleted too; their pending merge is then discarded when it settles.
func (s *Session) RemoveMany(ids []string) int {
	removed := 0
	for _, id := range ids {
		if s.canvas.Remove(id) {
			removed++
		}
	}
	if removed == 0 {
		return 0
	}
	s.pruneSelection()
	s.commit()
	return removed
}

// MoveMany updates positions live. Only the final move of a drag is recorded
// in history.
func (s *Session) MoveMany(positions map[string]Position, final bool) {
	moved := s.canvas.MoveMany(positions)
	if final && moved > 0 {
		s.commit()
	}
}

func (s *Session) Duplicate(id string) (Instance, bool) {
	inst, ok := s.canvas.Get(id)
	if !ok {
		return Instance{}, false
	}
	pos := Position{X: inst.Position.X + duplicateOffset, Y: inst.Position.Y + duplicateOffset}
	dup := s.canvas.Place(inst.Element, pos)
	s.commit()
	return dup, true
}

// MergeJob is an in-flight combination of two instances.
type MergeJob struct {
	A, B Instance
}

type MergeResult struct {
	Job     *MergeJob
	Outcome Outcome
	Err     error
}

// Run resolves the pair. It is safe to call off the event loop.
func (j *MergeJob) Run(ctx context.Context, r Resolver) MergeResult {
	out, err := r.Resolve(ctx, j.A.Name, j.B.Name)
	return MergeResult{Job: j, Outcome: out, Err: err}
}

// BeginMerge marks both instances as processing. It refuses unknown ids,
// a self merge and instances already taking part in a merge.
func (s *Session) BeginMerge(aID, bID string) (*MergeJob, bool) {
	if aID == bID {
		return nil, false
	}
	a, okA := s.canvas.Get(aID)
	b, okB := s.canvas.Get(bID)
	if !okA || !okB || a.IsProcessing || b.IsProcessing {
		return nil, false
	}
	s.canvas.SetProcessing(true, aID, bID)
	s.merging[aID], s.merging[bID] = true, true
	return &MergeJob{A: a, B: b}, true
}

// SettleMerge applies a finished merge. Results for instances that no
// longer exist are dropped; failures and no-reactions only clear the
// processing flags.
func (s *Session) SettleMerge(res MergeResult) Outcome {
	a, b := res.Job.A, res.Job.B
	delete(s.merging, a.ID)
	delete(s.merging, b.ID)
	liveA, okA := s.canvas.Get(a.ID)
	liveB, okB := s.canvas.Get(b.ID)
	if !okA || !okB {
		s.canvas.SetProcessing(false, a.ID, b.ID)
		s.log.Debug("discarding merge for removed instances", "a", a.ID, "b", b.ID)
		return Outcome{Kind: NoReaction}
	}
	if res.Err != nil {
		s.log.Warn("merge failed", "a", a.Name, "b", b.Name, "error", res.Err)
	}
	if res.Err != nil || res.Outcome.Kind == NoReaction {
		s.canvas.SetProcessing(false, a.ID, b.ID)
		return Outcome{Kind: NoReaction}
	}

	key := PairKey(a.Name, b.Name)
	mid := midpoint(liveA.Position, liveB.Position)
	s.canvas.Remove(a.ID)
	s.canvas.Remove(b.ID)
	s.pruneSelection()

	switch res.Outcome.Kind {
	case Explosion:
		s.explosions = append(s.explosions, ExplosionEvent{
			ID:       s.nextBoom,
			Position: mid,
			Until:    s.now().Add(explosionLifetime),
		})
		s.nextBoom++
		if desc, ok := recipeDescriptions[key]; ok {
			s.notes.Emit(fmt.Sprintf("%s + %s = 💥", a.Name, b.Name), desc, "💥")
		}
		s.commit()
		return res.Outcome

	default:
		def, first := s.discovery.RecordIfNew(res.Outcome.Element)
		s.canvas.PlaceResult(def, mid, first)
		if first {
			if desc, ok := recipeDescriptions[key]; ok {
				s.notes.Emit("New Discovery: "+def.Name, desc, def.Glyph)
			}
			if s.persist != nil {
				s.persist.SaveDiscovery(s.discovery)
			}
		}
		if s.persist != nil && s.cache.Len() > 0 {
			if _, cached := s.cache.Get(key); cached {
				s.persist.SaveRecipes(s.cache)
			}
		}
		s.commit()
		return Outcome{Kind: NewElement, Element: def}
	}
}

// Merge runs a whole merge synchronously.
func (s *Session) Merge(ctx context.Context, aID, bID string) (Outcome, bool) {
	job, ok := s.BeginMerge(aID, bID)
	if !ok {
		return Outcome{Kind: NoReaction}, false
	}
	return s.SettleMerge(job.Run(ctx, s.resolver)), true
}

func (s *Session) Resolver() Resolver { return s.resolver }

// Undo and Redo replace the live canvas with a stored snapshot. Neither
// pushes history.
func (s *Session) Undo() bool {
	snap, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

func (s *Session) Redo() bool {
	snap, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

func (s *Session) restore(snap Snapshot) {
	s.canvas.Restore(snap)
	s.markMerging()
	s.pruneSelection()
	if s.persist != nil {
		s.persist.SaveCanvas(snap)
	}
}

// markMerging flags instances of unsettled merges again after the canvas was
// replaced; snapshots never carry the flag.
func (s *Session) markMerging() {
	for id := range s.merging {
		if s.canvas.Has(id) {
			s.canvas.SetProcessing(true, id)
		}
	}
}

// ResetCanvas clears every instance as one undoable step.
func (s *Session) ResetCanvas() {
	s.canvas.Clear()
	s.selection = make(map[string]bool)
	s.commit()
}

// ResetAll clears the canvas, forgets every discovery except the starting
// elements and drops generated recipes.
func (s *Session) ResetAll() {
	s.ResetCanvas()
	s.discovery.ResetAll()
	s.cache.Clear()
	if s.persist != nil {
		s.persist.SaveDiscovery(s.discovery)
		s.persist.SaveRecipes(s.cache)
	}
}

// Expire drops explosions and notifications whose time is up.
func (s *Session) Expire(now time.Time) bool {
	changed := s.notes.Expire(now)
	kept := s.explosions[:0]
	for _, e := range s.explosions {
		if now.Before(e.Until) {
			kept = append(kept, e)
		}
	}
	if len(kept) != len(s.explosions) {
		changed = true
	}
	s.explosions = kept
	return changed
}

// ApplyExternal takes a change written by another session. It reports
// whether anything in memory changed; dark mode is left to the caller.
func (s *Session) ApplyExternal(c store.Change) bool {
	if s.persist != nil && !c.Deleted && s.persist.IsEcho(c.Key, c.Value) {
		return false
	}
	switch c.Key {
	case KeyCanvas:
		var instances []Instance
		if !c.Deleted {
			var err error
			if instances, err = decodeCanvas(c.Value); err != nil {
				s.log.Warn("ignoring external canvas change", "error", err)
				return false
			}
		}
		s.canvas.Load(instances)
		s.markMerging()
		s.pruneSelection()
		s.history.Push(s.canvas.Snapshot())
		return true
	case KeyDiscovered:
		var elements map[string]Element
		if !c.Deleted {
			entries, err := decodeEntries[Element](c.Value)
			if err != nil {
				s.log.Warn("ignoring external discovery change", "error", err)
				return false
			}
			elements = entriesToMap(entries)
		}
		s.discovery.Replace(elements)
		return true
	case KeyRecipes:
		var recipes map[string]Element
		if !c.Deleted {
			entries, err := decodeEntries[Element](c.Value)
			if err != nil {
				s.log.Warn("ignoring external recipe change", "error", err)
				return false
			}
			recipes = entriesToMap(entries)
		}
		s.cache.Replace(recipes)
		return true
	}
	return false
}
