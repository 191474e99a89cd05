package main

import (
	"fmt"
	"strconv"
	"strings"
)

const idPrefix = "el-"

// Canvas holds the instances currently placed on the board. Iteration order
// is insertion order; it decides stacking and merge-target tie breaks.
type Canvas struct {
	instances map[string]Instance
	order     []string
	nextID    int
}

func NewCanvas() *Canvas {
	return &Canvas{
		instances: make(map[string]Instance),
		order:     make([]string, 0),
		nextID:    1,
	}
}

// Load replaces the canvas content and advances the id counter past the
// largest numeric suffix found, so ids are never handed out twice.
func (c *Canvas) Load(instances []Instance) {
	c.instances = make(map[string]Instance, len(instances))
	c.order = make([]string, 0, len(instances))
	for _, inst := range instances {
		c.insert(inst)
	}
	if next := maxIDSuffix(instances) + 1; next > c.nextID {
		c.nextID = next
	}
}

func maxIDSuffix(instances []Instance) int {
	max := 0
	for _, inst := range instances {
		i := strings.LastIndex(inst.ID, "-")
		if i < 0 {
			continue
		}
		n, err := strconv.Atoi(inst.ID[i+1:])
		if err == nil && n > max {
			max = n
		}
	}
	return max
}

func (c *Canvas) newID() string {
	id := fmt.Sprintf("%s%d", idPrefix, c.nextID)
	c.nextID++
	return id
}

func (c *Canvas) insert(inst Instance) {
	if _, ok := c.instances[inst.ID]; !ok {
		c.order = append(c.order, inst.ID)
	}
	c.instances[inst.ID] = inst
}

func (c *Canvas) Place(el Element, pos Position) Instance {
	return c.place(el, pos, false)
}

// PlaceResult places the product of a merge, flagged when it was a first discovery.
func (c *Canvas) PlaceResult(el Element, pos Position, first bool) Instance {
	return c.place(el, pos, first)
}

func (c *Canvas) place(el Element, pos Position, first bool) Instance {
	inst := Instance{
		ID:               c.newID(),
		Element:          el,
		Position:         pos,
		IsFirstDiscovery: first,
	}
	c.insert(inst)
	return inst
}

func (c *Canvas) Get(id string) (Instance, bool) {
	inst, ok := c.instances[id]
	return inst, ok
}

func (c *Canvas) Has(id string) bool {
	_, ok := c.instances[id]
	return ok
}

func (c *Canvas) Remove(id string) bool {
	if _, ok := c.instances[id]; !ok {
		return false
	}
	delete(c.instances, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// MoveMany updates positions in one step. Unknown ids are ignored.
func (c *Canvas) MoveMany(positions map[string]Position) int {
	moved := 0
	for id, pos := range positions {
		inst, ok := c.instances[id]
		if !ok {
			continue
		}
		inst.Position = pos
		c.instances[id] = inst
		moved++
	}
	return moved
}

func (c *Canvas) SetProcessing(processing bool, ids ...string) {
	for _, id := range ids {
		if inst, ok := c.instances[id]; ok {
			inst.IsProcessing = processing
			c.instances[id] = inst
		}
	}
}

func (c *Canvas) Clear() {
	c.instances = make(map[string]Instance)
	c.order = c.order[:0]
}

func (c *Canvas) Len() int {
	return len(c.order)
}

func (c *Canvas) Instances() []Instance {
	out := make([]Instance, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.instances[id])
	}
	return out
}

// Snapshot is an immutable copy of the canvas at one point in history.
type Snapshot struct {
	instances []Instance
}

// Snapshot copies the canvas. Processing flags are transient and never
// recorded.
func (c *Canvas) Snapshot() Snapshot {
	items := c.Instances()
	for i := range items {
		items[i].IsProcessing = false
	}
	return Snapshot{instances: items}
}

func (c *Canvas) Restore(s Snapshot) {
	c.Load(s.instances)
}

func (s Snapshot) Instances() []Instance {
	out := make([]Instance, len(s.instances))
	copy(out, s.instances)
	return out
}

func (s Snapshot) Len() int {
	return len(s.instances)
}

// Equal compares two snapshots id for id, ignoring order.
func (s Snapshot) Equal(o Snapshot) bool {
	if len(s.instances) != len(o.instances) {
		return false
	}
	byID := make(map[string]Instance, len(o.instances))
	for _, inst := range o.instances {
		byID[inst.ID] = inst
	}
	for _, inst := range s.instances {
		other, ok := byID[inst.ID]
		if !ok || other != inst {
			return false
		}
	}
	return true
}
