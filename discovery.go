package main

import (
	"sort"
	"time"
)

// Discovery is the set of every element produced since the last full reset.
type Discovery struct {
	elements map[string]Element
	seed     []Element
	now      func() time.Time
}

func NewDiscovery(seed []Element) *Discovery {
	d := &Discovery{seed: seed, now: time.Now}
	d.ResetAll()
	return d
}

func (d *Discovery) Has(name string) bool {
	_, ok := d.elements[name]
	return ok
}

func (d *Discovery) Get(name string) (Element, bool) {
	el, ok := d.elements[name]
	return el, ok
}

func (d *Discovery) Len() int {
	return len(d.elements)
}

// RecordIfNew adds el when its name is unknown, stamping DiscoveredAt with the
// current time. It returns the stored definition, which for a known name keeps
// the original glyph and discovery time.
func (d *Discovery) RecordIfNew(el Element) (Element, bool) {
	if existing, ok := d.elements[el.Name]; ok {
		return existing, false
	}
	el.DiscoveredAt = d.now().UnixMilli()
	d.elements[el.Name] = el
	return el, true
}

func (d *Discovery) ResetAll() {
	d.elements = make(map[string]Element, len(d.seed))
	for _, el := range d.seed {
		d.elements[el.Name] = el
	}
}

// Replace swaps in a set loaded from storage. An empty set falls back to the seed.
func (d *Discovery) Replace(elements map[string]Element) {
	if len(elements) == 0 {
		d.ResetAll()
		return
	}
	d.elements = make(map[string]Element, len(elements))
	for name, el := range elements {
		el.Name = name
		d.elements[name] = el
	}
}

// All returns the discovered elements ordered by discovery time, then name.
func (d *Discovery) All() []Element {
	out := make([]Element, 0, len(d.elements))
	for _, el := range d.elements {
		out = append(out, el)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DiscoveredAt != out[j].DiscoveredAt {
			return out[i].DiscoveredAt < out[j].DiscoveredAt
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (d *Discovery) entries() []entry[Element] {
	all := d.All()
	out := make([]entry[Element], len(all))
	for i, el := range all {
		out[i] = entry[Element]{Key: el.Name, Value: el}
	}
	return out
}
