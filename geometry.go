package main

import (
	"math"

	"github.com/mattn/go-runewidth"
)

// Rect is an axis-aligned rectangle in screen pixels.
type Rect struct {
	X, Y, W, H float64
}

// RectFromCorners builds a normalized rectangle from two opposite corners.
func RectFromCorners(x1, y1, x2, y2 float64) Rect {
	return Rect{
		X: math.Min(x1, x2),
		Y: math.Min(y1, y2),
		W: math.Abs(x2 - x1),
		H: math.Abs(y2 - y1),
	}
}

func (r Rect) Right() float64 {
	return r.X + r.W
}

func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Overlaps reports a strict overlap; rectangles that only touch do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

func (r Rect) OverlapArea(o Rect) float64 {
	w := math.Max(0, math.Min(r.Right(), o.Right())-math.Max(r.X, o.X))
	h := math.Max(0, math.Min(r.Bottom(), o.Bottom())-math.Max(r.Y, o.Y))
	return w * h
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// labelCells is the width in cells of a rendered instance: a border on each
// side, one space of padding each side, the glyph, a space and the name.
func labelCells(el Element) int {
	return runewidth.StringWidth(el.Glyph) + 1 + runewidth.StringWidth(el.Name) + 4
}

const labelRows = 3

// ScreenBounds is the rendered box of an instance. Terminal labels keep
// their cell size at every zoom level, so only the origin is scaled.
func ScreenBounds(inst Instance, v Viewport) Rect {
	sx, sy := v.WorldToScreen(inst.Position)
	return Rect{
		X: sx,
		Y: sy,
		W: float64(labelCells(inst.Element)) * CellWidth,
		H: labelRows * CellHeight,
	}
}
