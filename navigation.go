package main

// Viewport maps world coordinates to screen pixels:
// screen = world*Zoom + Pan.
type Viewport struct {
	PanX float64
	PanY float64
	Zoom float64
}

func NewViewport() Viewport {
	return Viewport{Zoom: 1}
}

func (v Viewport) ScreenToWorld(sx, sy float64) Position {
	return Position{X: (sx - v.PanX) / v.Zoom, Y: (sy - v.PanY) / v.Zoom}
}

func (v Viewport) WorldToScreen(p Position) (float64, float64) {
	return p.X*v.Zoom + v.PanX, p.Y*v.Zoom + v.PanY
}

func (v *Viewport) PanBy(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// ZoomAt changes the zoom by delta while keeping the world point under
// (sx, sy) at the same screen position.
func (v *Viewport) ZoomAt(sx, sy, delta float64) {
	newZoom := clampZoom(v.Zoom + delta)
	if newZoom == v.Zoom {
		return
	}
	ratio := newZoom / v.Zoom
	v.PanX = sx - (sx-v.PanX)*ratio
	v.PanY = sy - (sy-v.PanY)*ratio
	v.Zoom = newZoom
}

// WheelZoomDelta converts a wheel delta (positive scrolls down) to a zoom step.
func WheelZoomDelta(deltaY float64) float64 {
	return -deltaY * wheelZoomFactor
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
