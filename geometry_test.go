package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect_Overlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"inside", Rect{X: 2, Y: 2, W: 2, H: 2}, true},
		{"partial", Rect{X: 5, Y: 5, W: 10, H: 10}, true},
		{"touching edge", Rect{X: 10, Y: 0, W: 5, H: 5}, false},
		{"touching corner", Rect{X: 10, Y: 10, W: 5, H: 5}, false},
		{"apart", Rect{X: 20, Y: 20, W: 5, H: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(a))
		})
	}
}

func TestRect_OverlapArea(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	assert.Equal(t, 25.0, a.OverlapArea(Rect{X: 5, Y: 5, W: 10, H: 10}))
	assert.Equal(t, 0.0, a.OverlapArea(Rect{X: 10, Y: 0, W: 10, H: 10}))
	assert.Equal(t, 100.0, a.OverlapArea(a))
}

func TestRectFromCorners_Normalizes(t *testing.T) {
	assert.Equal(t, Rect{X: 2, Y: 3, W: 8, H: 4}, RectFromCorners(10, 7, 2, 3))
}

func TestScreenBounds_ScalesOriginOnly(t *testing.T) {
	inst := Instance{ID: "el-1", Element: Element{Name: "Star", Glyph: "*"}, Position: Position{X: 10, Y: 20}}
	b1 := ScreenBounds(inst, NewViewport())
	b2 := ScreenBounds(inst, Viewport{PanX: 5, PanY: 5, Zoom: 2})

	assert.Equal(t, 10.0, b1.X)
	assert.Equal(t, 20.0, b1.Y)
	assert.Equal(t, float64(1+1+4+4)*CellWidth, b1.W)
	assert.Equal(t, labelRows*CellHeight, b1.H)

	assert.Equal(t, 25.0, b2.X)
	assert.Equal(t, 45.0, b2.Y)
	assert.Equal(t, b1.W, b2.W)
	assert.Equal(t, b1.H, b2.H)
}
