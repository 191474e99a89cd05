package main

import (
	"log/slog"
	"time"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func midpoint(a, b Position) Position {
	return Position{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Element is the name/glyph identity of something that can be crafted.
// DiscoveredAt is unix milliseconds, zero when never discovered.
type Element struct {
	Name         string `json:"text"`
	Glyph        string `json:"emoji"`
	DiscoveredAt int64  `json:"discoveredAt,omitempty"`
}

// Instance is one placed copy of an element on the canvas.
type Instance struct {
	ID string `json:"id"`
	Element
	Position         Position `json:"position"`
	IsFirstDiscovery bool     `json:"isFirstDiscovery"`
	IsProcessing     bool     `json:"isProcessing,omitempty"`
}

type OutcomeKind int

type Outcome struct {
	Kind    OutcomeKind
	Element Element
}

type Recipe struct {
	Element
	IsExplosion bool `json:"isExplosion,omitempty"`
}

type ExplosionEvent struct {
	ID       int
	Position Position
	Until    time.Time
}

// Layout is the screen geometry the gesture machine needs from the front end.
type Layout struct {
	Width       float64
	Height      float64
	PaletteLeft float64
}

type model struct {
	width         int
	height        int
	session       *Session
	persist       *Persistence
	gesture       *Gesture
	palette       *Palette
	tooltip       *Tooltip
	keys          KeyMap
	styles        Styles
	dark          bool
	config        *Config
	log           *slog.Logger
	mode          Mode
	confirmAction ConfirmAction
	help          bool
	paletteDrag   *Element
	dragX         int
	dragY         int
	errorMessage  string
	successMsg    string
	messageAt     time.Time
	shortcutsOn   bool
}
