package main

import "time"

type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeConfirm
)

type ConfirmAction int

const (
	ConfirmResetCanvas ConfirmAction = iota
	ConfirmResetAll
	ConfirmQuit
)

const (
	NoReaction OutcomeKind = iota
	NewElement
	Explosion
)

type GestureState int

const (
	GestureIdle GestureState = iota
	GesturePanning
	GestureBoxSelecting
	GesturePressed
	GestureDragging
)

type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerWheel
	PointerDrop
)

type PointerButton int

const (
	ButtonNone PointerButton = iota
	ButtonPrimary
	ButtonAuxiliary
	ButtonSecondary
)

type SortType int

const (
	SortByTime SortType = iota
	SortByName
	SortByGlyph
)

// One terminal cell is treated as CellWidth x CellHeight screen pixels.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

const (
	MinZoom = 0.2
	MaxZoom = 3.0

	defaultDragThreshold  = 5.0
	defaultMergeOverlap   = 2500.0
	defaultWheelStep      = 100.0
	wheelZoomFactor       = 0.001
	duplicateOffset       = 20.0
	doubleClickWindow     = 400 * time.Millisecond
	explosionLifetime     = 1500 * time.Millisecond
	notificationTTL       = 7 * time.Second
	notificationExitGrace = 300 * time.Millisecond
	tickInterval          = 100 * time.Millisecond
	completionTimeout     = 30 * time.Second
	defaultSidebarWidth   = 30
)

const (
	KeyDarkMode   = "infinite-craft-dark-mode"
	KeyCanvas     = "infinite-craft-canvas-elements"
	KeyDiscovered = "infinite-craft-discovered"
	KeyRecipes    = "infinite-craft-recipes"
)

const (
	VariantStatic    = "static"
	VariantAugmented = "augmented"
)

const defaultDescription = "A new and mysterious cosmic element."
