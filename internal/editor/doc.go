// Package editor orchestrates one pixel-art editing session.
//
// A Session owns the palette, the drawing grid and everything saved with it,
// and turns user gestures into model changes and service requests. It holds
// no rendering state: the UI layer reads State, Grid and Sample and renders
// them.
//
// # Phases
//
// A session starts in PhaseSizing, where the dimensions are chosen and a
// source picture may be selected and sampled. StartDrawing moves it to
// PhaseDrawing exactly once; from then on paint gestures apply to the grid.
// Open creates a session already in PhaseDrawing for a saved picture.
//
// # Drag Painting
//
// PointerDown paints a cell and starts a drag. PointerOver paints only while
// the drag is active. PointerUp ends the drag from anywhere. DoubleClick
// clears a cell regardless of the drag.
//
// # Ordering
//
// Service calls are made without holding the session lock, so gestures keep
// working while a request is in flight. Each versioned request remembers the
// session version it was issued against; if the version has advanced by the
// time the response arrives, the response is dropped and ErrStale returned.
package editor
