// Package object defines the entities of a platformer level and how they draw.
package object

import (
	"io"

	"github.com/tomz197/platformer/internal/draw"
	"github.com/tomz197/platformer/internal/input"
)

// Input is an alias for the input package's Input type.
type Input = input.Input

// Screen represents the logical drawing surface dimensions.
type Screen struct {
	Width  float64
	Height float64
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas // High-resolution canvas (2x vertical)
	Writer io.Writer    // Direct terminal output (for text overlays)
}

// Drawable is anything that can put itself on the canvas.
type Drawable interface {
	Draw(ctx DrawContext) error
}
