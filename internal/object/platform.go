package object

import "github.com/tomz197/platformer/internal/physics"

// Platform is a static rectangle the player can land on from above.
type Platform struct {
	physics.Rect
}

// NewPlatform creates a platform with its top-left corner at (x, y).
func NewPlatform(x, y, w, h float64) Platform {
	return Platform{Rect: physics.Rect{X: x, Y: y, W: w, H: h}}
}

// Top returns the landing surface height.
func (p Platform) Top() float64 {
	return p.Y
}

// Draw renders the platform as a filled rectangle.
func (p Platform) Draw(ctx DrawContext) error {
	ctx.Canvas.FillRect(p.X, p.Y, p.W, p.H)
	return nil
}
