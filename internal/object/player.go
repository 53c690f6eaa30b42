package object

import "github.com/tomz197/platformer/internal/physics"

// Player is the only moving entity in a level.
type Player struct {
	X, Y     float64 // Top-left corner
	W, H     float64 // Fixed size
	DX, DY   float64 // Velocity in px per frame
	Grounded bool    // Resting on a platform; jumping is only allowed while true

	Speed     float64 // Horizontal speed while left/right is held
	Gravity   float64 // Added to DY every frame
	JumpPower float64 // DY becomes -JumpPower on a jump
}

// Bounds returns the player's bounding box.
func (p Player) Bounds() physics.Rect {
	return physics.Rect{X: p.X, Y: p.Y, W: p.W, H: p.H}
}

// Bottom returns the y-coordinate of the player's feet.
func (p Player) Bottom() float64 {
	return p.Y + p.H
}

// Draw renders the player as a filled rectangle.
func (p Player) Draw(ctx DrawContext) error {
	ctx.Canvas.FillRect(p.X, p.Y, p.W, p.H)
	return nil
}

// DrawGhost renders another connection's player as an outline so it is
// distinguishable from the local one.
func (p Player) DrawGhost(ctx DrawContext) error {
	ctx.Canvas.StrokeRect(p.X, p.Y, p.W, p.H)
	return nil
}

type ghost struct{ p Player }

func (g ghost) Draw(ctx DrawContext) error { return g.p.DrawGhost(ctx) }

// Ghost wraps p so that it draws as an outline.
func Ghost(p Player) Drawable { return ghost{p} }
