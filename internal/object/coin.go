package object

import (
	"math"

	"github.com/tomz197/platformer/internal/physics"
)

// Coin is a collectible. Collected flips to true once and only a reset clears it.
type Coin struct {
	physics.Rect
	Collected bool
}

// NewCoin creates an uncollected coin occupying the given box.
func NewCoin(x, y, w, h float64) Coin {
	return Coin{Rect: physics.Rect{X: x, Y: y, W: w, H: h}}
}

// Draw renders an uncollected coin as a filled circle inscribed in its box.
func (c Coin) Draw(ctx DrawContext) error {
	if c.Collected {
		return nil
	}
	cx, cy := c.Center()
	ctx.Canvas.FillCircle(cx, cy, math.Min(c.W, c.H)/2)
	return nil
}
