package draw

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// Supports scaling from logical coordinates to actual terminal pixels.
type Canvas struct {
	termWidth      int    // Actual terminal columns
	termHeight     int    // Actual terminal rows
	subPixelHeight int    // termHeight * 2
	pixels         []bool // Flat slice: [y * termWidth + x] - true if pixel is set

	// Scaling from logical to pixel coordinates
	logicalWidth  float64 // Target/logical width
	logicalHeight float64 // Target/logical height
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// Offset for centering the render area when terminal is larger than max resolution.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	renderBuf strings.Builder
}

// NewCanvas creates a canvas for the given terminal dimensions.
// The canvas has 2x vertical resolution (height*2 sub-pixels).
// No scaling is applied (1:1 mapping).
func NewCanvas(width, height int) *Canvas {
	return NewScaledCanvas(width, height, float64(width), float64(height*2))
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// logicalWidth/Height define the coordinate space used by game objects.
// termWidth/Height are the actual terminal dimensions.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	subPixelHeight := termHeight * 2
	return &Canvas{
		termWidth:      termWidth,
		termHeight:     termHeight,
		subPixelHeight: subPixelHeight,
		pixels:         make([]bool, subPixelHeight*termWidth),
		logicalWidth:   logicalWidth,
		logicalHeight:  logicalHeight,
		scaleX:         float64(termWidth) / logicalWidth,
		scaleY:         float64(subPixelHeight) / logicalHeight,
	}
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	subPixelHeight := termHeight * 2

	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.pixels = make([]bool, subPixelHeight*termWidth)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
	}

	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(subPixelHeight) / c.logicalHeight
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// setPixel sets a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = true
	}
}

// IsSet reports whether the sub-pixel at (x, y) in pixel space is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return false
	}
	return c.pixels[y*c.termWidth+x]
}

// SetFloat sets a pixel using float logical coordinates (applies scaling).
func (c *Canvas) SetFloat(x, y float64) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	c.setPixel(px, py)
}

// pixelSpan converts a logical [start, start+size) span to pixel indices.
// Always covers at least one pixel so thin shapes stay visible.
func pixelSpan(start, size, scale float64) (int, int) {
	from := int(math.Round(start * scale))
	to := int(math.Round((start+size)*scale)) - 1
	if to < from {
		to = from
	}
	return from, to
}

// FillRect fills an axis-aligned rectangle given in logical coordinates.
func (c *Canvas) FillRect(x, y, w, h float64) {
	x0, x1 := pixelSpan(x, w, c.scaleX)
	y0, y1 := pixelSpan(y, h, c.scaleY)
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			c.setPixel(px, py)
		}
	}
}

// StrokeRect draws the outline of a rectangle given in logical coordinates.
func (c *Canvas) StrokeRect(x, y, w, h float64) {
	x0, x1 := pixelSpan(x, w, c.scaleX)
	y0, y1 := pixelSpan(y, h, c.scaleY)
	for px := x0; px <= x1; px++ {
		c.setPixel(px, y0)
		c.setPixel(px, y1)
	}
	for py := y0; py <= y1; py++ {
		c.setPixel(x0, py)
		c.setPixel(x1, py)
	}
}

// FillCircle fills a circle given by its logical center and radius.
// Scaling is applied per axis, so the circle stays round in logical space.
func (c *Canvas) FillCircle(cx, cy, r float64) {
	x0, x1 := pixelSpan(cx-r, 2*r, c.scaleX)
	y0, y1 := pixelSpan(cy-r, 2*r, c.scaleY)
	r2 := r * r
	lit := false
	for py := y0; py <= y1; py++ {
		ly := (float64(py)+0.5)/c.scaleY - cy
		for px := x0; px <= x1; px++ {
			lx := (float64(px)+0.5)/c.scaleX - cx
			if lx*lx+ly*ly <= r2 {
				c.setPixel(px, py)
				lit = true
			}
		}
	}
	// Circles smaller than a pixel still show up as a dot.
	if !lit {
		c.SetFloat(cx, cy)
	}
}

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1500 bytes matches typical MTU size for smooth SSH/network transmission.
const maxChunkSize = 1400

// Render outputs the canvas to the writer using half-block characters.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 12) // Estimate ~12 bytes per cell

	for row := 0; row < c.termHeight; row++ {
		topY := row * 2
		bottomY := row*2 + 1
		topOffset := topY * c.termWidth
		bottomOffset := bottomY * c.termWidth

		for col := 0; col < c.termWidth; col++ {
			top := c.pixels[topOffset+col]
			bottom := bottomY < c.subPixelHeight && c.pixels[bottomOffset+col]

			var ch rune
			switch {
			case top && bottom:
				ch = BlockFull
			case top:
				ch = BlockUpperHalf
			case bottom:
				ch = BlockLowerHalf
			default:
				continue // Skip empty cells
			}

			fmt.Fprintf(&c.renderBuf, "\033[%d;%dH%c", row+1+c.offsetRow, col+1+c.offsetCol, ch)
		}
	}

	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder

	if hasV {
		if hasH {
			fmt.Fprintf(&buf, "\033[%d;%dH┌%s┐", top, left, strings.Repeat("─", c.termWidth))
			fmt.Fprintf(&buf, "\033[%d;%dH└%s┘", bottom, left, strings.Repeat("─", c.termWidth))
		} else {
			fmt.Fprintf(&buf, "\033[%d;%dH%s", top, c.offsetCol+1, strings.Repeat("─", c.termWidth))
			fmt.Fprintf(&buf, "\033[%d;%dH%s", bottom, c.offsetCol+1, strings.Repeat("─", c.termWidth))
		}
	}

	if hasH {
		startRow := top + 1
		endRow := bottom
		if !hasV {
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			fmt.Fprintf(&buf, "\033[%d;%dH│\033[%d;%dH│", row, left, row, right)
		}
	}

	io.WriteString(w, buf.String())
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to 1-based terminal position (col, row).
// This is useful for placing text overlays at positions matching canvas-drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	return px + 1, py/2 + 1
}
