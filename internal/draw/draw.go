// Package draw renders logical shapes onto a terminal using half-block characters.
package draw

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)
