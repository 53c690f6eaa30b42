// Package game implements the platformer simulation: one player, static
// platforms and collectible coins, advanced one frame at a time.
//
// The whole session lives in State, which Update takes and returns by value.
// Nothing is kept in package-level variables, so many sessions can run side by
// side and every frame is reproducible from its inputs.
package game

import (
	"slices"

	"github.com/tomz197/platformer/internal/object"
	"github.com/tomz197/platformer/internal/physics"
)

// DefaultCoinAward is the score added for each collected coin.
const DefaultCoinAward = 100

// State is a complete platformer session.
type State struct {
	Surface   object.Screen
	Player    object.Player
	SpawnX    float64 // Where Reset puts the player
	SpawnY    float64
	Platforms []object.Platform // Level geometry; never mutated
	Coins     []object.Coin
	CoinAward int
	Score     int
	GameOver  bool
}

// Outcome reports what happened during one Update call.
type Outcome struct {
	Collected       int  // Coins picked up this frame
	ScoreGained     int  // Points added this frame
	GameOverLatched bool // The player fell out this frame
}

// Update advances the session by step frames and returns the new state.
//
// step is the time increment in frames. The server uses step == 1 for every
// tick, so simulation speed follows the tick rate. Velocities are px/frame and
// gravity is px/frame².
//
// The returned State never shares its Coins backing array with s. Once the
// session is over, Update returns s unchanged until Reset.
func Update(s State, in object.Input, step float64) (State, Outcome) {
	var out Outcome
	if s.GameOver {
		return s, out
	}

	p := s.Player

	// Horizontal intent; right wins when both are held.
	switch {
	case in.Right:
		p.DX = p.Speed
	case in.Left:
		p.DX = -p.Speed
	default:
		p.DX = 0
	}

	if in.Jump && p.Grounded {
		p.DY = -p.JumpPower
		p.Grounded = false
	}

	// Gravity always applies; landing cancels it below.
	p.DY += p.Gravity * step

	prevBottom := p.Bottom()
	p.X += p.DX * step
	p.Y += p.DY * step

	p.X = physics.Clamp(p.X, 0, s.Surface.Width-p.W)

	p = land(p, s.Platforms, prevBottom)

	s.Player = p
	s.Coins, out.Collected = collect(p, s.Coins)
	out.ScoreGained = out.Collected * s.CoinAward
	s.Score += out.ScoreGained

	if p.Y > s.Surface.Height {
		s.GameOver = true
		out.GameOverLatched = true
	}

	return s, out
}

// land resolves one-way platform collisions against the already-moved player.
// A platform catches the player when the feet were at or above its top before
// the move (prevBottom), are at or below it now, and the horizontal extents
// overlap at the moved position. Nothing is swept: a player moving sideways off
// a platform's edge in the same frame misses it. Every platform is tested
// against the same moved position and the last one that qualifies wins.
func land(p object.Player, platforms []object.Platform, prevBottom float64) object.Player {
	p.Grounded = false
	bottom := p.Bottom()
	box := p.Bounds()
	for _, plat := range platforms {
		if !physics.Crossed(prevBottom, bottom, plat.Top()) || !box.OverlapsX(plat.Rect) {
			continue
		}
		p.Grounded = true
		p.DY = 0
		p.Y = plat.Top() - p.H
	}
	return p
}

// collect returns a copy of coins with every coin the player now overlaps
// marked collected. Hits are found in one pass over the input and applied to
// the copy afterwards.
func collect(p object.Player, coins []object.Coin) ([]object.Coin, int) {
	box := p.Bounds()
	var hits []int
	for i, c := range coins {
		if !c.Collected && box.Overlaps(c.Rect) {
			hits = append(hits, i)
		}
	}

	next := slices.Clone(coins)
	for _, i := range hits {
		next[i].Collected = true
	}
	return next, len(hits)
}

// Reset puts the session back to its starting point: player at the spawn with
// no velocity, score zero, every coin uncollected and the game-over latch
// cleared. Safe to call at any time.
func Reset(s State) State {
	p := s.Player
	p.X, p.Y = s.SpawnX, s.SpawnY
	p.DX, p.DY = 0, 0
	p.Grounded = false
	s.Player = p

	coins := slices.Clone(s.Coins)
	for i := range coins {
		coins[i].Collected = false
	}
	s.Coins = coins

	s.Score = 0
	s.GameOver = false
	return s
}

// CoinsLeft returns how many coins are still uncollected.
func (s State) CoinsLeft() int {
	n := 0
	for _, c := range s.Coins {
		if !c.Collected {
			n++
		}
	}
	return n
}
