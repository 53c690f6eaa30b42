// Package level loads platformer level descriptions from TOML.
package level

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tomz197/platformer/internal/game"
	"github.com/tomz197/platformer/internal/object"
)

//go:embed default.toml
var defaultLevel []byte

// ErrInvalidLevel is wrapped by every validation failure.
var ErrInvalidLevel = errors.New("invalid level")

// Level is the on-disk description of a level.
type Level struct {
	Name      string     `toml:"name"`
	CoinAward int        `toml:"coin_award"`
	Surface   Surface    `toml:"surface"`
	Player    PlayerSpec `toml:"player"`
	Platforms []Box      `toml:"platforms"`
	Coins     []Box      `toml:"coins"`
}

// Surface is the size of the drawing surface.
type Surface struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// PlayerSpec holds the spawn point, size and movement tuning of the player.
type PlayerSpec struct {
	X       float64 `toml:"x"`
	Y       float64 `toml:"y"`
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
	Speed   float64 `toml:"speed"`
	Gravity float64 `toml:"gravity"`
	Jump    float64 `toml:"jump"`
}

// Box is an axis-aligned rectangle used for platforms and coins.
type Box struct {
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Default returns the built-in level.
func Default() *Level {
	lvl, err := Parse(defaultLevel)
	if err != nil {
		panic(fmt.Sprintf("embedded level: %v", err))
	}
	return lvl
}

// Load reads and validates a level file.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", path, err)
	}
	return lvl, nil
}

// Parse decodes and validates a level from TOML. A missing coin_award
// defaults to game.DefaultCoinAward.
func Parse(data []byte) (*Level, error) {
	var lvl Level
	md, err := toml.Decode(string(data), &lvl)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidLevel, strings.Join(keys, ", "))
	}
	if !md.IsDefined("coin_award") {
		lvl.CoinAward = game.DefaultCoinAward
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

// Validate checks the level for geometry the simulation cannot run on.
func (l *Level) Validate() error {
	if l.Surface.Width <= 0 || l.Surface.Height <= 0 {
		return fmt.Errorf("%w: surface must be positive, got %vx%v", ErrInvalidLevel, l.Surface.Width, l.Surface.Height)
	}
	p := l.Player
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: player size must be positive", ErrInvalidLevel)
	}
	if p.Width > l.Surface.Width {
		return fmt.Errorf("%w: player wider than surface", ErrInvalidLevel)
	}
	if p.X < 0 || p.X > l.Surface.Width-p.Width || p.Y < 0 || p.Y > l.Surface.Height {
		return fmt.Errorf("%w: spawn (%v,%v) outside surface", ErrInvalidLevel, p.X, p.Y)
	}
	if p.Speed < 0 || p.Gravity < 0 || p.Jump < 0 {
		return fmt.Errorf("%w: player tuning must not be negative", ErrInvalidLevel)
	}
	if l.CoinAward < 0 {
		return fmt.Errorf("%w: coin_award must not be negative", ErrInvalidLevel)
	}
	for i, b := range l.Platforms {
		if b.Width <= 0 || b.Height <= 0 {
			return fmt.Errorf("%w: platform %d has non-positive size", ErrInvalidLevel, i)
		}
	}
	for i, b := range l.Coins {
		if b.Width <= 0 || b.Height <= 0 {
			return fmt.Errorf("%w: coin %d has non-positive size", ErrInvalidLevel, i)
		}
	}
	return nil
}

// NewState builds a fresh session for this level.
func (l *Level) NewState() game.State {
	platforms := make([]object.Platform, len(l.Platforms))
	for i, b := range l.Platforms {
		platforms[i] = object.NewPlatform(b.X, b.Y, b.Width, b.Height)
	}
	coins := make([]object.Coin, len(l.Coins))
	for i, b := range l.Coins {
		coins[i] = object.NewCoin(b.X, b.Y, b.Width, b.Height)
	}
	return game.State{
		Surface: object.Screen{Width: l.Surface.Width, Height: l.Surface.Height},
		Player: object.Player{
			X:         l.Player.X,
			Y:         l.Player.Y,
			W:         l.Player.Width,
			H:         l.Player.Height,
			Speed:     l.Player.Speed,
			Gravity:   l.Player.Gravity,
			JumpPower: l.Player.Jump,
		},
		SpawnX:    l.Player.X,
		SpawnY:    l.Player.Y,
		Platforms: platforms,
		Coins:     coins,
		CoinAward: l.CoinAward,
	}
}
