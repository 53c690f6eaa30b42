// Package config centralizes all tunable loop parameters.
package config

import "time"

// Render resolution caps. Larger terminals get a centered, bordered play area.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
)

// Player
const (
	MaxUsernameLength = 16 // Maximum display length for player usernames
)

// GameOverNotifyDelay is how long after a fall the game-over screen appears,
// so the final frame is on screen before the session halts.
const GameOverNotifyDelay = 500 * time.Millisecond

// History
const (
	DefaultHistorySize = 10 // Recent finished sessions kept by the server
	TopScoreCount      = 5  // Leaderboard length
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Server tick rate. One tick is one simulation frame in fixed-step mode.
const (
	ServerTickRate = 60
	ServerTickTime = time.Second / ServerTickRate
)

// HUD
const (
	ScorePopupSeconds = 0.8 // How long "+100" stays above the player
	HistoryLines      = 5   // Recent runs listed on the game-over screen
)
