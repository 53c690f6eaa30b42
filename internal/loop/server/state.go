package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/tomz197/platformer/internal/game"
	"github.com/tomz197/platformer/internal/object"
)

// TopScoreEntry represents a single entry on the leaderboard.
type TopScoreEntry struct {
	Username string
	Score    int
	clientID int // Used for deterministic tie-break when scores are equal
}

// Session is one client's run of the level.
type Session struct {
	ID        uuid.UUID
	State     game.State
	StartedAt time.Time

	gameOverAt time.Time // When the fall latched game over
	notified   bool      // EventGameOver sent
	recorded   bool      // Added to history
}

// newSession starts a run from the given initial state.
func newSession(state game.State, now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		State:     state,
		StartedAt: now,
	}
}

// PlayerView is what other connections see of a player.
type PlayerView struct {
	ClientID int
	Username string
	Player   object.Player
	Score    int
	GameOver bool
}

// WorldSnapshot is an immutable snapshot of the server state for rendering.
type WorldSnapshot struct {
	Surface   object.Screen
	Platforms []object.Platform
	Sessions  map[int]game.State // Keyed by client ID; only clients with a run
	Players   []PlayerView
	Connected int
	TopScores []TopScoreEntry
	Recent    []HistoryEntry
	Delta     time.Duration
}

// Session returns the game state for a client, if it has a run.
func (w *WorldSnapshot) Session(clientID int) (game.State, bool) {
	s, ok := w.Sessions[clientID]
	return s, ok
}
