package client

import (
	"time"

	"github.com/tomz197/platformer/internal/draw"
	"github.com/tomz197/platformer/internal/object"
)

// GameState represents the current game phase for a client.
type GameState int

const (
	GameStateStart    GameState = iota // Title screen
	GameStatePlaying                   // Active run
	GameStateOver                      // Fell out, show score and history
	GameStateShutdown                  // Server is shutting down
)

// ClientState holds per-connection state (input, screen, last known score).
// Each client has its own instance, managed by the Client.
type ClientState struct {
	Input         object.Input
	GameState     GameState
	Score         int               // Score of the current run as last seen in a snapshot
	FinalScore    int               // Score reported with the game-over event
	termSizeFunc  draw.TermSizeFunc // Function to get terminal size
	Running       bool              // Client loop running
	delta         time.Duration     // Frame delta time (client-side)
	shutdownTimer float64           // Countdown before auto-disconnect on shutdown
	isInactive    bool              // Whether the client is in inactive warning state
	popup         string            // Short-lived "+100" near the player
	popupTimer    float64           // Seconds the popup stays visible
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		GameState: GameStateStart,
		Running:   true,
	}
}
