package client

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/tomz197/platformer/internal/draw"
	"github.com/tomz197/platformer/internal/input"
	"github.com/tomz197/platformer/internal/loop/config"
	"github.com/tomz197/platformer/internal/loop/server"
)

// Client handles rendering and input for a single connection.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates the whole frame for chunked output
	styles       styles
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
}

// NewClient creates a new client connected to the given server.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}

	handle := gs.RegisterClient(opts.Username)
	state := NewClientState()
	state.termSizeFunc = termSizeFunc

	// The logical surface is the level's; the canvas scales it to the terminal.
	surface := gs.GetSnapshot().Surface
	termWidth, termHeight, err := termSizeFunc()
	if err != nil {
		termWidth, termHeight = 80, 24
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, surface.Width, surface.Height)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)

	// SSH sessions are not a TTY on our side, so pin the profile instead of detecting it.
	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(termenv.ANSI256)

	return &Client{
		server:       gs,
		handle:       handle,
		state:        state,
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		styles:       newStyles(renderer),
		writer:       w,
		lastInput:    time.Now(),
		inputStream:  input.StartStream(r),
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
	}
}

// Run starts the client loop. Blocks until the client disconnects or server stops.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		c.processInput()
		c.processServerEvents()
		c.updateScreen()
		c.update()

		if !c.state.Running {
			break
		}
		if err := c.drawFrame(); err != nil {
			c.server.UnregisterClient(c.handle.ID)
			return fmt.Errorf("draw frame: %w", err)
		}

		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	c.server.UnregisterClient(c.handle.ID)

	draw.ClearScreen(c.writer)
	return nil
}

// update advances the client's screen logic for one frame.
func (c *Client) update() {
	if c.state.popupTimer > 0 {
		c.state.popupTimer -= c.state.delta.Seconds()
	}

	switch c.state.GameState {
	case GameStateStart:
		c.updateStartState()
	case GameStatePlaying:
		c.updatePlayingState()
	case GameStateOver:
		c.updateOverState()
	case GameStateShutdown:
		c.updateShutdownState()
	}
}

// processInput reads input and sends it to the server.
func (c *Client) processInput() {
	c.state.Input = input.ReadInput(c.inputStream)
	c.applyInput(time.Now())
}

// applyInput handles connection-level keys and forwards gameplay input.
func (c *Client) applyInput(now time.Time) {
	in := c.state.Input

	if len(in.Pressed) > 0 {
		c.lastInput = now
		c.state.isInactive = false
	} else if now.Sub(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.state.Running = false
	} else if now.Sub(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if in.Quit || in.Closed {
		c.state.Running = false
	}

	if c.state.GameState == GameStatePlaying {
		c.server.SendInput(c.handle.ID, in)
	}
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Server closed the channel
				c.state.Running = false
				return
			}
			c.handleEvent(event)
		default:
			return
		}
	}
}

func (c *Client) handleEvent(event server.ClientEvent) {
	switch event.Type {
	case server.EventScoreAdd:
		c.state.popup = fmt.Sprintf("+%d", event.ScoreAdd)
		c.state.popupTimer = config.ScorePopupSeconds
	case server.EventGameOver:
		if c.state.GameState == GameStatePlaying {
			c.state.GameState = GameStateOver
			c.state.FinalScore = event.Score
			c.state.popupTimer = 0
			input.ResetKeyInput(c.inputStream)
		}
	case server.EventServerShutdown:
		c.state.GameState = GameStateShutdown
		c.state.shutdownTimer = config.ShutdownDisplaySeconds
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = max(1, min(termWidth, config.MaxTermWidth))
	renderHeight = max(1, min(termHeight, config.MaxTermHeight))
	offsetCol = max(0, (termWidth-renderWidth)/2)
	offsetRow = max(0, (termHeight-renderHeight)/2)
	return
}

// updateStartState handles the title screen.
func (c *Client) updateStartState() {
	if c.state.Input.Space || c.state.Input.Enter {
		input.ResetKeyInput(c.inputStream)
		c.server.SpawnPlayer(c.handle.ID)
		c.state.Score = 0
		c.state.GameState = GameStatePlaying
	}
}

// updatePlayingState handles an active run.
func (c *Client) updatePlayingState() {
	switch {
	case c.state.Input.Escape:
		c.server.RemovePlayer(c.handle.ID)
		c.state.GameState = GameStateStart
		input.ResetKeyInput(c.inputStream)
		return
	case c.state.Input.Reset:
		c.server.ResetPlayer(c.handle.ID)
		c.state.popupTimer = 0
		input.ResetKeyInput(c.inputStream)
	}

	if st, ok := c.server.GetSnapshot().Session(c.handle.ID); ok {
		c.state.Score = st.Score
	}
}

// updateOverState handles the game-over screen.
func (c *Client) updateOverState() {
	in := c.state.Input
	switch {
	case in.Reset || in.Space || in.Enter:
		input.ResetKeyInput(c.inputStream)
		c.server.ResetPlayer(c.handle.ID)
		c.state.Score = 0
		c.state.GameState = GameStatePlaying
	case in.Escape:
		input.ResetKeyInput(c.inputStream)
		c.server.RemovePlayer(c.handle.ID)
		c.state.GameState = GameStateStart
	}
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}

