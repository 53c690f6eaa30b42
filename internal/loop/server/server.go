package server

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/platformer/internal/game"
	"github.com/tomz197/platformer/internal/level"
	"github.com/tomz197/platformer/internal/loop/config"
	"github.com/tomz197/platformer/internal/object"
)

// GameServer is the interface clients use to communicate with the game server.
// Decouples the Client from the concrete Server implementation.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	SendInput(clientID int, input object.Input)
	GetSnapshot() *WorldSnapshot
	SpawnPlayer(clientID int)
	ResetPlayer(clientID int)
	RemovePlayer(clientID int)
}

// StepMode selects the time increment passed to game.Update each tick.
type StepMode int

const (
	// StepFixed advances every session by exactly one frame per tick, so the
	// tick rate sets the simulation speed.
	StepFixed StepMode = iota
	// StepDelta scales each tick by the measured frame time.
	StepDelta
)

// maxDeltaStep bounds a delta step after a stall so nobody falls through the floor.
const maxDeltaStep = 3.0

// ParseStepMode parses "fixed" or "delta".
func ParseStepMode(s string) (StepMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fixed":
		return StepFixed, nil
	case "delta":
		return StepDelta, nil
	default:
		return StepFixed, fmt.Errorf("unknown step mode %q", s)
	}
}

func (m StepMode) String() string {
	if m == StepDelta {
		return "delta"
	}
	return "fixed"
}

// Options configures a Server. Zero values select defaults.
type Options struct {
	Level         *level.Level
	StepMode      StepMode
	GameOverDelay time.Duration
	HistorySize   int
	Logger        *log.Logger
}

// Server hosts one game session per client and ticks them all together.
type Server struct {
	level         *level.Level
	stepMode      StepMode
	gameOverDelay time.Duration
	logger        *log.Logger

	snapshot     atomic.Pointer[WorldSnapshot]
	clients      map[int]*ClientHandle
	nextClientID int
	inputChan    chan ClientInput
	history      *History
	delta        time.Duration
	mu           sync.RWMutex
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       int
	Username string
	Input    object.Input
	EventsCh chan ClientEvent // Events sent to client (score, game over, shutdown)

	session *Session // nil until the client starts a run
	best    int      // Best score across this connection's runs
}

// ClientInput represents input from a specific client.
type ClientInput struct {
	ClientID int
	Input    object.Input
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type     ClientEventType
	ScoreAdd int // For score events
	Score    int // Final score for game over events
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventScoreAdd ClientEventType = iota
	EventGameOver
	EventServerShutdown
)

// NewServer creates a new game server.
func NewServer(opts Options) *Server {
	lvl := opts.Level
	if lvl == nil {
		lvl = level.Default()
	}
	historySize := opts.HistorySize
	if historySize <= 0 {
		historySize = config.DefaultHistorySize
	}
	delay := opts.GameOverDelay
	if delay < 0 {
		delay = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		level:         lvl,
		stepMode:      opts.StepMode,
		gameOverDelay: delay,
		logger:        logger,
		clients:       make(map[int]*ClientHandle),
		nextClientID:  1,
		inputChan:     make(chan ClientInput, 256),
		history:       NewHistory(historySize),
	}

	initial := lvl.NewState()
	s.snapshot.Store(&WorldSnapshot{
		Surface:   initial.Surface,
		Platforms: initial.Platforms,
		Sessions:  map[int]game.State{},
	})

	return s
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.logger.Info("game server running", "level", s.level.Name, "step", s.stepMode, "tick", config.ServerTickTime)
	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frameStart := time.Now()
		s.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		s.tick(frameStart)

		elapsed := time.Since(frameStart)
		if elapsed < config.ServerTickTime {
			time.Sleep(config.ServerTickTime - elapsed)
		}
	}
}

// tick runs one server frame at the given time.
func (s *Server) tick(now time.Time) {
	s.collectInputs()
	s.updateSessions(now)
	s.createSnapshot()
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.mu.RLock()
			remaining := len(s.clients)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client with the given username and returns its handle.
// The client is known to the server as soon as this returns, so it can spawn
// before the next tick.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle := &ClientHandle{
		ID:       s.nextClientID,
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
	}
	s.nextClientID++
	s.clients[handle.ID] = handle
	s.logger.Info("client joined", "id", handle.ID, "user", handle.Username)
	return handle
}

// UnregisterClient records the client's run and removes it from the server.
// Its event channel is closed. Never blocks on the tick loop.
func (s *Server) UnregisterClient(clientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, ok := s.clients[clientID]
	if !ok {
		return
	}
	s.recordLocked(handle, time.Now())
	close(handle.EventsCh)
	delete(s.clients, clientID)
	s.logger.Info("client left", "id", clientID, "user", handle.Username, "best", handle.best)
}

// SendInput sends input from a client to the server.
func (s *Server) SendInput(clientID int, input object.Input) {
	select {
	case s.inputChan <- ClientInput{ClientID: clientID, Input: input}:
	default:
		// Input channel full, drop input
	}
}

// GetSnapshot returns the current world snapshot.
func (s *Server) GetSnapshot() *WorldSnapshot {
	return s.snapshot.Load()
}

// SpawnPlayer starts a fresh run for the client, replacing any existing one.
func (s *Server) SpawnPlayer(clientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, ok := s.clients[clientID]
	if !ok {
		return
	}
	now := time.Now()
	if handle.session != nil {
		s.recordLocked(handle, now)
	}
	handle.session = newSession(s.level.NewState(), now)
	handle.Input = object.Input{}
}

// ResetPlayer resets the client's run in place: spawn position, zero score,
// every coin back. Works mid-run as well as after game over.
func (s *Server) ResetPlayer(clientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, ok := s.clients[clientID]
	if !ok || handle.session == nil {
		return
	}
	now := time.Now()
	if handle.session.State.GameOver {
		s.recordLocked(handle, now)
	}
	state := game.Reset(handle.session.State)
	handle.session = newSession(state, now)
	handle.Input = object.Input{}
}

// RemovePlayer ends the client's run without recording it.
func (s *Server) RemovePlayer(clientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if handle, ok := s.clients[clientID]; ok {
		handle.session = nil
	}
}

// recordLocked adds the client's current run to history once. Runs that never
// scored and never ended are not worth keeping. Must be called with lock held.
func (s *Server) recordLocked(handle *ClientHandle, now time.Time) {
	sess := handle.session
	if sess == nil || sess.recorded {
		return
	}
	if sess.State.Score == 0 && !sess.State.GameOver {
		return
	}
	sess.recorded = true
	endedAt := now
	if sess.State.GameOver {
		endedAt = sess.gameOverAt
	}
	s.history.Add(HistoryEntry{
		ID:        sess.ID,
		Username:  handle.Username,
		Score:     sess.State.Score,
		StartedAt: sess.StartedAt,
		EndedAt:   endedAt,
	})
}

// collectInputs gathers all pending inputs from clients.
func (s *Server) collectInputs() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		select {
		case ci := <-s.inputChan:
			if handle, ok := s.clients[ci.ClientID]; ok {
				handle.Input = ci.Input
			}
		default:
			return
		}
	}
}

// step returns the time increment for this tick.
func (s *Server) step() float64 {
	if s.stepMode != StepDelta || s.delta <= 0 {
		return 1
	}
	st := float64(s.delta) / float64(config.ServerTickTime)
	return min(st, maxDeltaStep)
}

// updateSessions advances every active run and delivers the resulting events.
func (s *Server) updateSessions(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step := s.step()
	for _, handle := range s.clients {
		sess := handle.session
		if sess == nil {
			continue
		}

		if !sess.State.GameOver {
			var out game.Outcome
			sess.State, out = game.Update(sess.State, handle.Input, step)
			if out.ScoreGained > 0 {
				handle.best = max(handle.best, sess.State.Score)
				s.notify(handle, ClientEvent{Type: EventScoreAdd, ScoreAdd: out.ScoreGained})
			}
			if out.GameOverLatched {
				sess.gameOverAt = now
				s.logger.Debug("player fell", "id", handle.ID, "score", sess.State.Score)
			}
		}

		// The notification waits so the falling frame is drawn first.
		if sess.State.GameOver && !sess.notified && now.Sub(sess.gameOverAt) >= s.gameOverDelay {
			sess.notified = true
			s.recordLocked(handle, now)
			s.notify(handle, ClientEvent{Type: EventGameOver, Score: sess.State.Score})
			s.logger.Info("game over", "id", handle.ID, "user", handle.Username, "score", sess.State.Score)
		}
	}
}

// notify sends an event without blocking the tick.
func (s *Server) notify(handle *ClientHandle, ev ClientEvent) {
	select {
	case handle.EventsCh <- ev:
	default:
		s.logger.Warn("dropping client event", "id", handle.ID, "type", ev.Type)
	}
}

// createSnapshot publishes an immutable view of all sessions.
// game.Update never mutates a state it has returned, so states are shared as is.
func (s *Server) createSnapshot() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prev := s.snapshot.Load()
	snap := &WorldSnapshot{
		Surface:   prev.Surface,
		Platforms: prev.Platforms,
		Sessions:  make(map[int]game.State, len(s.clients)),
		Players:   make([]PlayerView, 0, len(s.clients)),
		Connected: len(s.clients),
		TopScores: s.topScoresLocked(),
		Recent:    s.history.Recent(),
		Delta:     s.delta,
	}

	for id, handle := range s.clients {
		if handle.session == nil {
			continue
		}
		st := handle.session.State
		snap.Sessions[id] = st
		snap.Players = append(snap.Players, PlayerView{
			ClientID: id,
			Username: handle.Username,
			Player:   st.Player,
			Score:    st.Score,
			GameOver: st.GameOver,
		})
	}
	slices.SortFunc(snap.Players, func(a, b PlayerView) int {
		return a.ClientID - b.ClientID
	})

	s.snapshot.Store(snap)
}

// topScoresLocked ranks connected clients by best score. Must be called with lock held.
func (s *Server) topScoresLocked() []TopScoreEntry {
	entries := make([]TopScoreEntry, 0, len(s.clients))
	for id, handle := range s.clients {
		best := handle.best
		if handle.session != nil {
			best = max(best, handle.session.State.Score)
		}
		if best == 0 {
			continue
		}
		entries = append(entries, TopScoreEntry{Username: handle.Username, Score: best, clientID: id})
	}
	slices.SortFunc(entries, func(a, b TopScoreEntry) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return a.clientID - b.clientID
	})
	if len(entries) > config.TopScoreCount {
		entries = entries[:config.TopScoreCount]
	}
	return entries
}
