package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/tomz197/platformer/internal/config"
	"github.com/tomz197/platformer/internal/draw"
	"github.com/tomz197/platformer/internal/level"
	"github.com/tomz197/platformer/internal/loop/client"
	loopconfig "github.com/tomz197/platformer/internal/loop/config"
	"github.com/tomz197/platformer/internal/loop/server"
	"golang.org/x/sync/errgroup"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

// Global game server - shared by all SSH clients
var (
	gameServer *server.Server
	logger     = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "platformer"})
)

func main() {
	if lvl, err := log.ParseLevel(config.GetEnv("LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(lvl)
	}

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	logger.Info("ssh config", "host", host, "port", port, "hostKey", hostKeyPath)

	opts, err := serverOptions()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	gameServer = server.NewServer(opts)

	limiter := newConnLimiter(connRate, connBurst)

	sshOpts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gameMiddleware,
			activeterm.Middleware(),
			limiter.middleware,
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		sshOpts = append(sshOpts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(sshOpts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverCtx, cancelServer := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(serverCtx)
	g.Go(func() error {
		gameServer.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("starting ssh server", "addr", net.JoinHostPort(host, port))
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return fmt.Errorf("ssh server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		limiter.sweep(gctx, time.Minute)
		return nil
	})

	select {
	case <-sigCtx.Done():
		logger.Info("shutting down server")
		// Notify players and wait for them to disconnect before stopping the ticks.
		gameServer.Shutdown(15 * time.Second)
	case <-gctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	cancelServer()

	if err := g.Wait(); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
	logger.Info("game server stopped")
}

// serverOptions builds the game server configuration from the environment.
func serverOptions() (server.Options, error) {
	opts := server.Options{
		Level:         level.Default(),
		GameOverDelay: loopconfig.GameOverNotifyDelay,
		HistorySize:   config.GetEnvInt("HISTORY_SIZE", loopconfig.DefaultHistorySize),
		Logger:        logger,
	}
	if path := config.GetEnv("LEVEL_FILE", ""); path != "" {
		lvl, err := level.Load(path)
		if err != nil {
			return opts, err
		}
		opts.Level = lvl
		logger.Info("loaded level", "name", lvl.Name, "path", path)
	}
	mode, err := server.ParseStepMode(config.GetEnv("STEP_MODE", "fixed"))
	if err != nil {
		return opts, fmt.Errorf("STEP_MODE: %w", err)
	}
	opts.StepMode = mode
	return opts, nil
}

// gameMiddleware handles SSH sessions and runs the game client.
func gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		username := displayName(sess.User())
		logger.Info("new game session", "user", username, "term", pty.Term,
			"size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		reader := bufio.NewReader(sess)
		clientOpts := client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     username,
		}

		// Create a new client connected to the shared game server
		c := client.NewClient(gameServer, reader, sess, clientOpts)
		if err := c.Run(); err != nil {
			logger.Error("game error", "user", username, "err", err)
		}

		logger.Info("session ended", "user", username)
		next(sess)
	}
}

// displayName truncates the SSH user name to what fits above a player.
func displayName(user string) string {
	runes := []rune(user)
	if len(runes) > loopconfig.MaxUsernameLength {
		runes = runes[:loopconfig.MaxUsernameLength]
	}
	if len(runes) == 0 {
		return "anon"
	}
	return string(runes)
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
