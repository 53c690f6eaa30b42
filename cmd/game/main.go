package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/tomz197/platformer/internal/config"
	"github.com/tomz197/platformer/internal/level"
	"github.com/tomz197/platformer/internal/loop"
	loopconfig "github.com/tomz197/platformer/internal/loop/config"
	"github.com/tomz197/platformer/internal/loop/server"
	"golang.org/x/term"
)

func main() {
	// Logs would corrupt the raw-mode screen, so they go to stderr and default to errors only.
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "platformer"})
	logger.SetLevel(log.ErrorLevel)
	if lvl, err := log.ParseLevel(config.GetEnv("LOG_LEVEL", "error")); err == nil {
		logger.SetLevel(lvl)
	}

	opts, err := serverOptions(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	runErr := loop.RunLocal(reader, os.Stdout, opts, nil)
	_ = term.Restore(fd, oldState)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", runErr)
		os.Exit(1)
	}
}

// serverOptions reads the level and step mode from the environment.
func serverOptions(logger *log.Logger) (server.Options, error) {
	opts := server.Options{
		Level:         level.Default(),
		GameOverDelay: loopconfig.GameOverNotifyDelay,
		HistorySize:   config.GetEnvInt("HISTORY_SIZE", 0),
		Logger:        logger,
	}
	if path := config.GetEnv("LEVEL_FILE", ""); path != "" {
		lvl, err := level.Load(path)
		if err != nil {
			return opts, err
		}
		opts.Level = lvl
	}
	mode, err := server.ParseStepMode(config.GetEnv("STEP_MODE", "fixed"))
	if err != nil {
		return opts, err
	}
	opts.StepMode = mode
	return opts, nil
}
