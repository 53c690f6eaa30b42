// Package loop wires an in-process game server and a single client for local play.
package loop

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/tomz197/platformer/internal/draw"
	"github.com/tomz197/platformer/internal/loop/client"
	"github.com/tomz197/platformer/internal/loop/server"
)

// RunLocal runs one player against a private server until they quit.
func RunLocal(r *bufio.Reader, w io.Writer, opts server.Options, termSize draw.TermSizeFunc) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gs := server.NewServer(opts)
	done := make(chan struct{})
	go func() {
		defer close(done)
		gs.Run(ctx)
	}()

	c := client.NewClient(gs, r, w, client.ClientOptions{
		TermSizeFunc: termSize,
		Username:     "you",
	})
	err := c.Run()

	cancel()
	<-done
	if err != nil {
		return fmt.Errorf("local game: %w", err)
	}
	return nil
}
