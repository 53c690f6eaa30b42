package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/tomz197/platformer/internal/draw"
	"github.com/tomz197/platformer/internal/game"
	"github.com/tomz197/platformer/internal/loop/config"
	"github.com/tomz197/platformer/internal/loop/server"
	"github.com/tomz197/platformer/internal/object"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// styles are bound to the connection's renderer so colors match its profile.
type styles struct {
	title  lipgloss.Style
	banner lipgloss.Style
	label  lipgloss.Style
	score  lipgloss.Style
	dim    lipgloss.Style
	popup  lipgloss.Style
	warn   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 3),
		banner: r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		label:  r.NewStyle().Foreground(lipgloss.Color("245")),
		score:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		dim:    r.NewStyle().Faint(true),
		popup:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("226")),
		warn:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
	}
}

// drawFrame redraws the whole frame and flushes it in one go.
func (c *Client) drawFrame() error {
	cw := c.chunkWriter
	cw.WriteString(draw.ClearSequence)
	c.canvas.Clear()

	snapshot := c.server.GetSnapshot()
	session, hasSession := snapshot.Session(c.handle.ID)

	ctx := object.DrawContext{
		Canvas: c.canvas,
		Writer: cw,
	}
	if err := c.drawWorld(ctx, snapshot, session, hasSession); err != nil {
		return err
	}

	c.canvas.Render(cw)
	c.canvas.RenderBorder(cw)

	if c.state.GameState == GameStatePlaying || c.state.GameState == GameStateOver {
		c.drawPlayerNames(snapshot)
	}

	c.drawUI(snapshot, session, hasSession)

	return cw.Flush()
}

// drawWorld puts the level and every visible player on the canvas.
// Only this connection's coins are drawn; other players collect their own.
func (c *Client) drawWorld(ctx object.DrawContext, snapshot *server.WorldSnapshot, session game.State, hasSession bool) error {
	drawables := make([]object.Drawable, 0, len(snapshot.Platforms)+len(snapshot.Players)+len(session.Coins)+1)
	for _, p := range snapshot.Platforms {
		drawables = append(drawables, p)
	}

	if c.state.GameState != GameStateStart && c.state.GameState != GameStateShutdown {
		for _, view := range snapshot.Players {
			if view.ClientID == c.handle.ID || view.GameOver {
				continue
			}
			drawables = append(drawables, object.Ghost(view.Player))
		}
		if hasSession {
			for _, coin := range session.Coins {
				drawables = append(drawables, coin)
			}
			drawables = append(drawables, session.Player)
		}
	}

	for _, d := range drawables {
		if err := d.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}

// drawUI draws the text overlay for the current screen.
func (c *Client) drawUI(snapshot *server.WorldSnapshot, session game.State, hasSession bool) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.GameState == GameStateShutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	switch c.state.GameState {
	case GameStateStart:
		c.drawStartScreen(centerX, centerY, snapshot)
	case GameStatePlaying:
		c.drawPlayingHUD(termWidth, termHeight, snapshot, session, hasSession)
	case GameStateOver:
		c.drawOverScreen(centerX, centerY, snapshot)
	}
}

// writeCentered writes a possibly styled, possibly multi-line block centered on col.
// Returns the row after the block.
func (c *Client) writeCentered(col, row int, block string) int {
	for _, line := range strings.Split(block, "\n") {
		c.chunkWriter.WriteAt(col-lipgloss.Width(line)/2, row, line)
		row++
	}
	return row
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	s := c.styles
	c.writeCentered(centerX, centerY-2, s.warn.Render("INACTIVITY WARNING"))

	remaining := int(config.InactivityDisconnectUser - time.Since(c.lastInput).Seconds())
	msg := fmt.Sprintf("You have been inactive for too long. You will be disconnected in %d seconds.", max(remaining, 0))
	c.writeCentered(centerX, centerY, msg)
	c.writeCentered(centerX, centerY+2, s.dim.Render("Press any key to continue"))
}

// drawStartScreen draws the title screen.
func (c *Client) drawStartScreen(centerX, centerY int, snapshot *server.WorldSnapshot) {
	s := c.styles
	row := c.writeCentered(centerX, centerY-8, s.title.Render("P L A T F O R M E R"))
	row = c.writeCentered(centerX, row+1, "~ Collect every coin. Don't fall. ~")

	row = c.writeCentered(centerX, row+1, s.label.Render("Controls"))
	controlLines := []string{
		"A D / < >  . . . . Move",
		"W / Up / SPACE . . Jump",
		"R  . . . . . . .  Reset",
		"ESC  . . . . . .  Title",
		"Q  . . . . . . . . Quit",
	}
	for _, line := range controlLines {
		row = c.writeCentered(centerX, row, line)
	}

	if time.Now().UnixMilli()/600%2 == 0 {
		c.writeCentered(centerX, row+1, s.popup.Render(">>  Press SPACE to Start  <<"))
	}

	players := fmt.Sprintf("%s online", humanize.Comma(int64(snapshot.Connected)))
	if c.username != "" {
		players = "Playing as " + c.username + ", " + players
	}
	c.writeCentered(centerX, row+3, s.dim.Render(players))
}

// drawPlayingHUD draws the in-game HUD.
func (c *Client) drawPlayingHUD(termWidth, termHeight int, snapshot *server.WorldSnapshot, session game.State, hasSession bool) {
	s := c.styles
	cw := c.chunkWriter

	scoreText := s.label.Render("Score ") + s.score.Render(humanize.Comma(int64(c.state.Score)))
	cw.WriteAt(2, 1, scoreText)

	if hasSession {
		coinsText := s.label.Render(fmt.Sprintf("Coins %d/%d", len(session.Coins)-session.CoinsLeft(), len(session.Coins)))
		cw.WriteAt(2, 2, coinsText)

		if session.CoinsLeft() == 0 && len(session.Coins) > 0 {
			c.writeCentered(termWidth/2, 2, s.popup.Render("All coins collected! Press R to play again"))
		}

		if c.state.popupTimer > 0 && c.state.popup != "" {
			p := session.Player
			col, row := c.canvas.LogicalToTerminal(p.X+p.W/2, p.Y)
			if row > 1 {
				c.writeCentered(col, row-1, s.popup.Render(c.state.popup))
			}
		}
	}

	playersText := fmt.Sprintf("Players: %-4d", snapshot.Connected)
	cw.WriteAt(termWidth-len(playersText)-1, 1, playersText)

	for i, entry := range snapshot.TopScores {
		line := fmt.Sprintf("%d. %-*s %7s", i+1, config.MaxUsernameLength, entry.Username, humanize.Comma(int64(entry.Score)))
		cw.WriteAt(termWidth-len(line)-1, 3+i, s.dim.Render(line))
	}

	hint := "R reset  ESC title  Q quit"
	cw.WriteAt(2, termHeight, s.dim.Render(hint))
}

// drawOverScreen draws the game-over screen with the recent runs.
func (c *Client) drawOverScreen(centerX, centerY int, snapshot *server.WorldSnapshot) {
	s := c.styles
	row := c.writeCentered(centerX, centerY-7, s.banner.Render("G A M E   O V E R"))

	score := s.label.Render("Score ") + s.score.Render(humanize.Comma(int64(c.state.FinalScore)))
	row = c.writeCentered(centerX, row+1, score)

	if len(snapshot.Recent) > 0 {
		row = c.writeCentered(centerX, row+1, s.label.Render("Recent runs"))
		for i, e := range snapshot.Recent {
			if i >= config.HistoryLines {
				break
			}
			row = c.writeCentered(centerX, row, formatHistoryEntry(e))
		}
	}

	if time.Now().UnixMilli()/600%2 == 0 {
		c.writeCentered(centerX, row+1, s.popup.Render(">>  Press R or SPACE to Retry  <<"))
	}
	c.writeCentered(centerX, row+2, s.dim.Render("ESC for title, Q to quit"))
}

// formatHistoryEntry renders one finished run as a fixed-width line.
func formatHistoryEntry(e server.HistoryEntry) string {
	return fmt.Sprintf("%-*s %7s  %-16s %s",
		config.MaxUsernameLength, e.Username,
		humanize.Comma(int64(e.Score)),
		humanize.Time(e.EndedAt),
		durafmt.Parse(e.Duration().Round(time.Second)).LimitFirstN(2).Format(shortUnits),
	)
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	s := c.styles
	c.writeCentered(centerX, centerY-3, s.warn.Render("SERVER SHUTTING DOWN"))
	c.writeCentered(centerX, centerY-1, "The server is restarting for maintenance.")
	c.writeCentered(centerX, centerY, "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	c.writeCentered(centerX, centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	c.writeCentered(centerX, centerY+4, s.dim.Render("Press Q to disconnect now"))
}

// drawPlayerNames draws usernames above other players.
func (c *Client) drawPlayerNames(snapshot *server.WorldSnapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()

	for _, view := range snapshot.Players {
		if view.ClientID == c.handle.ID || view.GameOver || view.Username == "" {
			continue
		}
		p := view.Player
		col, row := c.canvas.LogicalToTerminal(p.X+p.W/2, p.Y)
		row--
		col -= len(view.Username) / 2

		if row < 1 || row > termHeight {
			continue
		}
		if col < 1 || col+len(view.Username) > termWidth {
			continue
		}
		c.chunkWriter.WriteAt(col, row, c.styles.dim.Render(view.Username))
	}
}
