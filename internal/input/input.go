// Package input turns a raw terminal byte stream into a per-frame set of held keys.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last byte.
// Terminals never report key releases, so a held key is one whose auto-repeat
// bytes keep arriving within this window.
const keyHoldDuration = 80 * time.Millisecond

// escapeTimeout is how long a lone ESC waits for the rest of an arrow-key
// sequence before it counts as the Escape key.
const escapeTimeout = 50 * time.Millisecond

// maxSequenceLen bounds a CSI sequence; anything longer is not a key.
const maxSequenceLen = 16

// Input represents the current frame's input state.
type Input struct {
	Quit    bool
	Left    bool
	Right   bool
	Jump    bool // Up arrow, W, I or Space
	Space   bool
	Enter   bool
	Reset   bool
	Escape  bool
	Closed  bool // The underlying reader hit EOF or an error
	Pressed []byte
}

// keyState tracks the last time each key was seen.
type keyState struct {
	quit   time.Time
	left   time.Time
	right  time.Time
	jump   time.Time
	space  time.Time
	enter  time.Time
	reset  time.Time
	escape time.Time
}

// Stream delivers input bytes via a channel and tracks key state across frames.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool

	// pending holds an escape sequence cut off at the end of a drain.
	pending      []byte
	pendingSince time.Time
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 128),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream without blocking and
// returns the keys held as of now.
func ReadInput(s *Stream) Input {
	now := time.Now()
	buf := s.drain()
	s.apply(buf, now)
	return s.input(now, buf)
}

// ResetKeyInput forgets every held key, e.g. when switching screens so the
// key that confirmed a menu does not leak into gameplay.
func ResetKeyInput(s *Stream) {
	if s == nil {
		return
	}
	s.state = keyState{}
}

// drain collects every byte currently queued on the channel.
func (s *Stream) drain() []byte {
	var buf []byte
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				return buf
			}
			buf = append(buf, b)
		default:
			return buf
		}
	}
}

// apply parses buf and stamps the keys it contains with now.
// Handles CSI arrow-key escape sequences, including ones split across drains.
func (s *Stream) apply(buf []byte, now time.Time) {
	since := now
	if len(s.pending) > 0 {
		buf = append(s.pending, buf...)
		since = s.pendingSince
		s.pending = nil
	}

	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b != '\x1b' {
			applyByteToState(&s.state, b, now)
			continue
		}

		n, ok := sequenceLen(buf[i:])
		if !ok {
			if !s.closed && now.Sub(since) < escapeTimeout {
				s.pending = append([]byte(nil), buf[i:]...)
				s.pendingSince = since
				return
			}
			// Timed out: a bare Escape, the rest are plain bytes.
			n = 1
		}
		if n == 1 {
			s.state.escape = now
			continue
		}

		switch buf[i+n-1] {
		case 'A': // Up arrow
			s.state.jump = now
		case 'C': // Right arrow
			s.state.right = now
		case 'D': // Left arrow
			s.state.left = now
		}
		i += n - 1
	}
}

// sequenceLen returns the length of the escape sequence at the start of seq.
// A bare ESC followed by a non-'[' byte has length 1. ok is false while a CSI
// sequence has not yet seen its final byte.
func sequenceLen(seq []byte) (n int, ok bool) {
	if len(seq) < 2 {
		return 0, false
	}
	if seq[1] != '[' {
		return 1, true
	}
	for j := 2; j < len(seq); j++ {
		if j >= maxSequenceLen {
			return 1, true
		}
		if seq[j] >= 0x40 && seq[j] <= 0x7e {
			return j + 1, true
		}
	}
	return 0, false
}

// input builds the held-key view as of now.
func (s *Stream) input(now time.Time, buf []byte) Input {
	held := func(t time.Time) bool {
		return now.Sub(t) < keyHoldDuration
	}
	return Input{
		Quit:    held(s.state.quit),
		Left:    held(s.state.left),
		Right:   held(s.state.right),
		Jump:    held(s.state.jump),
		Space:   held(s.state.space),
		Enter:   held(s.state.enter),
		Reset:   held(s.state.reset),
		Escape:  held(s.state.escape),
		Closed:  s.closed,
		Pressed: buf,
	}
}

// applyByteToState updates the key state timestamps based on the pressed byte.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', 0x03: // Ctrl+C arrives as a byte in raw mode
		state.quit = now
	case 'a', 'A', 'j', 'J':
		state.left = now
	case 'd', 'D', 'l', 'L':
		state.right = now
	case 'w', 'W', 'i', 'I':
		state.jump = now
	case ' ':
		state.space = now
		state.jump = now
	case 'r', 'R':
		state.reset = now
	case '\n', '\r':
		state.enter = now
	}
}
