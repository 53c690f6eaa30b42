package game

import (
	"math"
	"testing"

	"github.com/tomz197/platformer/internal/object"
)

const eps = 1e-9

// newTestState builds a session on an 800x400 surface with the player at
// (50, 300) and the given platforms and coins.
func newTestState(platforms []object.Platform, coins []object.Coin) State {
	return State{
		Surface: object.Screen{Width: 800, Height: 400},
		Player: object.Player{
			X: 50, Y: 300, W: 30, H: 30,
			Speed: 5, Gravity: 0.6, JumpPower: 12,
		},
		SpawnX:    50,
		SpawnY:    300,
		Platforms: platforms,
		Coins:     coins,
		CoinAward: DefaultCoinAward,
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestFreeFallTenFrames(t *testing.T) {
	s := newTestState(nil, nil)
	for i := 0; i < 10; i++ {
		s, _ = Update(s, object.Input{}, 1)
	}
	if !approx(s.Player.DY, 6.0) {
		t.Errorf("DY = %v, want 6.0", s.Player.DY)
	}
	if !approx(s.Player.Y, 333) {
		t.Errorf("Y = %v, want 333", s.Player.Y)
	}
	if s.Player.Grounded {
		t.Error("player should not be grounded in free fall")
	}
}

func TestLandsSameFrame(t *testing.T) {
	s := newTestState([]object.Platform{object.NewPlatform(0, 250, 200, 20)}, nil)
	s.Player.Y = 150 // bottom at 180, 70px above the platform

	for frame := 0; frame < 100; frame++ {
		var out Outcome
		s, out = Update(s, object.Input{}, 1)
		if out.GameOverLatched {
			t.Fatal("fell through the platform")
		}
		if s.Player.Grounded {
			if s.Player.Y != 250-s.Player.H {
				t.Fatalf("frame %d: Y = %v, want %v", frame, s.Player.Y, 250-s.Player.H)
			}
			if s.Player.DY != 0 {
				t.Fatalf("frame %d: DY = %v, want 0", frame, s.Player.DY)
			}
			return
		}
		if s.Player.Bottom() >= 250 {
			t.Fatalf("frame %d: crossed the platform top without landing", frame)
		}
	}
	t.Fatal("player never landed")
}

func TestRestingPlayerStaysGrounded(t *testing.T) {
	s := newTestState([]object.Platform{object.NewPlatform(0, 250, 200, 20)}, nil)
	s.Player.Y = 220
	for i := 0; i < 300; i++ {
		s, _ = Update(s, object.Input{}, 1)
		if !s.Player.Grounded || s.Player.Y != 220 {
			t.Fatalf("frame %d: grounded=%v Y=%v", i, s.Player.Grounded, s.Player.Y)
		}
	}
}

func TestLandingSnapsExactly(t *testing.T) {
	tests := []struct {
		name   string
		y, dy  float64
		landed bool
	}{
		{"crosses this frame", 215, 5, true},         // bottom 245 -> 250.6
		{"lands exactly on top", 219, 0.4, true},     // bottom 249 -> 250
		{"still above", 200, 0, false},               // bottom 230 -> 230.6
		{"already below top", 225, 1, false},         // bottom was 255 > 250
		{"resting on top stays put", 220, 0, true},   // bottom 250 -> 250.6
		{"rising through platform", 230, -12, false}, // moving up
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState([]object.Platform{object.NewPlatform(0, 250, 200, 20)}, nil)
			s.Player.Y = tt.y
			s.Player.DY = tt.dy
			s, _ = Update(s, object.Input{}, 1)
			if s.Player.Grounded != tt.landed {
				t.Fatalf("Grounded = %v, want %v (Y=%v)", s.Player.Grounded, tt.landed, s.Player.Y)
			}
			if tt.landed {
				if s.Player.Y != 220 || s.Player.DY != 0 {
					t.Fatalf("after landing Y=%v DY=%v, want 220, 0", s.Player.Y, s.Player.DY)
				}
			}
		})
	}
}

func TestLandingNeedsHorizontalOverlap(t *testing.T) {
	// Platform starts exactly at the player's right edge: touching is not overlap.
	s := newTestState([]object.Platform{object.NewPlatform(80, 250, 100, 20)}, nil)
	s.Player.Y = 215
	s.Player.DY = 5
	s, _ = Update(s, object.Input{}, 1)
	if s.Player.Grounded {
		t.Fatal("landed on a platform with no horizontal overlap")
	}
}

func TestLastQualifyingPlatformWins(t *testing.T) {
	first := object.NewPlatform(0, 250, 200, 20)
	second := object.NewPlatform(0, 248, 200, 2)
	s := newTestState([]object.Platform{first, second}, nil)
	s.Player.Y = 215
	s.Player.DY = 5 // bottom 245 -> 250.6, crosses both tops
	s, _ = Update(s, object.Input{}, 1)
	if !s.Player.Grounded || s.Player.Y != 248-30 {
		t.Fatalf("Y = %v, want snap to the later platform (218)", s.Player.Y)
	}
}

func TestFastFallStillLands(t *testing.T) {
	s := newTestState([]object.Platform{object.NewPlatform(0, 250, 200, 2)}, nil)
	s.Player.Y = 190
	s.Player.DY = 40 // bottom 220 -> 260.6 in one frame
	s, _ = Update(s, object.Input{}, 1)
	if !s.Player.Grounded || s.Player.Y != 220 {
		t.Fatalf("grounded=%v Y=%v, a one-frame downward crossing must land", s.Player.Grounded, s.Player.Y)
	}
}

func TestNoSweepOffPlatformEdge(t *testing.T) {
	// Overlapping before the move, past the edge after it: the moved position decides.
	s := newTestState([]object.Platform{object.NewPlatform(0, 250, 52, 20)}, nil)
	s.Player.Y = 215
	s.Player.DY = 5
	s, _ = Update(s, object.Input{Right: true}, 1)
	if s.Player.Grounded {
		t.Fatal("landed using the pre-move horizontal position")
	}
}

func TestJumpOnlyWhenGrounded(t *testing.T) {
	s := newTestState(nil, nil)
	s.Player.DY = 2
	s.Player.Grounded = false
	s, _ = Update(s, object.Input{Jump: true}, 1)
	if !approx(s.Player.DY, 2.6) {
		t.Fatalf("airborne jump changed DY: got %v, want 2.6", s.Player.DY)
	}

	grounded := newTestState([]object.Platform{object.NewPlatform(0, 330, 200, 20)}, nil)
	grounded.Player.Grounded = true
	grounded, _ = Update(grounded, object.Input{Jump: true}, 1)
	if !approx(grounded.Player.DY, -11.4) {
		t.Fatalf("grounded jump DY = %v, want -11.4", grounded.Player.DY)
	}
	if grounded.Player.Grounded {
		t.Fatal("jump should leave the ground")
	}
	if !approx(grounded.Player.Y, 300-11.4) {
		t.Fatalf("Y after jump = %v", grounded.Player.Y)
	}
}

func TestAirborneJumpNeverApplies(t *testing.T) {
	s := newTestState(nil, nil)
	for i := 0; i < 15; i++ {
		before := s.Player.DY
		s, _ = Update(s, object.Input{Jump: true}, 1)
		if !approx(s.Player.DY, before+s.Player.Gravity) {
			t.Fatalf("frame %d: DY = %v, want %v", i, s.Player.DY, before+s.Player.Gravity)
		}
	}
}

func TestHorizontalIntent(t *testing.T) {
	tests := []struct {
		name string
		in   object.Input
		dx   float64
	}{
		{"none", object.Input{}, 0},
		{"right", object.Input{Right: true}, 5},
		{"left", object.Input{Left: true}, -5},
		{"both, right wins", object.Input{Left: true, Right: true}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState(nil, nil)
			s.Player.X = 400
			s, _ = Update(s, tt.in, 1)
			if s.Player.DX != tt.dx {
				t.Fatalf("DX = %v, want %v", s.Player.DX, tt.dx)
			}
			if s.Player.X != 400+tt.dx {
				t.Fatalf("X = %v, want %v", s.Player.X, 400+tt.dx)
			}
		})
	}
}

func TestHorizontalClamp(t *testing.T) {
	s := newTestState(nil, nil)
	s.Player.X = 2
	s, _ = Update(s, object.Input{Left: true}, 1)
	if s.Player.X != 0 {
		t.Fatalf("X = %v, want 0", s.Player.X)
	}

	s = newTestState(nil, nil)
	s.Player.X = 768
	s, _ = Update(s, object.Input{Right: true}, 1)
	if s.Player.X != 770 {
		t.Fatalf("X = %v, want 770", s.Player.X)
	}
}

func TestXAlwaysInBounds(t *testing.T) {
	s := newTestState([]object.Platform{object.NewPlatform(0, 350, 800, 50)}, nil)
	inputs := []object.Input{
		{Left: true}, {Left: true, Jump: true}, {Right: true}, {Right: true, Jump: true}, {},
	}
	for i := 0; i < 500; i++ {
		in := inputs[(i/37)%len(inputs)]
		s, _ = Update(s, in, 1)
		if s.Player.X < 0 || s.Player.X > s.Surface.Width-s.Player.W {
			t.Fatalf("frame %d: X = %v out of bounds", i, s.Player.X)
		}
	}
}

func TestCoinPickup(t *testing.T) {
	coin := object.NewCoin(60, 305, 10, 10)
	s := newTestState(nil, []object.Coin{coin})
	s.Player.Gravity = 0

	s, out := Update(s, object.Input{}, 1)
	if out.Collected != 1 || out.ScoreGained != 100 || s.Score != 100 {
		t.Fatalf("outcome %+v score %d", out, s.Score)
	}
	if !s.Coins[0].Collected {
		t.Fatal("coin not marked collected")
	}

	// Still overlapping: must not award again.
	for i := 0; i < 5; i++ {
		s, out = Update(s, object.Input{}, 1)
		if out.Collected != 0 {
			t.Fatalf("collected the same coin twice")
		}
	}
	if s.Score != 100 {
		t.Fatalf("score = %d, want 100", s.Score)
	}
}

func TestCoinTouchingEdgeIsNotCollected(t *testing.T) {
	// Coin starts exactly at the player's right edge (x=80).
	s := newTestState(nil, []object.Coin{object.NewCoin(80, 300, 10, 10)})
	s.Player.Gravity = 0
	s, out := Update(s, object.Input{}, 1)
	if out.Collected != 0 || s.Coins[0].Collected {
		t.Fatal("edge contact must not count as overlap")
	}
}

func TestScoreStepsOfAward(t *testing.T) {
	coins := []object.Coin{
		object.NewCoin(55, 302, 5, 5),
		object.NewCoin(65, 310, 5, 5),
		object.NewCoin(500, 10, 5, 5),
	}
	s := newTestState(nil, coins)
	s.Player.Gravity = 0
	prev := s.Score
	for i := 0; i < 5; i++ {
		s, _ = Update(s, object.Input{}, 1)
		if s.Score < prev || (s.Score-prev)%100 != 0 {
			t.Fatalf("score moved from %d to %d", prev, s.Score)
		}
		prev = s.Score
	}
	if s.Score != 200 || s.CoinsLeft() != 1 {
		t.Fatalf("score=%d left=%d", s.Score, s.CoinsLeft())
	}
}

func TestUpdateDoesNotAliasCoins(t *testing.T) {
	coins := []object.Coin{object.NewCoin(60, 305, 10, 10)}
	s := newTestState(nil, coins)
	s.Player.Gravity = 0
	next, _ := Update(s, object.Input{}, 1)
	if !next.Coins[0].Collected {
		t.Fatal("expected pickup")
	}
	if s.Coins[0].Collected || coins[0].Collected {
		t.Fatal("Update mutated the caller's coin slice")
	}
}

func TestFallOutLatchesGameOver(t *testing.T) {
	s := newTestState(nil, nil)
	var out Outcome
	frames := 0
	for !s.GameOver && frames < 1000 {
		s, out = Update(s, object.Input{}, 1)
		frames++
	}
	if !s.GameOver || !out.GameOverLatched {
		t.Fatal("game over never latched")
	}
	if s.Player.Y <= s.Surface.Height {
		t.Fatalf("latched with Y=%v inside the surface", s.Player.Y)
	}

	frozen := s
	for i := 0; i < 10; i++ {
		s, out = Update(s, object.Input{Right: true, Jump: true}, 1)
		if out != (Outcome{}) {
			t.Fatalf("update after game over reported %+v", out)
		}
	}
	if s.Player != frozen.Player || s.Score != frozen.Score {
		t.Fatal("state changed after game over")
	}
}

func TestTopInsideSurfaceWhilePlaying(t *testing.T) {
	s := newTestState(nil, nil)
	for i := 0; i < 1000 && !s.GameOver; i++ {
		s, _ = Update(s, object.Input{}, 1)
		if !s.GameOver && s.Player.Y > s.Surface.Height {
			t.Fatalf("frame %d: Y=%v below surface without game over", i, s.Player.Y)
		}
	}
}

func TestResetAfterGameOver(t *testing.T) {
	coins := []object.Coin{object.NewCoin(60, 320, 10, 10), object.NewCoin(300, 50, 10, 10)}
	s := newTestState(nil, coins)
	for i := 0; i < 1000 && !s.GameOver; i++ {
		s, _ = Update(s, object.Input{}, 1)
	}
	if !s.GameOver || s.Score != 100 {
		t.Fatalf("setup: gameOver=%v score=%d", s.GameOver, s.Score)
	}

	s = Reset(s)
	if s.Player.X != 50 || s.Player.Y != 300 {
		t.Errorf("position = (%v,%v), want (50,300)", s.Player.X, s.Player.Y)
	}
	if s.Player.DX != 0 || s.Player.DY != 0 || s.Player.Grounded {
		t.Errorf("velocity/grounded not cleared: %+v", s.Player)
	}
	if s.Score != 0 || s.GameOver {
		t.Errorf("score=%d gameOver=%v", s.Score, s.GameOver)
	}
	for i, c := range s.Coins {
		if c.Collected {
			t.Errorf("coin %d still collected", i)
		}
	}

	again := Reset(s)
	if again.Player != s.Player || again.Score != s.Score || again.GameOver != s.GameOver {
		t.Error("Reset is not idempotent")
	}
}

func TestResetMidFall(t *testing.T) {
	s := newTestState(nil, nil)
	for i := 0; i < 5; i++ {
		s, _ = Update(s, object.Input{Right: true}, 1)
	}
	s = Reset(s)
	if s.Player.X != 50 || s.Player.Y != 300 || s.Player.DY != 0 {
		t.Fatalf("reset mid-fall left %+v", s.Player)
	}
}

func TestStepScalesMotion(t *testing.T) {
	s := newTestState(nil, nil)
	s.Player.X = 400
	half, _ := Update(s, object.Input{Right: true}, 0.5)
	if !approx(half.Player.X, 402.5) {
		t.Errorf("X = %v, want 402.5", half.Player.X)
	}
	if !approx(half.Player.DY, 0.3) {
		t.Errorf("DY = %v, want 0.3", half.Player.DY)
	}
	if !approx(half.Player.Y, 300+0.3*0.5) {
		t.Errorf("Y = %v", half.Player.Y)
	}
	if math.Abs(half.Player.Y-s.Player.Y) < eps {
		t.Error("player did not move")
	}
}
