package physics

import "testing"

func TestRectOverlaps(t *testing.T) {
	base := Rect{X: 10, Y: 10, W: 20, H: 20}
	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"inside", Rect{X: 15, Y: 15, W: 5, H: 5}, true},
		{"partial", Rect{X: 25, Y: 25, W: 20, H: 20}, true},
		{"touching right edge", Rect{X: 30, Y: 10, W: 5, H: 5}, false},
		{"touching bottom edge", Rect{X: 10, Y: 30, W: 5, H: 5}, false},
		{"left of", Rect{X: 0, Y: 10, W: 5, H: 5}, false},
		{"above", Rect{X: 10, Y: 0, W: 5, H: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("reverse Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectOverlapsX(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	if !a.OverlapsX(Rect{X: 9, Y: 500, W: 10, H: 1}) {
		t.Error("expected horizontal overlap regardless of Y")
	}
	if a.OverlapsX(Rect{X: 10, Y: 0, W: 10, H: 10}) {
		t.Error("shared edge must not overlap")
	}
}

func TestCrossed(t *testing.T) {
	tests := []struct {
		prev, now, top float64
		want           bool
	}{
		{240, 255, 250, true},
		{250, 250.6, 250, true},
		{240, 250, 250, true},
		{240, 249, 250, false},
		{251, 260, 250, false},
	}
	for _, tt := range tests {
		if got := Crossed(tt.prev, tt.now, tt.top); got != tt.want {
			t.Errorf("Crossed(%v, %v, %v) = %v, want %v", tt.prev, tt.now, tt.top, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-3, 0, 10); got != 0 {
		t.Errorf("Clamp low = %v", got)
	}
	if got := Clamp(12, 0, 10); got != 10 {
		t.Errorf("Clamp high = %v", got)
	}
	if got := Clamp(4, 0, 10); got != 4 {
		t.Errorf("Clamp mid = %v", got)
	}
	if got := Clamp(4, 5, 3); got != 5 {
		t.Errorf("Clamp inverted = %v, want 5", got)
	}
}

func TestRectEdges(t *testing.T) {
	r := Rect{X: 2, Y: 3, W: 4, H: 6}
	if r.Right() != 6 || r.Bottom() != 9 {
		t.Fatalf("edges = %v, %v", r.Right(), r.Bottom())
	}
	cx, cy := r.Center()
	if cx != 4 || cy != 6 {
		t.Fatalf("center = %v, %v", cx, cy)
	}
}
