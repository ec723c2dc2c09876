package gesture

import (
	"testing"

	"github.com/ayusman/airdrum/internal/pose"
)

// historyOf builds a capacity-5 history from y positions at x=0.
func historyOf(ys ...float64) *History {
	h := NewHistory(DefaultHistorySize)
	for _, y := range ys {
		h.Update(&HandSample{Y: y, Confidence: 1})
	}
	return h
}

// historyOfX builds a capacity-5 history from x positions at y=0.
func historyOfX(xs ...float64) *History {
	h := NewHistory(DefaultHistorySize)
	for _, x := range xs {
		h.Update(&HandSample{X: x, Confidence: 1})
	}
	return h
}

func TestHistory_Update(t *testing.T) {
	t.Run("never exceeds capacity", func(t *testing.T) {
		h := NewHistory(5)
		for i := 0; i < 12; i++ {
			h.Update(&HandSample{Y: float64(i)})
			if h.Len() > h.Cap() {
				t.Fatalf("length %d exceeds capacity %d", h.Len(), h.Cap())
			}
		}
		if !h.Full() {
			t.Error("history should be full")
		}
	})

	t.Run("evicts oldest first", func(t *testing.T) {
		h := historyOf(1, 2, 3, 4, 5, 6, 7)

		samples := h.Samples()
		want := []float64{3, 4, 5, 6, 7}
		for i, s := range samples {
			if s.Y != want[i] {
				t.Errorf("sample %d: y = %f, want %f", i, s.Y, want[i])
			}
		}
	})

	t.Run("nil sample clears", func(t *testing.T) {
		h := historyOf(1, 2, 3)
		h.Update(nil)
		if h.Len() != 0 {
			t.Errorf("expected empty history, got %d samples", h.Len())
		}
		if _, ok := h.Last(); ok {
			t.Error("Last should report no sample")
		}
	})

	t.Run("samples are copies", func(t *testing.T) {
		h := historyOf(1, 2)
		s := h.Samples()
		s[0].Y = 99
		if h.Samples()[0].Y != 1 {
			t.Error("modifying Samples() result changed the history")
		}
	})

	t.Run("capacity floor", func(t *testing.T) {
		if got := NewHistory(0).Cap(); got != 1 {
			t.Errorf("capacity = %d, want 1", got)
		}
	})
}

func TestHistory_Velocity(t *testing.T) {
	h := NewHistory(5)
	if _, _, ok := h.Velocity(); ok {
		t.Error("empty history should have no velocity")
	}

	h.Update(&HandSample{X: 10, Y: 10})
	if _, _, ok := h.Velocity(); ok {
		t.Error("single sample should have no velocity")
	}

	h.Update(&HandSample{X: 4, Y: 30})
	dx, dy, ok := h.Velocity()
	if !ok {
		t.Fatal("expected velocity with two samples")
	}
	if dx != -6 || dy != 20 {
		t.Errorf("velocity = (%f, %f), want (-6, 20)", dx, dy)
	}
}

func TestDetectHit(t *testing.T) {
	tests := []struct {
		name string
		ys   []float64
		want bool
	}{
		{name: "velocity 20 over threshold", ys: []float64{100, 100, 100, 100, 120}, want: true},
		{name: "velocity 10 under threshold", ys: []float64{100, 100, 100, 100, 110}, want: false},
		{name: "velocity equal to threshold", ys: []float64{100, 100, 100, 100, 115}, want: false},
		{name: "upward motion", ys: []float64{100, 100, 100, 100, 60}, want: false},
		{name: "warm-up ignores large velocity", ys: []float64{100, 100, 100, 200}, want: false},
		{name: "two samples only", ys: []float64{100, 200}, want: false},
		{name: "empty", ys: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectHit(historyOf(tt.ys...), DefaultHitThreshold); got != tt.want {
				t.Errorf("DetectHit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectSideways(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		dir  pose.Direction
		want bool
	}{
		{name: "leftward fires below -threshold", xs: []float64{300, 300, 300, 300, 289}, dir: pose.Leftward, want: true},
		{name: "leftward ignores exactly -threshold", xs: []float64{300, 300, 300, 300, 290}, dir: pose.Leftward, want: false},
		{name: "leftward ignores rightward motion", xs: []float64{300, 300, 300, 300, 330}, dir: pose.Leftward, want: false},
		{name: "rightward fires above threshold", xs: []float64{300, 300, 300, 300, 311}, dir: pose.Rightward, want: true},
		{name: "rightward ignores exactly threshold", xs: []float64{300, 300, 300, 300, 310}, dir: pose.Rightward, want: false},
		{name: "rightward ignores leftward motion", xs: []float64{300, 300, 300, 300, 250}, dir: pose.Rightward, want: false},
		{name: "warm-up", xs: []float64{300, 300, 300, 400}, dir: pose.Rightward, want: false},
		{name: "unknown direction", xs: []float64{300, 300, 300, 300, 400}, dir: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectSideways(historyOfX(tt.xs...), DefaultSidewaysThreshold, tt.dir); got != tt.want {
				t.Errorf("DetectSideways() = %v, want %v", got, tt.want)
			}
		})
	}
}
