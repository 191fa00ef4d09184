package forecast

import (
	"testing"

	"github.com/danielpatrickdp/petsim/internal/state"
)

type constJitter int

func (c constJitter) Draw() int { return int(c) }

func TestFinalizeRoundsHalfToEven(t *testing.T) {
	got, err := Finalize([]float64{0.5, 1.5, 2.5, 2.49, 3.51}, constJitter(0))
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	want := state.ActivityVector{0, 2, 2, 2, 4}
	if got != want {
		t.Fatalf("Finalize = %v, want %v", got, want)
	}
}

func TestFinalizeClampsAtZero(t *testing.T) {
	got, err := Finalize([]float64{0, 0.2, -3, 1, 0.4}, constJitter(-1))
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	want := state.ActivityVector{0, 0, 0, 0, 0}
	if got != want {
		t.Fatalf("Finalize = %v, want %v", got, want)
	}
}

func TestFinalizeAddsJitter(t *testing.T) {
	got, err := Finalize([]float64{3, 3, 3, 3, 3}, constJitter(1))
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if got != (state.ActivityVector{4, 4, 4, 4, 4}) {
		t.Fatalf("Finalize = %v", got)
	}
}

func TestFinalizeRejectsBadPrediction(t *testing.T) {
	if _, err := Finalize([]float64{1, 2}, constJitter(0)); err == nil {
		t.Fatal("expected error for short prediction")
	}
	nan := []float64{1, 2, 3, 4, 0}
	nan[4] = nan[4] / nan[4]
	if _, err := Finalize(nan, constJitter(0)); err == nil {
		t.Fatal("expected error for NaN component")
	}
}

func TestJitterRangeAndSeeding(t *testing.T) {
	seed := uint64(7)
	a, b := NewJitter(&seed), NewJitter(&seed)
	seen := map[int]bool{}
	for i := 0; i < 300; i++ {
		x, y := a.Draw(), b.Draw()
		if x != y {
			t.Fatalf("draw %d: seeded jitters diverged (%d vs %d)", i, x, y)
		}
		if x < -1 || x > 1 {
			t.Fatalf("draw %d out of range: %d", i, x)
		}
		seen[x] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected all of -1, 0, 1 to appear, saw %v", seen)
	}

	unseeded := NewJitter(nil)
	for i := 0; i < 50; i++ {
		if d := unseeded.Draw(); d < -1 || d > 1 {
			t.Fatalf("unseeded draw out of range: %d", d)
		}
	}
}
