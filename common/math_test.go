package common

import (
	"math"
	"testing"
)

func TestClamp01(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative", -0.5, 0},
		{"zero", 0, 0},
		{"mid", 0.25, 0.25},
		{"one", 1, 1},
		{"above", 3, 1},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Clamp01(c.in); got != c.want {
				t.Fatalf("Clamp01(%v) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(2, 4, 0.5); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
	if !Approx(Lerp(1, 0, 0.25), 0.75, 1e-12) {
		t.Fatalf("expected 0.75")
	}
}
