package dynamo

import (
	"math"
	"testing"
)

func TestInvSqrt(t *testing.T) {
	tests := []float32{1e-4, 0.25, 1, 2, 9, 100, 6399, 6400, 1e6}

	for _, x := range tests {
		got := InvSqrt(x)
		want := float32(1 / math.Sqrt(float64(x)))
		rel := math.Abs(float64(got-want)) / float64(want)
		if rel > 2e-3 {
			t.Errorf("InvSqrt(%v) = %v, want %v (rel err %.5f)", x, got, want, rel)
		}
	}
}

func TestInvSqrt_Zero(t *testing.T) {
	if got := InvSqrt(0); got != 0 {
		t.Errorf("InvSqrt(0) = %v, want 0", got)
	}
}

func TestWrapDelta(t *testing.T) {
	tests := []struct {
		name string
		d    float32
		size float32
		want float32
	}{
		{"inside", 10, 100, 10},
		{"negative inside", -10, 100, -10},
		{"exactly half", 50, 100, 50},
		{"past half", 90, 100, -10},
		{"past negative half", -90, 100, 10},
		{"zero", 0, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WrapDelta(tt.d, tt.size); got != tt.want {
				t.Errorf("WrapDelta(%v, %v) = %v, want %v", tt.d, tt.size, got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		v    float32
		want float32
	}{
		{"inside", 42, 42},
		{"zero", 0, 0},
		{"negative", -10, 90},
		{"at size", 100, 0},
		{"past size", 130, 30},
		{"far past", 350, 50},
		{"far negative", -250, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.v, 100)
			if math.Abs(float64(got-tt.want)) > 1e-4 {
				t.Errorf("Wrap(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestWrap_AlwaysInRange(t *testing.T) {
	size := float32(900)
	inputs := []float32{-1e-9, -1e-3, 899.99994, 900, 1e9, -1e9,
		float32(math.Inf(1)), float32(math.NaN())}

	for _, v := range inputs {
		got := Wrap(v, size)
		if !(got >= 0 && got < size) {
			t.Errorf("Wrap(%v) = %v, outside [0, %v)", v, got, size)
		}
	}
}
