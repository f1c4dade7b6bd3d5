package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/nucleon/internal/config"
	"github.com/san-kum/nucleon/internal/dynamo"
	"github.com/san-kum/nucleon/internal/particles"
)

func TestPowerSpectrum(t *testing.T) {
	if PowerSpectrum([]float64{1}) != nil {
		t.Error("single sample should have no spectrum")
	}

	n := 64
	data := make([]float64, n)
	for i := range data {
		data[i] = 5 + math.Sin(2*math.Pi*4*float64(i)/float64(n))
	}
	ps := PowerSpectrum(data)
	if len(ps) != n/2 {
		t.Fatalf("len = %d", len(ps))
	}
	if ps[0] > 1e-9 {
		t.Errorf("mean should be removed, bin 0 = %v", ps[0])
	}
	for k, v := range ps {
		if k != 4 && v > ps[4] {
			t.Errorf("bin %d (%v) beats bin 4 (%v)", k, v, ps[4])
		}
	}
}

func TestDominantPeriod(t *testing.T) {
	// period of 10 samples, 0.5 time units apart, non power-of-two length
	n := 100
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Cos(2 * math.Pi * float64(i) / 10)
	}
	p, ok := DominantPeriod(data, 0.5)
	if !ok || math.Abs(p-5) > 1e-9 {
		t.Errorf("period = %v %v, want 5", p, ok)
	}

	if _, ok := DominantPeriod(make([]float64, 16), 1); ok {
		t.Error("flat series has no period")
	}
}

func TestPhasePortrait(t *testing.T) {
	p := NewPhasePortrait("x", []float64{0, 1, 2, 3}, "y", []float64{0, 1, 4})
	if len(p.Points) != 3 {
		t.Fatalf("points = %d", len(p.Points))
	}
	out := PhasePortraitToASCII(p, 20, 5)
	if strings.Count(out, "\n") != 5 {
		t.Errorf("expected 5 rows:\n%s", out)
	}
	if !strings.Contains(out, "◆") || !strings.Contains(out, "•") {
		t.Errorf("missing markers:\n%s", out)
	}
	if PhasePortraitToASCII(nil, 10, 10) != "" {
		t.Error("nil portrait should render empty")
	}
}

func TestMeanSeparation(t *testing.T) {
	a := particles.View{X: []float32{1, 50}, Y: []float32{1, 50}, Width: 100, Height: 100}
	b := particles.View{X: []float32{99, 53}, Y: []float32{1, 54}, Width: 100, Height: 100}
	// 2 across the seam, 5 in the middle
	if got := MeanSeparation(a, b); math.Abs(got-3.5) > 1e-6 {
		t.Errorf("MeanSeparation = %v, want 3.5", got)
	}
	if MeanSeparation(particles.View{}, b) != 0 {
		t.Error("empty view should be 0")
	}
}

func TestLogSlope(t *testing.T) {
	ticks := []int{1, 2, 3, 4}
	ys := make([]float64, len(ticks))
	for i, tk := range ticks {
		ys[i] = math.Exp(0.7 * float64(tk) * 0.1)
	}
	if k := logSlope(ticks, ys, 0.1); math.Abs(k-0.7) > 1e-9 {
		t.Errorf("slope = %v, want 0.7", k)
	}
	if logSlope([]int{1}, []float64{2}, 1) != 0 {
		t.Error("one sample has no slope")
	}
}

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Particles = 150
	cfg.World.Width, cfg.World.Height = 300, 200
	cfg.Seed = 4
	cfg.Workers = 2
	return cfg
}

func TestRuleSensitivity(t *testing.T) {
	d, err := RuleSensitivity(context.Background(), smallConfig(), 0, 1, 0.05, 40, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Ticks) != 4 || d.Ticks[3] != 40 {
		t.Fatalf("ticks = %v", d.Ticks)
	}
	if d.Distances[3] <= 0 {
		t.Error("worlds with different rules should drift apart")
	}
}

func TestRuleSensitivity_SameRuleStaysTogether(t *testing.T) {
	d, err := RuleSensitivity(context.Background(), smallConfig(), 0, 1, 1e-30, 20, 10)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range d.Distances {
		if v != 0 {
			t.Errorf("sample %d = %v, an unrepresentable shift should change nothing", i, v)
		}
	}
}

func TestRuleSensitivity_Invalid(t *testing.T) {
	_, err := RuleSensitivity(context.Background(), smallConfig(), 5, 0, 0.1, 10, 1)
	if !errors.Is(err, dynamo.ErrTypeCount) {
		t.Errorf("got %v", err)
	}
	_, err = RuleSensitivity(context.Background(), smallConfig(), 0, 0, 0, 10, 1)
	if !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("got %v", err)
	}
}
