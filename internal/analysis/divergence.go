package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/nucleon/internal/config"
	"github.com/san-kum/nucleon/internal/dynamo"
	"github.com/san-kum/nucleon/internal/experiment"
	"github.com/san-kum/nucleon/internal/particles"
)

// Divergence tracks how far two worlds drift apart.
type Divergence struct {
	Ticks     []int
	Distances []float64
	// Exponent is the least-squares slope of ln(distance) per unit of
	// simulated time.
	Exponent float64
}

// MeanSeparation is the mean toroidal distance between matching particles
// of two views of the same world size and count.
func MeanSeparation(a, b particles.View) float64 {
	n := min(a.Len(), b.Len())
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		dx := float64(dynamo.WrapDelta(b.X[i]-a.X[i], a.Width))
		dy := float64(dynamo.WrapDelta(b.Y[i]-a.Y[i], a.Height))
		sum += math.Sqrt(dx*dx + dy*dy)
	}
	return sum / float64(n)
}

// RuleSensitivity runs cfg twice from the same seed, the second time with
// rule a->b shifted by eps, and samples their separation every `every`
// ticks.
func RuleSensitivity(ctx context.Context, cfg *config.Config, a, b int, eps float64, ticks, every int) (*Divergence, error) {
	if a < 0 || a >= cfg.Types || b < 0 || b >= cfg.Types {
		return nil, fmt.Errorf("rule %d->%d: %w", a, b, dynamo.ErrTypeCount)
	}
	if ticks < 1 || every < 1 || eps == 0 {
		return nil, fmt.Errorf("ticks=%d every=%d eps=%g: %w", ticks, every, eps, dynamo.ErrParameterBounds)
	}

	cfg = cfg.Clone()
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	opts := []experiment.Option{experiment.WithMetricNames("max_speed")}
	base, err := experiment.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	shifted, err := experiment.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	sys := shifted.System()
	sys.SetAttraction(a, b, sys.Attraction(a, b)+float32(eps))

	d := &Divergence{}
	for done := 0; done < ticks; done += every {
		n := min(every, ticks-done)
		if err := base.Advance(ctx, n); err != nil {
			return d, err
		}
		if err := shifted.Advance(ctx, n); err != nil {
			return d, err
		}
		d.Ticks = append(d.Ticks, done+n)
		d.Distances = append(d.Distances, MeanSeparation(base.System().View(), sys.View()))
	}

	d.Exponent = logSlope(d.Ticks, d.Distances, cfg.Dt*cfg.Speed)
	return d, nil
}

// logSlope fits ln(y) = c + k*t over the positive samples and returns k.
func logSlope(ticks []int, ys []float64, dt float64) float64 {
	var n, st, sy, stt, sty float64
	for i, y := range ys {
		if y <= 0 {
			continue
		}
		t := float64(ticks[i]) * dt
		ly := math.Log(y)
		n++
		st += t
		sy += ly
		stt += t * t
		sty += t * ly
	}
	den := n*stt - st*st
	if n < 2 || den == 0 {
		return 0
	}
	return (n*sty - st*sy) / den
}
