package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/nucleon/internal/config"
	"github.com/san-kum/nucleon/internal/dynamo"
	"github.com/san-kum/nucleon/internal/experiment"
)

// Rule names the attraction of type A toward type B as a search parameter.
type Rule struct{ A, B int }

func (r Rule) String() string { return fmt.Sprintf("%d->%d", r.A, r.B) }

// GridSearch tries every combination of values for a set of rules and keeps
// the one that scores best on a metric.
type GridSearch struct {
	rules    []Rule
	ranges   [][]float64
	Maximize bool
}

func NewGridSearch(rules []Rule, ranges [][]float64) (*GridSearch, error) {
	if len(rules) != len(ranges) {
		return nil, fmt.Errorf("%d rules, %d ranges: %w", len(rules), len(ranges), dynamo.ErrDimensionMismatch)
	}
	return &GridSearch{rules: rules, ranges: ranges}, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// Candidate is one evaluated point of the grid.
type Candidate struct {
	Values map[Rule]float64
	Score  float64
}

// Search runs cfg once per grid point, with the same seed every time, and
// returns all candidates sorted best first. Runs that fail are skipped.
func (g *GridSearch) Search(ctx context.Context, cfg *config.Config, metricName string) ([]Candidate, error) {
	for _, r := range g.rules {
		if r.A < 0 || r.A >= cfg.Types || r.B < 0 || r.B >= cfg.Types {
			return nil, fmt.Errorf("rule %s: %w", r, dynamo.ErrTypeCount)
		}
	}
	cfg = cfg.Clone()
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}

	var out []Candidate
	if err := g.searchRecursive(ctx, cfg, metricName, 0, make(map[Rule]float64), &out); err != nil {
		return out, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if g.Maximize {
			return out[i].Score > out[j].Score
		}
		return out[i].Score < out[j].Score
	})
	return out, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	cfg *config.Config,
	metricName string,
	depth int,
	current map[Rule]float64,
	out *[]Candidate,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.rules) {
		exp, err := experiment.New(cfg, experiment.WithMetricNames(metricName))
		if err != nil {
			return err
		}
		for r, v := range current {
			exp.System().SetAttraction(r.A, r.B, float32(v))
		}

		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		}

		score, ok := result.Metrics[metricName]
		if !ok || math.IsNaN(score) {
			return nil
		}
		values := make(map[Rule]float64, len(current))
		for k, v := range current {
			values[k] = v
		}
		*out = append(*out, Candidate{Values: values, Score: score})
		return nil
	}

	rule := g.rules[depth]
	for _, val := range g.ranges[depth] {
		current[rule] = val
		if err := g.searchRecursive(ctx, cfg, metricName, depth+1, current, out); err != nil {
			return err
		}
	}
	delete(current, rule)
	return nil
}
