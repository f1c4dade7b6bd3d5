package experiment

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/nucleon/internal/config"
	"github.com/san-kum/nucleon/internal/dynamo"
)

// RunEnsemble runs independent experiments with seeds seedStart, seedStart+1,
// ... concurrently. Results are indexed by run. The first failure cancels
// the rest.
func RunEnsemble(ctx context.Context, cfg *config.Config, runs int, seedStart int64, opts ...Option) ([]*Result, error) {
	if runs < 1 {
		return nil, fmt.Errorf("runs %d: %w", runs, dynamo.ErrParameterBounds)
	}
	results := make([]*Result, runs)
	parallel := runtime.GOMAXPROCS(0)
	if runs < parallel {
		parallel = runs
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i := 0; i < runs; i++ {
		runCfg := cfg.Clone()
		runCfg.Seed = seedStart + int64(i)
		if runCfg.Workers == 0 {
			// split cores between concurrent runs
			runCfg.Workers = max(1, runtime.GOMAXPROCS(0)/parallel)
		}

		i := i
		g.Go(func() error {
			exp, err := New(runCfg, opts...)
			if err != nil {
				return err
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type Stats struct {
	Mean, Std, Min, Max float64
}

// Summarize aggregates the final metric values of an ensemble.
func Summarize(results []*Result) map[string]Stats {
	values := make(map[string][]float64)
	for _, r := range results {
		if r == nil {
			continue
		}
		for name, v := range r.Metrics {
			values[name] = append(values[name], v)
		}
	}

	out := make(map[string]Stats, len(values))
	for name, vs := range values {
		s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
		for _, v := range vs {
			s.Mean += v
			s.Min = math.Min(s.Min, v)
			s.Max = math.Max(s.Max, v)
		}
		s.Mean /= float64(len(vs))
		for _, v := range vs {
			s.Std += (v - s.Mean) * (v - s.Mean)
		}
		if len(vs) > 1 {
			s.Std = math.Sqrt(s.Std / float64(len(vs)-1))
		} else {
			s.Std = 0
		}
		out[name] = s
	}
	return out
}

// MetricNames returns the sorted union of metric names in results.
func MetricNames(results []*Result) []string {
	seen := make(map[string]bool)
	for _, r := range results {
		if r == nil {
			continue
		}
		for name := range r.Metrics {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
