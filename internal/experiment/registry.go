package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/nucleon/internal/metrics"
	"github.com/san-kum/nucleon/internal/particles"
)

type Registry struct {
	metrics map[string]func(numTypes int) metrics.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(int) metrics.Metric),
	}

	r.metrics["kinetic_energy"] = func(int) metrics.Metric { return metrics.NewKineticEnergy() }
	r.metrics["max_speed"] = func(int) metrics.Metric { return metrics.NewMaxSpeed() }
	r.metrics["stability"] = func(int) metrics.Metric { return metrics.NewStability(1.0) }
	r.metrics["local_density"] = func(int) metrics.Metric {
		return metrics.NewLocalDensity(particles.CutoffRadius)
	}
	for a := 0; a < particles.MaxTypes; a++ {
		for b := 0; b < particles.MaxTypes; b++ {
			a, b := a, b
			r.metrics[fmt.Sprintf("separation_%d_%d", a, b)] = func(int) metrics.Metric {
				return metrics.NewTypeSeparation(a, b)
			}
		}
	}

	return r
}

// GetMetric builds a fresh instance of the named metric.
func (r *Registry) GetMetric(name string, numTypes int) (metrics.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(numTypes), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// WithMetricNames selects metrics by registry name. Every experiment gets
// its own instances, so the option is safe to share across an ensemble.
func WithMetricNames(names ...string) Option {
	return func(e *Experiment) {
		e.metricNames = names
	}
}

func (e *Experiment) buildMetrics() error {
	if len(e.metricNames) == 0 {
		return nil
	}
	ms := make([]metrics.Metric, 0, len(e.metricNames))
	for _, name := range e.metricNames {
		m, err := defaultRegistry.GetMetric(name, e.cfg.Types)
		if err != nil {
			return err
		}
		ms = append(ms, m)
	}
	e.metrics = ms
	return nil
}
