package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/nucleon/internal/config"
	"github.com/san-kum/nucleon/internal/dynamo"
	"github.com/san-kum/nucleon/internal/metrics"
	"github.com/san-kum/nucleon/internal/particles"
	"github.com/san-kum/nucleon/internal/spawn"
)

// Observer is notified after every tick.
type Observer interface {
	OnTick(v particles.View, tick int, t float64)
}

type Result struct {
	Seed    int64
	Ticks   int
	Times   []float64
	Samples []int
	Series  map[string][]float64
	Metrics map[string]float64
	Final   particles.Snapshot
	Elapsed time.Duration
}

type Experiment struct {
	cfg         *config.Config
	sys         *particles.System
	metrics     []metrics.Metric
	metricNames []string
	observers   []Observer
	logger      *log.Logger

	tick    int
	t       float64
	times   []float64
	samples []int
	series  map[string][]float64
	elapsed time.Duration
}

type Option func(*Experiment)

func WithLogger(l *log.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

// WithMetrics replaces the default metric set. The instances are owned by
// one experiment; use WithMetricNames for ensembles.
func WithMetrics(ms ...metrics.Metric) Option {
	return func(e *Experiment) { e.metrics = ms }
}

func WithObserver(o Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, o) }
}

// New validates cfg and builds the particle system it describes. A zero seed
// is replaced by a time-based one so the run can still be reproduced later.
func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg = cfg.Clone()
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	e := &Experiment{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if err := e.buildMetrics(); err != nil {
		return nil, err
	}
	if e.metrics == nil {
		e.metrics = metrics.Defaults(cfg.Types)
	}

	spawner, err := spawn.ByName(cfg.Spawn, cfg.Seed)
	if err != nil {
		return nil, err
	}
	sys, err := particles.New(cfg.Particles, cfg.Types,
		float32(cfg.World.Width), float32(cfg.World.Height),
		particles.WithSeed(cfg.Seed),
		particles.WithWorkers(cfg.Workers),
		particles.WithSpawner(spawner),
	)
	if err != nil {
		return nil, err
	}

	if cfg.Randomize {
		sys.RandomizeRules()
	} else {
		m, err := cfg.Matrix()
		if err != nil {
			return nil, err
		}
		sys.SetMatrix(m)
	}

	e.sys = sys
	e.series = make(map[string][]float64, len(e.metrics))
	for _, m := range e.metrics {
		m.Reset()
	}

	e.logger.Debug("experiment ready",
		"particles", cfg.Particles, "types", cfg.Types, "seed", cfg.Seed,
		"world", fmt.Sprintf("%gx%g", cfg.World.Width, cfg.World.Height),
		"workers", sys.Workers())
	return e, nil
}

// System exposes the engine for drivers that perturb it between ticks.
func (e *Experiment) System() *particles.System { return e.sys }

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Metrics() []metrics.Metric { return e.metrics }

func (e *Experiment) Tick() int { return e.tick }

// Run advances the configured number of ticks and returns the result.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.tick == 0 && len(e.times) == 0 {
		if err := e.Sample(); err != nil {
			return e.Result(), err
		}
	}
	err := e.Advance(ctx, e.cfg.Ticks)
	return e.Result(), err
}

// Advance steps n ticks, sampling metrics every SampleEvery ticks and after
// the last one. Cancellation is checked between ticks.
func (e *Experiment) Advance(ctx context.Context, n int) error {
	dt := e.cfg.Step()
	skip := dt < particles.MinStep
	if skip {
		e.logger.Warn("timestep below minimum, particles frozen", "dt", dt)
	}

	start := time.Now()
	defer func() { e.elapsed += time.Since(start) }()

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !skip {
			e.sys.Update(dt)
		}
		e.tick++
		e.t += float64(dt)

		if len(e.observers) > 0 {
			v := e.sys.View()
			for _, o := range e.observers {
				o.OnTick(v, e.tick, e.t)
			}
		}

		if e.tick%e.cfg.SampleEvery == 0 || i == n-1 {
			if err := e.Sample(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Sample observes every metric at the current tick.
func (e *Experiment) Sample() error {
	if n := len(e.samples); n > 0 && e.samples[n-1] == e.tick {
		return nil
	}
	v := e.sys.View()
	e.times = append(e.times, e.t)
	e.samples = append(e.samples, e.tick)
	for _, m := range e.metrics {
		m.Observe(v, e.t)
		val := m.Value()
		e.series[m.Name()] = append(e.series[m.Name()], val)
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return &dynamo.SimulationError{
				Tick:    e.tick,
				Time:    e.t,
				Wrapped: fmt.Errorf("metric %s is %v: %w", m.Name(), val, dynamo.ErrParameterBounds),
			}
		}
	}
	e.logger.Debug("sample", "tick", e.tick, "t", fmt.Sprintf("%.3f", e.t))
	return nil
}

// Result snapshots everything recorded so far.
func (e *Experiment) Result() *Result {
	res := &Result{
		Seed:    e.cfg.Seed,
		Ticks:   e.tick,
		Times:   append([]float64(nil), e.times...),
		Samples: append([]int(nil), e.samples...),
		Series:  make(map[string][]float64, len(e.series)),
		Metrics: make(map[string]float64, len(e.metrics)),
		Final:   e.sys.Snapshot(),
		Elapsed: e.elapsed,
	}
	for k, v := range e.series {
		res.Series[k] = append([]float64(nil), v...)
	}
	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}
