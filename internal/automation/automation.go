package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/nucleon/internal/config"
	"github.com/san-kum/nucleon/internal/dynamo"
	"github.com/san-kum/nucleon/internal/experiment"
	"github.com/san-kum/nucleon/internal/particles"
)

var ErrUnknownAction = errors.New("unknown scenario action")

// Scenario is a scripted sequence of perturbations applied to one running
// system.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Config      *config.Config `yaml:"config"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single action. Which fields matter depends on Action:
//
//	run        advance Ticks ticks
//	randomize  draw new rules
//	reset      scatter particles
//	reinit     Particles particles of Types types (zero keeps current)
//	set        rule A->B = Value
//	matrix     replace the rules with Rules
//	mouse      push at X,Y with Strength and Radius for Ticks ticks
type ScenarioStep struct {
	Action    string      `yaml:"action"`
	Ticks     int         `yaml:"ticks"`
	Particles int         `yaml:"particles"`
	Types     int         `yaml:"types"`
	A         int         `yaml:"a"`
	B         int         `yaml:"b"`
	Value     float64     `yaml:"value"`
	Rules     [][]float64 `yaml:"rules,flow"`
	X         float64     `yaml:"x"`
	Y         float64     `yaml:"y"`
	Strength  float64     `yaml:"strength"`
	Radius    float64     `yaml:"radius"`
}

// LoadScenario loads a scenario from a YAML file. The config block is
// applied on top of the named preset, or the defaults.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	base := config.DefaultConfig()
	if head.Preset != "" {
		if base = config.GetPreset(head.Preset); base == nil {
			return nil, fmt.Errorf("unknown preset %q", head.Preset)
		}
	}

	scenario := Scenario{Config: base}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if scenario.Config == nil {
		scenario.Config = base
	}
	return &scenario, nil
}

// RunScenario builds an experiment from the scenario config and executes
// every step against it in order.
func RunScenario(ctx context.Context, scenario *Scenario, logger *log.Logger, opts ...experiment.Option) (*experiment.Result, error) {
	if logger == nil {
		logger = log.Default()
	}
	exp, err := experiment.New(scenario.Config, append([]experiment.Option{experiment.WithLogger(logger)}, opts...)...)
	if err != nil {
		return nil, err
	}
	if err := exp.Sample(); err != nil {
		return exp.Result(), err
	}

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "n", fmt.Sprintf("%d/%d", i+1, len(scenario.Steps)), "action", step.Action)
		if err := applyStep(ctx, exp, step); err != nil {
			return exp.Result(), fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
	}
	return exp.Result(), nil
}

func applyStep(ctx context.Context, exp *experiment.Experiment, step ScenarioStep) error {
	sys := exp.System()
	switch step.Action {
	case "run":
		return exp.Advance(ctx, step.Ticks)
	case "randomize":
		sys.RandomizeRules()
	case "reset":
		sys.ResetParticles()
	case "reinit":
		n, types := step.Particles, step.Types
		if n == 0 {
			n = sys.Count()
		}
		if types == 0 {
			types = sys.NumTypes()
		}
		m := sys.Matrix()
		if err := sys.Reinit(n, types); err != nil {
			return err
		}
		// rules for surviving types carry over
		sys.SetMatrix(m)
	case "set":
		if step.A < 0 || step.A >= particles.MaxTypes || step.B < 0 || step.B >= particles.MaxTypes {
			return fmt.Errorf("rule %d->%d: %w", step.A, step.B, dynamo.ErrTypeCount)
		}
		sys.SetAttraction(step.A, step.B, float32(step.Value))
	case "matrix":
		m, err := particles.MatrixFromRows(step.Rules)
		if err != nil {
			return err
		}
		sys.SetMatrix(m)
	case "mouse":
		strength, radius := step.Strength, step.Radius
		if radius == 0 {
			radius = exp.Config().Mouse.Radius
		}
		if strength == 0 {
			strength = exp.Config().Mouse.Strength
		}
		ticks := max(step.Ticks, 1)
		for i := 0; i < ticks; i++ {
			sys.ApplyMouseForce(float32(step.X), float32(step.Y), float32(strength), float32(radius))
			if err := exp.Advance(ctx, 1); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%q: %w", step.Action, ErrUnknownAction)
	}
	return nil
}

// ParameterSweep runs the same seeded world across evenly spaced values of
// one attraction rule.
type ParameterSweep struct {
	Config   *config.Config
	A, B     int
	Min, Max float64
	NumSteps int
}

// SweepResult holds the final metrics for one rule value.
type SweepResult struct {
	Value   float64
	Metrics map[string]float64
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *log.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep steps %d: %w", sweep.NumSteps, dynamo.ErrParameterBounds)
	}
	if sweep.A < 0 || sweep.A >= sweep.Config.Types || sweep.B < 0 || sweep.B >= sweep.Config.Types {
		return nil, fmt.Errorf("rule %d->%d: %w", sweep.A, sweep.B, dynamo.ErrTypeCount)
	}
	if logger == nil {
		logger = log.Default()
	}

	cfg := sweep.Config.Clone()
	if cfg.Seed == 0 {
		// every step must see the same initial world
		cfg.Seed = time.Now().UnixNano()
	}

	step := 0.0
	if sweep.NumSteps > 1 {
		step = (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		value := sweep.Min + float64(i)*step

		exp, err := experiment.New(cfg, experiment.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		exp.System().SetAttraction(sweep.A, sweep.B, float32(value))

		result, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, SweepResult{Value: value, Metrics: result.Metrics})

		logger.Info("sweep", "step", fmt.Sprintf("%d/%d", i+1, sweep.NumSteps),
			"rule", fmt.Sprintf("%d->%d", sweep.A, sweep.B), "value", fmt.Sprintf("%.4f", value))
	}

	return results, nil
}

// MonteCarloConfig perturbs every active rule by up to ±Perturbation per
// trial and checks whether the world stays bounded.
type MonteCarloConfig struct {
	Config       *config.Config
	Perturbation float64
	NumTrials    int
	// MaxSpeed marks a trial unstable when exceeded at the end.
	MaxSpeed float64
	Seed     int64
}

type MonteCarloResult struct {
	TrialID int
	Matrix  particles.Matrix
	Metrics map[string]float64
	Stable  bool
	Failure string
}

// RunMonteCarlo executes multiple trials with random rule perturbations
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, logger *log.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("trials %d: %w", cfg.NumTrials, dynamo.ErrParameterBounds)
	}
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	limit := cfg.MaxSpeed
	if limit <= 0 {
		limit = 1e6
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		runCfg := cfg.Config.Clone()
		runCfg.Seed = seed + int64(trial)

		exp, err := experiment.New(runCfg, experiment.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		sys := exp.System()
		m := sys.Matrix()
		for a := 0; a < sys.NumTypes(); a++ {
			for b := 0; b < sys.NumTypes(); b++ {
				v := m[a][b] + float32((rng.Float64()-0.5)*2*cfg.Perturbation)
				m[a][b] = min(max(v, -1), 1)
			}
		}
		sys.SetMatrix(m)

		r := MonteCarloResult{TrialID: trial, Matrix: m, Stable: true}
		result, err := exp.Run(ctx)
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		var simErr *dynamo.SimulationError
		switch {
		case errors.As(err, &simErr):
			r.Stable, r.Failure = false, simErr.Error()
		case err != nil:
			return results, err
		case result.Metrics["max_speed"] > limit:
			r.Stable, r.Failure = false, fmt.Sprintf("max speed %.3g", result.Metrics["max_speed"])
		}
		r.Metrics = result.Metrics
		results = append(results, r)

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
