package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/nucleon/internal/dynamo"
	"github.com/san-kum/nucleon/internal/particles"
	"github.com/san-kum/nucleon/internal/spawn"
)

const (
	DefaultParticles     = 5000
	DefaultTypes         = 3
	DefaultWidth         = 1600.0
	DefaultHeight        = 900.0
	DefaultDt            = 0.016
	DefaultSpeed         = 1.0
	DefaultTicks         = 600
	DefaultSampleEvery   = 10
	DefaultMouseStrength = 5.0
	DefaultMouseRadius   = 150.0
)

type Config struct {
	Particles   int         `yaml:"particles" toml:"particles"`
	Types       int         `yaml:"types" toml:"types"`
	Seed        int64       `yaml:"seed" toml:"seed"`
	Dt          float64     `yaml:"dt" toml:"dt"`
	Speed       float64     `yaml:"speed" toml:"speed"`
	Ticks       int         `yaml:"ticks" toml:"ticks"`
	SampleEvery int         `yaml:"sample_every" toml:"sample_every"`
	Workers     int         `yaml:"workers" toml:"workers"`
	Spawn       string      `yaml:"spawn" toml:"spawn"`
	Randomize   bool        `yaml:"randomize" toml:"randomize"`
	Rules       [][]float64 `yaml:"rules,flow" toml:"rules"`
	World       WorldConfig `yaml:"world" toml:"world"`
	Mouse       MouseConfig `yaml:"mouse" toml:"mouse"`
}

type WorldConfig struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

type MouseConfig struct {
	Strength float64 `yaml:"strength" toml:"strength"`
	Radius   float64 `yaml:"radius" toml:"radius"`
}

// DefaultRules is the three-type matrix the interactive viewer starts with.
func DefaultRules() [][]float64 {
	return [][]float64{
		{-0.32, -0.17, 0.34},
		{0.15, -0.1, -0.34},
		{-0.2, 0.1, 0.15},
	}
}

func DefaultConfig() *Config {
	return &Config{
		Particles:   DefaultParticles,
		Types:       DefaultTypes,
		Dt:          DefaultDt,
		Speed:       DefaultSpeed,
		Ticks:       DefaultTicks,
		SampleEvery: DefaultSampleEvery,
		Spawn:       "uniform",
		Rules:       DefaultRules(),
		World:       WorldConfig{Width: DefaultWidth, Height: DefaultHeight},
		Mouse:       MouseConfig{Strength: DefaultMouseStrength, Radius: DefaultMouseRadius},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or TOML file (chosen by extension) over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	// explicit rules in the file replace the defaults entirely
	cfg.Rules = nil
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Rules == nil && !cfg.Randomize && cfg.Types == DefaultTypes {
		cfg.Rules = DefaultRules()
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field against the engine's limits.
func (c *Config) Validate() error {
	if c.Particles < 0 || c.Particles > particles.MaxParticles {
		return fmt.Errorf("particles %d: %w", c.Particles, dynamo.ErrParticleCount)
	}
	if c.Types < 1 || c.Types > particles.MaxTypes {
		return fmt.Errorf("types %d: %w", c.Types, dynamo.ErrTypeCount)
	}
	if !(c.World.Width > 0 && c.World.Height > 0) {
		return fmt.Errorf("world %vx%v: %w", c.World.Width, c.World.Height, dynamo.ErrWorldSize)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("dt %v: %w", c.Dt, dynamo.ErrTimestep)
	}
	if c.Speed < 0 {
		return fmt.Errorf("speed %v: %w", c.Speed, dynamo.ErrParameterBounds)
	}
	if c.Ticks < 0 || c.SampleEvery < 1 {
		return fmt.Errorf("ticks %d sample_every %d: %w", c.Ticks, c.SampleEvery, dynamo.ErrParameterBounds)
	}
	if c.Mouse.Radius < 0 {
		return fmt.Errorf("mouse radius %v: %w", c.Mouse.Radius, dynamo.ErrParameterBounds)
	}
	if _, err := spawn.ByName(c.Spawn, 0); err != nil {
		return err
	}
	if len(c.Rules) > 0 && len(c.Rules) != c.Types {
		return fmt.Errorf("%d rule rows for %d types: %w", len(c.Rules), c.Types, dynamo.ErrDimensionMismatch)
	}
	if _, err := particles.MatrixFromRows(c.Rules); err != nil {
		return err
	}
	return nil
}

// Matrix converts Rules into an engine matrix. Missing rules give a zero matrix.
func (c *Config) Matrix() (particles.Matrix, error) {
	return particles.MatrixFromRows(c.Rules)
}

// Step is the per-tick timestep after applying Speed.
func (c *Config) Step() float32 {
	return float32(c.Dt * c.Speed)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Rules != nil {
		out.Rules = make([][]float64, len(c.Rules))
		for i, row := range c.Rules {
			out.Rules[i] = append([]float64(nil), row...)
		}
	}
	return &out
}
