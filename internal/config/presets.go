package config

import "sort"

var Presets = map[string]*Config{
	"nucleon": {
		Particles: 5000, Types: 3, Dt: 0.016, Speed: 1, Ticks: 600, SampleEvery: 10,
		Spawn: "uniform", Rules: DefaultRules(),
		World: WorldConfig{Width: 1600, Height: 900},
		Mouse: MouseConfig{Strength: 5, Radius: 150},
	},
	"snakes": {
		Particles: 4000, Types: 4, Dt: 0.016, Speed: 1, Ticks: 900, SampleEvery: 15,
		Spawn: "uniform",
		Rules: [][]float64{
			{0.6, 0.4, -0.1, -0.3},
			{-0.3, 0.6, 0.4, -0.1},
			{-0.1, -0.3, 0.6, 0.4},
			{0.4, -0.1, -0.3, 0.6},
		},
		World: WorldConfig{Width: 1600, Height: 900},
		Mouse: MouseConfig{Strength: 5, Radius: 150},
	},
	"cells": {
		Particles: 3000, Types: 2, Dt: 0.016, Speed: 1, Ticks: 600, SampleEvery: 10,
		Spawn: "perlin",
		Rules: [][]float64{
			{0.8, -0.4},
			{0.6, 0.2},
		},
		World: WorldConfig{Width: 1200, Height: 800},
		Mouse: MouseConfig{Strength: 5, Radius: 150},
	},
	"repel": {
		Particles: 2000, Types: 2, Dt: 0.016, Speed: 1, Ticks: 300, SampleEvery: 5,
		Spawn: "uniform",
		Rules: [][]float64{
			{0.3, -1},
			{-1, 0.3},
		},
		World: WorldConfig{Width: 800, Height: 600},
		Mouse: MouseConfig{Strength: 5, Radius: 150},
	},
	"chaos": {
		Particles: 8000, Types: 6, Dt: 0.016, Speed: 1.5, Ticks: 600, SampleEvery: 10,
		Spawn: "uniform", Randomize: true,
		World: WorldConfig{Width: 1920, Height: 1080},
		Mouse: MouseConfig{Strength: 8, Radius: 200},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
