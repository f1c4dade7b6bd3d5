package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/san-kum/nucleon/internal/config"
	"github.com/san-kum/nucleon/internal/experiment"
)

func runSmall(t *testing.T) (*config.Config, *experiment.Result) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Particles = 120
	cfg.World = config.WorldConfig{Width: 320, Height: 240}
	cfg.Ticks = 10
	cfg.SampleEvery = 5
	cfg.Seed = 42

	exp, err := experiment.New(cfg, experiment.WithLogger(log.New(io.Discard)))
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return cfg, res
}

func newStore(t *testing.T) *Store {
	st := New(t.TempDir())
	st.SetLogger(log.New(io.Discard))
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return st
}

func TestStoreSaveLoad(t *testing.T) {
	st := newStore(t)
	cfg, res := runSmall(t)

	runID, err := st.Save("test", cfg, res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" {
		t.Errorf("expected name 'test', got '%s'", meta.Name)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Particles != 120 || meta.Types != 3 || meta.Ticks != 10 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if len(meta.Rules) != 3 || meta.Rules[0][2] < 0.33 {
		t.Errorf("unexpected rules %v", meta.Rules)
	}
	if meta.Metrics["kinetic_energy"] != res.Metrics["kinetic_energy"] {
		t.Errorf("metric mismatch")
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(series.Times) != 3 || len(series.Ticks) != 3 {
		t.Errorf("expected 3 samples, got %d", len(series.Times))
	}
	if series.Ticks[2] != 10 {
		t.Errorf("last sample tick %d", series.Ticks[2])
	}
	if len(series.Values["max_speed"]) != 3 {
		t.Errorf("max_speed series %v", series.Values["max_speed"])
	}

	v, err := st.LoadParticles(runID)
	if err != nil {
		t.Fatalf("load particles failed: %v", err)
	}
	if v.Len() != 120 || v.Width != 320 {
		t.Errorf("unexpected particles: %d in %v", v.Len(), v.Width)
	}
	if v.Type[7] != res.Final.Type[7] {
		t.Errorf("type mismatch at 7")
	}
}

func TestStoreRebuildConfig(t *testing.T) {
	st := newStore(t)
	cfg, res := runSmall(t)
	runID, err := st.Save("replay", cfg, res)
	if err != nil {
		t.Fatal(err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}

	replay := meta.Config()
	if err := replay.Validate(); err != nil {
		t.Fatalf("rebuilt config invalid: %v", err)
	}
	if replay.Seed != 42 || replay.World.Width != 320 {
		t.Errorf("unexpected replay config %+v", replay)
	}
}

func TestStoreList(t *testing.T) {
	st := newStore(t)
	cfg, res := runSmall(t)

	for i := 0; i < 3; i++ {
		if _, err := st.Save("same", cfg, res); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}
	// junk entries are skipped
	if err := os.Mkdir(filepath.Join(st.baseDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("expected 3 runs, got %d", len(runs))
	}
	seen := map[string]bool{}
	for _, r := range runs {
		if seen[r.ID] {
			t.Errorf("duplicate id %s", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := newStore(t)
	if _, err := st.Load("ghost"); err == nil {
		t.Error("expected error")
	}
}

func TestExportJSON(t *testing.T) {
	st := newStore(t)
	cfg, res := runSmall(t)
	runID, err := st.Save("json", cfg, res)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Metadata.ID != runID || len(got.Series.Times) != 3 {
		t.Errorf("unexpected export %+v", got)
	}
}

func TestWriteSeriesCSV(t *testing.T) {
	res := &experiment.Result{
		Times:   []float64{0, 0.5},
		Samples: []int{0, 30},
		Series: map[string][]float64{
			"b": {1, 2},
			"a": {3},
		},
	}
	var buf bytes.Buffer
	if err := WriteSeriesCSV(&buf, res); err != nil {
		t.Fatal(err)
	}
	want := "tick,time,a,b\n0,0.000000,3.000000,1.000000\n30,0.500000,,2.000000\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
