package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/nucleon/internal/config"
	"github.com/san-kum/nucleon/internal/experiment"
	"github.com/san-kum/nucleon/internal/particles"
)

const (
	metadataFile  = "metadata.json"
	metricsFile   = "metrics.csv"
	particlesFile = "particles.csv"
)

type Store struct {
	baseDir string
	logger  *log.Logger
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, logger: log.Default()}
}

func (s *Store) SetLogger(l *log.Logger) { s.logger = l }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Particles int                `json:"particles"`
	Types     int                `json:"types"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Dt        float64            `json:"dt"`
	Speed     float64            `json:"speed"`
	Ticks     int                `json:"ticks"`
	Spawn     string             `json:"spawn"`
	Rules     [][]float64        `json:"rules"`
	Elapsed   float64            `json:"elapsed_seconds"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Config rebuilds the configuration that produced the run.
func (m *RunMetadata) Config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Particles = m.Particles
	cfg.Types = m.Types
	cfg.World = config.WorldConfig{Width: m.Width, Height: m.Height}
	cfg.Seed = m.Seed
	cfg.Dt = m.Dt
	cfg.Speed = m.Speed
	cfg.Ticks = m.Ticks
	cfg.Spawn = m.Spawn
	cfg.Rules = m.Rules
	cfg.Randomize = false
	return cfg
}

// Save writes a run directory holding metadata, the sampled metric series and
// the final particle snapshot. It returns the run id.
func (s *Store) Save(name string, cfg *config.Config, res *experiment.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	now := time.Now()
	runID, err := s.reserve(fmt.Sprintf("%s_%d", name, now.Unix()))
	if err != nil {
		return "", err
	}
	runDir := s.Dir(runID)

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: now,
		Seed:      res.Seed,
		Particles: res.Final.Len(),
		Types:     res.Final.NumTypes,
		Width:     float64(res.Final.Width),
		Height:    float64(res.Final.Height),
		Dt:        cfg.Dt,
		Speed:     cfg.Speed,
		Ticks:     res.Ticks,
		Spawn:     cfg.Spawn,
		Rules:     res.Final.Matrix.Rows(res.Final.NumTypes),
		Elapsed:   res.Elapsed.Seconds(),
		Metrics:   res.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, metricsFile), func(w io.Writer) error {
		return WriteSeriesCSV(w, res)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, particlesFile), func(w io.Writer) error {
		return WriteParticlesCSV(w, res.Final.View)
	}); err != nil {
		return "", err
	}

	s.logger.Debug("run saved", "id", runID, "dir", runDir)
	return runID, nil
}

// reserve creates a fresh run directory, suffixing id on collision.
func (s *Store) reserve(id string) (string, error) {
	candidate := id
	for i := 1; ; i++ {
		err := os.Mkdir(s.Dir(candidate), 0755)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
		candidate = fmt.Sprintf("%s_%d", id, i)
	}
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteSeriesCSV writes one row per sample: tick, time, then each metric
// in name order.
func WriteSeriesCSV(w io.Writer, res *experiment.Result) error {
	names := make([]string, 0, len(res.Series))
	for name := range res.Series {
		names = append(names, name)
	}
	sort.Strings(names)

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"tick", "time"}, names...)); err != nil {
		return err
	}
	for i := range res.Times {
		row := []string{strconv.Itoa(res.Samples[i]), formatFloat(res.Times[i])}
		for _, name := range names {
			series := res.Series[name]
			if i < len(series) {
				row = append(row, formatFloat(series[i]))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteParticlesCSV(w io.Writer, v particles.View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "y", "vx", "vy", "type"}); err != nil {
		return err
	}
	for i := 0; i < v.Len(); i++ {
		row := []string{
			formatFloat(float64(v.X[i])),
			formatFloat(float64(v.Y[i])),
			formatFloat(float64(v.VX[i])),
			formatFloat(float64(v.VY[i])),
			strconv.Itoa(int(v.Type[i])),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			s.logger.Debug("skipping run", "dir", entry.Name(), "err", err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Series is a metric time series read back from metrics.csv.
type Series struct {
	Names  []string             `json:"names"`
	Ticks  []int                `json:"ticks"`
	Times  []float64            `json:"times"`
	Values map[string][]float64 `json:"values"`
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	records, err := readCSV(filepath.Join(s.Dir(runID), metricsFile))
	if err != nil {
		return nil, err
	}
	out := &Series{Values: make(map[string][]float64)}
	if len(records) == 0 {
		return out, nil
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%s: malformed header", metricsFile)
	}
	out.Names = header[2:]

	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		tick, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		out.Ticks = append(out.Ticks, tick)
		out.Times = append(out.Times, t)
		for j, name := range out.Names {
			v := 0.0
			if j+2 < len(record) {
				v, _ = strconv.ParseFloat(record[j+2], 64)
			}
			out.Values[name] = append(out.Values[name], v)
		}
	}
	return out, nil
}

// LoadParticles reads the final snapshot of a run. The result is for
// inspection and export only.
func (s *Store) LoadParticles(runID string) (particles.View, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return particles.View{}, err
	}
	records, err := readCSV(filepath.Join(s.Dir(runID), particlesFile))
	if err != nil {
		return particles.View{}, err
	}

	v := particles.View{NumTypes: meta.Types, Width: float32(meta.Width), Height: float32(meta.Height)}
	for _, record := range records[min(1, len(records)):] {
		if len(record) < 5 {
			continue
		}
		var f [4]float64
		ok := true
		for k := 0; k < 4; k++ {
			if f[k], err = strconv.ParseFloat(record[k], 64); err != nil {
				ok = false
				break
			}
		}
		typ, err := strconv.Atoi(record[4])
		if !ok || err != nil || typ < 0 || typ >= particles.MaxTypes {
			continue
		}
		v.X = append(v.X, float32(f[0]))
		v.Y = append(v.Y, float32(f[1]))
		v.VX = append(v.VX, float32(f[2]))
		v.VY = append(v.VY, float32(f[3]))
		v.Type = append(v.Type, uint8(typ))
	}
	return v, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

type ExportData struct {
	Metadata *RunMetadata `json:"metadata"`
	Series   *Series      `json:"series"`
}

// ExportJSON writes a run's metadata and metric series as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Metadata: meta, Series: series})
}
