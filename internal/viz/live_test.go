package viz

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/nucleon/internal/config"
	"github.com/san-kum/nucleon/internal/particles"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Particles = 300
	cfg.World.Width, cfg.World.Height = 400, 300
	sys, err := particles.New(cfg.Particles, cfg.Types, 400, 300, particles.WithSeed(1), particles.WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}
	m, err := cfg.Matrix()
	if err != nil {
		t.Fatal(err)
	}
	sys.SetMatrix(m)
	return NewModel(sys, cfg, filepath.Join(t.TempDir(), "live.gif"))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModelTickAdvances(t *testing.T) {
	m := newTestModel(t)
	m = send(m, TickMsg(time.Now()), TickMsg(time.Now()))

	if m.sys.Tick() != 2 {
		t.Errorf("tick = %d, want 2", m.sys.Tick())
	}
	if len(m.energyHistory) != 2 {
		t.Errorf("energy history has %d entries", len(m.energyHistory))
	}
}

func TestModelPause(t *testing.T) {
	m := newTestModel(t)
	m = send(m, key(" "), TickMsg(time.Now()))

	if m.sys.Tick() != 0 {
		t.Error("paused model stepped")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should show PAUSED")
	}
}

func TestModelRandomize(t *testing.T) {
	m := newTestModel(t)
	before := m.sys.Matrix()
	m = send(m, key("r"))
	if m.sys.Matrix() == before {
		t.Error("matrix unchanged after r")
	}
}

func TestModelTypes(t *testing.T) {
	m := newTestModel(t)
	m = send(m, key("T"))
	if m.sys.NumTypes() != 4 || m.sys.Count() != 300 {
		t.Errorf("got %d types, %d particles", m.sys.NumTypes(), m.sys.Count())
	}
	m = send(m, key("t"), key("t"), key("t"), key("t"))
	if m.sys.NumTypes() != 1 {
		t.Errorf("types should stop at 1, got %d", m.sys.NumTypes())
	}
}

func TestModelCursorWraps(t *testing.T) {
	m := newTestModel(t)
	m.cursorX, m.cursorY = 10, 10
	m = send(m, key("left"), key("up"))

	if m.cursorX != 390 || m.cursorY != 290 {
		t.Errorf("cursor at %v,%v", m.cursorX, m.cursorY)
	}
}

func TestModelBurst(t *testing.T) {
	m := newTestModel(t)
	m = send(m, key("d"))
	if m.force != -1 || m.burst != burstTicks {
		t.Fatalf("force %v burst %d", m.force, m.burst)
	}
	m = send(m, TickMsg(time.Now()))
	if m.burst != burstTicks-1 {
		t.Errorf("burst = %d", m.burst)
	}
}

func TestModelMouse(t *testing.T) {
	m := newTestModel(t)
	press := tea.MouseMsg{X: 2, Y: 1, Button: tea.MouseButtonRight, Action: tea.MouseActionPress}
	m = send(m, press)
	if !m.held || m.force != 1 {
		t.Errorf("right press: held=%v force=%v", m.held, m.force)
	}
	if m.cursorX > 10 || m.cursorY > 10 {
		t.Errorf("cursor should be top-left, got %v,%v", m.cursorX, m.cursorY)
	}

	m = send(m, tea.MouseMsg{X: 2, Y: 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	if m.held {
		t.Error("release should stop the force")
	}
}

func TestModelResize(t *testing.T) {
	m := newTestModel(t)
	m = send(m, tea.WindowSizeMsg{Width: 140, Height: 40})
	if m.canvas.Width != 140-sidebarWidth-6 || m.canvas.Height != 38 {
		t.Errorf("canvas %dx%d", m.canvas.Width, m.canvas.Height)
	}
}

func TestModelRecording(t *testing.T) {
	m := newTestModel(t)
	m = send(m, key("g"), TickMsg(time.Now()), TickMsg(time.Now()))
	if m.recorder.Frames() != 2 {
		t.Fatalf("frames = %d", m.recorder.Frames())
	}
	m = send(m, key("g"))
	if m.recording || !strings.Contains(m.status, "saved 2 frames") {
		t.Errorf("status %q", m.status)
	}
}

func TestModelThemeCycle(t *testing.T) {
	m := newTestModel(t)
	m = send(m, key("c"))
	if m.theme.Name != Themes[1].Name {
		t.Errorf("theme = %s", m.theme.Name)
	}
}

func TestModelEditRule(t *testing.T) {
	m := newTestModel(t)
	m = send(m, key("]"), key("]"), key("]"), key("]"))
	if m.rule != (RuleCursor{A: 1, B: 1}) {
		t.Fatalf("rule cursor at %+v", m.rule)
	}

	before := m.sys.Attraction(1, 1)
	m = send(m, key(">"), key(">"))
	want := min(before+2*RuleStep, 1)
	if got := m.sys.Attraction(1, 1); math.Abs(float64(got-want)) > 1e-6 {
		t.Errorf("rule 1->1 = %v, want %v", got, want)
	}
	if !strings.Contains(m.View(), "1->1") {
		t.Error("sidebar should name the selected rule")
	}

	m = send(m, key("["), key("["), key("["), key("["), key("["))
	if m.rule != (RuleCursor{A: 2, B: 2}) {
		t.Errorf("cursor should wrap backwards, at %+v", m.rule)
	}
}

func TestModelRuleClamped(t *testing.T) {
	m := newTestModel(t)
	m.sys.SetAttraction(0, 0, 0.98)
	m = send(m, key(">"), key(">"))
	if got := m.sys.Attraction(0, 0); got != 1 {
		t.Errorf("rule = %v, want 1", got)
	}
	m.sys.SetAttraction(0, 0, -0.99)
	m = send(m, key("<"))
	if got := m.sys.Attraction(0, 0); got != -1 {
		t.Errorf("rule = %v, want -1", got)
	}
}

func TestModelParticleCount(t *testing.T) {
	m := newTestModel(t)
	rules := m.sys.Matrix()

	m = send(m, key("N"))
	if m.sys.Count() != 300+CountStep {
		t.Fatalf("count = %d", m.sys.Count())
	}
	if m.sys.Matrix() != rules {
		t.Error("rules should survive a particle count change")
	}

	m = send(m, key("n"), key("n"))
	if m.sys.Count() != MinCount {
		t.Errorf("count = %d, want floor %d", m.sys.Count(), MinCount)
	}
	if m.sys.NumTypes() != 3 {
		t.Errorf("types changed to %d", m.sys.NumTypes())
	}
}

func TestModelMouseSettings(t *testing.T) {
	m := newTestModel(t)
	m = send(m, key("F"), key("F"))
	if m.cfg.Mouse.Strength != config.DefaultMouseStrength+2*MouseStrengthStep {
		t.Errorf("strength = %v", m.cfg.Mouse.Strength)
	}
	for i := 0; i < 10; i++ {
		m = send(m, key("f"))
	}
	if m.cfg.Mouse.Strength != 0 {
		t.Errorf("strength should floor at 0, got %v", m.cfg.Mouse.Strength)
	}

	m = send(m, key("Z"))
	if m.cfg.Mouse.Radius != config.DefaultMouseRadius*MouseRadiusFactor {
		t.Errorf("radius = %v", m.cfg.Mouse.Radius)
	}
	for i := 0; i < 40; i++ {
		m = send(m, key("z"))
	}
	if m.cfg.Mouse.Radius != MinMouseRadius {
		t.Errorf("radius should floor at %v, got %v", MinMouseRadius, m.cfg.Mouse.Radius)
	}
}

func TestModelTypesClampRuleCursor(t *testing.T) {
	m := newTestModel(t)
	m.rule = RuleCursor{A: 2, B: 2}
	m = send(m, key("t"))
	if m.rule != (RuleCursor{A: 1, B: 1}) {
		t.Errorf("rule cursor %+v after dropping a type", m.rule)
	}
}
