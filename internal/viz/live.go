package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/nucleon/internal/config"
	"github.com/san-kum/nucleon/internal/metrics"
	"github.com/san-kum/nucleon/internal/particles"
)

const (
	width           = 80
	height          = 24
	sidebarWidth    = 45
	historyCapacity = 600
	burstTicks      = 15
	cursorStep      = 20
	maxSpeed        = 8.0
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a particle system at 60 Hz and draws it next to a stats
// sidebar. Mouse buttons and A/D apply a radial force at the cursor.
type Model struct {
	sys *particles.System
	cfg *config.Config

	canvas  *Canvas
	theme   Theme
	running bool
	speed   float64

	cursorX, cursorY float32
	rule             RuleCursor
	// force is the sign of the active push (-1 repel, +1 attract).
	force float32
	burst int
	held  bool

	energy        *metrics.KineticEnergy
	energyHistory []float64

	recorder  *GIFRecorder
	recording bool
	gifPath   string
	status    string
	showHelp  bool
}

func NewModel(sys *particles.System, cfg *config.Config, gifPath string) Model {
	if gifPath == "" {
		gifPath = "nucleon.gif"
	}
	return Model{
		sys:           sys,
		cfg:           cfg,
		canvas:        NewCanvas(width, height),
		theme:         Themes[0],
		running:       true,
		speed:         cfg.Speed,
		cursorX:       sys.Width() / 2,
		cursorY:       sys.Height() / 2,
		energy:        metrics.NewKineticEnergy(),
		energyHistory: make([]float64, 0, historyCapacity),
		recorder:      NewGIFRecorder(int(sys.Width())/2, int(sys.Height())/2, 1),
		gifPath:       gifPath,
	}
}

// Run opens the live view on the alternate screen with mouse tracking.
func Run(sys *particles.System, cfg *config.Config, gifPath string) error {
	p := tea.NewProgram(NewModel(sys, cfg, gifPath), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		w := msg.Width - sidebarWidth - 6
		h := msg.Height - 2
		if w < 20 {
			w = 20
		}
		if h < 8 {
			h = 8
		}
		m.canvas = NewCanvas(w, h)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.recording {
			m.stopRecording()
		}
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		m.sys.RandomizeRules()
		m.status = "rules randomized"
	case "p":
		m.sys.ResetParticles()
		m.energyHistory = m.energyHistory[:0]
		m.status = "particles reset"
	case "up":
		m.moveCursor(0, -cursorStep)
	case "down":
		m.moveCursor(0, cursorStep)
	case "left":
		m.moveCursor(-cursorStep, 0)
	case "right":
		m.moveCursor(cursorStep, 0)
	case "a":
		m.force, m.burst = 1, burstTicks
	case "d":
		m.force, m.burst = -1, burstTicks
	case "+", "=":
		m.speed *= 1.25
		if m.speed > maxSpeed {
			m.speed = maxSpeed
		}
	case "-", "_":
		m.speed /= 1.25
	case "T":
		m.setTypes(m.sys.NumTypes() + 1)
	case "t":
		m.setTypes(m.sys.NumTypes() - 1)
	case "c":
		m.theme = NextTheme(m.theme)
	case "g":
		if m.recording {
			m.stopRecording()
		} else {
			m.recorder.Reset()
			m.recording = true
			m.status = "recording"
		}
	case "[":
		m.rule = m.rule.Move(-1, m.sys.NumTypes())
	case "]":
		m.rule = m.rule.Move(1, m.sys.NumTypes())
	case "<", ",":
		m.nudgeRule(-RuleStep)
	case ">", ".":
		m.nudgeRule(RuleStep)
	case "n":
		m.resize(m.sys.Count() - CountStep)
	case "N":
		m.resize(m.sys.Count() + CountStep)
	case "f":
		StepMouseStrength(&m.cfg.Mouse, -MouseStrengthStep)
		m.status = fmt.Sprintf("mouse force %.1f", m.cfg.Mouse.Strength)
	case "F":
		StepMouseStrength(&m.cfg.Mouse, MouseStrengthStep)
		m.status = fmt.Sprintf("mouse force %.1f", m.cfg.Mouse.Strength)
	case "z":
		ScaleMouseRadius(&m.cfg.Mouse, 1/MouseRadiusFactor)
		m.status = fmt.Sprintf("mouse radius %.0f", m.cfg.Mouse.Radius)
	case "Z":
		ScaleMouseRadius(&m.cfg.Mouse, MouseRadiusFactor)
		m.status = fmt.Sprintf("mouse radius %.0f", m.cfg.Mouse.Radius)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// handleMouse maps terminal cells under the canvas to world coordinates.
// Left button repels, right attracts, for as long as it is held.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	col := msg.X - 2
	row := msg.Y - 1
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		m.held = false
		return
	}
	m.cursorX = (float32(col) + 0.5) / float32(m.canvas.Width) * m.sys.Width()
	m.cursorY = (float32(row) + 0.5) / float32(m.canvas.Height) * m.sys.Height()

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.force, m.held = -1, true
		case tea.MouseButtonRight:
			m.force, m.held = 1, true
		}
	case tea.MouseActionRelease:
		m.held = false
	}
}

func (m *Model) nudgeRule(delta float32) {
	v := NudgeRule(m.sys, m.rule, delta)
	m.status = fmt.Sprintf("rule %d->%d = %+.2f", m.rule.A, m.rule.B, v)
}

func (m *Model) resize(count int) {
	if err := ResizeParticles(m.sys, count); err != nil {
		m.status = err.Error()
		return
	}
	m.energyHistory = m.energyHistory[:0]
	m.status = fmt.Sprintf("%d particles", m.sys.Count())
}

func (m *Model) moveCursor(dx, dy float32) {
	w, h := m.sys.Width(), m.sys.Height()
	m.cursorX = wrapf(m.cursorX+dx, w)
	m.cursorY = wrapf(m.cursorY+dy, h)
}

func wrapf(v, size float32) float32 {
	for v < 0 {
		v += size
	}
	for v >= size {
		v -= size
	}
	return v
}

// setTypes changes the type count in place, keeping the particle count.
// New rules are drawn since rows for added types would otherwise be zero.
func (m *Model) setTypes(n int) {
	if n < 1 || n > particles.MaxTypes {
		return
	}
	if err := m.sys.Reinit(m.sys.Count(), n); err != nil {
		m.status = err.Error()
		return
	}
	m.sys.RandomizeRules()
	m.rule = m.rule.Clamp(n)
	m.energyHistory = m.energyHistory[:0]
	m.status = fmt.Sprintf("%d types", n)
}

func (m *Model) stopRecording() {
	m.recording = false
	if err := m.recorder.Save(m.gifPath); err != nil {
		m.status = "gif: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("saved %d frames to %s", m.recorder.Frames(), m.gifPath)
}

// step applies any active cursor force and advances one tick. Timesteps
// below MinStep leave particles where they are.
func (m *Model) step() {
	if m.held || m.burst > 0 {
		m.sys.ApplyMouseForce(m.cursorX, m.cursorY,
			m.force*float32(m.cfg.Mouse.Strength), float32(m.cfg.Mouse.Radius))
		if m.burst > 0 {
			m.burst--
		}
	}

	dt := float32(m.cfg.Dt * m.speed)
	if dt >= particles.MinStep {
		m.sys.Update(dt)
	}

	v := m.sys.View()
	m.energy.Observe(v, 0)
	m.energyHistory = append(m.energyHistory, m.energy.Value())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}

	if m.recording {
		if img := m.recorder.Capture(v); img != nil {
			sx := float32(m.recorder.Width) / m.sys.Width()
			DrawRing(img, int(m.cursorX*sx), int(m.cursorY*sx), int(float32(m.cfg.Mouse.Radius)*sx))
		} else {
			m.stopRecording()
		}
	}
}

func (m Model) View() string {
	m.canvas.Clear()
	m.canvas.Plot(m.sys.View())
	cx, cy := m.canvas.Project(m.cursorX, m.cursorY, m.sys.Width(), m.sys.Height())
	r := int(float32(m.cfg.Mouse.Radius) / m.sys.Width() * float32(m.canvas.SubWidth()))
	m.canvas.DrawCircle(cx, cy, r)
	canvasView := canvasStyle.Render(m.canvas.Render(m.theme.Cursor))

	sidebar := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(m.theme.Border).
		Padding(1, 2).
		Width(sidebarWidth).
		Render(m.sidebar())

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, sidebar)
	if m.showHelp {
		return m.help() + "\n" + main
	}
	return main
}

func (m Model) sidebar() string {
	header := lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true).MarginBottom(1)
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)

	var s strings.Builder
	s.WriteString(header.Render("NUCLEON") + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	if m.recording {
		status += "  ● REC " + fmt.Sprint(m.recorder.Frames())
	}
	s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Accent).Render(status) + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Tick", fmt.Sprint(m.sys.Tick()))
	row("Particles", fmt.Sprint(m.sys.Count()))
	row("Speed", fmt.Sprintf("%.2fx  dt=%.4f", m.speed, m.cfg.Dt*m.speed))
	row("Cursor", fmt.Sprintf("%.0f, %.0f", m.cursorX, m.cursorY))
	row("Mouse", fmt.Sprintf("force %.1f  r=%.0f", m.cfg.Mouse.Strength, m.cfg.Mouse.Radius))
	energy := 0.0
	if n := len(m.energyHistory); n > 0 {
		energy = m.energyHistory[n-1]
	}
	row("Energy", fmt.Sprintf("%.3f", energy))

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("kinetic energy"))
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Accent).Render(chart) + "\n")
	}

	s.WriteString("\n" + header.Render("TYPES") + "\n")
	counts := m.sys.TypeCounts()
	total := m.sys.Count()
	for t, n := range counts {
		c := TypeColor(t)
		style := lipgloss.NewStyle().Foreground(c.Lip())
		frac := 0.0
		if total > 0 {
			frac = float64(n) / float64(total)
		}
		s.WriteString(fmt.Sprintf("%s %-7s %s %5d\n", style.Render("●"), c.Name, Bar(frac, 12, style), n))
	}

	s.WriteString("\n" + header.Render("RULES") + "\n")
	s.WriteString(m.matrixView())
	s.WriteString(muted.Render(fmt.Sprintf("%d->%d %+.2f", m.rule.A, m.rule.B, m.sys.Attraction(m.rule.A, m.rule.B))) + "\n")

	if m.status != "" {
		s.WriteString("\n" + muted.Render(m.status) + "\n")
	}
	s.WriteString(muted.Render("\nSP:Pause R:Rules P:Reset Q:Quit\nA/D:Push []:Rule <>:Edit ?:Help"))
	return s.String()
}

// matrixView draws the active block of the attraction matrix, rows are the
// acting type. The selected cell is shown in reverse video.
func (m Model) matrixView() string {
	n := m.sys.NumTypes()
	var b strings.Builder
	b.WriteString("  ")
	for j := 0; j < n; j++ {
		b.WriteString(lipgloss.NewStyle().Foreground(TypeColor(j).Lip()).Render("●"))
	}
	b.WriteByte('\n')
	for i := 0; i < n; i++ {
		b.WriteString(lipgloss.NewStyle().Foreground(TypeColor(i).Lip()).Render("●") + " ")
		for j := 0; j < n; j++ {
			b.WriteString(matrixCell(m.sys.Attraction(i, j), i == m.rule.A && j == m.rule.B))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) help() string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(0, 1).
		Render(`Space   pause / resume
R       randomize rules
P       reset particles
Arrows  move cursor
A / D   attract / repel at cursor
Mouse   left repels, right attracts
+ / -   simulation speed
T / t   more / fewer types
[ / ]   select rule
< / >   lower / raise rule by 0.05
N / n   more / fewer particles
F / f   mouse force up / down
Z / z   mouse radius up / down
C       cycle theme
G       start / stop GIF recording
?       toggle help
Q       quit`)
}
