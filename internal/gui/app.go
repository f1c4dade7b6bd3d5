package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/nucleon/internal/config"
	"github.com/san-kum/nucleon/internal/particles"
	"github.com/san-kum/nucleon/internal/viz"
)

var (
	ColBg      = rl.NewColor(0, 0, 0, 255)
	ColFade    = rl.NewColor(0, 0, 0, 60)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColCursor  = rl.NewColor(255, 255, 255, 90)
)

const (
	maxWindowW = 1600
	maxWindowH = 900
	maxSpeed   = 8.0
)

// App drives a particle system in a raylib window. Holding the left mouse
// button repels particles near the cursor, the right button attracts them.
type App struct {
	Sys *particles.System
	Cfg *config.Config

	Running   bool
	Rule      viz.RuleCursor
	Speed     float64
	Glow      bool
	Trails    bool
	ShowHUD   bool
	Scale     float32
	ScreenW   int32
	ScreenH   int32
	Font      rl.Font
	GlowTex   rl.Texture2D
	TrailTex  rl.RenderTexture2D
	Energy    []float64
	MaxEnergy int
}

// fitWindow picks a window size that keeps the world's aspect ratio inside
// the given bounds, and the world-to-screen scale.
func fitWindow(worldW, worldH float32, maxW, maxH int32) (int32, int32, float32) {
	scale := float32(1)
	if sx := float32(maxW) / worldW; sx < scale {
		scale = sx
	}
	if sy := float32(maxH) / worldH; sy < scale {
		scale = sy
	}
	return int32(worldW * scale), int32(worldH * scale), scale
}

// mouseStrength maps held buttons to a signed force.
func mouseStrength(left, right bool, base float64) float32 {
	switch {
	case left:
		return -float32(base)
	case right:
		return float32(base)
	}
	return 0
}

// typeKey returns the type count for a number key, 0 meaning ten.
func typeKey(k int32) (int, bool) {
	switch {
	case k == rl.KeyZero:
		return 10, true
	case k >= rl.KeyTwo && k <= rl.KeyNine:
		return int(k-rl.KeyZero), true
	}
	return 0, false
}

func NewApp(sys *particles.System, cfg *config.Config) *App {
	w, h, scale := fitWindow(sys.Width(), sys.Height(), maxWindowW, maxWindowH)
	return &App{
		Sys:       sys,
		Cfg:       cfg,
		Running:   true,
		Speed:     cfg.Speed,
		Glow:      true,
		ShowHUD:   true,
		Scale:     scale,
		ScreenW:   w,
		ScreenH:   h,
		MaxEnergy: 200,
		Energy:    make([]float64, 0, 200),
	}
}

// Run opens the window and blocks until it is closed.
func Run(sys *particles.System, cfg *config.Config) {
	app := NewApp(sys, cfg)
	rl.InitWindow(app.ScreenW, app.ScreenH, "nucleon")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)

	app.load()
	defer app.unload()
	app.RunLoop()
}

func (a *App) load() {
	a.Font = rl.GetFontDefault()

	img := rl.GenImageGradientRadial(32, 32, 0.0, rl.White, rl.NewColor(0, 0, 0, 0))
	a.GlowTex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	a.TrailTex = rl.LoadRenderTexture(a.ScreenW, a.ScreenH)
}

func (a *App) unload() {
	rl.UnloadTexture(a.GlowTex)
	rl.UnloadRenderTexture(a.TrailTex)
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

// Update handles input and advances one tick. It returns false on quit.
func (a *App) Update() bool {
	for k := rl.GetKeyPressed(); k != 0; k = rl.GetKeyPressed() {
		if !a.handleKey(k, rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)) {
			return false
		}
	}

	if !a.Running {
		return true
	}

	if s := mouseStrength(rl.IsMouseButtonDown(rl.MouseLeftButton), rl.IsMouseButtonDown(rl.MouseRightButton), a.Cfg.Mouse.Strength); s != 0 {
		m := rl.GetMousePosition()
		a.Sys.ApplyMouseForce(m.X/a.Scale, m.Y/a.Scale, s, float32(a.Cfg.Mouse.Radius))
	}

	dt := float32(a.Cfg.Dt * a.Speed)
	if dt >= particles.MinStep {
		a.Sys.Update(dt)
	}
	a.recordEnergy()
	return true
}

// handleKey applies one pressed key. Shift reverses the mouse setting keys.
// It returns false on quit.
func (a *App) handleKey(k int32, shift bool) bool {
	switch k {
	case rl.KeyQ, rl.KeyEscape:
		return false
	case rl.KeySpace:
		a.Running = !a.Running
	case rl.KeyR:
		a.Sys.RandomizeRules()
	case rl.KeyP:
		a.Sys.ResetParticles()
		a.Energy = a.Energy[:0]
	case rl.KeyG:
		a.Glow = !a.Glow
	case rl.KeyT:
		a.Trails = !a.Trails
	case rl.KeyH:
		a.ShowHUD = !a.ShowHUD
	case rl.KeyUp:
		a.Speed = min(a.Speed*1.25, maxSpeed)
	case rl.KeyDown:
		a.Speed /= 1.25
	case rl.KeyLeftBracket:
		a.Rule = a.Rule.Move(-1, a.Sys.NumTypes())
	case rl.KeyRightBracket:
		a.Rule = a.Rule.Move(1, a.Sys.NumTypes())
	case rl.KeyComma:
		viz.NudgeRule(a.Sys, a.Rule, -viz.RuleStep)
	case rl.KeyPeriod:
		viz.NudgeRule(a.Sys, a.Rule, viz.RuleStep)
	case rl.KeyMinus:
		a.resize(a.Sys.Count() - viz.CountStep)
	case rl.KeyEqual:
		a.resize(a.Sys.Count() + viz.CountStep)
	case rl.KeyF:
		if shift {
			viz.StepMouseStrength(&a.Cfg.Mouse, -viz.MouseStrengthStep)
		} else {
			viz.StepMouseStrength(&a.Cfg.Mouse, viz.MouseStrengthStep)
		}
	case rl.KeyE:
		if shift {
			viz.ScaleMouseRadius(&a.Cfg.Mouse, 1/viz.MouseRadiusFactor)
		} else {
			viz.ScaleMouseRadius(&a.Cfg.Mouse, viz.MouseRadiusFactor)
		}
	default:
		if n, ok := typeKey(k); ok && n != a.Sys.NumTypes() {
			if err := a.Sys.Reinit(a.Sys.Count(), n); err == nil {
				a.Sys.RandomizeRules()
				a.Rule = a.Rule.Clamp(n)
				a.Energy = a.Energy[:0]
			}
		}
	}
	return true
}

func (a *App) resize(count int) {
	if err := viz.ResizeParticles(a.Sys, count); err == nil {
		a.Energy = a.Energy[:0]
	}
}

func (a *App) recordEnergy() {
	v := a.Sys.View()
	sum := 0.0
	for i := 0; i < v.Len(); i++ {
		vx, vy := float64(v.VX[i]), float64(v.VY[i])
		sum += 0.5 * (vx*vx + vy*vy)
	}
	if v.Len() > 0 {
		sum /= float64(v.Len())
	}
	a.Energy = append(a.Energy, sum)
	if len(a.Energy) > a.MaxEnergy {
		a.Energy = a.Energy[1:]
	}
}

func (a *App) Draw() {
	if a.Trails {
		rl.BeginTextureMode(a.TrailTex)
		rl.DrawRectangle(0, 0, a.ScreenW, a.ScreenH, ColFade)
		a.drawParticles()
		rl.EndTextureMode()
	}

	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.Trails {
		// render textures are stored upside down
		src := rl.NewRectangle(0, 0, float32(a.ScreenW), -float32(a.ScreenH))
		rl.DrawTextureRec(a.TrailTex.Texture, src, rl.NewVector2(0, 0), rl.White)
	} else {
		a.drawParticles()
	}
	a.drawCursor()
	if a.ShowHUD {
		a.DrawHUD()
	}

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	a.drawText("nucleon", 20, 16, 24, ColSelect)

	status := "RUNNING"
	col := ColSelect
	if !a.Running {
		status = "PAUSED"
		col = ColTextDim
	}
	a.drawText(status, int(a.ScreenW)-120, 20, 16, col)

	a.drawText(fmt.Sprintf("%d particles  %d types  tick %d  speed %.2fx",
		a.Sys.Count(), a.Sys.NumTypes(), a.Sys.Tick(), a.Speed), 20, 48, 14, ColText)

	counts := a.Sys.TypeCounts()
	for t, n := range counts {
		y := 72 + t*18
		rl.DrawCircle(26, int32(y+7), 5, typeColor(t))
		a.drawText(fmt.Sprintf("%d", n), 38, y, 14, ColText)
	}

	a.drawRules(20, 72+len(counts)*18+12)
	a.drawText(fmt.Sprintf("mouse force %.1f  radius %.0f", a.Cfg.Mouse.Strength, a.Cfg.Mouse.Radius),
		20, 72+len(counts)*18+24+a.Sys.NumTypes()*rulePx, 14, ColText)

	a.DrawTelemetry()

	h := int(a.ScreenH)
	a.drawText("[SPACE] PAUSE  [R] RULES  [P] RESET  [2-0] TYPES  [ ] [,.] EDIT RULE  [-=] COUNT  [F/E] MOUSE  [G] GLOW  [T] TRAILS  [H] HUD  [Q] QUIT", 20, h-24, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), int(a.ScreenW)-80, h-24, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}
