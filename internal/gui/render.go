package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/nucleon/internal/viz"
)

const (
	particleRadius = 2.0
	glowSize       = 12.0
)

func typeColor(t int) rl.Color {
	return viz.TypeColor(t).RGBA()
}

func (a *App) drawParticles() {
	v := a.Sys.View()
	var cols [len(viz.Palette)]rl.Color
	for t := range cols {
		cols[t] = typeColor(t)
	}

	if a.Glow {
		rl.BeginBlendMode(rl.BlendAdditive)
		src := rl.NewRectangle(0, 0, float32(a.GlowTex.Width), float32(a.GlowTex.Height))
		half := float32(glowSize) / 2
		for i := 0; i < v.Len(); i++ {
			c := cols[int(v.Type[i])%len(cols)]
			c.A = 70
			dst := rl.NewRectangle(v.X[i]*a.Scale-half, v.Y[i]*a.Scale-half, glowSize, glowSize)
			rl.DrawTexturePro(a.GlowTex, src, dst, rl.NewVector2(0, 0), 0, c)
		}
		rl.EndBlendMode()
	}

	for i := 0; i < v.Len(); i++ {
		pos := rl.NewVector2(v.X[i]*a.Scale, v.Y[i]*a.Scale)
		rl.DrawCircleV(pos, particleRadius, cols[int(v.Type[i])%len(cols)])
	}
}

func (a *App) drawCursor() {
	left := rl.IsMouseButtonDown(rl.MouseLeftButton)
	right := rl.IsMouseButtonDown(rl.MouseRightButton)
	if !left && !right {
		return
	}
	m := rl.GetMousePosition()
	r := float32(a.Cfg.Mouse.Radius) * a.Scale
	rl.DrawCircleLines(int32(m.X), int32(m.Y), r, ColCursor)
}

// DrawTelemetry plots recent mean kinetic energy in the top right corner.
func (a *App) DrawTelemetry() {
	n := len(a.Energy)
	if n < 2 {
		return
	}
	const w, h = 200, 60
	x0 := float32(a.ScreenW) - w - 20
	y0 := float32(48)

	rl.DrawRectangleLines(int32(x0), int32(y0), w, h, ColTextDim)

	hi := a.Energy[0]
	for _, e := range a.Energy {
		hi = max(hi, e)
	}
	if hi == 0 {
		hi = 1
	}

	pts := make([]rl.Vector2, n)
	for i, e := range a.Energy {
		pts[i] = rl.NewVector2(
			x0+float32(i)/float32(a.MaxEnergy-1)*w,
			y0+h-float32(e/hi)*h,
		)
	}
	rl.DrawLineStrip(pts, ColText)
	a.drawText("kinetic energy", int(x0), int(y0+h+4), 12, ColTextDim)
}

const rulePx = 14

// drawRules shows the active attraction block as coloured squares, green
// pulling and red pushing, with the selected cell outlined.
func (a *App) drawRules(x, y int) {
	n := a.Sys.NumTypes()
	for i := 0; i < n; i++ {
		rl.DrawCircle(int32(x+rulePx/2), int32(y+rulePx+i*rulePx+rulePx/2), 3, typeColor(i))
		rl.DrawCircle(int32(x+rulePx+i*rulePx+rulePx/2), int32(y+rulePx/2), 3, typeColor(i))
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			px := int32(x + rulePx + j*rulePx)
			py := int32(y + rulePx + i*rulePx)
			rl.DrawRectangle(px+1, py+1, rulePx-2, rulePx-2, ruleColor(a.Sys.Attraction(i, j)))
			if i == a.Rule.A && j == a.Rule.B {
				rl.DrawRectangleLines(px, py, rulePx, rulePx, ColSelect)
			}
		}
	}
	a.drawText(fmt.Sprintf("%d->%d %+.2f", a.Rule.A, a.Rule.B, a.Sys.Attraction(a.Rule.A, a.Rule.B)),
		x+rulePx*(n+2), y+rulePx, 14, ColText)
}

func ruleColor(v float32) rl.Color {
	v = min(max(v, -1), 1)
	if v < 0 {
		return rl.NewColor(uint8(-v*255), 0, 0, 255)
	}
	return rl.NewColor(0, uint8(v*255), 0, 255)
}
