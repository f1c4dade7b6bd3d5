package viz

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/nucleon/internal/particles"
)

type Color struct {
	Name    string
	R, G, B uint8
}

func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

func (c Color) Lip() lipgloss.Color { return lipgloss.Color(c.Hex()) }

func (c Color) RGBA() color.RGBA { return color.RGBA{c.R, c.G, c.B, 255} }

// Palette maps particle type to display colour.
var Palette = [particles.MaxTypes]Color{
	{"Blue", 0, 0, 255},
	{"Red", 255, 0, 0},
	{"Purple", 255, 0, 255},
	{"Yellow", 255, 255, 0},
	{"Green", 0, 255, 0},
	{"Orange", 255, 165, 0},
	{"Cyan", 0, 255, 255},
	{"Pink", 255, 105, 180},
	{"White", 230, 230, 230},
	{"Brown", 165, 100, 40},
}

// TypeColor returns the colour for type t, wrapping out-of-range values.
func TypeColor(t int) Color {
	if t < 0 {
		t = -t
	}
	return Palette[t%len(Palette)]
}
