package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Bar renders a horizontal bar for a value in [0, 1]. Used for type shares.
func Bar(frac float64, width int, style lipgloss.Style) string {
	filled := int(frac*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return style.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
}

// MatrixCell renders one attraction value as a coloured glyph: green pulls,
// red pushes, intensity by magnitude.
func MatrixCell(v float32) string {
	return matrixCell(v, false)
}

func matrixCell(v float32, selected bool) string {
	glyphs := []string{"·", "░", "▒", "▓", "█"}
	a := v
	if a < 0 {
		a = -a
	}
	idx := int(a * float32(len(glyphs)-1))
	if idx >= len(glyphs) {
		idx = len(glyphs) - 1
	}
	style := lipgloss.NewStyle()
	switch {
	case v > 0:
		style = SparkHigh
	case v < 0:
		style = SparkLow
	}
	if selected {
		style = style.Reverse(true)
	}
	return style.Render(glyphs[idx])
}

// SparklineChart renders a mini sparkline from values
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	rng := max - min
	if rng == 0 {
		rng = 1
	}

	// newest values win when the history is longer than the chart
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var result strings.Builder
	for _, v := range values {
		norm := (v - min) / rng
		idx := int(norm * float64(len(chars)-1))
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		if idx < 0 {
			idx = 0
		}

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(SparkMid.Render(c))
		default:
			result.WriteString(SparkLow.Render(c))
		}
	}

	return result.String()
}
