package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/nucleon/internal/particles"
	"github.com/san-kum/nucleon/internal/viz"
)

// SnapshotToSVG draws every particle as a circle coloured by type. scale
// converts world units to SVG pixels.
func SnapshotToSVG(v particles.View, scale float64) string {
	if scale <= 0 {
		scale = 1
	}
	width := float64(v.Width) * scale
	height := float64(v.Height) * scale
	r := 1.5 * scale
	if r < 0.5 {
		r = 0.5
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#000000"/>
`, width, height, width, height))

	// one group per type keeps the fill attribute out of every circle
	byType := make([][]int, particles.MaxTypes)
	for i := 0; i < v.Len(); i++ {
		t := int(v.Type[i]) % particles.MaxTypes
		byType[t] = append(byType[t], i)
	}
	for t, idx := range byType {
		if len(idx) == 0 {
			continue
		}
		c := viz.TypeColor(t)
		sb.WriteString(fmt.Sprintf("<g fill=\"%s\" data-type=\"%d\">\n", c.Hex(), t))
		for _, i := range idx {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, float64(v.X[i])*scale, float64(v.Y[i])*scale, r))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// Point is one sample of a plotted series.
type Point struct{ X, Y float64 }

// SeriesToSVG plots a metric series as a polyline, padded by 10% on each
// side.
func SeriesToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// SeriesPoints pairs sample times with metric values.
func SeriesPoints(times, values []float64) []Point {
	n := len(times)
	if len(values) < n {
		n = len(values)
	}
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{times[i], values[i]}
	}
	return pts
}
