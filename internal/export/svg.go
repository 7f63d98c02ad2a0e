// Package export renders trace artifacts as standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/marodr/coiltrace/internal/analysis"
	"github.com/marodr/coiltrace/internal/coils"
)

// PoincareSVG renders a Poincare section as a dot scatter in the (R, Z)
// plane.
func PoincareSVG(section *analysis.PoincareSection, width, height int, color string) string {
	if section == nil || len(section.Points) == 0 {
		return ""
	}

	minR, maxR := section.Points[0].R, section.Points[0].R
	minZ, maxZ := section.Points[0].Z, section.Points[0].Z
	for _, p := range section.Points {
		if p.R < minR {
			minR = p.R
		}
		if p.R > maxR {
			maxR = p.R
		}
		if p.Z < minZ {
			minZ = p.Z
		}
		if p.Z > maxZ {
			maxZ = p.Z
		}
	}
	rangeR, rangeZ := pad(&minR, maxR-minR), pad(&minZ, maxZ-minZ)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, color))

	for _, p := range section.Points {
		x := (p.R - minR) / rangeR * float64(width)
		y := float64(height) - (p.Z-minZ)/rangeZ*float64(height)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="1.2"/>
`, x, y))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// CoilsSVG renders the symmetry-expanded coil set as a top view (x, y)
// polyline per coil.
func CoilsSVG(cs *coils.CoilSet, width, height int, color string) string {
	gamma := cs.Gamma()
	if len(gamma) == 0 {
		return ""
	}

	minX, maxX := gamma[0][0][0], gamma[0][0][0]
	minY, maxY := gamma[0][0][1], gamma[0][0][1]
	for _, coil := range gamma {
		for _, p := range coil {
			if p[0] < minX {
				minX = p[0]
			}
			if p[0] > maxX {
				maxX = p[0]
			}
			if p[1] < minY {
				minY = p[1]
			}
			if p[1] > maxY {
				maxY = p[1]
			}
		}
	}
	rangeX, rangeY := pad(&minX, maxX-minX), pad(&minY, maxY-minY)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, coil := range gamma {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for i, p := range coil {
			x := (p[0] - minX) / rangeX * float64(width)
			y := float64(height) - (p[1]-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString(` Z"/>
`)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// pad widens a degenerate range and shifts the minimum for a 10% margin.
func pad(min *float64, r float64) float64 {
	if r == 0 {
		r = 1
	}
	*min -= r * 0.1
	return r * 1.2
}
