package analysis

import (
	"math"
	"strings"

	"github.com/marodr/coiltrace/internal/dynamics"
	"github.com/marodr/coiltrace/internal/tracer"
)

// PoincareSection collects (R, Z) points where trajectories cross the
// toroidal plane phi = Phi0 in the positive direction.
type PoincareSection struct {
	Phi0   float64
	Points []struct{ R, Z float64 }
}

// Poincare scans every trajectory of a trace result for crossings of the
// phi = phi0 plane, linearly interpolating between saved states. Frozen
// tails after early termination produce no crossings.
func Poincare(res *tracer.Result, phi0 float64) *PoincareSection {
	section := &PoincareSection{Phi0: phi0}
	for p, traj := range res.States {
		last := res.StopStep[p]
		for k := 1; k <= last; k++ {
			prev, curr := traj[k-1].Position(), traj[k].Position()
			d0 := angleDelta(prev.Phi(), phi0)
			d1 := angleDelta(curr.Phi(), phi0)
			// Positive-going crossing: behind the plane before, past it now.
			if d0 >= 0 || d1 < 0 {
				continue
			}
			frac := -d0 / (d1 - d0)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			pt := prev.Add(curr.Sub(prev).Scale(frac))
			section.Points = append(section.Points, struct{ R, Z float64 }{pt.CylR(), pt[2]})
		}
	}
	return section
}

// angleDelta maps phi - phi0 into (-pi, pi].
func angleDelta(phi, phi0 float64) float64 {
	d := math.Mod(phi-phi0, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// RotationalTransform estimates the winding ratio iota of a single traced
// field line: accumulated poloidal angle about (r0, 0) over accumulated
// toroidal angle.
func RotationalTransform(traj []dynamics.State, stop int, r0 float64) float64 {
	if stop < 1 {
		return 0
	}
	var dTheta, dPhi float64
	prev := traj[0].Position()
	prevTheta := math.Atan2(prev[2], prev.CylR()-r0)
	prevPhi := prev.Phi()
	for k := 1; k <= stop; k++ {
		p := traj[k].Position()
		theta := math.Atan2(p[2], p.CylR()-r0)
		phi := p.Phi()
		dTheta += angleDelta(theta, prevTheta)
		dPhi += angleDelta(phi, prevPhi)
		prevTheta, prevPhi = theta, phi
	}
	if dPhi == 0 {
		return 0
	}
	return dTheta / dPhi
}

// PoincareToASCII renders the section on a width x height character canvas.
func PoincareToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}

	minR, maxR := section.Points[0].R, section.Points[0].R
	minZ, maxZ := section.Points[0].Z, section.Points[0].Z
	for _, p := range section.Points {
		minR = math.Min(minR, p.R)
		maxR = math.Max(maxR, p.R)
		minZ = math.Min(minZ, p.Z)
		maxZ = math.Max(maxZ, p.Z)
	}
	rangeR := maxR - minR
	rangeZ := maxZ - minZ
	if rangeR == 0 {
		rangeR = 1
	}
	if rangeZ == 0 {
		rangeZ = 1
	}
	minR -= rangeR * 0.1
	rangeR *= 1.2
	minZ -= rangeZ * 0.1
	rangeZ *= 1.2

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}
	for _, p := range section.Points {
		col := int((p.R - minR) / rangeR * float64(width-1))
		row := height - 1 - int((p.Z-minZ)/rangeZ*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
