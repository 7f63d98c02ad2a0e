package field

import (
	"math"

	"github.com/marodr/coiltrace/internal/geom"
)

// NearAxis is a first-order expansion of the field about a closed magnetic
// axis curve. The axis is given in cylindrical Fourier form,
//
//	R0(phi) = sum_n RAxisCos[n] cos(n nfp phi)
//	Z0(phi) = sum_n ZAxisSin[n] sin(n nfp phi)
//
// and the field strength at distance r from the axis is
// B0 (1 + etaBar r cos(theta)), directed along the axis tangent. The
// expansion is valid only within RMax of the axis; queries farther out
// report a DomainError instead of extrapolating.
type NearAxis struct {
	RAxisCos []float64
	ZAxisSin []float64
	NFP      int
	B0       float64
	EtaBar   float64
	Iota0    float64
	Iota2    float64
	RMax     float64
}

// axisAt evaluates the axis point and its (unnormalized) tangent at toroidal
// angle phi.
func (na *NearAxis) axisAt(phi float64) (pos, tan geom.Vec3) {
	r0, dr0 := 0.0, 0.0
	for n, c := range na.RAxisCos {
		w := float64(n * na.NFP)
		s, cs := math.Sincos(w * phi)
		r0 += c * cs
		dr0 -= c * w * s
	}
	z0, dz0 := 0.0, 0.0
	for n, c := range na.ZAxisSin {
		w := float64(n * na.NFP)
		s, cs := math.Sincos(w * phi)
		z0 += c * s
		dz0 += c * w * cs
	}
	cp, sp := math.Cos(phi), math.Sin(phi)
	pos = geom.Vec3{r0 * cp, r0 * sp, z0}
	tan = geom.Vec3{dr0*cp - r0*sp, dr0*sp + r0*cp, dz0}
	return pos, tan
}

// Iota is the rotational transform profile iota0 + iota2 r^2.
func (na *NearAxis) Iota(r float64) float64 {
	return na.Iota0 + na.Iota2*r*r
}

func (na *NearAxis) B(p geom.Vec3) (geom.Vec3, error) {
	phi := p.Phi()
	axis, tan := na.axisAt(phi)
	that := tan.Unit()

	delta := p.Sub(axis)
	// Distance measured in the plane normal to the axis tangent.
	perp := delta.Sub(that.Scale(delta.Dot(that)))
	r := perp.Norm()
	if r > na.RMax {
		return geom.Vec3{}, &DomainError{Position: p,
			Detail: "beyond near-axis expansion radius"}
	}

	// In-plane frame: u along the major-radius direction, v completing it.
	u := geom.Vec3{math.Cos(phi), math.Sin(phi), 0}
	u = u.Sub(that.Scale(u.Dot(that))).Unit()
	v := that.Cross(u)
	theta := math.Atan2(perp.Dot(v), perp.Dot(u))

	mag := na.B0 * (1 + na.EtaBar*r*math.Cos(theta))
	return that.Scale(mag), nil
}
