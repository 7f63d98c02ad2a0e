// Package surface provides toroidal flux-surface geometry in the standard
// R-Z Fourier representation, as consumed by the surface-conformity
// objective. Surfaces are fixed targets here; their coefficients are not
// optimization degrees of freedom.
package surface

import (
	"errors"
	"math"

	"github.com/marodr/coiltrace/internal/geom"
)

// ErrCoefficientShape indicates rc/zs arrays with mismatched shapes.
var ErrCoefficientShape = errors.New("surface: rc and zs must share shape (mpol+1, 2*ntor+1)")

// RZFourier is a stellarator-symmetric toroidal surface:
//
//	R(theta, phi) = sum_mn rc[m][n] cos(m theta - n nfp phi)
//	Z(theta, phi) = sum_mn zs[m][n] sin(m theta - n nfp phi)
//
// with n running -ntor..ntor mapped to column n+ntor.
type RZFourier struct {
	rc   [][]float64
	zs   [][]float64
	mpol int
	ntor int
	nfp  int
}

func NewRZFourier(rc, zs [][]float64, nfp int) (*RZFourier, error) {
	if len(rc) == 0 || len(rc) != len(zs) {
		return nil, ErrCoefficientShape
	}
	cols := len(rc[0])
	if cols == 0 || cols%2 == 0 {
		return nil, ErrCoefficientShape
	}
	for m := range rc {
		if len(rc[m]) != cols || len(zs[m]) != cols {
			return nil, ErrCoefficientShape
		}
	}
	return &RZFourier{rc: rc, zs: zs, mpol: len(rc) - 1, ntor: (cols - 1) / 2, nfp: nfp}, nil
}

// Torus is the circular axisymmetric surface of major radius R and minor
// radius r.
func Torus(R, r float64, nfp int) *RZFourier {
	rc := [][]float64{{R}, {r}}
	zs := [][]float64{{0}, {r}}
	s, _ := NewRZFourier(rc, zs, nfp)
	return s
}

func (s *RZFourier) FieldPeriods() int { return s.nfp }

// At evaluates the surface position at poloidal angle theta and toroidal
// angle phi.
func (s *RZFourier) At(theta, phi float64) geom.Vec3 {
	R, Z := 0.0, 0.0
	for m := 0; m <= s.mpol; m++ {
		for nn := -s.ntor; nn <= s.ntor; nn++ {
			ang := float64(m)*theta - float64(nn*s.nfp)*phi
			sn, cs := math.Sincos(ang)
			R += s.rc[m][nn+s.ntor] * cs
			Z += s.zs[m][nn+s.ntor] * sn
		}
	}
	cp, sp := math.Cos(phi), math.Sin(phi)
	return geom.Vec3{R * cp, R * sp, Z}
}

// normalAt returns the outward unit normal and the area element |dA| from
// the analytic tangent vectors.
func (s *RZFourier) normalAt(theta, phi float64) (geom.Vec3, float64) {
	var dTheta, dPhi geom.Vec3
	R, dRdT, dRdP, dZdT, dZdP := 0.0, 0.0, 0.0, 0.0, 0.0
	for m := 0; m <= s.mpol; m++ {
		for nn := -s.ntor; nn <= s.ntor; nn++ {
			fm, fn := float64(m), float64(nn*s.nfp)
			ang := fm*theta - fn*phi
			sn, cs := math.Sincos(ang)
			rc, zs := s.rc[m][nn+s.ntor], s.zs[m][nn+s.ntor]
			R += rc * cs
			dRdT -= rc * fm * sn
			dRdP += rc * fn * sn
			dZdT += zs * fm * cs
			dZdP -= zs * fn * cs
		}
	}
	cp, sp := math.Cos(phi), math.Sin(phi)
	dTheta = geom.Vec3{dRdT * cp, dRdT * sp, dZdT}
	dPhi = geom.Vec3{dRdP*cp - R*sp, dRdP*sp + R*cp, dZdP}

	n := dPhi.Cross(dTheta)
	area := n.Norm()
	if area == 0 {
		return geom.Vec3{}, 0
	}
	return n.Scale(1 / area), area
}

// Quadrature is a surface evaluation grid: positions, outward unit normals
// and area weights, flattened theta-major.
type Quadrature struct {
	Points  []geom.Vec3
	Normals []geom.Vec3
	Weights []float64
}

// Grid samples the surface on an nTheta x nPhi uniform grid over the full
// torus. Weights sum approximately to the surface area.
func (s *RZFourier) Grid(nTheta, nPhi int) *Quadrature {
	q := &Quadrature{
		Points:  make([]geom.Vec3, 0, nTheta*nPhi),
		Normals: make([]geom.Vec3, 0, nTheta*nPhi),
		Weights: make([]float64, 0, nTheta*nPhi),
	}
	dT := 2 * math.Pi / float64(nTheta)
	dP := 2 * math.Pi / float64(nPhi)
	for i := 0; i < nTheta; i++ {
		theta := float64(i) * dT
		for j := 0; j < nPhi; j++ {
			phi := float64(j) * dP
			n, area := s.normalAt(theta, phi)
			q.Points = append(q.Points, s.At(theta, phi))
			q.Normals = append(q.Normals, n)
			q.Weights = append(q.Weights, area*dT*dP)
		}
	}
	return q
}
