package coils

import (
	"math"

	"github.com/marodr/coiltrace/internal/geom"
)

// Dofs holds the Fourier coefficients of a set of curves: one coefficient
// vector of length 2*order+1 per cartesian axis per curve.
type Dofs [][3][]float64

// Clone returns a deep copy.
func (d Dofs) Clone() Dofs {
	c := make(Dofs, len(d))
	for i := range d {
		for ax := 0; ax < 3; ax++ {
			c[i][ax] = append([]float64(nil), d[i][ax]...)
		}
	}
	return c
}

func (d Dofs) validate() (order int, err error) {
	if len(d) == 0 {
		return 0, ErrDofShape
	}
	n := len(d[0][0])
	if n == 0 || n%2 == 0 {
		return 0, ErrDofShape
	}
	for i := range d {
		for ax := 0; ax < 3; ax++ {
			if len(d[i][ax]) != n {
				return 0, ErrDofShape
			}
		}
	}
	return n / 2, nil
}

// Curves is a set of closed curves with a discrete symmetry applied.
// The full curve set is the independent set expanded by nfp-fold rotation
// about the z axis, optionally preceded by the stellarator flip
// diag(1,-1,-1).
type Curves struct {
	base      Dofs
	full      Dofs
	order     int
	nSegments int
	nfp       int
	stellsym  bool

	gamma         [][]geom.Vec3
	gammaDash     [][]geom.Vec3
	gammaDashDash [][]geom.Vec3
	length        []float64
	curvature     [][]float64
}

// NewCurves builds a curve set from independent-curve coefficients.
func NewCurves(dofs Dofs, nSegments, nfp int, stellsym bool) (*Curves, error) {
	order, err := dofs.validate()
	if err != nil {
		return nil, err
	}
	if nSegments < 3 {
		return nil, ErrSegments
	}
	if nfp < 1 {
		return nil, ErrFieldPeriods
	}
	c := &Curves{
		base:      dofs.Clone(),
		order:     order,
		nSegments: nSegments,
		nfp:       nfp,
		stellsym:  stellsym,
	}
	c.full = expandSymmetries(c.base, nfp, stellsym)
	c.discretize()
	return c, nil
}

func (c *Curves) NumBase() int  { return len(c.base) }
func (c *Curves) NumCoils() int { return len(c.full) }
func (c *Curves) Order() int    { return c.order }
func (c *Curves) Segments() int { return c.nSegments }
func (c *Curves) FieldPeriods() int { return c.nfp }
func (c *Curves) StellaratorSymmetric() bool { return c.stellsym }

// BaseDofs returns a copy of the independent-curve coefficients.
func (c *Curves) BaseDofs() Dofs { return c.base.Clone() }

// Gamma returns discretized positions, one row per symmetry-expanded coil.
func (c *Curves) Gamma() [][]geom.Vec3 { return c.gamma }

// GammaDash returns dgamma/dt at the quadrature points.
func (c *Curves) GammaDash() [][]geom.Vec3 { return c.gammaDash }

// Lengths returns the arclength of each expanded coil.
func (c *Curves) Lengths() []float64 { return c.length }

// Curvatures returns pointwise curvature |g' x g''| / |g'|^3 per coil.
func (c *Curves) Curvatures() [][]float64 { return c.curvature }

// pointAt evaluates one curve and its first two parameter derivatives at t.
func pointAt(curve [3][]float64, order int, t float64) (p, dp, ddp geom.Vec3) {
	for ax := 0; ax < 3; ax++ {
		co := curve[ax]
		v := co[0]
		dv := 0.0
		ddv := 0.0
		for j := 1; j <= order; j++ {
			w := 2 * math.Pi * float64(j)
			s, cs := math.Sincos(w * t)
			sj, cj := co[2*j-1], co[2*j]
			v += sj*s + cj*cs
			dv += w * (sj*cs - cj*s)
			ddv += -w * w * (sj*s + cj*cs)
		}
		p[ax], dp[ax], ddp[ax] = v, dv, ddv
	}
	return p, dp, ddp
}

func (c *Curves) discretize() {
	n := len(c.full)
	c.gamma = make([][]geom.Vec3, n)
	c.gammaDash = make([][]geom.Vec3, n)
	c.gammaDashDash = make([][]geom.Vec3, n)
	c.length = make([]float64, n)
	c.curvature = make([][]float64, n)

	for i, curve := range c.full {
		g := make([]geom.Vec3, c.nSegments)
		gd := make([]geom.Vec3, c.nSegments)
		gdd := make([]geom.Vec3, c.nSegments)
		kappa := make([]float64, c.nSegments)
		sum := 0.0
		for k := 0; k < c.nSegments; k++ {
			t := float64(k) / float64(c.nSegments)
			p, dp, ddp := pointAt(curve, c.order, t)
			g[k], gd[k], gdd[k] = p, dp, ddp
			speed := dp.Norm()
			sum += speed
			if speed > 0 {
				kappa[k] = dp.Cross(ddp).Norm() / (speed * speed * speed)
			}
		}
		c.gamma[i] = g
		c.gammaDash[i] = gd
		c.gammaDashDash[i] = gdd
		// Parameter runs over [0,1), so arclength is the mean speed.
		c.length[i] = sum / float64(c.nSegments)
		c.curvature[i] = kappa
	}
}

// expandSymmetries applies the stellarator flip and nfp-fold rotation to the
// coefficient vectors. Ordering is deterministic: field period outermost,
// flip next, base curve index innermost, matching the current expansion.
func expandSymmetries(base Dofs, nfp int, stellsym bool) Dofs {
	flips := []bool{false}
	if stellsym {
		flips = []bool{false, true}
	}
	out := make(Dofs, 0, len(base)*nfp*len(flips))
	for k := 0; k < nfp; k++ {
		angle := 2 * math.Pi * float64(k) / float64(nfp)
		cs, sn := math.Cos(angle), math.Sin(angle)
		for _, flip := range flips {
			for _, curve := range base {
				var nc [3][]float64
				m := len(curve[0])
				for ax := 0; ax < 3; ax++ {
					nc[ax] = make([]float64, m)
				}
				for j := 0; j < m; j++ {
					x, y, z := curve[0][j], curve[1][j], curve[2][j]
					if flip {
						y, z = -y, -z
					}
					nc[0][j] = cs*x - sn*y
					nc[1][j] = sn*x + cs*y
					nc[2][j] = z
				}
				out = append(out, nc)
			}
		}
	}
	return out
}

// expandCurrents mirrors expandSymmetries for scalar currents: the flipped
// copies carry negated current.
func expandCurrents(base []float64, nfp int, stellsym bool) []float64 {
	flips := []bool{false}
	if stellsym {
		flips = []bool{false, true}
	}
	out := make([]float64, 0, len(base)*nfp*len(flips))
	for k := 0; k < nfp; k++ {
		for _, flip := range flips {
			for _, cur := range base {
				if flip {
					cur = -cur
				}
				out = append(out, cur)
			}
		}
	}
	return out
}

// CircularArray builds nCurves planar circular curves of minor radius r,
// equally spaced in toroidal angle on a torus of major radius R. The spacing
// accounts for the declared symmetry so the expanded set covers the full
// torus.
func CircularArray(nCurves, order int, R, r float64, nSegments, nfp int, stellsym bool) (*Curves, error) {
	if nCurves < 1 || order < 1 {
		return nil, ErrDofShape
	}
	mult := 1
	if stellsym {
		mult = 2
	}
	dofs := make(Dofs, nCurves)
	for i := range dofs {
		angle := (float64(i) + 0.5) * 2 * math.Pi / float64(mult*nfp*nCurves)
		for ax := 0; ax < 3; ax++ {
			dofs[i][ax] = make([]float64, 2*order+1)
		}
		dofs[i][0][0] = math.Cos(angle) * R
		dofs[i][0][2] = math.Cos(angle) * r
		dofs[i][1][0] = math.Sin(angle) * R
		dofs[i][1][2] = math.Sin(angle) * r
		dofs[i][2][1] = -r
	}
	return NewCurves(dofs, nSegments, nfp, stellsym)
}
