package field

import (
	"math"

	"github.com/marodr/coiltrace/internal/coils"
	"github.com/marodr/coiltrace/internal/geom"
)

// BiotSavart is the vacuum field of a coil set. Each coil is treated as a
// closed polygon through its discretization points, and every straight
// segment contributes its closed-form finite-wire field rather than a
// midpoint quadrature sample.
//
// Precondition: the query position does not lie on a filament. Evaluation on
// a segment is singular and reported as ErrNonFinite, never silently zeroed.
type BiotSavart struct {
	coils *coils.CoilSet
}

func NewBiotSavart(cs *coils.CoilSet) *BiotSavart {
	return &BiotSavart{coils: cs}
}

// Coils returns the underlying coil set.
func (bs *BiotSavart) Coils() *coils.CoilSet { return bs.coils }

// B sums the finite-segment contributions of all symmetry-expanded coils.
//
// For a segment with endpoint offsets a and b from the query point, the
// closed-form field is
//
//	B = (mu0 I / 4pi) * (|a|+|b|) (a x b) / (|a||b| (|a||b| + a.b))
func (bs *BiotSavart) B(p geom.Vec3) (geom.Vec3, error) {
	gamma := bs.coils.Gamma()
	currents := bs.coils.Currents()

	var total geom.Vec3
	for ci, pts := range gamma {
		scale := Mu0 * currents[ci] / (4 * math.Pi)
		n := len(pts)
		a := pts[n-1].Sub(p)
		na := a.Norm()
		for k := 0; k < n; k++ {
			b := pts[k].Sub(p)
			nb := b.Norm()
			denom := na * nb * (na*nb + a.Dot(b))
			if denom != 0 {
				cross := a.Cross(b)
				f := scale * (na + nb) / denom
				total[0] += f * cross[0]
				total[1] += f * cross[1]
				total[2] += f * cross[2]
			} else {
				return geom.Vec3{}, ErrNonFinite
			}
			a, na = b, nb
		}
	}
	if !total.IsFinite() {
		return geom.Vec3{}, ErrNonFinite
	}
	return total, nil
}
