package field

import "github.com/marodr/coiltrace/internal/geom"

// Toroidal is the purely toroidal analytic field B = B0 R0 / R in the
// toroidal direction. It has a closed-form |B| gradient, which makes it the
// reference model for integrator conservation checks.
type Toroidal struct {
	B0 float64
	R0 float64
}

const toroidalRMin = 1e-9

func (tf *Toroidal) B(p geom.Vec3) (geom.Vec3, error) {
	r := p.CylR()
	if r < toroidalRMin {
		return geom.Vec3{}, &DomainError{Position: p, Detail: "on the torus axis"}
	}
	mag := tf.B0 * tf.R0 / r
	// Toroidal unit vector (-y, x, 0)/R.
	return geom.Vec3{-p[1] / r * mag, p[0] / r * mag, 0}, nil
}

func (tf *Toroidal) BAndGradAbsB(p geom.Vec3) (geom.Vec3, geom.Vec3, error) {
	b, err := tf.B(p)
	if err != nil {
		return geom.Vec3{}, geom.Vec3{}, err
	}
	r := p.CylR()
	// |B| = B0 R0 / R, so grad|B| = -B0 R0 / R^2 * Rhat.
	g := -tf.B0 * tf.R0 / (r * r * r)
	return b, geom.Vec3{g * p[0], g * p[1], 0}, nil
}
