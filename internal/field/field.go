package field

import (
	"math"

	"github.com/marodr/coiltrace/internal/geom"
)

// Mu0 is the vacuum permeability in SI units.
const Mu0 = 4e-7 * math.Pi

// Model evaluates the magnetic field at a cartesian position.
type Model interface {
	// B returns the field vector at p, or a *DomainError when p lies
	// outside the model's valid domain.
	B(p geom.Vec3) (geom.Vec3, error)
}

// GradModel additionally evaluates spatial derivatives of the field.
type GradModel interface {
	Model

	// BAndGradAbsB returns the field vector and the gradient of |B| at p.
	BAndGradAbsB(p geom.Vec3) (geom.Vec3, geom.Vec3, error)
}

// DefaultGradStep is the relative central-difference step used when a model
// has no analytic derivative.
const DefaultGradStep = 1e-6

type numericGrad struct {
	Model
	step float64
}

// WithNumericGradients wraps m with central-difference spatial derivatives.
// The absolute step is step scaled by max(1, |p|) per query. If m already
// implements GradModel it is returned unchanged.
func WithNumericGradients(m Model, step float64) GradModel {
	if g, ok := m.(GradModel); ok {
		return g
	}
	if step <= 0 {
		step = DefaultGradStep
	}
	return &numericGrad{Model: m, step: step}
}

func (n *numericGrad) BAndGradAbsB(p geom.Vec3) (geom.Vec3, geom.Vec3, error) {
	b, err := n.Model.B(p)
	if err != nil {
		return geom.Vec3{}, geom.Vec3{}, err
	}
	h := n.step * math.Max(1, p.Norm())
	var grad geom.Vec3
	for ax := 0; ax < 3; ax++ {
		pp, pm := p, p
		pp[ax] += h
		pm[ax] -= h
		bp, err := n.Model.B(pp)
		if err != nil {
			return geom.Vec3{}, geom.Vec3{}, err
		}
		bm, err := n.Model.B(pm)
		if err != nil {
			return geom.Vec3{}, geom.Vec3{}, err
		}
		grad[ax] = (bp.Norm() - bm.Norm()) / (2 * h)
	}
	return b, grad, nil
}
