package dynamics

import (
	"math"

	"github.com/marodr/coiltrace/internal/field"
	"github.com/marodr/coiltrace/internal/geom"
)

// State is a flat phase-space vector. Guiding-center states are
// (x, y, z, vparallel); full-orbit states are (x, y, z, vx, vy, vz);
// field-line states are (x, y, z).
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsFinite() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Position extracts the spatial part of a state.
func (s State) Position() geom.Vec3 {
	return geom.Vec3{s[0], s[1], s[2]}
}

// System is an autonomous ODE over State. Derive may fail with a field
// domain error when the state has left the model's valid region.
type System interface {
	Derive(x State, t float64) (State, error)
	Dim() int
}

// GuidingCenter is the drift-reduced motion of a charged particle:
//
//	dX/dt = vpar b + (vpar^2/Omega + mu/q) (B x grad|B|) / |B|^2
//	dvpar/dt = -(mu/m) (b . grad|B|)
//
// with mu = (E - m vpar^2 / 2) / |B| fixed by the conserved total energy.
type GuidingCenter struct {
	Field  field.GradModel
	Mass   float64
	Charge float64
	Energy float64
}

func (gc *GuidingCenter) Dim() int { return 4 }

func (gc *GuidingCenter) Derive(x State, _ float64) (State, error) {
	pos := x.Position()
	vpar := x[3]

	b, gradAbsB, err := gc.Field.BAndGradAbsB(pos)
	if err != nil {
		return nil, err
	}
	absB := b.Norm()

	mu := (gc.Energy - gc.Mass*vpar*vpar/2) / absB
	omega := gc.Charge * absB / gc.Mass

	drift := b.Cross(gradAbsB).Scale((vpar*vpar/omega + mu/gc.Charge) / (absB * absB))
	dx := b.Scale(vpar / absB).Add(drift)
	dvpar := -mu / gc.Mass * b.Dot(gradAbsB) / absB

	return State{dx[0], dx[1], dx[2], dvpar}, nil
}

// Mu returns the magnetic moment of a guiding-center state, the adiabatic
// invariant the integrator should conserve.
func (gc *GuidingCenter) Mu(x State) (float64, error) {
	b, err := gc.Field.B(x.Position())
	if err != nil {
		return 0, err
	}
	return (gc.Energy - gc.Mass*x[3]*x[3]/2) / b.Norm(), nil
}

// TotalEnergy recomputes m vpar^2/2 + mu0 |B| from a state given the birth
// magnetic moment mu0.
func (gc *GuidingCenter) TotalEnergy(x State, mu0 float64) (float64, error) {
	b, err := gc.Field.B(x.Position())
	if err != nil {
		return 0, err
	}
	return gc.Mass*x[3]*x[3]/2 + mu0*b.Norm(), nil
}

// FullOrbit is the Lorentz force motion dv/dt = (q/m) v x B.
type FullOrbit struct {
	Field  field.Model
	Mass   float64
	Charge float64
}

func (fo *FullOrbit) Dim() int { return 6 }

func (fo *FullOrbit) Derive(x State, _ float64) (State, error) {
	b, err := fo.Field.B(x.Position())
	if err != nil {
		return nil, err
	}
	v := geom.Vec3{x[3], x[4], x[5]}
	a := v.Cross(b).Scale(fo.Charge / fo.Mass)
	return State{v[0], v[1], v[2], a[0], a[1], a[2]}, nil
}

// KineticEnergy of a full-orbit state.
func (fo *FullOrbit) KineticEnergy(x State) float64 {
	return fo.Mass / 2 * (x[3]*x[3] + x[4]*x[4] + x[5]*x[5])
}

// FieldLine follows the normalized field direction, so the integration
// parameter is arclength.
type FieldLine struct {
	Field field.Model
}

func (fl *FieldLine) Dim() int { return 3 }

func (fl *FieldLine) Derive(x State, _ float64) (State, error) {
	b, err := fl.Field.B(x.Position())
	if err != nil {
		return nil, err
	}
	d := b.Unit()
	return State{d[0], d[1], d[2]}, nil
}
