package dynamics

import (
	"errors"
	"math"
	"math/rand"

	"github.com/marodr/coiltrace/internal/field"
	"github.com/marodr/coiltrace/internal/geom"
)

var (
	// ErrNoParticles indicates an empty initial-position set.
	ErrNoParticles = errors.New("dynamics: at least one particle required")

	// ErrPitchCount indicates a pitch slice not matching the position count.
	ErrPitchCount = errors.New("dynamics: one pitch value per particle required")
)

// Particles is an ensemble sharing species attributes. Pitch is the signed
// ratio vparallel/v at birth.
type Particles struct {
	Mass   float64
	Charge float64
	Energy float64

	XYZ   []geom.Vec3
	Pitch []float64
}

// NewParticles builds an ensemble. When pitch is nil, pitches are drawn
// uniformly from [-1, 1] with the given seed, so an ensemble is a
// deterministic function of its inputs.
func NewParticles(xyz []geom.Vec3, pitch []float64, mass, charge, energy float64, seed int64) (*Particles, error) {
	if len(xyz) == 0 {
		return nil, ErrNoParticles
	}
	if pitch == nil {
		rng := rand.New(rand.NewSource(seed))
		pitch = make([]float64, len(xyz))
		for i := range pitch {
			pitch[i] = 2*rng.Float64() - 1
		}
	}
	if len(pitch) != len(xyz) {
		return nil, ErrPitchCount
	}
	return &Particles{
		Mass:   mass,
		Charge: charge,
		Energy: energy,
		XYZ:    append([]geom.Vec3(nil), xyz...),
		Pitch:  append([]float64(nil), pitch...),
	}, nil
}

func (p *Particles) Num() int { return len(p.XYZ) }

// TotalSpeed is sqrt(2 E / m), shared by the whole ensemble.
func (p *Particles) TotalSpeed() float64 {
	return math.Sqrt(2 * p.Energy / p.Mass)
}

// GuidingCenterStates packs (x, y, z, vparallel) initial conditions.
func (p *Particles) GuidingCenterStates() []State {
	v := p.TotalSpeed()
	states := make([]State, p.Num())
	for i, x := range p.XYZ {
		states[i] = State{x[0], x[1], x[2], v * p.Pitch[i]}
	}
	return states
}

// FieldLineStates packs bare positions.
func (p *Particles) FieldLineStates() []State {
	states := make([]State, p.Num())
	for i, x := range p.XYZ {
		states[i] = State{x[0], x[1], x[2]}
	}
	return states
}

// FullOrbitStates converts guiding-center initial conditions to full-orbit
// (x, y, z, vx, vy, vz) states: the position is displaced by one gyroradius
// perpendicular to the local field and the velocity is decomposed into
// parallel and gyrating components at the given phase angle.
func (p *Particles) FullOrbitStates(m field.Model, phase float64) ([]State, error) {
	v := p.TotalSpeed()
	states := make([]State, p.Num())
	for i, xyz := range p.XYZ {
		b, err := m.B(xyz)
		if err != nil {
			return nil, err
		}
		absB := b.Norm()
		q1 := b.Unit()

		// Orthonormal frame (q1, q2, q3) by Gram-Schmidt against zhat.
		q2 := geom.Vec3{0, 0, 1}
		q2 = q2.Sub(q1.Scale(q1.Dot(q2))).Unit()
		q3 := q1.Cross(q2)

		vpar := v * p.Pitch[i]
		vperp := math.Sqrt(math.Max(0, v*v-vpar*vpar))
		rg := p.Mass * vperp / (math.Abs(p.Charge) * absB)

		sin, cos := math.Sincos(phase)
		pos := xyz.Add(q2.Scale(rg * sin)).Add(q3.Scale(rg * cos))
		vel := q1.Scale(vpar).
			Add(q2.Scale(-vperp * cos)).
			Add(q3.Scale(vperp * sin))

		states[i] = State{pos[0], pos[1], pos[2], vel[0], vel[1], vel[2]}
	}
	return states, nil
}
