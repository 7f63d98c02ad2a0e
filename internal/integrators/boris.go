package integrators

import (
	"errors"

	"github.com/marodr/coiltrace/internal/dynamics"
	"github.com/marodr/coiltrace/internal/geom"
)

// ErrBorisSystem indicates the Boris pusher was given a system other than a
// full Lorentz orbit.
var ErrBorisSystem = errors.New("integrators: boris pusher requires a full-orbit system")

// Boris is the standard volume-preserving rotation scheme for the Lorentz
// orbit. It conserves kinetic energy exactly in a static magnetic field and
// only applies to full-orbit states.
type Boris struct{}

func NewBoris() *Boris {
	return &Boris{}
}

func (bo *Boris) Step(sys dynamics.System, x dynamics.State, t, dt float64) (dynamics.State, error) {
	fo, ok := sys.(*dynamics.FullOrbit)
	if !ok {
		return nil, ErrBorisSystem
	}

	pos := x.Position()
	v := geom.Vec3{x[3], x[4], x[5]}

	b, err := fo.Field.B(pos)
	if err != nil {
		return nil, err
	}

	// Half-angle rotation vector.
	tv := b.Scale(fo.Charge / fo.Mass * 0.5 * dt)
	s := tv.Scale(2 / (1 + tv.Dot(tv)))

	vPrime := v.Add(v.Cross(tv))
	vNew := v.Add(vPrime.Cross(s))
	posNew := pos.Add(vNew.Scale(dt))

	return dynamics.State{posNew[0], posNew[1], posNew[2], vNew[0], vNew[1], vNew[2]}, nil
}
