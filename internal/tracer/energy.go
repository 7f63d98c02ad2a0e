package tracer

import (
	"errors"

	"github.com/marodr/coiltrace/internal/dynamics"
)

// ErrEnergyUnsupported indicates a system without a conserved-energy
// definition.
var ErrEnergyUnsupported = errors.New("tracer: system has no energy bookkeeping")

// EnergyHistory evaluates the conserved energy along every trajectory of a
// result: m vpar^2/2 + mu0 |B| for guiding centers (mu0 taken from each
// trajectory's initial state), kinetic energy for full orbits. Frozen tail
// states repeat their frozen energy.
func EnergyHistory(sys dynamics.System, res *Result) ([][]float64, error) {
	switch s := sys.(type) {
	case *dynamics.GuidingCenter:
		out := make([][]float64, len(res.States))
		for i, traj := range res.States {
			mu0, err := s.Mu(traj[0])
			if err != nil {
				return nil, err
			}
			row := make([]float64, len(traj))
			for k, x := range traj {
				e, err := s.TotalEnergy(x, mu0)
				if err != nil {
					return nil, err
				}
				row[k] = e
			}
			out[i] = row
		}
		return out, nil

	case *dynamics.FullOrbit:
		out := make([][]float64, len(res.States))
		for i, traj := range res.States {
			row := make([]float64, len(traj))
			for k, x := range traj {
				row[k] = s.KineticEnergy(x)
			}
			out[i] = row
		}
		return out, nil
	}
	return nil, ErrEnergyUnsupported
}
