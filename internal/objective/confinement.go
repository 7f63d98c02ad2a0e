package objective

import (
	"context"
	"fmt"

	"github.com/marodr/coiltrace/internal/coils"
	"github.com/marodr/coiltrace/internal/dynamics"
	"github.com/marodr/coiltrace/internal/field"
	"github.com/marodr/coiltrace/internal/tracer"
)

// ConfinementLoss traces a fixed guiding-center ensemble through the
// Biot-Savart field of the parametrized coils and penalizes radial
// excursion from the target circle (R0, z=0) normalized by LossRadius,
// averaged over particles and saved steps. Lost and divergent trajectories
// keep contributing through their frozen states, which sit at or beyond the
// boundary, so early loss raises the objective smoothly.
type ConfinementLoss struct {
	// Template fixes coil shape metadata (order, segments, symmetry); its
	// coefficients are replaced by theta on every evaluation.
	Template  *coils.CoilSet
	Particles *dynamics.Particles
	Trace     tracer.Config

	// R0 is the target magnetic-axis major radius; LossRadius the
	// normalization distance.
	R0         float64
	LossRadius float64
	// LostWeight scales the additive lost-fraction term.
	LostWeight float64
	// GradStep is the field finite-difference step (zero for default).
	GradStep float64
}

func (c *ConfinementLoss) Name() string { return "confinement" }

func (c *ConfinementLoss) Evaluate(ctx context.Context, theta []float64) (float64, error) {
	cs, err := c.Template.WithParams(theta)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrObjective, err)
	}

	model := field.WithNumericGradients(field.NewBiotSavart(cs), c.GradStep)
	sys := &dynamics.GuidingCenter{
		Field:  model,
		Mass:   c.Particles.Mass,
		Charge: c.Particles.Charge,
		Energy: c.Particles.Energy,
	}

	res, err := tracer.Trace(ctx, sys, c.Particles.GuidingCenterStates(), c.Trace)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrObjective, err)
	}

	norm := c.LossRadius * c.LossRadius
	total := 0.0
	for _, traj := range res.States {
		sum := 0.0
		for _, x := range traj {
			dr := x.Position().CylR() - c.R0
			sum += (dr*dr + x[2]*x[2]) / norm
		}
		total += sum / float64(len(traj))
	}
	return total/float64(len(res.States)) + c.LostWeight*res.LostFraction(), nil
}
