// Package objective assembles scalar losses over coil parameters. Every
// objective is a total, stateless function of the flat parameter vector and
// its fixed construction-time inputs (particle ensembles, target surfaces,
// trace policies): evaluating twice at the same parameters gives the same
// value, which the finite-difference gradients in package optimize rely on.
//
// All objectives are minimized. Early particle loss and numerical divergence
// inside a traced ensemble contribute through the confinement penalty; they
// never abort an evaluation.
package objective

import (
	"context"
	"errors"
)

// ErrObjective marks an objective that could not be evaluated at the given
// parameters (bad parameter shape, failed field setup). Non-finite values
// are not errors; the optimization driver handles them as divergence.
var ErrObjective = errors.New("objective: evaluation failed")

// Objective is a named scalar loss over a flat parameter vector.
type Objective interface {
	Name() string
	Evaluate(ctx context.Context, theta []float64) (float64, error)
}

// Term weights one objective inside a composite.
type Term struct {
	Objective Objective
	Weight    float64
}

// Weighted is an explicit weighted sum of objectives. Weights are
// configuration, never inferred.
type Weighted struct {
	terms []Term
}

func NewWeighted(terms ...Term) *Weighted {
	return &Weighted{terms: terms}
}

func (w *Weighted) Name() string { return "weighted" }

func (w *Weighted) Evaluate(ctx context.Context, theta []float64) (float64, error) {
	total := 0.0
	for _, term := range w.terms {
		if term.Weight == 0 {
			continue
		}
		v, err := term.Objective.Evaluate(ctx, theta)
		if err != nil {
			return 0, err
		}
		total += term.Weight * v
	}
	return total, nil
}
