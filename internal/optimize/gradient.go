package optimize

import (
	"context"
	"math"

	"github.com/marodr/coiltrace/internal/objective"
	"github.com/marodr/coiltrace/internal/parallel"
)

// DefaultFDStep is the relative central-difference step for gradients.
const DefaultFDStep = 1e-6

// Gradient estimates the objective gradient at theta by central differences,
// one component pair per evaluation. The step for component i is
// h*max(1, |theta_i|). Components are evaluated in parallel across workers;
// theta itself is never mutated.
func Gradient(ctx context.Context, obj objective.Objective, theta []float64, h float64, workers int) ([]float64, error) {
	if h <= 0 {
		h = DefaultFDStep
	}
	grad := make([]float64, len(theta))
	errs := make([]error, len(theta))

	parallel.For(len(theta), workers, func(start, end int) {
		probe := make([]float64, len(theta))
		for i := start; i < end; i++ {
			copy(probe, theta)
			step := h * math.Max(1, math.Abs(theta[i]))

			probe[i] = theta[i] + step
			fp, err := obj.Evaluate(ctx, probe)
			if err != nil {
				errs[i] = err
				continue
			}
			probe[i] = theta[i] - step
			fm, err := obj.Evaluate(ctx, probe)
			if err != nil {
				errs[i] = err
				continue
			}
			grad[i] = (fp - fm) / (2 * step)
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return grad, nil
}
