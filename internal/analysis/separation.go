package analysis

import (
	"math"

	"github.com/marodr/coiltrace/internal/dynamics"
	"github.com/marodr/coiltrace/internal/integrators"
)

// SeparationExponent estimates the largest Lyapunov exponent by running two
// nearby trajectories and averaging their log separation growth, with
// renormalization to keep the pair close. A positive value indicates
// exponential divergence.
func SeparationExponent(
	sys dynamics.System,
	step integrators.Stepper,
	x0 dynamics.State,
	dt, duration float64,
	perturbation float64,
) float64 {
	if len(x0) == 0 || perturbation <= 0 {
		return 0
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += perturbation
	d0 := perturbation

	sumLog := 0.0
	count := 0

	for t := 0.0; t < duration; t += dt {
		var err error
		x, err = step.Step(sys, x, t, dt)
		if err != nil {
			break
		}
		xp, err = step.Step(sys, xp, t, dt)
		if err != nil {
			break
		}

		sep := 0.0
		for i := range x {
			diff := xp[i] - x[i]
			sep += diff * diff
		}
		sep = math.Sqrt(sep)
		if sep == 0 {
			continue
		}

		sumLog += math.Log(sep / d0)
		count++

		// Renormalize to the initial offset to prevent overflow.
		scale := d0 / sep
		for i := range xp {
			xp[i] = x[i] + (xp[i]-x[i])*scale
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}

// ConvergenceOrder estimates the observed order from errors measured at
// successively halved step sizes: the mean log2 ratio of consecutive errors.
func ConvergenceOrder(errs []float64) float64 {
	if len(errs) < 2 {
		return 0
	}
	sum := 0.0
	count := 0
	for i := 1; i < len(errs); i++ {
		if errs[i-1] <= 0 || errs[i] <= 0 {
			continue
		}
		sum += math.Log2(errs[i-1] / errs[i])
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
