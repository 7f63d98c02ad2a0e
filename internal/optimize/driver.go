package optimize

import (
	"context"
	"errors"
	"math"

	"github.com/marodr/coiltrace/internal/objective"
)

// Status reports how an optimization run ended.
type Status int

const (
	Converged Status = iota
	MaxIterationsReached
	Diverged
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max iterations reached"
	case Diverged:
		return "diverged"
	default:
		return "unknown"
	}
}

var ErrDriver = errors.New("invalid driver configuration")

// Driver minimizes a scalar objective over a flat parameter vector using
// finite-difference gradients and a pluggable step rule.
type Driver struct {
	Objective objective.Objective
	Rule      StepRule

	// MaxIterations bounds the number of update steps.
	MaxIterations int
	// Tolerance stops the run once the gradient infinity norm falls below it.
	Tolerance float64
	// FDStep is the relative finite-difference step (zero for default).
	FDStep float64
	// Workers shards gradient components (non-positive for all CPUs).
	Workers int

	// Callback, if set, observes every accepted iteration.
	Callback func(iter int, value, gradNorm float64)
}

// Report summarizes a run. Theta and Value are the best finite point seen,
// even when the run diverged afterwards. History holds the objective value
// at theta0 followed by one entry per iteration.
type Report struct {
	Theta      []float64
	Value      float64
	History    []float64
	Status     Status
	Iterations int
}

// Run iterates from theta0 until convergence, iteration exhaustion, or
// divergence. theta0 is not modified. Objective evaluation errors abort the
// run; non-finite values and gradients end it with Diverged.
func (d *Driver) Run(ctx context.Context, theta0 []float64) (*Report, error) {
	if d.Objective == nil || d.Rule == nil || d.MaxIterations <= 0 {
		return nil, ErrDriver
	}
	d.Rule.Reset()

	theta := append([]float64(nil), theta0...)
	value, err := d.Objective.Evaluate(ctx, theta)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Theta:   append([]float64(nil), theta...),
		Value:   value,
		History: []float64{value},
		Status:  MaxIterationsReached,
	}
	if !isFinite(value) {
		rep.Status = Diverged
		return rep, nil
	}

	for iter := 1; iter <= d.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		grad, err := Gradient(ctx, d.Objective, theta, d.FDStep, d.Workers)
		if err != nil {
			return nil, err
		}
		gnorm := infNorm(grad)
		if math.IsNaN(gnorm) || math.IsInf(gnorm, 0) {
			rep.Status = Diverged
			return rep, nil
		}
		if gnorm < d.Tolerance {
			rep.Status = Converged
			return rep, nil
		}

		theta = d.Rule.Update(theta, grad)
		value, err = d.Objective.Evaluate(ctx, theta)
		if err != nil {
			return nil, err
		}

		rep.History = append(rep.History, value)
		rep.Iterations = iter
		if d.Callback != nil {
			d.Callback(iter, value, gnorm)
		}
		if !isFinite(value) {
			rep.Status = Diverged
			return rep, nil
		}
		if value < rep.Value {
			rep.Value = value
			rep.Theta = append(rep.Theta[:0], theta...)
		}
	}
	return rep, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func infNorm(v []float64) float64 {
	max := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > max {
			max = a
		}
	}
	return max
}
