// Package tracer integrates batches of trajectories through a field in
// lock-step: every trajectory in a batch takes the same number of saved
// steps, so results stay rectangular for batched consumers. A trajectory
// that crosses the loss boundary or produces a non-finite state is frozen at
// its last good state and flagged; freezing, not shortening, keeps array
// shapes independent of physical outcomes.
package tracer

import (
	"context"
	"errors"
	"fmt"

	"github.com/marodr/coiltrace/internal/dynamics"
	"github.com/marodr/coiltrace/internal/field"
	"github.com/marodr/coiltrace/internal/integrators"
	"github.com/marodr/coiltrace/internal/parallel"
)

// Outcome is the terminal status of one trajectory.
type Outcome int

const (
	// Completed means the trajectory reached the full time horizon.
	Completed Outcome = iota
	// Lost means the trajectory crossed the loss boundary and was frozen.
	Lost
	// Diverged means a non-finite state or derivative appeared and the
	// trajectory was frozen. Other trajectories in the batch continue.
	Diverged
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Lost:
		return "lost"
	case Diverged:
		return "diverged"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Boundary is the spatial loss criterion: a trajectory terminates when its
// cylindrical radius leaves [RMin, RMax] or |z| exceeds ZMax.
type Boundary struct {
	RMin float64
	RMax float64
	ZMax float64
}

// Crossed reports whether the position part of x is outside the boundary.
func (b Boundary) Crossed(x dynamics.State) bool {
	if b.RMax <= 0 {
		return false
	}
	r := x.Position().CylR()
	return r < b.RMin || r > b.RMax || x[2] > b.ZMax || x[2] < -b.ZMax
}

// Config fixes the stepping policy for one Trace call.
type Config struct {
	// Steps is the number of saved intervals; every result row has Steps+1
	// states.
	Steps int
	// MaxTime is the integration horizon in seconds (or meters for
	// field-line arclength).
	MaxTime float64
	// Scheme names the stepper: euler, rk4, rk45, boris.
	Scheme string
	// Adaptive enables adaptive substeps between saved states (rk45 only).
	Adaptive bool
	// Tol is the adaptive local error tolerance.
	Tol float64
	// MaxSubsteps caps adaptive substeps per saved interval.
	MaxSubsteps int
	// Workers is the shard count for batched tracing; non-positive means
	// one per CPU.
	Workers int
	// Boundary is the early-termination criterion; zero value disables it.
	Boundary Boundary
}

func (cfg Config) validate() error {
	if cfg.Steps < 1 {
		return fmt.Errorf("tracer: steps must be positive, got %d: %w", cfg.Steps, ErrConfig)
	}
	if cfg.MaxTime <= 0 {
		return fmt.Errorf("tracer: horizon must be positive, got %g: %w", cfg.MaxTime, ErrConfig)
	}
	if _, ok := integrators.New(cfg.Scheme); !ok {
		return fmt.Errorf("tracer: unknown scheme %q: %w", cfg.Scheme, ErrConfig)
	}
	if cfg.Adaptive {
		if cfg.Scheme != "rk45" {
			return fmt.Errorf("tracer: adaptive stepping requires rk45, got %q: %w", cfg.Scheme, ErrConfig)
		}
		if cfg.Tol <= 0 {
			return fmt.Errorf("tracer: adaptive tolerance must be positive: %w", ErrConfig)
		}
	}
	return nil
}

// ErrConfig marks invalid trace configuration.
var ErrConfig = errors.New("invalid configuration")

// Result is a rectangular batch of trajectories.
type Result struct {
	// Times has Steps+1 entries shared by all trajectories.
	Times []float64
	// States is indexed [trajectory][step]; frozen trajectories repeat
	// their last state through the remaining steps.
	States [][]dynamics.State
	// Outcomes records each trajectory's terminal status.
	Outcomes []Outcome
	// StopStep is the saved step at which a non-completed trajectory froze.
	StopStep []int
}

// LostFraction is the fraction of trajectories that terminated early,
// divergent ones included.
func (r *Result) LostFraction() float64 {
	if len(r.Outcomes) == 0 {
		return 0
	}
	n := 0
	for _, o := range r.Outcomes {
		if o != Completed {
			n++
		}
	}
	return float64(n) / float64(len(r.Outcomes))
}

// Trace integrates every initial state through sys in lock-step. All
// trajectories share the stepping policy fixed by cfg; results are
// independent of the worker count.
func Trace(ctx context.Context, sys dynamics.System, inits []dynamics.State, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Scheme == "boris" {
		// The Boris pusher only steps Lorentz orbits. Rejecting the pairing
		// up front keeps Diverged reserved for non-finite numerics.
		if _, ok := sys.(*dynamics.FullOrbit); !ok {
			return nil, fmt.Errorf("tracer: boris scheme requires a full-orbit system: %w", ErrConfig)
		}
	}
	if len(inits) == 0 {
		return nil, fmt.Errorf("tracer: no initial states: %w", ErrConfig)
	}
	for i, x0 := range inits {
		if len(x0) != sys.Dim() {
			return nil, fmt.Errorf("tracer: initial state %d has dim %d, system wants %d: %w",
				i, len(x0), sys.Dim(), ErrConfig)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := len(inits)
	dt := cfg.MaxTime / float64(cfg.Steps)

	res := &Result{
		Times:    make([]float64, cfg.Steps+1),
		States:   make([][]dynamics.State, n),
		Outcomes: make([]Outcome, n),
		StopStep: make([]int, n),
	}
	for k := 0; k <= cfg.Steps; k++ {
		res.Times[k] = float64(k) * dt
	}

	parallel.For(n, cfg.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			res.States[i], res.Outcomes[i], res.StopStep[i] = traceOne(sys, inits[i], dt, cfg)
		}
	})

	return res, nil
}

// traceOne advances a single trajectory over the full save grid. Each worker
// owns its stepper instance; steppers carry scratch buffers and are not
// shared.
func traceOne(sys dynamics.System, x0 dynamics.State, dt float64, cfg Config) ([]dynamics.State, Outcome, int) {
	stepper, _ := integrators.New(cfg.Scheme)
	states := make([]dynamics.State, cfg.Steps+1)
	states[0] = x0.Clone()

	x := x0.Clone()
	outcome := Completed
	stop := cfg.Steps

	for k := 1; k <= cfg.Steps; k++ {
		if outcome != Completed {
			states[k] = states[k-1]
			continue
		}

		t := float64(k-1) * dt
		next, err := advance(stepper, sys, x, t, dt, cfg)
		switch {
		case err != nil && errors.Is(err, field.ErrOutsideDomain):
			// Leaving a model's valid domain is a physical loss, not a
			// batch failure.
			outcome, stop = Lost, k-1
		case err != nil:
			outcome, stop = Diverged, k-1
		case !next.IsFinite():
			outcome, stop = Diverged, k-1
		case cfg.Boundary.Crossed(next):
			x = next
			states[k] = next.Clone()
			outcome, stop = Lost, k
			continue
		default:
			x = next
			states[k] = next.Clone()
			continue
		}
		states[k] = states[k-1]
	}

	return states, outcome, stop
}

// advance covers one saved interval: a single fixed step, or adaptive
// substeps landing exactly on the interval end.
func advance(stepper integrators.Stepper, sys dynamics.System, x dynamics.State, t, dt float64, cfg Config) (dynamics.State, error) {
	if !cfg.Adaptive {
		return stepper.Step(sys, x, t, dt)
	}

	ad := stepper.(integrators.AdaptiveStepper)
	maxSub := cfg.MaxSubsteps
	if maxSub <= 0 {
		maxSub = 1000
	}

	remaining := dt
	h := dt
	cur := x
	for sub := 0; sub < maxSub && remaining > 0; sub++ {
		if h > remaining {
			h = remaining
		}
		next, hNext, err := ad.StepAdaptive(sys, cur, t+dt-remaining, h, cfg.Tol)
		if err != nil {
			return nil, err
		}
		cur = next
		remaining -= h
		h = hNext
	}
	if remaining > 0 {
		return nil, fmt.Errorf("tracer: adaptive substep cap %d exhausted", maxSub)
	}
	return cur, nil
}
