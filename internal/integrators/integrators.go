// Package integrators provides explicit stepping schemes for the particle
// and field-line equations of motion. Fixed-step schemes (RK4, Boris, Euler)
// are the ones used under differentiation; the embedded adaptive RK45 serves
// plain forward tracing.
package integrators

import "github.com/marodr/coiltrace/internal/dynamics"

// Stepper advances a state by one step of size dt.
type Stepper interface {
	Step(sys dynamics.System, x dynamics.State, t, dt float64) (dynamics.State, error)
}

// AdaptiveStepper additionally estimates local error and proposes the next
// step size.
type AdaptiveStepper interface {
	Stepper
	StepAdaptive(sys dynamics.System, x dynamics.State, t, dt, tol float64) (dynamics.State, float64, error)
}

// New returns the stepper registered under the given name.
func New(name string) (Stepper, bool) {
	switch name {
	case "euler":
		return NewEuler(), true
	case "rk4":
		return NewRK4(), true
	case "rk45":
		return NewRK45(), true
	case "boris":
		return NewBoris(), true
	}
	return nil, false
}
