// Package dynamics defines particle phase-space states and the equations of
// motion integrated through a magnetic field: guiding-center drift motion,
// the full Lorentz orbit, and field-line following.
//
// Systems are pure readers of their field model; they never retain or mutate
// optimizable parameters. Derivative evaluation can fail with a field domain
// error, which the tracer treats as an early-termination outcome rather than
// a failure of the whole batch.
package dynamics
