// Package analysis provides post-trace diagnostics.
//
// The package includes tools for characterizing traced orbits and field
// lines:
//
//   - [PowerSpectrum]: frequency content of a scalar orbit signal
//   - [Poincare]: plane crossings of a traced trajectory
//   - [RotationalTransform]: winding of a field line around the axis
//   - [SeparationExponent]: divergence rate of nearby trajectories
//   - [ConvergenceOrder]: observed order from an error sequence
//
// # Chaos Detection
//
// A positive separation exponent indicates a stochastic field region:
//
//	lambda := analysis.SeparationExponent(sys, step, x0, dt, duration, 1e-8)
//	if lambda > 0 {
//	    // Field lines diverge exponentially
//	}
package analysis
