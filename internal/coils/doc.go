// Package coils represents electromagnetic coils as closed Fourier curves
// carrying currents.
//
// A coil curve is parametrized over t in [0,1) by a Fourier series per
// cartesian axis, with coefficient layout [c0, s1, c1, s2, c2, ...]: the
// constant term followed by interleaved sin/cos pairs. A [CoilSet] holds a
// reduced independent set of curves plus a discrete symmetry (field periods
// and optional stellarator symmetry) from which the full device coil set is
// reconstructed deterministically.
//
// Geometry (discretized positions, tangents, curvature, length) is computed
// once at construction. A CoilSet is immutable; optimization produces new
// sets via [CoilSet.WithParams].
package coils
