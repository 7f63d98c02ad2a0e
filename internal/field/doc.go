// Package field evaluates magnetic fields as pure functions of position.
//
// Three model variants share the [Model] interface: [BiotSavart] sums the
// closed-form finite-segment field of a symmetry-expanded coil set,
// [NearAxis] evaluates a first-order expansion about a magnetic axis curve
// within a declared minor-radius domain, and [Equilibrium] interpolates a
// precomputed field grid loaded by an external collaborator.
//
// Spatial derivatives are provided through [GradModel]. Models without an
// analytic derivative are wrapped by [WithNumericGradients], which uses
// central differences with a fixed step; this is the documented
// differentiation approximation for the whole pipeline.
//
// The [Sampler] batches evaluation over many query points and shards the
// batch across workers; output ordering is independent of shard count.
package field
