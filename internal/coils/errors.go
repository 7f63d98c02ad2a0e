package coils

import "errors"

var (
	// ErrDofShape indicates curve coefficients with an invalid shape.
	ErrDofShape = errors.New("coils: curve dofs must have shape (nCurves, 3, 2*order+1)")

	// ErrSegments indicates too few discretization segments.
	ErrSegments = errors.New("coils: need at least 3 segments per curve")

	// ErrFieldPeriods indicates a non-positive field-period count.
	ErrFieldPeriods = errors.New("coils: field periods must be positive")

	// ErrCurrentCount indicates a current count that does not match the
	// independent curve count.
	ErrCurrentCount = errors.New("coils: one current per independent curve required")

	// ErrParamCount indicates a flat parameter vector whose length does not
	// match the coil set's degrees of freedom.
	ErrParamCount = errors.New("coils: parameter vector length mismatch")
)
