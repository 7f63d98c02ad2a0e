package coils

// CoilSet pairs a symmetry-expanded curve set with coil currents. The
// independent currents are expanded alongside the curves; stellarator-flipped
// copies carry reversed current.
type CoilSet struct {
	*Curves
	baseCurrents []float64
	currents     []float64
}

// NewCoilSet attaches one current per independent curve.
func NewCoilSet(c *Curves, currents []float64) (*CoilSet, error) {
	if len(currents) != c.NumBase() {
		return nil, ErrCurrentCount
	}
	return &CoilSet{
		Curves:       c,
		baseCurrents: append([]float64(nil), currents...),
		currents:     expandCurrents(currents, c.nfp, c.stellsym),
	}, nil
}

// Currents returns the symmetry-expanded currents, aligned with Gamma rows.
func (cs *CoilSet) Currents() []float64 { return cs.currents }

// BaseCurrents returns a copy of the independent currents.
func (cs *CoilSet) BaseCurrents() []float64 {
	return append([]float64(nil), cs.baseCurrents...)
}

// NumParams is the length of the flat optimizable parameter vector:
// all curve coefficients followed by the independent currents.
func (cs *CoilSet) NumParams() int {
	return cs.NumBase()*3*(2*cs.order+1) + cs.NumBase()
}

// Pack flattens the independent degrees of freedom into a single vector.
// Layout: curve-major, axis-major coefficient blocks, then currents.
func (cs *CoilSet) Pack() []float64 {
	theta := make([]float64, 0, cs.NumParams())
	for i := range cs.base {
		for ax := 0; ax < 3; ax++ {
			theta = append(theta, cs.base[i][ax]...)
		}
	}
	theta = append(theta, cs.baseCurrents...)
	return theta
}

// WithParams rebuilds the coil set from a flat parameter vector produced by
// Pack. The receiver is not modified; shape metadata (order, segments,
// symmetry) carries over unchanged.
func (cs *CoilSet) WithParams(theta []float64) (*CoilSet, error) {
	if len(theta) != cs.NumParams() {
		return nil, ErrParamCount
	}
	m := 2*cs.order + 1
	dofs := make(Dofs, cs.NumBase())
	k := 0
	for i := range dofs {
		for ax := 0; ax < 3; ax++ {
			dofs[i][ax] = append([]float64(nil), theta[k:k+m]...)
			k += m
		}
	}
	currents := append([]float64(nil), theta[k:]...)
	curves, err := NewCurves(dofs, cs.nSegments, cs.nfp, cs.stellsym)
	if err != nil {
		return nil, err
	}
	return NewCoilSet(curves, currents)
}
