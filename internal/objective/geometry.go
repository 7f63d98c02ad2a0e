package objective

import (
	"context"
	"fmt"

	"github.com/marodr/coiltrace/internal/coils"
)

// LengthPenalty sums squared excess of each base coil length over Target.
// Coils at or below the target contribute nothing.
type LengthPenalty struct {
	Template *coils.CoilSet
	Target   float64
}

func (l *LengthPenalty) Name() string { return "length" }

func (l *LengthPenalty) Evaluate(_ context.Context, theta []float64) (float64, error) {
	cs, err := l.Template.WithParams(theta)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrObjective, err)
	}
	total := 0.0
	for _, length := range cs.Lengths()[:cs.NumBase()] {
		if ex := length - l.Target; ex > 0 {
			total += ex * ex
		}
	}
	return total, nil
}

// CurvaturePenalty integrates squared excess curvature over Threshold along
// each base coil, weighted by arc length per segment.
type CurvaturePenalty struct {
	Template  *coils.CoilSet
	Threshold float64
}

func (c *CurvaturePenalty) Name() string { return "curvature" }

func (c *CurvaturePenalty) Evaluate(_ context.Context, theta []float64) (float64, error) {
	cs, err := c.Template.WithParams(theta)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrObjective, err)
	}
	kappas := cs.Curvatures()
	lengths := cs.Lengths()
	total := 0.0
	for i := 0; i < cs.NumBase(); i++ {
		ds := lengths[i] / float64(cs.Segments())
		for _, k := range kappas[i] {
			if ex := k - c.Threshold; ex > 0 {
				total += ex * ex * ds
			}
		}
	}
	return total, nil
}
