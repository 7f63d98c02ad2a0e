package objective

import (
	"context"
	"fmt"

	"github.com/marodr/coiltrace/internal/coils"
	"github.com/marodr/coiltrace/internal/field"
	"github.com/marodr/coiltrace/internal/surface"
)

// NormalField measures how far the coil field is from being tangent to a
// target flux surface: the quadrature-weighted mean of (B·n)^2 over the
// surface grid. A perfectly conforming field scores zero.
type NormalField struct {
	Template *coils.CoilSet
	Quad     *surface.Quadrature
	Shards   int
}

func (n *NormalField) Name() string { return "normal-field" }

func (n *NormalField) Evaluate(_ context.Context, theta []float64) (float64, error) {
	cs, err := n.Template.WithParams(theta)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrObjective, err)
	}
	sampler := field.NewSampler(field.NewBiotSavart(cs), n.Shards)
	bs, err := sampler.Sample(n.Quad.Points)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrObjective, err)
	}
	num, den := 0.0, 0.0
	for i, b := range bs {
		bn := b.Dot(n.Quad.Normals[i])
		num += n.Quad.Weights[i] * bn * bn
		den += n.Quad.Weights[i]
	}
	return num / den, nil
}
