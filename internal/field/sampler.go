package field

import (
	"github.com/marodr/coiltrace/internal/geom"
	"github.com/marodr/coiltrace/internal/parallel"
)

// Sampler evaluates a model over batches of query points, sharding the batch
// across workers. Results are reassembled in input order; shard boundaries
// are not observable in the output.
type Sampler struct {
	model  Model
	shards int
}

// NewSampler wraps m with the given shard count. A non-positive count means
// one shard per CPU.
func NewSampler(m Model, shards int) *Sampler {
	return &Sampler{model: m, shards: parallel.Workers(shards)}
}

func (s *Sampler) Model() Model { return s.model }

// Sample evaluates B at every point. On error the first failure in input
// order is returned along with no results.
func (s *Sampler) Sample(points []geom.Vec3) ([]geom.Vec3, error) {
	out := make([]geom.Vec3, len(points))
	errs := make([]error, len(points))

	parallel.For(len(points), s.shards, func(start, end int) {
		for i := start; i < end; i++ {
			out[i], errs[i] = s.model.B(points[i])
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SampleAbsB evaluates |B| at every point.
func (s *Sampler) SampleAbsB(points []geom.Vec3) ([]float64, error) {
	bs, err := s.Sample(points)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(bs))
	for i, b := range bs {
		out[i] = b.Norm()
	}
	return out, nil
}
