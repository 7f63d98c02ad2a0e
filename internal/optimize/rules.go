package optimize

import "math"

// StepRule turns a gradient into a parameter update. Update returns the new
// parameter vector and must not modify theta or grad. Rules may carry state
// across iterations (moment estimates); Reset clears it.
type StepRule interface {
	Update(theta, grad []float64) []float64
	Reset()
}

// GradientDescent applies a fixed learning rate.
type GradientDescent struct {
	Rate float64
}

func (g *GradientDescent) Update(theta, grad []float64) []float64 {
	next := make([]float64, len(theta))
	for i := range theta {
		next[i] = theta[i] - g.Rate*grad[i]
	}
	return next
}

func (g *GradientDescent) Reset() {}

// Adam keeps exponential moving averages of the gradient and its square with
// bias correction. Zero-value Beta1/Beta2/Eps fall back to 0.9, 0.999, 1e-8.
type Adam struct {
	Rate  float64
	Beta1 float64
	Beta2 float64
	Eps   float64

	m, v []float64
	step int
}

func (a *Adam) Update(theta, grad []float64) []float64 {
	b1, b2, eps := a.Beta1, a.Beta2, a.Eps
	if b1 == 0 {
		b1 = 0.9
	}
	if b2 == 0 {
		b2 = 0.999
	}
	if eps == 0 {
		eps = 1e-8
	}
	if len(a.m) != len(theta) {
		a.m = make([]float64, len(theta))
		a.v = make([]float64, len(theta))
		a.step = 0
	}
	a.step++

	c1 := 1 - math.Pow(b1, float64(a.step))
	c2 := 1 - math.Pow(b2, float64(a.step))
	next := make([]float64, len(theta))
	for i := range theta {
		a.m[i] = b1*a.m[i] + (1-b1)*grad[i]
		a.v[i] = b2*a.v[i] + (1-b2)*grad[i]*grad[i]
		next[i] = theta[i] - a.Rate*(a.m[i]/c1)/(math.Sqrt(a.v[i]/c2)+eps)
	}
	return next
}

func (a *Adam) Reset() {
	a.m, a.v, a.step = nil, nil, 0
}
