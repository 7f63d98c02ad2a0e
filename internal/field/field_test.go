package field

import (
	"errors"
	"math"
	"testing"

	"github.com/marodr/coiltrace/internal/coils"
	"github.com/marodr/coiltrace/internal/geom"
)

func circularCoil(t *testing.T, radius, current float64, segments int) *coils.CoilSet {
	t.Helper()
	d := make(coils.Dofs, 1)
	for ax := 0; ax < 3; ax++ {
		d[0][ax] = make([]float64, 3)
	}
	d[0][0][2] = radius
	d[0][1][1] = radius
	curves, err := coils.NewCurves(d, segments, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	cs, err := coils.NewCoilSet(curves, []float64{current})
	if err != nil {
		t.Fatal(err)
	}
	return cs
}

func TestBiotSavartCircularCoilCenter(t *testing.T) {
	const (
		radius  = 1.3
		current = 1e6
	)
	bs := NewBiotSavart(circularCoil(t, radius, current, 4000))

	b, err := bs.B(geom.Vec3{})
	if err != nil {
		t.Fatal(err)
	}

	want := Mu0 * current / (2 * radius)
	if rel := math.Abs(b.Norm()-want) / want; rel > 1e-6 {
		t.Errorf("center field: got %.10e, want %.10e (rel err %.2e)", b.Norm(), want, rel)
	}
	// Field at the center of a coil in the xy plane points along z.
	if math.Abs(b[0]) > 1e-12*want || math.Abs(b[1]) > 1e-12*want {
		t.Errorf("center field not axial: %v", b)
	}
}

func TestBiotSavartFieldPeriodSymmetry(t *testing.T) {
	curves, err := coils.CircularArray(2, 3, 6.0, 1.5, 64, 2, true)
	if err != nil {
		t.Fatal(err)
	}
	cs, err := coils.NewCoilSet(curves, []float64{1e6, 1.3e6})
	if err != nil {
		t.Fatal(err)
	}
	bs := NewBiotSavart(cs)

	p := geom.Vec3{6.4, 0.3, 0.2}
	rot := 2 * math.Pi / float64(curves.FieldPeriods())

	b1, err := bs.B(p)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := bs.B(p.RotateZ(rot))
	if err != nil {
		t.Fatal(err)
	}

	want := b1.RotateZ(rot)
	if diff := want.Sub(b2).Norm() / b1.Norm(); diff > 1e-10 {
		t.Errorf("field not nfp-symmetric: rel diff %.2e", diff)
	}
}

func TestBiotSavartOnFilament(t *testing.T) {
	bs := NewBiotSavart(circularCoil(t, 1.0, 1e6, 200))
	// Exactly on the first discretization point of the coil.
	p := bs.Coils().Gamma()[0][0]
	if _, err := bs.B(p); !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite on filament, got %v", err)
	}
}

func TestToroidalGradientMatchesNumeric(t *testing.T) {
	tf := &Toroidal{B0: 5.7, R0: 1.8}
	fd := &numericGrad{Model: modelOnly{tf}, step: 1e-7}

	p := geom.Vec3{1.9, 0.4, 0.1}
	_, ga, err := tf.BAndGradAbsB(p)
	if err != nil {
		t.Fatal(err)
	}
	_, gn, err := fd.BAndGradAbsB(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := ga.Sub(gn).Norm() / ga.Norm(); diff > 1e-5 {
		t.Errorf("analytic vs numeric grad|B|: rel diff %.2e", diff)
	}
}

// modelOnly hides the GradModel implementation so WithNumericGradients-style
// wrapping can be exercised against the analytic answer.
type modelOnly struct{ m Model }

func (w modelOnly) B(p geom.Vec3) (geom.Vec3, error) { return w.m.B(p) }

func TestNearAxisDomain(t *testing.T) {
	na := &NearAxis{
		RAxisCos: []float64{1.0, 0.05},
		ZAxisSin: []float64{0, -0.05},
		NFP:      2,
		B0:       1.0,
		EtaBar:   0.9,
		RMax:     0.1,
	}

	onAxis, _ := na.axisAt(0.3)
	if _, err := na.B(onAxis); err != nil {
		t.Errorf("axis point should be inside domain: %v", err)
	}

	far := geom.Vec3{2.5, 0, 0}
	_, err := na.B(far)
	if !errors.Is(err, ErrOutsideDomain) {
		t.Fatalf("expected ErrOutsideDomain, got %v", err)
	}
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatal("expected *DomainError with position context")
	}
	if de.Position != far {
		t.Errorf("domain error position: got %v, want %v", de.Position, far)
	}
}

func TestNearAxisStrengthModulation(t *testing.T) {
	na := &NearAxis{
		RAxisCos: []float64{1.0},
		ZAxisSin: []float64{0},
		NFP:      1,
		B0:       2.0,
		EtaBar:   0.5,
		RMax:     0.2,
	}
	// Outboard of the circular axis, theta=0: |B| = B0 (1 + etaBar r).
	r := 0.1
	b, err := na.B(geom.Vec3{1 + r, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	want := 2.0 * (1 + 0.5*r)
	if math.Abs(b.Norm()-want) > 1e-12 {
		t.Errorf("outboard |B|: got %.12f, want %.12f", b.Norm(), want)
	}
}

func TestEquilibriumInterpolation(t *testing.T) {
	// Uniform vertical field on the grid must interpolate exactly.
	nR, nPhi, nZ := 4, 8, 4
	data := make([]geom.Vec3, nR*nPhi*nZ)
	for i := range data {
		data[i] = geom.Vec3{0, 0, 2.5}
	}
	eq, err := NewEquilibrium(0.5, 1.5, -0.5, 0.5, nR, nPhi, nZ, 2, data)
	if err != nil {
		t.Fatal(err)
	}

	b, err := eq.B(geom.Vec3{0.73, 0.41, 0.12})
	if err != nil {
		t.Fatal(err)
	}
	if b.Sub(geom.Vec3{0, 0, 2.5}).Norm() > 1e-12 {
		t.Errorf("uniform field not preserved: %v", b)
	}

	if _, err := eq.B(geom.Vec3{5, 0, 0}); !errors.Is(err, ErrOutsideDomain) {
		t.Errorf("expected ErrOutsideDomain outside grid, got %v", err)
	}

	if _, err := NewEquilibrium(0.5, 1.5, -0.5, 0.5, nR, nPhi, nZ, 2, data[:10]); err != ErrGridShape {
		t.Errorf("expected ErrGridShape, got %v", err)
	}
}

func TestSamplerShardInvariance(t *testing.T) {
	bs := NewBiotSavart(circularCoil(t, 1.0, 1e6, 200))

	points := make([]geom.Vec3, 101)
	for i := range points {
		points[i] = geom.Vec3{0.1 * float64(i%7), 0.05 * float64(i%5), 0.02 * float64(i%3)}
	}

	ref, err := NewSampler(bs, 1).Sample(points)
	if err != nil {
		t.Fatal(err)
	}
	for _, shards := range []int{2, 3, 8, 64} {
		got, err := NewSampler(bs, shards).Sample(points)
		if err != nil {
			t.Fatal(err)
		}
		for i := range ref {
			if ref[i] != got[i] {
				t.Fatalf("shards=%d: point %d differs from single-shard result", shards, i)
			}
		}
	}
}

func BenchmarkBiotSavart(b *testing.B) {
	curves, err := coils.CircularArray(3, 4, 6.0, 1.5, 100, 2, true)
	if err != nil {
		b.Fatal(err)
	}
	cs, err := coils.NewCoilSet(curves, []float64{1e7, 1e7, 1e7})
	if err != nil {
		b.Fatal(err)
	}
	bs := NewBiotSavart(cs)
	p := geom.Vec3{6.2, 0.1, 0.05}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := bs.B(p); err != nil {
			b.Fatal(err)
		}
	}
}
