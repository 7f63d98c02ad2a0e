package coils

import (
	"math"
	"testing"
)

func circleDofs(radius float64) Dofs {
	// x = radius*cos(2pi t), y = radius*sin(2pi t), z = 0
	d := make(Dofs, 1)
	for ax := 0; ax < 3; ax++ {
		d[0][ax] = make([]float64, 3)
	}
	d[0][0][2] = radius // cos coefficient on x
	d[0][1][1] = radius // sin coefficient on y
	return d
}

func TestCircleGeometry(t *testing.T) {
	const r = 1.7
	c, err := NewCurves(circleDofs(r), 128, 1, false)
	if err != nil {
		t.Fatal(err)
	}

	if got := c.Lengths()[0]; math.Abs(got-2*math.Pi*r) > 1e-9 {
		t.Errorf("circle length: got %.12f, want %.12f", got, 2*math.Pi*r)
	}

	for k, kappa := range c.Curvatures()[0] {
		if math.Abs(kappa-1/r) > 1e-9 {
			t.Fatalf("curvature at segment %d: got %.12f, want %.12f", k, kappa, 1/r)
		}
	}

	for _, p := range c.Gamma()[0] {
		if math.Abs(p.Norm()-r) > 1e-9 {
			t.Fatalf("point off circle: %v", p)
		}
	}
}

func TestSymmetryExpansionCount(t *testing.T) {
	tests := []struct {
		nfp      int
		stellsym bool
		want     int
	}{
		{1, false, 2},
		{2, false, 4},
		{2, true, 8},
		{4, true, 16},
	}

	for _, tt := range tests {
		c, err := CircularArray(2, 3, 6.0, 1.0, 32, tt.nfp, tt.stellsym)
		if err != nil {
			t.Fatal(err)
		}
		if c.NumCoils() != tt.want {
			t.Errorf("nfp=%d stellsym=%v: got %d coils, want %d",
				tt.nfp, tt.stellsym, c.NumCoils(), tt.want)
		}
	}
}

func TestSymmetryRotation(t *testing.T) {
	// With nfp=2 and no flip, the second half of the expanded set is the
	// base set rotated by pi about z.
	c, err := CircularArray(1, 2, 5.0, 0.8, 16, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	base := c.Gamma()[0]
	rotated := c.Gamma()[1]
	for k := range base {
		want := base[k].RotateZ(math.Pi)
		if want.Sub(rotated[k]).Norm() > 1e-12 {
			t.Fatalf("segment %d: rotated point %v, want %v", k, rotated[k], want)
		}
	}
}

func TestStellaratorFlipCurrents(t *testing.T) {
	curves, err := CircularArray(2, 2, 5.0, 0.8, 16, 2, true)
	if err != nil {
		t.Fatal(err)
	}
	cs, err := NewCoilSet(curves, []float64{1e6, 2e6})
	if err != nil {
		t.Fatal(err)
	}

	cur := cs.Currents()
	if len(cur) != 8 {
		t.Fatalf("expected 8 expanded currents, got %d", len(cur))
	}
	// Layout per field period: unflipped pair then flipped pair.
	wantFirstPeriod := []float64{1e6, 2e6, -1e6, -2e6}
	for i, want := range wantFirstPeriod {
		if cur[i] != want {
			t.Errorf("current %d: got %g, want %g", i, cur[i], want)
		}
	}
}

func TestPackRoundTrip(t *testing.T) {
	curves, err := CircularArray(3, 3, 6.0, 1.2, 32, 2, true)
	if err != nil {
		t.Fatal(err)
	}
	cs, err := NewCoilSet(curves, []float64{1e7, 1e7, 1e7})
	if err != nil {
		t.Fatal(err)
	}

	theta := cs.Pack()
	if len(theta) != cs.NumParams() {
		t.Fatalf("pack length %d, want %d", len(theta), cs.NumParams())
	}

	rebuilt, err := cs.WithParams(theta)
	if err != nil {
		t.Fatal(err)
	}

	a, b := cs.Gamma(), rebuilt.Gamma()
	for i := range a {
		for k := range a[i] {
			if a[i][k].Sub(b[i][k]).Norm() > 0 {
				t.Fatalf("coil %d segment %d differs after round trip", i, k)
			}
		}
	}

	if _, err := cs.WithParams(theta[:len(theta)-1]); err != ErrParamCount {
		t.Errorf("expected ErrParamCount, got %v", err)
	}
}

func TestValidation(t *testing.T) {
	d := circleDofs(1)
	if _, err := NewCurves(d, 2, 1, false); err != ErrSegments {
		t.Errorf("expected ErrSegments, got %v", err)
	}
	if _, err := NewCurves(d, 16, 0, false); err != ErrFieldPeriods {
		t.Errorf("expected ErrFieldPeriods, got %v", err)
	}
	d[0][1] = d[0][1][:2]
	if _, err := NewCurves(d, 16, 1, false); err != ErrDofShape {
		t.Errorf("expected ErrDofShape, got %v", err)
	}
}
