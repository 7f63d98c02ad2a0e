package tracer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/marodr/coiltrace/internal/dynamics"
	"github.com/marodr/coiltrace/internal/field"
	"github.com/marodr/coiltrace/internal/geom"
)

func toroidalGC() *dynamics.GuidingCenter {
	return &dynamics.GuidingCenter{
		Field:  &field.Toroidal{B0: 5.0, R0: 1.7},
		Mass:   dynamics.AlphaParticleMass,
		Charge: dynamics.AlphaParticleCharge,
		Energy: dynamics.FusionAlphaEnergy,
	}
}

func gcEnsemble(t *testing.T, n int) []dynamics.State {
	t.Helper()
	p, err := dynamics.NewParticles(ringPositions(n, 1.7), nil,
		dynamics.AlphaParticleMass, dynamics.AlphaParticleCharge, dynamics.FusionAlphaEnergy, 7)
	if err != nil {
		t.Fatal(err)
	}
	return p.GuidingCenterStates()
}

func ringPositions(n int, r0 float64) []geom.Vec3 {
	pts := make([]geom.Vec3, n)
	for i := range pts {
		pts[i] = geom.Vec3{r0 + 0.01*float64(i%5), 0.002 * float64(i), 0}
	}
	return pts
}

func baseConfig() Config {
	return Config{
		Steps:   50,
		MaxTime: 1e-6,
		Scheme:  "rk4",
		Workers: 4,
	}
}

func TestTraceRectangular(t *testing.T) {
	res, err := Trace(context.Background(), toroidalGC(), gcEnsemble(t, 9), baseConfig())
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Times) != 51 {
		t.Fatalf("expected 51 saved times, got %d", len(res.Times))
	}
	for i, traj := range res.States {
		if len(traj) != 51 {
			t.Fatalf("trajectory %d has %d states, want 51", i, len(traj))
		}
		for k, x := range traj {
			if len(x) != 4 {
				t.Fatalf("trajectory %d step %d: dim %d", i, k, len(x))
			}
		}
	}
}

func TestTraceShardInvariance(t *testing.T) {
	inits := gcEnsemble(t, 13)

	cfg := baseConfig()
	cfg.Workers = 1
	ref, err := Trace(context.Background(), toroidalGC(), inits, cfg)
	if err != nil {
		t.Fatal(err)
	}

	for _, workers := range []int{2, 5, 16} {
		cfg.Workers = workers
		got, err := Trace(context.Background(), toroidalGC(), inits, cfg)
		if err != nil {
			t.Fatal(err)
		}
		for i := range ref.States {
			for k := range ref.States[i] {
				for d := range ref.States[i][k] {
					if ref.States[i][k][d] != got.States[i][k][d] {
						t.Fatalf("workers=%d: trajectory %d step %d dim %d differs", workers, i, k, d)
					}
				}
			}
		}
	}
}

func TestTraceBatchedMatchesSingle(t *testing.T) {
	inits := gcEnsemble(t, 6)

	batch, err := Trace(context.Background(), toroidalGC(), inits, baseConfig())
	if err != nil {
		t.Fatal(err)
	}

	for i := range inits {
		single, err := Trace(context.Background(), toroidalGC(), inits[i:i+1], baseConfig())
		if err != nil {
			t.Fatal(err)
		}
		for k := range single.States[0] {
			for d := range single.States[0][k] {
				if single.States[0][k][d] != batch.States[i][k][d] {
					t.Fatalf("trajectory %d differs between batched and single runs", i)
				}
			}
		}
	}
}

func TestEnergyConservationConverges(t *testing.T) {
	// Max relative energy drift must shrink with step size at roughly the
	// integrator's order.
	drift := func(steps int) float64 {
		cfg := baseConfig()
		cfg.Steps = steps
		cfg.MaxTime = 2e-6
		res, err := Trace(context.Background(), toroidalGC(), gcEnsemble(t, 3), cfg)
		if err != nil {
			t.Fatal(err)
		}
		energies, err := EnergyHistory(toroidalGC(), res)
		if err != nil {
			t.Fatal(err)
		}
		worst := 0.0
		for _, row := range energies {
			for _, e := range row {
				if d := math.Abs(e-row[0]) / row[0]; d > worst {
					worst = d
				}
			}
		}
		return worst
	}

	coarse := drift(200)
	fine := drift(400)

	if coarse > 1e-3 {
		t.Errorf("energy drift too large at coarse step: %.3e", coarse)
	}
	if fine >= coarse {
		t.Errorf("energy drift did not shrink with step size: coarse %.3e, fine %.3e", coarse, fine)
	}
}

func TestEarlyTerminationFreezes(t *testing.T) {
	cfg := baseConfig()
	cfg.Steps = 100
	cfg.MaxTime = 1e-5
	// Tight vertical boundary: the toroidal-field vertical drift must cross it.
	cfg.Boundary = Boundary{RMin: 0.5, RMax: 3.0, ZMax: 1e-4}

	res, err := Trace(context.Background(), toroidalGC(), gcEnsemble(t, 4), cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i, o := range res.Outcomes {
		if o != Lost {
			t.Fatalf("trajectory %d: expected Lost, got %v", i, o)
		}
		stop := res.StopStep[i]
		if stop <= 0 || stop >= cfg.Steps {
			t.Fatalf("trajectory %d: implausible stop step %d", i, stop)
		}
		frozen := res.States[i][stop]
		for k := stop; k <= cfg.Steps; k++ {
			for d := range frozen {
				if res.States[i][k][d] != frozen[d] {
					t.Fatalf("trajectory %d not frozen after stop step", i)
				}
			}
		}
	}

	if res.LostFraction() != 1.0 {
		t.Errorf("lost fraction: got %g, want 1", res.LostFraction())
	}
}

func TestDomainExitIsLossNotError(t *testing.T) {
	na := &field.NearAxis{
		RAxisCos: []float64{1.7},
		ZAxisSin: []float64{0},
		NFP:      1,
		B0:       5.0,
		EtaBar:   0.1,
		RMax:     0.05,
	}
	gc := &dynamics.GuidingCenter{
		Field:  field.WithNumericGradients(na, 0),
		Mass:   dynamics.AlphaParticleMass,
		Charge: dynamics.AlphaParticleCharge,
		Energy: dynamics.FusionAlphaEnergy,
	}

	// Start just inside the valid tube; drift carries it out.
	inits := []dynamics.State{{1.7 + 0.049, 0, 0, 0.9 * math.Sqrt(2*gc.Energy/gc.Mass)}}
	cfg := baseConfig()
	cfg.Steps = 400
	cfg.MaxTime = 1e-4

	res, err := Trace(context.Background(), gc, inits, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcomes[0] != Lost {
		t.Errorf("domain exit should record Lost, got %v", res.Outcomes[0])
	}
}

func TestAdaptiveMatchesFixedLoosely(t *testing.T) {
	inits := gcEnsemble(t, 2)

	fixed := baseConfig()
	fixed.Steps = 400
	fixed.MaxTime = 1e-6

	adaptive := fixed
	adaptive.Steps = 50
	adaptive.Scheme = "rk45"
	adaptive.Adaptive = true
	adaptive.Tol = 1e-10

	a, err := Trace(context.Background(), toroidalGC(), inits, fixed)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Trace(context.Background(), toroidalGC(), inits, adaptive)
	if err != nil {
		t.Fatal(err)
	}

	for i := range inits {
		fa := a.States[i][len(a.States[i])-1]
		fb := b.States[i][len(b.States[i])-1]
		for d := 0; d < 3; d++ {
			if math.Abs(fa[d]-fb[d]) > 1e-6 {
				t.Errorf("trajectory %d dim %d: fixed %.9f vs adaptive %.9f", i, d, fa[d], fb[d])
			}
		}
	}
}

func TestConfigValidation(t *testing.T) {
	sys := toroidalGC()
	inits := gcEnsemble(t, 1)

	bad := []Config{
		{Steps: 0, MaxTime: 1, Scheme: "rk4"},
		{Steps: 10, MaxTime: 0, Scheme: "rk4"},
		{Steps: 10, MaxTime: 1, Scheme: "leapfrog9"},
		{Steps: 10, MaxTime: 1, Scheme: "rk4", Adaptive: true, Tol: 1e-6},
		{Steps: 10, MaxTime: 1, Scheme: "rk45", Adaptive: true, Tol: 0},
	}
	for i, cfg := range bad {
		if _, err := Trace(context.Background(), sys, inits, cfg); !errors.Is(err, ErrConfig) {
			t.Errorf("config %d: expected ErrConfig, got %v", i, err)
		}
	}

	cfg := baseConfig()
	if _, err := Trace(context.Background(), sys, []dynamics.State{{1, 0, 0}}, cfg); !errors.Is(err, ErrConfig) {
		t.Error("dimension mismatch should be a configuration error")
	}
}

func TestBorisRejectsNonFullOrbit(t *testing.T) {
	cfg := baseConfig()
	cfg.Scheme = "boris"

	// A Diverged batch here would misreport an option mismatch as a
	// numerical failure.
	res, err := Trace(context.Background(), toroidalGC(), gcEnsemble(t, 3), cfg)
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("boris with a guiding-center system: expected ErrConfig, got %v", err)
	}
	if res != nil {
		t.Fatal("expected no result for a rejected configuration")
	}

	fl := &dynamics.FieldLine{Field: &field.Toroidal{B0: 5.0, R0: 1.7}}
	cfg.MaxTime = 1.0
	if _, err := Trace(context.Background(), fl, []dynamics.State{{1.7, 0, 0}}, cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("boris with a field-line system: expected ErrConfig, got %v", err)
	}
}
