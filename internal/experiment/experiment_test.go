package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/marodr/coiltrace/internal/config"
	"github.com/marodr/coiltrace/internal/tracer"
)

func quickConfig() *config.Config {
	cfg := config.GetPreset("quick")
	cfg.Field.Model = "toroidal"
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Trace.Mode = "warp"
	if _, err := New(cfg); !errors.Is(err, config.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestCoilSetMatchesConfig(t *testing.T) {
	exp, err := New(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	cs, err := exp.CoilSet()
	if err != nil {
		t.Fatalf("CoilSet: %v", err)
	}
	// 3 base coils, 2 field periods, stellarator symmetric.
	if cs.NumBase() != 3 || cs.NumCoils() != 12 {
		t.Errorf("coils = %d base, %d total", cs.NumBase(), cs.NumCoils())
	}
}

func TestInitialStateDims(t *testing.T) {
	for _, tc := range []struct {
		mode string
		dim  int
	}{
		{"guiding_center", 4},
		{"full_orbit", 6},
		{"field_line", 3},
	} {
		t.Run(tc.mode, func(t *testing.T) {
			cfg := quickConfig()
			cfg.Trace.Mode = tc.mode
			exp, err := New(cfg)
			if err != nil {
				t.Fatal(err)
			}
			m, err := exp.Field(nil)
			if err != nil {
				t.Fatalf("Field: %v", err)
			}
			p, err := exp.Particles()
			if err != nil {
				t.Fatalf("Particles: %v", err)
			}
			sys, err := exp.System(m, p)
			if err != nil {
				t.Fatalf("System: %v", err)
			}
			inits, err := exp.InitialStates(m, p)
			if err != nil {
				t.Fatalf("InitialStates: %v", err)
			}
			if len(inits) != cfg.Particles.Count {
				t.Fatalf("got %d states, want %d", len(inits), cfg.Particles.Count)
			}
			if len(inits[0]) != tc.dim || sys.Dim() != tc.dim {
				t.Fatalf("dim = %d (system %d), want %d", len(inits[0]), sys.Dim(), tc.dim)
			}
		})
	}
}

func TestTraceToroidal(t *testing.T) {
	exp, err := New(quickConfig())
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Trace(context.Background())
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if len(res.States) != 4 {
		t.Fatalf("got %d trajectories, want 4", len(res.States))
	}
	if len(res.Times) != 51 {
		t.Fatalf("got %d save points, want 51", len(res.Times))
	}
	for p, out := range res.Outcomes {
		if out == tracer.Diverged {
			t.Errorf("particle %d diverged", p)
		}
	}
}

func TestParticlesDeterministicBySeed(t *testing.T) {
	cfg := quickConfig()
	cfg.Seed = 11
	exp, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	a, err := exp.Particles()
	if err != nil {
		t.Fatal(err)
	}
	b, err := exp.Particles()
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Pitch {
		if a.Pitch[i] != b.Pitch[i] {
			t.Fatalf("pitch %d differs: %v vs %v", i, a.Pitch[i], b.Pitch[i])
		}
	}
}

func TestOptimizeRequiresBiotSavart(t *testing.T) {
	exp, err := New(quickConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := exp.Optimize(context.Background(), nil); !errors.Is(err, ErrFieldModel) {
		t.Fatalf("err = %v, want ErrFieldModel", err)
	}
}
