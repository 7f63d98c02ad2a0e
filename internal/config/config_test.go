package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := `
coils:
  count: 4
  field_periods: 3
trace:
  scheme: rk45
  adaptive: true
  tol: 1e-9
optimize:
  rule: gradient_descent
  rate: 0.01
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Coils.Count != 4 || cfg.Coils.FieldPeriods != 3 {
		t.Errorf("coils not overridden: %+v", cfg.Coils)
	}
	if cfg.Trace.Scheme != "rk45" || !cfg.Trace.Adaptive {
		t.Errorf("trace not overridden: %+v", cfg.Trace)
	}
	// Untouched sections keep their defaults.
	if cfg.Particles.Species != "proton" || cfg.Coils.Segments != DefaultSegments {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("trace:\n  shceme: rk4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad field model", func(c *Config) { c.Field.Model = "mhd" }},
		{"equilibrium without grid", func(c *Config) { c.Field.Model = "equilibrium" }},
		{"bad species", func(c *Config) { c.Particles.Species = "muon" }},
		{"bad trace mode", func(c *Config) { c.Trace.Mode = "drift_kinetic" }},
		{"zero steps", func(c *Config) { c.Trace.Steps = 0 }},
		{"boris outside full orbit", func(c *Config) { c.Trace.Scheme = "boris" }},
		{"bad rule", func(c *Config) { c.Optimize.Rule = "newton" }},
		{"minor exceeds major", func(c *Config) { c.Coils.MinorRadius = 2 }},
		{"too few segments", func(c *Config) { c.Coils.Segments = 2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
				t.Fatalf("err = %v, want ErrConfig", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := GetPreset("alpha")
	if cfg == nil {
		t.Fatal("missing alpha preset")
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Particles.Species != "alpha" || loaded.Coils.Current != 1e6 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestPresets(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %q missing", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}
