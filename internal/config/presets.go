package config

func preset(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

var Presets = map[string]*Config{
	// Two field periods, stellarator symmetric, the default working setup.
	"stellarator": preset(func(c *Config) {}),

	// Coarser discretization and a short trace for quick iteration.
	"quick": preset(func(c *Config) {
		c.Coils.Segments = 60
		c.Coils.Order = 2
		c.Particles.Count = 4
		c.Trace.Steps = 50
		c.Trace.MaxTime = 1e-6
		c.Optimize.Iterations = 5
	}),

	// Fusion-born alpha particles in a stronger field.
	"alpha": preset(func(c *Config) {
		c.Particles.Species = "alpha"
		c.Particles.EnergyEV = 3.52e6
		c.Coils.Current = 1e6
		c.Trace.MaxTime = 1e-4
	}),

	// Full-orbit tracing with the Boris pusher.
	"full-orbit": preset(func(c *Config) {
		c.Trace.Mode = "full_orbit"
		c.Trace.Scheme = "boris"
		c.Trace.Steps = 2000
		c.Trace.MaxTime = 1e-6
	}),

	// Field-line following, arclength horizon in meters.
	"field-line": preset(func(c *Config) {
		c.Trace.Mode = "field_line"
		c.Trace.MaxTime = 100
		c.Trace.Steps = 1000
	}),
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	out := *cfg
	return &out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
