package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSegments   = 120
	DefaultGradStep   = 1e-6
	DefaultSteps      = 200
	DefaultMaxTime    = 1e-5
	DefaultIterations = 50
	DefaultRate       = 1e-3
	DefaultTolerance  = 1e-8
)

var ErrConfig = errors.New("invalid configuration")

type Config struct {
	Coils     CoilsConfig     `yaml:"coils"`
	Field     FieldConfig     `yaml:"field"`
	Particles ParticlesConfig `yaml:"particles"`
	Trace     TraceConfig     `yaml:"trace"`
	Objective ObjectiveConfig `yaml:"objective"`
	Optimize  OptimizeConfig  `yaml:"optimize"`
	Workers   int             `yaml:"workers"`
	Seed      int64           `yaml:"seed"`
}

// CoilsConfig describes a circular starting array; the optimizer deforms it
// from there.
type CoilsConfig struct {
	Count        int     `yaml:"count"`
	Order        int     `yaml:"order"`
	MajorRadius  float64 `yaml:"major_radius"`
	MinorRadius  float64 `yaml:"minor_radius"`
	Segments     int     `yaml:"segments"`
	FieldPeriods int     `yaml:"field_periods"`
	StellSym     bool    `yaml:"stellarator_symmetric"`
	Current      float64 `yaml:"current"`
}

type FieldConfig struct {
	// Model selects the field source: biot_savart, near_axis, toroidal,
	// equilibrium.
	Model    string  `yaml:"model"`
	GradStep float64 `yaml:"grad_step"`
	// Toroidal parameters.
	B0 float64 `yaml:"b0"`
	R0 float64 `yaml:"r0"`
	// Equilibrium grid file (storage format).
	GridFile string `yaml:"grid_file"`
}

type ParticlesConfig struct {
	Count int `yaml:"count"`
	// Species: proton, electron, alpha.
	Species  string  `yaml:"species"`
	EnergyEV float64 `yaml:"energy_ev"`
	// R and Z place the ensemble on a starting circle in the phi=0 plane.
	R float64 `yaml:"r"`
	Z float64 `yaml:"z"`
}

type TraceConfig struct {
	// Mode: guiding_center, full_orbit, field_line.
	Mode     string  `yaml:"mode"`
	Scheme   string  `yaml:"scheme"`
	Steps    int     `yaml:"steps"`
	MaxTime  float64 `yaml:"max_time"`
	Adaptive bool    `yaml:"adaptive"`
	Tol      float64 `yaml:"tol"`
	RMin     float64 `yaml:"r_min"`
	RMax     float64 `yaml:"r_max"`
	ZMax     float64 `yaml:"z_max"`
}

type ObjectiveConfig struct {
	ConfinementWeight float64 `yaml:"confinement_weight"`
	LostWeight        float64 `yaml:"lost_weight"`
	LossRadius        float64 `yaml:"loss_radius"`
	NormalFieldWeight float64 `yaml:"normal_field_weight"`
	SurfaceRadius     float64 `yaml:"surface_radius"`
	LengthWeight      float64 `yaml:"length_weight"`
	LengthTarget      float64 `yaml:"length_target"`
	CurvatureWeight   float64 `yaml:"curvature_weight"`
	CurvatureMax      float64 `yaml:"curvature_max"`
}

type OptimizeConfig struct {
	// Rule: gradient_descent, adam.
	Rule       string  `yaml:"rule"`
	Rate       float64 `yaml:"rate"`
	Iterations int     `yaml:"iterations"`
	Tolerance  float64 `yaml:"tolerance"`
	FDStep     float64 `yaml:"fd_step"`
}

func DefaultConfig() *Config {
	return &Config{
		Coils: CoilsConfig{
			Count:        3,
			Order:        4,
			MajorRadius:  1.0,
			MinorRadius:  0.35,
			Segments:     DefaultSegments,
			FieldPeriods: 2,
			StellSym:     true,
			Current:      1e5,
		},
		Field: FieldConfig{
			Model:    "biot_savart",
			GradStep: DefaultGradStep,
			B0:       1.0,
			R0:       1.0,
		},
		Particles: ParticlesConfig{
			Count:    16,
			Species:  "proton",
			EnergyEV: 1e3,
			R:        1.05,
		},
		Trace: TraceConfig{
			Mode:    "guiding_center",
			Scheme:  "rk4",
			Steps:   DefaultSteps,
			MaxTime: DefaultMaxTime,
			RMin:    0.3,
			RMax:    2.0,
			ZMax:    0.7,
		},
		Objective: ObjectiveConfig{
			ConfinementWeight: 1.0,
			LostWeight:        10,
			LossRadius:        0.35,
			NormalFieldWeight: 1.0,
			SurfaceRadius:     0.2,
			LengthWeight:      1e-2,
			LengthTarget:      2.5,
			CurvatureWeight:   1e-2,
			CurvatureMax:      5.0,
		},
		Optimize: OptimizeConfig{
			Rule:       "adam",
			Rate:       DefaultRate,
			Iterations: DefaultIterations,
			Tolerance:  DefaultTolerance,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected so a
// typo never silently falls back to a default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Coils.Count <= 0 || c.Coils.Order <= 0 {
		return fmt.Errorf("%w: coils need positive count and order", ErrConfig)
	}
	if c.Coils.Segments < 3 {
		return fmt.Errorf("%w: coils need at least 3 segments", ErrConfig)
	}
	if c.Coils.FieldPeriods <= 0 {
		return fmt.Errorf("%w: field_periods must be positive", ErrConfig)
	}
	if c.Coils.MinorRadius <= 0 || c.Coils.MajorRadius <= c.Coils.MinorRadius {
		return fmt.Errorf("%w: coil radii must satisfy 0 < minor < major", ErrConfig)
	}
	switch c.Field.Model {
	case "biot_savart", "near_axis", "toroidal":
	case "equilibrium":
		if c.Field.GridFile == "" {
			return fmt.Errorf("%w: equilibrium field needs grid_file", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown field model %q", ErrConfig, c.Field.Model)
	}
	switch c.Particles.Species {
	case "proton", "electron", "alpha":
	default:
		return fmt.Errorf("%w: unknown species %q", ErrConfig, c.Particles.Species)
	}
	if c.Particles.Count <= 0 || c.Particles.EnergyEV <= 0 {
		return fmt.Errorf("%w: particles need positive count and energy", ErrConfig)
	}
	switch c.Trace.Mode {
	case "guiding_center", "full_orbit", "field_line":
	default:
		return fmt.Errorf("%w: unknown trace mode %q", ErrConfig, c.Trace.Mode)
	}
	if c.Trace.Steps <= 0 || c.Trace.MaxTime <= 0 {
		return fmt.Errorf("%w: trace needs positive steps and max_time", ErrConfig)
	}
	if c.Trace.Scheme == "boris" && c.Trace.Mode != "full_orbit" {
		return fmt.Errorf("%w: boris scheme requires full_orbit mode, got %q", ErrConfig, c.Trace.Mode)
	}
	switch c.Optimize.Rule {
	case "gradient_descent", "adam":
	default:
		return fmt.Errorf("%w: unknown step rule %q", ErrConfig, c.Optimize.Rule)
	}
	if c.Optimize.Iterations <= 0 || c.Optimize.Rate <= 0 {
		return fmt.Errorf("%w: optimize needs positive iterations and rate", ErrConfig)
	}
	return nil
}
