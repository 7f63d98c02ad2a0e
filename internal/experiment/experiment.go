// Package experiment wires a validated configuration into runnable tracing
// and optimization pipelines.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/marodr/coiltrace/internal/coils"
	"github.com/marodr/coiltrace/internal/config"
	"github.com/marodr/coiltrace/internal/dynamics"
	"github.com/marodr/coiltrace/internal/field"
	"github.com/marodr/coiltrace/internal/geom"
	"github.com/marodr/coiltrace/internal/objective"
	"github.com/marodr/coiltrace/internal/optimize"
	"github.com/marodr/coiltrace/internal/storage"
	"github.com/marodr/coiltrace/internal/surface"
	"github.com/marodr/coiltrace/internal/tracer"
)

var ErrFieldModel = errors.New("field model cannot drive this trace mode")

type Experiment struct {
	cfg *config.Config
}

func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Experiment{cfg: cfg}, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// CoilSet builds the starting circular array.
func (e *Experiment) CoilSet() (*coils.CoilSet, error) {
	cc := e.cfg.Coils
	curves, err := coils.CircularArray(cc.Count, cc.Order, cc.MajorRadius, cc.MinorRadius,
		cc.Segments, cc.FieldPeriods, cc.StellSym)
	if err != nil {
		return nil, err
	}
	currents := make([]float64, cc.Count)
	for i := range currents {
		currents[i] = cc.Current
	}
	return coils.NewCoilSet(curves, currents)
}

// Field builds the configured field model around the coil set. The coil set
// is ignored by the analytic models.
func (e *Experiment) Field(cs *coils.CoilSet) (field.GradModel, error) {
	fc := e.cfg.Field
	switch fc.Model {
	case "biot_savart":
		return field.WithNumericGradients(field.NewBiotSavart(cs), fc.GradStep), nil
	case "toroidal":
		return &field.Toroidal{B0: fc.B0, R0: fc.R0}, nil
	case "near_axis":
		na := &field.NearAxis{
			RAxisCos: []float64{fc.R0, 0.1 * fc.R0},
			ZAxisSin: []float64{0, 0.1 * fc.R0},
			NFP:      e.cfg.Coils.FieldPeriods,
			B0:       fc.B0,
			EtaBar:   0.9,
			Iota0:    0.4,
			RMax:     e.cfg.Coils.MinorRadius,
		}
		return field.WithNumericGradients(na, fc.GradStep), nil
	case "equilibrium":
		eq, err := storage.LoadEquilibrium(fc.GridFile)
		if err != nil {
			return nil, err
		}
		return field.WithNumericGradients(eq, fc.GradStep), nil
	default:
		return nil, fmt.Errorf("unknown field model: %s", fc.Model)
	}
}

// Particles places the configured ensemble evenly in toroidal angle on the
// circle (R, Z), pitches drawn from the run seed.
func (e *Experiment) Particles() (*dynamics.Particles, error) {
	pc := e.cfg.Particles
	var mass, charge float64
	switch pc.Species {
	case "proton":
		mass, charge = dynamics.ProtonMass, dynamics.ElementaryCharge
	case "electron":
		mass, charge = dynamics.ElectronMass, -dynamics.ElementaryCharge
	case "alpha":
		mass, charge = dynamics.AlphaParticleMass, dynamics.AlphaParticleCharge
	default:
		return nil, fmt.Errorf("unknown species: %s", pc.Species)
	}
	xyz := make([]geom.Vec3, pc.Count)
	for i := range xyz {
		phi := 2 * math.Pi * float64(i) / float64(pc.Count)
		xyz[i] = geom.Vec3{pc.R * math.Cos(phi), pc.R * math.Sin(phi), pc.Z}
	}
	return dynamics.NewParticles(xyz, nil, mass, charge, pc.EnergyEV*dynamics.OneEV, e.cfg.Seed)
}

// System pairs the trace mode with the field model.
func (e *Experiment) System(m field.GradModel, p *dynamics.Particles) (dynamics.System, error) {
	switch e.cfg.Trace.Mode {
	case "guiding_center":
		return &dynamics.GuidingCenter{Field: m, Mass: p.Mass, Charge: p.Charge, Energy: p.Energy}, nil
	case "full_orbit":
		return &dynamics.FullOrbit{Field: m, Mass: p.Mass, Charge: p.Charge}, nil
	case "field_line":
		return &dynamics.FieldLine{Field: m}, nil
	default:
		return nil, fmt.Errorf("unknown trace mode: %s", e.cfg.Trace.Mode)
	}
}

// InitialStates converts the ensemble into the state layout of the mode.
func (e *Experiment) InitialStates(m field.Model, p *dynamics.Particles) ([]dynamics.State, error) {
	switch e.cfg.Trace.Mode {
	case "guiding_center":
		return p.GuidingCenterStates(), nil
	case "full_orbit":
		return p.FullOrbitStates(m, 0)
	case "field_line":
		return p.FieldLineStates(), nil
	default:
		return nil, fmt.Errorf("unknown trace mode: %s", e.cfg.Trace.Mode)
	}
}

func (e *Experiment) TraceConfig() tracer.Config {
	tc := e.cfg.Trace
	return tracer.Config{
		Steps:    tc.Steps,
		MaxTime:  tc.MaxTime,
		Scheme:   tc.Scheme,
		Adaptive: tc.Adaptive,
		Tol:      tc.Tol,
		Workers:  e.cfg.Workers,
		Boundary: tracer.Boundary{RMin: tc.RMin, RMax: tc.RMax, ZMax: tc.ZMax},
	}
}

// Trace runs the full batch pipeline: coils, field, ensemble, integration.
func (e *Experiment) Trace(ctx context.Context) (*tracer.Result, error) {
	cs, err := e.CoilSet()
	if err != nil {
		return nil, err
	}
	m, err := e.Field(cs)
	if err != nil {
		return nil, err
	}
	p, err := e.Particles()
	if err != nil {
		return nil, err
	}
	sys, err := e.System(m, p)
	if err != nil {
		return nil, err
	}
	inits, err := e.InitialStates(m, p)
	if err != nil {
		return nil, err
	}
	return tracer.Trace(ctx, sys, inits, e.TraceConfig())
}

// Objective assembles the weighted coil objective from the configured terms.
// Guiding-center confinement is always traced regardless of the trace mode.
func (e *Experiment) Objective(cs *coils.CoilSet, p *dynamics.Particles) objective.Objective {
	oc := e.cfg.Objective
	cc := e.cfg.Coils

	confTrace := e.TraceConfig()
	terms := []objective.Term{
		{Objective: &objective.ConfinementLoss{
			Template:   cs,
			Particles:  p,
			Trace:      confTrace,
			R0:         cc.MajorRadius,
			LossRadius: oc.LossRadius,
			LostWeight: oc.LostWeight,
			GradStep:   e.cfg.Field.GradStep,
		}, Weight: oc.ConfinementWeight},
		{Objective: &objective.NormalField{
			Template: cs,
			Quad:     surface.Torus(cc.MajorRadius, oc.SurfaceRadius, cc.FieldPeriods).Grid(16, 24),
			Shards:   e.cfg.Workers,
		}, Weight: oc.NormalFieldWeight},
		{Objective: &objective.LengthPenalty{
			Template: cs,
			Target:   oc.LengthTarget,
		}, Weight: oc.LengthWeight},
		{Objective: &objective.CurvaturePenalty{
			Template:  cs,
			Threshold: oc.CurvatureMax,
		}, Weight: oc.CurvatureWeight},
	}
	return objective.NewWeighted(terms...)
}

// Driver builds the optimization driver over the configured objective.
func (e *Experiment) Driver(obj objective.Objective) (*optimize.Driver, error) {
	oc := e.cfg.Optimize
	var rule optimize.StepRule
	switch oc.Rule {
	case "gradient_descent":
		rule = &optimize.GradientDescent{Rate: oc.Rate}
	case "adam":
		rule = &optimize.Adam{Rate: oc.Rate}
	default:
		return nil, fmt.Errorf("unknown step rule: %s", oc.Rule)
	}
	return &optimize.Driver{
		Objective:     obj,
		Rule:          rule,
		MaxIterations: oc.Iterations,
		Tolerance:     oc.Tolerance,
		FDStep:        oc.FDStep,
		Workers:       e.cfg.Workers,
	}, nil
}

// Optimize runs the coil optimization end to end and returns the report
// together with the starting coil set for parameter unpacking.
func (e *Experiment) Optimize(ctx context.Context, callback func(iter int, value, gradNorm float64)) (*optimize.Report, *coils.CoilSet, error) {
	if e.cfg.Field.Model != "biot_savart" {
		return nil, nil, fmt.Errorf("%w: optimization needs biot_savart, got %s", ErrFieldModel, e.cfg.Field.Model)
	}
	cs, err := e.CoilSet()
	if err != nil {
		return nil, nil, err
	}
	p, err := e.Particles()
	if err != nil {
		return nil, nil, err
	}
	drv, err := e.Driver(e.Objective(cs, p))
	if err != nil {
		return nil, nil, err
	}
	drv.Callback = callback
	rep, err := drv.Run(ctx, cs.Pack())
	if err != nil {
		return nil, nil, err
	}
	return rep, cs, nil
}
