// Package metrics derives summary numbers from trace results.
package metrics

import (
	"math"

	"github.com/marodr/coiltrace/internal/dynamics"
	"github.com/marodr/coiltrace/internal/tracer"
)

// EnergyDrift returns the maximum relative energy deviation per particle,
// measured against the energy at the first saved state. Frozen tails repeat
// the terminal state and cannot inflate the drift.
func EnergyDrift(sys dynamics.System, res *tracer.Result) ([]float64, error) {
	histories, err := tracer.EnergyHistory(sys, res)
	if err != nil {
		return nil, err
	}
	drifts := make([]float64, len(histories))
	for p, hist := range histories {
		e0 := hist[0]
		if e0 == 0 {
			continue
		}
		for k := 1; k <= res.StopStep[p]; k++ {
			drift := math.Abs(hist[k]-e0) / math.Abs(e0)
			drifts[p] = math.Max(drifts[p], drift)
		}
	}
	return drifts, nil
}

// ConfinementTimes returns how long each particle survived before its
// trajectory was terminated; completed particles report the full horizon.
func ConfinementTimes(res *tracer.Result) []float64 {
	times := make([]float64, len(res.States))
	for p, stop := range res.StopStep {
		times[p] = res.Times[stop]
	}
	return times
}

// Summary bundles the standard trace diagnostics. Energy drift is included
// only when the system supports an energy invariant.
func Summary(sys dynamics.System, res *tracer.Result) map[string]float64 {
	out := map[string]float64{
		"lost_fraction": res.LostFraction(),
	}

	times := ConfinementTimes(res)
	sum := 0.0
	for _, t := range times {
		sum += t
	}
	if len(times) > 0 {
		out["mean_confinement_time"] = sum / float64(len(times))
	}

	if drifts, err := EnergyDrift(sys, res); err == nil {
		max := 0.0
		for _, d := range drifts {
			max = math.Max(max, d)
		}
		out["max_energy_drift"] = max
	}
	return out
}
