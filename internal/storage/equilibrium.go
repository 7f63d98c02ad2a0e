package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/marodr/coiltrace/internal/field"
	"github.com/marodr/coiltrace/internal/geom"
)

// EquilibriumFile is the on-disk form of a precomputed field grid. B holds
// cylindrical (BR, BPhi, BZ) triplets in r-major, phi-middle, z-minor order.
type EquilibriumFile struct {
	RMin float64      `json:"r_min"`
	RMax float64      `json:"r_max"`
	ZMin float64      `json:"z_min"`
	ZMax float64      `json:"z_max"`
	NR   int          `json:"n_r"`
	NPhi int          `json:"n_phi"`
	NZ   int          `json:"n_z"`
	NFP  int          `json:"nfp"`
	B    [][3]float64 `json:"b"`
}

func SaveEquilibrium(path string, f *EquilibriumFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func LoadEquilibrium(path string) (*field.Equilibrium, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f EquilibriumFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("equilibrium grid %s: %w", path, err)
	}
	grid := make([]geom.Vec3, len(f.B))
	for i, b := range f.B {
		grid[i] = geom.Vec3(b)
	}
	return field.NewEquilibrium(f.RMin, f.RMax, f.ZMin, f.ZMax, f.NR, f.NPhi, f.NZ, f.NFP, grid)
}
