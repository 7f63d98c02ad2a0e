// Package storage persists trace and optimization runs as a directory of
// JSON metadata plus CSV trajectory tables, and reads equilibrium field
// grids from disk.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/marodr/coiltrace/internal/optimize"
	"github.com/marodr/coiltrace/internal/tracer"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Timestamp    time.Time `json:"timestamp"`
	Seed         int64     `json:"seed"`
	Mode         string    `json:"mode,omitempty"`
	Scheme       string    `json:"scheme,omitempty"`
	Steps        int       `json:"steps,omitempty"`
	MaxTime      float64   `json:"max_time,omitempty"`
	Particles    int       `json:"particles,omitempty"`
	LostFraction float64   `json:"lost_fraction,omitempty"`
	Status       string    `json:"status,omitempty"`
	Iterations   int       `json:"iterations,omitempty"`
	BestValue    float64   `json:"best_value,omitempty"`
}

// SaveTrace writes a trace run: metadata.json plus trajectories.csv with one
// row per (particle, step) and the outcome repeated per particle.
func (s *Store) SaveTrace(mode, scheme string, maxTime float64, seed int64, res *tracer.Result) (string, error) {
	runID := fmt.Sprintf("trace_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Kind:         "trace",
		Timestamp:    time.Now(),
		Seed:         seed,
		Mode:         mode,
		Scheme:       scheme,
		Steps:        len(res.Times) - 1,
		MaxTime:      maxTime,
		Particles:    len(res.States),
		LostFraction: res.LostFraction(),
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trajectories.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(res.States) == 0 {
		return runID, nil
	}
	header := []string{"particle", "step", "time", "outcome"}
	for i := range res.States[0][0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for p, traj := range res.States {
		outcome := res.Outcomes[p].String()
		for k, x := range traj {
			row := []string{
				strconv.Itoa(p),
				strconv.Itoa(k),
				strconv.FormatFloat(res.Times[k], 'g', -1, 64),
				outcome,
			}
			for _, v := range x {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}
	return runID, nil
}

// SaveOptimization writes an optimization run: metadata.json, the objective
// history as history.csv, and the best parameter vector as theta.json.
func (s *Store) SaveOptimization(seed int64, rep *optimize.Report) (string, error) {
	runID := fmt.Sprintf("optimize_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Kind:       "optimize",
		Timestamp:  time.Now(),
		Seed:       seed,
		Status:     rep.Status.String(),
		Iterations: rep.Iterations,
		BestValue:  rep.Value,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "theta.json"), rep.Theta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "history.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()
	if err := w.Write([]string{"iteration", "value"}); err != nil {
		return "", err
	}
	for i, v := range rep.History {
		row := []string{strconv.Itoa(i), strconv.FormatFloat(v, 'g', -1, 64)}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTheta reads the best parameter vector of an optimization run.
func (s *Store) LoadTheta(runID string) ([]float64, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "theta.json"))
	if err != nil {
		return nil, err
	}
	var theta []float64
	if err := json.Unmarshal(data, &theta); err != nil {
		return nil, err
	}
	return theta, nil
}

// LoadHistory reads the objective history of an optimization run.
func (s *Store) LoadHistory(runID string) ([]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "history.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	history := make([]float64, 0, len(records))
	for i := 1; i < len(records); i++ {
		v, err := strconv.ParseFloat(records[i][1], 64)
		if err != nil {
			continue
		}
		history = append(history, v)
	}
	return history, nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
