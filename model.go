package panelcast

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/panelcast/panelcast/engine"
	"github.com/panelcast/panelcast/scaler"
	"github.com/panelcast/panelcast/schema"
)

// Persisted artifact names, scoped to this file. A trained instance is two
// artifacts: the engine's own weights and the predictor snapshot; both must
// be loaded together before prediction.
const (
	modelFileName     = "model.json"
	predictorFileName = "predictor.json"
)

// Snapshot is the serializable state of a trained Forecaster minus the
// engine weights, which the engine persists itself.
type Snapshot struct {
	Options       *Options         `json:"options"`
	Schema        *schema.Schema   `json:"schema"`
	HistoryLength int              `json:"history_length"`
	EntityIDs     []string         `json:"entity_ids"`
	Targets       [][]float64      `json:"targets"`
	Past          [][][]float64    `json:"past,omitempty"`
	Future        [][][]float64    `json:"future,omitempty"`
	FutureColumns []string         `json:"future_columns,omitempty"`
	Scalers       *scaler.Registry `json:"scalers"`
}

// Snapshot returns the serializable state of a trained forecaster.
func (f *Forecaster) Snapshot() (Snapshot, error) {
	if !f.trained {
		return Snapshot{}, ErrNotFitted
	}
	return Snapshot{
		Options:       f.opt,
		Schema:        f.schema,
		HistoryLength: f.historyLength,
		EntityIDs:     f.entityIDs,
		Targets:       f.targets,
		Past:          f.past,
		Future:        f.future,
		FutureColumns: f.futureColumns,
		Scalers:       f.scalers,
	}, nil
}

// Save writes the engine weights and the predictor snapshot into the given
// directory.
func (f *Forecaster) Save(dirPath string) error {
	if !f.trained {
		return ErrNotFitted
	}
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("unable to create model directory, %w", err)
	}
	if err := f.model.Save(filepath.Join(dirPath, modelFileName)); err != nil {
		return fmt.Errorf("unable to save engine, %w", err)
	}

	snapshot, err := f.Snapshot()
	if err != nil {
		return err
	}
	file, err := os.Create(filepath.Join(dirPath, predictorFileName))
	if err != nil {
		return fmt.Errorf("unable to create predictor file, %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("unable to encode predictor snapshot, %w", err)
	}
	return nil
}

// Load restores a trained Forecaster backed by the default linear engine
// from a directory written by Save.
func Load(dirPath string) (*Forecaster, error) {
	return LoadWithEngine(dirPath, engine.LoadLinear)
}

// LoadWithEngine restores a trained Forecaster, re-linking the engine loaded
// by the supplied loader into the restored snapshot.
func LoadWithEngine(dirPath string, load func(path string) (engine.Model, error)) (*Forecaster, error) {
	bytes, err := os.ReadFile(filepath.Join(dirPath, predictorFileName))
	if err != nil {
		return nil, fmt.Errorf("unable to read predictor file, %w", err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(bytes, &snapshot); err != nil {
		return nil, fmt.Errorf("unable to decode predictor snapshot, %w", err)
	}
	if snapshot.Schema == nil {
		return nil, ErrNoSchema
	}
	if snapshot.Options == nil {
		snapshot.Options = NewDefaultOptions()
	}

	model, err := load(filepath.Join(dirPath, modelFileName))
	if err != nil {
		return nil, fmt.Errorf("unable to load engine, %w", err)
	}

	f := &Forecaster{
		opt:           snapshot.Options,
		schema:        snapshot.Schema,
		model:         model,
		logger:        zerolog.Nop(),
		historyLength: snapshot.HistoryLength,
		entityIDs:     snapshot.EntityIDs,
		targets:       snapshot.Targets,
		past:          snapshot.Past,
		future:        snapshot.Future,
		futureColumns: snapshot.FutureColumns,
		scalers:       snapshot.Scalers,
		trained:       true,
	}
	return f, nil
}

// SaveModel saves a trained Forecaster into the given directory.
func SaveModel(f *Forecaster, dirPath string) error {
	return f.Save(dirPath)
}

// LoadModel restores a trained Forecaster from the given directory.
func LoadModel(dirPath string) (*Forecaster, error) {
	return Load(dirPath)
}
