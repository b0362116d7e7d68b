// Package panelcast wraps a pluggable time-series forecasting engine so a
// multi-entity panel table can be trained, saved, loaded, and predicted from
// through one uniform interface. The package owns per-entity segmentation,
// invertible min-max scaling, covariate alignment, and the reassembly of
// scaled engine output back into the original measurement space.
package panelcast

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/panelcast/panelcast/covariates"
	"github.com/panelcast/panelcast/dataset"
	"github.com/panelcast/panelcast/engine"
	"github.com/panelcast/panelcast/scaler"
	"github.com/panelcast/panelcast/schema"
)

var (
	ErrNotFitted = errors.New("forecaster has not been trained yet")
	ErrNoSchema  = errors.New("no schema provided")
)

// Forecaster orchestrates data preparation, engine training, and prediction
// assembly over a multi-entity panel. Instances are not safe for concurrent
// mutation; every operation blocks until complete.
type Forecaster struct {
	opt    *Options
	schema *schema.Schema
	model  engine.Model
	logger zerolog.Logger

	historyLength int
	entityIDs     []string
	targets       [][]float64
	past          [][][]float64
	future        [][][]float64
	futureColumns []string
	scalers       *scaler.Registry
	trained       bool
}

// New creates a Forecaster over the default linear engine sized from the
// options. If no options are provided a default is used.
func New(sch *schema.Schema, opt *Options) (*Forecaster, error) {
	f, engineOpt, err := newUntrained(sch, opt)
	if err != nil {
		return nil, err
	}
	model, err := engine.NewLinear(engineOpt)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize linear engine, %w", err)
	}
	f.model = model
	return f, nil
}

// NewWithEngine creates a Forecaster delegating to the supplied engine
// instead of the default one.
func NewWithEngine(sch *schema.Schema, opt *Options, model engine.Model) (*Forecaster, error) {
	f, _, err := newUntrained(sch, opt)
	if err != nil {
		return nil, err
	}
	f.model = model
	return f, nil
}

func newUntrained(sch *schema.Schema, opt *Options) (*Forecaster, *engine.LinearOptions, error) {
	if sch == nil {
		return nil, nil, ErrNoSchema
	}
	if err := sch.Validate(); err != nil {
		return nil, nil, err
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, nil, err
	}

	// work on a copy so deriving chunk lengths and engine settings never
	// mutates the caller's options, and two forecasters built from one
	// Options never alias the same engine configuration
	cloned := *opt
	if opt.Engine != nil {
		engineClone := *opt.Engine
		cloned.Engine = &engineClone
	}
	opt = &cloned

	historyLength := 0
	if opt.HistoryForecastRatio > 0 {
		historyLength = sch.ForecastLength * opt.HistoryForecastRatio
	}

	inputChunk := opt.InputChunkLength
	if opt.LagsForecastRatio > 0 {
		inputChunk = sch.ForecastLength * opt.LagsForecastRatio
		opt.OutputChunkLength = sch.ForecastLength
	}

	engineOpt := opt.Engine
	if engineOpt == nil {
		engineOpt = engine.NewDefaultLinearOptions()
	}
	if inputChunk > 0 {
		engineOpt.Lags = inputChunk
	}
	engineOpt.Seed = opt.Seed

	f := &Forecaster{
		opt:           opt,
		schema:        sch,
		logger:        zerolog.Nop(),
		historyLength: historyLength,
	}
	return f, engineOpt, nil
}

// SetLogger attaches a logger for fit and predict progress. The default is a
// no-op logger.
func (f *Forecaster) SetLogger(logger zerolog.Logger) {
	f.logger = logger
}

// HistoryLength returns the per-entity training window derived from the
// options, or zero when the full history is used.
func (f *Forecaster) HistoryLength() int {
	return f.historyLength
}

// Trained reports whether the forecaster has completed a fit.
func (f *Forecaster) Trained() bool {
	return f.trained
}

// EntityIDs returns the entity identifiers in fit order.
func (f *Forecaster) EntityIDs() []string {
	return f.entityIDs
}

// Fit prepares the per-entity series from the training panel and delegates
// fitting to the engine. The test panel is required only when future
// covariates are declared or derivable; future covariates are assembled and
// retained but not passed to the engine fit. On success the fitted scalers,
// entity order, and prepared series are retained for prediction.
func (f *Forecaster) Fit(history, test *dataset.Panel) error {
	if history == nil {
		return dataset.ErrNoRows
	}
	if err := f.schema.ValidateColumns(history); err != nil {
		return err
	}

	asm := covariates.Assembler{
		Schema:          f.schema,
		HistoryLength:   f.historyLength,
		HolidayCalendar: f.opt.HolidayCalendar,
	}
	prepared, err := asm.Assemble(history, test)
	if err != nil {
		return fmt.Errorf("unable to prepare panel data, %w", err)
	}

	past := prepared.Past
	if !f.opt.UseExogenous {
		past = nil
	}

	f.logger.Info().
		Int("entities", len(prepared.EntityIDs)).
		Int("history_length", f.historyLength).
		Bool("past_covariates", past != nil).
		Bool("future_covariates", prepared.Future != nil).
		Uint64("seed", f.opt.Seed).
		Msg("fitting engine")

	if err := f.model.Fit(prepared.Targets, past); err != nil {
		return fmt.Errorf("engine fit failed, %w", err)
	}

	f.entityIDs = prepared.EntityIDs
	f.targets = prepared.Targets
	f.past = past
	f.future = prepared.Future
	f.futureColumns = prepared.FutureColumns
	f.scalers = prepared.Scalers
	f.trained = true
	return nil
}

// Predict forecasts one horizon per entity, inverse-scales each forecast
// through that entity's target scaler, and writes the flattened values as a
// new column on the test panel. Entities appear in fit order, each
// contributing exactly the schema's forecast length of rows, so the test
// panel must hold forecast length rows per training entity in the same
// order.
func (f *Forecaster) Predict(test *dataset.Panel, predictionCol string) (*dataset.Panel, error) {
	if !f.trained {
		return nil, ErrNotFitted
	}
	if test == nil {
		return nil, dataset.ErrNoRows
	}

	forecasts, err := f.model.Predict(f.schema.ForecastLength, f.targets, f.past)
	if err != nil {
		return nil, fmt.Errorf("engine predict failed, %w", err)
	}

	flat := make([]float64, 0, len(forecasts)*f.schema.ForecastLength)
	for i, forecast := range forecasts {
		orig, err := f.scalers.InverseTransformTarget(i, forecast)
		if err != nil {
			return nil, err
		}
		flat = append(flat, orig...)
	}

	if len(flat) != test.NumRows() {
		return nil, fmt.Errorf("flattened forecast has %d rows, test panel has %d, %w",
			len(flat), test.NumRows(), schema.ErrSchemaMismatch)
	}
	if err := test.AddColumn(predictionCol, flat); err != nil {
		return nil, err
	}

	f.logger.Info().
		Int("entities", len(forecasts)).
		Int("horizon", f.schema.ForecastLength).
		Str("column", predictionCol).
		Msg("forecast assembled")
	return test, nil
}

// Train instantiates a Forecaster and fits it to the training panel. The
// test panel is needed only when the data carries future covariates.
func Train(history *dataset.Panel, sch *schema.Schema, opt *Options, test *dataset.Panel) (*Forecaster, error) {
	f, err := New(sch, opt)
	if err != nil {
		return nil, err
	}
	if err := f.Fit(history, test); err != nil {
		return nil, err
	}
	return f, nil
}

// PredictWith makes a forecast with a trained Forecaster, returning the test
// panel augmented with the prediction column.
func PredictWith(f *Forecaster, test *dataset.Panel, predictionCol string) (*dataset.Panel, error) {
	return f.Predict(test, predictionCol)
}
