package panelcast

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/rickar/cal/v2"

	"github.com/panelcast/panelcast/engine"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Options enumerates every recognized forecaster hyperparameter. Engine
// internals beyond these knobs are configured through the engine's own
// options struct, or by injecting a custom engine.Model with NewWithEngine.
type Options struct {
	// InputChunkLength is the number of trailing time steps fed to the
	// engine per window. Overridden by LagsForecastRatio when set.
	InputChunkLength int `json:"input_chunk_length" default:"0" validate:"min=0"`

	// OutputChunkLength is the number of steps an engine emits per window.
	// The default linear engine predicts recursively one step at a time and
	// does not read it.
	OutputChunkLength int `json:"output_chunk_length" default:"0" validate:"min=0"`

	// HistoryForecastRatio bounds each entity's training window to
	// forecast length times this ratio. Zero keeps the full history.
	HistoryForecastRatio int `json:"history_forecast_ratio" default:"0" validate:"min=0"`

	// LagsForecastRatio sets InputChunkLength to forecast length times this
	// ratio and OutputChunkLength to the forecast length.
	LagsForecastRatio int `json:"lags_forecast_ratio" default:"0" validate:"min=0"`

	// UseExogenous controls whether past covariates are passed to the
	// engine fit. Covariates are dropped entirely when false.
	UseExogenous bool `json:"use_exogenous" default:"true"`

	// Seed is handed to the engine for any stochastic initialization.
	Seed uint64 `json:"seed" default:"0"`

	// HolidayCalendar optionally derives a holiday indicator future
	// covariate from the calendar time column. Not persisted.
	HolidayCalendar *cal.Calendar `json:"-"`

	// Engine configures the default linear engine. Ignored when an engine
	// is injected with NewWithEngine.
	Engine *engine.LinearOptions `json:"engine,omitempty"`
}

// NewDefaultOptions returns an Options with every field at its default.
func NewDefaultOptions() *Options {
	opt := &Options{}
	if err := defaults.Set(opt); err != nil {
		panic(err)
	}
	return opt
}

// Validate checks the option fields against their declared constraints.
func (o *Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid options, %w", err)
	}
	return nil
}
