// Package engine defines the forecasting model interface the panel
// orchestrator delegates to, along with a default linear autoregressive
// implementation. Engines receive already scaled per-entity series and
// return scaled forecasts; scaling and inverse scaling happen outside.
package engine

import "errors"

var (
	ErrNoOptions                = errors.New("no initialized engine options")
	ErrNoTrainingData           = errors.New("no training series")
	ErrInsufficientTrainingData = errors.New("insufficient training rows for configured lags")
	ErrUntrainedModel           = errors.New("engine has not been trained yet")
	ErrCovariateCountMismatch   = errors.New("past covariate list length does not match target list")
	ErrCovariateLenMismatch     = errors.New("past covariate rows do not match target series length")
)

// Model is the contract a forecasting engine implements. Fit consumes one
// scaled target series per entity plus an optional parallel list of
// column-major past covariate blocks; Predict extends each series by horizon
// steps. Past may be nil when exogenous inputs are disabled or undeclared.
type Model interface {
	Fit(targets [][]float64, past [][][]float64) error
	Predict(horizon int, targets [][]float64, past [][][]float64) ([][]float64, error)
	Save(path string) error
}
