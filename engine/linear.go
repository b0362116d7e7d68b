package engine

import (
	"fmt"
	"math"
	"os"

	"github.com/creasty/defaults"
	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"
)

// LinearOptions configures the default autoregressive engine. Seed is kept
// for engines with stochastic initialization; the linear solve itself is
// deterministic.
type LinearOptions struct {
	Lags         int     `json:"lags" default:"12"`
	FitIntercept bool    `json:"fit_intercept" default:"true"`
	Ridge        float64 `json:"ridge" default:"0"`
	Seed         uint64  `json:"seed" default:"0"`
}

// NewDefaultLinearOptions returns the default linear engine configuration.
func NewDefaultLinearOptions() *LinearOptions {
	opt := &LinearOptions{}
	if err := defaults.Set(opt); err != nil {
		panic(err)
	}
	return opt
}

// Linear is a pooled autoregressive model fit across every entity series at
// once. Each training row is a trailing lag window of the scaled target,
// optionally extended with the most recent past covariate values, solved by
// least squares with QR factorization. Prediction is recursive over the
// horizon, holding the last observed covariate values constant.
type Linear struct {
	opt *LinearOptions

	lags      int
	numPast   int
	coef      []float64
	intercept float64
	trained   bool
}

// NewLinear creates a linear engine with the given options. If no options
// are provided a default is used.
func NewLinear(opt *LinearOptions) (*Linear, error) {
	if opt == nil {
		opt = NewDefaultLinearOptions()
	}
	if opt.Lags <= 0 {
		return nil, fmt.Errorf("lags must be positive, %w", ErrNoOptions)
	}
	return &Linear{opt: opt}, nil
}

func validateInputs(targets [][]float64, past [][][]float64) error {
	if len(targets) == 0 {
		return ErrNoTrainingData
	}
	if past == nil {
		return nil
	}
	if len(past) != len(targets) {
		return fmt.Errorf("%d past covariate blocks for %d target series, %w", len(past), len(targets), ErrCovariateCountMismatch)
	}
	numCols := len(past[0])
	for i, block := range past {
		if len(block) != numCols {
			return fmt.Errorf("entity index %d has %d covariate columns, entity index 0 has %d, %w", i, len(block), numCols, ErrCovariateCountMismatch)
		}
		for _, col := range block {
			if len(col) != len(targets[i]) {
				return fmt.Errorf("entity index %d has %d covariate rows for %d target rows, %w", i, len(col), len(targets[i]), ErrCovariateLenMismatch)
			}
		}
	}
	return nil
}

// Fit builds the pooled lag-window design matrix and solves for the model
// weights.
func (l *Linear) Fit(targets [][]float64, past [][][]float64) error {
	if l.opt == nil {
		return ErrNoOptions
	}
	if err := validateInputs(targets, past); err != nil {
		return err
	}

	l.numPast = 0
	if len(past) > 0 {
		l.numPast = len(past[0])
	}

	// cap the lag window so the shortest series still yields a window at
	// prediction time and the pooled design matrix stays overdetermined for
	// the QR solve
	lags := l.opt.Lags
	for _, series := range targets {
		if len(series)-1 < lags {
			lags = len(series) - 1
		}
	}
	for lags >= 1 {
		rows := 0
		for _, series := range targets {
			if len(series) > lags {
				rows += len(series) - lags
			}
		}
		cols := lags + l.numPast
		if l.opt.FitIntercept {
			cols++
		}
		if rows >= cols {
			break
		}
		lags--
	}
	if lags < 1 {
		return ErrInsufficientTrainingData
	}
	l.lags = lags

	var rows [][]float64
	var ys []float64
	for i, series := range targets {
		for t := lags; t < len(series); t++ {
			row := make([]float64, 0, lags+l.numPast)
			row = append(row, series[t-lags:t]...)
			if l.numPast > 0 {
				for _, col := range past[i] {
					row = append(row, col[t-1])
				}
			}
			rows = append(rows, row)
			ys = append(ys, series[t])
		}
	}
	if len(rows) == 0 {
		return ErrInsufficientTrainingData
	}

	numFeat := lags + l.numPast
	numCols := numFeat
	if l.opt.FitIntercept {
		numCols++
	}

	numRows := len(rows)
	if l.opt.Ridge > 0 {
		numRows += numFeat
	}

	flat := make([]float64, 0, numRows*numCols)
	target := make([]float64, 0, numRows)
	for r, row := range rows {
		if l.opt.FitIntercept {
			flat = append(flat, 1.0)
		}
		flat = append(flat, row...)
		target = append(target, ys[r])
	}
	if l.opt.Ridge > 0 {
		// augment with sqrt(ridge) identity rows, leaving the intercept
		// unpenalized
		penalty := math.Sqrt(l.opt.Ridge)
		for i := 0; i < numFeat; i++ {
			row := make([]float64, numCols)
			offset := 0
			if l.opt.FitIntercept {
				offset = 1
			}
			row[offset+i] = penalty
			flat = append(flat, row...)
			target = append(target, 0.0)
		}
	}

	x := mat.NewDense(numRows, numCols, flat)
	y := mat.NewDense(numRows, 1, target)

	var qr mat.QR
	qr.Factorize(x)

	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, y); err != nil {
		return fmt.Errorf("unable to solve lag design matrix, %w", err)
	}

	coef := make([]float64, numFeat)
	if l.opt.FitIntercept {
		l.intercept = beta.At(0, 0)
		for i := 0; i < numFeat; i++ {
			coef[i] = beta.At(i+1, 0)
		}
	} else {
		l.intercept = 0.0
		for i := 0; i < numFeat; i++ {
			coef[i] = beta.At(i, 0)
		}
	}
	l.coef = coef
	l.trained = true
	return nil
}

// Predict recursively extends each entity series by horizon steps using the
// fitted weights. The returned list is parallel to the input targets.
func (l *Linear) Predict(horizon int, targets [][]float64, past [][][]float64) ([][]float64, error) {
	if !l.trained {
		return nil, ErrUntrainedModel
	}
	if err := validateInputs(targets, past); err != nil {
		return nil, err
	}

	if l.numPast > 0 {
		if past == nil {
			return nil, fmt.Errorf("engine fit with %d past covariates but none supplied, %w", l.numPast, ErrCovariateCountMismatch)
		}
		if len(past[0]) != l.numPast {
			return nil, fmt.Errorf("engine fit with %d past covariates, got %d, %w", l.numPast, len(past[0]), ErrCovariateCountMismatch)
		}
	}

	forecasts := make([][]float64, 0, len(targets))
	for i, series := range targets {
		if len(series) < l.lags {
			return nil, fmt.Errorf("entity index %d has %d rows, lag window needs %d, %w", i, len(series), l.lags, ErrInsufficientTrainingData)
		}

		covTail := make([]float64, 0, l.numPast)
		if l.numPast > 0 {
			for _, col := range past[i] {
				covTail = append(covTail, col[len(col)-1])
			}
		}

		window := make([]float64, l.lags)
		copy(window, series[len(series)-l.lags:])

		forecast := make([]float64, 0, horizon)
		for step := 0; step < horizon; step++ {
			val := l.intercept
			for j := 0; j < l.lags; j++ {
				val += l.coef[j] * window[j]
			}
			for j := 0; j < l.numPast; j++ {
				val += l.coef[l.lags+j] * covTail[j]
			}
			forecast = append(forecast, val)

			copy(window, window[1:])
			window[l.lags-1] = val
		}
		forecasts = append(forecasts, forecast)
	}
	return forecasts, nil
}

// linearModel is the serialized representation of a fitted linear engine.
type linearModel struct {
	Options   *LinearOptions `json:"options"`
	Lags      int            `json:"lags"`
	NumPast   int            `json:"num_past_covariates"`
	Intercept float64        `json:"intercept"`
	Coef      []float64      `json:"coefficients"`
}

// Save writes the fitted engine weights to the given path as JSON.
func (l *Linear) Save(path string) error {
	if !l.trained {
		return ErrUntrainedModel
	}
	m := linearModel{
		Options:   l.opt,
		Lags:      l.lags,
		NumPast:   l.numPast,
		Intercept: l.intercept,
		Coef:      l.coef,
	}
	bytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal linear engine, %w", err)
	}
	return os.WriteFile(path, bytes, 0o644)
}

// LoadLinear restores a fitted linear engine from a path written by Save.
func LoadLinear(path string) (Model, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read linear engine file, %w", err)
	}
	var m linearModel
	if err := json.Unmarshal(bytes, &m); err != nil {
		return nil, fmt.Errorf("unable to unmarshal linear engine, %w", err)
	}
	if m.Options == nil {
		return nil, ErrNoOptions
	}
	return &Linear{
		opt:       m.Options,
		lags:      m.Lags,
		numPast:   m.NumPast,
		coef:      m.Coef,
		intercept: m.Intercept,
		trained:   true,
	}, nil
}
