package panelcast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/panelcast/panelcast/dataset"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Scores tracks forecast accuracy against held-out actuals. NaN pairs are
// skipped and do not count toward any average.
type Scores struct {
	MSE  float64 `json:"mean_squared_error"`
	MAPE float64 `json:"mean_average_percent_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores calculates the accuracy scores given the predicted and actual
// values in original measurement units. Zero actuals are excluded from the
// percent error. With no usable pairs the fit is vacuously perfect.
func NewScores(predicted, actual []float64) (*Scores, error) {
	if len(predicted) != len(actual) {
		return nil, fmt.Errorf("expected %d predicted values, got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	var sse, ape float64
	predPairs := make([]float64, 0, len(predicted))
	actPairs := make([]float64, 0, len(actual))
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		diff := actual[i] - predicted[i]
		sse += diff * diff
		if actual[i] != 0 {
			ape += math.Abs(diff / actual[i])
		}
		predPairs = append(predPairs, predicted[i])
		actPairs = append(actPairs, actual[i])
	}
	if len(actPairs) == 0 {
		return &Scores{R2: 1.0}, nil
	}

	n := float64(len(actPairs))
	r2 := stat.RSquaredFrom(predPairs, actPairs, nil)
	if math.IsNaN(r2) {
		r2 = 1.0
	}
	return &Scores{
		MSE:  sse / n,
		MAPE: ape / n,
		R2:   r2,
	}, nil
}

// Evaluation pairs the pooled holdout scores with a per-entity breakdown
// keyed by entity identifier.
type Evaluation struct {
	Pooled   *Scores            `json:"pooled"`
	ByEntity map[string]*Scores `json:"by_entity"`
}

// Evaluate scores a forecast column on a test panel against the schema's
// target column, pooled over the whole panel and per entity.
func (f *Forecaster) Evaluate(test *dataset.Panel, predictionCol string) (*Evaluation, error) {
	if test == nil {
		return nil, dataset.ErrNoRows
	}
	actual, err := test.Column(f.schema.Target)
	if err != nil {
		return nil, err
	}
	predicted, err := test.Column(predictionCol)
	if err != nil {
		return nil, err
	}

	pooled, err := NewScores(predicted, actual)
	if err != nil {
		return nil, err
	}

	segments, err := dataset.Split(test, 0)
	if err != nil {
		return nil, err
	}
	byEntity := make(map[string]*Scores, len(segments))
	for _, seg := range segments {
		segActual, err := seg.Column(f.schema.Target)
		if err != nil {
			return nil, fmt.Errorf("entity %q, %w", seg.EntityID, err)
		}
		segPredicted, err := seg.Column(predictionCol)
		if err != nil {
			return nil, fmt.Errorf("entity %q, %w", seg.EntityID, err)
		}
		scores, err := NewScores(segPredicted, segActual)
		if err != nil {
			return nil, fmt.Errorf("entity %q, %w", seg.EntityID, err)
		}
		byEntity[seg.EntityID] = scores
	}

	return &Evaluation{Pooled: pooled, ByEntity: byEntity}, nil
}
