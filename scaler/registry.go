package scaler

import (
	"errors"
	"fmt"
)

var ErrMissingScaler = errors.New("no scaler fit for entity index")

// Registry stores the fitted scalers of a training run keyed by the stable
// per-entity index assigned at segmentation time. Target, past covariate,
// and future covariate scalers are tracked separately since each is fit on a
// different value block. All fields are exported so a registry persists
// inside the predictor snapshot.
type Registry struct {
	Target map[int]*MinMax `json:"target"`
	Past   map[int]*MinMax `json:"past"`
	Future map[int]*MinMax `json:"future"`
}

// NewRegistry returns an empty scaler registry.
func NewRegistry() *Registry {
	return &Registry{
		Target: make(map[int]*MinMax),
		Past:   make(map[int]*MinMax),
		Future: make(map[int]*MinMax),
	}
}

// FitTransformTarget fits a fresh scaler on one entity's target values,
// stores it under the entity index, and returns the scaled values.
func (r *Registry) FitTransformTarget(entity int, vals []float64) ([]float64, error) {
	m := NewMinMax()
	scaled, err := m.FitTransform([][]float64{vals})
	if err != nil {
		return nil, fmt.Errorf("unable to fit target scaler for entity index %d, %w", entity, err)
	}
	r.Target[entity] = m
	return scaled[0], nil
}

// InverseTransformTarget maps one entity's scaled forecast back to original
// units using the exact scaler fit for that entity's target block.
func (r *Registry) InverseTransformTarget(entity int, scaled []float64) ([]float64, error) {
	m, exists := r.Target[entity]
	if !exists {
		return nil, fmt.Errorf("entity index %d, %w", entity, ErrMissingScaler)
	}
	orig, err := m.Inverse([][]float64{scaled})
	if err != nil {
		return nil, fmt.Errorf("unable to invert target scaler for entity index %d, %w", entity, err)
	}
	return orig[0], nil
}

// FitTransformPast fits a fresh scaler on one entity's past/static covariate
// block and returns the scaled block.
func (r *Registry) FitTransformPast(entity int, block [][]float64) ([][]float64, error) {
	m := NewMinMax()
	scaled, err := m.FitTransform(block)
	if err != nil {
		return nil, fmt.Errorf("unable to fit past covariate scaler for entity index %d, %w", entity, err)
	}
	r.Past[entity] = m
	return scaled, nil
}

// FitTransformFuture fits a fresh scaler on one entity's future covariate
// block, concatenated across the train and test horizons, and returns the
// scaled block.
func (r *Registry) FitTransformFuture(entity int, block [][]float64) ([][]float64, error) {
	m := NewMinMax()
	scaled, err := m.FitTransform(block)
	if err != nil {
		return nil, fmt.Errorf("unable to fit future covariate scaler for entity index %d, %w", entity, err)
	}
	r.Future[entity] = m
	return scaled, nil
}
