// Package scaler provides invertible per-column min-max scaling and a
// per-entity registry of fitted scalers.
package scaler

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrNoData           = errors.New("no data to fit scaler")
	ErrNotFit           = errors.New("scaler has not been fit")
	ErrColCountMismatch = errors.New("block column count does not match fitted scaler")
	ErrColLenMismatch   = errors.New("block columns have different lengths")
)

// MinMax maps each column of a block independently into a fixed output range
// using the column's own min and max observed at fit time. One MinMax covers
// a whole block of columns so a covariate block shares a single scaler
// lifecycle regardless of how many columns it holds.
type MinMax struct {
	OutMin  float64   `json:"out_min"`
	OutMax  float64   `json:"out_max"`
	DataMin []float64 `json:"data_min"`
	DataMax []float64 `json:"data_max"`
}

// NewMinMax returns a scaler targeting the [0, 1] output range.
func NewMinMax() *MinMax {
	return &MinMax{OutMin: 0.0, OutMax: 1.0}
}

// Fit records the per-column min and max of a column-major block.
func (m *MinMax) Fit(block [][]float64) error {
	if len(block) == 0 || len(block[0]) == 0 {
		return ErrNoData
	}
	n := len(block[0])
	for _, col := range block {
		if len(col) != n {
			return ErrColLenMismatch
		}
	}

	m.DataMin = make([]float64, len(block))
	m.DataMax = make([]float64, len(block))
	for i, col := range block {
		m.DataMin[i] = floats.Min(col)
		m.DataMax[i] = floats.Max(col)
	}
	return nil
}

// scale returns the fitted multiplier for column i. A constant column scales
// by 1 so it maps to OutMin without dividing by zero.
func (m *MinMax) scale(i int) float64 {
	span := m.DataMax[i] - m.DataMin[i]
	if span == 0 {
		return 1.0
	}
	return (m.OutMax - m.OutMin) / span
}

// Transform scales a column-major block into the output range.
func (m *MinMax) Transform(block [][]float64) ([][]float64, error) {
	if m.DataMin == nil {
		return nil, ErrNotFit
	}
	if len(block) != len(m.DataMin) {
		return nil, fmt.Errorf("block has %d columns, scaler fit on %d, %w", len(block), len(m.DataMin), ErrColCountMismatch)
	}
	out := make([][]float64, len(block))
	for i, col := range block {
		scale := m.scale(i)
		scaled := make([]float64, len(col))
		for j, v := range col {
			scaled[j] = (v-m.DataMin[i])*scale + m.OutMin
		}
		out[i] = scaled
	}
	return out, nil
}

// FitTransform fits the scaler on the block and returns the scaled block.
func (m *MinMax) FitTransform(block [][]float64) ([][]float64, error) {
	if err := m.Fit(block); err != nil {
		return nil, err
	}
	return m.Transform(block)
}

// Inverse maps a scaled column-major block back to the original units.
func (m *MinMax) Inverse(block [][]float64) ([][]float64, error) {
	if m.DataMin == nil {
		return nil, ErrNotFit
	}
	if len(block) != len(m.DataMin) {
		return nil, fmt.Errorf("block has %d columns, scaler fit on %d, %w", len(block), len(m.DataMin), ErrColCountMismatch)
	}
	out := make([][]float64, len(block))
	for i, col := range block {
		scale := m.scale(i)
		orig := make([]float64, len(col))
		for j, v := range col {
			orig[j] = (v-m.OutMin)/scale + m.DataMin[i]
		}
		out[i] = orig
	}
	return out, nil
}
