package scaler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMaxFit(t *testing.T) {
	testData := map[string]struct {
		block   [][]float64
		dataMin []float64
		dataMax []float64
		err     error
	}{
		"no data": {
			err: ErrNoData,
		},
		"empty column": {
			block: [][]float64{{}},
			err:   ErrNoData,
		},
		"ragged columns": {
			block: [][]float64{{1, 2}, {3}},
			err:   ErrColLenMismatch,
		},
		"single column": {
			block:   [][]float64{{2, 8, 5}},
			dataMin: []float64{2},
			dataMax: []float64{8},
		},
		"multi column independent ranges": {
			block:   [][]float64{{0, 10}, {-5, 5}},
			dataMin: []float64{0, -5},
			dataMax: []float64{10, 5},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			m := NewMinMax()
			err := m.Fit(td.block)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.dataMin, m.DataMin)
			assert.Equal(t, td.dataMax, m.DataMax)
		})
	}
}

func TestMinMaxTransform(t *testing.T) {
	m := NewMinMax()
	scaled, err := m.FitTransform([][]float64{{2, 8, 5}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1, 0.5}, scaled[0], 1e-12)

	_, err = m.Transform([][]float64{{1}, {2}})
	assert.ErrorIs(t, err, ErrColCountMismatch)
}

func TestMinMaxRoundTrip(t *testing.T) {
	testData := map[string]struct {
		block [][]float64
	}{
		"single column":   {block: [][]float64{{3.5, -2, 11, 0.25}}},
		"multi column":    {block: [][]float64{{1, 2, 3}, {100, 50, 0}}},
		"constant column": {block: [][]float64{{4, 4, 4}}},
		"single row":      {block: [][]float64{{7}}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			m := NewMinMax()
			scaled, err := m.FitTransform(td.block)
			require.NoError(t, err)

			orig, err := m.Inverse(scaled)
			require.NoError(t, err)
			for i := range td.block {
				assert.InDeltaSlice(t, td.block[i], orig[i], 1e-9)
			}
		})
	}
}

func TestMinMaxNotFit(t *testing.T) {
	m := NewMinMax()
	_, err := m.Transform([][]float64{{1}})
	assert.ErrorIs(t, err, ErrNotFit)
	_, err = m.Inverse([][]float64{{1}})
	assert.ErrorIs(t, err, ErrNotFit)
}

func TestRegistryTargetRoundTrip(t *testing.T) {
	r := NewRegistry()

	vals := []float64{10, 20, 30, 25}
	scaled, err := r.FitTransformTarget(0, vals)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 0.75}, scaled, 1e-12)

	orig, err := r.InverseTransformTarget(0, scaled)
	require.NoError(t, err)
	assert.InDeltaSlice(t, vals, orig, 1e-9)
}

func TestRegistryMissingScaler(t *testing.T) {
	r := NewRegistry()
	_, err := r.InverseTransformTarget(3, []float64{0.5})
	assert.ErrorIs(t, err, ErrMissingScaler)
}

func TestRegistryScalersAreIndependent(t *testing.T) {
	r := NewRegistry()

	_, err := r.FitTransformTarget(0, []float64{0, 100})
	require.NoError(t, err)
	_, err = r.FitTransformTarget(1, []float64{0, 1})
	require.NoError(t, err)

	orig, err := r.InverseTransformTarget(0, []float64{0.5})
	require.NoError(t, err)
	assert.InDelta(t, 50, orig[0], 1e-9)

	orig, err = r.InverseTransformTarget(1, []float64{0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, orig[0], 1e-9)
}

func TestRegistryCovariateBlocks(t *testing.T) {
	r := NewRegistry()

	// single covariate column with a single row must scale like any other
	// one-column block
	scaled, err := r.FitTransformPast(0, [][]float64{{42}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0}}, scaled)

	// one shared scaler per block scaling each column by its own range
	scaled, err = r.FitTransformFuture(0, [][]float64{{0, 2}, {10, 30}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1}, scaled[0], 1e-12)
	assert.InDeltaSlice(t, []float64{0, 1}, scaled[1], 1e-12)
	require.Len(t, r.Future[0].DataMin, 2)
}
