package panelcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelcast/panelcast/dataset"
)

func TestNewScores(t *testing.T) {
	testData := map[string]struct {
		predicted []float64
		actual    []float64
		expected  *Scores
		err       error
	}{
		"length mismatch": {
			predicted: []float64{1},
			actual:    []float64{1, 2},
			err:       ErrResLenMismatch,
		},
		"perfect fit": {
			predicted: []float64{1, 2, 3, 4},
			actual:    []float64{1, 2, 3, 4},
			expected:  &Scores{MSE: 0, MAPE: 0, R2: 1},
		},
		"constant offset": {
			predicted: []float64{2, 3, 4, 5},
			actual:    []float64{1, 2, 3, 4},
			expected:  &Scores{MSE: 1, MAPE: 25.0 / 48.0, R2: 0.2},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			scores, err := NewScores(td.predicted, td.actual)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, td.expected.MSE, scores.MSE, 1e-9)
			assert.InDelta(t, td.expected.MAPE, scores.MAPE, 1e-9)
			assert.InDelta(t, td.expected.R2, scores.R2, 1e-9)
		})
	}
}

func TestEvaluatePerEntity(t *testing.T) {
	p, err := dataset.NewPanel("id", []string{"A", "A", "B", "B"})
	require.NoError(t, err)
	require.NoError(t, p.SetIndexTime("idx", []float64{0, 1, 0, 1}))
	require.NoError(t, p.AddColumn("y", []float64{1, 2, 10, 20}))
	require.NoError(t, p.AddColumn("prediction", []float64{2, 3, 10, 20}))

	f, err := New(indexSchema(2), nil)
	require.NoError(t, err)

	eval, err := f.Evaluate(p, "prediction")
	require.NoError(t, err)

	assert.InDelta(t, 0.5, eval.Pooled.MSE, 1e-9)
	assert.InDelta(t, 0.375, eval.Pooled.MAPE, 1e-9)

	require.Len(t, eval.ByEntity, 2)
	assert.InDelta(t, 1.0, eval.ByEntity["A"].MSE, 1e-9)
	assert.InDelta(t, 0.75, eval.ByEntity["A"].MAPE, 1e-9)
	assert.InDelta(t, 0.0, eval.ByEntity["B"].MSE, 1e-9)
	assert.InDelta(t, 1.0, eval.ByEntity["B"].R2, 1e-9)
}

func TestEvaluateMissingColumns(t *testing.T) {
	p, err := dataset.NewPanel("id", []string{"A", "A"})
	require.NoError(t, err)
	require.NoError(t, p.SetIndexTime("idx", []float64{0, 1}))
	require.NoError(t, p.AddColumn("y", []float64{1, 2}))

	f, err := New(indexSchema(2), nil)
	require.NoError(t, err)

	_, err = f.Evaluate(p, "prediction")
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)

	_, err = f.Evaluate(nil, "prediction")
	assert.ErrorIs(t, err, dataset.ErrNoRows)
}
