package covariates

import (
	"fmt"

	"github.com/rickar/cal/v2"

	"github.com/panelcast/panelcast/dataset"
	"github.com/panelcast/panelcast/scaler"
	"github.com/panelcast/panelcast/schema"
)

// Assembler turns a training panel, and optionally a paired test panel, into
// the per-entity series a forecasting engine consumes. The same
// HistoryLength must be used for every assembly over the same training panel
// so covariates stay aligned with the fitted window.
type Assembler struct {
	Schema        *schema.Schema
	HistoryLength int

	// HolidayCalendar optionally adds a holiday indicator to the derived
	// future covariates when the time column is calendar.
	HolidayCalendar *cal.Calendar
}

// Prepared holds the assembled per-entity inputs in first-occurrence entity
// order. Past and Future are nil, not empty, when no covariates of that kind
// are declared.
type Prepared struct {
	EntityIDs     []string         `json:"entity_ids"`
	Targets       [][]float64      `json:"targets"`
	Past          [][][]float64    `json:"past"`
	Future        [][][]float64    `json:"future"`
	FutureColumns []string         `json:"future_columns"`
	Scalers       *scaler.Registry `json:"scalers"`
}

// Assemble segments the training panel per entity, scales targets and
// covariate blocks with fresh per-entity scalers, and aligns future
// covariates across the train and test horizons. Calendar columns are
// derived on both panels before any segmentation so they are visible at
// assembly time.
func (a *Assembler) Assemble(history, test *dataset.Panel) (*Prepared, error) {
	futureCols := make([]string, 0, len(a.Schema.FutureCovariates)+3)
	futureCols = append(futureCols, a.Schema.FutureCovariates...)

	if a.Schema.TimeKind == schema.TimeKindCalendar {
		derived, err := DeriveCalendar(history, a.Schema.TimeColumn)
		if err != nil {
			return nil, fmt.Errorf("unable to derive calendar columns on history, %w", err)
		}
		if a.HolidayCalendar != nil {
			holiday, err := DeriveHoliday(history, a.Schema.TimeColumn, a.HolidayCalendar)
			if err != nil {
				return nil, fmt.Errorf("unable to derive holiday column on history, %w", err)
			}
			derived = append(derived, holiday...)
		}
		if test != nil {
			if _, err := DeriveCalendar(test, a.Schema.TimeColumn); err != nil {
				return nil, fmt.Errorf("unable to derive calendar columns on test, %w", err)
			}
			if a.HolidayCalendar != nil {
				if _, err := DeriveHoliday(test, a.Schema.TimeColumn, a.HolidayCalendar); err != nil {
					return nil, fmt.Errorf("unable to derive holiday column on test, %w", err)
				}
			}
		}
		futureCols = append(futureCols, derived...)
	}

	segments, err := dataset.Split(history, a.HistoryLength)
	if err != nil {
		return nil, fmt.Errorf("unable to segment history panel, %w", err)
	}

	prepared := &Prepared{
		EntityIDs:     make([]string, 0, len(segments)),
		Targets:       make([][]float64, 0, len(segments)),
		FutureColumns: futureCols,
		Scalers:       scaler.NewRegistry(),
	}

	pastCols := a.Schema.PastStaticCovariates()
	for i, seg := range segments {
		prepared.EntityIDs = append(prepared.EntityIDs, seg.EntityID)

		vals, err := seg.Column(a.Schema.Target)
		if err != nil {
			return nil, fmt.Errorf("entity %q, %w", seg.EntityID, err)
		}
		scaled, err := prepared.Scalers.FitTransformTarget(i, vals)
		if err != nil {
			return nil, err
		}
		prepared.Targets = append(prepared.Targets, scaled)

		if len(pastCols) == 0 {
			continue
		}
		block, err := seg.Block(pastCols)
		if err != nil {
			return nil, fmt.Errorf("entity %q, %w", seg.EntityID, err)
		}
		scaledBlock, err := prepared.Scalers.FitTransformPast(i, block)
		if err != nil {
			return nil, err
		}
		prepared.Past = append(prepared.Past, scaledBlock)
	}

	if len(futureCols) == 0 {
		return prepared, nil
	}

	future, err := a.assembleFuture(segments, test, futureCols, prepared.Scalers)
	if err != nil {
		return nil, err
	}
	prepared.Future = future
	return prepared, nil
}

// assembleFuture concatenates each entity's training-window future covariate
// rows with its test rows and fits one scaler per entity on the combined
// block. The test panel must contain exactly the training panel's entity ID
// set.
func (a *Assembler) assembleFuture(segments []*dataset.Segment, test *dataset.Panel, futureCols []string, reg *scaler.Registry) ([][][]float64, error) {
	if test == nil {
		return nil, fmt.Errorf("future covariates declared but no test panel supplied, %w", schema.ErrSchemaMismatch)
	}
	for _, name := range a.Schema.FutureCovariates {
		if !test.HasColumn(name) {
			return nil, fmt.Errorf("declared future covariate column %q not in test panel, %w", name, schema.ErrSchemaMismatch)
		}
	}
	testSegments, err := dataset.Split(test, 0)
	if err != nil {
		return nil, fmt.Errorf("unable to segment test panel, %w", err)
	}
	if len(testSegments) != len(segments) {
		return nil, fmt.Errorf("test panel has %d entities, training panel has %d, %w", len(testSegments), len(segments), schema.ErrSchemaMismatch)
	}
	testByID := make(map[string]*dataset.Segment, len(testSegments))
	for _, seg := range testSegments {
		testByID[seg.EntityID] = seg
	}

	future := make([][][]float64, 0, len(segments))
	for i, seg := range segments {
		testSeg, exists := testByID[seg.EntityID]
		if !exists {
			return nil, fmt.Errorf("entity %q missing from test panel, %w", seg.EntityID, schema.ErrSchemaMismatch)
		}

		trainBlock, err := seg.Block(futureCols)
		if err != nil {
			return nil, fmt.Errorf("entity %q, %w", seg.EntityID, err)
		}
		testBlock, err := testSeg.Block(futureCols)
		if err != nil {
			return nil, fmt.Errorf("entity %q, %w", seg.EntityID, err)
		}

		// train rows chronologically precede test rows
		combined := make([][]float64, len(futureCols))
		for c := range futureCols {
			combined[c] = append(trainBlock[c], testBlock[c]...)
		}

		scaled, err := reg.FitTransformFuture(i, combined)
		if err != nil {
			return nil, err
		}
		future = append(future, scaled)
	}
	return future, nil
}
