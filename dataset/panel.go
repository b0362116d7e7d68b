// Package dataset provides the column-oriented panel table consumed by the
// forecaster along with per-entity segmentation.
package dataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoRows         = errors.New("panel has no rows")
	ErrLenMismatch    = errors.New("column has a different length than the panel")
	ErrColumnExists   = errors.New("column already exists in panel")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrTimeKindChange = errors.New("panel time column already set with a different kind")
)

// Panel represents a multi-entity table storing one string entity identifier
// column, one time column which is either calendar timestamps or a plain
// numeric index, and any number of named float64 value columns. Row order is
// the insertion order and is preserved by every operation.
type Panel struct {
	n int

	idName string
	ids    []string

	timeName string
	times    []time.Time
	index    []float64

	names  []string
	values map[string][]float64
}

// NewPanel returns a Panel whose rows are keyed by the given entity
// identifier column.
func NewPanel(idName string, ids []string) (*Panel, error) {
	if len(ids) == 0 {
		return nil, ErrNoRows
	}
	idSeries := make([]string, len(ids))
	copy(idSeries, ids)
	return &Panel{
		n:      len(ids),
		idName: idName,
		ids:    idSeries,
		values: make(map[string][]float64),
	}, nil
}

// SetCalendarTime attaches a calendar time column to the panel.
func (p *Panel) SetCalendarTime(name string, t []time.Time) error {
	if len(t) != p.n {
		return fmt.Errorf("time column has %d rows, panel has %d, %w", len(t), p.n, ErrLenMismatch)
	}
	if p.index != nil {
		return ErrTimeKindChange
	}
	tSeries := make([]time.Time, len(t))
	copy(tSeries, t)
	p.timeName = name
	p.times = tSeries
	return nil
}

// SetIndexTime attaches a plain numeric index column to the panel.
func (p *Panel) SetIndexTime(name string, idx []float64) error {
	if len(idx) != p.n {
		return fmt.Errorf("index column has %d rows, panel has %d, %w", len(idx), p.n, ErrLenMismatch)
	}
	if p.times != nil {
		return ErrTimeKindChange
	}
	idxSeries := make([]float64, len(idx))
	copy(idxSeries, idx)
	p.timeName = name
	p.index = idxSeries
	return nil
}

// AddColumn appends a named value column to the panel.
func (p *Panel) AddColumn(name string, vals []float64) error {
	if len(vals) != p.n {
		return fmt.Errorf("column %q has %d rows, panel has %d, %w", name, len(vals), p.n, ErrLenMismatch)
	}
	if _, exists := p.values[name]; exists {
		return fmt.Errorf("column %q, %w", name, ErrColumnExists)
	}
	series := make([]float64, len(vals))
	copy(series, vals)
	p.names = append(p.names, name)
	p.values[name] = series
	return nil
}

// Column returns the values of a named column.
func (p *Panel) Column(name string) ([]float64, error) {
	vals, exists := p.values[name]
	if !exists {
		return nil, fmt.Errorf("column %q, %w", name, ErrUnknownColumn)
	}
	return vals, nil
}

// HasColumn reports whether a named value column is present.
func (p *Panel) HasColumn(name string) bool {
	_, exists := p.values[name]
	return exists
}

// Columns returns the value column names in insertion order.
func (p *Panel) Columns() []string {
	names := make([]string, len(p.names))
	copy(names, p.names)
	return names
}

// NumRows returns the number of rows in the panel.
func (p *Panel) NumRows() int {
	return p.n
}

// IDName returns the name of the entity identifier column.
func (p *Panel) IDName() string {
	return p.idName
}

// IDs returns the entity identifier of every row.
func (p *Panel) IDs() []string {
	return p.ids
}

// TimeName returns the name of the time column or an empty string if unset.
func (p *Panel) TimeName() string {
	return p.timeName
}

// Times returns the calendar timestamps or nil when the time column is a
// plain index.
func (p *Panel) Times() []time.Time {
	return p.times
}

// Index returns the plain index values or nil when the time column is
// calendar.
func (p *Panel) Index() []float64 {
	return p.index
}

// Copy returns a deep copy of the panel.
func (p *Panel) Copy() *Panel {
	next, _ := NewPanel(p.idName, p.ids)
	if p.times != nil {
		next.SetCalendarTime(p.timeName, p.times)
	}
	if p.index != nil {
		next.SetIndexTime(p.timeName, p.index)
	}
	for _, name := range p.names {
		next.AddColumn(name, p.values[name])
	}
	return next
}
