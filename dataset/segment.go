package dataset

import (
	"fmt"
	"time"
)

// Segment holds a single entity's rows carved out of a panel, in the panel's
// row order, with the entity identifier column dropped.
type Segment struct {
	EntityID string

	times  []time.Time
	index  []float64
	names  []string
	values map[string][]float64
}

// Split partitions a panel into one segment per entity identifier, in
// first-occurrence order of the identifier. When historyLength is positive
// each segment is truncated to its trailing historyLength rows. The same
// historyLength must be used whenever segments are re-derived from the same
// training panel so covariates stay aligned with the fitted window.
func Split(p *Panel, historyLength int) ([]*Segment, error) {
	if p == nil || p.NumRows() == 0 {
		return nil, ErrNoRows
	}

	order := make([]string, 0)
	rowsByID := make(map[string][]int)
	for i, id := range p.IDs() {
		if _, seen := rowsByID[id]; !seen {
			order = append(order, id)
		}
		rowsByID[id] = append(rowsByID[id], i)
	}

	segments := make([]*Segment, 0, len(order))
	for _, id := range order {
		rows := rowsByID[id]
		if historyLength > 0 && len(rows) > historyLength {
			rows = rows[len(rows)-historyLength:]
		}

		seg := &Segment{
			EntityID: id,
			names:    p.Columns(),
			values:   make(map[string][]float64, len(p.names)),
		}
		if t := p.Times(); t != nil {
			seg.times = make([]time.Time, 0, len(rows))
			for _, r := range rows {
				seg.times = append(seg.times, t[r])
			}
		}
		if idx := p.Index(); idx != nil {
			seg.index = make([]float64, 0, len(rows))
			for _, r := range rows {
				seg.index = append(seg.index, idx[r])
			}
		}
		for _, name := range seg.names {
			col := p.values[name]
			vals := make([]float64, 0, len(rows))
			for _, r := range rows {
				vals = append(vals, col[r])
			}
			seg.values[name] = vals
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// NumRows returns the number of rows in the segment.
func (s *Segment) NumRows() int {
	if len(s.names) == 0 {
		if s.times != nil {
			return len(s.times)
		}
		return len(s.index)
	}
	return len(s.values[s.names[0]])
}

// Times returns the segment's calendar timestamps or nil for plain-index
// panels.
func (s *Segment) Times() []time.Time {
	return s.times
}

// Column returns the values of a named column within the segment.
func (s *Segment) Column(name string) ([]float64, error) {
	vals, exists := s.values[name]
	if !exists {
		return nil, fmt.Errorf("column %q, %w", name, ErrUnknownColumn)
	}
	return vals, nil
}

// Block extracts the named columns as a column-major block. A single name
// yields a one-column block rather than a bare vector so downstream scaling
// treats it the same as the multi-column case.
func (s *Segment) Block(names []string) ([][]float64, error) {
	block := make([][]float64, 0, len(names))
	for _, name := range names {
		col, err := s.Column(name)
		if err != nil {
			return nil, err
		}
		vals := make([]float64, len(col))
		copy(vals, col)
		block = append(block, vals)
	}
	return block, nil
}
