// Package covariates derives calendar features and assembles the per-entity
// target and covariate blocks consumed by a forecasting engine.
package covariates

import (
	"errors"
	"fmt"

	"github.com/rickar/cal/v2"

	"github.com/panelcast/panelcast/dataset"
)

var ErrNoCalendarTime = errors.New("panel has no calendar time column")

// DeriveCalendar appends integer year and month columns derived from the
// panel's calendar time column and returns the derived column names. The
// derived names are <timeCol>_year and <timeCol>_month. Derivation is
// idempotent so refitting on an already augmented panel is safe.
func DeriveCalendar(p *dataset.Panel, timeCol string) ([]string, error) {
	t := p.Times()
	if t == nil {
		return nil, ErrNoCalendarTime
	}

	yearName := fmt.Sprintf("%s_year", timeCol)
	monthName := fmt.Sprintf("%s_month", timeCol)

	if !p.HasColumn(yearName) {
		years := make([]float64, len(t))
		for i, ts := range t {
			years[i] = float64(ts.Year())
		}
		if err := p.AddColumn(yearName, years); err != nil {
			return nil, err
		}
	}
	if !p.HasColumn(monthName) {
		months := make([]float64, len(t))
		for i, ts := range t {
			months[i] = float64(ts.Month())
		}
		if err := p.AddColumn(monthName, months); err != nil {
			return nil, err
		}
	}
	return []string{yearName, monthName}, nil
}

// DeriveHoliday appends a 0/1 indicator column <timeCol>_holiday marking
// rows whose date is an actual or observed holiday on the given calendar.
func DeriveHoliday(p *dataset.Panel, timeCol string, c *cal.Calendar) ([]string, error) {
	t := p.Times()
	if t == nil {
		return nil, ErrNoCalendarTime
	}

	holidayName := fmt.Sprintf("%s_holiday", timeCol)
	if !p.HasColumn(holidayName) {
		indicator := make([]float64, len(t))
		for i, ts := range t {
			actual, observed, _ := c.IsHoliday(ts)
			if actual || observed {
				indicator[i] = 1.0
			}
		}
		if err := p.AddColumn(holidayName, indicator); err != nil {
			return nil, err
		}
	}
	return []string{holidayName}, nil
}
