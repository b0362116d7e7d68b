package covariates

import (
	"testing"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelcast/panelcast/dataset"
)

func calendarPanel(t *testing.T) *dataset.Panel {
	t.Helper()
	p, err := dataset.NewPanel("id", []string{"a", "a", "a"})
	require.NoError(t, err)
	require.NoError(t, p.SetCalendarTime("ts", []time.Time{
		time.Date(2023, 2, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, p.AddColumn("y", []float64{1, 2, 3}))
	return p
}

func TestDeriveCalendar(t *testing.T) {
	p := calendarPanel(t)

	derived, err := DeriveCalendar(p, "ts")
	require.NoError(t, err)
	assert.Equal(t, []string{"ts_year", "ts_month"}, derived)

	years, err := p.Column("ts_year")
	require.NoError(t, err)
	assert.Equal(t, []float64{2023, 2023, 2024}, years)

	months, err := p.Column("ts_month")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 12, 1}, months)
}

func TestDeriveCalendarIdempotent(t *testing.T) {
	p := calendarPanel(t)

	_, err := DeriveCalendar(p, "ts")
	require.NoError(t, err)
	derived, err := DeriveCalendar(p, "ts")
	require.NoError(t, err)
	assert.Equal(t, []string{"ts_year", "ts_month"}, derived)
	assert.Equal(t, []string{"y", "ts_year", "ts_month"}, p.Columns())
}

func TestDeriveCalendarNoCalendarTime(t *testing.T) {
	p, err := dataset.NewPanel("id", []string{"a"})
	require.NoError(t, err)
	require.NoError(t, p.SetIndexTime("idx", []float64{0}))

	_, err = DeriveCalendar(p, "idx")
	assert.ErrorIs(t, err, ErrNoCalendarTime)
}

func TestDeriveHoliday(t *testing.T) {
	p := calendarPanel(t)

	holidays := &cal.Calendar{Name: "us"}
	holidays.AddHoliday(us.ChristmasDay, us.NewYear)

	derived, err := DeriveHoliday(p, "ts", holidays)
	require.NoError(t, err)
	assert.Equal(t, []string{"ts_holiday"}, derived)

	indicator, err := p.Column("ts_holiday")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 1}, indicator)
}
