// Demo fitting a simulated multi-entity panel and assembling forecasts back
// into the test table.
package main

import (
	"os"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
	"github.com/rs/zerolog"

	"github.com/panelcast/panelcast"
	"github.com/panelcast/panelcast/dataset"
	"github.com/panelcast/panelcast/schema"
)

const (
	trainRows = 240
	horizon   = 12
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	entities := []string{"sensor-a", "sensor-b", "sensor-c"}
	full := dataset.SimulatePanel(entities, trainRows+horizon, time.Hour, 42, time.Now)

	train, test, err := splitPanel(full, trainRows, horizon)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to split panel")
	}

	holidays := &cal.Calendar{Name: "us"}
	holidays.AddHoliday(us.Holidays...)

	sch := &schema.Schema{
		IDColumn:       "id",
		TimeColumn:     "ts",
		TimeKind:       schema.TimeKindCalendar,
		Target:         "y",
		ForecastLength: horizon,
		PastCovariates: []string{"temp"},
	}

	opt := panelcast.NewDefaultOptions()
	opt.LagsForecastRatio = 4
	opt.HistoryForecastRatio = 10
	opt.HolidayCalendar = holidays

	f, err := panelcast.New(sch, opt)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to create forecaster")
	}
	f.SetLogger(logger)

	if err := f.Fit(train, test); err != nil {
		logger.Fatal().Err(err).Msg("fit failed")
	}

	out, err := f.Predict(test, "prediction")
	if err != nil {
		logger.Fatal().Err(err).Msg("predict failed")
	}

	eval, err := f.Evaluate(out, "prediction")
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to score forecast")
	}
	logger.Info().
		Float64("mse", eval.Pooled.MSE).
		Float64("mape", eval.Pooled.MAPE).
		Float64("r2", eval.Pooled.R2).
		Msg("holdout scores")
	for id, scores := range eval.ByEntity {
		logger.Info().
			Str("entity", id).
			Float64("mse", scores.MSE).
			Float64("mape", scores.MAPE).
			Msg("entity scores")
	}

	if err := f.PlotForecast("forecast.html"); err != nil {
		logger.Fatal().Err(err).Msg("unable to render plot")
	}

	dir, err := os.MkdirTemp("", "panelcast")
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to create model dir")
	}
	if err := f.Save(dir); err != nil {
		logger.Fatal().Err(err).Msg("save failed")
	}
	restored, err := panelcast.Load(dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("load failed")
	}
	logger.Info().
		Strs("entities", restored.EntityIDs()).
		Str("dir", dir).
		Msg("save/load round trip complete")
}

// splitPanel carves the trailing horizon rows of each entity block into the
// test panel, keeping the leading rows for training. SimulatePanel lays rows
// out contiguously per entity.
func splitPanel(p *dataset.Panel, trainRows, horizon int) (*dataset.Panel, *dataset.Panel, error) {
	ids := p.IDs()
	times := p.Times()
	y, err := p.Column("y")
	if err != nil {
		return nil, nil, err
	}
	temp, err := p.Column("temp")
	if err != nil {
		return nil, nil, err
	}

	blockLen := trainRows + horizon
	var trainIdx, testIdx []int
	for i := range ids {
		if i%blockLen < trainRows {
			trainIdx = append(trainIdx, i)
		} else {
			testIdx = append(testIdx, i)
		}
	}

	build := func(rows []int) (*dataset.Panel, error) {
		subIDs := make([]string, 0, len(rows))
		subTimes := make([]time.Time, 0, len(rows))
		subY := make([]float64, 0, len(rows))
		subTemp := make([]float64, 0, len(rows))
		for _, r := range rows {
			subIDs = append(subIDs, ids[r])
			subTimes = append(subTimes, times[r])
			subY = append(subY, y[r])
			subTemp = append(subTemp, temp[r])
		}
		sub, err := dataset.NewPanel(p.IDName(), subIDs)
		if err != nil {
			return nil, err
		}
		if err := sub.SetCalendarTime(p.TimeName(), subTimes); err != nil {
			return nil, err
		}
		if err := sub.AddColumn("y", subY); err != nil {
			return nil, err
		}
		if err := sub.AddColumn("temp", subTemp); err != nil {
			return nil, err
		}
		return sub, nil
	}

	train, err := build(trainIdx)
	if err != nil {
		return nil, nil, err
	}
	test, err := build(testIdx)
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}
