package panelcast

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineEntityForecast generates an echart line chart for one entity plotting
// its de-scaled history followed by the forecast continuation on a step
// axis.
func LineEntityForecast(entityID string, history, forecast []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: fmt.Sprintf("Forecast %s", entityID),
			},
		),
	)

	steps := make([]int, 0, len(history)+len(forecast))
	for i := 0; i < len(history)+len(forecast); i++ {
		steps = append(steps, i)
	}

	lineDataHistory := make([]opts.LineData, 0, len(steps))
	lineDataForecast := make([]opts.LineData, 0, len(steps))
	for _, v := range history {
		lineDataHistory = append(lineDataHistory, opts.LineData{Value: v})
		lineDataForecast = append(lineDataForecast, opts.LineData{Value: nil})
	}
	for _, v := range forecast {
		lineDataHistory = append(lineDataHistory, opts.LineData{Value: nil})
		lineDataForecast = append(lineDataForecast, opts.LineData{Value: v})
	}

	line.SetXAxis(steps).
		AddSeries("History", lineDataHistory).
		AddSeries("Forecast", lineDataForecast)
	return line
}

// PlotForecast renders one chart per entity, in fit order, showing the
// retained training history and the forecast continuation in original
// measurement units, written as an html page to the given path.
func (f *Forecaster) PlotForecast(path string) error {
	if !f.trained {
		return ErrNotFitted
	}

	forecasts, err := f.model.Predict(f.schema.ForecastLength, f.targets, f.past)
	if err != nil {
		return fmt.Errorf("unable to predict for plot, %w", err)
	}

	page := components.NewPage()
	for i, entityID := range f.entityIDs {
		history, err := f.scalers.InverseTransformTarget(i, f.targets[i])
		if err != nil {
			return err
		}
		forecast, err := f.scalers.InverseTransformTarget(i, forecasts[i])
		if err != nil {
			return err
		}
		page.AddCharts(LineEntityForecast(entityID, history, forecast))
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return page.Render(io.MultiWriter(file))
}
